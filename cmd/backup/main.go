// Command backup erstellt einen komprimierten pg_dump der Journal-Datenbank,
// lädt ihn nach S3 hoch und behält nur die neuesten KEEP_BACKUPS Dateien.
package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

const keyPrefix = "journal-backup-"

type BackupConfig struct {
	PostgresHost     string        `envconfig:"DB_HOST" required:"true"`
	PostgresPort     int           `envconfig:"DB_PORT" default:"5432"`
	PostgresUser     string        `envconfig:"DB_USER" required:"true"`
	PostgresPassword string        `envconfig:"DB_PASSWORD" required:"true"`
	PostgresDB       string        `envconfig:"DB_NAME" required:"true"`
	BackupBucket     string        `envconfig:"BACKUP_S3_BUCKET" required:"true"`
	BackupEndpoint   string        `envconfig:"BACKUP_S3_ENDPOINT"`
	BackupAccessKey  string        `envconfig:"BACKUP_S3_ACCESS_KEY" required:"true"`
	BackupSecretKey  string        `envconfig:"BACKUP_S3_SECRET_KEY" required:"true"`
	BackupRegion     string        `envconfig:"BACKUP_S3_REGION" default:"us-east-1"`
	KeepBackups      int           `envconfig:"KEEP_BACKUPS" default:"4"`
	Timeout          time.Duration `envconfig:"BACKUP_TIMEOUT" default:"30m"`
}

// backupAPI ist der Ausschnitt des S3-Clients, den das Backup benötigt.
type backupAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	_ = godotenv.Load()
	var cfg BackupConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	logging.Info("Starting backup", zap.String("database", cfg.PostgresDB))
	dump, err := createDump(ctx, cfg)
	if err != nil {
		logging.Fatal("Failed to create database dump", zap.Error(err))
	}

	client, err := createS3Client(ctx, cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}

	key := backupKey(time.Now())
	if _, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(cfg.BackupBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(dump),
		ContentType: aws.String("application/gzip"),
	}); err != nil {
		logging.Fatal("Failed to upload backup", zap.Error(err))
	}
	logging.Info("Backup uploaded",
		zap.String("bucket", cfg.BackupBucket),
		zap.String("key", key),
		zap.Int("bytes", len(dump)))

	deleted, err := rotateBackups(ctx, client, cfg.BackupBucket, cfg.KeepBackups, logging)
	if err != nil {
		logging.Fatal("Failed to rotate old backups", zap.Error(err))
	}
	logging.Info("Backup finished", zap.Int("rotated", deleted))
}

func backupKey(now time.Time) string {
	return fmt.Sprintf("%s%s.sql.gz", keyPrefix, now.UTC().Format("2006-01-02T15-04-05Z"))
}

func createDump(ctx context.Context, cfg BackupConfig) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump",
		"-h", cfg.PostgresHost,
		"-p", fmt.Sprint(cfg.PostgresPort),
		"-U", cfg.PostgresUser,
		"-d", cfg.PostgresDB,
		"-w", // Passwort kommt über PGPASSWORD
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+cfg.PostgresPassword)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := io.Copy(gz, stdout); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("pg_dump: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return buf.Bytes(), nil
}

func createS3Client(ctx context.Context, cfg BackupConfig) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.BackupAccessKey, cfg.BackupSecretKey, "")),
		config.WithRegion(cfg.BackupRegion),
	)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BackupEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BackupEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// rotateBackups löscht alle Backups außer den keep neuesten. Fremde Objekte
// im Bucket werden nicht angefasst.
func rotateBackups(ctx context.Context, client backupAPI, bucket string, keep int, logging *zap.Logger) (int, error) {
	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(keyPrefix),
	})
	if err != nil {
		return 0, err
	}
	objects := out.Contents
	if len(objects) <= keep {
		logging.Info("No rotation needed", zap.Int("backups", len(objects)), zap.Int("keep", keep))
		return 0, nil
	}

	sort.Slice(objects, func(i, j int) bool {
		return aws.ToTime(objects[i].LastModified).After(aws.ToTime(objects[j].LastModified))
	})

	deleted := 0
	for _, obj := range objects[keep:] {
		key := aws.ToString(obj.Key)
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    obj.Key,
		}); err != nil {
			logging.Error("Failed to delete old backup", zap.String("key", key), zap.Error(err))
			continue
		}
		logging.Info("Deleted old backup", zap.String("key", key))
		deleted++
	}
	return deleted, nil
}
