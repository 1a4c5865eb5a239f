package main

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

type fakeBucket struct {
	objects map[string]time.Time
}

func (f *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.objects[aws.ToString(in.Key)] = time.Now()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key, mod := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key), LastModified: aws.Time(mod)})
		}
	}
	return out, nil
}

func (f *fakeBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestRotateBackups(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bucket := &fakeBucket{objects: map[string]time.Time{"unrelated.txt": base}}
	for i := 0; i < 6; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		bucket.objects[backupKey(at)] = at
	}

	deleted, err := rotateBackups(context.Background(), bucket, "b", 4, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}

	var keys []string
	for k := range bucket.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) != 5 || keys[len(keys)-1] != "unrelated.txt" {
		t.Fatalf("remaining = %v", keys)
	}
	if _, ok := bucket.objects[backupKey(base)]; ok {
		t.Fatal("oldest backup survived rotation")
	}

	if deleted, _ := rotateBackups(context.Background(), bucket, "b", 4, zap.NewNop()); deleted != 0 {
		t.Fatalf("second rotation deleted %d", deleted)
	}
}

func TestBackupKey(t *testing.T) {
	got := backupKey(time.Date(2026, 10, 16, 8, 30, 0, 0, time.FixedZone("CEST", 2*3600)))
	if got != "journal-backup-2026-10-16T06-30-00Z.sql.gz" {
		t.Fatalf("backupKey = %q", got)
	}
}
