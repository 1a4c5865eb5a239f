package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"sciencejournal/config"
)

// ErrNotFound wird geliefert, wenn ein Dokument im Speicher nicht existiert.
var ErrNotFound = errors.New("document not found in store")

// Object ist ein geöffnetes Dokument. Der Aufrufer muss Close aufrufen.
type Object struct {
	io.ReadCloser
	Size        int64
	ContentType string
}

// DocumentStore abstrahiert die Ablage hochgeladener PDFs.
type DocumentStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64) error
	Open(ctx context.Context, name string) (*Object, error)
	Delete(ctx context.Context, name string) error
}

// NewDocumentStore wählt das Backend anhand von STORAGE_BACKEND.
func NewDocumentStore(cfg *config.Config) (DocumentStore, error) {
	switch cfg.StorageBackend {
	case "local":
		return NewLocalStore(cfg.FilesDir)
	case "s3":
		client, err := NewS3Client(cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg.S3Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// CleanName verhindert Pfadangaben im Dateinamen.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(filepath.Base(filepath.Clean("/" + name)))
	if name == "" || name == "/" || name == "." || name == ".." {
		return "", errors.New("document name is empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", errors.New("document name contains a path separator")
	}
	return name, nil
}
