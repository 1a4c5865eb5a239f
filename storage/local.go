package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore legt Dokumente in einem Verzeichnis ab (Standard: "files").
type LocalStore struct {
	Dir string
}

// NewLocalStore legt das Verzeichnis bei Bedarf an.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) path(name string) (string, error) {
	clean, err := CleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, clean), nil
}

// Save schreibt zuerst in eine temporäre Datei und benennt sie dann um.
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader, size int64) error {
	target, err := s.path(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// Open prüft die Existenz, bevor die Datei geöffnet wird.
func (s *LocalStore) Open(ctx context.Context, name string) (*Object, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, ErrNotFound
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Object{ReadCloser: f, Size: info.Size(), ContentType: "application/pdf"}, nil
}

func (s *LocalStore) Delete(ctx context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
