package config

import (
	"strings"
	"testing"
)

func TestDatabase(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{
			name:       "postgres from DB_* variables",
			cfg:        Config{DBHost: "db", DBPort: 5432, DBUser: "u", DBPassword: "p", DBName: "journal"},
			wantDriver: "postgres",
			wantDSN:    "host=db user=u password=p dbname=journal port=5432 sslmode=disable",
		},
		{
			name:       "postgres url",
			cfg:        Config{DatabaseURL: "postgres://u:p@db:5432/journal?sslmode=disable"},
			wantDriver: "postgres",
		},
		{
			name:       "sqlite url",
			cfg:        Config{DatabaseURL: "sqlite:/tmp/journal.db"},
			wantDriver: "sqlite",
		},
		{
			name:    "nothing configured",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name:    "unsupported driver",
			cfg:     Config{DatabaseURL: "mysql://u:p@db/journal"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, dsn, err := tt.cfg.Database()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got driver %q", driver)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if driver != tt.wantDriver {
				t.Errorf("driver = %q, want %q", driver, tt.wantDriver)
			}
			if tt.wantDSN != "" && dsn != tt.wantDSN {
				t.Errorf("dsn = %q, want %q", dsn, tt.wantDSN)
			}
			if tt.wantDSN == "" && !strings.Contains(dsn, "journal") {
				t.Errorf("dsn = %q, want it to reference the journal database", dsn)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DBHost:             "db",
			StorageBackend:     "local",
			FilesDir:           "files",
			MaxUploadMB:        12,
			AbstractPreviewLen: 670,
		}
	}

	t.Run("defaults are valid", func(t *testing.T) {
		cfg := base()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("s3 needs credentials", func(t *testing.T) {
		cfg := base()
		cfg.StorageBackend = "s3"
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "S3_BUCKET") {
			t.Fatalf("expected S3 error, got %v", err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := base()
		cfg.StorageBackend = "ftp"
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for unknown backend")
		}
	})

	t.Run("upload limit in bytes", func(t *testing.T) {
		cfg := base()
		if got := cfg.MaxUploadBytes(); got != 12<<20 {
			t.Fatalf("MaxUploadBytes = %d", got)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "sqlite:/tmp/journal.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q", cfg.HTTPPort)
	}
	if cfg.AbstractPreviewLen != 670 {
		t.Errorf("AbstractPreviewLen = %d", cfg.AbstractPreviewLen)
	}
	if cfg.FilesDir != "files" {
		t.Errorf("FilesDir = %q", cfg.FilesDir)
	}
}
