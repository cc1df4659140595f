package db

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"ghcnd-server/internal/config"
	"ghcnd-server/internal/migrate"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain path", "queries.db", "file:queries.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"},
		{"file uri", "file:/data/q.db", "file:/data/q.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"},
		{"file uri with params", "file:/data/q.db?mode=rwc", "file:/data/q.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.path)
			if err != nil {
				t.Fatalf("buildDSN: %v", err)
			}
			if got != tt.want {
				t.Errorf("buildDSN(%q) = %q; want %q", tt.path, got, tt.want)
			}
		})
	}

	if _, err := buildDSN(""); err == nil {
		t.Error("buildDSN(\"\") error = nil; want error")
	}
}

func TestOpen_createsDirectoryAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "queries.db")
	cfg := config.Config{QueryLogPath: path, DBMaxOpenConns: 1}

	conn, err := Open(cfg, slog.Default())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() {
		if err := Close(conn); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("directory not created: %v", err)
	}

	// Migrations are multi-statement scripts; every statement must apply
	// through the logging connector.
	if _, err := migrate.Run(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	var n int
	err = conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_query_log_kind'`).Scan(&n)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if n != 1 {
		t.Errorf("idx_query_log_kind count = %d; want 1", n)
	}
}

func TestClose_nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v; want nil", err)
	}
}
