package database

import (
	"path/filepath"
	"strings"
	"testing"

	"cakebook/internal/config"
	"cakebook/internal/logger"
	"cakebook/internal/models"
	"cakebook/internal/storage"
)

func init() {
	logger.Init("test")
}

func TestNewConfig(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		cfg, err := NewConfig(&config.Config{DBDriver: "sqlite", DBPath: "/tmp/cakebook.db", MigrationsDir: "migrations"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(cfg.DSN(), "file:/tmp/cakebook.db?") {
			t.Errorf("unexpected DSN: %s", cfg.DSN())
		}
		if cfg.MigrateURL() != "sqlite3:///tmp/cakebook.db?_busy_timeout=5000" {
			t.Errorf("unexpected migrate URL: %s", cfg.MigrateURL())
		}
		if cfg.SourceURL() != "file://migrations/sqlite" {
			t.Errorf("unexpected source URL: %s", cfg.SourceURL())
		}
	})

	t.Run("postgres", func(t *testing.T) {
		cfg, err := NewConfig(&config.Config{
			DBDriver: "postgres", DBHost: "db", DBPort: "5432",
			DBUser: "bolo", DBPassword: "p@ss", DBName: "receitas", DBSSLMode: "disable",
			MigrationsDir: "migrations",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DSN() != "host=db port=5432 user=bolo password=p@ss dbname=receitas sslmode=disable" {
			t.Errorf("unexpected DSN: %s", cfg.DSN())
		}
		if cfg.MigrateURL() != "postgres://bolo:p%40ss@db:5432/receitas?sslmode=disable" {
			t.Errorf("unexpected migrate URL: %s", cfg.MigrateURL())
		}
		if cfg.SourceURL() != "file://migrations/postgres" {
			t.Errorf("unexpected source URL: %s", cfg.SourceURL())
		}
	})

	t.Run("unknown_driver", func(t *testing.T) {
		if _, err := NewConfig(&config.Config{DBDriver: "mysql"}); err == nil {
			t.Fatal("expected error for unsupported driver")
		}
	})
}

func TestManager_SQLite(t *testing.T) {
	newManager := func(t *testing.T) *Manager {
		t.Helper()
		m, err := NewManager(&Config{
			Driver:        DriverSQLite,
			Path:          filepath.Join(t.TempDir(), "cakebook.db"),
			MigrationsDir: filepath.Join("..", "..", "migrations"),
		})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { _ = m.Close() })
		return m
	}

	for name, migrate := range map[string]func(*Manager) error{
		"run_migrations": (*Manager).RunMigrations,
		"auto_migrate":   (*Manager).AutoMigrate,
	} {
		t.Run(name, func(t *testing.T) {
			m := newManager(t)
			if err := migrate(m); err != nil {
				t.Fatalf("migration failed: %v", err)
			}

			for _, model := range []interface{}{&models.Snapshot{}, &models.CacheEntry{}, &models.AuditLog{}} {
				if !m.DB().Migrator().HasTable(model) {
					t.Errorf("expected table for %T", model)
				}
			}

			repo := storage.NewSnapshotRepository(m.DB())
			if err := repo.Save("cake-recipe-app", []byte(`{"recipes":[]}`)); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			if err := repo.Save("cake-recipe-app", []byte(`{"recipes":[],"isDarkMode":true}`)); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			doc, err := repo.Load("cake-recipe-app")
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if !strings.Contains(string(doc), "isDarkMode") {
				t.Errorf("expected overwritten document, got %s", doc)
			}
		})
	}

	t.Run("migrations_are_idempotent", func(t *testing.T) {
		m := newManager(t)
		if err := m.RunMigrations(); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := m.RunMigrations(); err != nil {
			t.Fatalf("second run failed: %v", err)
		}
	})
}
