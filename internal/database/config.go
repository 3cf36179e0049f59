package database

import (
	"fmt"
	"net/url"
	"path/filepath"

	"cakebook/internal/config"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database configuration
type Config struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MigrationsDir string
}

// NewConfig creates a database configuration from the application config
func NewConfig(cfg *config.Config) (*Config, error) {
	c := &Config{
		Driver:        cfg.DBDriver,
		Path:          cfg.DBPath,
		Host:          cfg.DBHost,
		Port:          cfg.DBPort,
		User:          cfg.DBUser,
		Password:      cfg.DBPassword,
		DBName:        cfg.DBName,
		SSLMode:       cfg.DBSSLMode,
		MigrationsDir: cfg.MigrationsDir,
	}
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
		return c, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q (use %s or %s)", c.Driver, DriverSQLite, DriverPostgres)
}

// DSN returns the connection string for the configured driver
func (c *Config) DSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", c.Path)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrateURL returns the database URL in the form golang-migrate expects
func (c *Config) MigrateURL() string {
	if c.Driver == DriverSQLite {
		return "sqlite3://" + c.Path + "?_busy_timeout=5000"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// SourceURL returns the migration source for the configured driver
func (c *Config) SourceURL() string {
	return "file://" + filepath.ToSlash(filepath.Join(c.MigrationsDir, c.Driver))
}
