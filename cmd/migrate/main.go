// Command migrate applies the SQL migrations under MIGRATIONS_DIR to the
// configured sqlite or postgres database.
//
//	migrate up
//	migrate down [N]
//	migrate force VERSION
//	migrate version
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"cakebook/internal/config"
	"cakebook/internal/database"
	"cakebook/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const usage = "usage: migrate <up|down [N]|force VERSION|version>"

type command func(m *migrate.Migrate, args []string) error

var commands = map[string]command{
	"up":      up,
	"down":    down,
	"force":   force,
	"version": version,
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q; %s", args[0], usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dbConfig, err := database.NewConfig(cfg)
	if err != nil {
		return err
	}

	m, err := migrate.New(dbConfig.SourceURL(), dbConfig.MigrateURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance for %s: %w", dbConfig.Driver, err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	return cmd(m, args[1:])
}

func up(m *migrate.Migrate, _ []string) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	logger.Get().Info("Migrations applied")
	return nil
}

func down(m *migrate.Migrate, args []string) error {
	steps, err := intArg(args, 1)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	logger.Get().Infof("Rolled back %d migration(s)", steps)
	return nil
}

// force marks VERSION as applied without running it, clearing a dirty flag
// left by a failed migration.
func force(m *migrate.Migrate, args []string) error {
	if len(args) == 0 {
		return errors.New("force needs a version")
	}
	v, err := intArg(args, 0)
	if err != nil {
		return err
	}
	if err := m.Force(v); err != nil {
		return fmt.Errorf("force version %d failed: %w", v, err)
	}
	logger.Get().Infof("Forced version %d", v)
	return nil
}

func version(m *migrate.Migrate, _ []string) error {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		logger.Get().Info("No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	logger.Get().Infof("Version: %d, Dirty: %v", v, dirty)
	return nil
}

// intArg parses the first argument as a non-negative integer, returning def
// when there is none.
func intArg(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}
