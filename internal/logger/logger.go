// Package logger holds the process-wide zap logger. Components take a named
// child through Named so log lines carry "store", "offline" or "http".
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	once  sync.Once
	mu    sync.RWMutex
)

// Init builds the global logger for env. "production" writes JSON, "test"
// discards everything and anything else writes development console output.
// LOG_LEVEL (debug, info, warn, error) overrides the starting level.
func Init(env string) {
	once.Do(func() {
		if env == "test" {
			setBase(zap.NewNop())
			return
		}

		cfg := zap.NewDevelopmentConfig()
		if env == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			level.SetLevel(zapcore.DebugLevel)
		}
		if raw := os.Getenv("LOG_LEVEL"); raw != "" {
			if err := level.UnmarshalText([]byte(raw)); err != nil {
				level.SetLevel(zapcore.InfoLevel)
			}
		}
		cfg.Level = level

		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}
		setBase(base)
	})
}

// Replace swaps the global logger. Tests use it with an observer core.
func Replace(base *zap.Logger) {
	once.Do(func() {})
	setBase(base)
}

func setBase(base *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	sugar = base.Sugar()
}

// Get returns the global sugared logger, initializing a development logger
// on first use.
func Get() *zap.SugaredLogger {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	if s == nil {
		Init("development")
		mu.RLock()
		s = sugar
		mu.RUnlock()
	}
	return s
}

// Named returns a child logger scoped to a component.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// SetLevel changes the level of loggers built by Init at runtime.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// Sync flushes buffered entries. Call it before exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
