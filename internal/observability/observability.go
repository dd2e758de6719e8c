// Package observability holds the process-wide loggers.
//
// Two loggers are exposed: CLILogger for command output paths and
// ServerLogger for the HTTP server. Both write to stderr so stdout stays
// clean for JSONL and table output. They default to no-op loggers until
// Init is called, so library code can log unconditionally.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logging profiles.
const (
	// ProfileStructured emits JSON lines (production default).
	ProfileStructured = "structured"

	// ProfileConsole emits human-readable development output.
	ProfileConsole = "console"
)

var (
	// CLILogger is used by CLI commands. Writes to stderr.
	CLILogger = zap.NewNop()

	// ServerLogger is used by the HTTP server. Writes to stderr.
	ServerLogger = zap.NewNop()

	// level is shared by both loggers so verbosity can be raised at runtime.
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string

	// Profile selects the output encoding: structured or console.
	Profile string
}

// Init builds the package loggers from the given configuration.
//
// Unknown levels fall back to info. An unknown profile is an error so a
// typo in configuration does not silently change log shape.
func Init(cfg Config) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	level.SetLevel(lvl)

	var zc zap.Config
	switch cfg.Profile {
	case ProfileConsole:
		zc = zap.NewDevelopmentConfig()
	case ProfileStructured, "":
		zc = zap.NewProductionConfig()
	default:
		return fmt.Errorf("unknown logging profile %q (expected %s or %s)",
			cfg.Profile, ProfileStructured, ProfileConsole)
	}

	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	base, err := zc.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return err
	}

	CLILogger = base.Named("cli")
	ServerLogger = base.Named("server")
	return nil
}

// SetLevel changes the shared log level at runtime.
func SetLevel(lvl string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(lvl)); err != nil {
		return
	}
	level.SetLevel(l)
}

// Sync flushes buffered log entries. Safe to call before Init.
func Sync() {
	_ = CLILogger.Sync()
	_ = ServerLogger.Sync()
}
