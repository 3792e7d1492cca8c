// Package logging wraps log/slog for the intake service: a package-level
// logger writing to the console and to weekly rotating files, and an HTTP
// request logging middleware.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/giygas/fiche-dentaire/config"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

var (
	DefaultLoggingService *LoggingService
	serviceMu             sync.Mutex
)

// InitLogger initializes the global logger instance. A log directory that
// cannot be used leaves a console-only logger in place and returns the error.
func InitLogger(opts Options) error {
	logger, rotating, err := NewLogger(opts)

	serviceMu.Lock()
	previous := DefaultLoggingService
	DefaultLoggingService = &LoggingService{Logger: logger, rotating: rotating}
	serviceMu.Unlock()

	slog.SetDefault(logger)
	if previous != nil && previous.rotating != nil {
		_ = previous.rotating.Close()
	}
	return err
}

// Close flushes and closes the log file of the global logger
func Close() error {
	serviceMu.Lock()
	defer serviceMu.Unlock()

	if DefaultLoggingService == nil || DefaultLoggingService.rotating == nil {
		return nil
	}
	err := DefaultLoggingService.rotating.Close()
	DefaultLoggingService.rotating = nil
	return err
}

// Logger returns the global logger, or a console fallback when not initialized
func Logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return fallback
	}
	return DefaultLoggingService.Logger
}

var fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelDebug,
}))

// parseLogLevel maps a LOG_LEVEL value to a slog level, info when unknown
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level. An explicit LOG_LEVEL wins,
// except under test where the console stays quiet unless verbose.
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel is the file level: everything, files are for post-mortems
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
