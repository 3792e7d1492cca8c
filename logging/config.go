package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	filePrefix = "intake-"
	fileSuffix = ".log"

	defaultMaxFileSize = 100 * 1024 * 1024
	cleanupInterval    = 24 * time.Hour
)

var numberedFile = regexp.MustCompile(`^intake-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingLogger writes to one log file per ISO week, starting a numbered
// file when the size cap is reached. Files older than the retention period
// are removed by a daily cleanup.
type RotatingLogger struct {
	logDir      string
	currentFile *os.File
	currentWeek string
	retention   time.Duration
	maxFileSize int64
	currentSize atomic.Int64
	mu          sync.Mutex
	now         func() time.Time

	closeTimeout time.Duration
	cleaning     atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	cleanupDone  chan struct{}
}

// NewRotatingLogger creates a rotating logger with the default size cap
func NewRotatingLogger(logDir string, retentionWeeks int) *RotatingLogger {
	return NewRotatingLoggerWithSizeLimit(logDir, retentionWeeks, defaultMaxFileSize)
}

// NewRotatingLoggerWithSizeLimit creates a rotating logger with a custom
// size cap; zero disables size rotation
func NewRotatingLoggerWithSizeLimit(logDir string, retentionWeeks int, maxFileSize int64) *RotatingLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &RotatingLogger{
		logDir:       logDir,
		retention:    time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize:  maxFileSize,
		now:          time.Now,
		closeTimeout: 5 * time.Second,
		ctx:          ctx,
		cancel:       cancel,
		cleanupDone:  make(chan struct{}),
	}
}

// getWeekKey returns the week key in YYYY-Www format (ISO week)
func getWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// open selects the file for the current week. Caller must hold the lock.
func (rl *RotatingLogger) open(week string) error {
	if rl.currentFile != nil {
		if err := rl.currentFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file during rotation: %v\n", err)
		}
		rl.currentFile = nil
	}

	full := rl.maxFileSize > 0 && rl.currentSize.Load() >= rl.maxFileSize && rl.currentWeek == week
	name := rl.pickFile(week, full)

	path := filepath.Join(rl.logDir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	rl.currentFile = file
	rl.currentWeek = week
	rl.currentSize.Store(0)
	if info, err := file.Stat(); err == nil {
		rl.currentSize.Store(info.Size())
	}
	return nil
}

// pickFile returns the file to append to for week. When the current file
// is full it is always the next numbered file; otherwise the base file or
// the last numbered file are reused while they have room.
func (rl *RotatingLogger) pickFile(week string, full bool) string {
	highest, last := rl.highestNumbered(week)
	next := fmt.Sprintf("%s%s_%02d%s", filePrefix, week, highest+1, fileSuffix)
	if full {
		return next
	}

	base := filePrefix + week + fileSuffix
	if last == "" && rl.hasRoom(filepath.Join(rl.logDir, base)) {
		return base
	}
	if last != "" && rl.hasRoom(last) {
		return filepath.Base(last)
	}
	return next
}

func (rl *RotatingLogger) hasRoom(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return rl.maxFileSize == 0 || info.Size() < rl.maxFileSize
}

// highestNumbered returns the highest sequence number used for week and its path
func (rl *RotatingLogger) highestNumbered(week string) (int, string) {
	matches, _ := filepath.Glob(filepath.Join(rl.logDir, filePrefix+week+"_??"+fileSuffix))

	highest := 0
	var path string
	for _, match := range matches {
		m := numberedFile.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}
		if n, _ := strconv.Atoi(m[1]); n > highest {
			highest = n
			path = match
		}
	}
	return highest, path
}

// Write writes p to the current log file, rotating first when the week
// changed or p would pass the size cap
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := getWeekKey(rl.now())
	rotate := rl.currentFile == nil || rl.currentWeek != week
	if !rotate && rl.maxFileSize > 0 && rl.currentSize.Load()+int64(len(p)) > rl.maxFileSize {
		rl.currentSize.Store(rl.maxFileSize)
		rotate = true
	}

	if rotate {
		if err := rl.open(week); err != nil {
			return 0, err
		}
	}

	n, err := rl.currentFile.Write(p)
	rl.currentSize.Add(int64(n))
	return n, err
}

// cleanupOldLogs removes log files older than the retention period and
// returns how many were deleted
func (rl *RotatingLogger) cleanupOldLogs() (int, error) {
	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := rl.now().Add(-rl.retention)
	deleted := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(rl.logDir, name)); err == nil {
				deleted++
			}
		}
	}

	return deleted, nil
}

// startCleanup runs cleanupOldLogs every interval until Close
func (rl *RotatingLogger) startCleanup(interval time.Duration) {
	rl.cleaning.Store(true)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(rl.cleanupDone)

		for {
			select {
			case <-rl.ctx.Done():
				return
			case <-ticker.C:
				// console only, logging here would recurse into Write
				if n, err := rl.cleanupOldLogs(); err != nil {
					fmt.Fprintf(os.Stderr, "failed to clean up old logs: %v\n", err)
				} else if n > 0 {
					fmt.Fprintf(os.Stderr, "cleaned up %d old log files\n", n)
				}
			}
		}
	}()
}

// Close stops the background cleanup and closes the current file
func (rl *RotatingLogger) Close() error {
	rl.cancel()

	if rl.cleaning.Load() {
		select {
		case <-rl.cleanupDone:
		case <-time.After(rl.closeTimeout):
		}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.currentFile != nil {
		err := rl.currentFile.Close()
		rl.currentFile = nil
		return err
	}
	return nil
}

// Options configures NewLogger
type Options struct {
	Dir            string
	RetentionWeeks int
	MaxFileSize    int64
	ConsoleLevel   slog.Level
	FileLevel      slog.Level
	// Console receives the text output; os.Stdout when nil
	Console io.Writer
}

// NewLogger builds a logger writing text to the console and JSON to weekly
// rotating files in opts.Dir. The returned RotatingLogger must be closed.
// When the log directory is unusable, the logger falls back to the console
// alone and the error is returned alongside it.
func NewLogger(opts Options) (*slog.Logger, *RotatingLogger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: opts.ConsoleLevel})

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return slog.New(consoleHandler), nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	retention := opts.RetentionWeeks
	if retention <= 0 {
		retention = 4
	}
	rotating := NewRotatingLoggerWithSizeLimit(opts.Dir, retention, opts.MaxFileSize)

	rotating.mu.Lock()
	err := rotating.open(getWeekKey(rotating.now()))
	rotating.mu.Unlock()
	if err != nil {
		return slog.New(consoleHandler), nil, fmt.Errorf("failed to initialize rotating logger: %w", err)
	}

	rotating.startCleanup(cleanupInterval)

	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{Level: opts.FileLevel})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), rotating, nil
}

// multiHandler implements slog.Handler to write to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
