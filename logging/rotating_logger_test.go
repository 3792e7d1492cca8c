package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGetWeekKey(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-W01"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		{time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC), "2020-W53"},
	}
	for _, tt := range tests {
		if got := getWeekKey(tt.date); got != tt.want {
			t.Errorf("getWeekKey(%s) = %s, want %s", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestRotatingLoggerWritesWeeklyFile(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1)
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if _, err := rl.Write([]byte("first week\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	now = now.AddDate(0, 0, 7)
	if _, err := rl.Write([]byte("second week\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	_ = rl.Close()

	for _, name := range []string{"intake-2024-W10.log", "intake-2024-W11.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestRotatingLoggerSizeLimit(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLoggerWithSizeLimit(dir, 1, 100)
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	line := []byte(strings.Repeat("x", 39) + "\n")
	for i := 0; i < 5; i++ {
		if _, err := rl.Write(line); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	_ = rl.Close()

	files, _ := filepath.Glob(filepath.Join(dir, "intake-2024-W10*.log"))
	if len(files) != 3 {
		t.Fatalf("expected 3 files for 5 lines of 40 bytes with a 100 byte cap, got %v", files)
	}
	for _, f := range files {
		info, _ := os.Stat(f)
		if info.Size() > 100 {
			t.Errorf("%s is %d bytes, above the cap", filepath.Base(f), info.Size())
		}
	}
}

func TestRotatingLoggerResumesExistingFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	existing := filepath.Join(dir, "intake-2024-W10.log")
	if err := os.WriteFile(existing, []byte("before restart\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rl := NewRotatingLogger(dir, 1)
	rl.now = func() time.Time { return now }
	_, _ = rl.Write([]byte("after restart\n"))
	_ = rl.Close()

	content, _ := os.ReadFile(existing)
	if string(content) != "before restart\nafter restart\n" {
		t.Errorf("content = %q", content)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1)
	defer rl.Close()

	old := filepath.Join(dir, "intake-2023-W01.log")
	recent := filepath.Join(dir, "intake-2024-W10.log")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, recent, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	twoWeeksAgo := time.Now().Add(-14 * 24 * time.Hour)
	_ = os.Chtimes(old, twoWeeksAgo, twoWeeksAgo)
	_ = os.Chtimes(other, twoWeeksAgo, twoWeeksAgo)

	deleted, err := rl.cleanupOldLogs()
	if err != nil {
		t.Fatalf("cleanupOldLogs() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old log file should be removed")
	}
	for _, p := range []string{recent, other} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s should be kept", filepath.Base(p))
		}
	}
}

func TestRotatingLoggerUnwritableDir(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocked, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	rl := NewRotatingLogger(filepath.Join(blocked, "logs"), 1)
	defer rl.Close()
	if _, err := rl.Write([]byte("lost\n")); err == nil {
		t.Error("Write() into a missing directory should fail")
	}
}

func TestRotatingLoggerConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLoggerWithSizeLimit(dir, 1, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = rl.Write([]byte("concurrent line\n"))
			}
		}()
	}
	wg.Wait()
	_ = rl.Close()

	files, _ := filepath.Glob(filepath.Join(dir, "intake-*.log"))
	var total int64
	for _, f := range files {
		info, _ := os.Stat(f)
		total += info.Size()
	}
	if want := int64(10 * 20 * len("concurrent line\n")); total != want {
		t.Errorf("wrote %d bytes in total, want %d", total, want)
	}
}

func TestMultiHandler(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("multiHandler should be enabled when any handler is")
	}

	logger := slog.New(h).With("session", "abc").WithGroup("req")
	logger.Debug("debug only", "k", "v")
	logger.Warn("both")

	if !strings.Contains(debugBuf.String(), "debug only") || !strings.Contains(debugBuf.String(), "both") {
		t.Errorf("debug handler output = %q", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "debug only") {
		t.Error("warn handler should skip debug records")
	}
	if !strings.Contains(warnBuf.String(), "session=abc") {
		t.Errorf("attributes should reach every handler, got %q", warnBuf.String())
	}
}
