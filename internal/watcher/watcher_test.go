package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitForReloads(t *testing.T, counter *atomic.Int32, want int32, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if counter.Load() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d reloads within %v, got %d", want, timeout, counter.Load())
}

func TestConfigWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var reloads atomic.Int32
	w, err := NewConfigWatcher(path, 50*time.Millisecond, func() {
		reloads.Add(1)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Start(context.Background())
	defer w.Stop()

	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0600); err != nil {
		t.Fatal(err)
	}

	waitForReloads(t, &reloads, 1, 3*time.Second)
}

func TestConfigWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var reloads atomic.Int32
	w, err := NewConfigWatcher(path, 200*time.Millisecond, func() {
		reloads.Add(1)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Start(context.Background())
	defer w.Stop()

	for i := 0; i < 5; i++ {
		os.WriteFile(path, []byte("a: 2\n"), 0600)
		time.Sleep(20 * time.Millisecond)
	}

	waitForReloads(t, &reloads, 1, 3*time.Second)
	time.Sleep(400 * time.Millisecond)

	if got := reloads.Load(); got > 2 {
		t.Errorf("expected burst collapsed to at most 2 reloads, got %d", got)
	}
}

func TestConfigWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var reloads atomic.Int32
	w, err := NewConfigWatcher(path, 50*time.Millisecond, func() {
		reloads.Add(1)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Start(context.Background())
	defer w.Stop()

	os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b: 1\n"), 0600)
	os.WriteFile(filepath.Join(dir, "config.yaml.swp"), []byte("x"), 0600)

	time.Sleep(300 * time.Millisecond)
	if got := reloads.Load(); got != 0 {
		t.Errorf("expected no reloads for sibling files, got %d", got)
	}
}

func TestConfigWatcherStopIsClean(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("a: 1\n"), 0600)

	w, err := NewConfigWatcher(path, 50*time.Millisecond, func() {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Start(context.Background())
	w.Stop()
}
