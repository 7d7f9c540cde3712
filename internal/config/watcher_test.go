package config

import (
	"fmt"
	"os"
	"testing"
	"time"
)

const watchedConfig = `
device:
  vendor_id: 0x1234
  product_id: 0x5678
timing:
  click_gap_ms: %d
tui:
  command: "test-app"
`

func TestWatcherReloads(t *testing.T) {
	path := writeConfig(t, fmt.Sprintf(watchedConfig, 300))

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	reloaded := make(chan *Config, 16)
	w.OnReload(func(cfg *Config) { reloaded <- cfg })
	w.Start()

	// An invalid file keeps the previous config.
	if err := os.WriteFile(path, []byte("tui: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(fmt.Sprintf(watchedConfig, 450)), 0644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Timing.ClickGapMs != 450 {
				continue
			}
			if got := w.Get().Timing.ClickGapMs; got != 450 {
				t.Errorf("Get().Timing.ClickGapMs = %d, want 450", got)
			}
			return
		case <-timeout:
			t.Fatalf("no reload with the new click gap, Get() has %d", w.Get().Timing.ClickGapMs)
		}
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	path := writeConfig(t, fmt.Sprintf(watchedConfig, 300))

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	reloaded := make(chan *Config, 1)
	w.OnReload(func(cfg *Config) { reloaded <- cfg })
	w.Start()

	if err := os.WriteFile(path+".bak", []byte(fmt.Sprintf(watchedConfig, 450)), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		t.Error("reloaded after a write to another file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStopTwice(t *testing.T) {
	w, err := NewWatcher(writeConfig(t, fmt.Sprintf(watchedConfig, 300)))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.Start()
	w.Stop()
	w.Stop()
}
