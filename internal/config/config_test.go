package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	return configPath
}

func TestLoad(t *testing.T) {
	content := `
device:
  vendor_id: 0x1234
  product_id: 0x5678
  poll_interval_ms: 20

timing:
  debounce_ms: 30
  click_gap_ms: 250
  long_press_ms: 600
  hold_repeat_ms: 100

tui:
  command: "test-app"
  args: ["--flag", "value"]
  working_dir: "/tmp"
  key_delay_ms: 5

buttons:
  - index: 0
    name: btn_a
    indicator: toggle
    click:
      keys: ["ctrl+c"]
    double_click:
      keys: ["ctrl+z"]
    long_press_start:
      keys: ["q", "enter"]

  - index: 1
    name: btn_b
    timing:
      long_press_ms: 1500
    indicator: hold
    long_press_hold:
      keys: ["down"]

display:
  width: 128
  height: 64
  update_interval_ms: 50
  regions:
    - name: status
      x: 0
      y: 0
      width: 128
      height: 32
      source: gesture
`

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Source != SourceHID {
		t.Errorf("Source = %q, want default %q", cfg.Device.Source, SourceHID)
	}
	if cfg.Device.VendorID != 0x1234 {
		t.Errorf("VendorID = 0x%04X, want 0x1234", cfg.Device.VendorID)
	}
	if cfg.Device.ProductID != 0x5678 {
		t.Errorf("ProductID = 0x%04X, want 0x5678", cfg.Device.ProductID)
	}
	if cfg.Device.PollIntervalMs != 20 {
		t.Errorf("PollIntervalMs = %d, want 20", cfg.Device.PollIntervalMs)
	}

	wantTiming := TimingConfig{DebounceMs: 30, ClickGapMs: 250, LongPressMs: 600, HoldRepeatMs: 100}
	if cfg.Timing != wantTiming {
		t.Errorf("Timing = %+v, want %+v", cfg.Timing, wantTiming)
	}

	if cfg.TUI.Command != "test-app" {
		t.Errorf("Command = %q, want %q", cfg.TUI.Command, "test-app")
	}
	if len(cfg.TUI.Args) != 2 || cfg.TUI.Args[0] != "--flag" {
		t.Errorf("Args = %v, want [--flag value]", cfg.TUI.Args)
	}
	if cfg.TUI.KeyDelayMs != 5 {
		t.Errorf("KeyDelayMs = %d, want 5", cfg.TUI.KeyDelayMs)
	}

	if len(cfg.Buttons) != 2 {
		t.Fatalf("len(Buttons) = %d, want 2", len(cfg.Buttons))
	}
	btn := cfg.Buttons[0]
	if btn.Index != 0 || btn.Name != "btn_a" || btn.Indicator != IndicatorToggle {
		t.Errorf("Button[0] = {%d, %s, %s}, want {0, btn_a, toggle}", btn.Index, btn.Name, btn.Indicator)
	}
	if btn.Click == nil || !reflect.DeepEqual(btn.Click.Keys, []string{"ctrl+c"}) {
		t.Errorf("Button[0].Click = %+v, want [ctrl+c]", btn.Click)
	}
	if btn.LongPressStart == nil || len(btn.LongPressStart.Keys) != 2 {
		t.Errorf("Button[0].LongPressStart = %+v, want [q enter]", btn.LongPressStart)
	}
	if cfg.Buttons[1].Timing == nil || cfg.Buttons[1].Timing.LongPressMs != 1500 {
		t.Errorf("Button[1].Timing = %+v, want long_press_ms 1500", cfg.Buttons[1].Timing)
	}

	if cfg.Display.UpdateIntervalMs != 50 {
		t.Errorf("UpdateIntervalMs = %d, want 50", cfg.Display.UpdateIntervalMs)
	}
	if len(cfg.Display.Regions) != 1 || cfg.Display.Regions[0].Source != "gesture" {
		t.Errorf("Display.Regions = %+v, want one gesture region", cfg.Display.Regions)
	}
}

func TestLoadDefaults(t *testing.T) {
	content := `
device:
  vendor_id: 0x1234
  product_id: 0x5678

tui:
  command: "test-app"
`

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.PollIntervalMs != 10 {
		t.Errorf("PollIntervalMs = %d, want default 10", cfg.Device.PollIntervalMs)
	}
	wantTiming := TimingConfig{DebounceMs: 50, ClickGapMs: 400, LongPressMs: 800, HoldRepeatMs: 200}
	if cfg.Timing != wantTiming {
		t.Errorf("Timing = %+v, want defaults %+v", cfg.Timing, wantTiming)
	}
	if cfg.Display.Width != 128 || cfg.Display.Height != 64 {
		t.Errorf("Display size = %dx%d, want default 128x64", cfg.Display.Width, cfg.Display.Height)
	}
	if cfg.Display.UpdateIntervalMs != 100 {
		t.Errorf("Display.UpdateIntervalMs = %d, want default 100", cfg.Display.UpdateIntervalMs)
	}
	if cfg.Display.Disabled {
		t.Error("Display.Disabled = true, want false by default")
	}
}

func TestLoadGPIO(t *testing.T) {
	content := `
device:
  source: gpio
  pins:
    - button: 0
      pin: 17
      active_low: true
      pull: up
    - button: 3
      pin: 27

tui:
  command: "test-app"
`

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []PinConfig{
		{Button: 0, Pin: 17, ActiveLow: true, Pull: PullUp},
		{Button: 3, Pin: 27},
	}
	if !reflect.DeepEqual(cfg.Device.Pins, want) {
		t.Errorf("Pins = %+v, want %+v", cfg.Device.Pins, want)
	}
	if got := cfg.ButtonIndices(); !reflect.DeepEqual(got, []int{0, 3}) {
		t.Errorf("ButtonIndices() = %v, want [0 3]", got)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing vendor_id",
			content: `
device:
  product_id: 0x5678
tui:
  command: "test"
`,
			wantErr: "vendor_id is required",
		},
		{
			name: "missing product_id",
			content: `
device:
  vendor_id: 0x1234
tui:
  command: "test"
`,
			wantErr: "product_id is required",
		},
		{
			name: "unknown source",
			content: `
device:
  source: serial
tui:
  command: "test"
`,
			wantErr: "device.source must be",
		},
		{
			name: "gpio without pins",
			content: `
device:
  source: gpio
tui:
  command: "test"
`,
			wantErr: "device.pins is required",
		},
		{
			name: "gpio duplicate button",
			content: `
device:
  source: gpio
  pins:
    - {button: 1, pin: 17}
    - {button: 1, pin: 27}
tui:
  command: "test"
`,
			wantErr: "duplicate pin for button 1",
		},
		{
			name: "gpio bad pull",
			content: `
device:
  source: gpio
  pins:
    - {button: 1, pin: 17, pull: sideways}
tui:
  command: "test"
`,
			wantErr: "unknown pull mode",
		},
		{
			name: "missing tui command",
			content: `
device:
  vendor_id: 0x1234
  product_id: 0x5678
`,
			wantErr: "command is required",
		},
		{
			name: "duplicate button index",
			content: `
device:
  vendor_id: 0x1234
  product_id: 0x5678
tui:
  command: "test"
buttons:
  - index: 0
  - index: 0
`,
			wantErr: "duplicate button index",
		},
		{
			name: "button index out of range",
			content: `
device:
  vendor_id: 0x1234
  product_id: 0x5678
tui:
  command: "test"
buttons:
  - index: 16
`,
			wantErr: "out of range",
		},
		{
			name: "unknown indicator",
			content: `
device:
  vendor_id: 0x1234
  product_id: 0x5678
tui:
  command: "test"
buttons:
  - index: 0
    indicator: blink
`,
			wantErr: "unknown indicator mode",
		},
		{
			name: "debounce above long press",
			content: `
device:
  vendor_id: 0x1234
  product_id: 0x5678
timing:
  debounce_ms: 900
tui:
  command: "test"
`,
			wantErr: "must be below long_press_ms",
		},
		{
			name: "click gap within debounce",
			content: `
device:
  vendor_id: 0x1234
  product_id: 0x5678
timing:
  debounce_ms: 100
  click_gap_ms: 100
tui:
  command: "test"
`,
			wantErr: "click_gap_ms (100) must be above debounce_ms (100)",
		},
		{
			name: "button override click gap within debounce",
			content: `
device:
  vendor_id: 0x1234
  product_id: 0x5678
tui:
  command: "test"
buttons:
  - index: 1
    timing:
      click_gap_ms: 20
`,
			wantErr: "button 1 timing: click_gap_ms (20) must be above debounce_ms (50)",
		},
		{
			name: "button override breaks order",
			content: `
device:
  vendor_id: 0x1234
  product_id: 0x5678
tui:
  command: "test"
buttons:
  - index: 2
    timing:
      long_press_ms: 40
`,
			wantErr: "button 2 timing",
		},
		{
			name: "unknown region source",
			content: `
device:
  vendor_id: 0x1234
  product_id: 0x5678
tui:
  command: "test"
display:
  regions:
    - name: clock
      source: weather
`,
			wantErr: "unknown source",
		},
		{
			name: "threshold overflows uint16",
			content: `
device:
  vendor_id: 0x1234
  product_id: 0x5678
timing:
  long_press_ms: 70000
tui:
  command: "test"
`,
			wantErr: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file, got nil")
	}
}

func TestTimingFor(t *testing.T) {
	cfg := &Config{
		Timing: TimingConfig{DebounceMs: 50, ClickGapMs: 400, LongPressMs: 800, HoldRepeatMs: 200},
		Buttons: []Button{
			{Index: 0},
			{Index: 1, Timing: &TimingConfig{DebounceMs: 20, HoldRepeatMs: 50}},
		},
	}

	tests := []struct {
		index int
		want  TimingConfig
	}{
		{0, TimingConfig{DebounceMs: 50, ClickGapMs: 400, LongPressMs: 800, HoldRepeatMs: 200}},
		{1, TimingConfig{DebounceMs: 20, ClickGapMs: 400, LongPressMs: 800, HoldRepeatMs: 50}},
		{7, TimingConfig{DebounceMs: 50, ClickGapMs: 400, LongPressMs: 800, HoldRepeatMs: 200}},
	}

	for _, tt := range tests {
		if got := cfg.TimingFor(tt.index); got != tt.want {
			t.Errorf("TimingFor(%d) = %+v, want %+v", tt.index, got, tt.want)
		}
	}
}

func TestButtonActions(t *testing.T) {
	btn := Button{
		Click:         &KeyAction{Keys: []string{"enter"}},
		LongPressHold: &KeyAction{Keys: []string{"down"}},
	}

	got := btn.Actions()
	if len(got) != 2 {
		t.Fatalf("len(Actions()) = %d, want 2: %v", len(got), got)
	}
	if got["click"] != btn.Click {
		t.Errorf("Actions()[click] = %v, want %v", got["click"], btn.Click)
	}
	if got["long_press_hold"] != btn.LongPressHold {
		t.Errorf("Actions()[long_press_hold] = %v, want %v", got["long_press_hold"], btn.LongPressHold)
	}
}

func TestUpdateDeviceIDs(t *testing.T) {
	content := `# Test config
device:
  vendor_id: 0x1234
  product_id: 0x5678
  poll_interval_ms: 10

tui:
  command: "test"
`
	configPath := writeConfig(t, content)

	if err := UpdateDeviceIDs(configPath, 0xABCD, 0xEF01); err != nil {
		t.Fatalf("UpdateDeviceIDs() error = %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}

	result := string(data)
	if !strings.Contains(result, "vendor_id: 0xABCD") {
		t.Errorf("vendor_id not updated correctly in: %s", result)
	}
	if !strings.Contains(result, "product_id: 0xEF01") {
		t.Errorf("product_id not updated correctly in: %s", result)
	}
	if !strings.Contains(result, "# Test config") {
		t.Errorf("comment not preserved in: %s", result)
	}
}

func TestUpdateDeviceIDsDecimal(t *testing.T) {
	content := `device:
  vendor_id: 4660
  product_id: 22136

tui:
  command: "test"
`
	configPath := writeConfig(t, content)

	if err := UpdateDeviceIDs(configPath, 0x1111, 0x2222); err != nil {
		t.Fatalf("UpdateDeviceIDs() error = %v", err)
	}

	data, _ := os.ReadFile(configPath)
	result := string(data)
	if !strings.Contains(result, "vendor_id: 0x1111") {
		t.Errorf("vendor_id not updated correctly in: %s", result)
	}
	if !strings.Contains(result, "product_id: 0x2222") {
		t.Errorf("product_id not updated correctly in: %s", result)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "new-config.yaml")

	if err := CreateDefaultConfig(configPath, 0x1234, 0x5678); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}

	if !Exists(configPath) {
		t.Fatal("Config file was not created")
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load created config: %v", err)
	}

	if cfg.Device.VendorID != 0x1234 {
		t.Errorf("VendorID = 0x%04X, want 0x1234", cfg.Device.VendorID)
	}
	if cfg.Device.ProductID != 0x5678 {
		t.Errorf("ProductID = 0x%04X, want 0x5678", cfg.Device.ProductID)
	}
	if len(cfg.Buttons) != 1 || cfg.Buttons[0].Click == nil {
		t.Errorf("Buttons = %+v, want one button with a click action", cfg.Buttons)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	if Exists(filepath.Join(tmpDir, "nonexistent.yaml")) {
		t.Error("Exists() = true for non-existent file")
	}

	existingPath := filepath.Join(tmpDir, "exists.yaml")
	os.WriteFile(existingPath, []byte("test"), 0644)

	if !Exists(existingPath) {
		t.Error("Exists() = false for existing file")
	}
}
