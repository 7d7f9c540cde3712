package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Input sources
const (
	SourceHID  = "hid"
	SourceGPIO = "gpio"
)

// Pin pull modes
const (
	PullOff  = "off"
	PullUp   = "up"
	PullDown = "down"
)

// Indicator modes
const (
	IndicatorNone   = "none"
	IndicatorToggle = "toggle"
	IndicatorHold   = "hold"
)

// Display region sources
const (
	RegionStatic     = "static"
	RegionTUIStatus  = "tui_status"
	RegionSystem     = "system"
	RegionGesture    = "gesture"
	RegionIndicators = "indicators"
)

// MaxButtons bounds button indices; levels travel as a 16-bit mask
const MaxButtons = 16

type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Timing  TimingConfig  `yaml:"timing"`
	TUI     TUIConfig     `yaml:"tui"`
	Buttons []Button      `yaml:"buttons"`
	Display DisplayConfig `yaml:"display"`
}

type DeviceConfig struct {
	Source         string      `yaml:"source"`
	VendorID       uint16      `yaml:"vendor_id"`
	ProductID      uint16      `yaml:"product_id"`
	PollIntervalMs int         `yaml:"poll_interval_ms"`
	Pins           []PinConfig `yaml:"pins,omitempty"`
}

// PinConfig maps a GPIO pin (BCM numbering) to a button index
type PinConfig struct {
	Button    int    `yaml:"button"`
	Pin       uint8  `yaml:"pin"`
	ActiveLow bool   `yaml:"active_low"`
	Pull      string `yaml:"pull,omitempty"`
}

// TimingConfig holds the gesture thresholds. In a button override a zero
// field inherits the global value. A zero global field takes the default, so
// the shortest debounce is 1ms, which at any real poll rate rejects nothing.
type TimingConfig struct {
	DebounceMs   uint16 `yaml:"debounce_ms,omitempty"`
	ClickGapMs   uint16 `yaml:"click_gap_ms,omitempty"`
	LongPressMs  uint16 `yaml:"long_press_ms,omitempty"`
	HoldRepeatMs int    `yaml:"hold_repeat_ms,omitempty"`
}

type TUIConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	WorkingDir string   `yaml:"working_dir,omitempty"`
	KeyDelayMs int      `yaml:"key_delay_ms,omitempty"`
}

type Button struct {
	Index     int           `yaml:"index"`
	Name      string        `yaml:"name,omitempty"`
	Timing    *TimingConfig `yaml:"timing,omitempty"`
	Indicator string        `yaml:"indicator,omitempty"`

	PressStart     *KeyAction `yaml:"press_start,omitempty"`
	Click          *KeyAction `yaml:"click,omitempty"`
	DoubleClick    *KeyAction `yaml:"double_click,omitempty"`
	MultiClick     *KeyAction `yaml:"multi_click,omitempty"`
	LongPressStart *KeyAction `yaml:"long_press_start,omitempty"`
	LongPressHold  *KeyAction `yaml:"long_press_hold,omitempty"`
	LongPressStop  *KeyAction `yaml:"long_press_stop,omitempty"`
}

type KeyAction struct {
	Keys []string `yaml:"keys"`
}

// Actions returns the configured key actions keyed by gesture name
func (b Button) Actions() map[string]*KeyAction {
	all := map[string]*KeyAction{
		"press_start":      b.PressStart,
		"click":            b.Click,
		"double_click":     b.DoubleClick,
		"multi_click":      b.MultiClick,
		"long_press_start": b.LongPressStart,
		"long_press_hold":  b.LongPressHold,
		"long_press_stop":  b.LongPressStop,
	}
	for name, a := range all {
		if a == nil {
			delete(all, name)
		}
	}
	return all
}

type DisplayConfig struct {
	Disabled         bool            `yaml:"disabled,omitempty"`
	Width            int             `yaml:"width"`
	Height           int             `yaml:"height"`
	UpdateIntervalMs int             `yaml:"update_interval_ms"`
	Regions          []DisplayRegion `yaml:"regions,omitempty"`
}

type DisplayRegion struct {
	Name    string `yaml:"name"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Source  string `yaml:"source"`
	Content string `yaml:"content,omitempty"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validateTiming(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Device.Source {
	case "", SourceHID:
		if c.Device.VendorID == 0 {
			return fmt.Errorf("device.vendor_id is required")
		}
		if c.Device.ProductID == 0 {
			return fmt.Errorf("device.product_id is required")
		}
	case SourceGPIO:
		if err := validatePins(c.Device.Pins); err != nil {
			return err
		}
	default:
		return fmt.Errorf("device.source must be %q or %q, got %q", SourceHID, SourceGPIO, c.Device.Source)
	}

	if c.TUI.Command == "" {
		return fmt.Errorf("tui.command is required")
	}

	// Validate button indices are unique
	seen := make(map[int]bool)
	for _, btn := range c.Buttons {
		if btn.Index < 0 || btn.Index >= MaxButtons {
			return fmt.Errorf("button index %d out of range 0-%d", btn.Index, MaxButtons-1)
		}
		if seen[btn.Index] {
			return fmt.Errorf("duplicate button index: %d", btn.Index)
		}
		seen[btn.Index] = true

		switch btn.Indicator {
		case "", IndicatorNone, IndicatorToggle, IndicatorHold:
		default:
			return fmt.Errorf("button %d: unknown indicator mode %q", btn.Index, btn.Indicator)
		}
	}

	for _, r := range c.Display.Regions {
		switch r.Source {
		case RegionStatic, RegionTUIStatus, RegionSystem, RegionGesture, RegionIndicators:
		default:
			return fmt.Errorf("display region %q: unknown source %q", r.Name, r.Source)
		}
	}

	return nil
}

func validatePins(pins []PinConfig) error {
	if len(pins) == 0 {
		return fmt.Errorf("device.pins is required for the gpio source")
	}

	seen := make(map[int]bool)
	for _, p := range pins {
		if p.Button < 0 || p.Button >= MaxButtons {
			return fmt.Errorf("pin %d: button index %d out of range 0-%d", p.Pin, p.Button, MaxButtons-1)
		}
		if seen[p.Button] {
			return fmt.Errorf("duplicate pin for button %d", p.Button)
		}
		seen[p.Button] = true

		switch p.Pull {
		case "", PullOff, PullUp, PullDown:
		default:
			return fmt.Errorf("pin %d: unknown pull mode %q", p.Pin, p.Pull)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Device.Source == "" {
		c.Device.Source = SourceHID
	}
	if c.Device.PollIntervalMs == 0 {
		c.Device.PollIntervalMs = 10
	}
	if c.Timing.DebounceMs == 0 {
		c.Timing.DebounceMs = 50
	}
	if c.Timing.ClickGapMs == 0 {
		c.Timing.ClickGapMs = 400
	}
	if c.Timing.LongPressMs == 0 {
		c.Timing.LongPressMs = 800
	}
	if c.Timing.HoldRepeatMs == 0 {
		c.Timing.HoldRepeatMs = 200
	}
	if c.Display.Width == 0 {
		c.Display.Width = 128
	}
	if c.Display.Height == 0 {
		c.Display.Height = 64
	}
	if c.Display.UpdateIntervalMs == 0 {
		c.Display.UpdateIntervalMs = 100
	}
}

func (c *Config) validateTiming() error {
	if err := checkOrder(c.Timing); err != nil {
		return fmt.Errorf("timing: %w", err)
	}
	for _, btn := range c.Buttons {
		if err := checkOrder(c.TimingFor(btn.Index)); err != nil {
			return fmt.Errorf("button %d timing: %w", btn.Index, err)
		}
	}
	return nil
}

func checkOrder(t TimingConfig) error {
	if t.DebounceMs >= t.LongPressMs {
		return fmt.Errorf("debounce_ms (%d) must be below long_press_ms (%d)", t.DebounceMs, t.LongPressMs)
	}
	// A repress only counts once the debounce window after the release has
	// passed, which has to happen inside the click gap.
	if t.ClickGapMs <= t.DebounceMs {
		return fmt.Errorf("click_gap_ms (%d) must be above debounce_ms (%d)", t.ClickGapMs, t.DebounceMs)
	}
	return nil
}

// TimingFor returns the global timing with the button's overrides applied
func (c *Config) TimingFor(index int) TimingConfig {
	t := c.Timing
	btn := c.ButtonByIndex(index)
	if btn == nil || btn.Timing == nil {
		return t
	}

	o := btn.Timing
	if o.DebounceMs != 0 {
		t.DebounceMs = o.DebounceMs
	}
	if o.ClickGapMs != 0 {
		t.ClickGapMs = o.ClickGapMs
	}
	if o.LongPressMs != 0 {
		t.LongPressMs = o.LongPressMs
	}
	if o.HoldRepeatMs != 0 {
		t.HoldRepeatMs = o.HoldRepeatMs
	}
	return t
}

// ButtonByIndex returns the button mapping for an index, or nil
func (c *Config) ButtonByIndex(index int) *Button {
	for i := range c.Buttons {
		if c.Buttons[i].Index == index {
			return &c.Buttons[i]
		}
	}
	return nil
}

// ButtonIndices returns every button the input source delivers. For GPIO
// that is the configured pins, for HID the mapped buttons.
func (c *Config) ButtonIndices() []int {
	var indices []int
	if c.Device.Source == SourceGPIO {
		for _, p := range c.Device.Pins {
			indices = append(indices, p.Button)
		}
		return indices
	}
	for _, btn := range c.Buttons {
		indices = append(indices, btn.Index)
	}
	return indices
}

// UpdateDeviceIDs updates the vendor_id and product_id in a config file
// while preserving the rest of the file structure and comments
func UpdateDeviceIDs(path string, vendorID, productID uint16) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content := string(data)

	// Update vendor_id (YAML format: vendor_id: 0x1234 or vendor_id: 1234)
	vendorRegex := regexp.MustCompile(`(?m)^(\s*vendor_id:\s*)(?:0x[0-9A-Fa-f]+|\d+)`)
	content = vendorRegex.ReplaceAllString(content, fmt.Sprintf("${1}0x%04X", vendorID))

	productRegex := regexp.MustCompile(`(?m)^(\s*product_id:\s*)(?:0x[0-9A-Fa-f]+|\d+)`)
	content = productRegex.ReplaceAllString(content, fmt.Sprintf("${1}0x%04X", productID))

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateDefaultConfig creates a new config file with default values and the specified device
func CreateDefaultConfig(path string, vendorID, productID uint16) error {
	content := fmt.Sprintf(`# clickpad configuration

device:
  source: hid
  vendor_id: 0x%04X
  product_id: 0x%04X
  poll_interval_ms: 10

timing:
  debounce_ms: 50
  click_gap_ms: 400
  long_press_ms: 800
  hold_repeat_ms: 200

tui:
  command: "your-tui-app"
  args: []

# Button mappings
buttons:
  - index: 0
    name: btn_0
    indicator: toggle
    click:
      keys: ["enter"]
    double_click:
      keys: ["esc"]
    long_press_hold:
      keys: ["down"]

display:
  width: 128
  height: 64
  update_interval_ms: 100
  regions:
    - name: last_gesture
      x: 0
      y: 0
      width: 128
      height: 32
      source: gesture
`, vendorID, productID)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// Exists checks if a config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
