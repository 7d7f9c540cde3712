package display

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/pleimann/clickpad/internal/config"
	"github.com/pleimann/clickpad/internal/gesture"
	"github.com/pleimann/clickpad/internal/hid"
)

// FrameSink receives encoded display frames, normally the HID device
type FrameSink interface {
	SendFrame(frame *hid.DisplayFrame) error
}

// OutputSource supplies recent TUI output for tui_status regions
type OutputSource interface {
	GetRecentOutput() string
}

// Lines like "STATUS: text" in the TUI output feed tui_status regions
var statusPattern = regexp.MustCompile(`(?m)^STATUS:\s*(.+)$`)

const (
	buttonCell   = 6
	textBaseline = 12
)

// Manager renders the configured regions and pushes changed frames to the
// device on every update tick.
type Manager struct {
	sink     FrameSink
	renderer *Renderer
	encoder  *FrameEncoder
	now      func() time.Time

	mu      sync.Mutex
	config  config.DisplayConfig
	regions []*regionState
	buttons int
	mask    uint16
	dirty   bool
	paused  bool
	cancel  context.CancelFunc
}

type regionState struct {
	config  config.DisplayRegion
	content string
}

// NewManager creates a new display manager
func NewManager(cfg config.DisplayConfig, sink FrameSink) *Manager {
	m := &Manager{
		sink:     sink,
		renderer: NewRenderer(cfg.Width, cfg.Height),
		encoder:  NewFrameEncoder(cfg.Width, cfg.Height),
		now:      time.Now,
		buttons:  config.MaxButtons,
	}
	m.setRegions(cfg, nil)
	return m
}

func (m *Manager) setRegions(cfg config.DisplayConfig, previous []*regionState) {
	kept := make(map[string]string)
	for _, r := range previous {
		if r.config.Source != config.RegionStatic {
			kept[r.config.Name] = r.content
		}
	}

	m.config = cfg
	m.regions = m.regions[:0]
	for _, rc := range cfg.Regions {
		content := rc.Content
		if c, ok := kept[rc.Name]; ok {
			content = c
		}
		m.regions = append(m.regions, &regionState{config: rc, content: content})
	}
	m.dirty = true
}

// Start runs the update loop until ctx is done or Stop is called. src may be
// nil when no TUI output is available.
func (m *Manager) Start(ctx context.Context, src OutputSource) {
	ctx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.cancel = cancel
	interval := time.Duration(m.config.UpdateIntervalMs) * time.Millisecond
	m.mu.Unlock()

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.update(src); err != nil {
					log.Printf("Display update failed: %v", err)
				}
			}
		}
	}()
}

// Stop stops the update loop and clears the screen
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if m.sink != nil {
		m.sink.SendFrame(m.encoder.EncodeClear())
	}
}

// SetButtonCount sets how many cells indicators regions draw
func (m *Manager) SetButtonCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n = min(max(n, 0), config.MaxButtons)
	if n != m.buttons {
		m.buttons = n
		m.dirty = true
	}
}

// SetRegionContent sets the content of a named region
func (m *Manager) SetRegionContent(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.regions {
		if r.config.Name == name {
			m.setContent(r, content)
		}
	}
}

// ShowGesture puts a gesture into every gesture region
func (m *Manager) ShowGesture(g gesture.Gesture) {
	m.setSource(config.RegionGesture, g.String())
}

// ShowIndicators redraws indicators regions for a new LED mask
func (m *Manager) ShowIndicators(mask uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mask != m.mask {
		m.mask = mask
		m.dirty = true
	}
}

// Reload applies a new region layout. Dynamic content survives for regions
// that keep their name.
func (m *Manager) Reload(cfg config.DisplayConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := append([]*regionState(nil), m.regions...)
	if cfg.Width != m.config.Width || cfg.Height != m.config.Height {
		m.renderer = NewRenderer(cfg.Width, cfg.Height)
		m.encoder = NewFrameEncoder(cfg.Width, cfg.Height)
	}
	m.setRegions(cfg, previous)
}

// Pause stops sending frames, e.g. while the device is unplugged. Content
// changes are still tracked.
func (m *Manager) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
}

// Resume sends frames again, starting with a full redraw
func (m *Manager) Resume() {
	m.mu.Lock()
	m.paused = false
	m.dirty = true
	m.mu.Unlock()
}

func (m *Manager) setSource(source, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.regions {
		if r.config.Source == source {
			m.setContent(r, content)
		}
	}
}

func (m *Manager) setContent(r *regionState, content string) {
	if r.content != content {
		r.content = content
		m.dirty = true
	}
}

// update performs one display update cycle
func (m *Manager) update(src OutputSource) error {
	var status string
	if src != nil {
		if match := statusPattern.FindStringSubmatch(src.GetRecentOutput()); len(match) == 2 {
			status = match[1]
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.regions {
		switch r.config.Source {
		case config.RegionTUIStatus:
			if status != "" {
				m.setContent(r, status)
			}
		case config.RegionSystem:
			m.setContent(r, m.now().Format("15:04:05"))
		}
	}

	if !m.dirty || m.paused {
		return nil
	}

	m.renderer.Clear()
	for _, r := range m.regions {
		m.renderRegion(r)
	}

	for _, frame := range m.encoder.ChunkFrame(m.renderer.GetFrameBuffer()) {
		if err := m.sink.SendFrame(frame); err != nil {
			// Stay dirty so the next tick retries.
			return fmt.Errorf("failed to send frame: %w", err)
		}
	}
	m.dirty = false
	return nil
}

func (m *Manager) renderRegion(r *regionState) {
	cfg := r.config

	switch cfg.Source {
	case config.RegionStatic, config.RegionTUIStatus, config.RegionGesture:
		m.renderer.DrawTextWrapped(cfg.X+2, cfg.Y+textBaseline, cfg.Width-4, r.content)
	case config.RegionSystem:
		m.renderer.DrawText(cfg.X+2, cfg.Y+textBaseline, r.content)
	case config.RegionIndicators:
		m.renderer.DrawButtonRow(cfg.X+1, cfg.Y+1, buttonCell, m.buttons, m.mask)
	}
}
