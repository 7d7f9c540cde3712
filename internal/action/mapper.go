package action

import (
	"sync"

	"github.com/pleimann/clickpad/internal/config"
	"github.com/pleimann/clickpad/internal/gesture"
)

// Mapper maps gestures to key sequences based on configuration
type Mapper struct {
	mu   sync.RWMutex
	keys map[string][]string // gesture.Key() -> keys
}

// NewMapper creates a new action mapper from configuration
func NewMapper(cfg *config.Config) *Mapper {
	return &Mapper{keys: buildKeyMap(cfg)}
}

func buildKeyMap(cfg *config.Config) map[string][]string {
	keys := make(map[string][]string)
	for _, btn := range cfg.Buttons {
		for name, a := range btn.Actions() {
			t, err := gesture.ParseGestureType(name)
			if err != nil || len(a.Keys) == 0 {
				continue
			}
			keys[gesture.KeyFor(t, btn.Index)] = a.Keys
		}
	}
	return keys
}

// Map returns the key sequence for a gesture, or nil if not mapped
func (m *Mapper) Map(g gesture.Gesture) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.keys[g.Key()]
}

// Len returns the number of mapped gestures
func (m *Mapper) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Reload updates the mapper with new configuration
func (m *Mapper) Reload(cfg *config.Config) {
	keys := buildKeyMap(cfg)
	m.mu.Lock()
	m.keys = keys
	m.mu.Unlock()
}
