package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pleimann/clickpad/internal/gesture"
)

const (
	playgroundPollInterval = 10 * time.Millisecond
	playgroundLogSize      = 10
)

type pollMsg time.Time

type logEntry struct {
	at      uint32
	gesture gesture.Gesture
}

// Playground is a Bubble Tea model that feeds keyboard input into a single
// Recognizer and shows what it does. Space toggles the simulated button
// level since terminals do not report key releases.
type Playground struct {
	rec     *gesture.Recognizer
	clock   gesture.Clock
	pressed bool
	log     []logEntry
}

// NewPlayground creates a playground judging presses by t
func NewPlayground(t gesture.Timing, clock gesture.Clock) *Playground {
	p := &Playground{
		rec:   gesture.NewRecognizer(),
		clock: clock,
	}
	p.rec.Configure(t)

	p.rec.OnPressStart(p.record(gesture.GesturePressStart))
	p.rec.OnClick(p.record(gesture.GestureClick))
	p.rec.OnDoubleClick(p.record(gesture.GestureDoubleClick))
	p.rec.OnMultiClick(p.record(gesture.GestureMultiClick))
	p.rec.OnLongPressStart(p.record(gesture.GestureLongPressStart))
	p.rec.OnLongPressStop(p.record(gesture.GestureLongPressStop))
	// Every poll of a long press would flood the log; the state line shows
	// the hold instead.

	return p
}

func (p *Playground) record(t gesture.GestureType) gesture.Handler {
	return func(r *gesture.Recognizer) {
		p.log = append(p.log, logEntry{
			at: p.clock.NowMs(),
			gesture: gesture.Gesture{
				Type:   t,
				Clicks: r.ClickCount(),
				HeldMs: r.HeldDuration(),
			},
		})
		if len(p.log) > playgroundLogSize {
			p.log = p.log[len(p.log)-playgroundLogSize:]
		}
	}
}

// Toggle flips the simulated button level and polls right away so the edge
// is timestamped when the key arrived
func (p *Playground) Toggle() {
	p.pressed = !p.pressed
	p.Poll()
}

// Poll advances the recognizer with the current level
func (p *Playground) Poll() {
	p.rec.Poll(p.pressed, p.clock.NowMs())
}

// Reset releases the simulated button and drops any gesture in progress
func (p *Playground) Reset() {
	p.pressed = false
	p.rec.Reset()
}

// Gestures returns the logged gestures, oldest first
func (p *Playground) Gestures() []gesture.Gesture {
	out := make([]gesture.Gesture, len(p.log))
	for i, e := range p.log {
		out[i] = e.gesture
	}
	return out
}

func poll() tea.Cmd {
	return tea.Tick(playgroundPollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// Init starts the poll loop
func (p *Playground) Init() tea.Cmd {
	return poll()
}

// Update handles key presses and poll ticks
func (p *Playground) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ", "space":
			p.Toggle()
		case "r":
			p.Reset()
		case "c":
			p.log = nil
		case "q", "esc", "ctrl+c":
			return p, tea.Quit
		}
	case pollMsg:
		p.Poll()
		return p, poll()
	}
	return p, nil
}

// View renders the recognizer state and the gesture log
func (p *Playground) View() string {
	t := p.rec.Timing()

	level := LevelReleasedStyle.Render("released")
	if p.pressed {
		level = LevelPressedStyle.Render("PRESSED")
	}

	status := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s  %s", Bold("Level"), level),
		fmt.Sprintf("%s  %s", Bold("State"), StateStyle.Render(p.rec.State().String())),
		fmt.Sprintf("%s %d   %s %dms", Bold("Clicks"), p.rec.ClickCount(), Bold("Held"), p.rec.HeldDuration()),
		Muted(fmt.Sprintf("debounce %dms  click gap %dms  long press %dms", t.DebounceMs, t.ClickGapMs, t.LongPressMs)),
	)

	var lines []string
	for i := len(p.log) - 1; i >= 0; i-- {
		e := p.log[i]
		lines = append(lines, fmt.Sprintf("%s  %s", Muted(fmt.Sprintf("%8dms", e.at)), GestureStyle.Render(describe(e.gesture))))
	}
	if len(lines) == 0 {
		lines = append(lines, Muted("no gestures yet"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		Title("Gesture playground"),
		PanelStyle.Render(status),
		PanelStyle.Render(strings.Join(lines, "\n")),
		Muted("space toggle · r reset · c clear · q quit"),
	) + "\n"
}

func describe(g gesture.Gesture) string {
	switch g.Type {
	case gesture.GestureMultiClick:
		return fmt.Sprintf("%s x%d", g.Type, g.Clicks)
	case gesture.GestureLongPressStop:
		return fmt.Sprintf("%s after %dms", g.Type, g.HeldMs)
	default:
		return g.Type.String()
	}
}
