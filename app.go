package main

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/pleimann/clickpad/internal/action"
	"github.com/pleimann/clickpad/internal/config"
	"github.com/pleimann/clickpad/internal/display"
	"github.com/pleimann/clickpad/internal/gesture"
	"github.com/pleimann/clickpad/internal/gpio"
	"github.com/pleimann/clickpad/internal/hid"
	"github.com/pleimann/clickpad/internal/indicator"
	"github.com/pleimann/clickpad/internal/pty"
)

const reconnectInterval = time.Second

type App struct {
	config       *config.Config
	verbose      bool
	headless     bool
	pollInterval time.Duration

	hidDevice *hid.Device  // nil for the gpio source
	pins      *gpio.Reader // nil for the hid source

	bank           *gesture.Bank
	dispatcher     *action.Dispatcher
	indicator      *indicator.Indicator // hid only
	ptyManager     *pty.Manager
	displayManager *display.Manager // nil when disabled or without a device
	watcher        *config.Watcher
}

func newApp(configPath string, cfg *config.Config, verbose, headless bool) (*App, error) {
	app := &App{
		config:       cfg,
		verbose:      verbose,
		headless:     headless,
		pollInterval: time.Duration(cfg.Device.PollIntervalMs) * time.Millisecond,
	}

	if err := app.openInput(cfg.Device); err != nil {
		return nil, err
	}

	ptyManager, err := pty.NewManager(cfg.TUI)
	if err != nil {
		app.closeInput()
		return nil, fmt.Errorf("failed to create PTY manager: %w", err)
	}
	app.ptyManager = ptyManager

	keyDelay := time.Duration(cfg.TUI.KeyDelayMs) * time.Millisecond
	executor := action.NewExecutor(pty.NewWriter(ptyManager, keyDelay))
	app.dispatcher = action.NewDispatcher(cfg, executor)

	if app.hidDevice != nil {
		app.indicator = indicator.New(cfg, app.hidDevice)
		if !cfg.Display.Disabled {
			app.displayManager = display.NewManager(cfg.Display, app.hidDevice)
			app.displayManager.SetButtonCount(buttonCount(cfg))
		}
	}

	app.bank = gesture.NewBank(gesture.NewSystemClock(), app.handleGesture)
	app.syncButtons(cfg)

	watcher, err := config.NewWatcherWithConfig(configPath, cfg)
	if err != nil {
		app.closeInput()
		return nil, fmt.Errorf("failed to watch config: %w", err)
	}
	watcher.OnReload(app.applyConfig)
	app.watcher = watcher

	return app, nil
}

func (a *App) openInput(dev config.DeviceConfig) error {
	switch dev.Source {
	case config.SourceGPIO:
		pins, err := gpio.Open(dev.Pins)
		if err != nil {
			return fmt.Errorf("failed to open GPIO: %w", err)
		}
		a.pins = pins
	default:
		device, err := hid.NewDevice(dev.VendorID, dev.ProductID, a.verbose)
		if err != nil {
			return fmt.Errorf("failed to open HID device: %w", err)
		}
		a.hidDevice = device
	}
	return nil
}

func (a *App) closeInput() {
	if a.hidDevice != nil {
		a.hidDevice.Close()
	}
	if a.pins != nil {
		a.pins.Close()
	}
}

// buttonCount is how many cells an indicators region needs: up to the
// highest button index in use
func buttonCount(cfg *config.Config) int {
	n := 0
	for _, idx := range cfg.ButtonIndices() {
		n = max(n, idx+1)
	}
	return n
}

// syncButtons makes the bank track exactly the buttons of cfg
func (a *App) syncButtons(cfg *config.Config) {
	want := make(map[int]bool)
	for _, idx := range cfg.ButtonIndices() {
		want[idx] = true
		if err := a.bank.Add(idx, gesture.TimingFromConfig(cfg.TimingFor(idx))); err != nil {
			log.Printf("Ignoring button %d: %v", idx, err)
		}
	}
	for _, idx := range a.bank.Buttons() {
		if !want[idx] {
			a.bank.Remove(idx)
		}
	}
}

// handleGesture runs under the bank lock and must not call into the bank
func (a *App) handleGesture(g gesture.Gesture) {
	if a.verbose && g.Type != gesture.GestureLongPressHold {
		log.Printf("Gesture detected: %s", g)
	}

	if a.indicator != nil {
		if err := a.indicator.Handle(g); err != nil {
			log.Printf("Failed to update indicators: %v", err)
		}
		if a.displayManager != nil {
			a.displayManager.ShowIndicators(a.indicator.Mask())
		}
	}

	if a.displayManager != nil && g.Type != gesture.GestureLongPressHold {
		a.displayManager.ShowGesture(g)
	}

	if _, err := a.dispatcher.Dispatch(g); err != nil {
		log.Printf("Failed to execute action for %s: %v", g, err)
	}
}

// applyConfig is called by the watcher after a successful reload
func (a *App) applyConfig(cfg *config.Config) {
	if deviceChanged(a.config.Device, cfg.Device) || tuiChanged(a.config.TUI, cfg.TUI) {
		log.Println("Device or TUI settings changed; restart to apply them")
	}

	a.syncButtons(cfg)
	a.dispatcher.Reload(cfg)

	if a.indicator != nil {
		if err := a.indicator.Reload(cfg); err != nil {
			log.Printf("Failed to update indicators: %v", err)
		}
	}
	if a.displayManager != nil {
		a.displayManager.Reload(cfg.Display)
		a.displayManager.SetButtonCount(buttonCount(cfg))
		if a.indicator != nil {
			a.displayManager.ShowIndicators(a.indicator.Mask())
		}
	}

	a.config = cfg
	log.Printf("Configuration reloaded: %d button(s), %d action(s)", len(a.bank.Buttons()), a.dispatcher.Mapper().Len())
}

func deviceChanged(old, cur config.DeviceConfig) bool {
	return old.Source != cur.Source ||
		old.VendorID != cur.VendorID ||
		old.ProductID != cur.ProductID ||
		old.PollIntervalMs != cur.PollIntervalMs ||
		!slices.Equal(old.Pins, cur.Pins)
}

func tuiChanged(old, cur config.TUIConfig) bool {
	return old.Command != cur.Command ||
		old.WorkingDir != cur.WorkingDir ||
		old.KeyDelayMs != cur.KeyDelayMs ||
		!slices.Equal(old.Args, cur.Args)
}

func (a *App) Run(ctx context.Context) error {
	// Start PTY
	if err := a.ptyManager.Start(ctx); err != nil {
		a.closeInput()
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	if !a.headless {
		detach, err := attachTerminal(a.ptyManager)
		if err != nil {
			if a.verbose {
				log.Printf("Running headless: %v", err)
			}
		} else {
			defer detach()
		}
	}

	if a.displayManager != nil {
		a.displayManager.Start(ctx, a.ptyManager)
	}
	if a.indicator != nil {
		if err := a.indicator.Sync(); err != nil {
			log.Printf("Failed to reset indicators: %v", err)
		}
	}

	a.watcher.Start()

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	events := a.readEvents(ctx)
	var reconnected <-chan error

	for {
		select {
		case <-ctx.Done():
			a.shutdown()
			return nil

		case <-a.ptyManager.Done():
			if a.verbose {
				log.Println("TUI exited")
			}
			a.shutdown()
			return nil

		case event, ok := <-events:
			if !ok {
				events = nil
				if ctx.Err() == nil {
					reconnected = a.reconnect(ctx)
				}
				continue
			}
			a.bank.ProcessEvent(event)

		case err := <-reconnected:
			reconnected = nil
			if err != nil {
				continue
			}
			log.Println("Device reconnected")
			events = a.readEvents(ctx)
			if err := a.indicator.Sync(); err != nil {
				log.Printf("Failed to restore indicators: %v", err)
			}
			if a.displayManager != nil {
				a.displayManager.Resume()
			}

		case <-ticker.C:
			if a.pins != nil {
				a.bank.SetLevels(a.pins.Mask())
			} else {
				a.bank.Poll()
			}
		}
	}
}

// readEvents streams HID reports until the device fails or ctx is done, then
// closes the channel. It returns nil for the gpio source.
func (a *App) readEvents(ctx context.Context) <-chan hid.Event {
	if a.hidDevice == nil {
		return nil
	}

	events := make(chan hid.Event, 64)
	go func() {
		defer close(events)
		if err := a.hidDevice.ReadEvents(ctx, events); err != nil && ctx.Err() == nil {
			log.Printf("HID read error: %v", err)
		}
	}()
	return events
}

// reconnect drops in-flight gestures and waits for the device in the
// background
func (a *App) reconnect(ctx context.Context) <-chan error {
	log.Println("Device disconnected, waiting for it to come back")

	a.bank.Reset()
	if a.displayManager != nil {
		a.displayManager.Pause()
	}

	done := make(chan error, 1)
	go func() {
		done <- a.hidDevice.WaitForDevice(ctx, reconnectInterval)
	}()
	return done
}

func (a *App) shutdown() {
	if a.verbose {
		log.Println("Shutting down...")
	}
	a.watcher.Stop()
	if a.displayManager != nil {
		a.displayManager.Stop()
	}
	if a.indicator != nil {
		a.indicator.Clear()
	}
	a.ptyManager.Stop()
	a.closeInput()
}
