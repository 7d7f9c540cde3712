package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/pleimann/clickpad/internal/config"
	"github.com/pleimann/clickpad/internal/gesture"
	"github.com/pleimann/clickpad/internal/hid"
	"github.com/pleimann/clickpad/internal/ui"
)

const Version = "0.2.0"

func main() {
	// Check for subcommands first
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "list-devices":
			runListDevices()
			return
		case "set-device", "select-device":
			runSetDevice(os.Args[2:])
			return
		case "simulate":
			runSimulate(os.Args[2:])
			return
		case "help", "-h", "--help":
			printUsage()
			os.Exit(0)
		}
	}

	// Main command flags
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	headless := flag.Bool("headless", false, "do not attach the TUI to this terminal")
	version := flag.Bool("version", false, "print version and exit")

	flag.Usage = printUsage
	flag.Parse()

	if *version {
		ui.PrintVersion(Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *verbose {
		log.Printf("Loaded configuration from %s", *configPath)
		switch cfg.Device.Source {
		case config.SourceGPIO:
			log.Printf("Device: GPIO, %d pin(s)", len(cfg.Device.Pins))
		default:
			log.Printf("Device: VendorID=0x%04X, ProductID=0x%04X",
				cfg.Device.VendorID, cfg.Device.ProductID)
		}
		log.Printf("TUI command: %s %v", cfg.TUI.Command, cfg.TUI.Args)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	app, err := newApp(*configPath, cfg, *verbose, *headless)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	go func() {
		<-sigChan
		if *verbose {
			log.Println("Received shutdown signal")
		}
		cancel()
	}()

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Application error: %v", err)
	}

	if *verbose {
		log.Println("Shutdown complete")
	}
}

func printUsage() {
	ui.PrintUsage(Version)
}

// requireTerminal exits unless stdin is an interactive terminal
func requireTerminal(command string) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		ui.PrintFatalError(command+" needs an interactive terminal", "stdin is not a TTY")
		os.Exit(1)
	}
}

// listDevices returns one entry per vendor/product pair with the number of
// HID interfaces it exposes
func listDevices() ([]ui.DeviceInfo, error) {
	devices, err := hid.ListDevices()
	if err != nil {
		return nil, err
	}

	interfaces := make(map[uint32]int)
	for _, d := range devices {
		interfaces[uint32(d.VendorID)<<16|uint32(d.ProductID)]++
	}

	unique := hid.Unique(devices)
	result := make([]ui.DeviceInfo, len(unique))
	for i, d := range unique {
		result[i] = ui.DeviceInfo{
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
			Interfaces:   interfaces[uint32(d.VendorID)<<16|uint32(d.ProductID)],
		}
	}
	return result, nil
}

// runListDevices handles the list-devices subcommand
func runListDevices() {
	devices, err := listDevices()
	if err != nil {
		ui.PrintFatalError("Failed to list devices", err.Error())
		os.Exit(1)
	}
	ui.PrintDeviceList(devices)
}

// runSetDevice handles the set-device subcommand
func runSetDevice(args []string) {
	fs := flag.NewFlagSet("set-device", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	fs.Usage = func() {
		ui.PrintSetDeviceUsage()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	remaining := fs.Args()

	var vendorID, productID uint16

	if len(remaining) >= 2 {
		// Parse provided IDs
		vid, err := parseID(remaining[0])
		if err != nil {
			ui.PrintFatalError("Invalid vendor_id", fmt.Sprintf("%q: %v", remaining[0], err))
			os.Exit(1)
		}
		pid, err := parseID(remaining[1])
		if err != nil {
			ui.PrintFatalError("Invalid product_id", fmt.Sprintf("%q: %v", remaining[1], err))
			os.Exit(1)
		}
		vendorID = vid
		productID = pid
	} else if len(remaining) == 1 {
		ui.PrintFatalError("Invalid arguments", "Both vendor_id and product_id must be provided, or neither")
		os.Exit(1)
	} else {
		// Interactive selection
		requireTerminal("set-device")
		device, err := selectDevice()
		if err != nil {
			ui.PrintFatalError("Device selection failed", err.Error())
			os.Exit(1)
		}
		if device == nil {
			fmt.Println(ui.Muted("No device selected"))
			os.Exit(0)
		}
		vendorID = device.VendorID
		productID = device.ProductID
	}

	// Update or create config file
	if config.Exists(*configPath) {
		if err := config.UpdateDeviceIDs(*configPath, vendorID, productID); err != nil {
			ui.PrintFatalError("Failed to update config", err.Error())
			os.Exit(1)
		}
		ui.PrintDeviceUpdated(*configPath, vendorID, productID)
	} else {
		if err := config.CreateDefaultConfig(*configPath, vendorID, productID); err != nil {
			ui.PrintFatalError("Failed to create config", err.Error())
			os.Exit(1)
		}
		ui.PrintDeviceCreated(*configPath, vendorID, productID)
	}
}

// runSimulate handles the simulate subcommand
func runSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "take timing from this configuration file if it exists")
	button := fs.Int("button", 0, "button whose timing overrides apply")
	debounce := fs.Uint("debounce", 0, "debounce window in ms")
	clickGap := fs.Uint("click-gap", 0, "maximum gap between clicks in ms")
	longPress := fs.Uint("long-press", 0, "long press threshold in ms")
	fs.Usage = func() {
		ui.PrintSimulateUsage()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	timing := gesture.DefaultTiming()
	if config.Exists(*configPath) {
		cfg, err := config.Load(*configPath)
		if err != nil {
			ui.PrintFatalError("Failed to load config", err.Error())
			os.Exit(1)
		}
		timing = gesture.TimingFromConfig(cfg.TimingFor(*button))
	}

	overrides := []struct {
		name  string
		value uint
		field *uint16
	}{
		{"debounce", *debounce, &timing.DebounceMs},
		{"click-gap", *clickGap, &timing.ClickGapMs},
		{"long-press", *longPress, &timing.LongPressMs},
	}
	for _, o := range overrides {
		if o.value > math.MaxUint16 {
			ui.PrintFatalError("Invalid -"+o.name, fmt.Sprintf("%d exceeds %d", o.value, math.MaxUint16))
			os.Exit(1)
		}
		if o.value != 0 {
			*o.field = uint16(o.value)
		}
	}

	requireTerminal("simulate")

	p := tea.NewProgram(ui.NewPlayground(timing, gesture.NewSystemClock()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		ui.PrintFatalError("Playground failed", err.Error())
		os.Exit(1)
	}
}

// parseID parses a vendor or product ID from string (supports hex with 0x prefix or decimal)
func parseID(s string) (uint16, error) {
	s = strings.TrimSpace(s)

	var val uint64
	var err error

	if strings.HasPrefix(strings.ToLower(s), "0x") {
		val, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		val, err = strconv.ParseUint(s, 10, 16)
	}

	if err != nil {
		return 0, err
	}

	return uint16(val), nil
}

// selectDevice displays an interactive device selection menu using huh
func selectDevice() (*ui.DeviceInfo, error) {
	devices, err := listDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no identifiable HID devices found")
	}

	return ui.SelectDevice(devices)
}
