package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pleimann/clickpad/internal/utils"
)

type example struct {
	cmd  string
	desc string
}

// PrintUsage displays the styled help/usage text
func PrintUsage(version string) {
	name := utils.ExecutableName()

	printBanner(version, ColorMuted)
	fmt.Println(Muted("Button gestures (clicks, multi-clicks, long presses) for TUI applications"))
	fmt.Println()

	printSection("Usage", []string{
		name + " [flags]              Run the middleware",
		name + " list-devices         List available HID devices",
		name + " set-device [args]    Configure the HID device",
		name + " simulate [flags]     Try gesture timing with the space bar",
		name + " help                 Show this help message",
	})

	printSection("Flags", []string{
		"-config string    Path to configuration file (default \"config.yaml\")",
		"-verbose          Log every recognized gesture",
		"-headless         Do not mirror the TUI on this terminal",
		"-version          Print version and exit",
	})

	printCommandSection(name)

	fmt.Println(Bold("Examples"))
	printExamples([]example{
		{name, "Run with default config.yaml"},
		{name + " -config my.yaml", "Run with custom config file"},
		{name + " list-devices", "List connected HID devices"},
		{name + " set-device", "Interactive device selection"},
		{name + " set-device 0x1234 0x5678", "Set device by vendor/product ID"},
		{name + " simulate -long-press 600", "Try a shorter long press"},
	})
}

func printBanner(version string, versionColor lipgloss.Color) {
	banner := TitleStyle.Render(utils.ExecutableName())
	versionTag := lipgloss.NewStyle().
		Foreground(versionColor).
		Render("v" + version)

	fmt.Printf("%s %s\n", banner, versionTag)
}

func printSection(title string, items []string) {
	fmt.Println(Bold(title))
	for _, item := range items {
		fmt.Printf("  %s\n", item)
	}
	fmt.Println()
}

func printCommandSection(name string) {
	fmt.Println(Bold("Commands"))

	cmdStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)

	commands := []struct {
		name string
		desc string
		help bool
	}{
		{"list-devices", "List available HID devices", false},
		{"set-device", "Set the HID device in the config file", true},
		{"simulate", "Drive a single recognizer from the keyboard and watch its state", true},
	}

	for _, c := range commands {
		fmt.Printf("  %s\n", cmdStyle.Render(c.name))
		fmt.Printf("      %s\n", c.desc)
		if c.help {
			fmt.Printf("      Run %s for more information\n", Code(name+" "+c.name+" --help"))
		}
		fmt.Println()
	}
}

func printExamples(examples []example) {
	cmdStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary)

	width := 0
	for _, ex := range examples {
		width = max(width, len(ex.cmd))
	}

	for _, ex := range examples {
		padding := strings.Repeat(" ", width-len(ex.cmd)+2)
		fmt.Printf("  %s%s%s\n", cmdStyle.Render(ex.cmd), padding, Muted(ex.desc))
	}
	fmt.Println()
}

func printOption(flag, desc string) {
	fmt.Printf("  %-22s %s\n", SubtitleStyle.Render(flag), desc)
}

// PrintSetDeviceUsage displays the styled help text for set-device subcommand
func PrintSetDeviceUsage() {
	name := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), name+" set-device [options] [vendor_id product_id]")
	fmt.Println()
	fmt.Println("Set the HID device in the configuration file.")
	fmt.Println()
	fmt.Println(Muted("If vendor_id and product_id are provided, updates the config directly."))
	fmt.Println(Muted("Otherwise, displays a list of connected devices to choose from."))
	fmt.Println()

	fmt.Println(Bold("Arguments"))
	printOption("vendor_id", "Device vendor ID (hex with 0x prefix or decimal)")
	printOption("product_id", "Device product ID (hex with 0x prefix or decimal)")
	fmt.Println()

	fmt.Println(Bold("Options"))
	printOption("-config string", "Path to configuration file (default \"config.yaml\")")
	fmt.Println()

	fmt.Println(Bold("Examples"))
	printExamples([]example{
		{name + " set-device", "Interactive selection"},
		{name + " set-device 0x1234 0x5678", "Direct specification"},
		{name + " set-device -config my.yaml", "Use different config"},
	})
}

// PrintSimulateUsage displays the styled help text for the simulate subcommand
func PrintSimulateUsage() {
	name := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), name+" simulate [options]")
	fmt.Println()
	fmt.Println("Run one gesture recognizer against the keyboard.")
	fmt.Println()
	fmt.Println(Muted("Terminals only report key presses, so space toggles the simulated"))
	fmt.Println(Muted("button level: press space once to push the button, again to let go."))
	fmt.Println()

	fmt.Println(Bold("Options"))
	printOption("-config string", "Take timing from this config file if it exists")
	printOption("-button int", "Button whose timing overrides apply (default 0)")
	printOption("-debounce int", "Debounce window in ms")
	printOption("-click-gap int", "Maximum gap between clicks in ms")
	printOption("-long-press int", "Long press threshold in ms")
	fmt.Println()

	fmt.Println(Bold("Keys"))
	printOption("space", "Toggle the button level")
	printOption("r", "Reset the recognizer")
	printOption("c", "Clear the gesture log")
	printOption("q", "Quit")
	fmt.Println()
}

// PrintVersion displays the styled version information
func PrintVersion(version string) {
	printBanner(version, ColorSuccess)
}

// PrintError displays a styled error message
func PrintError(message string) {
	fmt.Println(Error(message))
}

// PrintFatalError displays a styled fatal error message with context
func PrintFatalError(context, message string) {
	fmt.Println()
	fmt.Println(Error(context))
	fmt.Printf("  %s\n", Muted(message))
	fmt.Println()
}
