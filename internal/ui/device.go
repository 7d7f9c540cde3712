package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// DeviceInfo contains information about a HID device for display
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
	Interfaces   int // HID interfaces the device exposes
}

func (d DeviceInfo) id() string {
	return fmt.Sprintf("0x%04X:0x%04X", d.VendorID, d.ProductID)
}

func (d DeviceInfo) name() string {
	if d.Product == "" {
		return "Unknown Device"
	}
	return d.Product
}

// deviceSelectModel wraps huh form in Bubble Tea for proper escape handling
type deviceSelectModel struct {
	form    *huh.Form
	aborted bool
}

func (m deviceSelectModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m deviceSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc", "q":
			m.aborted = true
			return m, tea.Quit
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, tea.Quit
	}

	return m, cmd
}

func (m deviceSelectModel) View() string {
	if m.form.State == huh.StateCompleted {
		return ""
	}
	return m.form.View()
}

// SelectDevice lets the user pick one of devices. It returns nil without
// an error when the user cancels.
func SelectDevice(devices []DeviceInfo) (*DeviceInfo, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("no devices to select from")
	}

	options := make([]huh.Option[int], len(devices))
	for i, d := range devices {
		label := fmt.Sprintf("%s  %s", DeviceIDStyle.Render(d.id()), fullName(d))
		options[i] = huh.NewOption(label, i)
	}

	var selectedIndex int

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Select HID Device").
				Description("Choose the button device to read gestures from (esc to cancel)").
				Options(options...).
				Value(&selectedIndex),
		),
	).WithTheme(customTheme()).WithShowHelp(false)

	finalModel, err := tea.NewProgram(deviceSelectModel{form: form}).Run()
	if err != nil {
		return nil, err
	}

	if finalModel.(deviceSelectModel).aborted {
		return nil, nil
	}

	return &devices[selectedIndex], nil
}

func fullName(d DeviceInfo) string {
	if d.Manufacturer == "" {
		return d.name()
	}
	return d.Manufacturer + " " + d.name()
}

// PrintDeviceList displays a styled list of HID devices
func PrintDeviceList(devices []DeviceInfo) {
	if len(devices) == 0 {
		fmt.Println(Warning("No HID devices found"))
		return
	}

	fmt.Println()
	fmt.Println(Title("HID Devices"))
	fmt.Println(Muted(fmt.Sprintf("Found %d device(s)", len(devices))))
	fmt.Println()

	for _, d := range devices {
		fmt.Println(formatDevice(d))
	}
	fmt.Println()
}

func formatDevice(d DeviceInfo) string {
	details := []string{DeviceNameStyle.Render(d.name())}
	if d.Manufacturer != "" {
		details = append(details, DeviceManufacturerStyle.Render("by "+d.Manufacturer))
	}
	if d.Interfaces > 1 {
		details = append(details, Muted(fmt.Sprintf("(%d interfaces)", d.Interfaces)))
	}

	return fmt.Sprintf("%s  %s", DeviceIDStyle.Render("  "+d.id()), strings.Join(details, " "))
}

// PrintDeviceUpdated shows a success message after updating device config
func PrintDeviceUpdated(configPath string, vendorID, productID uint16) {
	printDeviceSaved("Device configuration updated", configPath, vendorID, productID)
}

// PrintDeviceCreated shows a success message after creating device config
func PrintDeviceCreated(configPath string, vendorID, productID uint16) {
	printDeviceSaved("Device configuration created", configPath, vendorID, productID)
}

func printDeviceSaved(title, configPath string, vendorID, productID uint16) {
	d := DeviceInfo{VendorID: vendorID, ProductID: productID}

	fmt.Println()
	fmt.Println(Success(title))
	fmt.Println()
	fmt.Printf("  %s %s\n", Muted("Config:"), configPath)
	fmt.Printf("  %s %s\n", Muted("Device:"), DeviceIDStyle.Render(d.id()))
	fmt.Println()
}

// customTheme returns a huh theme matching our style palette
func customTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorPrimary)
	t.Focused.UnselectedOption = t.Focused.UnselectedOption.Foreground(ColorText)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorPrimary)

	return t
}
