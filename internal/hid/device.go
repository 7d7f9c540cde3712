package hid

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/pleimann/clickpad/internal/utils"
)

// ErrClosed is returned by operations on a closed Device
var ErrClosed = errors.New("device closed")

const permissionHint = "\n" +
	"  This may be a permissions issue. On macOS, try:\n" +
	"  1. System Settings > Privacy & Security > Input Monitoring\n" +
	"  2. Add Terminal (or your terminal app) to the list"

// Device represents a connection to the macropad HID device
type Device struct {
	vendorID  uint16
	productID uint16
	verbose   bool
	device    *hid.Device
	mu        sync.Mutex
	closed    bool
}

// NewDevice opens a connection to a HID device with the specified vendor and product IDs
func NewDevice(vendorID, productID uint16, verbose bool) (*Device, error) {
	devices := hid.Enumerate(vendorID, productID)
	if len(devices) == 0 {
		// List available devices to help user find the right one
		if len(hid.Enumerate(0, 0)) == 0 {
			return nil, fmt.Errorf("no HID devices found on system - check USB connection")
		}
		name := utils.ExecutableName()
		return nil, fmt.Errorf("no device found with VendorID=0x%04X, ProductID=0x%04X\n"+
			"  Run '%s list-devices' to see available devices\n"+
			"  Run '%s set-device' to configure the correct device",
			vendorID, productID, name, name)
	}

	// Some devices expose several interfaces and not all of them can be opened
	dev, err := openFirst(devices, verbose)
	if err == nil {
		return &Device{
			vendorID:  vendorID,
			productID: productID,
			verbose:   verbose,
			device:    dev,
		}, nil
	}

	if len(devices) == 1 {
		return nil, fmt.Errorf("failed to open device 0x%04X:0x%04X: %w"+permissionHint,
			vendorID, productID, err)
	}
	return nil, fmt.Errorf("failed to open any of %d interfaces for device 0x%04X:0x%04X: %w"+permissionHint,
		len(devices), vendorID, productID, err)
}

func openFirst(devices []hid.DeviceInfo, verbose bool) (*hid.Device, error) {
	var lastErr error
	for _, info := range devices {
		dev, err := info.Open()
		if err == nil {
			return dev, nil
		}
		if verbose {
			log.Printf("Could not open HID interface %s: %v", info.Path, err)
		}
		lastErr = err
	}
	return nil, lastErr
}

// Close closes the HID device connection
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if d.device != nil {
		return d.device.Close()
	}
	return nil
}

// ReadEvents continuously reads button reports from the device and sends them to the channel.
// Reports that are not button events are skipped.
func (d *Device) ReadEvents(ctx context.Context, events chan<- Event) error {
	buf := make([]byte, 64)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return ErrClosed
		}
		dev := d.device
		d.mu.Unlock()

		n, err := dev.Read(buf)
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		if n == 0 {
			continue
		}

		event, err := ParseEvent(buf[:n])
		if err != nil {
			if d.verbose {
				log.Printf("Ignoring HID report: %v", err)
			}
			continue
		}

		select {
		case events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Write sends data to the HID device
func (d *Device) Write(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	_, err := d.device.Write(data)
	return err
}

// SendFrame sends a display frame to the device
func (d *Device) SendFrame(frame *DisplayFrame) error {
	return d.Write(frame.Encode())
}

// SendIndicators sets the button LEDs, bit n lighting button n
func (d *Device) SendIndicators(mask uint16) error {
	return d.Write(IndicatorReport{Mask: mask}.Encode())
}

// Reconnect attempts to reconnect to the device
func (d *Device) Reconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Close existing connection if any
	if d.device != nil {
		d.device.Close()
		d.device = nil
	}
	d.closed = false

	devices := hid.Enumerate(d.vendorID, d.productID)
	if len(devices) == 0 {
		return fmt.Errorf("device not found")
	}

	dev, err := openFirst(devices, d.verbose)
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}
	d.device = dev
	return nil
}

// WaitForDevice waits for a device to become available and connects to it
func (d *Device) WaitForDevice(ctx context.Context, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Reconnect(); err == nil {
				return nil
			}
		}
	}
}
