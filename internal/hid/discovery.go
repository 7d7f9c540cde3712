package hid

import (
	"github.com/karalabe/hid"
)

// DeviceInfo contains information about a discovered HID device
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Path         string
	Manufacturer string
	Product      string
	SerialNumber string
	UsagePage    uint16
	Usage        uint16
}

func toDeviceInfo(d hid.DeviceInfo) DeviceInfo {
	return DeviceInfo{
		VendorID:     d.VendorID,
		ProductID:    d.ProductID,
		Path:         d.Path,
		Manufacturer: d.Manufacturer,
		Product:      d.Product,
		SerialNumber: d.Serial,
		UsagePage:    d.UsagePage,
		Usage:        d.Usage,
	}
}

// ListDevices returns a list of all available HID devices
func ListDevices() ([]DeviceInfo, error) {
	devices := hid.Enumerate(0, 0)

	result := make([]DeviceInfo, len(devices))
	for i, d := range devices {
		result[i] = toDeviceInfo(d)
	}

	return result, nil
}

// FindDevice returns the first interface matching the given vendor and
// product IDs, or nil if none is connected
func FindDevice(vendorID, productID uint16) *DeviceInfo {
	devices := hid.Enumerate(vendorID, productID)
	if len(devices) == 0 {
		return nil
	}

	info := toDeviceInfo(devices[0])
	return &info
}

// Unique keeps the first interface of every vendor/product pair and drops
// entries without any ID
func Unique(devices []DeviceInfo) []DeviceInfo {
	seen := make(map[uint32]bool)
	var unique []DeviceInfo

	for _, d := range devices {
		if d.VendorID == 0 && d.ProductID == 0 {
			continue
		}
		key := uint32(d.VendorID)<<16 | uint32(d.ProductID)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, d)
	}

	return unique
}
