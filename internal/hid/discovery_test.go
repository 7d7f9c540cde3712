package hid

import (
	"reflect"
	"testing"
)

func TestUnique(t *testing.T) {
	devices := []DeviceInfo{
		{VendorID: 0x1234, ProductID: 0x5678, Path: "a", Usage: 1},
		{VendorID: 0x1234, ProductID: 0x5678, Path: "b", Usage: 2},
		{VendorID: 0, ProductID: 0, Path: "virtual"},
		{VendorID: 0x1234, ProductID: 0x0001, Path: "c"},
		{VendorID: 0xABCD, ProductID: 0x5678, Path: "d"},
	}

	got := Unique(devices)

	var paths []string
	for _, d := range got {
		paths = append(paths, d.Path)
	}
	want := []string{"a", "c", "d"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Unique() paths = %v, want %v", paths, want)
	}
}

func TestUniqueEmpty(t *testing.T) {
	if got := Unique(nil); len(got) != 0 {
		t.Errorf("Unique(nil) = %v, want empty", got)
	}
}
