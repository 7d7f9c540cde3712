package utils

import (
	"os"
	"path/filepath"
)

const defaultName = "clickpad"

// ExecutableName returns the base name the binary was installed under, for
// help texts and error hints
func ExecutableName() string {
	executable, err := os.Executable()
	if err != nil || executable == "" {
		return defaultName
	}
	return filepath.Base(executable)
}
