package config

import (
	"fmt"
	"strings"
)

// CurrentVersion is written to new configuration files. Files sharing its
// major number can be parsed.
const CurrentVersion = "1.0"

// VersionInfo contains version metadata from config file
type VersionInfo struct {
	Version string `yaml:"version"`
}

// ValidateVersion rejects files written for another major format
func ValidateVersion(fileVersion string) error {
	if !IsCompatible(fileVersion) {
		return fmt.Errorf("incompatible configuration version: %s (expected %s.x)", fileVersion, major(CurrentVersion))
	}
	return nil
}

// IsCompatible reports whether version has the current major number
func IsCompatible(version string) bool {
	return version != "" && major(version) == major(CurrentVersion)
}

func major(version string) string {
	m, _, _ := strings.Cut(strings.TrimPrefix(version, "v"), ".")
	return m
}
