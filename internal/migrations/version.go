package migrations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CinePrep/cineprep/config"
)

// ParseVersion parses version string like "v2.1" or "2.1" and returns major version
func ParseVersion(versionStr string) (float64, error) {
	cleanVersion := strings.TrimPrefix(strings.TrimSpace(versionStr), "v")

	major, _, _ := strings.Cut(cleanVersion, ".")
	value, err := strconv.ParseFloat(major, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid major version: %q", versionStr)
	}

	return value, nil
}

// GetCurrentCodeVersion returns the major version from config.VERSION
func GetCurrentCodeVersion() (float64, error) {
	return ParseVersion(config.VERSION)
}
