package env

import (
	"os"
	"strings"
)

// Get returns the value of the given environment variable or a fallback.
// Blank values count as unset.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Port resolves the listen port. Platforms that assign one set PORT.
func Port(fallback string) string {
	return Get("PORT", fallback)
}
