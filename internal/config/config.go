// ABOUTME: Environment-backed runtime configuration
// ABOUTME: Supplies defaults that command-line flags may override
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Log destination while the TUI owns the terminal
	LogFile string

	// Remote control
	ControlPort int
	Name        string
	Advertise   bool // announce the control server via mDNS

	// Output
	Volume        int // 0-100
	BufferSamples int // device buffer, in samples
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		LogFile: envStr("MELONIX_LOG_FILE", "melonix.log"),

		ControlPort: envInt("MELONIX_CONTROL_PORT", 8928),
		Name:        envStr("MELONIX_NAME", defaultName()),
		Advertise:   envBool("MELONIX_ADVERTISE", true),

		Volume:        envInt("MELONIX_VOLUME", 100),
		BufferSamples: envInt("MELONIX_BUFFER_SAMPLES", 2048),
	}
}

func defaultName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return "Melonix on " + host
	}
	return "Melonix"
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}
