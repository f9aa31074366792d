// Package config resolves file locations and service settings from viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultServerAddr is where `spent serve` listens unless configured otherwise.
const DefaultServerAddr = ":8080"

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DatabasePath returns the configured SQLite file, defaulting under the
// user's XDG data directory.
func DatabasePath() string {
	if p := viper.GetString("database.path"); p != "" {
		return ExpandPath(p)
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "spent", "spent.db")
	}
	return ExpandPath("~/.local/share/spent/spent.db")
}

// ServerAddr returns the HTTP listen address.
func ServerAddr() string {
	if addr := viper.GetString("server.addr"); addr != "" {
		return addr
	}
	return DefaultServerAddr
}

// CertDir is where `spent serve --tls` keeps its self-signed certificate.
func CertDir() string {
	if dir := viper.GetString("server.cert_dir"); dir != "" {
		return ExpandPath(dir)
	}
	return ExpandPath("~/.config/spent/certs")
}
