package config

import (
	"os"            // For environment variables
	"path/filepath" // Building the default state directory
	"strings"       // String manipulation

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the client configuration
type Config struct {
	BaseURL  string // API base URL, fixed at startup
	StateDir string // Directory holding the persisted session
}

// LoadConfig loads client configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	base := os.Getenv("TRADECRAFT_API_BASE")
	if base == "" {
		base = "http://localhost:5000/api" // Default backend location
	}
	dir := os.Getenv("TRADECRAFT_STATE_DIR")
	if dir == "" {
		// Default to ~/.tradecraft, mirroring where other local state tools keep theirs
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".tradecraft")
		} else {
			dir = ".tradecraft"
		}
	}
	return &Config{
		BaseURL:  strings.TrimRight(base, "/"), // Trailing slash would double up in request paths
		StateDir: dir,
	}
}
