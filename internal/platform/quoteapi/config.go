// Package quoteapi provides an HTTP client for the broker's daily quote
// bridge service, which fronts the actual trading API connector.
package quoteapi

import (
	"os"
	"time"
)

// Config holds configuration for the quote bridge client.
type Config struct {
	BaseURL string        // Base URL of the bridge (e.g., "http://localhost:9000")
	APIKey  string        // API key for the bridge, if required
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads quote bridge configuration from environment variables.
func LoadConfig() Config {
	return Config{
		BaseURL: os.Getenv("QUOTE_API_BASE_URL"),
		APIKey:  os.Getenv("QUOTE_API_KEY"),
		Timeout: 10 * time.Second,
	}
}
