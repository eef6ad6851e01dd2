package genai

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/spark-rms/spark/internal/config"
)

// Exchange represents a prompt/response pair for caching
type Exchange struct {
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"` // e.g. "gemini"
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Error     string    `json:"error,omitempty"`
}

// CacheDir returns the path to the AI exchange cache directory.
func CacheDir() (string, error) {
	cacheDir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "genai"), nil
}

// SaveExchange serializes an exchange to JSON and writes it to a timestamped
// file. Returns the path to the saved file. Best effort: callers log and
// continue on failure.
func SaveExchange(exchange Exchange) (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	// Dashes instead of colons for filesystem compatibility
	filename := time.Now().Format("2006-01-02T15-04-05.000") + ".json"
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(exchange, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}

	return path, nil
}
