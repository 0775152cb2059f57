// Package config contains everything related to configuration
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider selects the text generation backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Config holds the application configuration.
type Config struct {
	Provider       Provider
	BaseURL        string
	APIKeys        []string
	Models         []string
	ImageAPIURL    string
	ImageAPIKey    string
	RequestTimeout time.Duration

	DatabasePath  string
	HistoryLimit  int
	LogPath       string
	LogLevel      string
	Notifications bool
}

// Default values
const (
	defaultHistoryLimit   = 50
	defaultRequestTimeout = 60 * time.Second
	defaultGeminiBaseURL  = "https://generativelanguage.googleapis.com"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
)

// DefaultModels is the model priority list used when GEMINI_MODELS is unset.
var DefaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
}

var (
	ErrNoCredentials = errors.New("no API credentials configured (set GEMINI_API_KEYS, GEMINI_API_KEY or GEMINI_API_KEYS_FILE)")
	ErrNoModels      = errors.New("model list is empty (check GEMINI_MODELS)")
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	provider := Provider(strings.ToLower(getEnvString("AI_PROVIDER", string(ProviderGemini))))
	if provider != ProviderOpenAI {
		provider = ProviderGemini
	}
	defaultBase := defaultGeminiBaseURL
	if provider == ProviderOpenAI {
		defaultBase = defaultOpenAIBaseURL
	}

	keys := SplitList(os.Getenv("GEMINI_API_KEYS"))
	keys = append(keys, SplitList(os.Getenv("GEMINI_API_KEY"))...)
	if path := os.Getenv("GEMINI_API_KEYS_FILE"); path != "" {
		fileKeys, err := LoadKeysFile(path)
		if err != nil {
			return nil, err
		}
		keys = append(keys, fileKeys...)
	}

	models := DefaultModels
	if raw := os.Getenv("GEMINI_MODELS"); raw != "" {
		models = SplitList(raw)
	}

	cfg := &Config{
		Provider:       provider,
		BaseURL:        strings.TrimRight(getEnvString("AI_BASE_URL", defaultBase), "/"),
		APIKeys:        dedupe(keys),
		Models:         dedupe(models),
		ImageAPIURL:    os.Getenv("IMAGE_API_URL"),
		ImageAPIKey:    os.Getenv("IMAGE_API_KEY"),
		RequestTimeout: getEnvDuration("AI_REQUEST_TIMEOUT", defaultRequestTimeout),
		DatabasePath:   getEnvString("DATABASE_PATH", defaultPath("mise.db")),
		HistoryLimit:   getEnvInt("HISTORY_LIMIT", defaultHistoryLimit),
		LogPath:        getEnvString("LOG_PATH", defaultPath("mise.log")),
		LogLevel:       getEnvString("LOG_LEVEL", "info"),
		Notifications:  getEnvBool("NOTIFICATIONS", true),
	}

	if len(cfg.APIKeys) == 0 {
		return nil, ErrNoCredentials
	}
	if len(cfg.Models) == 0 {
		return nil, ErrNoModels
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}

	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "mise", ".env"),
			filepath.Join(home, ".mise", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// defaultPath returns name inside the user's mise config directory.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", "mise", name)
}

// SplitList splits a comma-separated value, trimming blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// dedupe drops repeated values, keeping first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
