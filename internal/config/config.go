package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings bookshelf reads at startup.
type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	LogFile        string
	OTLPEndpoint   string
}

const (
	defaultConfigPath     = "~/.config/bookshelf/config.toml"
	defaultLogFile        = "~/.local/state/bookshelf/bookshelf.log"
	defaultAPIURL         = "http://127.0.0.1:3000/books"
	defaultRequestTimeout = 10 * time.Second
	dotenvFile            = ".env"

	envAPIURL         = "BOOKSHELF_API_URL"
	envRequestTimeout = "BOOKSHELF_REQUEST_TIMEOUT"
	envOTLPEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		RequestTimeout: defaultRequestTimeout,
		LogFile:        mustExpand(defaultLogFile),
	}
}

// Load reads the config file at path (or the default location), then applies
// a .env file from the working directory and finally the environment.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := applyFile(&cfg, resolved); err != nil {
		return Config{}, err
	}
	if err := loadDotenv(dotenvFile); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string  `toml:"api_url"`
		RequestTimeout string  `toml:"request_timeout"`
		LogFile        *string `toml:"log_file"`
		OTLPEndpoint   string  `toml:"otlp_endpoint"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return err
		}
		cfg.RequestTimeout = d
	}
	if raw.LogFile != nil {
		// An explicit empty value turns file logging off.
		cfg.LogFile = ""
		if v := strings.TrimSpace(*raw.LogFile); v != "" {
			cfg.LogFile = mustExpand(v)
		}
	}
	cfg.OTLPEndpoint = strings.TrimSpace(raw.OTLPEndpoint)
	return nil
}

// loadDotenv exports variables from path without overriding ones already set.
func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v, ok := lookupEnv(envAPIURL); ok {
		cfg.APIURL = v
	}
	if v, ok := lookupEnv(envRequestTimeout); ok {
		d, err := parseTimeout(v)
		if err != nil {
			return err
		}
		cfg.RequestTimeout = d
	}
	if v, ok := lookupEnv(envOTLPEndpoint); ok {
		cfg.OTLPEndpoint = v
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func parseTimeout(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse request_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse request_timeout: %q is negative", value)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
