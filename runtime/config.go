package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file FindConfig looks for.
const ConfigFileName = ".koys.yaml"

// Config holds interpreter settings read from a .koys.yaml file. Command
// line flags override individual fields after loading.
type Config struct {
	Debug    bool   `yaml:"debug"`
	MaxDepth int    `yaml:"max_depth"`
	LogLevel string `yaml:"log_level"`
	History  string `yaml:"history"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		LogLevel: "warn",
	}
}

// LoadConfig parses the YAML file at path on top of DefaultConfig. Unknown
// keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, fmt.Errorf("config: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return DefaultConfig(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// FindConfig returns the path of ConfigFileName in dir if it exists.
func FindConfig(dir string) (string, bool) {
	path := filepath.Join(dir, ConfigFileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// Level maps LogLevel onto a slog level. An empty value means warn.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
}

func (c Config) validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}
