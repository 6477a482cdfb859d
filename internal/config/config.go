package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the startup settings of the dialog bridge.
type Config struct {
	HomeDir          string
	LogFile          string
	LogLevel         string
	Tick             time.Duration
	QueueCapacity    int
	MetricsAddr      string
	InterfaceSwitch  string
	DiscoveryModules []string
}

const (
	defaultConfigPath      = "~/.config/dialogs/config.toml"
	defaultLogFile         = "~/.local/state/dialogs/dialogs.log"
	defaultLogLevel        = "info"
	defaultTickMS          = 150
	defaultQueueCapacity   = 256
	defaultInterfaceSwitch = "skins2"
)

var defaultDiscoveryModules = []string{"sap", "upnp", "shout"}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		HomeDir:          mustExpand("~"),
		LogFile:          mustExpand(defaultLogFile),
		LogLevel:         defaultLogLevel,
		Tick:             defaultTickMS * time.Millisecond,
		QueueCapacity:    defaultQueueCapacity,
		InterfaceSwitch:  defaultInterfaceSwitch,
		DiscoveryModules: append([]string(nil), defaultDiscoveryModules...),
	}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing or a field is empty.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		HomeDir          string   `toml:"home_dir"`
		LogFile          string   `toml:"log_file"`
		LogLevel         string   `toml:"log_level"`
		TickMS           int      `toml:"tick_ms"`
		QueueCapacity    int      `toml:"queue_capacity"`
		MetricsAddr      string   `toml:"metrics_addr"`
		InterfaceSwitch  string   `toml:"interface_switch"`
		DiscoveryModules []string `toml:"discovery_modules"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.HomeDir); v != "" {
		cfg.HomeDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if raw.TickMS > 0 {
		cfg.Tick = time.Duration(raw.TickMS) * time.Millisecond
	}
	if raw.QueueCapacity != 0 {
		cfg.QueueCapacity = raw.QueueCapacity
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	if v := strings.TrimSpace(raw.InterfaceSwitch); v != "" {
		cfg.InterfaceSwitch = v
	}
	if raw.DiscoveryModules != nil {
		cfg.DiscoveryModules = cleanList(raw.DiscoveryModules)
	}

	return cfg, nil
}

// DefaultPath returns the expanded default config path.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
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
