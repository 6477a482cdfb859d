package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Tick != 150*time.Millisecond {
		t.Fatalf("Tick = %v, want 150ms", cfg.Tick)
	}
	if cfg.QueueCapacity != defaultQueueCapacity {
		t.Fatalf("QueueCapacity = %d, want %d", cfg.QueueCapacity, defaultQueueCapacity)
	}
	if cfg.HomeDir != home {
		t.Fatalf("HomeDir = %q, want %q", cfg.HomeDir, home)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("MetricsAddr = %q, want empty", cfg.MetricsAddr)
	}
	if cfg.InterfaceSwitch != "skins2" {
		t.Fatalf("InterfaceSwitch = %q, want skins2", cfg.InterfaceSwitch)
	}
	if !reflect.DeepEqual(cfg.DiscoveryModules, []string{"sap", "upnp", "shout"}) {
		t.Fatalf("DiscoveryModules = %v", cfg.DiscoveryModules)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
home_dir = "  ~/media  "
log_file = "  ~/logs/d.log  "
log_level = " DEBUG "
tick_ms = 40
queue_capacity = -1
metrics_addr = " 127.0.0.1:9464 "
interface_switch = " qt "
discovery_modules = [" sap ", "", "upnp", "sap"]
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HomeDir != filepath.Join(home, "media") {
		t.Fatalf("HomeDir = %q, want under HOME", cfg.HomeDir)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Tick != 40*time.Millisecond {
		t.Fatalf("Tick = %v, want 40ms", cfg.Tick)
	}
	if cfg.QueueCapacity != -1 {
		t.Fatalf("QueueCapacity = %d, want -1", cfg.QueueCapacity)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Fatalf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if cfg.InterfaceSwitch != "qt" {
		t.Fatalf("InterfaceSwitch = %q, want qt", cfg.InterfaceSwitch)
	}
	if !reflect.DeepEqual(cfg.DiscoveryModules, []string{"sap", "upnp"}) {
		t.Fatalf("DiscoveryModules = %v, want [sap upnp]", cfg.DiscoveryModules)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
log_file = "   "
tick_ms = 0
interface_switch = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg.LogFile != want.LogFile || cfg.Tick != want.Tick || cfg.InterfaceSwitch != want.InterfaceSwitch {
		t.Fatalf("cfg = %#v, want defaults %#v", cfg, want)
	}
}

func TestLoad_EmptyDiscoveryListDisablesModules(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("discovery_modules = []\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.DiscoveryModules) != 0 {
		t.Fatalf("DiscoveryModules = %v, want empty", cfg.DiscoveryModules)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`tick_ms = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
