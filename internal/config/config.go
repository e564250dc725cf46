package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LightConfig describes the LED illumination panel.
type LightConfig struct {
	Pin int `yaml:"pin"` // GPIO pin (BCM) driving the LED panel
}

// CameraConfig describes how to talk to the camera.
// Type selects a concrete implementation (e.g., "rpicam", "mock").
type CameraConfig struct {
	Type             string `yaml:"type"`               // e.g., "rpicam"
	Binary           string `yaml:"binary"`             // capture binary, e.g., "rpicam-still"
	WidthPx          int    `yaml:"width_px"`           // image width in pixels
	HeightPx         int    `yaml:"height_px"`          // image height in pixels
	ISO              int    `yaml:"iso"`                // fixed sensitivity
	ShutterSpeedUs   int    `yaml:"shutter_speed_us"`   // fixed exposure duration (µs)
	SettleIntervalMs int    `yaml:"settle_interval_ms"` // delay between gain polls (ms)
	SettleTimeoutS   int    `yaml:"settle_timeout_s"`   // bound on gain convergence (s); 0 = default
}

// StoreConfig locates the persisted session state.
type StoreConfig struct {
	StateFile string `yaml:"state_file"` // relative to the working directory
}

// JournalConfig locates the capture journal database.
type JournalConfig struct {
	Path string `yaml:"path"` // relative to the working directory
}

// SyncConfig describes the best-effort remote push command.
type SyncConfig struct {
	Disabled bool     `yaml:"disabled"`
	Command  string   `yaml:"command"` // e.g., "drive"
	Args     []string `yaml:"args"`    // prepended before the directory argument
}

// ServerConfig holds the status server address for the serve command.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Light    LightConfig    `yaml:"light"`
	Camera   CameraConfig   `yaml:"camera"`
	Store    StoreConfig    `yaml:"store"`
	Journal  JournalConfig  `yaml:"journal"`
	Sync     SyncConfig     `yaml:"sync"`
	Server   ServerConfig   `yaml:"server"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Default returns the built-in configuration used when no config file is
// present. Cron-spawned invocations run in a bare working directory, so the
// defaults must describe a complete, working rig.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	applyDefaults(&cfg)

	// Basic validation
	if cfg.Light.Pin < 2 || cfg.Light.Pin > 27 {
		return nil, fmt.Errorf("light.pin must be a BCM pin between 2 and 27, got %d", cfg.Light.Pin)
	}
	if cfg.Camera.Type != "rpicam" && cfg.Camera.Type != "mock" {
		return nil, fmt.Errorf("camera.type must be \"rpicam\" or \"mock\", got %q", cfg.Camera.Type)
	}
	if cfg.Camera.ISO < 0 {
		return nil, fmt.Errorf("camera.iso must be > 0, got %d", cfg.Camera.ISO)
	}
	if cfg.Camera.ShutterSpeedUs < 0 {
		return nil, fmt.Errorf("camera.shutter_speed_us must be > 0, got %d", cfg.Camera.ShutterSpeedUs)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	return &cfg, nil
}

// applyDefaults fills zero-valued fields with the rig defaults.
func applyDefaults(cfg *Config) {
	if cfg.Light.Pin == 0 {
		cfg.Light.Pin = 12 // LED panel pin on the reference rig
	}
	if cfg.Camera.Type == "" {
		cfg.Camera.Type = "rpicam"
	}
	if cfg.Camera.Binary == "" {
		cfg.Camera.Binary = "rpicam-still"
	}
	if cfg.Camera.WidthPx == 0 {
		cfg.Camera.WidthPx = 2592
	}
	if cfg.Camera.HeightPx == 0 {
		cfg.Camera.HeightPx = 1944
	}
	if cfg.Camera.ISO == 0 {
		cfg.Camera.ISO = 100
	}
	if cfg.Camera.ShutterSpeedUs == 0 {
		cfg.Camera.ShutterSpeedUs = 1000000 // 1s exposure
	}
	if cfg.Camera.SettleIntervalMs == 0 {
		cfg.Camera.SettleIntervalMs = 100
	}
	if cfg.Camera.SettleTimeoutS == 0 {
		cfg.Camera.SettleTimeoutS = 30
	}
	if cfg.Store.StateFile == "" {
		cfg.Store.StateFile = "biolapse-state.yaml"
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "captures.db"
	}
	if cfg.Sync.Command == "" {
		cfg.Sync.Command = "drive"
	}
	if cfg.Sync.Args == nil {
		cfg.Sync.Args = []string{"push", "-quiet", "-no-clobber"}
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}

// SettleInterval returns the delay between two gain polls.
func (c *Config) SettleInterval() time.Duration {
	return time.Duration(c.Camera.SettleIntervalMs) * time.Millisecond
}

// SettleTimeout returns the bound on gain convergence.
func (c *Config) SettleTimeout() time.Duration {
	return time.Duration(c.Camera.SettleTimeoutS) * time.Second
}

// ServerAddress returns the host:port the status server binds to.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
