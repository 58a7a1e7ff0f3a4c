// Package config provides configuration management for the face pipeline.
// It loads configuration from YAML files with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all pipeline configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Guidance GuidanceConfig `yaml:"guidance"`
	Capture  CaptureConfig  `yaml:"capture"`
	Models   ModelsConfig   `yaml:"models"`
	Matcher  MatcherConfig  `yaml:"matcher"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CameraConfig holds frame source settings.
type CameraConfig struct {
	Device string `yaml:"device"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// GuidanceConfig holds face positioning thresholds.
// Center thresholds are fractions of the frame dimensions; size thresholds
// bound the face height as a fraction of the frame height.
type GuidanceConfig struct {
	CenterThresholdX float64 `yaml:"center_threshold_x"`
	CenterThresholdY float64 `yaml:"center_threshold_y"`
	SizeMinThreshold float64 `yaml:"size_min_threshold"`
	SizeMaxThreshold float64 `yaml:"size_max_threshold"`
}

// CaptureConfig holds capture session timing and output settings.
type CaptureConfig struct {
	DetectionIntervalMS int     `yaml:"detection_interval_ms"`
	AutoCaptureDelayMS  int     `yaml:"auto_capture_delay_ms"`
	SuccessDisplayMS    int     `yaml:"success_display_ms"`
	TargetAspectRatio   float64 `yaml:"target_aspect_ratio"`
}

// ModelsConfig holds model bundle settings.
type ModelsConfig struct {
	Path          string  `yaml:"path"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// MatcherConfig holds descriptor matching settings.
type MatcherConfig struct {
	MaxDistance float64 `yaml:"max_distance"`
	Threshold   float64 `yaml:"threshold"`
}

// StorageConfig holds credential store settings.
type StorageConfig struct {
	DataDir           string `yaml:"data_dir"`
	EncryptionEnabled bool   `yaml:"encryption_enabled"`
}

// ServerConfig holds verification API settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Camera: CameraConfig{
			Device: "/dev/video0",
			Width:  1280,
			Height: 720,
		},
		Guidance: GuidanceConfig{
			CenterThresholdX: 0.45,
			CenterThresholdY: 0.40,
			SizeMinThreshold: 0.40,
			SizeMaxThreshold: 0.60,
		},
		Capture: CaptureConfig{
			DetectionIntervalMS: 150,
			AutoCaptureDelayMS:  1500,
			SuccessDisplayMS:    2000,
			TargetAspectRatio:   0.75,
		},
		Models: ModelsConfig{
			Path:          filepath.Join(homeDir, ".local/share/facegate/models"),
			MinConfidence: 0.5,
		},
		Matcher: MatcherConfig{
			MaxDistance: 1.0,
			Threshold:   0.4,
		},
		Storage: StorageConfig{
			DataDir:           filepath.Join(homeDir, ".local/share/facegate"),
			EncryptionEnabled: true,
		},
		Server: ServerConfig{
			Listen: ":8432",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Load loads configuration from the specified file.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return config, err
	}

	return config, nil
}

// LoadDefault tries to load configuration from default locations.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat("/etc/facegate/facegate.yaml"); err == nil {
		return Load("/etc/facegate/facegate.yaml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfig(), nil
	}

	userConfig := filepath.Join(homeDir, ".config/facegate/facegate.yaml")
	if _, err := os.Stat(userConfig); err == nil {
		return Load(userConfig)
	}

	return DefaultConfig(), nil
}

// ExpandPath expands ~ and environment variables in a path.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("invalid camera resolution: %dx%d", c.Camera.Width, c.Camera.Height)
	}

	if c.Guidance.CenterThresholdX <= 0 || c.Guidance.CenterThresholdX >= 0.5 {
		return fmt.Errorf("center_threshold_x must be in (0, 0.5), got %f", c.Guidance.CenterThresholdX)
	}
	if c.Guidance.CenterThresholdY <= 0 || c.Guidance.CenterThresholdY >= 0.5 {
		return fmt.Errorf("center_threshold_y must be in (0, 0.5), got %f", c.Guidance.CenterThresholdY)
	}
	if c.Guidance.SizeMinThreshold <= 0 || c.Guidance.SizeMinThreshold >= c.Guidance.SizeMaxThreshold {
		return fmt.Errorf("size thresholds must satisfy 0 < min < max, got min=%f max=%f",
			c.Guidance.SizeMinThreshold, c.Guidance.SizeMaxThreshold)
	}

	if c.Capture.DetectionIntervalMS <= 0 {
		return fmt.Errorf("detection_interval_ms must be positive, got %d", c.Capture.DetectionIntervalMS)
	}
	if c.Capture.AutoCaptureDelayMS <= 0 {
		return fmt.Errorf("auto_capture_delay_ms must be positive, got %d", c.Capture.AutoCaptureDelayMS)
	}
	if c.Capture.TargetAspectRatio <= 0 {
		return fmt.Errorf("target_aspect_ratio must be positive, got %f", c.Capture.TargetAspectRatio)
	}

	if c.Models.MinConfidence < 0 || c.Models.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be between 0 and 1, got %f", c.Models.MinConfidence)
	}

	if c.Matcher.MaxDistance <= 0 {
		return fmt.Errorf("max_distance must be positive, got %f", c.Matcher.MaxDistance)
	}
	if c.Matcher.Threshold <= 0 || c.Matcher.Threshold > c.Matcher.MaxDistance {
		return fmt.Errorf("threshold must be in (0, max_distance], got %f", c.Matcher.Threshold)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// ExpandPaths expands all paths in the configuration.
func (c *Config) ExpandPaths() {
	c.Camera.Device = ExpandPath(c.Camera.Device)
	c.Models.Path = ExpandPath(c.Models.Path)
	c.Storage.DataDir = ExpandPath(c.Storage.DataDir)
	c.Logging.File = ExpandPath(c.Logging.File)
}

// EnsureDirectories creates necessary directories for storage and models.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	credsDir := filepath.Join(c.Storage.DataDir, "credentials")
	if err := os.MkdirAll(credsDir, 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	if err := os.MkdirAll(c.Models.Path, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	if c.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Logging.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	return nil
}
