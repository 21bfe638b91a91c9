// Package config provides configuration helpers for go-posture commands.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/teslashibe/go-posture/pkg/camera"
	"github.com/teslashibe/go-posture/pkg/detection"
	"github.com/teslashibe/go-posture/pkg/stillness"
)

// Default service configuration.
const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"
	EnvFile         = ".env"
)

// Config holds all configuration for the posture service.
// Flag parsing is done in cmd/posture/main.go; this struct is data only.
type Config struct {
	// Camera
	Device  int    `validate:"gte=0"`
	Preset  string `validate:"omitempty,oneof=default low 720p 1080p"`
	Width   int    `validate:"gte=160,lte=3840"`
	Height  int    `validate:"gte=120,lte=2160"`
	Quality int    `validate:"gte=1,lte=100"`

	// Detection
	ModelPath  string  `validate:"required"`
	Confidence float64 `validate:"gt=0,lte=1"`

	// Dashboard
	Port      string `validate:"required,numeric"`
	StaticDir string
	CameraFPS float64 `validate:"gte=0"`

	// Logging
	LogLevel      string `validate:"oneof=debug info warn error"`
	LogFile       string
	Debug         bool
	DebugTracking bool
}

// Default returns sensible defaults for every setting.
func Default() Config {
	cam := camera.DefaultConfig()
	det := detection.DefaultConfig()
	return Config{
		Device:     cam.Device,
		Width:      cam.Width,
		Height:     cam.Height,
		Quality:    cam.Quality,
		ModelPath:  det.ModelPath,
		Confidence: det.ConfidenceThresh,
		Port:       DefaultPort,
		StaticDir:  "./web",
		CameraFPS:  2,
		LogLevel:   DefaultLogLevel,
	}
}

// LoadDotEnv loads a .env file into the process environment if it exists.
// Variables already set win over the file.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadEnv applies POSTURE_* environment overrides.
// Call it before flag parsing so flags win.
func (c *Config) LoadEnv() error {
	if v := os.Getenv("POSTURE_DEVICE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigError{Field: "Device", Message: "POSTURE_DEVICE must be an integer"}
		}
		c.Device = n
	}
	if v := os.Getenv("POSTURE_PRESET"); v != "" {
		c.Preset = v
	}
	if v := os.Getenv("POSTURE_MODEL"); v != "" {
		c.ModelPath = v
	}
	if v := os.Getenv("POSTURE_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("POSTURE_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("POSTURE_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	return nil
}

// ApplyPreset replaces the capture size with a named camera preset.
// Fields named in explicit ("width", "height") were set on the command
// line and keep their values.
func (c *Config) ApplyPreset(explicit map[string]bool) error {
	if c.Preset == "" {
		return nil
	}
	p := camera.GetPreset(c.Preset)
	if p == nil {
		return &ConfigError{Field: "Preset", Message: fmt.Sprintf("unknown camera preset %q (have %s)",
			c.Preset, strings.Join(camera.PresetNames(), ", "))}
	}
	if !explicit["width"] {
		c.Width = p.Width
	}
	if !explicit["height"] {
		c.Height = p.Height
	}
	c.Quality = p.Quality
	return nil
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("%s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value()),
			}
		}
		return err
	}
	if err := c.Stillness().Validate(); err != nil {
		return &ConfigError{Field: "Stillness", Message: err.Error()}
	}
	return nil
}

// Camera returns the capture settings.
func (c *Config) Camera() camera.Config {
	return camera.Config{
		Device:  c.Device,
		Width:   c.Width,
		Height:  c.Height,
		Quality: c.Quality,
	}
}

// Detection returns the detector settings, sized to the capture.
func (c *Config) Detection() detection.Config {
	return detection.Config{
		ModelPath:        c.ModelPath,
		ConfidenceThresh: c.Confidence,
		InputWidth:       c.Width,
		InputHeight:      c.Height,
	}
}

// Stillness returns the tracker parameters. They are fixed constants.
func (c *Config) Stillness() stillness.Config {
	return stillness.DefaultConfig()
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
