// Package config assembles mudra's runtime configuration from defaults, the
// settings table and MUDRA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/engine"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MUDRA_"

// Config is the full runtime configuration.
type Config struct {
	CameraDevice int  `env:"CAMERA_DEVICE"`
	CameraWidth  int  `env:"CAMERA_WIDTH"`
	CameraHeight int  `env:"CAMERA_HEIGHT"`
	Mirror       bool `env:"MIRROR"`

	Margin        float64 `env:"MARGIN"`
	Smoothening   float64 `env:"SMOOTHENING"`
	ClickDistance float64 `env:"CLICK_DISTANCE"`
	VolMinDist    float64 `env:"VOL_MIN_DIST"`
	VolMaxDist    float64 `env:"VOL_MAX_DIST"`
	ScrollAmount  int     `env:"SCROLL_AMOUNT"`

	IdleFPS         int           `env:"IDLE_FPS"`
	ActiveFPS       int           `env:"ACTIVE_FPS"`
	QuietPeriod     time.Duration `env:"QUIET_PERIOD"`
	MotionThreshold float64       `env:"MOTION_THRESHOLD"`

	MaxHands      int     `env:"MAX_HANDS"`
	MinConfidence float64 `env:"MIN_CONFIDENCE"`

	HTTPAddr  string `env:"HTTP_ADDR"`
	DataDir   string `env:"DATA_DIR"`
	PluginDir string `env:"PLUGIN_DIR"`
	ScriptDir string `env:"SCRIPT_DIR"`
	WebDir    string `env:"WEB_DIR"`
	Tray      bool   `env:"TRAY"`
}

// DefaultConfig returns the built-in defaults. Paths live under ~/.mudra.
func DefaultConfig() Config {
	dataDir := ".mudra"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".mudra")
	}
	th := engine.DefaultThresholds()
	return Config{
		CameraDevice:    0,
		CameraWidth:     1280,
		CameraHeight:    720,
		Mirror:          true,
		Margin:          100,
		Smoothening:     5,
		ClickDistance:   th.ClickDistance,
		VolMinDist:      th.VolMinDist,
		VolMaxDist:      th.VolMaxDist,
		ScrollAmount:    5,
		IdleFPS:         10,
		ActiveFPS:       30,
		QuietPeriod:     2 * time.Second,
		MotionThreshold: 1.0,
		MaxHands:        2,
		MinConfidence:   0.7,
		HTTPAddr:        ":8080",
		DataDir:         dataDir,
		PluginDir:       filepath.Join(dataDir, "plugins"),
		Tray:            true,
	}
}

// SettingsReader is the subset of the settings store Load needs.
type SettingsReader interface {
	All() (map[string]string, error)
}

// Load layers defaults, stored settings and the process environment, then validates.
// settings may be nil.
func Load(settings SettingsReader) (Config, error) {
	cfg := DefaultConfig()
	if settings != nil {
		stored, err := settings.All()
		if err != nil {
			return cfg, fmt.Errorf("read settings: %w", err)
		}
		if err := cfg.ApplySettings(stored); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if cfg.PluginDir == DefaultConfig().PluginDir {
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplySettings overlays stored key/value settings. Keys are the lower-case
// forms of the environment names without the prefix, e.g. camera_width.
// Unknown keys are ignored.
func (c *Config) ApplySettings(settings map[string]string) error {
	if len(settings) == 0 {
		return nil
	}
	environment := make(map[string]string, len(settings))
	for k, v := range settings {
		environment[EnvPrefix+strings.ToUpper(k)] = v
	}
	if err := env.ParseWithOptions(c, env.Options{
		Prefix:      EnvPrefix,
		Environment: environment,
	}); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	return nil
}

// ApplyEnv overlays MUDRA_* variables from the process environment.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports the first value mudra cannot run with.
func (c Config) Validate() error {
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 {
		return fmt.Errorf("camera size must be positive, got %dx%d", c.CameraWidth, c.CameraHeight)
	}
	if c.Margin < 0 || 2*c.Margin >= float64(c.CameraWidth) || 2*c.Margin >= float64(c.CameraHeight) {
		return fmt.Errorf("margin %.0f does not fit a %dx%d frame", c.Margin, c.CameraWidth, c.CameraHeight)
	}
	if c.Smoothening < 1 {
		return fmt.Errorf("smoothening must be >= 1, got %.2f", c.Smoothening)
	}
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	if c.IdleFPS <= 0 || c.ActiveFPS < c.IdleFPS {
		return fmt.Errorf("frame rates must satisfy 0 < idle <= active, got idle %d active %d", c.IdleFPS, c.ActiveFPS)
	}
	if c.QuietPeriod <= 0 {
		return errors.New("quiet period must be positive")
	}
	if c.MaxHands < 2 {
		return fmt.Errorf("max hands must be at least 2, got %d", c.MaxHands)
	}
	if c.DataDir == "" {
		return errors.New("data dir must be set")
	}
	return nil
}

// Thresholds returns the configured starting thresholds.
func (c Config) Thresholds() engine.Thresholds {
	return engine.Thresholds{
		ClickDistance: c.ClickDistance,
		VolMinDist:    c.VolMinDist,
		VolMaxDist:    c.VolMaxDist,
	}
}

// EngineConfig maps the configuration onto an engine.Config.
func (c Config) EngineConfig() engine.Config {
	ec := engine.DefaultConfig()
	ec.Frame = detector.FrameSize{Width: float64(c.CameraWidth), Height: float64(c.CameraHeight)}
	ec.Margin = c.Margin
	ec.Smoothening = c.Smoothening
	ec.Thresholds = c.Thresholds()
	if c.ScrollAmount > 0 {
		ec.ScrollAmount = c.ScrollAmount
	}
	return ec
}

// CameraConfig maps the configuration onto a capture.Config.
func (c Config) CameraConfig() capture.Config {
	return capture.Config{
		DeviceID: c.CameraDevice,
		Width:    c.CameraWidth,
		Height:   c.CameraHeight,
		FPS:      c.ActiveFPS,
		Mirror:   c.Mirror,
	}
}

// DetectorConfig maps the configuration onto a detector.Config.
func (c Config) DetectorConfig() detector.Config {
	dc := detector.DefaultConfig()
	dc.MaxHands = c.MaxHands
	if c.MinConfidence > 0 {
		dc.MinConfidence = c.MinConfidence
	}
	dirs := []string{filepath.Join(c.DataDir, "scripts")}
	if c.ScriptDir != "" {
		dirs = append([]string{c.ScriptDir}, dirs...)
	}
	dc.ScriptDirs = dirs
	return dc
}

// SetDataDir moves the data dir. A plugin dir inside the old data dir moves with it.
func (c *Config) SetDataDir(dir string) {
	if c.PluginDir == filepath.Join(c.DataDir, "plugins") {
		c.PluginDir = filepath.Join(dir, "plugins")
	}
	c.DataDir = dir
}

// DBPath is the SQLite database location inside the data dir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

// EnsureDirs creates the data and plugin directories.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.PluginDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
