package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const appDirName = "pdfview"

// Duration wraps time.Duration so it can be written as "30s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds the user-tunable settings of the viewer.
type Config struct {
	DefaultZoom  float64  `toml:"default_zoom" validate:"gtefield=MinZoom,ltefield=MaxZoom"`
	MinZoom      float64  `toml:"min_zoom" validate:"gt=0"`
	MaxZoom      float64  `toml:"max_zoom" validate:"gtfield=MinZoom"`
	ZoomStep     float64  `toml:"zoom_step" validate:"gt=0"`
	BaseColumns  int      `toml:"base_columns" validate:"min=20,max=400"`
	LoadWorkers  int      `toml:"load_workers" validate:"min=1,max=16"`
	DownloadDir  string   `toml:"download_dir" validate:"required"`
	PrintCommand []string `toml:"print_command" validate:"min=1,dive,required"`
	PrintTimeout Duration `toml:"print_timeout"`
	PrefsPath    string   `toml:"prefs_path" validate:"required"`
	TreeWidth    int      `toml:"tree_width" validate:"min=0"`
	Watch        bool     `toml:"watch"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		DefaultZoom:  1.0,
		MinZoom:      0.1,
		MaxZoom:      5.0,
		ZoomStep:     0.1,
		BaseColumns:  80,
		LoadWorkers:  4,
		DownloadDir:  defaultDownloadDir(),
		PrintCommand: []string{"lp"},
		PrintTimeout: Duration{30 * time.Second},
		PrefsPath:    filepath.Join(defaultConfigDir(), "prefs.toml"),
		Watch:        true,
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	return filepath.Join(defaultConfigDir(), "config.toml")
}

// Load reads the TOML file at path on top of the defaults. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.DownloadDir = expandHome(cfg.DownloadDir)
	cfg.PrefsPath = expandHome(cfg.PrefsPath)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings against their declared constraints.
func (c *Config) Validate() error {
	if c.PrintTimeout.Duration <= 0 {
		return errors.New("print_timeout must be positive")
	}
	return validator.New().Struct(c)
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+appDirName)
	}
	return filepath.Join(dir, appDirName)
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
