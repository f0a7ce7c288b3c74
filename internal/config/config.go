// Package config loads editor settings for the bundled commands. The core
// itself only takes plain numbers; this file format is a convenience of the
// lattice binary, not part of the library contract.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/geometry"
	"gopkg.in/yaml.v3"
)

// Store backends understood by the CLI.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the on-disk shape of lattice.yaml.
type Config struct {
	Editor EditorConfig `yaml:"editor"`
	Store  StoreConfig  `yaml:"store"`
	Serve  ServeConfig  `yaml:"serve"`
}

type EditorConfig struct {
	CellSize      float64 `yaml:"cell_size"`
	SnapRadius    float64 `yaml:"snap_radius"`
	DebounceMs    int     `yaml:"debounce_ms"`
	ToolbarWidth  float64 `yaml:"toolbar_width"`
	ToolbarHeight float64 `yaml:"toolbar_height"`
	ToolbarMargin float64 `yaml:"toolbar_margin"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"` // file dir or sqlite db path
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ServeConfig struct {
	Port int `yaml:"port"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	s := lattice.DefaultSettings()
	return Config{
		Editor: EditorConfig{
			CellSize:      s.CellSize,
			SnapRadius:    s.SnapRadius,
			DebounceMs:    int(s.Debounce / time.Millisecond),
			ToolbarWidth:  s.Toolbar.Width,
			ToolbarHeight: s.Toolbar.Height,
			ToolbarMargin: s.Toolbar.Margin,
		},
		Store: StoreConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Address: "localhost:6379"},
		},
		Serve: ServeConfig{Port: 8080},
	}
}

// Load reads path and overlays it on the defaults. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Settings converts the editor section into core settings.
func (c Config) Settings() lattice.Settings {
	return lattice.Settings{
		CellSize:   c.Editor.CellSize,
		SnapRadius: c.Editor.SnapRadius,
		Debounce:   time.Duration(c.Editor.DebounceMs) * time.Millisecond,
		Toolbar: geometry.Toolbar{
			Width:  c.Editor.ToolbarWidth,
			Height: c.Editor.ToolbarHeight,
			Margin: c.Editor.ToolbarMargin,
		},
	}
}
