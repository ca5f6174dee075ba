// Package config resolves tada's settings.
//
// Precedence (highest wins): defaults, global config file, explicit config
// file, environment, CLI flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/tailscale/hujson"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var (
	Backends = []string{BackendJSON, BackendSQLite, BackendMemory}
	Themes   = []string{"classic", "neon", "mono"}
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config")
)

// Config holds all configuration options.
type Config struct {
	DataDir  string `json:"data_dir,omitempty"`
	Backend  string `json:"backend,omitempty"`
	Theme    string `json:"theme,omitempty"`
	NoColor  bool   `json:"no_color,omitempty"`
	DebugLog string `json:"debug_log,omitempty"`

	// Sources lists the config files that were applied, lowest precedence first.
	Sources []string `json:"-"`
}

// envConfig mirrors Config for the environment layer. Pointers tell
// "unset" apart from zero values.
type envConfig struct {
	DataDir  *string `env:"TADA_DATA_DIR"`
	Backend  *string `env:"TADA_BACKEND"`
	Theme    *string `env:"TADA_THEME"`
	NoColor  *bool   `env:"TADA_NO_COLOR"`
	DebugLog *string `env:"TADA_DEBUG_LOG"`
}

// Default returns the default configuration. DataDir empty means the working directory.
func Default() Config {
	return Config{
		Backend: BackendJSON,
		Theme:   "classic",
	}
}

// Overrides carries CLI flag values; nil fields were not set.
type Overrides struct {
	DataDir *string
	Backend *string
	Theme   *string
	NoColor *bool
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	ConfigPath string            // --config flag; must exist when set
	Env        map[string]string // environment variables
	Overrides  Overrides
}

// GlobalPath returns $XDG_CONFIG_HOME/tada/config.json or ~/.config/tada/config.json.
// Returns "" when neither variable is set.
func GlobalPath(environ map[string]string) string {
	if xdg := environ["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "tada", "config.json")
	}
	if home := environ["HOME"]; home != "" {
		return filepath.Join(home, ".config", "tada", "config.json")
	}
	return ""
}

// Load resolves the effective configuration.
func Load(in LoadInput) (Config, error) {
	cfg := Default()

	if p := GlobalPath(in.Env); p != "" {
		fileCfg, ok, err := loadFile(p, false)
		if err != nil {
			return Config{}, err
		}
		if ok {
			cfg = merge(cfg, fileCfg)
			cfg.Sources = append(cfg.Sources, p)
		}
	}

	if in.ConfigPath != "" {
		fileCfg, _, err := loadFile(in.ConfigPath, true)
		if err != nil {
			return Config{}, err
		}
		cfg = merge(cfg, fileCfg)
		cfg.Sources = append(cfg.Sources, in.ConfigPath)
	}

	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Environment: in.Env}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg = applyEnv(cfg, ec)
	cfg = applyOverrides(cfg, in.Overrides)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fileConfig is one config file layer. NoColor is a pointer so a later file
// can switch colour back on.
type fileConfig struct {
	DataDir  string `json:"data_dir"`
	Backend  string `json:"backend"`
	Theme    string `json:"theme"`
	NoColor  *bool  `json:"no_color"`
	DebugLog string `json:"debug_log"`
}

// loadFile parses a JSONC config file. Missing optional files are skipped.
func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}
			return fileConfig{}, false, nil
		}
		return fileConfig{}, false, fmt.Errorf("read config %s: %w", path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	var cfg fileConfig
	if err := json.Unmarshal(std, &cfg); err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	return cfg, true, nil
}

func merge(base Config, over fileConfig) Config {
	if over.DataDir != "" {
		base.DataDir = over.DataDir
	}
	if over.Backend != "" {
		base.Backend = over.Backend
	}
	if over.Theme != "" {
		base.Theme = over.Theme
	}
	if over.NoColor != nil {
		base.NoColor = *over.NoColor
	}
	if over.DebugLog != "" {
		base.DebugLog = over.DebugLog
	}
	return base
}

func applyEnv(cfg Config, ec envConfig) Config {
	if ec.DataDir != nil {
		cfg.DataDir = *ec.DataDir
	}
	if ec.Backend != nil {
		cfg.Backend = *ec.Backend
	}
	if ec.Theme != nil {
		cfg.Theme = *ec.Theme
	}
	if ec.NoColor != nil {
		cfg.NoColor = *ec.NoColor
	}
	if ec.DebugLog != nil {
		cfg.DebugLog = *ec.DebugLog
	}
	return cfg
}

func applyOverrides(cfg Config, o Overrides) Config {
	if o.DataDir != nil {
		cfg.DataDir = *o.DataDir
	}
	if o.Backend != nil {
		cfg.Backend = *o.Backend
	}
	if o.Theme != nil {
		cfg.Theme = *o.Theme
	}
	if o.NoColor != nil {
		cfg.NoColor = *o.NoColor
	}
	return cfg
}

func validate(cfg Config) error {
	if !slices.Contains(Backends, cfg.Backend) {
		return fmt.Errorf("%w: unknown backend %q (want one of %s)",
			ErrConfigInvalid, cfg.Backend, strings.Join(Backends, ", "))
	}
	if !slices.Contains(Themes, cfg.Theme) {
		return fmt.Errorf("%w: unknown theme %q (want one of %s)",
			ErrConfigInvalid, cfg.Theme, strings.Join(Themes, ", "))
	}
	return nil
}

// EnvMap turns os.Environ-style pairs into a map.
func EnvMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			out[k] = v
		}
	}
	return out
}
