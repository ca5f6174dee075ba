package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(LoadInput{Env: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, BackendJSON, cfg.Backend)
	assert.Equal(t, "classic", cfg.Theme)
	assert.Empty(t, cfg.DataDir)
	assert.Empty(t, cfg.Sources)
}

func TestLoadPrecedence(t *testing.T) {
	t.Parallel()

	xdg := t.TempDir()
	globalPath := filepath.Join(xdg, "tada", "config.json")
	writeFile(t, globalPath, `{
		// global defaults
		"backend": "sqlite",
		"theme": "neon",
		"data_dir": "/from/global",
	}`)

	explicit := filepath.Join(t.TempDir(), "tada.jsonc")
	writeFile(t, explicit, `{"theme": "mono", /* wins over global */ "data_dir": "/from/explicit"}`)

	env := map[string]string{
		"XDG_CONFIG_HOME": xdg,
		"TADA_DATA_DIR":   "/from/env",
		"TADA_DEBUG_LOG":  "/tmp/tada.log",
	}
	backend := "memory"

	cfg, err := Load(LoadInput{
		ConfigPath: explicit,
		Env:        env,
		Overrides:  Overrides{Backend: &backend},
	})
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.DataDir)
	assert.Equal(t, "mono", cfg.Theme)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "/tmp/tada.log", cfg.DebugLog)
	assert.Equal(t, []string{globalPath, explicit}, cfg.Sources)
}

func TestLoadHomeFallback(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "tada", "config.json"), `{"no_color": true}`)

	cfg, err := Load(LoadInput{Env: map[string]string{"HOME": home}})
	require.NoError(t, err)
	assert.True(t, cfg.NoColor)
}

func TestLoadEnvCanDisableNoColor(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "tada", "config.json"), `{"no_color": true}`)

	cfg, err := Load(LoadInput{Env: map[string]string{"HOME": home, "TADA_NO_COLOR": "false"}})
	require.NoError(t, err)
	assert.False(t, cfg.NoColor)
}

func TestLoadExplicitFileCanDisableNoColor(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "tada", "config.json"), `{"no_color": true}`)
	explicit := filepath.Join(t.TempDir(), "tada.jsonc")
	writeFile(t, explicit, `{"no_color": false}`)

	cfg, err := Load(LoadInput{ConfigPath: explicit, Env: map[string]string{"HOME": home}})
	require.NoError(t, err)
	assert.False(t, cfg.NoColor)

	// A file that leaves the key out keeps the earlier value.
	writeFile(t, explicit, `{"theme": "mono"}`)
	cfg, err = Load(LoadInput{ConfigPath: explicit, Env: map[string]string{"HOME": home}})
	require.NoError(t, err)
	assert.True(t, cfg.NoColor)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	broken := filepath.Join(t.TempDir(), "broken.json")
	writeFile(t, broken, `{"backend": `)

	tests := []struct {
		name    string
		in      LoadInput
		wantErr error
	}{
		{"missing explicit file", LoadInput{ConfigPath: filepath.Join(t.TempDir(), "nope.json")}, ErrConfigFileNotFound},
		{"malformed file", LoadInput{ConfigPath: broken}, ErrConfigInvalid},
		{"unknown backend", LoadInput{Env: map[string]string{"TADA_BACKEND": "redis"}}, ErrConfigInvalid},
		{"unknown theme", LoadInput{Env: map[string]string{"TADA_THEME": "pastel"}}, ErrConfigInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(tc.in)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadBadEnvValue(t *testing.T) {
	t.Parallel()

	_, err := Load(LoadInput{Env: map[string]string{"TADA_NO_COLOR": "maybe"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadNormalizesCase(t *testing.T) {
	t.Parallel()

	cfg, err := Load(LoadInput{Env: map[string]string{"TADA_BACKEND": "SQLite", "TADA_THEME": " Neon "}})
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "neon", cfg.Theme)
}

func TestEnvMap(t *testing.T) {
	t.Parallel()

	got := EnvMap([]string{"A=1", "B=x=y", "broken"})
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y"}, got)
}
