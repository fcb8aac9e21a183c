package config

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := AppFs
	fs := afero.NewMemMapFs()
	AppFs = fs
	t.Cleanup(func() { AppFs = prev })
	return fs
}

func TestLoadExplicitFile(t *testing.T) {
	fs := withFs(t)
	require.NoError(t, afero.WriteFile(fs, "/proj/expand.yaml", []byte(`
memo_capacity: 64
max_depth: 3
env:
  - OUT_DIR=/tmp/out
`), 0644))
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("PROFILE=debug\nOUT_DIR=/from/dotenv\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("PROFILE=release\n"), 0644))

	cfg, err := Load(viper.New(), "/proj/expand.yaml")
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.MemoCapacity)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, "1.0.0", cfg.ConfigVersion)
	assert.Equal(t, map[string]string{"OUT_DIR": "/tmp/out", "PROFILE": "release"}, cfg.Env)
	assert.Equal(t, "/proj/expand.yaml", cfg.File)
}

func TestLoadRejectsMalformedEnvEntry(t *testing.T) {
	fs := withFs(t)
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("env:\n  - NOVALUE\n"), 0644))
	_, err := Load(viper.New(), "/c.yaml")
	assert.ErrorContains(t, err, "NOVALUE")
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	withFs(t)
	t.Setenv("HOME", "/home/nobody")
	t.Setenv("EXPAND_GO_MAX_DEPTH", "5")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxDepth)
	assert.Equal(t, 0, cfg.MemoCapacity)
	assert.Empty(t, cfg.File)
	assert.Empty(t, cfg.Env)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	withFs(t)
	_, err := Load(viper.New(), "/nope.yaml")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	withFs(t)
	path := "/cfg/" + FileName + ".yaml"
	require.NoError(t, Save(&Config{MemoCapacity: 8, MaxDepth: 2, ConfigVersion: "1.0.0", Env: map[string]string{"K": "v"}}, path))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MemoCapacity)
	assert.Equal(t, 2, cfg.MaxDepth)
	assert.Equal(t, "v", cfg.Env["K"])
}

func TestDefaultPath(t *testing.T) {
	if _, err := os.UserHomeDir(); err != nil {
		t.Skip("no home directory")
	}
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Contains(t, p, ".config/expand-go/.expand-go.yaml")
}
