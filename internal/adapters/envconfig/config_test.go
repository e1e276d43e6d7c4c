package envconfig_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/envconfig"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := envconfig.LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultHome(), cfg.Home)
	assert.Equal(t, "Release", cfg.BuildType)
	assert.Equal(t, envconfig.ToolchainHost, cfg.Toolchain)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Equal(t, "auto", cfg.Progress)
	assert.Empty(t, cfg.MetricsFile)
	assert.Equal(t, domain.NixHubCachePath(cfg.Home), cfg.NixCache)
}

func TestLoadFrom_Overrides(t *testing.T) {
	home := filepath.FromSlash("/var/cache/kiln")
	cfg, err := envconfig.LoadFrom(map[string]string{
		"KILN_HOME":         home,
		"KILN_BUILD_TYPE":   "Debug",
		"KILN_TOOLCHAIN":    "nix",
		"KILN_LOG_FORMAT":   "json",
		"KILN_PROGRESS":     "linear",
		"KILN_METRICS_FILE": "/var/lib/node_exporter/kiln.prom",
	})
	require.NoError(t, err)

	assert.Equal(t, "Debug", cfg.BuildType)
	assert.Equal(t, envconfig.ToolchainNix, cfg.Toolchain)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "linear", cfg.Progress)
	assert.Equal(t, filepath.Join(home, "p"), cfg.PackagesPath())
	assert.Equal(t, filepath.Join(home, "s"), cfg.SourcesPath())
	assert.Equal(t, filepath.Join(home, "cache", "environments"), cfg.EnvCachePath())
	assert.Equal(t, filepath.Join(home, "cache", "nixhub"), cfg.NixCache)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"toolchain":  {"KILN_TOOLCHAIN": "conda"},
		"log format": {"KILN_LOG_FORMAT": "xml"},
		"progress":   {"KILN_PROGRESS": "spinner"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := envconfig.LoadFrom(vars)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrEnvConfigFailed))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("KILN_HOME", t.TempDir())
	t.Setenv("KILN_TOOLCHAIN", "host")

	cfg, err := envconfig.Load()
	require.NoError(t, err)
	assert.Equal(t, envconfig.ToolchainHost, cfg.Toolchain)
}
