// Package envconfig reads process-level settings from KILN_* environment variables.
package envconfig

import (
	"slices"

	"github.com/caarlos0/env/v6"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Toolchain providers.
const (
	ToolchainHost = "host"
	ToolchainNix  = "nix"
)

var (
	logFormats    = []string{"auto", "pretty", "text", "json"}
	progressModes = []string{"auto", "tui", "linear"}
)

// Config is the process configuration.
type Config struct {
	// Home is the cache root. Defaults to ~/.kiln.
	Home string `env:"KILN_HOME"`

	// BuildType is the default build_type setting.
	BuildType string `env:"KILN_BUILD_TYPE" envDefault:"Release"`

	// Toolchain selects how tool requirements are provided: "host" or "nix".
	Toolchain string `env:"KILN_TOOLCHAIN" envDefault:"host"`

	// LogFormat is "auto", "pretty" or "json".
	LogFormat string `env:"KILN_LOG_FORMAT" envDefault:"auto"`

	// Progress is "auto", "tui" or "linear".
	Progress string `env:"KILN_PROGRESS" envDefault:"auto"`

	// MetricsFile receives Prometheus text metrics after each run when set.
	MetricsFile string `env:"KILN_METRICS_FILE"`

	// NixCache overrides the NixHub resolution cache directory.
	NixCache string `env:"KILN_NIX_CACHE"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, zerr.Wrap(domain.ErrEnvConfigFailed, err.Error())
	}

	if cfg.Home == "" {
		cfg.Home = domain.DefaultHome()
	}
	if cfg.NixCache == "" {
		cfg.NixCache = domain.NixHubCachePath(cfg.Home)
	}

	if cfg.Toolchain != ToolchainHost && cfg.Toolchain != ToolchainNix {
		return nil, zerr.With(zerr.Wrap(domain.ErrEnvConfigFailed, "unknown toolchain provider"),
			"KILN_TOOLCHAIN", cfg.Toolchain)
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, zerr.With(zerr.Wrap(domain.ErrEnvConfigFailed, "unknown log format"),
			"KILN_LOG_FORMAT", cfg.LogFormat)
	}
	if !slices.Contains(progressModes, cfg.Progress) {
		return nil, zerr.With(zerr.Wrap(domain.ErrEnvConfigFailed, "unknown progress mode"),
			"KILN_PROGRESS", cfg.Progress)
	}
	return cfg, nil
}

// PackagesPath is the package cache directory.
func (c *Config) PackagesPath() string {
	return domain.PackagesPath(c.Home)
}

// SourcesPath is the exported sources directory.
func (c *Config) SourcesPath() string {
	return domain.SourcesPath(c.Home)
}

// EnvCachePath is the resolved nix environment cache directory.
func (c *Config) EnvCachePath() string {
	return domain.EnvCachePath(c.Home)
}
