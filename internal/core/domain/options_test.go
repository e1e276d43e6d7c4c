package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestOptionSet_RemoveIsSafe(t *testing.T) {
	s := domain.DefaultOptions()

	s = s.Remove(domain.OptionFPIC)
	assert.False(t, s.Has(domain.OptionFPIC))

	// Removing again is a no-op.
	s = s.Remove(domain.OptionFPIC)
	assert.False(t, s.Has(domain.OptionFPIC))
	assert.Equal(t, []string{"shared"}, s.Names())
}

func TestOptionSet_IsImmutable(t *testing.T) {
	base := domain.DefaultOptions()
	pruned := base.Remove(domain.OptionFPIC).Set(domain.OptionShared, true)

	assert.True(t, base.Has(domain.OptionFPIC))
	assert.False(t, base.Enabled(domain.OptionShared))
	assert.True(t, pruned.Enabled(domain.OptionShared))
}

func TestOptionSet_SetOnRemovedOptionIsIgnored(t *testing.T) {
	s := domain.DefaultOptions().Remove(domain.OptionFPIC)
	s = s.Set(domain.OptionFPIC, true)
	assert.False(t, s.Has(domain.OptionFPIC))
}

func TestPruneOptions(t *testing.T) {
	linux := domain.Settings{OS: domain.OSLinux, Arch: "x86_64", BuildType: "Release"}
	windows := domain.Settings{OS: domain.OSWindows, Arch: "x86_64", BuildType: "Release"}

	tests := []struct {
		name      string
		settings  domain.Settings
		overrides map[string]bool
		want      map[string]bool
	}{
		{
			name:     "linux static keeps fPIC",
			settings: linux,
			want:     map[string]bool{"shared": false, "fPIC": true},
		},
		{
			name:      "linux shared drops fPIC",
			settings:  linux,
			overrides: map[string]bool{"shared": true},
			want:      map[string]bool{"shared": true},
		},
		{
			name:     "windows drops fPIC",
			settings: windows,
			want:     map[string]bool{"shared": false},
		},
		{
			name:      "windows shared drops fPIC",
			settings:  windows,
			overrides: map[string]bool{"shared": true},
			want:      map[string]bool{"shared": true},
		},
		{
			name:      "windows ignores fPIC override",
			settings:  windows,
			overrides: map[string]bool{"fPIC": true},
			want:      map[string]bool{"shared": false},
		},
		{
			name:      "user can disable fPIC",
			settings:  linux,
			overrides: map[string]bool{"fPIC": false},
			want:      map[string]bool{"shared": false, "fPIC": false},
		},
		{
			name:      "unknown overrides are dropped",
			settings:  linux,
			overrides: map[string]bool{"with_docs": true},
			want:      map[string]bool{"shared": false, "fPIC": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.PruneOptions(domain.DefaultOptions(), tt.settings, tt.overrides)
			assert.Equal(t, tt.want, got.Map())

			// Invariants.
			if got.Enabled(domain.OptionShared) {
				assert.False(t, got.Has(domain.OptionFPIC))
			}
			if tt.settings.IsWindows() {
				assert.False(t, got.Has(domain.OptionFPIC))
			}
		})
	}
}

func TestParseOptionOverrides(t *testing.T) {
	t.Run("parses booleans", func(t *testing.T) {
		got, err := domain.ParseOptionOverrides([]string{"shared=True", "fPIC=0"})
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"shared": true, "fPIC": false}, got)
	})

	t.Run("parses every documented spelling", func(t *testing.T) {
		for _, v := range []string{"true", "True", "1"} {
			got, err := domain.ParseOptionOverrides([]string{"shared=" + v})
			require.NoError(t, err, v)
			assert.True(t, got["shared"], v)
		}
		for _, v := range []string{"false", "False", "0"} {
			got, err := domain.ParseOptionOverrides([]string{"shared=" + v})
			require.NoError(t, err, v)
			assert.False(t, got["shared"], v)
		}
	})

	t.Run("rejects non boolean values", func(t *testing.T) {
		for _, v := range []string{"maybe", "t", "T", "TRUE", "f", "FALSE", ""} {
			_, err := domain.ParseOptionOverrides([]string{"shared=" + v})
			require.Error(t, err, v)
			assert.True(t, errors.Is(err, domain.ErrInvalidOption), v)
		}
	})

	t.Run("rejects missing separator", func(t *testing.T) {
		_, err := domain.ParseOptionOverrides([]string{"shared"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidKeyValue))
	})
}

func TestOptionSet_String(t *testing.T) {
	assert.Equal(t, "fPIC=true,shared=false", domain.DefaultOptions().String())
	assert.Empty(t, domain.OptionSet{}.String())
}
