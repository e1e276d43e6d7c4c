package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestParseDescribe(t *testing.T) {
	tests := []struct {
		name     string
		describe string
		want     string
	}{
		{name: "exact tag", describe: "v1.2.0", want: "v1.2.0"},
		{name: "commits after tag", describe: "v1.2.0-3-gabc1234", want: "v1.2.0"},
		{name: "trailing newline", describe: "0.4.1-12-gdeadbee\n", want: "0.4.1"},
		{name: "prerelease tag is truncated", describe: "1.0.0-rc1", want: "1.0.0"},
		{name: "leading hyphen", describe: "-3-gabc", want: ""},
		{name: "empty", describe: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseDescribe(tt.describe))
		})
	}
}

func TestNewIdentity(t *testing.T) {
	t.Run("resolves version and commit", func(t *testing.T) {
		id, err := domain.NewIdentity("libmotor", "v0.3.0-7-g1a2b3c4\n", "1a2b3c4d5e6f\n")
		require.NoError(t, err)

		assert.Equal(t, "libmotor", id.Name)
		assert.Equal(t, "v0.3.0", id.Version)
		assert.Equal(t, "1a2b3c4d5e6f", id.Commit)
		assert.Equal(t, "libmotor/v0.3.0", id.Reference().String())
		assert.True(t, id.IsSemver())
	})

	t.Run("fails without a tag", func(t *testing.T) {
		_, err := domain.NewIdentity("libmotor", "", "1a2b3c4")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrVersionUnresolved))
	})

	t.Run("fails without a commit", func(t *testing.T) {
		_, err := domain.NewIdentity("libmotor", "v1.0.0", "  ")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrVersionUnresolved))
	})

	t.Run("non semver tags are accepted", func(t *testing.T) {
		id, err := domain.NewIdentity("libmotor", "release_a-1-gabc", "abc")
		require.NoError(t, err)
		assert.Equal(t, "release_a", id.Version)
		assert.False(t, id.IsSemver())
	})
}
