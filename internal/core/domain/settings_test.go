package domain_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestHostSettings(t *testing.T) {
	s := domain.HostSettings("")
	assert.Equal(t, domain.DefaultBuildType, s.BuildType)
	assert.NotEmpty(t, s.OS)
	assert.NotEmpty(t, s.Arch)
	assert.NotEmpty(t, s.Compiler)

	if runtime.GOOS == "linux" {
		assert.Equal(t, domain.OSLinux, s.OS)
	}
	if runtime.GOARCH == "amd64" {
		assert.Equal(t, "x86_64", s.Arch)
	}
}

func TestSettings_WithOverrides(t *testing.T) {
	base := domain.Settings{OS: domain.OSLinux, Arch: "x86_64", Compiler: "gcc", BuildType: "Release"}

	t.Run("applies known keys", func(t *testing.T) {
		got, err := base.WithOverrides(map[string]string{"os": "Windows", "build_type": "Debug"})
		require.NoError(t, err)
		assert.Equal(t, domain.OSWindows, got.OS)
		assert.Equal(t, "Debug", got.BuildType)
		assert.Equal(t, "gcc", got.Compiler)
		assert.Equal(t, domain.OSLinux, base.OS)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := base.WithOverrides(map[string]string{"libc": "musl"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnknownSetting))
	})
}

func TestCanRun(t *testing.T) {
	host := domain.Settings{OS: domain.OSLinux, Arch: "x86_64"}
	cross := domain.Settings{OS: domain.OSLinux, Arch: "armv8"}
	yes, no := true, false

	assert.True(t, domain.CanRun(host, host, nil))
	assert.False(t, domain.CanRun(host, cross, nil))
	assert.True(t, domain.CanRun(host, cross, &yes))
	assert.False(t, domain.CanRun(host, host, &no))
}

func TestParseCanRun(t *testing.T) {
	v, err := domain.ParseCanRun("auto")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = domain.ParseCanRun("False")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, *v)

	_, err = domain.ParseCanRun("maybe")
	assert.True(t, errors.Is(err, domain.ErrInvalidCanRun))
}
