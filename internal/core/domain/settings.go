package domain

import (
	"runtime"
	"strings"

	"go.trai.ch/zerr"
)

// Operating systems understood by recipes.
const (
	OSLinux   = "Linux"
	OSWindows = "Windows"
	OSMacos   = "Macos"
	OSFreeBSD = "FreeBSD"
)

// DefaultBuildType is the build type used when none is configured.
const DefaultBuildType = "Release"

// Settings describes the target platform and toolchain of a build.
type Settings struct {
	OS        string `json:"os" yaml:"os"`
	Arch      string `json:"arch" yaml:"arch"`
	Compiler  string `json:"compiler" yaml:"compiler"`
	BuildType string `json:"build_type" yaml:"build_type"`
}

// HostSettings returns the settings describing the machine kiln runs on.
func HostSettings(buildType string) Settings {
	return settingsFor(runtime.GOOS, runtime.GOARCH, buildType)
}

func settingsFor(goos, goarch, buildType string) Settings {
	if buildType == "" {
		buildType = DefaultBuildType
	}
	os := mapOS(goos)
	return Settings{
		OS:        os,
		Arch:      mapArch(goarch),
		Compiler:  defaultCompiler(os),
		BuildType: buildType,
	}
}

func mapOS(goos string) string {
	switch goos {
	case "linux":
		return OSLinux
	case "windows":
		return OSWindows
	case "darwin":
		return OSMacos
	case "freebsd":
		return OSFreeBSD
	default:
		return goos
	}
}

func mapArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "armv8"
	case "386":
		return "x86"
	case "arm":
		return "armv7"
	default:
		return goarch
	}
}

func defaultCompiler(os string) string {
	switch os {
	case OSWindows:
		return "msvc"
	case OSMacos, OSFreeBSD:
		return "apple-clang"
	default:
		return "gcc"
	}
}

// IsWindows reports whether the settings target Windows.
func (s Settings) IsWindows() bool {
	return s.OS == OSWindows
}

// WithOverrides returns a copy of s with the given key=value settings applied.
// Recognized keys are os, arch, compiler and build_type.
func (s Settings) WithOverrides(kv map[string]string) (Settings, error) {
	out := s
	for k, v := range kv {
		switch k {
		case "os":
			out.OS = v
		case "arch":
			out.Arch = v
		case "compiler":
			out.Compiler = v
		case "build_type":
			out.BuildType = v
		default:
			return Settings{}, zerr.With(zerr.Wrap(ErrUnknownSetting, "apply settings"), "setting", k)
		}
	}
	return out, nil
}

// String renders the settings in a stable order.
func (s Settings) String() string {
	return "os=" + s.OS + ",arch=" + s.Arch + ",compiler=" + s.Compiler + ",build_type=" + s.BuildType
}

// CanRun reports whether binaries built for target can execute on host.
// A non-nil override takes precedence over the platform comparison.
func CanRun(host, target Settings, override *bool) bool {
	if override != nil {
		return *override
	}
	return host.OS == target.OS && host.Arch == target.Arch
}

// ParseCanRun parses a can-run override. "auto" and "" yield nil.
func ParseCanRun(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return nil, nil
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	default:
		return nil, zerr.With(zerr.Wrap(ErrInvalidCanRun, "parse can-run"), "value", s)
	}
}
