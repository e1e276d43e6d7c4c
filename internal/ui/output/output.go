// Package output builds termenv outputs with the color rules used across kiln.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// ForceColorEnv forces colored output even when stdout is not a terminal.
const ForceColorEnv = "KILN_FORCE_COLOR"

// ColorProfile returns the profile for interactive terminals.
// NO_COLOR wins over everything, KILN_FORCE_COLOR upgrades to ANSI256 at least.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	p := termenv.EnvColorProfile()
	if os.Getenv(ForceColorEnv) != "" && p == termenv.Ascii {
		return termenv.ANSI256
	}
	return p
}

// ColorProfileANSI returns the profile for CI logs.
func ColorProfileANSI() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New creates an output using ColorProfile.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	return NewWithProfile(w, ColorProfile, opts...)
}

// NewWithProfile creates an output with a custom profile selector.
// A nil writer falls back to stderr.
func NewWithProfile(w io.Writer, profileFn func() termenv.Profile, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(profileFn()),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}
