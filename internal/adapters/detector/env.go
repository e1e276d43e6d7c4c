// Package detector picks the log format and color profile from the environment.
package detector

import (
	"os"

	"golang.org/x/term"
)

// LogFormat is the format used for log and progress output.
type LogFormat int

const (
	// FormatAuto selects a format from the environment.
	FormatAuto LogFormat = iota
	// FormatPretty is colored human readable output.
	FormatPretty
	// FormatJSON is one slog JSON record per line.
	FormatJSON
)

// String returns the flag spelling of the format.
func (f LogFormat) String() string {
	switch f {
	case FormatPretty:
		return "pretty"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// Environment is a snapshot of the facts the detector looks at.
type Environment struct {
	IsTTY bool
	CI    bool
}

// Current inspects stderr and the CI variable of the running process.
func Current() Environment {
	ci := os.Getenv("CI")
	return Environment{
		IsTTY: term.IsTerminal(int(os.Stderr.Fd())),
		CI:    ci == "true" || ci == "1",
	}
}

// Detect returns the format for an environment. CI and redirected output
// get JSON so log collectors can parse the stage records.
func (e Environment) Detect() LogFormat {
	if !e.IsTTY || e.CI {
		return FormatJSON
	}
	return FormatPretty
}

// Resolve applies a user setting ("auto", "pretty", "json") on top of detection.
// Unknown values behave like "auto".
func Resolve(env Environment, setting string) LogFormat {
	switch setting {
	case "pretty", "text":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return env.Detect()
	}
}

// Progress is how stage progress is displayed.
type Progress int

const (
	// ProgressLinear prints prefixed lines in execution order.
	ProgressLinear Progress = iota
	// ProgressTUI runs the interactive stage tree.
	ProgressTUI
)

// ResolveProgress applies a user setting ("auto", "tui", "linear") on top of
// detection. The tree needs an interactive terminal and pretty logs, so
// "auto" falls back to linear output everywhere else.
func ResolveProgress(env Environment, setting, logFormat string) Progress {
	switch setting {
	case "tui":
		return ProgressTUI
	case "linear":
		return ProgressLinear
	}
	if env.IsTTY && !env.CI && Resolve(env, logFormat) == FormatPretty {
		return ProgressTUI
	}
	return ProgressLinear
}
