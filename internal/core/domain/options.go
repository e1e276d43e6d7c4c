package domain

import (
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Option is a recognized binary-configuration option.
type Option string

const (
	// OptionShared selects a shared instead of a static library.
	OptionShared Option = "shared"
	// OptionFPIC requests position independent code.
	OptionFPIC Option = "fPIC"
)

var knownOptions = []Option{OptionShared, OptionFPIC}

// ParseOption maps an option name to a recognized Option.
func ParseOption(name string) (Option, bool) {
	for _, o := range knownOptions {
		if string(o) == name {
			return o, true
		}
	}
	return "", false
}

// OptionSet is an immutable set of options with their values.
// Removing an option drops it from the set entirely; it is then neither
// reported nor configurable.
type OptionSet struct {
	values map[Option]bool
}

// NewOptionSet creates an OptionSet from the given values.
func NewOptionSet(values map[Option]bool) OptionSet {
	m := make(map[Option]bool, len(values))
	for k, v := range values {
		m[k] = v
	}
	return OptionSet{values: m}
}

// DefaultOptions returns the default library options: static with fPIC.
func DefaultOptions() OptionSet {
	return NewOptionSet(map[Option]bool{
		OptionShared: false,
		OptionFPIC:   true,
	})
}

// Has reports whether the option is present in the set.
func (s OptionSet) Has(o Option) bool {
	_, ok := s.values[o]
	return ok
}

// Value returns the value of the option and whether it is present.
func (s OptionSet) Value(o Option) (value, ok bool) {
	value, ok = s.values[o]
	return value, ok
}

// Enabled reports whether the option is present and true.
func (s OptionSet) Enabled(o Option) bool {
	return s.values[o]
}

// Remove returns a copy of the set without o.
// Removing an absent option is a no-op.
func (s OptionSet) Remove(o Option) OptionSet {
	if !s.Has(o) {
		return s
	}
	out := NewOptionSet(s.values)
	delete(out.values, o)
	return out
}

// Set returns a copy of the set with o assigned to value.
// Options that are not present are ignored.
func (s OptionSet) Set(o Option, value bool) OptionSet {
	if !s.Has(o) {
		return s
	}
	out := NewOptionSet(s.values)
	out.values[o] = value
	return out
}

// Len returns the number of options present.
func (s OptionSet) Len() int {
	return len(s.values)
}

// Names returns the sorted names of the options present.
func (s OptionSet) Names() []string {
	names := make([]string, 0, len(s.values))
	for o := range s.values {
		names = append(names, string(o))
	}
	slices.Sort(names)
	return names
}

// Map returns a copy of the options keyed by name.
func (s OptionSet) Map() map[string]bool {
	m := make(map[string]bool, len(s.values))
	for o, v := range s.values {
		m[string(o)] = v
	}
	return m
}

// String renders the set as sorted name=value pairs.
func (s OptionSet) String() string {
	parts := make([]string, 0, len(s.values))
	for _, name := range s.Names() {
		parts = append(parts, name+"="+strconv.FormatBool(s.values[Option(name)]))
	}
	return strings.Join(parts, ",")
}

// ConfigOptions prunes options that cannot apply to the target platform.
// fPIC has no meaning on Windows.
func ConfigOptions(s OptionSet, settings Settings) OptionSet {
	if settings.IsWindows() {
		return s.Remove(OptionFPIC)
	}
	return s
}

// ConfigureOptions prunes options made redundant by other option values.
// A shared library is always position independent, so fPIC is dropped.
func ConfigureOptions(s OptionSet) OptionSet {
	if s.Enabled(OptionShared) {
		return s.Remove(OptionFPIC)
	}
	return s
}

// PruneOptions computes the effective option set for a build.
// Platform pruning runs first, then user overrides for options still
// present, then pruning based on option values. It never fails; overrides
// for unknown or removed options are dropped.
func PruneOptions(defaults OptionSet, settings Settings, overrides map[string]bool) OptionSet {
	s := ConfigOptions(defaults, settings)

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if o, ok := ParseOption(name); ok {
			s = s.Set(o, overrides[name])
		}
	}

	return ConfigureOptions(s)
}

// ParseOptionOverrides parses name=value pairs from the command line.
func ParseOptionOverrides(pairs []string) (map[string]bool, error) {
	kv, err := ParseKeyValues(pairs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(kv))
	for k, v := range kv {
		b, ok := parseOptionValue(v)
		if !ok {
			return nil, zerr.With(zerr.With(zerr.Wrap(ErrInvalidOption, "parse option"), "option", k), "value", v)
		}
		out[k] = b
	}
	return out, nil
}

// parseOptionValue accepts true/True/1 and false/False/0.
func parseOptionValue(v string) (value, ok bool) {
	switch v {
	case "true", "True", "1":
		return true, true
	case "false", "False", "0":
		return false, true
	default:
		return false, false
	}
}

// ParseKeyValues parses key=value pairs. Later pairs win.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, zerr.With(zerr.Wrap(ErrInvalidKeyValue, "parse argument"), "argument", p)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
