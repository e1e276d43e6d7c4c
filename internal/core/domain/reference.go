package domain

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

var validNameRegex = regexp.MustCompile(`^[a-z0-9_][a-z0-9_.+-]*$`)

// versionRangeChars are the characters that introduce a version range expression.
const versionRangeChars = "[]<>~^*|, "

// Reference identifies a package by name and exact version.
type Reference struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// ParseReference parses a name/version reference.
// Version ranges are rejected; every requirement must be an exact pin.
func ParseReference(s string) (Reference, error) {
	name, version, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || name == "" || version == "" || strings.Contains(version, "/") {
		return Reference{}, zerr.With(zerr.Wrap(ErrInvalidReference, "parse reference"), "reference", s)
	}

	if err := ValidateName(name); err != nil {
		return Reference{}, zerr.With(err, "reference", s)
	}

	if strings.ContainsAny(version, versionRangeChars) {
		return Reference{}, zerr.With(zerr.Wrap(ErrVersionRangeNotAllowed, "parse reference"), "reference", s)
	}

	return Reference{Name: name, Version: version}, nil
}

// MustParseReference is like ParseReference but panics on error.
// It is intended for package-level constants.
func MustParseReference(s string) Reference {
	ref, err := ParseReference(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// ValidateName checks that a package name is well formed.
func ValidateName(name string) error {
	if name == "" {
		return ErrMissingRecipeName
	}
	if !validNameRegex.MatchString(name) {
		return zerr.With(zerr.Wrap(ErrInvalidRecipeName, "validate name"), "name", name)
	}
	return nil
}

// String returns the name/version form of the reference.
func (r Reference) String() string {
	return r.Name + "/" + r.Version
}

// IsZero reports whether the reference is empty.
func (r Reference) IsZero() bool {
	return r.Name == "" && r.Version == ""
}

// IsSemver reports whether the version is a valid semantic version.
func (r Reference) IsSemver() bool {
	_, err := semver.NewVersion(r.Version)
	return err == nil
}

// CompareVersions orders two versions. Semantic versions compare by precedence,
// anything else falls back to a plain string comparison.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return strings.Compare(a, b)
}
