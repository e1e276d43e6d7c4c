package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// PackageIdentity is the name, version and commit of the package being built.
// It is resolved once at the start of a run and treated as read-only afterwards.
type PackageIdentity struct {
	Name    string
	Version string
	Commit  string
}

// ParseDescribe extracts the version from `git describe --tags` output.
// Everything from the first hyphen on is discarded, so "v1.2.0-3-gabc123"
// becomes "v1.2.0".
func ParseDescribe(out string) string {
	v := strings.TrimSpace(out)
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}
	return v
}

// NewIdentity builds a PackageIdentity from raw version control output.
func NewIdentity(name, describe, commit string) (PackageIdentity, error) {
	version := ParseDescribe(describe)
	commit = strings.TrimSpace(commit)

	if version == "" {
		return PackageIdentity{}, zerr.With(zerr.Wrap(ErrVersionUnresolved, "empty describe output"), "describe", describe)
	}
	if commit == "" {
		return PackageIdentity{}, zerr.Wrap(ErrVersionUnresolved, "empty commit hash")
	}

	return PackageIdentity{
		Name:    name,
		Version: version,
		Commit:  commit,
	}, nil
}

// Reference returns the name/version reference of the identity.
func (p PackageIdentity) Reference() Reference {
	return Reference{Name: p.Name, Version: p.Version}
}

// IsSemver reports whether the resolved version is a semantic version.
func (p PackageIdentity) IsSemver() bool {
	return p.Reference().IsSemver()
}
