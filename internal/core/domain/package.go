package domain

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
)

// PackageRecord describes a package installed in the local cache.
type PackageRecord struct {
	Reference      Reference       `json:"reference"`
	PackageID      string          `json:"package_id"`
	RecipeRevision string          `json:"recipe_revision,omitempty"`
	Commit         string          `json:"commit,omitempty"`
	Description    string          `json:"description,omitempty"`
	PackageType    string          `json:"package_type,omitempty"`
	Settings       Settings        `json:"settings"`
	Options        map[string]bool `json:"options,omitempty"`
	Requires       []Reference     `json:"requires,omitempty"`
	Libs           []string        `json:"libs,omitempty"`
	IncludeDirs    []string        `json:"include_dirs,omitempty"`
	LibDirs        []string        `json:"lib_dirs,omitempty"`
	BinDirs        []string        `json:"bin_dirs,omitempty"`
	PackageFolder  string          `json:"package_folder"`
	Imported       bool            `json:"imported,omitempty"`
	RunID          string          `json:"run_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Default component folders relative to the package folder.
var (
	DefaultIncludeDirs = []string{"include"}
	DefaultLibDirs     = []string{"lib"}
	DefaultBinDirs     = []string{"bin"}
)

// ComputePackageID hashes the inputs that determine a package binary.
// Header-only packages hash only their requirements.
func ComputePackageID(settings Settings, options OptionSet, requires []Reference, headerOnly bool) string {
	h := xxhash.New()

	if !headerOnly {
		_, _ = h.WriteString(settings.String())
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(options.String())
		_, _ = h.Write([]byte{0})
	}

	refs := make([]string, len(requires))
	for i, r := range requires {
		refs[i] = r.String()
	}
	slices.Sort(refs)
	for _, r := range refs {
		_, _ = h.WriteString(r)
		_, _ = h.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", h.Sum64())
}

// Matches reports whether the record can satisfy a requirement built with settings.
// Imported and header-only packages match any settings.
func (p *PackageRecord) Matches(settings Settings) bool {
	if p.Imported || p.PackageType == PackageTypeHeaderLibrary {
		return true
	}
	return p.Settings.OS == settings.OS &&
		p.Settings.Arch == settings.Arch &&
		p.Settings.BuildType == settings.BuildType
}

// MatchesOptions reports whether the record was built with every option in
// options set to the given value. Imported and header-only packages match
// any options, and so does an empty query.
func (p *PackageRecord) MatchesOptions(options map[string]bool) bool {
	if p.Imported || p.PackageType == PackageTypeHeaderLibrary {
		return true
	}
	for name, want := range options {
		got, ok := p.Options[name]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// IncludePaths returns absolute include directories.
func (p *PackageRecord) IncludePaths() []string {
	return p.abs(p.IncludeDirs)
}

// LibPaths returns absolute library directories.
func (p *PackageRecord) LibPaths() []string {
	return p.abs(p.LibDirs)
}

// BinPaths returns absolute binary directories.
func (p *PackageRecord) BinPaths() []string {
	return p.abs(p.BinDirs)
}

func (p *PackageRecord) abs(dirs []string) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		if filepath.IsAbs(d) {
			out[i] = d
			continue
		}
		out[i] = filepath.Join(p.PackageFolder, d)
	}
	return out
}
