// Package cas implements the local package cache, one JSON record per package binary.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PackageStore = (*Store)(nil)

// Store implements ports.PackageStore with the layout
//
//	<packages>/<name>/<version>/<package id>/package.json
//	<sources>/<name>/<version>/<revision>/
type Store struct {
	packagesRoot string
	sourcesRoot  string
}

// NewStore creates a Store rooted at the given cache folders.
func NewStore(packagesRoot, sourcesRoot string) *Store {
	return &Store{packagesRoot: packagesRoot, sourcesRoot: sourcesRoot}
}

// PackageFolder returns the install prefix of a package binary.
func (s *Store) PackageFolder(ref domain.Reference, packageID string) string {
	return filepath.Join(s.packagesRoot, ref.Name, ref.Version, packageID)
}

// SourceFolder returns the export folder of a recipe revision.
func (s *Store) SourceFolder(ref domain.Reference, revision string) string {
	return filepath.Join(s.sourcesRoot, ref.Name, ref.Version, revision)
}

// Get retrieves a record, or nil if it does not exist.
func (s *Store) Get(ref domain.Reference, packageID string) (*domain.PackageRecord, error) {
	return s.read(filepath.Join(s.PackageFolder(ref, packageID), domain.RecordFileName))
}

// Find returns the newest record of ref whose settings match, or nil.
func (s *Store) Find(ref domain.Reference, settings domain.Settings) (*domain.PackageRecord, error) {
	return s.FindMatching(ref, settings, nil)
}

// FindMatching returns the newest record of ref whose settings and options match, or nil.
func (s *Store) FindMatching(ref domain.Reference, settings domain.Settings, options map[string]bool) (*domain.PackageRecord, error) {
	records, err := s.records(filepath.Join(s.packagesRoot, ref.Name, ref.Version))
	if err != nil {
		return nil, err
	}

	var best *domain.PackageRecord
	for _, rec := range records {
		if !rec.Matches(settings) || !rec.MatchesOptions(options) {
			continue
		}
		if best == nil || rec.CreatedAt.After(best.CreatedAt) {
			best = rec
		}
	}
	return best, nil
}

// Put writes the record into its package folder.
func (s *Store) Put(record *domain.PackageRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	dir := s.PackageFolder(record.Reference, record.PackageID)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", dir)
	}

	path := filepath.Join(dir, domain.RecordFileName)
	//nolint:gosec // Path is constructed from the cache root and a validated reference
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	return nil
}

// List returns every record ordered by name, version and package id.
func (s *Store) List() ([]*domain.PackageRecord, error) {
	names, err := subdirs(s.packagesRoot)
	if err != nil {
		return nil, err
	}

	var all []*domain.PackageRecord
	for _, name := range names {
		versions, err := subdirs(filepath.Join(s.packagesRoot, name))
		if err != nil {
			return nil, err
		}
		for _, version := range versions {
			records, err := s.records(filepath.Join(s.packagesRoot, name, version))
			if err != nil {
				return nil, err
			}
			all = append(all, records...)
		}
	}

	slices.SortFunc(all, func(a, b *domain.PackageRecord) int {
		if c := strings.Compare(a.Reference.Name, b.Reference.Name); c != 0 {
			return c
		}
		if c := domain.CompareVersions(a.Reference.Version, b.Reference.Version); c != 0 {
			return c
		}
		return strings.Compare(a.PackageID, b.PackageID)
	})
	return all, nil
}

// Remove deletes all binaries and exported sources of ref.
func (s *Store) Remove(ref domain.Reference) (int, error) {
	dir := filepath.Join(s.packagesRoot, ref.Name, ref.Version)
	ids, err := subdirs(dir)
	if err != nil {
		return 0, err
	}

	for _, p := range []string{dir, filepath.Join(s.sourcesRoot, ref.Name, ref.Version)} {
		if err := os.RemoveAll(p); err != nil {
			return 0, zerr.With(zerr.Wrap(err, "failed to remove package"), "path", p)
		}
	}
	return len(ids), nil
}

// records reads every record below a <name>/<version> folder.
func (s *Store) records(versionDir string) ([]*domain.PackageRecord, error) {
	ids, err := subdirs(versionDir)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.PackageRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.read(filepath.Join(versionDir, id, domain.RecordFileName))
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) read(path string) (*domain.PackageRecord, error) {
	//nolint:gosec // Path is constructed from the cache root
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	var rec domain.PackageRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "path", path)
	}
	return &rec, nil
}

// subdirs lists directory names in dir, sorted. A missing dir is empty.
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
