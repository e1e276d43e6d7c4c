package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// FileSystem implements ports.FileSystem on the local disk.
type FileSystem struct {
	walker *Walker
}

// NewFileSystem creates a new FileSystem.
func NewFileSystem(walker *Walker) *FileSystem {
	return &FileSystem{walker: walker}
}

// CopyFile copies srcDir/name to dstDir/name, creating dstDir.
// A missing source is reported as false without error.
func (f *FileSystem) CopyFile(name, srcDir, dstDir string) (bool, error) {
	src := filepath.Join(srcDir, name)
	in, err := os.Open(src) //nolint:gosec // path comes from the build layout
	if errors.Is(err, iofs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to open file"), "path", src)
	}
	defer func() { _ = in.Close() }()

	if err := copyTo(in, filepath.Join(dstDir, name)); err != nil {
		return false, err
	}
	return true, nil
}

// ExportSources copies every file of root matching one of patterns into dst.
// Patterns use fnmatch semantics where '*' also matches '/', so "src/*"
// selects the whole src tree.
func (f *FileSystem) ExportSources(root string, patterns []string, dst string) ([]string, error) {
	matchers := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		matchers = append(matchers, compilePattern(p))
	}

	var exported []string
	for rel := range f.walker.WalkFiles(root) {
		if !slices.ContainsFunc(matchers, func(re *regexp.Regexp) bool { return re.MatchString(rel) }) {
			continue
		}
		if err := copyFile(filepath.Join(root, filepath.FromSlash(rel)), filepath.Join(dst, filepath.FromSlash(rel))); err != nil {
			return nil, zerr.Wrap(err, domain.ErrExportFailed.Error())
		}
		exported = append(exported, rel)
	}

	if len(exported) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoExportedSources, strings.Join(patterns, ", ")), "root", root)
	}
	slices.Sort(exported)
	return exported, nil
}

// Exists reports whether path exists.
func (f *FileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// RemoveAll deletes path and everything below it.
func (f *FileSystem) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove path"), "path", path)
	}
	return nil
}

// compilePattern translates an fnmatch pattern into an anchored regexp.
func compilePattern(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range filepath.ToSlash(pattern) {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // walked from the recipe folder
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open file"), "path", src)
	}
	defer func() { _ = in.Close() }()
	return copyTo(in, dst)
}

func copyTo(in io.Reader, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dst))
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.FilePerm) //nolint:gosec // destination inside the cache
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close file"), "path", dst)
	}
	return nil
}
