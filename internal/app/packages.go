package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/ui/style"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Inspection is the recipe summary printed by Inspect.
type Inspection struct {
	Name           string          `yaml:"name"`
	Version        string          `yaml:"version,omitempty"`
	PackageType    string          `yaml:"packageType"`
	License        string          `yaml:"license,omitempty"`
	Author         string          `yaml:"author,omitempty"`
	URL            string          `yaml:"url,omitempty"`
	Description    string          `yaml:"description,omitempty"`
	Topics         []string        `yaml:"topics,omitempty"`
	Settings       string          `yaml:"settings"`
	Options        map[string]bool `yaml:"options,omitempty"`
	PackageID      string          `yaml:"packageId,omitempty"`
	ToolRequires   []string        `yaml:"toolRequires,omitempty"`
	Requires       []string        `yaml:"requires,omitempty"`
	ExportsSources []string        `yaml:"exportsSources,omitempty"`
	Generator      string          `yaml:"generator"`
	Libs           []string        `yaml:"libs,omitempty"`
	TestPackage    bool            `yaml:"testPackage"`
}

// Inspect writes the effective attributes of the recipe in dir as YAML.
// The version is omitted when it cannot be resolved.
func (a *App) Inspect(ctx context.Context, dir string, opts BuildOptions, w io.Writer) error {
	req, err := a.prepare(dir, opts)
	if err != nil {
		return err
	}
	r := req.recipe
	options := domain.PruneOptions(r.DefaultOptions, req.settings, req.overrides)

	out := Inspection{
		Name:           r.Name,
		PackageType:    r.PackageType,
		License:        r.License,
		Author:         r.Author,
		URL:            r.URL,
		Description:    r.Description,
		Topics:         r.Topics,
		Settings:       req.settings.String(),
		Options:        options.Map(),
		PackageID:      domain.ComputePackageID(req.settings, options, r.Requires, r.IsHeaderOnly()),
		ToolRequires:   refStrings(r.ToolRequires),
		Requires:       refStrings(r.Requires),
		ExportsSources: r.ExportsSources,
		Generator:      r.Generator,
		Libs:           r.Libs,
		TestPackage:    a.d.FileSystem.Exists(filepath.Join(r.TestPackageDir(), domain.RecipeFileName)),
	}

	if ref, err := a.testedReference(ctx, r, ""); err == nil {
		out.Version = ref.Version
	} else {
		a.d.Logger.Warn("version not resolved: " + err.Error())
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return zerr.Wrap(err, "encode inspection")
	}
	return enc.Close()
}

// ImportOptions describes an existing install prefix registered as a package.
type ImportOptions struct {
	Reference   string
	Prefix      string
	PackageType string
	Description string
	Libs        []string
}

// Import registers an install prefix that was not built by kiln, such as a
// system installation, as a package matching any settings.
func (a *App) Import(_ context.Context, opts ImportOptions) (*domain.PackageRecord, error) {
	ref, err := domain.ParseReference(opts.Reference)
	if err != nil {
		return nil, err
	}

	prefix, err := filepath.Abs(opts.Prefix)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "resolve prefix"), "prefix", opts.Prefix)
	}
	if !a.d.FileSystem.Exists(prefix) {
		return nil, zerr.With(zerr.Wrap(domain.ErrImportPrefixNotFound, "import "+ref.String()), "prefix", prefix)
	}

	packageType := opts.PackageType
	if packageType == "" {
		packageType = domain.PackageTypeLibrary
	}

	record := &domain.PackageRecord{
		Reference:     ref,
		PackageID:     fmt.Sprintf("%016x", xxhash.Sum64String(prefix)),
		Description:   opts.Description,
		PackageType:   packageType,
		Libs:          opts.Libs,
		IncludeDirs:   domain.DefaultIncludeDirs,
		LibDirs:       domain.DefaultLibDirs,
		BinDirs:       domain.DefaultBinDirs,
		PackageFolder: prefix,
		Imported:      true,
		RunID:         a.newRunID(),
		CreatedAt:     a.now().UTC(),
	}
	if err := a.d.Store.Put(record); err != nil {
		return nil, err
	}

	a.d.Metrics.PackageCreated("imported")
	if err := a.d.Metrics.Flush(); err != nil {
		a.d.Logger.Warn("failed to write metrics: " + err.Error())
	}
	a.d.Logger.Info("imported " + ref.String() + " from " + prefix)
	return record, nil
}

// List writes the cached packages as a table. A non-empty name filters by package name.
func (a *App) List(_ context.Context, name string, w io.Writer) error {
	records, err := a.d.Store.List()
	if err != nil {
		return err
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("REFERENCE", "PACKAGE ID", "TYPE", "SETTINGS", "OPTIONS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return style.Header
			}
			return lipgloss.NewStyle()
		})

	n := 0
	for _, r := range records {
		if name != "" && r.Reference.Name != name {
			continue
		}
		settings := r.Settings.String()
		if r.Imported {
			settings = "imported"
		}
		t.Row(r.Reference.String(), r.PackageID, r.PackageType, settings, formatOptions(r.Options))
		n++
	}

	if n == 0 {
		a.d.Logger.Info("no packages in cache")
		return nil
	}
	_, err = fmt.Fprintln(w, t.String())
	return err
}

// UploadOptions configures Upload.
type UploadOptions struct {
	Settings []string
	// Options restricts the pushed binary to one built with these values.
	// Without options the newest binary for the settings is pushed.
	Options []string
	Target  domain.UploadTarget
}

// Upload pushes the cached binary of reference matching the settings and
// options to a registry. The repository defaults to the package name.
func (a *App) Upload(ctx context.Context, reference string, opts UploadOptions) (*domain.UploadResult, error) {
	ref, err := domain.ParseReference(reference)
	if err != nil {
		return nil, err
	}
	settings, err := a.SettingsFor(opts.Settings)
	if err != nil {
		return nil, err
	}

	options, err := domain.ParseOptionOverrides(opts.Options)
	if err != nil {
		return nil, err
	}

	record, err := a.d.Store.FindMatching(ref, settings, options)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "upload"),
			"reference", ref.String()), "settings", settings.String())
	}

	target := opts.Target
	if target.Repository == "" {
		target.Repository = ref.Name
	}

	res, err := a.d.Publisher.Push(ctx, record, target)
	if err != nil {
		return nil, err
	}
	a.d.Logger.Info("uploaded " + ref.String() + " to " + res.Reference + "@" + res.Digest)
	return res, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// Reference removes only the binaries and sources of one package.
	Reference string
	Packages  bool
	Sources   bool
	Tools     bool
}

// Clean removes cached packages, exported sources or tool caches.
// Without any selection it removes packages and sources.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	if opts.Reference != "" {
		ref, err := domain.ParseReference(opts.Reference)
		if err != nil {
			return err
		}
		n, err := a.d.Store.Remove(ref)
		if err != nil {
			return err
		}
		a.d.Logger.Info(fmt.Sprintf("removed %d binaries of %s", n, ref))
		return nil
	}

	if !opts.Packages && !opts.Sources && !opts.Tools {
		opts.Packages = true
		opts.Sources = true
	}

	var errs []error
	remove := func(path, name string) {
		a.d.Logger.Info(fmt.Sprintf("removing %s...", name))
		if err := a.d.FileSystem.RemoveAll(path); err != nil {
			errs = append(errs, zerr.With(zerr.Wrap(err, "failed to remove "+name), "path", path))
			return
		}
		a.d.Logger.Info(fmt.Sprintf("removed %s", name))
	}

	if opts.Packages {
		remove(a.cfg.PackagesPath, "package cache")
	}
	if opts.Sources {
		remove(a.cfg.SourcesPath, "exported sources")
	}
	if opts.Tools {
		for _, p := range a.cfg.ToolCachePaths {
			remove(p, "tool cache "+filepath.Base(p))
		}
	}

	return errors.Join(errs...)
}

func refStrings(refs []domain.Reference) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

func formatOptions(opts map[string]bool) string {
	return domain.NewOptionSet(optionValues(opts)).String()
}

func optionValues(opts map[string]bool) map[domain.Option]bool {
	out := make(map[domain.Option]bool, len(opts))
	for k, v := range opts {
		out[domain.Option(k)] = v
	}
	return out
}
