// Package cmake generates CMake integration files and drives cmake builds.
package cmake

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Names of the files written into the generators folder.
const (
	ToolchainFileName = "kiln_toolchain.cmake"
	PresetsFileName   = "CMakePresets.json"
	RunEnvFileName    = domain.RunEnvLabel + ".env"
)

// Generator implements ports.Generator for CMake find_package integration.
type Generator struct {
	pathSep string
}

var _ ports.Generator = (*Generator)(nil)

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{pathSep: string(os.PathListSeparator)}
}

// Generate writes the toolchain, per-dependency config files, presets and run environment.
func (g *Generator) Generate(
	ctx context.Context,
	layout domain.BuildLayout,
	cfg domain.BuildConfig,
	deps []*domain.PackageRecord,
) error {
	dir := layout.GeneratorsFolder
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrGenerateFailed.Error()), "dir", dir)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, dep := range deps {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.writeDependency(dir, dep)
		})
	}
	eg.Go(func() error { return g.writeToolchain(dir, cfg, deps) })
	eg.Go(func() error { return g.writePresets(dir, layout, cfg) })
	eg.Go(func() error { return g.writeRunEnv(dir, cfg, deps) })

	return eg.Wait()
}

type depView struct {
	Ref         string
	Name        string
	Target      string
	Version     string
	IncludeDirs string
	LibDirs     string
	Libs        string
}

func (g *Generator) writeDependency(dir string, dep *domain.PackageRecord) error {
	name := dep.Reference.Name
	view := depView{
		Ref:         dep.Reference.String(),
		Name:        name,
		Target:      name + "::" + name,
		Version:     cmakeVersion(dep.Reference.Version),
		IncludeDirs: cmakeList(dep.IncludePaths(), true),
		LibDirs:     cmakeList(dep.LibPaths(), true),
		Libs:        cmakeList(dep.Libs, false),
	}

	if err := renderFile(filepath.Join(dir, name+"-config.cmake"), configTemplate, view); err != nil {
		return zerr.With(err, "dependency", view.Ref)
	}
	if err := renderFile(filepath.Join(dir, name+"-config-version.cmake"), versionTemplate, view); err != nil {
		return zerr.With(err, "dependency", view.Ref)
	}
	return nil
}

func (g *Generator) writeToolchain(dir string, cfg domain.BuildConfig, deps []*domain.PackageRecord) error {
	names := make([]struct{ Name string }, len(deps))
	for i, d := range deps {
		names[i].Name = d.Reference.Name
	}
	return renderFile(filepath.Join(dir, ToolchainFileName), toolchainTemplate, map[string]any{
		"Variables":    cfg.ToolchainVariables(),
		"Dependencies": names,
	})
}

type presets struct {
	Version          int               `json:"version"`
	ConfigurePresets []configurePreset `json:"configurePresets"`
	BuildPresets     []buildPreset     `json:"buildPresets"`
	TestPresets      []buildPreset     `json:"testPresets"`
}

type configurePreset struct {
	Name           string            `json:"name"`
	DisplayName    string            `json:"displayName"`
	Generator      string            `json:"generator"`
	BinaryDir      string            `json:"binaryDir"`
	ToolchainFile  string            `json:"toolchainFile"`
	CacheVariables map[string]string `json:"cacheVariables,omitempty"`
}

type buildPreset struct {
	Name            string `json:"name"`
	ConfigurePreset string `json:"configurePreset"`
	Configuration   string `json:"configuration,omitempty"`
}

// PresetName returns the preset name used for a build type.
func PresetName(buildType string) string {
	return "kiln-" + strings.ToLower(buildType)
}

func (g *Generator) writePresets(dir string, layout domain.BuildLayout, cfg domain.BuildConfig) error {
	name := PresetName(cfg.Settings.BuildType)

	vars := make(map[string]string)
	for _, v := range cfg.CacheVariables() {
		vars[v.Name] = v.Value
	}

	var configuration string
	if domain.IsMultiConfig(cfg.Generator) {
		configuration = cfg.Settings.BuildType
	}

	p := presets{
		Version: 3,
		ConfigurePresets: []configurePreset{{
			Name:           name,
			DisplayName:    "kiln " + cfg.Settings.BuildType,
			Generator:      cfg.Generator,
			BinaryDir:      sourceRelative(layout, layout.BuildFolder),
			ToolchainFile:  sourceRelative(layout, filepath.Join(layout.GeneratorsFolder, ToolchainFileName)),
			CacheVariables: vars,
		}},
		BuildPresets: []buildPreset{{Name: name, ConfigurePreset: name, Configuration: configuration}},
		TestPresets:  []buildPreset{{Name: name, ConfigurePreset: name, Configuration: configuration}},
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrGenerateFailed.Error())
	}
	return writeFile(filepath.Join(dir, PresetsFileName), append(data, '\n'))
}

func (g *Generator) writeRunEnv(dir string, cfg domain.BuildConfig, deps []*domain.PackageRecord) error {
	env := domain.RunEnvironment(deps, cfg.Settings, g.pathSep)

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		buf.WriteString(k + "=" + env[k] + "\n")
	}
	return writeFile(filepath.Join(dir, RunEnvFileName), buf.Bytes())
}

// sourceRelative expresses path relative to the preset's ${sourceDir}.
func sourceRelative(layout domain.BuildLayout, path string) string {
	rel, err := filepath.Rel(layout.SourceFolder, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return "${sourceDir}/" + filepath.ToSlash(rel)
}

// cmakeVersion strips a leading v so CMake version comparisons work on tags.
func cmakeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

func cmakeList(items []string, paths bool) string {
	if len(items) == 0 {
		return `""`
	}
	quoted := make([]string, len(items))
	for i, it := range items {
		if paths {
			it = filepath.ToSlash(it)
		}
		quoted[i] = `"` + it + `"`
	}
	return strings.Join(quoted, " ")
}

func renderFile(path string, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrGenerateFailed.Error()), "file", filepath.Base(path))
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrGenerateFailed.Error()), "file", path)
	}
	return nil
}
