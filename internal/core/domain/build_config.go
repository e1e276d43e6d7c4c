package domain

import "strings"

// DefaultGenerator is the CMake generator used when a recipe does not name one.
const DefaultGenerator = "Ninja"

// Cache variable names read by the library's CMakeLists.txt.
const (
	VarProjectName        = "CONAN_PROJECT_NAME"
	VarProjectVersion     = "CONAN_PROJECT_VERSION"
	VarProjectDescription = "CONAN_PROJECT_DESCRIPTION"
	VarProjectGitHash     = "CONAN_PROJECT_GIT_HASH"
	VarExportCompileCmds  = "CMAKE_EXPORT_COMPILE_COMMANDS"
)

// ProjectMetadata is forwarded to CMake as cache variables.
type ProjectMetadata struct {
	Name        string
	Version     string
	Description string
	GitHash     string
}

// CacheVariable is a single CMake cache entry.
type CacheVariable struct {
	Name  string
	Value string
}

// BuildConfig is the configuration handed from the generate step to the build step.
// It is built once per flow and passed by value; nothing mutates it afterwards.
type BuildConfig struct {
	Generator             string
	Settings              Settings
	Options               OptionSet
	ExportCompileCommands bool
	Metadata              *ProjectMetadata
}

// NewBuildConfig creates a BuildConfig. A nil metadata omits the project cache variables.
func NewBuildConfig(generator string, settings Settings, options OptionSet, metadata *ProjectMetadata) BuildConfig {
	if generator == "" {
		generator = DefaultGenerator
	}
	var md *ProjectMetadata
	if metadata != nil {
		cp := *metadata
		md = &cp
	}
	return BuildConfig{
		Generator:             generator,
		Settings:              settings,
		Options:               options,
		ExportCompileCommands: true,
		Metadata:              md,
	}
}

// CacheVariables returns the CMake cache variables in a stable order.
func (c BuildConfig) CacheVariables() []CacheVariable {
	var vars []CacheVariable
	if c.Metadata != nil {
		vars = append(vars,
			CacheVariable{Name: VarProjectName, Value: c.Metadata.Name},
			CacheVariable{Name: VarProjectVersion, Value: c.Metadata.Version},
			CacheVariable{Name: VarProjectDescription, Value: c.Metadata.Description},
			CacheVariable{Name: VarProjectGitHash, Value: c.Metadata.GitHash},
		)
	}
	if c.ExportCompileCommands {
		vars = append(vars, CacheVariable{Name: VarExportCompileCmds, Value: "ON"})
	}
	return vars
}

// ToolchainVariables returns the variables the toolchain file sets from settings and options.
// Options removed during pruning produce no variable.
func (c BuildConfig) ToolchainVariables() []CacheVariable {
	var vars []CacheVariable
	if !IsMultiConfig(c.Generator) && c.Settings.BuildType != "" {
		vars = append(vars, CacheVariable{Name: "CMAKE_BUILD_TYPE", Value: c.Settings.BuildType})
	}
	if v, ok := c.Options.Value(OptionShared); ok {
		vars = append(vars, CacheVariable{Name: "BUILD_SHARED_LIBS", Value: onOff(v)})
	}
	if v, ok := c.Options.Value(OptionFPIC); ok {
		vars = append(vars, CacheVariable{Name: "CMAKE_POSITION_INDEPENDENT_CODE", Value: onOff(v)})
	}
	return vars
}

// IsMultiConfig reports whether the generator builds several configurations in one tree.
func IsMultiConfig(generator string) bool {
	return generator == "Ninja Multi-Config" ||
		generator == "Xcode" ||
		strings.HasPrefix(generator, "Visual Studio")
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
