package config

import "go.trai.ch/kiln/internal/core/domain"

// RecipeFile represents the structure of the library kiln.yaml file.
type RecipeFile struct {
	Name            string                        `yaml:"name"`
	PackageType     string                        `yaml:"packageType"`
	License         string                        `yaml:"license"`
	Author          string                        `yaml:"author"`
	URL             string                        `yaml:"url"`
	Description     string                        `yaml:"description"`
	Topics          []string                      `yaml:"topics"`
	DefaultOptions  map[string]bool               `yaml:"defaultOptions"`
	ExportsSources  []string                      `yaml:"exportsSources"`
	ToolRequires    []string                      `yaml:"toolRequires"`
	Requires        []string                      `yaml:"requires"`
	Generator       string                        `yaml:"generator"`
	CompileCommands *domain.CompileDatabaseTarget `yaml:"compileCommands"`
	Libs            []string                      `yaml:"libs"`
}

// TestRecipeFile represents the structure of test_package/kiln.yaml.
type TestRecipeFile struct {
	ToolRequires    []string                      `yaml:"toolRequires"`
	TestRequires    []string                      `yaml:"testRequires"`
	Requires        []string                      `yaml:"requires"`
	Generator       string                        `yaml:"generator"`
	CompileCommands *domain.CompileDatabaseTarget `yaml:"compileCommands"`
	TestBinary      string                        `yaml:"testBinary"`
	RedeclareShared bool                          `yaml:"redeclareShared"`
}

// DefaultExportsSources are the files exported when a recipe does not list any.
var DefaultExportsSources = []string{"CMakeLists.txt", "src/*", "include/*"}
