package domain

import "go.trai.ch/zerr"

var (
	// ErrVersionUnresolved is returned when no tag or commit can be resolved from version control.
	ErrVersionUnresolved = zerr.New("failed to resolve package version from version control")

	// ErrMissingRecipeName is returned when a library recipe does not declare a name.
	ErrMissingRecipeName = zerr.New("missing recipe name")

	// ErrInvalidRecipeName is returned when a recipe name contains invalid characters.
	ErrInvalidRecipeName = zerr.New("recipe name can only contain lowercase alphanumeric characters and '_', '.', '+', '-'")

	// ErrInvalidReference is returned when a requirement is not of the form name/version.
	ErrInvalidReference = zerr.New("invalid reference, expected format: name/version")

	// ErrVersionRangeNotAllowed is returned when a requirement uses a version range instead of an exact pin.
	ErrVersionRangeNotAllowed = zerr.New("version ranges are not allowed, requirements must be pinned")

	// ErrConflictingRequirement is returned when the same package is required at two different versions.
	ErrConflictingRequirement = zerr.New("conflicting requirement")

	// ErrUnknownOption is returned when a recipe declares an option that is not recognized.
	ErrUnknownOption = zerr.New("unknown option")

	// ErrInvalidOption is returned when an option override cannot be parsed.
	ErrInvalidOption = zerr.New("invalid option value, expected true or false")

	// ErrUnknownSetting is returned when a setting override names an unknown setting.
	ErrUnknownSetting = zerr.New("unknown setting")

	// ErrInvalidKeyValue is returned when a command line pair is not of the form key=value.
	ErrInvalidKeyValue = zerr.New("invalid argument, expected format: key=value")

	// ErrInvalidCompileDatabaseBase is returned when a compile database target uses an unknown base folder.
	ErrInvalidCompileDatabaseBase = zerr.New("invalid compile database base, expected 'build' or 'source'")

	// ErrRecipeNotFound is returned when no recipe file can be found.
	ErrRecipeNotFound = zerr.New("could not find kiln.yaml")

	// ErrTestRecipeNotFound is returned when a test package is requested but does not exist.
	ErrTestRecipeNotFound = zerr.New("could not find test_package/kiln.yaml")

	// ErrConfigReadFailed is returned when the recipe file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read recipe file")

	// ErrConfigParseFailed is returned when the recipe file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse recipe file")

	// ErrEnvConfigFailed is returned when the process environment configuration is invalid.
	ErrEnvConfigFailed = zerr.New("failed to parse environment configuration")

	// ErrDependencyNotFound is returned when a library requirement is not present in the local cache.
	ErrDependencyNotFound = zerr.New("dependency not found in local cache")

	// ErrPackageNotFound is returned when a requested package reference is not present in the local cache.
	ErrPackageNotFound = zerr.New("package not found in local cache")

	// ErrStoreCreateFailed is returned when the package cache directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create package cache directory")

	// ErrStoreReadFailed is returned when a package record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read package record")

	// ErrStoreUnmarshalFailed is returned when a package record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal package record")

	// ErrStoreMarshalFailed is returned when a package record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal package record")

	// ErrStoreWriteFailed is returned when a package record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write package record")

	// ErrExportFailed is returned when recipe sources cannot be exported into the cache.
	ErrExportFailed = zerr.New("failed to export sources")

	// ErrNoExportedSources is returned when the export patterns match no files.
	ErrNoExportedSources = zerr.New("exports_sources matched no files")

	// ErrGenerateFailed is returned when toolchain or dependency files cannot be generated.
	ErrGenerateFailed = zerr.New("failed to generate build files")

	// ErrConfigureFailed is returned when the build system configure step fails.
	ErrConfigureFailed = zerr.New("configure step failed")

	// ErrBuildFailed is returned when the build system build step fails.
	ErrBuildFailed = zerr.New("build step failed")

	// ErrInstallFailed is returned when the build system install step fails.
	ErrInstallFailed = zerr.New("install step failed")

	// ErrCompileDatabaseCopyFailed is returned when compile_commands.json cannot be copied.
	ErrCompileDatabaseCopyFailed = zerr.New("failed to copy compile_commands.json")

	// ErrTestFailed is returned when the test binary exits with an error.
	ErrTestFailed = zerr.New("test package failed")

	// ErrPipelineFailed is returned when a recipe flow aborts.
	ErrPipelineFailed = zerr.New("recipe flow failed")

	// ErrToolNotFound is returned when a tool requirement cannot be located on the host.
	ErrToolNotFound = zerr.New("tool not found")

	// ErrToolResolutionFailed is returned when resolving a tool version fails.
	ErrToolResolutionFailed = zerr.New("failed to resolve tool version")

	// ErrNixCacheCreateFailed is returned when the Nix cache directory cannot be created.
	ErrNixCacheCreateFailed = zerr.New("failed to create Nix cache directory")

	// ErrNixCacheReadFailed is returned when reading from the Nix cache fails.
	ErrNixCacheReadFailed = zerr.New("failed to read from Nix cache")

	// ErrNixCacheWriteFailed is returned when writing to the Nix cache fails.
	ErrNixCacheWriteFailed = zerr.New("failed to write to Nix cache")

	// ErrNixCacheMarshalFailed is returned when marshaling Nix cache data fails.
	ErrNixCacheMarshalFailed = zerr.New("failed to marshal Nix cache data")

	// ErrNixCacheUnmarshalFailed is returned when unmarshaling Nix cache data fails.
	ErrNixCacheUnmarshalFailed = zerr.New("failed to unmarshal Nix cache data")

	// ErrNixAPIRequestFailed is returned when a NixHub API request fails.
	ErrNixAPIRequestFailed = zerr.New("failed to make NixHub API request")

	// ErrNixAPIParseFailed is returned when parsing a NixHub API response fails.
	ErrNixAPIParseFailed = zerr.New("failed to parse NixHub API response")

	// ErrNixPackageNotFound is returned when a package version is not found in NixHub.
	ErrNixPackageNotFound = zerr.New("package version not found in NixHub")

	// ErrCacheMiss is returned when a requested item is not found in a cache.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrInvalidRegistryReference is returned when an upload target is not a valid OCI reference.
	ErrInvalidRegistryReference = zerr.New("invalid registry reference")

	// ErrUploadFailed is returned when pushing a package to a registry fails.
	ErrUploadFailed = zerr.New("failed to upload package")

	// ErrImportPrefixNotFound is returned when an import prefix does not exist.
	ErrImportPrefixNotFound = zerr.New("import prefix not found")

	// ErrInvalidCanRun is returned when the can-run override is not auto, true or false.
	ErrInvalidCanRun = zerr.New("invalid can-run value, expected auto, true or false")
)
