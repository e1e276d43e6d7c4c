package domain

import (
	"slices"
	"strings"
)

// RunEnvLabel names the environment used to execute built binaries.
const RunEnvLabel = "kilnrun"

// RunEnvironment builds the variables that let binaries find the shared
// libraries of their dependencies. Paths are listed in requirement order.
func RunEnvironment(records []*PackageRecord, settings Settings, pathSep string) map[string]string {
	var libDirs, binDirs []string
	for _, r := range records {
		libDirs = appendUnique(libDirs, r.LibPaths()...)
		binDirs = appendUnique(binDirs, r.BinPaths()...)
	}

	env := make(map[string]string)
	if len(binDirs) > 0 {
		env["PATH"] = strings.Join(binDirs, pathSep)
	}
	if len(libDirs) == 0 {
		return env
	}

	switch settings.OS {
	case OSWindows:
		env["PATH"] = strings.Join(appendUnique(binDirs, libDirs...), pathSep)
	case OSMacos:
		env["DYLD_LIBRARY_PATH"] = strings.Join(libDirs, pathSep)
	default:
		env["LD_LIBRARY_PATH"] = strings.Join(libDirs, pathSep)
	}
	return env
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		if !slices.Contains(dst, it) {
			dst = append(dst, it)
		}
	}
	return dst
}
