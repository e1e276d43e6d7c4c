package nix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ToolResolver maps a pinned tool reference to a nixpkgs commit and attribute path.
type ToolResolver interface {
	Resolve(ctx context.Context, ref domain.Reference) (commitHash, attrPath string, err error)
}

// devEnvFunc evaluates a Nix expression file and returns the JSON dev environment.
type devEnvFunc func(ctx context.Context, exprPath string) ([]byte, error)

// EnvFactory implements ports.EnvironmentFactory using Nix.
type EnvFactory struct {
	resolver ToolResolver
	cacheDir string
	devEnv   devEnvFunc

	requestGroup singleflight.Group
}

var _ ports.EnvironmentFactory = (*EnvFactory)(nil)

// NewEnvFactory creates an EnvFactory caching resolved environments into cacheDir.
func NewEnvFactory(resolver ToolResolver, cacheDir string) *EnvFactory {
	return &EnvFactory{
		resolver: resolver,
		cacheDir: cacheDir,
		devEnv:   printDevEnv,
	}
}

// GetEnvironment builds a nix shell environment exposing tools.
func (e *EnvFactory) GetEnvironment(ctx context.Context, tools []domain.Reference) ([]string, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	envID := EnvID(currentSystem(), tools)

	result, err, _ := e.requestGroup.Do(envID, func() (any, error) {
		cachePath := filepath.Join(e.cacheDir, envID+".json")
		if cached, err := LoadEnvFromCache(cachePath); err == nil {
			return cached, nil
		}

		commitToPackages, err := e.resolveTools(ctx, tools)
		if err != nil {
			return nil, err
		}

		tmpPath, cleanup, err := createNixTempFile(generateNixExpr(currentSystem(), commitToPackages))
		if err != nil {
			return nil, err
		}
		defer cleanup()

		output, err := e.devEnv(ctx, tmpPath)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to execute nix print-dev-env")
		}

		env, err := ParseNixDevEnv(output)
		if err != nil {
			return nil, err
		}

		// The environment is rebuilt on the next run when the cache write fails.
		_ = SaveEnvToCache(cachePath, env)

		return env, nil
	})
	if err != nil {
		return nil, err
	}

	env := slices.Clone(result.([]string))

	// os.TempDir would honor a TMPDIR leaked from a nix build shell.
	env = append(env, "TMPDIR=/tmp", "TEMP=/tmp", "TMP=/tmp")
	slices.Sort(env)

	return env, nil
}

// EnvID returns the cache key of the environment exposing tools on system.
func EnvID(system string, tools []domain.Reference) string {
	refs := make([]string, len(tools))
	for i, t := range tools {
		refs[i] = t.String()
	}
	slices.Sort(refs)

	h := xxhash.New()
	_, _ = h.WriteString(system)
	for _, r := range refs {
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(r)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func printDevEnv(ctx context.Context, exprPath string) ([]byte, error) {
	//nolint:gosec // exprPath is a temp file created by us
	cmd := exec.CommandContext(ctx, "nix", "print-dev-env", "--json", "--file", exprPath)
	return cmd.Output()
}

// generateNixExpr builds a mkShell expression pulling each attribute from its pinned nixpkgs.
func generateNixExpr(system string, commits map[string][]string) string {
	commitHashes := make([]string, 0, len(commits))
	for hash := range commits {
		commitHashes = append(commitHashes, hash)
	}
	slices.Sort(commitHashes)

	var b strings.Builder
	b.WriteString("let\n")
	fmt.Fprintf(&b, "system = %q;\n", system)
	for i, hash := range commitHashes {
		fmt.Fprintf(&b, "flake_%d = builtins.getFlake \"github:NixOS/nixpkgs/%s\";\n", i, hash)
		fmt.Fprintf(&b, "pkgs_%d = flake_%d.legacyPackages.${system};\n", i, i)
	}
	b.WriteString("in\n")
	b.WriteString("pkgs_0.mkShell {\n")
	b.WriteString("buildInputs = [\n")
	for i, hash := range commitHashes {
		attrs := slices.Clone(commits[hash])
		slices.Sort(attrs)
		for _, attr := range attrs {
			fmt.Fprintf(&b, "  pkgs_%d.%s\n", i, attr)
		}
	}
	b.WriteString("];\n")
	b.WriteString("}\n")
	return b.String()
}

func createNixTempFile(expr string) (string, func(), error) {
	tmpFile, err := os.CreateTemp("", "kiln-env-*.nix")
	if err != nil {
		return "", nil, zerr.Wrap(err, "failed to create temp file")
	}
	tmpPath := tmpFile.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmpFile.WriteString(expr); err != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, zerr.Wrap(err, "failed to write nix expression")
	}
	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", nil, zerr.Wrap(err, "failed to close temp file")
	}
	return tmpPath, cleanup, nil
}

// LoadEnvFromCache reads a cached environment. It returns domain.ErrCacheMiss when absent.
func LoadEnvFromCache(path string) ([]string, error) {
	//nolint:gosec // Path is constructed from the cache directory and a hash
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheMiss
		}
		return nil, zerr.Wrap(err, "failed to read env cache")
	}

	var env []string
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, zerr.Wrap(err, "failed to unmarshal env cache")
	}
	return env, nil
}

// SaveEnvToCache atomically writes env to path.
func SaveEnvToCache(path string, env []string) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal environment")
	}
	if err := atomicWriteFile(path, data); err != nil {
		return zerr.Wrap(err, "failed to write env cache")
	}
	return nil
}

// ParseNixDevEnv extracts the exported variables from `nix print-dev-env --json` output.
func ParseNixDevEnv(jsonData []byte) ([]string, error) {
	var output nixDevEnvOutput
	if err := json.Unmarshal(jsonData, &output); err != nil {
		return nil, zerr.Wrap(err, "failed to unmarshal nix output")
	}

	env := make([]string, 0, len(output.Variables))
	for key, variable := range output.Variables {
		if !ShouldIncludeVar(key) {
			continue
		}

		var value string
		switch v := variable.Value.(type) {
		case string:
			value = v
		case []any:
			parts := make([]string, 0, len(v))
			for _, part := range v {
				if s, ok := part.(string); ok {
					parts = append(parts, s)
				}
			}
			value = strings.Join(parts, ":")
		default:
			continue
		}

		env = append(env, key+"="+value)
	}

	slices.Sort(env)
	return env, nil
}

var excludedVars = []string{
	"TERM", "SHELL", "EDITOR", "VISUAL", "PAGER", "LESS",
	"HOME", "USER", "LOGNAME", "PS1", "PS2", "SHLVL", "PWD", "OLDPWD", "_",
	"TMPDIR", "TEMP", "TMP",
	"NIX_BUILD_TOP", "NIX_BUILD_CORES", "NIX_LOG_FD",
}

// ShouldIncludeVar reports whether a dev shell variable is forwarded to commands.
// Interactive shell and user variables keep their host values.
func ShouldIncludeVar(key string) bool {
	return !slices.Contains(excludedVars, key)
}

// resolveTools resolves tools concurrently and groups attribute paths by nixpkgs commit.
func (e *EnvFactory) resolveTools(ctx context.Context, tools []domain.Reference) (map[string][]string, error) {
	commitToPackages := make(map[string][]string)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, ref := range tools {
		g.Go(func() error {
			commitHash, attrPath, err := e.resolver.Resolve(gctx, ref)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrToolResolutionFailed.Error()), "tool", ref.String())
			}

			mu.Lock()
			commitToPackages[commitHash] = append(commitToPackages[commitHash], attrPath)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return commitToPackages, nil
}
