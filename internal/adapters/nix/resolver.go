// Package nix provides tool requirements from nixpkgs, pinned through NixHub.
package nix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	nixHubAPIBase     = "https://search.devbox.sh/v2/resolve"
	httpClientTimeout = 30 * time.Second
)

var supportedSystems = map[string]struct{}{
	"x86_64-linux":   {},
	"aarch64-linux":  {},
	"x86_64-darwin":  {},
	"aarch64-darwin": {},
}

// packageNames maps recipe tool names to nixpkgs names where they differ.
var packageNames = map[string]string{
	"llvm-openmp": "llvmPackages.openmp",
	"pkgconf":     "pkgconf-unwrapped",
}

// Resolver resolves pinned tool references to nixpkgs commits via NixHub,
// caching answers on disk.
type Resolver struct {
	cacheDir   string
	apiBase    string
	httpClient *http.Client
}

// NewResolver creates a Resolver caching into cacheDir.
func NewResolver(cacheDir string) (*Resolver, error) {
	return newResolver(cacheDir, nixHubAPIBase, &http.Client{Timeout: httpClientTimeout})
}

func newResolver(cacheDir, apiBase string, client *http.Client) (*Resolver, error) {
	cleanPath := filepath.Clean(cacheDir)
	if err := os.MkdirAll(cleanPath, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrNixCacheCreateFailed.Error()), "path", cleanPath)
	}
	return &Resolver{cacheDir: cleanPath, apiBase: apiBase, httpClient: client}, nil
}

// Resolve returns the nixpkgs commit and attribute path providing ref on this system.
func (r *Resolver) Resolve(ctx context.Context, ref domain.Reference) (commitHash, attrPath string, err error) {
	system := currentSystem()
	name := nixName(ref.Name)

	cachePath := r.cachePath(name, ref.Version)
	if commitHash, attrPath, err = r.loadFromCache(cachePath, system); err == nil {
		return commitHash, attrPath, nil
	}

	resp, err := r.queryNixHub(ctx, name, ref.Version)
	if err != nil {
		return "", "", err
	}

	systemData, ok := resp.Systems[system]
	if !ok {
		return "", "", zerr.With(zerr.With(zerr.Wrap(domain.ErrNixPackageNotFound, "unsupported system"),
			"tool", ref.String()), "system", system)
	}

	// A failed cache write only costs a repeated lookup next run.
	_ = r.saveToCache(cachePath, name, ref.Version, resp)

	return systemData.FlakeInstallable.Ref.Rev, systemData.FlakeInstallable.AttrPath, nil
}

func nixName(name string) string {
	if n, ok := packageNames[name]; ok {
		return n
	}
	return name
}

func (r *Resolver) cachePath(name, version string) string {
	return filepath.Join(r.cacheDir, fmt.Sprintf("%016x.json", xxhash.Sum64String(name+"@"+version)))
}

func (r *Resolver) loadFromCache(path, system string) (commitHash, attrPath string, err error) {
	//nolint:gosec // Path is constructed from the cache directory and a hash
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", domain.ErrCacheMiss
		}
		return "", "", zerr.Wrap(err, domain.ErrNixCacheReadFailed.Error())
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", "", zerr.Wrap(err, domain.ErrNixCacheUnmarshalFailed.Error())
	}

	sys, ok := entry.Systems[system]
	if !ok {
		return "", "", domain.ErrCacheMiss
	}
	return sys.FlakeInstallable.Ref.Rev, sys.FlakeInstallable.AttrPath, nil
}

func (r *Resolver) saveToCache(path, name, version string, resp *nixHubResponse) error {
	systems := make(map[string]SystemCache)
	for sysName, sysData := range resp.Systems {
		if _, supported := supportedSystems[sysName]; !supported {
			continue
		}
		systems[sysName] = SystemCache{
			FlakeInstallable: sysData.FlakeInstallable,
			Outputs:          sysData.Outputs,
		}
	}

	data, err := json.MarshalIndent(cacheEntry{
		Name:      name,
		Version:   version,
		Systems:   systems,
		Timestamp: time.Now(),
	}, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrNixCacheMarshalFailed.Error())
	}

	if err := atomicWriteFile(path, data); err != nil {
		return zerr.Wrap(err, domain.ErrNixCacheWriteFailed.Error())
	}
	return nil
}

func (r *Resolver) queryNixHub(ctx context.Context, name, version string) (*nixHubResponse, error) {
	query := url.Values{"name": {name}, "version": {version}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiBase+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrNixAPIRequestFailed.Error())
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrNixAPIRequestFailed.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrNixPackageNotFound, "nixhub has no such version"),
			"name", name), "version", version)
	case resp.StatusCode != http.StatusOK:
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrNixAPIRequestFailed, "unexpected status"),
			"status_code", resp.StatusCode), "name", name)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrNixAPIRequestFailed.Error())
	}

	var apiResp nixHubResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, zerr.Wrap(err, domain.ErrNixAPIParseFailed.Error())
	}
	if len(apiResp.Systems) == 0 {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrNixPackageNotFound, "no systems in response"),
			"name", name), "version", version)
	}
	return &apiResp, nil
}

// atomicWriteFile writes data to a temp file in the same folder and renames it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "kiln-cache-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// currentSystem returns the NixHub system string of the running host.
func currentSystem() string {
	switch runtime.GOOS + "/" + runtime.GOARCH {
	case "darwin/amd64":
		return "x86_64-darwin"
	case "darwin/arm64":
		return "aarch64-darwin"
	case "linux/arm64":
		return "aarch64-linux"
	default:
		return "x86_64-linux"
	}
}
