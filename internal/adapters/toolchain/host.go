// Package toolchain selects how tool requirements are provided to build commands.
package toolchain

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// HostEnvFactory exposes tools already installed on the host.
// A tool reporting a different version than required is used with a warning.
type HostEnvFactory struct {
	executor ports.Executor
	logger   ports.Logger
	lookPath func(string) (string, error)
}

var _ ports.EnvironmentFactory = (*HostEnvFactory)(nil)

// NewHostEnvFactory creates a HostEnvFactory probing versions through executor.
func NewHostEnvFactory(executor ports.Executor, logger ports.Logger) *HostEnvFactory {
	return &HostEnvFactory{
		executor: executor,
		logger:   logger,
		lookPath: exec.LookPath,
	}
}

// GetEnvironment locates every tool on PATH and returns a PATH prefix of their folders.
func (h *HostEnvFactory) GetEnvironment(ctx context.Context, tools []domain.Reference) ([]string, error) {
	var dirs []string
	for _, ref := range tools {
		path, err := h.lookPath(ref.Name)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrToolNotFound, ref.Name), "tool", ref.String())
		}

		if dir := filepath.Dir(path); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}

		if !h.hasVersion(ctx, path, ref.Version) {
			h.logger.Warn("host " + ref.Name + " does not report version " + ref.Version + ", using it anyway")
		}
	}

	if len(dirs) == 0 {
		return nil, nil
	}
	return []string{"PATH=" + strings.Join(dirs, string(os.PathListSeparator))}, nil
}

func (h *HostEnvFactory) hasVersion(ctx context.Context, path, version string) bool {
	var out bytes.Buffer
	task := domain.NewTask(filepath.Base(path)+" --version", "", path, "--version")
	if err := h.executor.Execute(ctx, task, nil, &out, &out); err != nil {
		return false
	}
	return strings.Contains(out.String(), strings.TrimPrefix(version, "v"))
}
