package cmake

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// BuildSystem implements ports.BuildSystem by invoking the cmake CLI.
type BuildSystem struct {
	executor ports.Executor
	jobs     int
}

var _ ports.BuildSystem = (*BuildSystem)(nil)

// NewBuildSystem creates a BuildSystem. jobs <= 0 lets cmake pick the parallelism.
func NewBuildSystem(executor ports.Executor, jobs int) *BuildSystem {
	return &BuildSystem{executor: executor, jobs: jobs}
}

// Configure runs cmake configure with the generated toolchain and cache variables.
func (b *BuildSystem) Configure(
	ctx context.Context,
	layout domain.BuildLayout,
	cfg domain.BuildConfig,
	env []string,
	out io.Writer,
) error {
	args := []string{
		"cmake",
		"-S", layout.SourceFolder,
		"-B", layout.BuildFolder,
		"-G", cfg.Generator,
		"-DCMAKE_TOOLCHAIN_FILE=" + filepath.Join(layout.GeneratorsFolder, ToolchainFileName),
	}
	for _, v := range cfg.CacheVariables() {
		args = append(args, "-D"+v.Name+"="+v.Value)
	}

	task := domain.NewTask("cmake configure", layout.SourceFolder, args...)
	return b.run(ctx, task, env, out, domain.ErrConfigureFailed)
}

// Build compiles the configured tree.
func (b *BuildSystem) Build(
	ctx context.Context,
	layout domain.BuildLayout,
	cfg domain.BuildConfig,
	env []string,
	out io.Writer,
) error {
	args := []string{"cmake", "--build", layout.BuildFolder}
	args = append(args, configArgs(cfg)...)
	if b.jobs > 0 {
		args = append(args, "--parallel", strconv.Itoa(b.jobs))
	} else {
		args = append(args, "--parallel")
	}

	task := domain.NewTask("cmake build", layout.SourceFolder, args...)
	return b.run(ctx, task, env, out, domain.ErrBuildFailed)
}

// Install copies the build artifacts into prefix.
func (b *BuildSystem) Install(
	ctx context.Context,
	layout domain.BuildLayout,
	cfg domain.BuildConfig,
	prefix string,
	env []string,
	out io.Writer,
) error {
	args := []string{"cmake", "--install", layout.BuildFolder}
	args = append(args, configArgs(cfg)...)
	args = append(args, "--prefix", prefix)

	task := domain.NewTask("cmake install", layout.SourceFolder, args...)
	return b.run(ctx, task, env, out, domain.ErrInstallFailed)
}

func configArgs(cfg domain.BuildConfig) []string {
	if domain.IsMultiConfig(cfg.Generator) {
		return []string{"--config", cfg.Settings.BuildType}
	}
	return nil
}

func (b *BuildSystem) run(ctx context.Context, task *domain.Task, env []string, out io.Writer, sentinel error) error {
	if err := b.executor.Execute(ctx, task, env, out, out); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(sentinel, err), task.Name), "command", task.String())
	}
	return nil
}
