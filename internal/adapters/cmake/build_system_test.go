package cmake_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/cmake"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func captureTask(got **domain.Task) func(context.Context, *domain.Task, []string, io.Writer, io.Writer) {
	return func(_ context.Context, task *domain.Task, _ []string, _, _ io.Writer) {
		*got = task
	}
}

func TestBuildSystem_Configure(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)
	src := filepath.FromSlash("/work/libmotor")
	layout := domain.NewBuildLayout(src, "Ninja", "Release")
	env := []string{"PATH=/opt/cmake/bin"}
	var out bytes.Buffer

	var task *domain.Task
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), env, &out, &out).
		Do(captureTask(&task)).Return(nil)

	b := cmake.NewBuildSystem(executor, 0)
	require.NoError(t, b.Configure(context.Background(), layout, libmotorConfig(), env, &out))

	assert.Equal(t, src, task.WorkingDir)
	assert.Equal(t, []string{
		"cmake",
		"-S", src,
		"-B", layout.BuildFolder,
		"-G", "Ninja",
		"-DCMAKE_TOOLCHAIN_FILE=" + filepath.Join(layout.GeneratorsFolder, cmake.ToolchainFileName),
		"-DCONAN_PROJECT_NAME=libmotor",
		"-DCONAN_PROJECT_VERSION=v0.3.0",
		"-DCONAN_PROJECT_DESCRIPTION=pmdc motor control lib",
		"-DCONAN_PROJECT_GIT_HASH=1a2b3c",
		"-DCMAKE_EXPORT_COMPILE_COMMANDS=ON",
	}, task.Command)
}

func TestBuildSystem_BuildAndInstall(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)
	src := filepath.FromSlash("/work/libmotor")
	settings := domain.Settings{OS: domain.OSLinux, Arch: "x86_64", BuildType: "Debug"}
	cfg := domain.NewBuildConfig("Ninja Multi-Config", settings, domain.DefaultOptions(), nil)
	layout := domain.NewBuildLayout(src, cfg.Generator, "Debug")
	prefix := filepath.FromSlash("/cache/p/libmotor/v0.3.0/abc")

	var build, install *domain.Task
	gomock.InOrder(
		executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Do(captureTask(&build)).Return(nil),
		executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Do(captureTask(&install)).Return(nil),
	)

	b := cmake.NewBuildSystem(executor, 4)
	require.NoError(t, b.Build(context.Background(), layout, cfg, nil, nil))
	require.NoError(t, b.Install(context.Background(), layout, cfg, prefix, nil, nil))

	assert.Equal(t, []string{"cmake", "--build", layout.BuildFolder, "--config", "Debug", "--parallel", "4"}, build.Command)
	assert.Equal(t, []string{"cmake", "--install", layout.BuildFolder, "--config", "Debug", "--prefix", prefix}, install.Command)
}

func TestBuildSystem_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)
	layout := domain.NewBuildLayout(filepath.FromSlash("/work/libmotor"), "Ninja", "Release")

	cause := errors.New("exit status 1")
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(cause)

	err := cmake.NewBuildSystem(executor, 0).Build(context.Background(), layout, libmotorConfig(), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBuildFailed))
	assert.True(t, errors.Is(err, cause))
}
