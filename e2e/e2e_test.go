//go:build e2e

package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var kilnBinary string

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "kiln-e2e-*")
	if err != nil {
		panic(err)
	}

	kilnBinary = filepath.Join(tmpDir, "kiln")

	//nolint:gosec // static arguments
	cmd := exec.Command("go", "build", "-o", kilnBinary, "./cmd/kiln")
	cmd.Dir = ".."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		panic("failed to build kiln binary: " + err.Error())
	}

	exitCode := m.Run()

	_ = os.RemoveAll(tmpDir)

	os.Exit(exitCode)
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: setupE2E,
	})
}

func setupE2E(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	env.Setenv("CI", "true")
	env.Setenv("KILN_PROGRESS", "linear")

	binDir := filepath.Dir(kilnBinary)
	currentPath := env.Getenv("PATH")
	env.Setenv("PATH", binDir+string(os.PathListSeparator)+currentPath)

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("KILN_HOME", filepath.Join(homeDir, ".kiln"))

	return nil
}
