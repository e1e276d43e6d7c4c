// Package shell runs build tool commands inside a pseudo terminal.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor using os/exec and a pty, so compilers
// and test runners keep their colored output.
type Executor struct{}

var _ ports.Executor = (*Executor)(nil)

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs the task's command and waits for it to complete.
// The pty merges the child's stdout and stderr into stdout.
func (e *Executor) Execute(ctx context.Context, task *domain.Task, env []string, stdout, _ io.Writer) error {
	if len(task.Command) == 0 {
		return nil
	}
	if stdout == nil {
		stdout = io.Discard
	}

	name := task.Command[0]
	cmdEnv := resolveEnvironment(os.Environ(), env, task.Environment)

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, task.Command[1:]...) //nolint:gosec // recipe provided command
	cmd.Args[0] = name
	cmd.Dir = task.WorkingDir
	cmd.Env = cmdEnv

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start command"), "command", task.String())
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// EIO on Linux marks the end of the pty stream.
		_, _ = io.Copy(stdout, ptmx)
	}()

	waitErr := cmd.Wait()
	<-ioDone
	_ = ptmx.Close()

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(waitErr, "command failed"),
			"command", task.String()), "exit_code", exitCode)
	}
	return nil
}

// allowListedEnvVars are the host variables a command inherits. Everything
// else comes from the toolchain environment or the task itself.
var allowListedEnvVars = map[string]struct{}{
	"HOME":   {},
	"TERM":   {},
	"USER":   {},
	"PATH":   {},
	"TMPDIR": {},
	"LANG":   {},
	"CC":     {},
	"CXX":    {},
}

// searchPathVars are prepended to the inherited value instead of replacing it.
var searchPathVars = []string{"PATH", "LD_LIBRARY_PATH", "DYLD_LIBRARY_PATH"}

// resolveEnvironment layers the allow-listed host env, the toolchain env and
// the task env, in that order of increasing priority.
func resolveEnvironment(sysEnv, toolEnv []string, taskEnv map[string]string) []string {
	envMap := filterSystemEnv(sysEnv)
	applyToolEnv(envMap, toolEnv)

	for k, v := range taskEnv {
		if slices.Contains(searchPathVars, k) {
			envMap[k] = prependPath(v, envMap[k])
			continue
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	return envMap
}

func applyToolEnv(envMap map[string]string, toolEnv []string) {
	for _, entry := range toolEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if slices.Contains(searchPathVars, k) {
			envMap[k] = prependPath(v, envMap[k])
			continue
		}
		envMap[k] = v
	}
}

func prependPath(front, rest string) string {
	switch {
	case front == "":
		return rest
	case rest == "":
		return front
	default:
		return front + string(os.PathListSeparator) + rest
	}
}

// lookPath searches for an executable in the PATH of the command's environment.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
