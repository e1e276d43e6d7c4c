// Package git resolves package identity from the git checkout of a recipe.
package git

import (
	"bytes"
	"context"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// VCS implements ports.VCS by running the git binary through an executor.
type VCS struct {
	executor ports.Executor
	env      []string
}

var _ ports.VCS = (*VCS)(nil)

// New creates a VCS. env is passed to every git invocation.
func New(executor ports.Executor, env []string) *VCS {
	return &VCS{executor: executor, env: env}
}

// Describe returns the output of `git describe --tags`.
func (v *VCS) Describe(ctx context.Context, dir string) (string, error) {
	out, err := v.run(ctx, dir, "describe", "--tags")
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrVersionUnresolved, err.Error()), "dir", dir)
	}
	if out == "" {
		return "", zerr.With(zerr.Wrap(domain.ErrVersionUnresolved, "git describe printed nothing"), "dir", dir)
	}
	return out, nil
}

// Head returns the output of `git rev-parse HEAD`.
func (v *VCS) Head(ctx context.Context, dir string) (string, error) {
	out, err := v.run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrVersionUnresolved, err.Error()), "dir", dir)
	}
	return out, nil
}

func (v *VCS) run(ctx context.Context, dir string, args ...string) (string, error) {
	task := domain.NewTask("git", dir, append([]string{"git"}, args...)...)
	task.Environment = map[string]string{"GIT_TERMINAL_PROMPT": "0"}

	var out bytes.Buffer
	if err := v.executor.Execute(ctx, task, v.env, &out, &out); err != nil {
		if msg := lastLine(out.String()); msg != "" {
			return "", zerr.Wrap(err, msg)
		}
		return "", err
	}
	return lastLine(out.String()), nil
}

// lastLine returns the last non-empty line, with pty carriage returns removed.
func lastLine(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r", ""), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
