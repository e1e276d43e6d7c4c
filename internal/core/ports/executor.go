// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// Executor defines the interface for executing external commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the given task with the specified environment.
	//
	// The env parameter contains environment variables in "KEY=VALUE" format,
	// typically provided by an EnvironmentFactory. PATH-like variables are
	// prepended to the inherited values.
	//
	// It returns an error if the command exits unsuccessfully.
	Execute(ctx context.Context, task *domain.Task, env []string, stdout, stderr io.Writer) error
}
