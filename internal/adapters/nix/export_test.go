package nix

import (
	"context"
	"net/http"
)

// NewResolverForTest creates a Resolver against a custom NixHub endpoint.
func NewResolverForTest(cacheDir, apiBase string, client *http.Client) (*Resolver, error) {
	return newResolver(cacheDir, apiBase, client)
}

// SetDevEnv replaces the nix invocation of f.
func (e *EnvFactory) SetDevEnv(fn func(ctx context.Context, exprPath string) ([]byte, error)) {
	e.devEnv = fn
}

// GenerateNixExpr exposes generateNixExpr.
func GenerateNixExpr(system string, commits map[string][]string) string {
	return generateNixExpr(system, commits)
}

// CurrentSystem exposes currentSystem.
func CurrentSystem() string {
	return currentSystem()
}
