package nix_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/nix"
	"go.trai.ch/kiln/internal/core/domain"
)

func nixHubServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		name := r.URL.Query().Get("name")
		if name != "cmake" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		resp := map[string]any{
			"name":    name,
			"version": r.URL.Query().Get("version"),
			"systems": map[string]any{
				nix.CurrentSystem(): map[string]any{
					"flake_installable": map[string]any{
						"ref":       map[string]any{"type": "github", "owner": "NixOS", "repo": "nixpkgs", "rev": "deadbeef"},
						"attr_path": "cmake",
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolver_Resolve(t *testing.T) {
	var hits atomic.Int32
	srv := nixHubServer(t, &hits)

	r, err := nix.NewResolverForTest(t.TempDir(), srv.URL, srv.Client())
	require.NoError(t, err)

	ref := domain.MustParseReference("cmake/4.1.0")
	commit, attr, err := r.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", commit)
	assert.Equal(t, "cmake", attr)

	// The second lookup is served from the disk cache.
	commit, _, err = r.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", commit)
	assert.Equal(t, int32(1), hits.Load())
}

func TestResolver_NotFound(t *testing.T) {
	var hits atomic.Int32
	srv := nixHubServer(t, &hits)

	r, err := nix.NewResolverForTest(t.TempDir(), srv.URL, srv.Client())
	require.NoError(t, err)

	_, _, err = r.Resolve(context.Background(), domain.MustParseReference("ninja/1.13.1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNixPackageNotFound))
}
