package telemetry_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/telemetry"
)

func TestPromMetrics_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiln.prom")
	m := telemetry.NewPromMetrics(path)

	m.ObserveStage("library", "build", 2*time.Second, nil)
	m.ObserveStage("library", "build", time.Second, errors.New("exit status 2"))
	m.PackageCreated("built")
	m.TestSkipped()

	require.NoError(t, m.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `kiln_stage_duration_seconds_count{flow="library",stage="build"} 2`)
	assert.Contains(t, text, `kiln_stage_failures_total{flow="library",stage="build"} 1`)
	assert.Contains(t, text, `kiln_packages_created_total{kind="built"} 1`)
	assert.Contains(t, text, "kiln_tests_skipped_total 1")
}

func TestPromMetrics_FlushWithoutPath(t *testing.T) {
	m := telemetry.NewPromMetrics("")
	m.TestSkipped()
	require.NoError(t, m.Flush())

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestPromMetrics_FlushError(t *testing.T) {
	m := telemetry.NewPromMetrics(filepath.Join(t.TempDir(), "missing", "kiln.prom"))
	assert.Error(t, m.Flush())
}
