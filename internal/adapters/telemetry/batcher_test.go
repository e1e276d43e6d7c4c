package telemetry_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/telemetry"
)

type flushRecorder struct {
	mu     sync.Mutex
	chunks []string
}

func (f *flushRecorder) record(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks = append(f.chunks, string(data))
}

func (f *flushRecorder) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.chunks...)
}

func TestLineBatcher_SizeLimit(t *testing.T) {
	rec := &flushRecorder{}
	b := telemetry.NewLineBatcher(8, time.Hour, rec.record)
	defer func() { _ = b.Close() }()

	_, err := b.Write([]byte("cmake "))
	require.NoError(t, err)
	assert.Empty(t, rec.snapshot())

	// One line longer than the limit goes out whole.
	_, err = b.Write([]byte("--build"))
	require.NoError(t, err)
	assert.Equal(t, []string{"cmake --build"}, rec.snapshot())
}

func TestLineBatcher_KeepsPartialLine(t *testing.T) {
	rec := &flushRecorder{}
	b := telemetry.NewLineBatcher(16, time.Hour, rec.record)

	_, err := b.Write([]byte("[1/2] Building\n[2/2] Lin"))
	require.NoError(t, err)
	assert.Equal(t, []string{"[1/2] Building\n"}, rec.snapshot())

	_, err = b.Write([]byte("king\n"))
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.Equal(t, []string{"[1/2] Building\n", "[2/2] Linking\n"}, rec.snapshot())
}

func TestLineBatcher_CarriageReturnEndsLine(t *testing.T) {
	rec := &flushRecorder{}
	b := telemetry.NewLineBatcher(8, time.Hour, rec.record)
	defer func() { _ = b.Close() }()

	_, err := b.Write([]byte("[1/9]\r[2/9"))
	require.NoError(t, err)
	assert.Equal(t, []string{"[1/9]\r"}, rec.snapshot())
}

func TestLineBatcher_TimeLimit(t *testing.T) {
	rec := &flushRecorder{}
	b := telemetry.NewLineBatcher(1024, 10*time.Millisecond, rec.record)
	defer func() { _ = b.Close() }()

	_, err := b.Write([]byte("-- Configuring done\n"))
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	// A partial line is held for one tick, then flushed as is.
	_, err = b.Write([]byte("ninja: no work to do."))
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return len(rec.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"-- Configuring done\n", "ninja: no work to do."}, rec.snapshot())
}

func TestLineBatcher_FlushAndClose(t *testing.T) {
	rec := &flushRecorder{}
	b := telemetry.NewLineBatcher(0, time.Hour, rec.record)

	_, err := b.Write([]byte("partial"))
	require.NoError(t, err)
	b.Flush()
	assert.Equal(t, []string{"partial"}, rec.snapshot())

	_, err = b.Write([]byte("tail"))
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.Equal(t, []string{"partial", "tail"}, rec.snapshot())

	_, err = b.Write([]byte("late"))
	assert.ErrorIs(t, err, telemetry.ErrBatcherClosed)
	b.Flush()
}
