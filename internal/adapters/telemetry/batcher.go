// Package telemetry provides tracing, metrics and the span-to-renderer bridge.
package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the pending output (4KB) that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the flush interval (50ms).
	DefaultTimeLimit = 50 * time.Millisecond
)

// ErrBatcherClosed is returned by writes after Close.
var ErrBatcherClosed = errors.New("line batcher is closed")

// LineBatcher collects the output of a stage and hands it on in whole lines,
// so a compiler diagnostic is never split across two renderer events.
// Output is flushed on every tick of the time limit and whenever the pending
// output reaches the size limit. A trailing partial line is held back until
// it completes, the stage ends, or it has waited out a full tick.
type LineBatcher struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	held   bool
	ticker *time.Ticker
	stopCh chan struct{}
	closed bool
}

// NewLineBatcher returns a LineBatcher calling onFlush with each chunk.
// Non-positive limits fall back to the defaults. Close stops the ticker.
func NewLineBatcher(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *LineBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	b := &LineBatcher{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		ticker:    time.NewTicker(timeLimit),
		stopCh:    make(chan struct{}),
	}
	go b.run()
	return b
}

// Write buffers p. Reaching the size limit flushes every complete line, or
// everything when a single line alone exceeds the limit.
func (b *LineBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrBatcherClosed
	}

	n, _ := b.buffer.Write(p)
	if b.buffer.Len() < b.sizeLimit {
		return n, nil
	}

	b.flushLines()
	if b.buffer.Len() >= b.sizeLimit {
		b.emit(b.buffer.Len())
	}
	b.held = false
	b.ticker.Reset(b.timeLimit)
	return n, nil
}

// Flush hands on everything buffered, partial line included.
func (b *LineBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.emit(b.buffer.Len())
	b.held = false
}

// Close stops the ticker and flushes what is left.
func (b *LineBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.stopCh)
	b.emit(b.buffer.Len())
	return nil
}

func (b *LineBatcher) run() {
	for {
		select {
		case <-b.ticker.C:
			b.tick()
		case <-b.stopCh:
			b.ticker.Stop()
			return
		}
	}
}

func (b *LineBatcher) tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	flushed := b.flushLines()
	switch {
	case b.buffer.Len() == 0:
		b.held = false
	case b.held && !flushed:
		b.emit(b.buffer.Len())
		b.held = false
	default:
		b.held = true
	}
}

// flushLines emits up to the last line break. \r counts as one so
// progress lines that redraw in place still move.
func (b *LineBatcher) flushLines() bool {
	i := bytes.LastIndexAny(b.buffer.Bytes(), "\n\r")
	if i < 0 {
		return false
	}
	b.emit(i + 1)
	return true
}

// emit hands the first n buffered bytes to onFlush. Must hold mu; onFlush
// runs under it to keep chunks ordered and must not block.
func (b *LineBatcher) emit(n int) {
	if n == 0 {
		return
	}
	data := make([]byte, n)
	copy(data, b.buffer.Next(n))
	if b.onFlush != nil {
		b.onFlush(data)
	}
}
