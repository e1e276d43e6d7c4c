package tui

import (
	"bytes"
	"sync"

	"github.com/vito/midterm"
)

// Vterm holds the emulated terminal output of one stage and a scroll window over it.
type Vterm struct {
	mu     sync.Mutex
	vt     *midterm.Terminal
	buf    bytes.Buffer
	offset int
	height int
}

// NewVterm creates an empty terminal with a one line window.
func NewVterm() *Vterm {
	return &Vterm{
		vt:     midterm.NewAutoResizingTerminal(),
		height: 1,
	}
}

// Write feeds raw command output, ANSI sequences included, into the terminal.
// The window keeps following the tail if it was at the bottom before.
func (v *Vterm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	atBottom := v.offset >= v.maxOffset()
	n, err := v.vt.Write(p)
	if atBottom {
		v.offset = v.maxOffset()
	}
	return n, err
}

// Resize sets the visible window. Values below one are raised to one.
func (v *Vterm) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	width = max(width, 1)
	height = max(height, 1)

	atBottom := v.offset >= v.maxOffset()
	v.height = height
	v.vt.ResizeX(width)
	if atBottom {
		v.offset = v.maxOffset()
	}
	v.clamp()
}

// Scroll moves the window by delta lines.
func (v *Vterm) Scroll(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.offset += delta
	v.clamp()
}

// ScrollPage moves the window by whole pages.
func (v *Vterm) ScrollPage(pages int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.offset += pages * v.height
	v.clamp()
}

// ScrollTop jumps to the first line.
func (v *Vterm) ScrollTop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = 0
}

// ScrollBottom jumps to the last page.
func (v *Vterm) ScrollBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = v.maxOffset()
}

// Offset is the first visible line.
func (v *Vterm) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// Lines is the number of lines written so far.
func (v *Vterm) Lines() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vt.UsedHeight()
}

// View renders the visible window.
func (v *Vterm) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clamp()
	v.buf.Reset()
	used := v.vt.UsedHeight()
	for i := range v.height {
		row := v.offset + i
		if row >= used {
			break
		}
		if i > 0 {
			v.buf.WriteByte('\n')
		}
		_ = v.vt.RenderLine(&v.buf, row)
	}
	return v.buf.String()
}

func (v *Vterm) clamp() {
	v.offset = min(max(v.offset, 0), v.maxOffset())
}

func (v *Vterm) maxOffset() int {
	return max(v.vt.UsedHeight()-v.height, 0)
}
