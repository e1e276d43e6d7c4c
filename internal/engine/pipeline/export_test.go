package pipeline

import "time"

// SetNow replaces the clock used for stage timing and record timestamps.
func (p *Pipeline) SetNow(now func() time.Time) {
	p.now = now
}
