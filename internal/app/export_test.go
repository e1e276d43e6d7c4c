package app

import "time"

// SetRunIDs replaces the run ID generator.
func (a *App) SetRunIDs(fn func() string) {
	a.newRunID = fn
}

// SetClock replaces the clock used for record timestamps.
func (a *App) SetClock(now func() time.Time) {
	a.now = now
}
