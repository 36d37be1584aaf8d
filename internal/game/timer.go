package game

import "time"

// Timer is a cancellation token for a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The controller owns every Timer it gets
// back and stops them on Reset/ChangeTopic.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// WallClock schedules on real timers.
type WallClock struct{}

func (WallClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
