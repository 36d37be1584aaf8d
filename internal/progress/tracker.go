// Package progress records per-session moves, attempts, elapsed time and the
// set of items resolved correctly.
package progress

import "time"

// Snapshot is a point-in-time copy of a Tracker.
type Snapshot struct {
	Attempts     int           `json:"attempts"`
	Elapsed      time.Duration `json:"-"`
	ElapsedMs    int64         `json:"elapsedMs"`
	CorrectCount int           `json:"correctCount"`
	Running      bool          `json:"running"`
}

// Tracker counts monotonically until Reset. Elapsed time accrues only while
// running: Start is called on the first user interaction, Stop on completion
// or pause. The tracker has no clock; a heartbeat feeds RecordElapsed.
type Tracker struct {
	attempts int
	elapsed  time.Duration
	correct  map[string]struct{}
	running  bool
}

// New returns a zeroed, stopped tracker.
func New() *Tracker {
	return &Tracker{correct: make(map[string]struct{})}
}

// Start begins elapsed-time accrual. Idempotent.
func (t *Tracker) Start() { t.running = true }

// Stop halts elapsed-time accrual. Idempotent.
func (t *Tracker) Stop() { t.running = false }

// Running reports whether elapsed time is accruing.
func (t *Tracker) Running() bool { return t.running }

// RecordAttempt counts one move or guess.
func (t *Tracker) RecordAttempt() { t.attempts++ }

// RecordElapsed adds d while running; negative deltas are ignored.
func (t *Tracker) RecordElapsed(d time.Duration) {
	if !t.running || d <= 0 {
		return
	}
	t.elapsed += d
}

// RecordCorrect marks id as resolved. It reports whether id was newly added.
func (t *Tracker) RecordCorrect(id string) bool {
	if _, ok := t.correct[id]; ok {
		return false
	}
	t.correct[id] = struct{}{}
	return true
}

// Forget unmarks id. Only re-gradable activities (ordering, category sort)
// use it, when a correction moves a previously correct item.
func (t *Tracker) Forget(id string) {
	delete(t.correct, id)
}

// IsCorrect reports whether id has been resolved.
func (t *Tracker) IsCorrect(id string) bool {
	_, ok := t.correct[id]
	return ok
}

// Snapshot returns the current counters.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Attempts:     t.attempts,
		Elapsed:      t.elapsed,
		ElapsedMs:    t.elapsed.Milliseconds(),
		CorrectCount: len(t.correct),
		Running:      t.running,
	}
}

// Reset zeroes every counter and stops accrual.
func (t *Tracker) Reset() {
	t.attempts = 0
	t.elapsed = 0
	t.correct = make(map[string]struct{})
	t.running = false
}
