// internal/game/types.go
//
// Core type definitions for the session engine.
// Defines:
//   - Status: lifecycle of a single play-through.
//   - Session: mutable state of one play-through, owned by a Controller.
//   - Snapshot and its views: the read-only projection handed to presenters.
//   - Event: the completion record emitted once per terminal transition.

package game

import (
	"errors"
	"time"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/grading"
	"github.com/jgalan247/Edexcel-GCSE/internal/progress"
)

// Status is the session lifecycle state:
//   - "not_started": rendered, no user interaction yet.
//   - "in_progress": first action taken; elapsed time accrues.
//   - "complete":    every item or question resolved.
//   - "failed":      attempt budget exhausted (wall only).
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// Terminal reports whether s accepts no further actions.
func (s Status) Terminal() bool { return s == StatusComplete || s == StatusFailed }

var (
	// ErrInvalidAction means an action referenced an id outside the current
	// session or did not apply to the controller's mode. A correctly wired
	// client never triggers it.
	ErrInvalidAction = errors.New("invalid action")
	// ErrSessionFinished is returned for actions after complete/failed.
	ErrSessionFinished = errors.New("session finished")
	// ErrNoSession is returned before Init succeeds.
	ErrNoSession = errors.New("no active session")
)

// Session is the state of one play-through. Presented is always a
// permutation of the dataset's ids; Assign never references ids outside it.
type Session struct {
	ID         string
	Dataset    *catalog.Dataset
	Presented  []string          // shuffled item (or question) ids
	Assign     map[string]string // item id → current slot
	Status     Status
	Tracker    *progress.Tracker
	StartedAt  time.Time
	FinishedAt time.Time

	attemptsUsed int
	faceUp       []string // memory: unmatched cards showing
	selected     []string // wall: current selection in click order
	solved       []string // wall: group keys found, in order
	revealed     bool
	order        []string // sequence: current arrangement
	current      int      // quiz: question on screen
	answers      map[string]int
	code         map[string]string         // code breaker: last submission per challenge
	advancing    bool                      // quiz: waiting for the auto-advance timer
	results      map[string]grading.Result // sticky verdict per item or question
	last         []grading.Result          // most recent grading pass
}

// ItemState is how one item is shown.
type ItemState string

const (
	ItemHidden   ItemState = "hidden"
	ItemFaceUp   ItemState = "face_up"
	ItemMatched  ItemState = "matched"
	ItemSelected ItemState = "selected"
	ItemSolved   ItemState = "solved"
	ItemPool     ItemState = "pool"
	ItemPlaced   ItemState = "placed"
	ItemOpen     ItemState = "open"
)

// ItemView is one item as the presenter renders it. Text is withheld for
// face-down memory cards.
type ItemView struct {
	ID     string          `json:"id"`
	Text   string          `json:"text,omitempty"`
	Role   catalog.Role    `json:"role,omitempty"`
	State  ItemState       `json:"state"`
	Slot   string          `json:"slot,omitempty"`
	Result *grading.Result `json:"result,omitempty"`
}

// GroupView is a solved or revealed wall group, or a sort category with the
// items currently placed in it.
type GroupView struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Color    string   `json:"color,omitempty"`
	Items    []string `json:"items"`
	Revealed bool     `json:"revealed,omitempty"`
}

// QuestionView is one quiz question. Correct and Explanation are only filled
// once the question has been graded.
type QuestionView struct {
	ID          string          `json:"id"`
	Prompt      string          `json:"prompt"`
	Options     []string        `json:"options"`
	Answer      int             `json:"answer"`
	Correct     *int            `json:"correct,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
	Result      *grading.Result `json:"result,omitempty"`
}

// ChallengeView is one code breaker challenge. Code is the last submission,
// or the buggy program before any. Output is the program's expected output
// once fixed, or a retry message after a failed submission.
type ChallengeView struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Hint   string          `json:"hint"`
	Code   string          `json:"code"`
	Output string          `json:"output,omitempty"`
	Result *grading.Result `json:"result,omitempty"`
}

// Snapshot is the full, read-only projection of a controller's session.
type Snapshot struct {
	ID           string            `json:"id"`
	SessionID    string            `json:"sessionId"`
	Mode         catalog.Mode      `json:"mode"`
	Topic        string            `json:"topic"`
	Title        string            `json:"title"`
	Status       Status            `json:"status"`
	Daily        string            `json:"daily,omitempty"`
	Player       string            `json:"player,omitempty"`
	Progress     progress.Snapshot `json:"progress"`
	Score        int               `json:"score"`
	Total        int               `json:"total"`
	Percent      int               `json:"percent"`
	Grade        string            `json:"grade,omitempty"`
	Message      string            `json:"message,omitempty"`
	AttemptsMax  int               `json:"attemptsMax,omitempty"`
	AttemptsUsed int               `json:"attemptsUsed"`

	Items      []ItemView       `json:"items,omitempty"`
	Groups     []GroupView      `json:"groups,omitempty"`
	Questions  []QuestionView   `json:"questions,omitempty"`
	Challenges []ChallengeView  `json:"challenges,omitempty"`
	Current    int              `json:"current"`
	Results    []grading.Result `json:"results,omitempty"`
}

// Event is emitted exactly once when a session reaches complete or failed.
type Event struct {
	SessionID    string           `json:"sessionId"`
	Mode         catalog.Mode     `json:"mode"`
	Topic        string           `json:"topic"`
	Title        string           `json:"title"`
	Player       string           `json:"player"`
	TeacherEmail string           `json:"-"`
	Status       Status           `json:"status"`
	Score        int              `json:"score"`
	Total        int              `json:"total"`
	Percent      int              `json:"percent"`
	Elapsed      time.Duration    `json:"-"`
	ElapsedMs    int64            `json:"elapsedMs"`
	Attempts     int              `json:"attempts"`
	Daily        string           `json:"daily,omitempty"`
	FinishedAt   time.Time        `json:"finishedAt"`
	Results      []grading.Result `json:"results,omitempty"`
	Questions    []QuestionView   `json:"-"`
}

// Listener consumes completion events. It runs on the acting goroutine after
// the controller lock is released.
type Listener interface {
	SessionFinished(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) SessionFinished(e Event) { f(e) }

// Listeners fans one event out to several listeners in order.
type Listeners []Listener

func (ls Listeners) SessionFinished(e Event) {
	for _, l := range ls {
		if l != nil {
			l.SessionFinished(e)
		}
	}
}
