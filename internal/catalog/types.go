// internal/catalog/types.go
//
// Core dataset types shared by every activity.
// Defines:
//   - Mode: which activity a dataset feeds.
//   - Item: an atomic content unit (card, wall tile, sortable item, sequence step).
//   - Question: a multiple-choice question (quiz and logic-gate activities).
//   - Challenge: a buggy program to fix (code breaker).
//   - Dataset: an immutable, titled collection of Items or Questions.

package catalog

import "strings"

// Mode identifies an activity type. Topic ids are namespaced per mode.
type Mode string

const (
	ModeMemory   Mode = "memory"   // pairing: term ↔ definition cards
	ModeWall     Mode = "wall"     // grouping: fixed-size connection wall
	ModeSort     Mode = "sort"     // placing: items into category containers
	ModeSequence Mode = "sequence" // ordering: algorithm steps
	ModeLogic    Mode = "logic"    // quiz over logic-gate truth rows
	ModeQuiz     Mode = "quiz"     // multiple-choice quiz

	ModeCodeBreaker Mode = "codebreaker" // fix the bug in a short program
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeMemory, ModeWall, ModeSort, ModeSequence, ModeLogic, ModeQuiz, ModeCodeBreaker}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, x := range Modes {
		if x == m {
			return true
		}
	}
	return false
}

// IsQuiz reports whether m is graded question-by-question.
func (m Mode) IsQuiz() bool { return m == ModeQuiz || m == ModeLogic }

// Role distinguishes the two halves of a memory pair.
type Role string

const (
	RoleNone   Role = ""
	RolePrompt Role = "prompt" // the term
	RoleAnswer Role = "answer" // the definition
)

// Complements reports whether r and o are the two different halves of a pair.
func (r Role) Complements(o Role) bool {
	return r != RoleNone && o != RoleNone && r != o
}

// Item is one atomic content unit. Immutable once a session starts.
type Item struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	GroupKey string `json:"-"` // ground truth; never sent to the browser before grading
	Role     Role   `json:"role,omitempty"`
	Position int    `json:"-"` // canonical index for ordering datasets
}

// Group describes a pair, wall group or sort category.
type Group struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Question is one multiple-choice question.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Correct     int      `json:"-"`
	Explanation string   `json:"-"`
}

// Challenge is one code breaker exercise. A submission is accepted when, for
// every entry of Fixes, it contains at least one of that entry's fragments.
// Fixes stays server-side.
type Challenge struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	BuggyCode      string     `json:"buggyCode"`
	Hint           string     `json:"hint"`
	ExpectedOutput string     `json:"-"`
	Fixes          [][]string `json:"-"`
}

// Accepts reports whether code carries every required fix. Comments are
// ignored and whitespace runs compare as one space, so a "# use elif" note
// or a re-indented line neither passes nor fails a submission on its own.
func (ch Challenge) Accepts(code string) bool {
	norm := normaliseCode(code)
	for _, alts := range ch.Fixes {
		found := false
		for _, frag := range alts {
			if strings.Contains(norm, normaliseCode(frag)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func normaliseCode(code string) string {
	lines := strings.Split(code, "\n")
	for i, ln := range lines {
		if at := strings.IndexByte(ln, '#'); at >= 0 {
			ln = ln[:at]
		}
		lines[i] = ln
	}
	return strings.Join(strings.Fields(strings.Join(lines, "\n")), " ")
}

// Topic is a (id, title) pair for topic pickers.
type Topic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Size  int    `json:"size"`
}
