// internal/grading/grading.go
//
// Grading engine shared by every activity.
// Every evaluator returns per-item verdicts against the canonical answer key
// carried on catalog Items (GroupKey, Role, Position) and Questions (Correct).
//
//   - EvaluatePair:       memory match, two complementary halves of one pair.
//   - EvaluateGroup:      connection wall, exactly N items sharing one key;
//                         any stray item fails the whole set.
//   - EvaluatePlacements: category sort, each placed item graded on its own;
//                         unplaced items are omitted.
//   - EvaluateOrder:      sequence builder, slot p correct iff it holds canonical step p.
//   - EvaluateQuiz:       one correct option per question; unanswered is a
//                         distinct mark, never option 0.
//   - EvaluateCode:       code breaker, every required fix present.

package grading

import (
	"math"
	"strings"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
)

// Mark is the verdict for one item or question.
type Mark string

const (
	MarkCorrect     Mark = "correct"
	MarkIncorrect   Mark = "incorrect"
	MarkNotAnswered Mark = "not_answered"
)

// NotAnswered is the answer sentinel for a question left blank.
const NotAnswered = -1

// Result is the verdict for one item after a grading pass.
type Result struct {
	ItemID  string `json:"itemId"`
	Correct bool   `json:"isCorrect"`
	Mark    Mark   `json:"mark"`
}

func verdict(id string, ok bool) Result {
	if ok {
		return Result{ItemID: id, Correct: true, Mark: MarkCorrect}
	}
	return Result{ItemID: id, Mark: MarkIncorrect}
}

// EvaluatePair grades two selected cards. They are correct together iff they
// are distinct, share a group key, and have complementary roles; two prompts
// (or two answers) of the same pair never match.
func EvaluatePair(a, b catalog.Item) []Result {
	ok := a.ID != b.ID && a.GroupKey == b.GroupKey && a.Role.Complements(b.Role)
	return []Result{verdict(a.ID, ok), verdict(b.ID, ok)}
}

// EvaluateGroup grades a candidate set for a fixed group size. The set is
// correct only if it has exactly size distinct items all sharing one group
// key; otherwise every item is marked incorrect (no partial credit).
func EvaluateGroup(items []catalog.Item, size int) []Result {
	ok := len(items) == size && size > 0
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup || it.GroupKey != items[0].GroupKey {
			ok = false
		}
		seen[it.ID] = struct{}{}
	}
	out := make([]Result, len(items))
	for i, it := range items {
		out[i] = verdict(it.ID, ok)
	}
	return out
}

// EvaluatePlacements grades every placed item independently against the
// container it sits in. placement maps item id → category key; items with no
// entry (still in the pool) produce no result.
func EvaluatePlacements(items []catalog.Item, placement map[string]string) []Result {
	out := make([]Result, 0, len(placement))
	for _, it := range items {
		cat, placed := placement[it.ID]
		if !placed || cat == "" {
			continue
		}
		out = append(out, verdict(it.ID, cat == it.GroupKey))
	}
	return out
}

// EvaluateOrder grades a presented ordering against the canonical one: the
// item at index p is correct iff it shares canonical[p]'s key. Steps with
// identical text share a key, so swapping them leaves the grade unchanged.
func EvaluateOrder(order, canonical []catalog.Item) []Result {
	out := make([]Result, len(order))
	for p, it := range order {
		out[p] = verdict(it.ID, p < len(canonical) && it.GroupKey == canonical[p].GroupKey)
	}
	return out
}

// EvaluateQuiz grades each question against its single correct option.
// Missing answers and NotAnswered produce MarkNotAnswered.
func EvaluateQuiz(questions []catalog.Question, answers map[string]int) []Result {
	out := make([]Result, len(questions))
	for i, q := range questions {
		out[i] = EvaluateAnswer(q, answerOf(answers, q.ID))
	}
	return out
}

// EvaluateAnswer grades a single question.
func EvaluateAnswer(q catalog.Question, option int) Result {
	if option == NotAnswered {
		return Result{ItemID: q.ID, Mark: MarkNotAnswered}
	}
	return verdict(q.ID, option == q.Correct)
}

// EvaluateCode grades one code breaker submission. Blank code is not_answered.
func EvaluateCode(ch catalog.Challenge, code string) Result {
	if strings.TrimSpace(code) == "" {
		return Result{ItemID: ch.ID, Mark: MarkNotAnswered}
	}
	return verdict(ch.ID, ch.Accepts(code))
}

func answerOf(answers map[string]int, id string) int {
	if a, ok := answers[id]; ok {
		return a
	}
	return NotAnswered
}

// Summary counts verdicts by mark.
type Summary struct {
	Correct     int `json:"correct"`
	Incorrect   int `json:"incorrect"`
	NotAnswered int `json:"notAnswered"`
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Mark {
		case MarkCorrect:
			s.Correct++
		case MarkNotAnswered:
			s.NotAnswered++
		default:
			s.Incorrect++
		}
	}
	return s
}

// Score is the number of correct results.
func Score(results []Result) int {
	return Summarize(results).Correct
}

// AllCorrect reports whether results is non-empty and entirely correct.
func AllCorrect(results []Result) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.Correct {
			return false
		}
	}
	return true
}

// Percentage returns round(100*score/total); 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(total)))
}

// Band maps a percentage to the feedback shown on results and certificates.
func Band(pct int) (grade, message string) {
	switch {
	case pct >= 90:
		return "Excellent!", "Outstanding work! You have mastered this topic."
	case pct >= 70:
		return "Good Job!", "Well done! You have a solid understanding of this topic."
	case pct >= 50:
		return "Keep Practicing", "You're getting there! Review the topics you missed."
	default:
		return "More Study Needed", "Don't give up! Go through the notes again and try once more."
	}
}
