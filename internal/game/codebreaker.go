package game

import (
	"fmt"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/grading"
)

// MaxCodeLength caps one code breaker submission in bytes.
const MaxCodeLength = 8 << 10

const retryOutput = "Error: The code still has bugs. Try again!"

// SubmitCode checks a fixed program for one challenge. Every non-blank
// submission counts as an attempt; a pass is final for that challenge and the
// session completes once every challenge has passed.
func (c *Controller) SubmitCode(challengeID, code string) (Snapshot, error) {
	return c.act("submit_code", func(s *Session) error {
		ch, ok := s.Dataset.Challenge(challengeID)
		if !ok {
			return c.invalid("submit_code", challengeID, "unknown challenge")
		}
		if len(code) > MaxCodeLength {
			return c.invalid("submit_code", challengeID, fmt.Sprintf("%d bytes exceeds %d", len(code), MaxCodeLength))
		}
		if s.Tracker.IsCorrect(ch.ID) {
			return nil
		}
		r := grading.EvaluateCode(ch, code)
		if r.Mark == grading.MarkNotAnswered {
			return c.invalid("submit_code", challengeID, "empty submission")
		}
		c.begin(s)
		s.Tracker.RecordAttempt()
		s.code[ch.ID] = code
		record(s, []grading.Result{r})
		if !r.Correct {
			return nil
		}
		s.Tracker.RecordCorrect(ch.ID)
		if s.Tracker.Snapshot().CorrectCount == len(s.Dataset.Challenges) {
			c.finishLocked(s, StatusComplete)
		}
		return nil
	}, catalog.ModeCodeBreaker)
}

func challengeView(s *Session, snap *Snapshot) {
	snap.Challenges = make([]ChallengeView, 0, len(s.Presented))
	for _, id := range s.Presented {
		ch, _ := s.Dataset.Challenge(id)
		v := ChallengeView{ID: ch.ID, Title: ch.Title, Hint: ch.Hint, Code: ch.BuggyCode}
		if code, ok := s.code[id]; ok {
			v.Code = code
		}
		if r := resultPtr(s, id); r != nil {
			v.Result = r
			v.Output = retryOutput
			if r.Correct {
				v.Output = ch.ExpectedOutput
			}
		}
		snap.Challenges = append(snap.Challenges, v)
	}
}
