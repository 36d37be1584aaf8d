package game

import (
	"fmt"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/grading"
)

// AnswerQuestion grades option against the question on screen and, unless it
// was the last ungraded one, moves on after AdvanceDelay. Answers while the
// advance is pending are ignored.
func (c *Controller) AnswerQuestion(option int) (Snapshot, error) {
	return c.act("answer", func(s *Session) error {
		if s.advancing {
			return nil
		}
		q, _ := s.Dataset.Question(s.Presented[s.current])
		if option < 0 || option >= len(q.Options) {
			return c.invalid("answer", q.ID, fmt.Sprintf("option %d out of range", option))
		}
		if _, graded := s.results[q.ID]; graded {
			return nil
		}
		c.begin(s)
		gradeQuestion(s, q, option)
		if c.allGraded(s) {
			c.finishLocked(s, StatusComplete)
			return nil
		}
		s.advancing = true
		c.scheduleLocked(c.opts.AdvanceDelay, c.advance)
		return nil
	}, catalog.ModeQuiz, catalog.ModeLogic)
}

// AnswerQuestionAt records (or with grading.NotAnswered, clears) the chosen
// option for a form-style quiz without grading it. Graded questions are
// locked.
func (c *Controller) AnswerQuestionAt(questionID string, option int) (Snapshot, error) {
	return c.act("answer", func(s *Session) error {
		q, ok := s.Dataset.Question(questionID)
		if !ok {
			return c.invalid("answer", questionID, "unknown question")
		}
		if option != grading.NotAnswered && (option < 0 || option >= len(q.Options)) {
			return c.invalid("answer", questionID, fmt.Sprintf("option %d out of range", option))
		}
		if _, graded := s.results[q.ID]; graded {
			return nil
		}
		c.begin(s)
		if option == grading.NotAnswered {
			delete(s.answers, q.ID)
		} else {
			s.answers[q.ID] = option
		}
		return nil
	}, catalog.ModeQuiz, catalog.ModeLogic)
}

// FinishQuiz grades every remaining question, blanks as not_answered, and
// completes the session.
func (c *Controller) FinishQuiz() (Snapshot, error) {
	return c.act("finish", func(s *Session) error {
		c.begin(s)
		for _, id := range s.Presented {
			if _, graded := s.results[id]; graded {
				continue
			}
			q, _ := s.Dataset.Question(id)
			opt, ok := s.answers[id]
			if !ok {
				opt = grading.NotAnswered
			}
			gradeQuestion(s, q, opt)
		}
		s.last = c.resultsLocked(s)
		c.finishLocked(s, StatusComplete)
		return nil
	}, catalog.ModeQuiz, catalog.ModeLogic)
}

func gradeQuestion(s *Session, q catalog.Question, option int) {
	if option != grading.NotAnswered {
		s.answers[q.ID] = option
		s.Tracker.RecordAttempt()
	}
	r := grading.EvaluateAnswer(q, option)
	record(s, []grading.Result{r})
	if r.Correct {
		s.Tracker.RecordCorrect(q.ID)
	}
}

func (c *Controller) allGraded(s *Session) bool {
	return len(s.results) == len(s.Presented)
}

// advance moves to the next ungraded question, wrapping once.
func (c *Controller) advance(s *Session) {
	s.advancing = false
	n := len(s.Presented)
	for step := 1; step <= n; step++ {
		i := (s.current + step) % n
		if _, graded := s.results[s.Presented[i]]; !graded {
			s.current = i
			return
		}
	}
}

func questionViews(s *Session) []QuestionView {
	out := make([]QuestionView, 0, len(s.Presented))
	for _, id := range s.Presented {
		q, _ := s.Dataset.Question(id)
		v := QuestionView{ID: q.ID, Prompt: q.Prompt, Options: q.Options, Answer: grading.NotAnswered}
		if a, ok := s.answers[id]; ok {
			v.Answer = a
		}
		if r := resultPtr(s, id); r != nil {
			correct := q.Correct
			v.Correct, v.Explanation, v.Result = &correct, q.Explanation, r
		}
		out = append(out, v)
	}
	return out
}
