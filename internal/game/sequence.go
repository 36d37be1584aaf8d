package game

import (
	"fmt"
	"slices"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/grading"
)

// Reorder moves a step to newPosition, shifting the steps in between, the
// way a drag-and-drop list does. Verdicts from the last check are cleared;
// the score keeps the last check until the next one.
func (c *Controller) Reorder(itemID string, newPosition int) (Snapshot, error) {
	return c.act("reorder", func(s *Session) error {
		from := slices.Index(s.order, itemID)
		if from < 0 {
			return c.invalid("reorder", itemID, "unknown item")
		}
		if newPosition < 0 || newPosition >= len(s.order) {
			return c.invalid("reorder", itemID, fmt.Sprintf("position %d out of range", newPosition))
		}
		c.begin(s)
		s.order = slices.Delete(s.order, from, from+1)
		s.order = slices.Insert(s.order, newPosition, itemID)
		clear(s.results)
		s.last = nil
		return nil
	}, catalog.ModeSequence)
}

// SubmitOrderCheck grades the current arrangement. Full correctness
// completes the session; anything less leaves it in progress.
func (c *Controller) SubmitOrderCheck() (Snapshot, error) {
	return c.act("order_check", func(s *Session) error {
		c.begin(s)
		s.Tracker.RecordAttempt()
		items := make([]catalog.Item, len(s.order))
		for i, id := range s.order {
			items[i], _ = s.Dataset.Item(id)
		}
		res := grading.EvaluateOrder(items, s.Dataset.Items)
		record(s, res)
		for _, r := range res {
			if r.Correct {
				s.Tracker.RecordCorrect(r.ItemID)
			} else {
				s.Tracker.Forget(r.ItemID)
			}
		}
		if grading.AllCorrect(res) {
			c.finishLocked(s, StatusComplete)
		}
		return nil
	}, catalog.ModeSequence)
}

func sequenceView(s *Session, snap *Snapshot) {
	snap.Items = make([]ItemView, 0, len(s.order))
	for _, id := range s.order {
		it, _ := s.Dataset.Item(id)
		snap.Items = append(snap.Items, ItemView{ID: id, Text: it.Text, State: ItemOpen, Result: resultPtr(s, id)})
	}
}
