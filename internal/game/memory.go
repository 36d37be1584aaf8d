package game

import (
	"slices"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/grading"
)

// Select flips a memory card or toggles a wall tile.
//
// Memory: the second face-up card is one move and is graded against the
// first. A match is permanent; a mismatch flips both back after RevealDelay.
// While two unmatched cards are showing, further selects are ignored, as are
// selects on cards already face up or matched.
func (c *Controller) Select(itemID string) (Snapshot, error) {
	return c.act("select", func(s *Session) error {
		if _, ok := s.Dataset.Item(itemID); !ok {
			return c.invalid("select", itemID, "unknown item")
		}
		if c.mode == catalog.ModeWall {
			c.toggleTile(s, itemID)
			return nil
		}
		c.flipCard(s, itemID)
		return nil
	}, catalog.ModeMemory, catalog.ModeWall)
}

func (c *Controller) flipCard(s *Session, id string) {
	if len(s.faceUp) >= 2 || s.Assign[id] != "" || slices.Contains(s.faceUp, id) {
		return
	}
	c.begin(s)
	s.faceUp = append(s.faceUp, id)
	if len(s.faceUp) < 2 {
		return
	}

	s.Tracker.RecordAttempt()
	a, _ := s.Dataset.Item(s.faceUp[0])
	b, _ := s.Dataset.Item(s.faceUp[1])
	res := grading.EvaluatePair(a, b)
	if !grading.AllCorrect(res) {
		s.last = res
		c.scheduleLocked(c.opts.RevealDelay, func(s *Session) {
			s.faceUp = nil
			s.last = nil
		})
		return
	}

	record(s, res)
	for _, it := range []catalog.Item{a, b} {
		s.Assign[it.ID] = it.GroupKey
		s.Tracker.RecordCorrect(it.ID)
	}
	s.faceUp = nil
	if s.Tracker.Snapshot().CorrectCount == len(s.Dataset.Items) {
		c.finishLocked(s, StatusComplete)
	}
}

func memoryView(s *Session, snap *Snapshot) {
	snap.Items = make([]ItemView, 0, len(s.Presented))
	for _, id := range s.Presented {
		it, _ := s.Dataset.Item(id)
		v := ItemView{ID: id, State: ItemHidden}
		switch {
		case s.Assign[id] != "":
			v.State = ItemMatched
		case slices.Contains(s.faceUp, id):
			v.State = ItemFaceUp
		}
		if v.State != ItemHidden {
			v.Text, v.Role = it.Text, it.Role
		}
		snap.Items = append(snap.Items, v)
	}
}
