package game

import (
	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/grading"
)

// PlaceInCategory moves an item into a category, or back to the pool when
// categoryID is empty. Moving an item clears its previous verdict.
func (c *Controller) PlaceInCategory(itemID, categoryID string) (Snapshot, error) {
	return c.act("place", func(s *Session) error {
		if _, ok := s.Dataset.Item(itemID); !ok {
			return c.invalid("place", itemID, "unknown item")
		}
		if categoryID != "" {
			if _, ok := s.Dataset.Group(categoryID); !ok {
				return c.invalid("place", itemID, "unknown category "+categoryID)
			}
		}
		c.begin(s)
		if categoryID == "" {
			delete(s.Assign, itemID)
		} else {
			s.Assign[itemID] = categoryID
		}
		delete(s.results, itemID)
		s.Tracker.Forget(itemID)
		return nil
	}, catalog.ModeSort)
}

// CheckPlacements grades every placed item on its own. Pool items are not
// graded; the session completes once every item sits in its own category.
func (c *Controller) CheckPlacements() (Snapshot, error) {
	return c.act("check", func(s *Session) error {
		c.begin(s)
		s.Tracker.RecordAttempt()
		res := grading.EvaluatePlacements(s.Dataset.Items, s.Assign)
		record(s, res)
		for _, r := range res {
			if r.Correct {
				s.Tracker.RecordCorrect(r.ItemID)
			} else {
				s.Tracker.Forget(r.ItemID)
			}
		}
		if s.Tracker.Snapshot().CorrectCount == len(s.Dataset.Items) {
			c.finishLocked(s, StatusComplete)
		}
		return nil
	}, catalog.ModeSort)
}

func sortView(s *Session, snap *Snapshot) {
	byCat := make(map[string][]string)
	snap.Items = make([]ItemView, 0, len(s.Presented))
	for _, id := range s.Presented {
		it, _ := s.Dataset.Item(id)
		v := ItemView{ID: id, Text: it.Text, State: ItemPool, Result: resultPtr(s, id)}
		if cat := s.Assign[id]; cat != "" {
			v.State, v.Slot = ItemPlaced, cat
			byCat[cat] = append(byCat[cat], id)
		}
		snap.Items = append(snap.Items, v)
	}
	for _, g := range s.Dataset.Groups {
		snap.Groups = append(snap.Groups, GroupView{
			Key:   g.Key,
			Name:  g.Name,
			Color: g.Color,
			Items: append([]string{}, byCat[g.Key]...),
		})
	}
}
