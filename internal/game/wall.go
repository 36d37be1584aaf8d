package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/grading"
)

// toggleTile adds or removes a wall tile from the selection. Solved tiles
// are locked and a full selection ignores further additions.
func (c *Controller) toggleTile(s *Session, id string) {
	if s.Assign[id] != "" {
		return
	}
	c.begin(s)
	if i := slices.Index(s.selected, id); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		return
	}
	if len(s.selected) < s.Dataset.GroupSize {
		s.selected = append(s.selected, id)
	}
}

// ClearSelection deselects every wall tile.
func (c *Controller) ClearSelection() (Snapshot, error) {
	return c.act("clear", func(s *Session) error {
		s.selected = nil
		return nil
	}, catalog.ModeWall)
}

// SubmitGroup grades the current selection as one group. A wrong guess
// consumes one attempt; the MaxAttempts-th wrong guess fails the session and
// reveals every group.
func (c *Controller) SubmitGroup() (Snapshot, error) {
	return c.act("submit_group", func(s *Session) error {
		size := s.Dataset.GroupSize
		if len(s.selected) != size {
			return c.invalid("submit_group", strings.Join(s.selected, ","),
				fmt.Sprintf("selection has %d of %d tiles", len(s.selected), size))
		}
		c.begin(s)
		s.Tracker.RecordAttempt()

		items := make([]catalog.Item, len(s.selected))
		for i, id := range s.selected {
			items[i], _ = s.Dataset.Item(id)
		}
		s.selected = nil
		res := grading.EvaluateGroup(items, size)
		if !grading.AllCorrect(res) {
			s.last = res
			s.attemptsUsed++
			if s.attemptsUsed >= c.opts.MaxAttempts {
				s.revealed = true
				c.finishLocked(s, StatusFailed)
			}
			return nil
		}

		key := items[0].GroupKey
		s.solved = append(s.solved, key)
		record(s, res)
		for _, it := range items {
			s.Assign[it.ID] = key
			s.Tracker.RecordCorrect(it.ID)
		}
		if len(s.solved) == len(s.Dataset.Groups) {
			c.finishLocked(s, StatusComplete)
		}
		return nil
	}, catalog.ModeWall)
}

func wallView(s *Session, snap *Snapshot) {
	snap.Items = make([]ItemView, 0, len(s.Presented))
	for _, id := range s.Presented {
		it, _ := s.Dataset.Item(id)
		v := ItemView{ID: id, Text: it.Text, State: ItemOpen}
		switch {
		case s.Assign[id] != "":
			v.State, v.Slot = ItemSolved, s.Assign[id]
		case slices.Contains(s.selected, id):
			v.State = ItemSelected
		}
		snap.Items = append(snap.Items, v)
	}

	for _, key := range s.solved {
		snap.Groups = append(snap.Groups, groupView(s.Dataset, key, false))
	}
	if !s.revealed {
		return
	}
	for _, g := range s.Dataset.Groups {
		if !slices.Contains(s.solved, g.Key) {
			snap.Groups = append(snap.Groups, groupView(s.Dataset, g.Key, true))
		}
	}
}

func groupView(ds *catalog.Dataset, key string, revealed bool) GroupView {
	g, _ := ds.Group(key)
	v := GroupView{Key: g.Key, Name: g.Name, Color: g.Color, Revealed: revealed}
	for _, it := range ds.GroupItems(key) {
		v.Items = append(v.Items, it.Text)
	}
	return v
}
