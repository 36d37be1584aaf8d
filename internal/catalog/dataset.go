package catalog

// Dataset is an ordered, read-only collection of Items (Questions for quiz
// modes, Challenges for code breaker) plus a title. Owned by the Catalog;
// never mutated after construction.
type Dataset struct {
	ID         string
	Mode       Mode
	Title      string
	Items      []Item
	Groups     []Group
	GroupSize  int // wall only: number of items per group
	Questions  []Question
	Challenges []Challenge

	itemIdx     map[string]int
	questionIdx map[string]int
}

func newDataset(d *Dataset) *Dataset {
	d.itemIdx = make(map[string]int, len(d.Items))
	for i, it := range d.Items {
		d.itemIdx[it.ID] = i
	}
	d.questionIdx = make(map[string]int, len(d.Questions))
	for i, q := range d.Questions {
		d.questionIdx[q.ID] = i
	}
	return d
}

// Item looks up an item by id.
func (d *Dataset) Item(id string) (Item, bool) {
	i, ok := d.itemIdx[id]
	if !ok {
		return Item{}, false
	}
	return d.Items[i], true
}

// Question looks up a question by id.
func (d *Dataset) Question(id string) (Question, bool) {
	i, ok := d.questionIdx[id]
	if !ok {
		return Question{}, false
	}
	return d.Questions[i], true
}

// Challenge looks up a code breaker challenge by id.
func (d *Dataset) Challenge(id string) (Challenge, bool) {
	for _, ch := range d.Challenges {
		if ch.ID == id {
			return ch, true
		}
	}
	return Challenge{}, false
}

// Group looks up a group/category by key.
func (d *Dataset) Group(key string) (Group, bool) {
	for _, g := range d.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// GroupItems returns the items belonging to key, in authored order.
func (d *Dataset) GroupItems(key string) []Item {
	var out []Item
	for _, it := range d.Items {
		if it.GroupKey == key {
			out = append(out, it)
		}
	}
	return out
}

// ItemIDs returns every item id in authored order.
func (d *Dataset) ItemIDs() []string {
	out := make([]string, len(d.Items))
	for i, it := range d.Items {
		out[i] = it.ID
	}
	return out
}

// Size is the number of gradable units: items, questions or challenges.
func (d *Dataset) Size() int {
	switch {
	case d.Mode.IsQuiz():
		return len(d.Questions)
	case d.Mode == ModeCodeBreaker:
		return len(d.Challenges)
	}
	return len(d.Items)
}

// Limit returns a copy capped to the first n pairs/groups/categories, steps,
// questions or challenges. n <= 0 or n beyond the dataset returns d unchanged.
func (d *Dataset) Limit(n int) *Dataset {
	if n <= 0 {
		return d
	}
	out := &Dataset{ID: d.ID, Mode: d.Mode, Title: d.Title, GroupSize: d.GroupSize}
	switch {
	case d.Mode.IsQuiz():
		if n >= len(d.Questions) {
			return d
		}
		out.Questions = append([]Question(nil), d.Questions[:n]...)
	case d.Mode == ModeCodeBreaker:
		if n >= len(d.Challenges) {
			return d
		}
		out.Challenges = append([]Challenge(nil), d.Challenges[:n]...)
	case len(d.Groups) > 0:
		if n >= len(d.Groups) {
			return d
		}
		keep := make(map[string]struct{}, n)
		for _, g := range d.Groups[:n] {
			keep[g.Key] = struct{}{}
		}
		out.Groups = append([]Group(nil), d.Groups[:n]...)
		for _, it := range d.Items {
			if _, ok := keep[it.GroupKey]; ok {
				out.Items = append(out.Items, it)
			}
		}
	default:
		if n >= len(d.Items) {
			return d
		}
		out.Items = append([]Item(nil), d.Items[:n]...)
	}
	return newDataset(out)
}
