// internal/catalog/catalog.go
//
// Dataset Catalog: a static mapping of (mode, topic id) to Datasets.
// Responsibilities:
//   - Decode the dataset document (mode → topic → collection).
//   - Normalise every collection into generic Items/Questions with group keys.
//   - Validate the document so grading never meets malformed data.
//   - Serve pure lookups; the Catalog is read-only after Parse.
//
// Item id scheme (stable within a dataset):
//   memory  p<pair>-t / p<pair>-d   group key p<pair>
//   wall    w<group>-<n>            group key = group name
//   sort    c<category>-<n>         group key = category name
//   sequence s<n>                   position n
//   quiz    q<n>, logic g<n>
//   codebreaker x<n>

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

var (
	// ErrDatasetNotFound is returned for an unknown (mode, topic) key.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrInvalidDocument wraps every validation failure in Parse.
	ErrInvalidDocument = errors.New("invalid dataset document")
)

// Catalog maps mode → topic id → Dataset.
type Catalog struct {
	datasets map[Mode]map[string]*Dataset
}

// document mirrors the JSON dataset file.
type document struct {
	Memory map[string]struct {
		Title string `json:"title"`
		Pairs []struct {
			Term       string `json:"term"`
			Definition string `json:"definition"`
		} `json:"pairs"`
	} `json:"memory"`
	Wall map[string]struct {
		Title  string `json:"title"`
		Groups []struct {
			Name  string   `json:"name"`
			Items []string `json:"items"`
			Color string   `json:"color"`
		} `json:"groups"`
	} `json:"wall"`
	Sort map[string]struct {
		Title      string `json:"title"`
		Categories []struct {
			Name  string   `json:"name"`
			Items []string `json:"items"`
		} `json:"categories"`
	} `json:"sort"`
	Sequence map[string]struct {
		Title string   `json:"title"`
		Steps []string `json:"steps"`
	} `json:"sequence"`
	Logic map[string]struct {
		Title string `json:"title"`
		Rows  []struct {
			Gate   string `json:"gate"`
			Inputs []int  `json:"inputs"`
		} `json:"rows"`
	} `json:"logic"`
	Quiz map[string]struct {
		Title     string `json:"title"`
		Questions []struct {
			Question    string   `json:"question"`
			Options     []string `json:"options"`
			Correct     int      `json:"correct"`
			Explanation string   `json:"explanation"`
		} `json:"questions"`
	} `json:"quiz"`
	CodeBreaker map[string]struct {
		Title      string `json:"title"`
		Challenges []struct {
			Title          string     `json:"title"`
			BuggyCode      string     `json:"buggyCode"`
			ExpectedOutput string     `json:"expectedOutput"`
			Hint           string     `json:"hint"`
			Fixes          [][]string `json:"fixes"`
		} `json:"challenges"`
	} `json:"codebreaker"`
}

// Parse decodes and validates a dataset document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	c := &Catalog{datasets: make(map[Mode]map[string]*Dataset)}

	for id, m := range doc.Memory {
		d := &Dataset{ID: id, Mode: ModeMemory, Title: m.Title}
		for i, p := range m.Pairs {
			key := fmt.Sprintf("p%d", i)
			d.Groups = append(d.Groups, Group{Key: key, Name: p.Term})
			d.Items = append(d.Items,
				Item{ID: key + "-t", Text: p.Term, GroupKey: key, Role: RolePrompt},
				Item{ID: key + "-d", Text: p.Definition, GroupKey: key, Role: RoleAnswer},
			)
		}
		if err := c.add(d); err != nil {
			return nil, err
		}
	}

	for id, w := range doc.Wall {
		d := &Dataset{ID: id, Mode: ModeWall, Title: w.Title}
		names := make(map[string]bool, len(w.Groups))
		for gi, g := range w.Groups {
			if names[g.Name] {
				return nil, fmt.Errorf("%w: wall %q repeats group %q", ErrInvalidDocument, id, g.Name)
			}
			names[g.Name] = true
			if gi == 0 {
				d.GroupSize = len(g.Items)
			} else if len(g.Items) != d.GroupSize {
				return nil, fmt.Errorf("%w: wall %q group %q has %d items, want %d",
					ErrInvalidDocument, id, g.Name, len(g.Items), d.GroupSize)
			}
			d.Groups = append(d.Groups, Group{Key: g.Name, Name: g.Name, Color: g.Color})
			for n, text := range g.Items {
				d.Items = append(d.Items, Item{ID: fmt.Sprintf("w%d-%d", gi, n), Text: text, GroupKey: g.Name})
			}
		}
		if err := c.add(d); err != nil {
			return nil, err
		}
	}

	for id, s := range doc.Sort {
		d := &Dataset{ID: id, Mode: ModeSort, Title: s.Title}
		names := make(map[string]bool, len(s.Categories))
		for ci, cat := range s.Categories {
			if names[cat.Name] {
				return nil, fmt.Errorf("%w: sort %q repeats category %q", ErrInvalidDocument, id, cat.Name)
			}
			names[cat.Name] = true
			d.Groups = append(d.Groups, Group{Key: cat.Name, Name: cat.Name})
			for n, text := range cat.Items {
				d.Items = append(d.Items, Item{ID: fmt.Sprintf("c%d-%d", ci, n), Text: text, GroupKey: cat.Name})
			}
		}
		if err := c.add(d); err != nil {
			return nil, err
		}
	}

	for id, s := range doc.Sequence {
		d := &Dataset{ID: id, Mode: ModeSequence, Title: s.Title}
		// Identical steps share the key of their first occurrence.
		first := make(map[string]int, len(s.Steps))
		for n, step := range s.Steps {
			if _, ok := first[step]; !ok {
				first[step] = n
			}
			d.Items = append(d.Items, Item{ID: fmt.Sprintf("s%d", n), Text: step, GroupKey: fmt.Sprint(first[step]), Position: n})
		}
		if err := c.add(d); err != nil {
			return nil, err
		}
	}

	for id, l := range doc.Logic {
		d := &Dataset{ID: id, Mode: ModeLogic, Title: l.Title}
		for n, row := range l.Rows {
			q, err := gateQuestion(fmt.Sprintf("g%d", n), row.Gate, row.Inputs)
			if err != nil {
				return nil, fmt.Errorf("%w: logic %q row %d: %w", ErrInvalidDocument, id, n, err)
			}
			d.Questions = append(d.Questions, q)
		}
		if err := c.add(d); err != nil {
			return nil, err
		}
	}

	for id, qz := range doc.Quiz {
		d := &Dataset{ID: id, Mode: ModeQuiz, Title: qz.Title}
		for n, q := range qz.Questions {
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				return nil, fmt.Errorf("%w: quiz %q question %d: correct index %d out of range",
					ErrInvalidDocument, id, n, q.Correct)
			}
			d.Questions = append(d.Questions, Question{
				ID:          fmt.Sprintf("q%d", n),
				Prompt:      q.Question,
				Options:     q.Options,
				Correct:     q.Correct,
				Explanation: q.Explanation,
			})
		}
		if err := c.add(d); err != nil {
			return nil, err
		}
	}

	for id, cb := range doc.CodeBreaker {
		d := &Dataset{ID: id, Mode: ModeCodeBreaker, Title: cb.Title}
		for n, x := range cb.Challenges {
			ch := Challenge{
				ID:             fmt.Sprintf("x%d", n),
				Title:          x.Title,
				BuggyCode:      x.BuggyCode,
				Hint:           x.Hint,
				ExpectedOutput: x.ExpectedOutput,
				Fixes:          x.Fixes,
			}
			if err := checkChallenge(ch); err != nil {
				return nil, fmt.Errorf("%w: codebreaker %q challenge %d: %w", ErrInvalidDocument, id, n, err)
			}
			d.Challenges = append(d.Challenges, ch)
		}
		if err := c.add(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// checkChallenge requires a non-empty fix list and buggy code that does not
// already pass it.
func checkChallenge(ch Challenge) error {
	if strings.TrimSpace(ch.BuggyCode) == "" {
		return errors.New("no buggy code")
	}
	if len(ch.Fixes) == 0 {
		return errors.New("no fixes")
	}
	for i, alts := range ch.Fixes {
		if len(alts) == 0 || slices.ContainsFunc(alts, func(f string) bool { return strings.TrimSpace(f) == "" }) {
			return fmt.Errorf("fix %d has an empty fragment", i)
		}
	}
	if ch.Accepts(ch.BuggyCode) {
		return errors.New("buggy code already passes")
	}
	return nil
}

// add registers a normalised dataset after checking it is non-empty.
func (c *Catalog) add(d *Dataset) error {
	if d.ID == "" {
		return fmt.Errorf("%w: %s dataset with empty id", ErrInvalidDocument, d.Mode)
	}
	if d.Size() == 0 {
		return fmt.Errorf("%w: %s %q is empty", ErrInvalidDocument, d.Mode, d.ID)
	}
	if c.datasets[d.Mode] == nil {
		c.datasets[d.Mode] = make(map[string]*Dataset)
	}
	c.datasets[d.Mode][d.ID] = newDataset(d)
	return nil
}

// Get returns the dataset for (mode, topicID) or ErrDatasetNotFound.
func (c *Catalog) Get(mode Mode, topicID string) (*Dataset, error) {
	if d, ok := c.datasets[mode][topicID]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrDatasetNotFound, mode, topicID)
}

// Topics lists the topics available for mode, sorted by id.
func (c *Catalog) Topics(mode Mode) []Topic {
	out := make([]Topic, 0, len(c.datasets[mode]))
	for id, d := range c.datasets[mode] {
		out = append(out, Topic{ID: id, Title: d.Title, Size: d.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stats returns the number of datasets per mode.
func (c *Catalog) Stats() map[Mode]int {
	out := make(map[Mode]int, len(c.datasets))
	for m, ds := range c.datasets {
		out[m] = len(ds)
	}
	return out
}
