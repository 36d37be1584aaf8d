package grading

import (
	"testing"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
)

func item(id, key string, role catalog.Role) catalog.Item {
	return catalog.Item{ID: id, Text: id, GroupKey: key, Role: role}
}

func TestEvaluatePair(t *testing.T) {
	termA := item("a-t", "a", catalog.RolePrompt)
	defA := item("a-d", "a", catalog.RoleAnswer)
	termB := item("b-t", "b", catalog.RolePrompt)
	twinA := item("a-t2", "a", catalog.RolePrompt)

	tests := []struct {
		name string
		x, y catalog.Item
		want bool
	}{
		{"term and its definition", termA, defA, true},
		{"definition first", defA, termA, true},
		{"different pairs", termA, termB, false},
		{"same key, same role", termA, twinA, false},
		{"same card twice", termA, termA, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := EvaluatePair(tt.x, tt.y)
			if len(res) != 2 {
				t.Fatalf("len = %d, want 2", len(res))
			}
			for _, r := range res {
				if r.Correct != tt.want {
					t.Errorf("%s correct = %v, want %v", r.ItemID, r.Correct, tt.want)
				}
			}
		})
	}
}

func TestEvaluateGroupNoPartialCredit(t *testing.T) {
	x := []catalog.Item{item("A-1", "X", ""), item("A-2", "X", ""), item("A-3", "X", ""), item("A-4", "X", "")}
	y1 := item("B-1", "Y", "")

	if res := EvaluateGroup(x, 4); !AllCorrect(res) {
		t.Errorf("full group graded %v", res)
	}

	mixed := []catalog.Item{x[0], x[1], x[2], y1}
	res := EvaluateGroup(mixed, 4)
	if got := Score(res); got != 0 {
		t.Errorf("3-of-4 group scored %d, want 0", got)
	}
	for _, r := range res {
		if r.Mark != MarkIncorrect {
			t.Errorf("%s mark = %s, want incorrect", r.ItemID, r.Mark)
		}
	}

	if AllCorrect(EvaluateGroup(x[:3], 4)) {
		t.Error("short selection graded correct")
	}
	dup := []catalog.Item{x[0], x[0], x[1], x[2]}
	if AllCorrect(EvaluateGroup(dup, 4)) {
		t.Error("duplicate item graded correct")
	}
}

func TestEvaluatePlacementsIndependent(t *testing.T) {
	items := []catalog.Item{
		item("k", "Input", ""), item("m", "Input", ""), item("mon", "Output", ""),
		item("p", "Output", ""), item("ssd", "Storage", ""), item("pool", "Storage", ""),
	}
	placement := map[string]string{
		"k":   "Input",
		"m":   "Input",
		"mon": "Output",
		"p":   "Input",
		"ssd": "Output",
	}
	res := EvaluatePlacements(items, placement)
	if len(res) != 5 {
		t.Fatalf("results = %d, want 5 (unplaced item omitted)", len(res))
	}
	if got := Score(res); got != 3 {
		t.Fatalf("correct = %d, want 3", got)
	}
	for _, r := range res {
		if r.ItemID == "pool" {
			t.Error("unplaced item was graded")
		}
	}
}

func TestEvaluateOrder(t *testing.T) {
	steps := make([]catalog.Item, 4)
	for i := range steps {
		steps[i] = catalog.Item{ID: string(rune('1' + i)), GroupKey: string(rune('1' + i)), Position: i}
	}
	if !AllCorrect(EvaluateOrder(steps, steps)) {
		t.Fatal("canonical order not fully correct")
	}

	for i := 0; i < len(steps); i++ {
		for j := i + 1; j < len(steps); j++ {
			swapped := append([]catalog.Item(nil), steps...)
			swapped[i], swapped[j] = swapped[j], swapped[i]
			if got := Score(EvaluateOrder(swapped, steps)); got > len(steps)-2 {
				t.Errorf("swap(%d,%d) scored %d, want <= %d", i, j, got, len(steps)-2)
			}
		}
	}

	// S3,S1,S4,S2
	presented := []catalog.Item{steps[2], steps[0], steps[3], steps[1]}
	if got := Score(EvaluateOrder(presented, steps)); got != 0 {
		t.Errorf("presented order scored %d, want 0", got)
	}
}

func TestEvaluateOrderDuplicateSteps(t *testing.T) {
	// Compare, Swap, Compare: both Compare steps carry the first one's key.
	canonical := []catalog.Item{
		{ID: "s0", Text: "Compare", GroupKey: "0", Position: 0},
		{ID: "s1", Text: "Swap", GroupKey: "1", Position: 1},
		{ID: "s2", Text: "Compare", GroupKey: "0", Position: 2},
	}
	swapped := []catalog.Item{canonical[2], canonical[1], canonical[0]}
	if res := EvaluateOrder(swapped, canonical); !AllCorrect(res) {
		t.Errorf("swapping identical steps graded %+v, want all correct", res)
	}

	wrong := []catalog.Item{canonical[1], canonical[0], canonical[2]}
	if got := Score(EvaluateOrder(wrong, canonical)); got != 1 {
		t.Errorf("Swap first scored %d, want 1", got)
	}
}

func TestEvaluateQuizNotAnsweredIsDistinct(t *testing.T) {
	qs := []catalog.Question{
		{ID: "q0", Options: []string{"a", "b"}, Correct: 0},
		{ID: "q1", Options: []string{"a", "b"}, Correct: 1},
		{ID: "q2", Options: []string{"a", "b"}, Correct: 0},
		{ID: "q3", Options: []string{"a", "b"}, Correct: 0},
	}
	answers := map[string]int{"q0": 0, "q1": 0, "q3": NotAnswered}
	res := EvaluateQuiz(qs, answers)

	want := []Mark{MarkCorrect, MarkIncorrect, MarkNotAnswered, MarkNotAnswered}
	for i, r := range res {
		if r.Mark != want[i] {
			t.Errorf("%s mark = %s, want %s", r.ItemID, r.Mark, want[i])
		}
	}
	// q2 has correct index 0: a blank must not be read as option 0.
	if res[2].Correct {
		t.Error("unanswered question graded as option 0")
	}
	s := Summarize(res)
	if s.Correct != 1 || s.Incorrect != 1 || s.NotAnswered != 2 {
		t.Errorf("summary = %+v", s)
	}
}

func TestPercentageAndBand(t *testing.T) {
	tests := []struct {
		score, total int
		pct          int
		grade        string
	}{
		{15, 15, 100, "Excellent!"},
		{11, 15, 73, "Good Job!"},
		{8, 15, 53, "Keep Practicing"},
		{2, 15, 13, "More Study Needed"},
		{0, 0, 0, "More Study Needed"},
	}
	for _, tt := range tests {
		pct := Percentage(tt.score, tt.total)
		if pct != tt.pct {
			t.Errorf("Percentage(%d,%d) = %d, want %d", tt.score, tt.total, pct, tt.pct)
		}
		if g, _ := Band(pct); g != tt.grade {
			t.Errorf("Band(%d) = %q, want %q", pct, g, tt.grade)
		}
	}
}

func TestEvaluateCode(t *testing.T) {
	ch := catalog.Challenge{
		ID:        "x2",
		BuggyCode: "if number < 0:  # Bug: should use elif\nif number = 0:",
		Fixes:     [][]string{{"elif"}, {"== 0", "else:"}},
	}
	tests := []struct {
		name string
		code string
		mark Mark
	}{
		{"buggy", ch.BuggyCode, MarkIncorrect},
		{"comparison fix", "if n > 0:\n    pass\nelif n < 0:\n    pass\nelif n == 0:\n    pass", MarkCorrect},
		{"else fix", "if n > 0:\n    pass\nelif n < 0:\n    pass\nelse:\n    pass", MarkCorrect},
		{"half fixed", "if number < 0:\nif number == 0:", MarkIncorrect},
		{"fix only in comment", "if number < 0:  # elif\nif number == 0:", MarkIncorrect},
		{"blank", "  \n", MarkNotAnswered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := EvaluateCode(ch, tt.code)
			if r.Mark != tt.mark || r.ItemID != "x2" {
				t.Errorf("EvaluateCode = %+v, want %s", r, tt.mark)
			}
		})
	}
}
