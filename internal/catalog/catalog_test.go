package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

const smallDoc = `{
  "memory": {"t1": {"title": "Terms", "pairs": [
    {"term": "CPU", "definition": "Executes instructions"},
    {"term": "RAM", "definition": "Volatile memory"},
    {"term": "ROM", "definition": "Boot instructions"}
  ]}},
  "wall": {"w1": {"title": "Wall", "groups": [
    {"name": "X", "items": ["A-1", "A-2", "A-3", "A-4"]},
    {"name": "Y", "items": ["B-1", "B-2", "B-3", "B-4"]}
  ]}},
  "sort": {"s1": {"title": "Sort", "categories": [
    {"name": "Input", "items": ["Keyboard", "Mouse"]},
    {"name": "Output", "items": ["Monitor"]}
  ]}},
  "sequence": {"q1": {"title": "Steps", "steps": ["S1", "S2", "S3", "S4"]}},
  "logic": {"gates": {"title": "Gates", "rows": [
    {"gate": "AND", "inputs": [1, 1]},
    {"gate": "NOT", "inputs": [1]}
  ]}},
  "quiz": {"topic1": {"title": "Quiz", "questions": [
    {"question": "2+2?", "options": ["3", "4"], "correct": 1, "explanation": "Sum."}
  ]}}
}`

func mustParse(t *testing.T, doc string) *Catalog {
	t.Helper()
	c, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func TestParseNormalisesEveryMode(t *testing.T) {
	c := mustParse(t, smallDoc)

	mem, err := c.Get(ModeMemory, "t1")
	if err != nil {
		t.Fatalf("Get memory: %v", err)
	}
	if len(mem.Items) != 6 {
		t.Fatalf("memory items = %d, want 6", len(mem.Items))
	}
	term, _ := mem.Item("p1-t")
	def, _ := mem.Item("p1-d")
	if term.GroupKey != def.GroupKey || term.Role != RolePrompt || def.Role != RoleAnswer {
		t.Errorf("pair p1 not normalised: %+v %+v", term, def)
	}

	wall, _ := c.Get(ModeWall, "w1")
	if wall.GroupSize != 4 || len(wall.Items) != 8 {
		t.Errorf("wall size=%d items=%d, want 4 and 8", wall.GroupSize, len(wall.Items))
	}
	if got := len(wall.GroupItems("Y")); got != 4 {
		t.Errorf("GroupItems(Y) = %d, want 4", got)
	}

	seq, _ := c.Get(ModeSequence, "q1")
	for i, it := range seq.Items {
		if it.Position != i {
			t.Errorf("step %s position = %d, want %d", it.ID, it.Position, i)
		}
	}

	logic, _ := c.Get(ModeLogic, "gates")
	if logic.Questions[0].Correct != 1 || logic.Questions[1].Correct != 0 {
		t.Errorf("logic answers = %d,%d want 1,0", logic.Questions[0].Correct, logic.Questions[1].Correct)
	}
	if logic.Size() != 2 {
		t.Errorf("logic size = %d, want 2", logic.Size())
	}
}

func TestGetUnknownTopic(t *testing.T) {
	c := mustParse(t, smallDoc)
	if _, err := c.Get(ModeMemory, "nope"); !errors.Is(err, ErrDatasetNotFound) {
		t.Fatalf("err = %v, want ErrDatasetNotFound", err)
	}
	// topic ids are namespaced per mode
	if _, err := c.Get(ModeMemory, "topic1"); !errors.Is(err, ErrDatasetNotFound) {
		t.Fatalf("quiz topic leaked into memory: %v", err)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"uneven wall", `{"wall": {"w": {"groups": [{"name": "a", "items": ["1","2"]}, {"name": "b", "items": ["3"]}]}}}`},
		{"quiz index out of range", `{"quiz": {"q": {"questions": [{"question": "?", "options": ["a"], "correct": 1}]}}}`},
		{"unknown gate", `{"logic": {"l": {"rows": [{"gate": "MAYBE", "inputs": [1, 0]}]}}}`},
		{"wrong gate arity", `{"logic": {"l": {"rows": [{"gate": "NOT", "inputs": [1, 0]}]}}}`},
		{"empty dataset", `{"sequence": {"s": {"title": "empty", "steps": []}}}`},
		{"repeated wall group", `{"wall": {"w": {"groups": [{"name": "a", "items": ["1","2"]}, {"name": "a", "items": ["3","4"]}]}}}`},
		{"codebreaker without fixes", `{"codebreaker": {"c": {"challenges": [{"title": "t", "buggyCode": "x = 1"}]}}}`},
		{"codebreaker already fixed", `{"codebreaker": {"c": {"challenges": [{"title": "t", "buggyCode": "x = a * b", "fixes": [["a * b"]]}]}}}`},
		{"codebreaker empty fragment", `{"codebreaker": {"c": {"challenges": [{"title": "t", "buggyCode": "x = a + b", "fixes": [["a * b", " "]]}]}}}`},
		{"repeated sort category", `{"sort": {"s": {"categories": [{"name": "Input", "items": ["Mouse"]}, {"name": "Input", "items": ["Keyboard"]}]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("err = %v, want ErrInvalidDocument", err)
			}
		})
	}
}

func TestLimit(t *testing.T) {
	c := mustParse(t, smallDoc)
	mem, _ := c.Get(ModeMemory, "t1")

	two := mem.Limit(2)
	if len(two.Items) != 4 || len(two.Groups) != 2 {
		t.Fatalf("Limit(2) items=%d groups=%d, want 4 and 2", len(two.Items), len(two.Groups))
	}
	if _, ok := two.Item("p2-t"); ok {
		t.Error("Limit(2) kept pair p2")
	}
	if len(mem.Items) != 6 {
		t.Error("Limit mutated the catalog dataset")
	}
	if mem.Limit(0) != mem || mem.Limit(10) != mem {
		t.Error("out-of-range limits should return the dataset unchanged")
	}

	seq, _ := c.Get(ModeSequence, "q1")
	if got := len(seq.Limit(3).Items); got != 3 {
		t.Errorf("sequence Limit(3) = %d items", got)
	}
}

func TestCodeBreakerChallenges(t *testing.T) {
	c := mustParse(t, `{"codebreaker": {"py": {"title": "Debug", "challenges": [
		{"title": "Area", "buggyCode": "area = l + w  # want l * w", "hint": "Operator", "expectedOutput": "50", "fixes": [["l * w", "w * l"]]},
		{"title": "Loop", "buggyCode": "range(5)", "fixes": [["range(1, 6)"]]}
	]}}}`)
	d, err := c.Get(ModeCodeBreaker, "py")
	if err != nil {
		t.Fatal(err)
	}
	if d.Size() != 2 || d.Challenges[1].ID != "x1" {
		t.Fatalf("challenges = %+v", d.Challenges)
	}
	area, ok := d.Challenge("x0")
	if !ok || area.Hint != "Operator" {
		t.Fatalf("Challenge(x0) = %+v, %v", area, ok)
	}
	for code, want := range map[string]bool{
		"area = w  *  l":                true,
		"area = l + w  # l * w":         false,
		"area = l*w":                    false,
		"  area = l * w\n  print(area)": true,
	} {
		if got := area.Accepts(code); got != want {
			t.Errorf("Accepts(%q) = %v, want %v", code, got, want)
		}
	}
	if got := len(d.Limit(1).Challenges); got != 1 {
		t.Errorf("Limit(1) kept %d challenges", got)
	}
}

func TestIdenticalStepsShareKey(t *testing.T) {
	c := mustParse(t, `{"sequence": {"b": {"steps": ["Compare", "Swap", "Compare"]}}}`)
	d, _ := c.Get(ModeSequence, "b")
	if d.Items[0].GroupKey != d.Items[2].GroupKey {
		t.Errorf("repeated step keys = %q, %q", d.Items[0].GroupKey, d.Items[2].GroupKey)
	}
	if d.Items[1].GroupKey == d.Items[0].GroupKey {
		t.Error("distinct steps share a key")
	}
	if d.Items[2].Position != 2 {
		t.Errorf("repeated step position = %d, want 2", d.Items[2].Position)
	}
}

func TestTopicsSorted(t *testing.T) {
	c := mustParse(t, `{"sequence": {"b": {"title": "B", "steps": ["x"]}, "a": {"title": "A", "steps": ["y", "z"]}}}`)
	got := c.Topics(ModeSequence)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" || got[0].Size != 2 {
		t.Fatalf("Topics = %+v", got)
	}
}

func TestGateOutput(t *testing.T) {
	tests := []struct {
		gate string
		in   []int
		want int
	}{
		{"AND", []int{0, 0}, 0},
		{"AND", []int{1, 1}, 1},
		{"OR", []int{0, 1}, 1},
		{"OR", []int{0, 0}, 0},
		{"NOT", []int{1}, 0},
		{"NOT", []int{0}, 1},
		{"XOR", []int{1, 1}, 0},
		{"XOR", []int{0, 1}, 1},
		{"NAND", []int{1, 1}, 0},
		{"NOR", []int{0, 0}, 1},
		{"nor", []int{1, 0}, 0},
	}
	for _, tt := range tests {
		got, err := GateOutput(tt.gate, tt.in)
		if err != nil {
			t.Fatalf("GateOutput(%s, %v): %v", tt.gate, tt.in, err)
		}
		if got != tt.want {
			t.Errorf("GateOutput(%s, %v) = %d, want %d", tt.gate, tt.in, got, tt.want)
		}
	}
	if _, err := GateOutput("AND", []int{1, 2}); err == nil {
		t.Error("non-binary input accepted")
	}
}

func TestEmbeddedCatalogLoads(t *testing.T) {
	l := NewLoader(EmbeddedSource{})
	if st, _ := l.State(); st != StateNotLoaded {
		t.Fatalf("initial state = %s", st)
	}
	if _, err := l.Catalog(); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Catalog before load: %v", err)
	}
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, m := range Modes {
		c, _ := l.Catalog()
		if len(c.Topics(m)) == 0 {
			t.Errorf("embedded catalog has no %s topics", m)
		}
	}
	if _, err := l.Get(ModeQuiz, "topic1"); err != nil {
		t.Errorf("Get quiz/topic1: %v", err)
	}
}

func TestFileSourceFailureIsRecoverable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	l := NewLoader(NewSource("", path))

	err := l.Load(context.Background())
	if !errors.Is(err, ErrDatasetLoad) {
		t.Fatalf("Load missing file: %v, want ErrDatasetLoad", err)
	}
	if st, _ := l.State(); st != StateFailed {
		t.Fatalf("state = %s, want failed", st)
	}
	if _, err := l.Catalog(); !errors.Is(err, ErrDatasetLoad) {
		t.Fatalf("Catalog after failure: %v", err)
	}

	if err := os.WriteFile(path, []byte(smallDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("retry Load: %v", err)
	}
	if st, _ := l.State(); st != StateLoaded {
		t.Fatalf("state after retry = %s", st)
	}
}

func TestURLSourceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(smallDoc))
	}))
	defer srv.Close()

	src := &URLSource{URL: srv.URL, Base: time.Millisecond}
	l := NewLoader(src)
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestURLSourceDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := NewLoader(&URLSource{URL: srv.URL, Base: time.Millisecond})
	if err := l.Load(context.Background()); !errors.Is(err, ErrDatasetLoad) {
		t.Fatalf("Load: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
