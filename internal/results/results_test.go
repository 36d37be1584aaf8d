package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/game"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Type: "sqlite", Path: filepath.Join(t.TempDir(), "nested", "results.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTemp(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("_migrations rows = %d, want 1", n)
	}
}

func TestRecordIgnoresDuplicateSession(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	r := Result{SessionID: "s1", Mode: catalog.ModeQuiz, Topic: "topic1", Player: "Ada",
		Status: game.StatusComplete, Score: 10, Total: 15, Percent: 67, FinishedAt: time.Now().UTC()}

	for i := 0; i < 2; i++ {
		if err := db.Record(ctx, r); err != nil {
			t.Fatalf("Record #%d: %v", i+1, err)
		}
	}
	got, err := db.Recent(ctx, Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Player != "Ada" || got[0].Mode != catalog.ModeQuiz {
		t.Fatalf("rows = %+v", got)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []Result{
		{SessionID: "slow", Player: "slow", Score: 4, ElapsedMs: 9000, Attempts: 2},
		{SessionID: "fast", Player: "fast", Score: 4, ElapsedMs: 3000, Attempts: 5},
		{SessionID: "tidy", Player: "tidy", Score: 4, ElapsedMs: 3000, Attempts: 1},
		{SessionID: "low", Player: "low", Score: 2, ElapsedMs: 1000, Attempts: 1},
		{SessionID: "other", Player: "other", Score: 4, ElapsedMs: 10, Attempts: 1, Topic: "set2"},
		{SessionID: "yday", Player: "yday", Score: 4, ElapsedMs: 10, Attempts: 1, Daily: "2026-02-28"},
	}
	for i, r := range rows {
		r.Mode, r.Status, r.Total = catalog.ModeWall, game.StatusComplete, 4
		if r.Topic == "" {
			r.Topic = "set1"
		}
		if r.Daily == "" {
			r.Daily = "2026-03-01"
		}
		r.FinishedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.Leaderboard(ctx, Query{Mode: catalog.ModeWall, Topic: "set1", Daily: "2026-03-01"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"tidy", "fast", "slow", "low"}
	if len(got) != len(want) {
		t.Fatalf("rows = %d, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.Player != want[i] {
			t.Errorf("rank %d = %s, want %s", i+1, r.Player, want[i])
		}
	}

	played, err := db.PlayedDaily(ctx, "yday", catalog.ModeWall, "2026-03-01")
	if err != nil || played {
		t.Errorf("PlayedDaily(yday, today) = %v, %v", played, err)
	}
	played, err = db.PlayedDaily(ctx, "tidy", catalog.ModeWall, "2026-03-01")
	if err != nil || !played {
		t.Errorf("PlayedDaily(tidy, today) = %v, %v", played, err)
	}
}

func TestRecorderStoresEvents(t *testing.T) {
	db := openTemp(t)
	db.Recorder(time.Second).SessionFinished(game.Event{
		SessionID: "ev1", Mode: catalog.ModeSequence, Topic: "bubbleSort", Status: game.StatusComplete,
		Score: 4, Total: 4, Percent: 100, ElapsedMs: 1234, FinishedAt: time.Now(),
	})
	got, err := db.Recent(context.Background(), Query{Mode: catalog.ModeSequence})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Player != "Anonymous Student" || got[0].ElapsedMs != 1234 {
		t.Fatalf("rows = %+v", got)
	}
}

func TestDialects(t *testing.T) {
	tests := []struct {
		kind   string
		driver string
		query  string
		insert string
	}{
		{"sqlite", "sqlite3", "a = ? AND b = ?", "INSERT OR IGNORE INTO t VALUES (?)"},
		{"postgres", "postgres", "a = $1 AND b = $2", "INSERT INTO t VALUES ($1) ON CONFLICT DO NOTHING"},
		{"mysql", "mysql", "a = ? AND b = ?", "INSERT IGNORE INTO t VALUES (?)"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			d, err := DialectFor(tt.kind)
			if err != nil {
				t.Fatal(err)
			}
			if d.DriverName() != tt.driver {
				t.Errorf("DriverName = %s", d.DriverName())
			}
			if got := d.RewriteQuery("a = ? AND b = ?"); got != tt.query {
				t.Errorf("RewriteQuery = %s", got)
			}
			if got := d.RewriteQuery(d.InsertIgnore("INSERT INTO t VALUES (?)")); got != tt.insert {
				t.Errorf("InsertIgnore = %s", got)
			}
		})
	}
	if _, err := DialectFor("oracle"); err == nil {
		t.Error("unknown dialect accepted")
	}
	if got := (MySQL{}).DSN("", "u:p@tcp(db:3306)/rev"); got != "u:p@tcp(db:3306)/rev?parseTime=true" {
		t.Errorf("mysql DSN = %s", got)
	}
}
