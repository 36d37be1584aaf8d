package results

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/game"
)

// Result is one stored session outcome.
type Result struct {
	SessionID  string       `json:"sessionId"`
	Mode       catalog.Mode `json:"mode"`
	Topic      string       `json:"topic"`
	Title      string       `json:"title"`
	Player     string       `json:"player"`
	Status     game.Status  `json:"status"`
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Percent    int          `json:"percent"`
	ElapsedMs  int64        `json:"elapsedMs"`
	Attempts   int          `json:"attempts"`
	Daily      string       `json:"daily,omitempty"`
	FinishedAt time.Time    `json:"finishedAt"`
}

// FromEvent converts a completion event to a storable row.
func FromEvent(e game.Event) Result {
	player := strings.TrimSpace(e.Player)
	if player == "" {
		player = "Anonymous Student"
	}
	return Result{
		SessionID:  e.SessionID,
		Mode:       e.Mode,
		Topic:      e.Topic,
		Title:      e.Title,
		Player:     player,
		Status:     e.Status,
		Score:      e.Score,
		Total:      e.Total,
		Percent:    e.Percent,
		ElapsedMs:  e.ElapsedMs,
		Attempts:   e.Attempts,
		Daily:      e.Daily,
		FinishedAt: e.FinishedAt.UTC(),
	}
}

const columns = `session_id, mode, topic, title, player, status, score, total, percent, elapsed_ms, attempts, daily, finished_at`

// Record inserts r. A second insert for the same session id is ignored.
func (db *DB) Record(ctx context.Context, r Result) error {
	q := db.Dialect.InsertIgnore(`INSERT INTO results (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, db.Dialect.RewriteQuery(q),
		r.SessionID, string(r.Mode), r.Topic, r.Title, r.Player, string(r.Status),
		r.Score, r.Total, r.Percent, r.ElapsedMs, r.Attempts, r.Daily, r.FinishedAt,
	)
	return err
}

// Query filters Leaderboard and Recent. Empty fields match everything.
type Query struct {
	Mode  catalog.Mode
	Topic string
	Daily string
	Limit int
}

func (q Query) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Mode != "" {
		conds = append(conds, "mode = ?")
		args = append(args, string(q.Mode))
	}
	if q.Topic != "" {
		conds = append(conds, "topic = ?")
		args = append(args, q.Topic)
	}
	if q.Daily != "" {
		conds = append(conds, "daily = ?")
		args = append(args, q.Daily)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (q Query) limit() int {
	if q.Limit <= 0 || q.Limit > 200 {
		return 20
	}
	return q.Limit
}

// Leaderboard returns the best results: score desc, then elapsed asc, then
// attempts asc, then earliest finish.
func (db *DB) Leaderboard(ctx context.Context, q Query) ([]Result, error) {
	where, args := q.where()
	return db.list(ctx, where+` ORDER BY score DESC, elapsed_ms ASC, attempts ASC, finished_at ASC LIMIT ?`, append(args, q.limit()))
}

// Recent returns the newest results first, for the teacher dashboard.
func (db *DB) Recent(ctx context.Context, q Query) ([]Result, error) {
	where, args := q.where()
	return db.list(ctx, where+` ORDER BY finished_at DESC, id DESC LIMIT ?`, append(args, q.limit()))
}

// PlayedDaily reports whether player already has a result for mode on date.
func (db *DB) PlayedDaily(ctx context.Context, player string, mode catalog.Mode, date string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		db.Dialect.RewriteQuery(`SELECT COUNT(1) FROM results WHERE player = ? AND mode = ? AND daily = ?`),
		player, string(mode), date,
	).Scan(&n)
	return n > 0, err
}

func (db *DB) list(ctx context.Context, tail string, args []any) ([]Result, error) {
	rows, err := db.QueryContext(ctx, db.Dialect.RewriteQuery(`SELECT `+columns+` FROM results`+tail), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			r            Result
			mode, status string
		)
		if err := rows.Scan(&r.SessionID, &mode, &r.Topic, &r.Title, &r.Player, &status,
			&r.Score, &r.Total, &r.Percent, &r.ElapsedMs, &r.Attempts, &r.Daily, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.Mode, r.Status = catalog.Mode(mode), game.Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Recorder returns a game.Listener that stores every completion event.
// Failures are logged; they never reach the player.
func (db *DB) Recorder(timeout time.Duration) game.Listener {
	return game.ListenerFunc(func(e game.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := db.Record(ctx, FromEvent(e)); err != nil {
			log.Error().Err(err).Str("session", e.SessionID).Msg("record result failed")
		}
	})
}
