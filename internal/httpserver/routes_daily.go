// internal/httpserver/routes_daily.go
//
// HTTP route for the "Daily Challenge".
//   - GET /daily/{mode}?player=NAME → today's topic for mode and a fresh
//     session on it, laid out from a date-seeded shuffle.
//
// Every student gets the same topic and the same layout on the same UTC day.
// When a results database is configured, a player who already has a result
// for today gets Played=true and no session.

package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/daily"
	"github.com/jgalan247/Edexcel-GCSE/internal/game"
)

// mountDaily registers the /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Get("/daily/{mode}", s.handleDaily)
}

// dailyRes is returned by GET /daily/{mode}.
type dailyRes struct {
	Date    string         `json:"date"`
	Mode    catalog.Mode   `json:"mode"`
	Topic   string         `json:"topic"`
	Title   string         `json:"title"`
	Played  bool           `json:"played"`
	Session *game.Snapshot `json:"session,omitempty"`
}

// todayTopic picks the day's topic for mode from the sorted topic list.
func (s *Server) todayTopic(mode catalog.Mode) (catalog.Topic, error) {
	cat, err := s.catalog.Catalog()
	if err != nil {
		return catalog.Topic{}, err
	}
	topics := cat.Topics(mode)
	if len(topics) == 0 {
		return catalog.Topic{}, catalog.ErrDatasetNotFound
	}
	return topics[daily.Index(s.now(), s.cfg.DailySalt, string(mode), len(topics))], nil
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	mode := catalog.Mode(chi.URLParam(r, "mode"))
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_mode")
		return
	}
	topic, err := s.todayTopic(mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res := dailyRes{Date: daily.DateKey(s.now()), Mode: mode, Topic: topic.ID, Title: topic.Title}
	player := strings.TrimSpace(r.URL.Query().Get("player"))

	// Check if already played (persisted in DB).
	if s.results != nil && player != "" {
		played, err := s.results.PlayedDaily(r.Context(), player, mode, res.Date)
		if err != nil {
			log.Warn().Err(err).Str("player", player).Msg("daily played lookup")
		} else if played {
			res.Played = true
			writeJSON(w, http.StatusOK, res)
			return
		}
	}

	snap, err := s.start(r, createReq{
		Mode:         mode,
		Topic:        topic.ID,
		Player:       player,
		TeacherEmail: r.URL.Query().Get("teacherEmail"),
		Daily:        true,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res.Session = &snap
	writeJSON(w, http.StatusOK, res)
}
