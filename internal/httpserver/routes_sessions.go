// internal/httpserver/routes_sessions.go
//
// Session endpoints. Each session is one game.Controller held in the store.
//   - POST /sessions                    → create + Init
//   - GET  /sessions/{id}               → snapshot
//   - POST /sessions/{id}/reset|topic   → Reset / ChangeTopic
//   - POST /sessions/{id}/<action>      → one controller action each
//   - POST /sessions/{id}/code          → code breaker submission
//   - POST /sessions/{id}/certificate   → sign a certificate for a finished session
//
// Every action responds with the post-action snapshot.

package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/daily"
	"github.com/jgalan247/Edexcel-GCSE/internal/game"
	"github.com/jgalan247/Edexcel-GCSE/internal/grading"
	"github.com/jgalan247/Edexcel-GCSE/internal/notify"
	"github.com/jgalan247/Edexcel-GCSE/internal/shuffle"
)

func (s *Server) mountSessions(r chi.Router) {
	timeout := chimw.Timeout(requestTimeout)
	r.Route("/sessions", func(r chi.Router) {
		r.With(timeout).Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/events", s.handleEvents)

			r.Group(func(r chi.Router) {
				r.Use(timeout)
				r.Get("/", s.withSession(func(c *game.Controller, _ *http.Request) (game.Snapshot, error) {
					return c.Snapshot(), nil
				}))
				r.Post("/reset", s.withSession(func(c *game.Controller, _ *http.Request) (game.Snapshot, error) {
					return c.Reset()
				}))
				r.Post("/topic", s.withSession(s.changeTopic))
				r.Post("/select", s.withSession(selectItem))
				r.Post("/clear", s.withSession(func(c *game.Controller, _ *http.Request) (game.Snapshot, error) {
					return c.ClearSelection()
				}))
				r.Post("/group", s.withSession(func(c *game.Controller, _ *http.Request) (game.Snapshot, error) {
					return c.SubmitGroup()
				}))
				r.Post("/place", s.withSession(place))
				r.Post("/check", s.withSession(func(c *game.Controller, _ *http.Request) (game.Snapshot, error) {
					return c.CheckPlacements()
				}))
				r.Post("/reorder", s.withSession(reorder))
				r.Post("/order-check", s.withSession(func(c *game.Controller, _ *http.Request) (game.Snapshot, error) {
					return c.SubmitOrderCheck()
				}))
				r.Post("/answer", s.withSession(answer))
				r.Post("/code", s.withSession(submitCode))
				r.Post("/finish", s.withSession(func(c *game.Controller, _ *http.Request) (game.Snapshot, error) {
					return c.FinishQuiz()
				}))
				r.Post("/certificate", s.handleCertificate)
			})
		})
	})
}

// createReq is the payload for POST /sessions.
type createReq struct {
	Mode         catalog.Mode `json:"mode"`
	Topic        string       `json:"topic"`
	Player       string       `json:"player"`
	TeacherEmail string       `json:"teacherEmail"`
	Limit        int          `json:"limit"` // pairs/groups/steps/questions; 0 = all
	Daily        bool         `json:"daily"` // date-seeded layout
}

// newController builds a controller with the server's tuning and listener.
// A teacher address outside TEACHER_EMAIL_DOMAINS is refused up front.
func (s *Server) newController(req createReq) (*game.Controller, error) {
	if email := strings.TrimSpace(req.TeacherEmail); email != "" {
		if _, err := notify.CheckAddress(email, s.cfg.TeacherEmailDomains); err != nil {
			log.Error().Err(err).Str("mode", string(req.Mode)).Str("topic", req.Topic).Msg("invalid action: teacher e-mail refused")
			return nil, fmt.Errorf("%w: teacherEmail: %v", game.ErrInvalidAction, err)
		}
	}
	opts := game.Options{
		MaxAttempts:  s.cfg.MaxAttempts,
		Limit:        req.Limit,
		RevealDelay:  s.cfg.RevealDelay,
		AdvanceDelay: s.cfg.AdvanceDelay,
		Listener:     s.listener,
		Player:       strings.TrimSpace(req.Player),
		TeacherEmail: strings.TrimSpace(req.TeacherEmail),
	}
	if req.Daily {
		now := s.now()
		opts.Daily = daily.DateKey(now)
		opts.TopicShuffle = func(topic string) shuffle.Factory {
			return shuffle.Seeded(daily.Seed(now, s.cfg.DailySalt, string(req.Mode)+"/"+topic))
		}
	}
	return game.New(s.catalog, req.Mode, opts)
}

// start creates, initialises and stores a session.
func (s *Server) start(r *http.Request, req createReq) (game.Snapshot, error) {
	c, err := s.newController(req)
	if err != nil {
		return game.Snapshot{}, err
	}
	snap, err := c.Init(req.Topic)
	if err != nil {
		return snap, err
	}
	if err := s.store.Save(r.Context(), c); err != nil {
		return snap, err
	}
	log.Info().Str("session", c.ID()).Str("mode", string(req.Mode)).Str("topic", req.Topic).
		Bool("daily", req.Daily).Msg("session created")
	return snap, nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	snap, err := s.start(r, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

type actionFunc func(c *game.Controller, r *http.Request) (game.Snapshot, error)

// errBadJSON is returned by actions whose body failed to decode.
type errBadJSON struct{ error }

// withSession looks the controller up by {id}, runs fn and writes its snapshot.
func (s *Server) withSession(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		snap, err := fn(c, r)
		if err != nil {
			var bad errBadJSON
			if errors.As(err, &bad) {
				writeError(w, http.StatusBadRequest, "bad_json")
				return
			}
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func body[T any](r *http.Request) (T, error) {
	var v T
	if err := decode(r, &v); err != nil {
		return v, errBadJSON{err}
	}
	return v, nil
}

func (s *Server) changeTopic(c *game.Controller, r *http.Request) (game.Snapshot, error) {
	req, err := body[struct {
		Topic string `json:"topic"`
	}](r)
	if err != nil {
		return game.Snapshot{}, err
	}
	return c.ChangeTopic(req.Topic)
}

func selectItem(c *game.Controller, r *http.Request) (game.Snapshot, error) {
	req, err := body[struct {
		ItemID string `json:"itemId"`
	}](r)
	if err != nil {
		return game.Snapshot{}, err
	}
	return c.Select(req.ItemID)
}

// place moves an item into a category; an empty categoryId returns it to the pool.
func place(c *game.Controller, r *http.Request) (game.Snapshot, error) {
	req, err := body[struct {
		ItemID     string `json:"itemId"`
		CategoryID string `json:"categoryId"`
	}](r)
	if err != nil {
		return game.Snapshot{}, err
	}
	return c.PlaceInCategory(req.ItemID, req.CategoryID)
}

func reorder(c *game.Controller, r *http.Request) (game.Snapshot, error) {
	req, err := body[struct {
		ItemID   string `json:"itemId"`
		Position int    `json:"position"`
	}](r)
	if err != nil {
		return game.Snapshot{}, err
	}
	return c.Reorder(req.ItemID, req.Position)
}

// answer grades the current question, or with questionId records a form-style
// choice (a null option clears it).
func answer(c *game.Controller, r *http.Request) (game.Snapshot, error) {
	req, err := body[struct {
		QuestionID string `json:"questionId"`
		Option     *int   `json:"option"`
	}](r)
	if err != nil {
		return game.Snapshot{}, err
	}
	if req.QuestionID != "" {
		opt := grading.NotAnswered
		if req.Option != nil {
			opt = *req.Option
		}
		return c.AnswerQuestionAt(req.QuestionID, opt)
	}
	if req.Option == nil {
		snap := c.Snapshot()
		log.Error().
			Str("controller", c.ID()).
			Str("mode", string(c.Mode())).
			Str("topic", snap.Topic).
			Str("action", "answer").
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("invalid action: neither questionId nor option given")
		return snap, fmt.Errorf("%w: answer: missing option", game.ErrInvalidAction)
	}
	return c.AnswerQuestion(*req.Option)
}

func submitCode(c *game.Controller, r *http.Request) (game.Snapshot, error) {
	req, err := body[struct {
		ChallengeID string `json:"challengeId"`
		Code        string `json:"code"`
	}](r)
	if err != nil {
		return game.Snapshot{}, err
	}
	return c.SubmitCode(req.ChallengeID, req.Code)
}

// certificateRes is returned by POST /sessions/{id}/certificate.
type certificateRes struct {
	Token       string `json:"token"`
	VerifyURL   string `json:"verifyUrl"`
	QRURL       string `json:"qrUrl"`
	Certificate any    `json:"certificate"`
}

func (s *Server) handleCertificate(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	token, claims, err := s.certs.Issue(c.Snapshot())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	url := s.certs.VerifyURL(token)
	writeJSON(w, http.StatusCreated, certificateRes{
		Token:       token,
		VerifyURL:   url,
		QRURL:       url + "/qr.png",
		Certificate: claims,
	})
}
