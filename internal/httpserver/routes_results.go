// internal/httpserver/routes_results.go
//
// Stored results and certificates.
//   - GET /leaderboard?mode=&topic=&date=&limit=    → best results
//   - GET /results?mode=&topic=&date=&limit=        → newest results; HTTP Basic
//     auth, password checked against RESULTS_PASSWORD_HASH (bcrypt)
//   - GET /certificates/{token}                     → verify a certificate
//   - GET /certificates/{token}/qr.png              → QR code of the verify link

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/certificate"
	"github.com/jgalan247/Edexcel-GCSE/internal/results"
)

func (s *Server) mountResults(r chi.Router) {
	r.Get("/leaderboard", s.handleLeaderboard)
	r.With(s.requireTeacher).Get("/results", s.handleResults)
	r.Get("/certificates/{token}", s.handleVerify)
	r.Get("/certificates/{token}/qr.png", s.handleQR)
}

func queryFrom(r *http.Request) results.Query {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return results.Query{
		Mode:  catalog.Mode(q.Get("mode")),
		Topic: q.Get("topic"),
		Daily: q.Get("date"),
		Limit: limit,
	}
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "results_disabled")
		return
	}
	rows, err := s.results.Leaderboard(r.Context(), queryFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if rows == nil {
		rows = []results.Result{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// requireTeacher enforces HTTP Basic auth against the configured bcrypt hash.
// The username is ignored. An unset hash disables the dashboard.
func (s *Server) requireTeacher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.ResultsPasswordHash == "" {
			writeError(w, http.StatusForbidden, "dashboard_disabled")
			return
		}
		_, pw, ok := r.BasicAuth()
		if !ok || bcrypt.CompareHashAndPassword([]byte(s.cfg.ResultsPasswordHash), []byte(pw)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="results"`)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "results_disabled")
		return
	}
	rows, err := s.results.Recent(r.Context(), queryFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if rows == nil {
		rows = []results.Result{}
	}
	writeJSON(w, http.StatusOK, rows)
}

type verifyRes struct {
	Valid       bool                `json:"valid"`
	Certificate *certificate.Claims `json:"certificate"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	claims, err := s.certs.Verify(chi.URLParam(r, "token"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyRes{Valid: true, Certificate: claims})
}

// handleQR only renders codes for certificates that verify.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, err := s.certs.Verify(token); err != nil {
		s.fail(w, r, err)
		return
	}
	png, err := certificate.QR(s.certs.VerifyURL(token))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(png)
}
