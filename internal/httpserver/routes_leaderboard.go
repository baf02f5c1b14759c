// internal/httpserver/routes_leaderboard.go
//
// Score and history routes:
//   - GET /score            → the player's persisted score
//   - GET /stats/me         → round history summary for the player
//   - GET /leaderboard      → top players by points (?days=N window, default 7;
//                             ?limit=N, default 20, max 100)
//
// Round history is written by the session OnRoundEnd hook (see sessions.go).

package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	defaultLeaderboardDays = 7
	maxLeaderboardLimit    = 100
)

func (s *Server) mountLeaderboard(r chi.Router) {
	r.Get("/score", s.handleScore)
	r.Get("/stats/me", s.handleStats)
	r.Get("/leaderboard", s.handleLeaderboard)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"score": s.session(w, r).Score()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	st, err := s.db.PlayerStats(r.Context(), player)
	if err != nil {
		log.Error().Err(err).Str("player", player).Msg("player stats")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", defaultLeaderboardDays)
	limit := min(queryInt(r, "limit", 20), maxLeaderboardLimit)
	if days <= 0 || limit <= 0 {
		writeError(w, http.StatusBadRequest, "days and limit must be positive")
		return
	}
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	rows, err := s.db.Leaderboard(r.Context(), since, limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "rows": rows})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
