// internal/httpserver/game.go
//
// Game routes. Every handler resolves the player's session from the
// registry and answers with the session snapshot, so the client always
// renders server state. Invalid moves (repeat letters, unaffordable hints,
// next while a round is running) are not errors: the unchanged snapshot
// comes back.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
	"github.com/robalobadob/hangman/apps/go-server/internal/session"
)

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Get("/", s.handleSnapshot)
		r.Post("/start", s.handleStart)
		r.Post("/guess", s.handleGuess)
		r.Post("/hint", s.handleHint)
		r.Post("/next", s.handleNext)
		r.Post("/reset", s.handleReset)
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Orchestrator {
	return s.reg.GetOrCreate(s.playerID(w, r))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session(w, r).Snapshot())
}

type startReq struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

// handleStart blocks until the first puzzle is in (or generation failed).
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	d, err := puzzle.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := s.session(w, r)
	if err := sess.StartGame(r.Context(), req.Topic, d); err != nil {
		if errors.Is(err, session.ErrNoTopic) {
			writeError(w, http.StatusBadRequest, "topic is required")
			return
		}
		log.Warn().Err(err).Str("topic", req.Topic).Msg("start game failed")
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type guessReq struct {
	Letter string `json:"letter"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess := s.session(w, r)
	sess.Guess(req.Letter)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.BuyHint()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleNext returns right away with the boss intro when a boss round is
// due; the boss puzzle arrives over /game/events or a later GET /game.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := sess.PlayAgain(r.Context()); err != nil {
		log.Warn().Err(err).Msg("next round failed")
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Reset()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}
