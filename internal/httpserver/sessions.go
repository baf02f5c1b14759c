package httpserver

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/score"
	"github.com/robalobadob/hangman/apps/go-server/internal/session"
	"github.com/robalobadob/hangman/apps/go-server/internal/storage"
	"github.com/robalobadob/hangman/apps/go-server/internal/store"
)

const recordTimeout = 5 * time.Second

// SessionFactory builds player sessions whose score lives in db and whose
// concluded rounds are written to round history.
func SessionFactory(gen session.Generator, db *storage.DB, opts session.Options) store.Factory {
	return func(player string) *session.Orchestrator {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		ledger := score.Open(ctx, db.Scores(), score.Key(player))
		cancel()

		o := opts
		o.OnRoundEnd = func(e session.RoundEnd) {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			err := db.InsertRound(ctx, storage.RoundRecord{
				PlayerID:     player,
				Topic:        e.Topic,
				Difficulty:   string(e.Difficulty),
				Word:         e.Word,
				Boss:         e.Boss,
				Won:          e.Won,
				TimedOut:     e.TimedOut,
				WrongGuesses: e.WrongGuesses,
				HintsBought:  e.HintsBought,
				Points:       e.Points,
				FinishedAt:   e.At,
			})
			if err != nil {
				log.Warn().Err(err).Str("player", player).Msg("record round")
			}
		}
		log.Debug().Str("player", player).Int("score", ledger.Score()).Msg("session created")
		return session.New(gen, ledger, o)
	}
}
