// internal/score/score.go
//
// Score Ledger.
// Responsibilities:
//   - Point table per difficulty (base points, penalty per wrong guess).
//   - Award on win (boss rounds pay triple), deduct on hint purchase,
//     never below zero.
//   - Persist the score through a Store: read once on Open, written on
//     every change. Storage failures are logged, never surfaced; the
//     in-memory score stays authoritative.

package score

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
)

// BossMultiplier scales boss-round awards.
const BossMultiplier = 3

// KeyPrefix namespaces persisted scores per player.
const KeyPrefix = "hangmanScore:"

// Key is the storage key for a player's score.
func Key(player string) string { return KeyPrefix + player }

// ForDifficulty returns base points and the per-wrong-guess penalty.
func ForDifficulty(d puzzle.Difficulty) (base, penalty int) {
	switch d {
	case puzzle.Easy:
		return 50, 5
	case puzzle.Hard:
		return 150, 15
	default:
		return 100, 10
	}
}

// Points computes a win award.
func Points(base, wrong, penalty int, boss bool) int {
	p := max(0, base-wrong*penalty)
	if boss {
		p *= BossMultiplier
	}
	return p
}

// Store persists a single string value per key.
type Store interface {
	// Load returns the value and whether it existed.
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
}

// Ledger is the running score for one player.
type Ledger struct {
	store Store
	key   string

	mu    sync.Mutex
	score int
}

// Open reads the persisted score once. Missing or unparseable values start
// the ledger at 0.
func Open(ctx context.Context, st Store, key string) *Ledger {
	l := &Ledger{store: st, key: key}
	if st == nil {
		return l
	}
	v, ok, err := st.Load(ctx, key)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("key", key).Msg("score: load failed, starting at 0")
	case !ok:
	default:
		n, perr := strconv.Atoi(strings.TrimSpace(v))
		if perr != nil || n < 0 {
			log.Warn().Str("key", key).Str("value", v).Msg("score: unreadable value, starting at 0")
			break
		}
		l.score = n
	}
	return l
}

// Score returns the current total.
func (l *Ledger) Score() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.score
}

// Award adds the win points for a round and returns the amount added.
func (l *Ledger) Award(ctx context.Context, base, wrong, penalty int, boss bool) int {
	pts := Points(base, wrong, penalty, boss)
	l.mu.Lock()
	l.score += pts
	v := l.score
	l.mu.Unlock()
	l.persist(ctx, v)
	return pts
}

// Deduct subtracts points, clamping the total at zero, and returns the new
// total.
func (l *Ledger) Deduct(ctx context.Context, points int) int {
	l.mu.Lock()
	l.score = max(0, l.score-points)
	v := l.score
	l.mu.Unlock()
	l.persist(ctx, v)
	return v
}

func (l *Ledger) persist(ctx context.Context, v int) {
	if l.store == nil {
		return
	}
	if err := l.store.Save(ctx, l.key, strconv.Itoa(v)); err != nil {
		log.Error().Err(err).Str("key", l.key).Int("score", v).Msg("score: save failed")
	}
}
