// internal/round/round.go
//
// Round engine for a single hangman puzzle.
// Responsibilities:
//   - Track guessed letters and partition them into correct/incorrect.
//   - Detect win (every letter of the word guessed) and loss (6 wrong, or
//     the boss timer ran out).
//   - Boss rounds: 60s countdown, 4s penalty on the first mistake, timer
//     speed escalation on every mistake, a short "damaged" flash.
//   - Hints: one free, one more per mistake, the rest bought with points.
//
// State transitions:
//   playing → won | lost, exactly once. After that every mutation is a no-op.
//
// A Round is not safe for concurrent use; the session orchestrator
// serialises access.

package round

import (
	"sort"
	"strings"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
)

const (
	MaxWrongGuesses     = 6
	BossDuration        = 60 // seconds
	FirstMistakePenalty = 4  // seconds
	DamageFlash         = 300 * time.Millisecond
)

// Status is the coarse round state.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Result is emitted once when the round concludes.
type Result struct {
	Won          bool
	WrongGuesses int
	TimedOut     bool
}

// Round holds the transient per-puzzle state.
type Round struct {
	puzzle     puzzle.Puzzle
	difficulty puzzle.Difficulty
	boss       bool

	guessed      mapset.Set[rune]
	correct      []rune
	incorrect    []rune
	purchased    int
	timeLeft     int
	multiplier   float64
	firstMistake bool
	damagedUntil time.Time

	status    Status
	concluded bool
	result    Result
}

// New starts a round in the playing state.
func New(p puzzle.Puzzle, d puzzle.Difficulty, boss bool) *Round {
	r := &Round{
		puzzle:     p,
		difficulty: d,
		boss:       boss,
		guessed:    mapset.New[rune](),
		multiplier: 1,
		status:     StatusPlaying,
	}
	if boss {
		r.timeLeft = BossDuration
	}
	return r
}

// ParseLetter maps a key press to an uppercase letter. Anything other than
// a single ASCII letter is rejected.
func ParseLetter(s string) (rune, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return 0, false
	}
	c := rune(strings.ToUpper(s)[0])
	if c < 'A' || c > 'Z' {
		return 0, false
	}
	return c, true
}

// Guess applies a letter at time now. It returns the conclusion if this
// guess ended the round. Repeat letters and guesses after the round ended
// are ignored.
func (r *Round) Guess(letter rune, now time.Time) (Result, bool) {
	if r.status != StatusPlaying || r.guessed.Has(letter) {
		return Result{}, false
	}
	r.guessed.Put(letter)
	if strings.ContainsRune(r.puzzle.Word, letter) {
		r.correct = append(r.correct, letter)
		return r.Evaluate()
	}

	r.incorrect = append(r.incorrect, letter)
	if r.boss {
		if !r.firstMistake {
			r.firstMistake = true
			r.timeLeft = max(0, r.timeLeft-FirstMistakePenalty)
		}
		r.escalate()
		r.damagedUntil = now.Add(DamageFlash)
	}
	return r.Evaluate()
}

// escalate speeds up the boss timer after a mistake.
func (r *Round) escalate() {
	hard := r.difficulty == puzzle.Hard
	switch {
	case r.multiplier == 1 && hard:
		r.multiplier = 2
	case r.multiplier == 1:
		r.multiplier = 1.5
	case hard:
		r.multiplier += 0.5
	default:
		r.multiplier += 0.3
	}
}

// Tick advances the boss countdown by one second.
func (r *Round) Tick() (Result, bool) {
	if !r.Timed() {
		return Result{}, false
	}
	r.timeLeft--
	return r.Evaluate()
}

// Evaluate checks for a win or loss. The first call that finds one
// concludes the round and returns it with true; every later call returns
// false, so the conclusion fires exactly once.
func (r *Round) Evaluate() (Result, bool) {
	if r.concluded {
		return Result{}, false
	}
	switch {
	case r.isWin():
		r.status = StatusWon
		r.result = Result{Won: true, WrongGuesses: len(r.incorrect)}
	case len(r.incorrect) >= MaxWrongGuesses:
		r.status = StatusLost
		r.result = Result{WrongGuesses: len(r.incorrect)}
	case r.boss && r.timeLeft <= 0:
		r.status = StatusLost
		r.result = Result{WrongGuesses: len(r.incorrect), TimedOut: true}
	default:
		return Result{}, false
	}
	r.concluded = true
	return r.result, true
}

func (r *Round) isWin() bool {
	for _, c := range r.puzzle.Word {
		if c != ' ' && !r.guessed.Has(c) {
			return false
		}
	}
	return true
}

// Timed reports whether the boss countdown should be running.
func (r *Round) Timed() bool {
	return r.boss && r.status == StatusPlaying && r.timeLeft > 0
}

// TickInterval is base scaled down by the current speed multiplier.
func (r *Round) TickInterval(base time.Duration) time.Duration {
	return time.Duration(float64(base) / r.multiplier)
}

// Masked renders the word with unguessed letters as underscores.
func (r *Round) Masked() string {
	var b strings.Builder
	for _, c := range r.puzzle.Word {
		if c == ' ' || r.guessed.Has(c) {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func (r *Round) Status() Status { return r.status }
func (r *Round) HasGuessed(c rune) bool { return r.guessed.Has(c) }
func (r *Round) Concluded() bool { return r.concluded }
func (r *Round) Result() Result { return r.result }
func (r *Round) Puzzle() puzzle.Puzzle { return r.puzzle }
func (r *Round) WrongGuesses() int { return len(r.incorrect) }
func (r *Round) TimeLeft() int { return r.timeLeft }
func (r *Round) Multiplier() float64 { return r.multiplier }
func (r *Round) FirstMistakeMade() bool { return r.firstMistake }
func (r *Round) Damaged(now time.Time) bool { return now.Before(r.damagedUntil) }

// Correct returns correctly guessed letters in guess order.
func (r *Round) Correct() []string { return letters(r.correct) }

// Incorrect returns wrong letters in guess order.
func (r *Round) Incorrect() []string { return letters(r.incorrect) }

// Guessed returns every guessed letter, alphabetically.
func (r *Round) Guessed() []string {
	out := append(letters(r.correct), letters(r.incorrect)...)
	sort.Strings(out)
	return out
}

func letters(rs []rune) []string {
	out := make([]string, len(rs))
	for i, c := range rs {
		out[i] = string(c)
	}
	return out
}
