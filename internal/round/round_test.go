package round

import (
	"math/rand"
	"testing"
	"time"

	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func elephant() puzzle.Puzzle {
	return puzzle.Puzzle{Word: "ELEPHANT", Hints: []string{"h1", "h2", "h3", "h4"}}
}

func guessAll(r *Round, letters string) (Result, int) {
	var last Result
	ends := 0
	for _, c := range letters {
		if res, ok := r.Guess(c, t0); ok {
			last = res
			ends++
		}
	}
	return last, ends
}

func TestWinInAnyOrder(t *testing.T) {
	letters := []rune("ELPHANT")
	for i := 0; i < 20; i++ {
		rand.Shuffle(len(letters), func(a, b int) { letters[a], letters[b] = letters[b], letters[a] })
		r := New(elephant(), puzzle.Medium, false)
		res, ends := guessAll(r, string(letters))
		if ends != 1 || !res.Won || res.WrongGuesses != 0 {
			t.Fatalf("order %s: res=%+v ends=%d", string(letters), res, ends)
		}
		if r.Status() != StatusWon || r.Masked() != "ELEPHANT" {
			t.Fatalf("unexpected state %s %s", r.Status(), r.Masked())
		}
	}
}

func TestSpacesAreFree(t *testing.T) {
	r := New(puzzle.Puzzle{Word: "LION KING", Hints: []string{"h"}}, puzzle.Easy, false)
	if r.Masked() != "____ ____" {
		t.Fatalf("masked = %q", r.Masked())
	}
	res, ends := guessAll(r, "LIONKG")
	if ends != 1 || !res.Won {
		t.Errorf("expected win, got %+v", res)
	}
}

func TestLossAfterSixWrong(t *testing.T) {
	r := New(elephant(), puzzle.Medium, false)
	res, ends := guessAll(r, "QWZXYB")
	if ends != 1 || res.Won || res.WrongGuesses != MaxWrongGuesses || res.TimedOut {
		t.Fatalf("res=%+v ends=%d", res, ends)
	}
	if r.Status() != StatusLost {
		t.Errorf("status = %s", r.Status())
	}
	// Further guesses are ignored.
	if _, ok := r.Guess('E', t0); ok {
		t.Error("guess after loss concluded again")
	}
	if len(r.Correct()) != 0 {
		t.Error("guess after loss was recorded")
	}
}

func TestRepeatGuessIgnored(t *testing.T) {
	r := New(elephant(), puzzle.Medium, false)
	r.Guess('Q', t0)
	r.Guess('Q', t0)
	if r.WrongGuesses() != 1 {
		t.Errorf("wrong = %d, want 1", r.WrongGuesses())
	}
	if got := r.Guessed(); len(got) != 1 || got[0] != "Q" {
		t.Errorf("guessed = %v", got)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	r := New(elephant(), puzzle.Medium, false)
	_, ends := guessAll(r, "ELPHANT")
	for i := 0; i < 3; i++ {
		if _, ok := r.Evaluate(); ok {
			ends++
		}
	}
	if ends != 1 {
		t.Errorf("conclusion fired %d times", ends)
	}
	if !r.Result().Won {
		t.Error("result lost")
	}
}

func TestBossFirstMistakePenaltyAndEscalation(t *testing.T) {
	tests := []struct {
		diff  puzzle.Difficulty
		mults []float64
	}{
		{puzzle.Easy, []float64{1.5, 1.8, 2.1}},
		{puzzle.Medium, []float64{1.5, 1.8, 2.1}},
		{puzzle.Hard, []float64{2, 2.5, 3}},
	}
	for _, tt := range tests {
		t.Run(string(tt.diff), func(t *testing.T) {
			r := New(elephant(), tt.diff, true)
			if r.TimeLeft() != BossDuration || r.Multiplier() != 1 {
				t.Fatalf("fresh boss round: %d %v", r.TimeLeft(), r.Multiplier())
			}
			for i, wrong := range "QWZ" {
				r.Guess(wrong, t0)
				if d := r.Multiplier() - tt.mults[i]; d > 1e-9 || d < -1e-9 {
					t.Errorf("after %d mistakes multiplier = %v, want %v", i+1, r.Multiplier(), tt.mults[i])
				}
			}
			if r.TimeLeft() != BossDuration-FirstMistakePenalty {
				t.Errorf("penalty applied more than once: timeLeft = %d", r.TimeLeft())
			}
			if !r.FirstMistakeMade() {
				t.Error("first mistake not recorded")
			}
		})
	}
}

func TestCorrectGuessDoesNotEscalate(t *testing.T) {
	r := New(elephant(), puzzle.Hard, true)
	r.Guess('E', t0)
	if r.Multiplier() != 1 || r.TimeLeft() != BossDuration || r.Damaged(t0) {
		t.Errorf("correct guess changed boss state: %v %d", r.Multiplier(), r.TimeLeft())
	}
}

func TestDamagedFlash(t *testing.T) {
	r := New(elephant(), puzzle.Medium, true)
	r.Guess('Q', t0)
	if !r.Damaged(t0.Add(100 * time.Millisecond)) {
		t.Error("expected damaged right after a mistake")
	}
	if r.Damaged(t0.Add(DamageFlash)) {
		t.Error("damaged flag should clear after 300ms")
	}
	plain := New(elephant(), puzzle.Medium, false)
	plain.Guess('Q', t0)
	if plain.Damaged(t0) {
		t.Error("ordinary rounds never flash")
	}
}

func TestBossTimeoutLoses(t *testing.T) {
	r := New(elephant(), puzzle.Medium, true)
	r.Guess('E', t0)
	ends := 0
	var res Result
	for i := 0; i < BossDuration+5; i++ {
		if got, ok := r.Tick(); ok {
			res = got
			ends++
		}
	}
	if ends != 1 || res.Won || !res.TimedOut || res.WrongGuesses != 0 {
		t.Fatalf("res=%+v ends=%d", res, ends)
	}
	if r.TimeLeft() != 0 {
		t.Errorf("timeLeft = %d, must not go below 0", r.TimeLeft())
	}
	if r.Timed() {
		t.Error("timer should stop after the round ends")
	}
}

func TestTickIntervalScales(t *testing.T) {
	r := New(elephant(), puzzle.Medium, true)
	if r.TickInterval(time.Second) != time.Second {
		t.Errorf("interval = %v", r.TickInterval(time.Second))
	}
	r.Guess('Q', t0)
	base := time.Second
	want := time.Duration(float64(base) / 1.5)
	if got := r.TickInterval(time.Second); got != want {
		t.Errorf("interval = %v, want %v", got, want)
	}
}

func TestOrdinaryRoundNeverTicks(t *testing.T) {
	r := New(elephant(), puzzle.Medium, false)
	if _, ok := r.Tick(); ok || r.Timed() {
		t.Error("ordinary rounds have no timer")
	}
}

func TestParseLetter(t *testing.T) {
	for in, want := range map[string]rune{"a": 'A', "Z": 'Z', " q ": 'Q'} {
		if got, ok := ParseLetter(in); !ok || got != want {
			t.Errorf("ParseLetter(%q) = %q, %v", in, got, ok)
		}
	}
	for _, in := range []string{"", "ab", "1", "é", "-"} {
		if _, ok := ParseLetter(in); ok {
			t.Errorf("ParseLetter(%q) should fail", in)
		}
	}
}
