package score

import (
	"context"
	"errors"
	"testing"

	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
)

func TestPoints(t *testing.T) {
	tests := []struct {
		name  string
		diff  puzzle.Difficulty
		wrong int
		boss  bool
		want  int
	}{
		{"easy clean", puzzle.Easy, 0, false, 50},
		{"medium two wrong", puzzle.Medium, 2, false, 80},
		{"hard boss clean", puzzle.Hard, 0, true, 450},
		{"medium boss three wrong", puzzle.Medium, 3, true, 210},
		{"easy five wrong", puzzle.Easy, 5, false, 25},
		{"never negative", puzzle.Easy, 20, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, pen := ForDifficulty(tt.diff)
			if got := Points(base, tt.wrong, pen, tt.boss); got != tt.want {
				t.Errorf("Points = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLedgerAwardAndDeduct(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	l := Open(ctx, st, Key("p1"))
	if l.Score() != 0 {
		t.Fatalf("fresh ledger = %d", l.Score())
	}

	if got := l.Award(ctx, 100, 2, 10, false); got != 80 {
		t.Errorf("award = %d, want 80", got)
	}
	if v, _, _ := st.Load(ctx, Key("p1")); v != "80" {
		t.Errorf("persisted %q, want 80", v)
	}

	if got := l.Deduct(ctx, 25); got != 55 {
		t.Errorf("after deduct = %d, want 55", got)
	}
	if got := l.Deduct(ctx, 1000); got != 0 {
		t.Errorf("deduct must clamp at 0, got %d", got)
	}
	if v, _, _ := st.Load(ctx, Key("p1")); v != "0" {
		t.Errorf("persisted %q, want 0", v)
	}
}

func TestLedgerSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	Open(ctx, st, Key("p1")).Award(ctx, 150, 0, 15, true)

	again := Open(ctx, st, Key("p1"))
	if again.Score() != 450 {
		t.Errorf("reopened score = %d, want 450", again.Score())
	}
	if other := Open(ctx, st, Key("p2")); other.Score() != 0 {
		t.Errorf("scores leaked across players: %d", other.Score())
	}
}

func TestLedgerBadStoredValue(t *testing.T) {
	ctx := context.Background()
	for _, v := range []string{"abc", "-5", ""} {
		st := NewMemoryStore()
		_ = st.Save(ctx, "k", v)
		if got := Open(ctx, st, "k").Score(); got != 0 {
			t.Errorf("value %q loaded as %d", v, got)
		}
	}
}

type brokenStore struct{ saves int }

func (b *brokenStore) Load(context.Context, string) (string, bool, error) {
	return "", false, errors.New("db down")
}

func (b *brokenStore) Save(context.Context, string, string) error {
	b.saves++
	return errors.New("db down")
}

func TestLedgerStoreFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	st := &brokenStore{}
	l := Open(ctx, st, "k")
	l.Award(ctx, 50, 0, 5, false)
	if l.Score() != 50 {
		t.Errorf("score = %d, want 50", l.Score())
	}
	if st.saves != 1 {
		t.Errorf("saves = %d, want 1", st.saves)
	}
}

func TestLedgerWithoutStore(t *testing.T) {
	ctx := context.Background()
	l := Open(ctx, nil, "k")
	l.Award(ctx, 50, 0, 5, false)
	if l.Deduct(ctx, 20) != 30 {
		t.Error("nil store ledger should still count")
	}
}
