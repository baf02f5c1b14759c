package round

import "github.com/robalobadob/hangman/apps/go-server/internal/puzzle"

const (
	BaseHintCost  = 25
	HardHintLimit = 2
)

// VisibleHints is one free hint, plus one per mistake, plus purchases,
// capped at the number of hints the puzzle has.
func (r *Round) VisibleHints() int {
	return min(len(r.puzzle.Hints), 1+len(r.incorrect)+r.purchased)
}

// Hints returns the hints currently revealed, most cryptic first.
func (r *Round) Hints() []string {
	return append([]string(nil), r.puzzle.Hints[:r.VisibleHints()]...)
}

// HintsTotal is how many hints the puzzle carries.
func (r *Round) HintsTotal() int { return len(r.puzzle.Hints) }

// Purchased is the number of hints bought this round.
func (r *Round) Purchased() int { return r.purchased }

// NextHintCost doubles with every purchase: 25, 50, 100, ...
func (r *Round) NextHintCost() int { return BaseHintCost << r.purchased }

// HintLimitReached is true on Hard once two hints were bought.
func (r *Round) HintLimitReached() bool {
	return r.difficulty == puzzle.Hard && r.purchased >= HardHintLimit
}

// CanBuyHint reports whether a purchase would succeed with score points.
func (r *Round) CanBuyHint(score int) bool {
	return r.status == StatusPlaying &&
		1+len(r.incorrect)+r.purchased < len(r.puzzle.Hints) &&
		score >= r.NextHintCost() &&
		!r.HintLimitReached()
}

// BuyHint records a purchase and returns its cost. The caller deducts the
// cost from the score. A disallowed purchase returns false and changes
// nothing.
func (r *Round) BuyHint(score int) (int, bool) {
	if !r.CanBuyHint(score) {
		return 0, false
	}
	cost := r.NextHintCost()
	r.purchased++
	return cost, true
}
