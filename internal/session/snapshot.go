package session

import (
	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
	"github.com/robalobadob/hangman/apps/go-server/internal/round"
)

// subBuffer is how many snapshots a subscriber may lag behind before
// snapshots are dropped for it.
const subBuffer = 16

// Snapshot is the client-facing view of a session.
type Snapshot struct {
	State           State             `json:"state"`
	Error           string            `json:"error,omitempty"`
	Topic           string            `json:"topic,omitempty"`
	Difficulty      puzzle.Difficulty `json:"difficulty,omitempty"`
	Score           int               `json:"score"`
	Boss            bool              `json:"boss"`
	RoundsPlayed    int               `json:"roundsPlayed"`
	NextBossRoundAt int               `json:"nextBossRoundAt"`
	Round           *RoundView        `json:"round,omitempty"`
}

// RoundView is the visible part of the active round. Word is only set once
// the round is over.
type RoundView struct {
	Status           round.Status `json:"status"`
	Masked           string       `json:"masked"`
	Guessed          []string     `json:"guessed"`
	Correct          []string     `json:"correct"`
	Incorrect        []string     `json:"incorrect"`
	WrongGuesses     int          `json:"wrongGuesses"`
	MaxWrong         int          `json:"maxWrong"`
	Hints            []string     `json:"hints"`
	HintTotal        int          `json:"hintTotal"`
	NextHintCost     int          `json:"nextHintCost"`
	CanBuyHint       bool         `json:"canBuyHint"`
	HardLimitReached bool         `json:"hardLimitReached"`
	TimeLeft         int          `json:"timeLeft"`
	Multiplier       float64      `json:"multiplier"`
	Damaged          bool         `json:"damaged"`
	TimedOut         bool         `json:"timedOut"`
	RoundScore       int          `json:"roundScore"`
	Word             string       `json:"word,omitempty"`
}

// Snapshot returns the current view.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.unlock()
	return o.snapshotLocked()
}

// Score is the player's running total.
func (o *Orchestrator) Score() int { return o.ledger.Score() }

// Subscribe returns a channel receiving a snapshot after every change,
// starting with the current one, and a func that ends the subscription.
// Slow readers miss snapshots rather than block the game.
func (o *Orchestrator) Subscribe() (<-chan Snapshot, func()) {
	o.mu.Lock()
	defer o.unlock()
	ch := make(chan Snapshot, subBuffer)
	if o.closed {
		close(ch)
		return ch, func() {}
	}
	id := o.nextSubID
	o.nextSubID++
	o.subs[id] = ch
	ch <- o.snapshotLocked()
	return ch, func() {
		o.mu.Lock()
		defer o.unlock()
		if c, ok := o.subs[id]; ok {
			close(c)
			delete(o.subs, id)
		}
	}
}

func (o *Orchestrator) publishLocked() {
	if len(o.subs) == 0 {
		return
	}
	snap := o.snapshotLocked()
	for _, ch := range o.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	s := Snapshot{
		State:           o.state,
		Error:           o.errMsg,
		Topic:           o.topic,
		Difficulty:      o.diff,
		Score:           o.ledger.Score(),
		Boss:            o.boss,
		RoundsPlayed:    o.played,
		NextBossRoundAt: o.nextBoss,
	}
	r := o.round
	if r == nil || o.state != StatePlaying {
		return s
	}
	v := &RoundView{
		Status:           r.Status(),
		Masked:           r.Masked(),
		Guessed:          r.Guessed(),
		Correct:          r.Correct(),
		Incorrect:        r.Incorrect(),
		WrongGuesses:     r.WrongGuesses(),
		MaxWrong:         round.MaxWrongGuesses,
		Hints:            r.Hints(),
		HintTotal:        r.HintsTotal(),
		NextHintCost:     r.NextHintCost(),
		CanBuyHint:       r.CanBuyHint(s.Score),
		HardLimitReached: r.HintLimitReached(),
		TimeLeft:         r.TimeLeft(),
		Multiplier:       r.Multiplier(),
		Damaged:          r.Damaged(o.opts.Clock.Now()),
		TimedOut:         r.Result().TimedOut,
		RoundScore:       o.roundPts,
	}
	if r.Concluded() {
		v.Word = r.Puzzle().Word
	}
	s.Round = v
	return s
}
