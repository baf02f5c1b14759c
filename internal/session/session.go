// internal/session/session.go
//
// Session Orchestrator.
// Responsibilities:
//   - Own topic/difficulty, usedWords, boss schedule and the active round.
//   - Sequence Setup → Loading → Playing (→ BossIntro → Loading → Playing).
//   - Pick the next puzzle source: direct fetch for the first round, the
//     prefetch queue for ordinary rounds, direct fetch for boss rounds and
//     when the queue is empty.
//   - Drive the boss timer, the 3s boss intro and the damage flash through
//     a clock.Clock.
//   - Report round outcomes to the score ledger and to an OnRoundEnd hook.
//
// Concurrency:
//   Every mutation happens under o.mu. Provider calls run with the lock
//   released; their continuations check that the epoch (bumped by start,
//   reset and failures) and the round sequence are still current before
//   applying anything. Hooks run after the lock is dropped.

package session

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/clock"
	"github.com/robalobadob/hangman/apps/go-server/internal/prefetch"
	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
	"github.com/robalobadob/hangman/apps/go-server/internal/round"
	"github.com/robalobadob/hangman/apps/go-server/internal/score"
)

// State is the orchestrator state. Won/Lost live on the round while the
// orchestrator stays in Playing.
type State string

const (
	StateSetup     State = "setup"
	StateLoading   State = "loading"
	StatePlaying   State = "playing"
	StateBossIntro State = "boss_intro"
)

const (
	MinBossInterval = 4
	MaxBossInterval = 7

	DefaultBossIntro = 3 * time.Second
	DefaultTick      = time.Second

	msgStartFailed = "Failed to generate a new game. Please try again."
	msgBossFailed  = "Failed to generate boss round. Please try again."
)

var ErrNoTopic = errors.New("session: topic is required")

// Generator is the puzzle source. *provider.Adapter satisfies it.
type Generator interface {
	prefetch.Source
	GenerateOne(ctx context.Context, topic string, d puzzle.Difficulty, boss bool, exclude []string) (puzzle.Puzzle, error)
}

// RoundEnd describes a concluded round.
type RoundEnd struct {
	Topic        string
	Difficulty   puzzle.Difficulty
	Word         string
	Boss         bool
	Won          bool
	TimedOut     bool
	WrongGuesses int
	HintsBought  int
	Points       int
	At           time.Time
}

// Options tunes an Orchestrator. Zero values get defaults.
type Options struct {
	Clock          clock.Clock
	Draw           func() int // boss interval, MinBossInterval..MaxBossInterval
	Tick           time.Duration
	BossIntro      time.Duration
	PrefetchTarget int
	OnRoundEnd     func(RoundEnd)
}

func (o *Options) defaults() {
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.Draw == nil {
		o.Draw = DrawBossInterval
	}
	if o.Tick <= 0 {
		o.Tick = DefaultTick
	}
	if o.BossIntro <= 0 {
		o.BossIntro = DefaultBossIntro
	}
}

// DrawBossInterval picks how many ordinary rounds precede the next boss.
func DrawBossInterval() int {
	return MinBossInterval + rand.Intn(MaxBossInterval-MinBossInterval+1)
}

// Orchestrator is one player's game session. It is safe for concurrent use.
type Orchestrator struct {
	gen    Generator
	ledger *score.Ledger
	queue  *prefetch.Manager
	opts   Options

	mu      sync.Mutex
	pending []func()
	closed  bool

	epoch     uint64
	epochCtx  context.Context
	cancelEp  context.CancelFunc
	seq       uint64
	state     State
	errMsg    string
	topic     string
	diff      puzzle.Difficulty
	used      *puzzle.WordSet
	played    int
	nextBoss  int
	boss      bool
	round     *round.Round
	roundPts  int
	tickT     clock.Timer
	introT    clock.Timer
	flashT    clock.Timer
	subs      map[int]chan Snapshot
	nextSubID int
}

// New returns an orchestrator in Setup.
func New(gen Generator, ledger *score.Ledger, opts Options) *Orchestrator {
	opts.defaults()
	o := &Orchestrator{
		gen:    gen,
		ledger: ledger,
		queue:  prefetch.New(gen, opts.PrefetchTarget),
		opts:   opts,
		state:  StateSetup,
		used:   puzzle.NewWordSet(),
		subs:   make(map[int]chan Snapshot),
	}
	o.epochCtx, o.cancelEp = context.WithCancel(context.Background())
	return o
}

// unlock releases o.mu and runs hooks queued while it was held.
func (o *Orchestrator) unlock() {
	hooks := o.pending
	o.pending = nil
	o.mu.Unlock()
	for _, f := range hooks {
		f()
	}
}

// StartGame resets the session for topic/difficulty and loads the first
// round directly from the provider.
func (o *Orchestrator) StartGame(ctx context.Context, topic string, d puzzle.Difficulty) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrNoTopic
	}

	o.mu.Lock()
	if o.closed {
		o.unlock()
		return nil
	}
	o.resetLocked()
	o.topic, o.diff = topic, d
	o.nextBoss = o.opts.Draw()
	o.state = StateLoading
	e := o.epoch
	o.publishLocked()
	o.unlock()

	log.Info().Str("topic", topic).Str("difficulty", string(d)).Msg("session: starting game")
	p, err := o.gen.GenerateOne(ctx, topic, d, false, nil)

	o.mu.Lock()
	defer o.unlock()
	if e != o.epoch {
		return nil
	}
	if err != nil {
		o.failLocked(msgStartFailed, err)
		return err
	}
	o.startRoundLocked(p, false)
	o.queue.Arm(topic, d, o.used.List())
	return nil
}

// PlayAgain moves on from a concluded round. It is a no-op while a round is
// still being played or nothing is loaded.
func (o *Orchestrator) PlayAgain(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StatePlaying || o.round == nil || !o.round.Concluded() {
		o.unlock()
		return nil
	}
	if !o.boss {
		o.played++
	}

	if o.played >= o.nextBoss {
		o.stopTimersLocked()
		o.state = StateBossIntro
		o.round = nil
		o.boss = true
		o.played = 0
		o.nextBoss = o.opts.Draw()
		o.seq++
		e := o.epoch
		o.introT = o.opts.Clock.AfterFunc(o.opts.BossIntro, func() { o.loadBoss(e) })
		log.Info().Str("topic", o.topic).Int("next_boss_at", o.nextBoss).Msg("session: boss round incoming")
		o.publishLocked()
		o.unlock()
		return nil
	}

	o.boss = false
	if p, ok := o.queue.Take(o.used.List()); ok {
		o.startRoundLocked(p, false)
		o.unlock()
		return nil
	}

	o.stopTimersLocked()
	o.state = StateLoading
	o.round = nil
	o.seq++
	e, topic, d := o.epoch, o.topic, o.diff
	exclude := o.excludeLocked()
	o.publishLocked()
	o.unlock()

	log.Debug().Str("topic", topic).Msg("session: prefetch queue empty, fetching directly")
	p, err := o.gen.GenerateOne(ctx, topic, d, false, exclude)

	o.mu.Lock()
	defer o.unlock()
	if e != o.epoch {
		return nil
	}
	if err != nil {
		o.failLocked(msgStartFailed, err)
		return err
	}
	o.startRoundLocked(p, false)
	o.queue.ObserveUsed(o.used.List())
	return nil
}

// loadBoss runs when the boss intro ends.
func (o *Orchestrator) loadBoss(e uint64) {
	o.mu.Lock()
	if e != o.epoch || o.state != StateBossIntro {
		o.unlock()
		return
	}
	o.state = StateLoading
	ctx, topic, d := o.epochCtx, o.topic, o.diff
	exclude := o.excludeLocked()
	o.publishLocked()
	o.unlock()

	p, err := o.gen.GenerateOne(ctx, topic, d, true, exclude)

	o.mu.Lock()
	defer o.unlock()
	if e != o.epoch {
		return
	}
	if err != nil {
		o.failLocked(msgBossFailed, err)
		return
	}
	o.startRoundLocked(p, true)
	o.queue.ObserveUsed(o.used.List())
}

// Reset returns to Setup and forgets the topic. The score is kept.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.unlock()
	o.resetLocked()
	o.publishLocked()
}

// Guess applies a key press. It reports whether the letter was accepted;
// invalid keys, repeats and guesses outside a live round are ignored.
func (o *Orchestrator) Guess(letter string) bool {
	c, ok := round.ParseLetter(letter)
	if !ok {
		return false
	}
	o.mu.Lock()
	defer o.unlock()
	r := o.round
	if o.state != StatePlaying || r == nil || r.Concluded() || r.HasGuessed(c) {
		return false
	}

	mult := r.Multiplier()
	res, ended := r.Guess(c, o.opts.Clock.Now())
	switch {
	case ended:
		o.concludeLocked(res)
	case r.Multiplier() != mult:
		o.scheduleTickLocked()
	}
	if r.Damaged(o.opts.Clock.Now()) {
		o.scheduleFlashLocked()
	}
	o.publishLocked()
	return true
}

// BuyHint buys the next hint with score points if the round allows it.
func (o *Orchestrator) BuyHint() bool {
	o.mu.Lock()
	defer o.unlock()
	if o.state != StatePlaying || o.round == nil {
		return false
	}
	cost, ok := o.round.BuyHint(o.ledger.Score())
	if !ok {
		return false
	}
	o.ledger.Deduct(o.epochCtx, cost)
	o.publishLocked()
	return true
}

// Close stops timers and refills and closes every subscription. The
// orchestrator ignores calls afterwards.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.unlock()
	if o.closed {
		return
	}
	o.resetLocked()
	o.cancelEp()
	o.closed = true
	for id, ch := range o.subs {
		close(ch)
		delete(o.subs, id)
	}
}

// resetLocked clears all per-topic state and invalidates anything in flight.
func (o *Orchestrator) resetLocked() {
	o.stopTimersLocked()
	o.queue.Disarm()
	o.cancelEp()
	o.epochCtx, o.cancelEp = context.WithCancel(context.Background())
	o.epoch++
	o.seq++
	o.state = StateSetup
	o.errMsg = ""
	o.topic, o.diff = "", ""
	o.used = puzzle.NewWordSet()
	o.played, o.nextBoss = 0, 0
	o.boss = false
	o.round = nil
	o.roundPts = 0
}

func (o *Orchestrator) failLocked(msg string, err error) {
	log.Error().Err(err).Str("topic", o.topic).Str("difficulty", string(o.diff)).Msg("session: puzzle generation failed")
	o.resetLocked()
	o.errMsg = msg
	o.publishLocked()
}

// excludeLocked is usedWords ∪ queued words.
func (o *Orchestrator) excludeLocked() []string {
	ex := puzzle.NewWordSet(o.used.List()...)
	for _, w := range o.queue.Words() {
		ex.Add(w)
	}
	return ex.List()
}

func (o *Orchestrator) startRoundLocked(p puzzle.Puzzle, boss bool) {
	o.stopTimersLocked()
	o.used.Add(p.Word)
	o.boss = boss
	o.round = round.New(p, o.diff, boss)
	o.roundPts = 0
	o.seq++
	o.state = StatePlaying
	o.errMsg = ""
	if boss {
		o.scheduleTickLocked()
	}
	log.Debug().Str("topic", o.topic).Bool("boss", boss).Int("used_words", o.used.Len()).Msg("session: round started")
	o.publishLocked()
}

func (o *Orchestrator) concludeLocked(res round.Result) {
	o.stopTimersLocked()
	r := o.round
	if res.Won {
		base, pen := score.ForDifficulty(o.diff)
		o.roundPts = o.ledger.Award(o.epochCtx, base, res.WrongGuesses, pen, o.boss)
	}
	end := RoundEnd{
		Topic:        o.topic,
		Difficulty:   o.diff,
		Word:         r.Puzzle().Word,
		Boss:         o.boss,
		Won:          res.Won,
		TimedOut:     res.TimedOut,
		WrongGuesses: res.WrongGuesses,
		HintsBought:  r.Purchased(),
		Points:       o.roundPts,
		At:           o.opts.Clock.Now(),
	}
	log.Info().Str("topic", end.Topic).Bool("won", end.Won).Bool("boss", end.Boss).Int("points", end.Points).Msg("session: round over")
	if hook := o.opts.OnRoundEnd; hook != nil {
		o.pending = append(o.pending, func() { hook(end) })
	}
}

// scheduleTickLocked (re)starts the boss countdown at the current speed.
func (o *Orchestrator) scheduleTickLocked() {
	if o.tickT != nil {
		o.tickT.Stop()
		o.tickT = nil
	}
	if o.round == nil || !o.round.Timed() {
		return
	}
	e, s := o.epoch, o.seq
	o.tickT = o.opts.Clock.AfterFunc(o.round.TickInterval(o.opts.Tick), func() { o.onTick(e, s) })
}

func (o *Orchestrator) onTick(e, s uint64) {
	o.mu.Lock()
	defer o.unlock()
	if e != o.epoch || s != o.seq || o.round == nil {
		return
	}
	if res, ended := o.round.Tick(); ended {
		o.concludeLocked(res)
	} else {
		o.scheduleTickLocked()
	}
	o.publishLocked()
}

// scheduleFlashLocked publishes once more when the damage flag clears.
func (o *Orchestrator) scheduleFlashLocked() {
	if o.flashT != nil {
		o.flashT.Stop()
	}
	e, s := o.epoch, o.seq
	o.flashT = o.opts.Clock.AfterFunc(round.DamageFlash, func() {
		o.mu.Lock()
		defer o.unlock()
		if e == o.epoch && s == o.seq {
			o.publishLocked()
		}
	})
}

func (o *Orchestrator) stopTimersLocked() {
	for _, t := range []*clock.Timer{&o.tickT, &o.introT, &o.flashT} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
}
