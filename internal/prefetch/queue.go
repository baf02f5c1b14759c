// internal/prefetch/queue.go
//
// Prefetch Queue Manager.
// Keeps up to Target unused puzzles ready for the current topic/difficulty so
// ordinary round transitions don't wait on the content provider.
//
// Behaviour:
//   - Refills are triggered by events (Arm, Take, ObserveUsed), never polled.
//   - At most one refill is in flight; a second trigger while one runs is a no-op.
//   - Exclusions sent to the provider are usedWords ∪ queued words.
//   - Results are filtered again against the queue and usedWords on arrival.
//   - Every Arm/Disarm starts a new generation; results from an older
//     generation are discarded.
//   - Failures are logged by the provider and show up here as empty refills.

package prefetch

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
)

// DefaultTarget is the look-ahead size.
const DefaultTarget = 3

// Source generates puzzle batches. It must not fail; an empty result means
// nothing usable was produced.
type Source interface {
	GenerateMany(ctx context.Context, topic string, d puzzle.Difficulty, exclude []string, count int) []puzzle.Puzzle
}

// Manager owns the queue. It is safe for concurrent use.
type Manager struct {
	src    Source
	target int

	mu       sync.Mutex
	armed    bool
	gen      uint64
	topic    string
	diff     puzzle.Difficulty
	queue    []puzzle.Puzzle
	used     *puzzle.WordSet
	inFlight bool
	cancel   context.CancelFunc
	ctx      context.Context

	wg sync.WaitGroup
}

// New returns a disarmed Manager. target <= 0 uses DefaultTarget.
func New(src Source, target int) *Manager {
	if target <= 0 {
		target = DefaultTarget
	}
	return &Manager{src: src, target: target, used: puzzle.NewWordSet()}
}

// Arm clears the queue and starts filling it for topic/difficulty.
func (m *Manager) Arm(topic string, d puzzle.Difficulty, used []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.armed = true
	m.topic, m.diff = topic, d
	m.used = puzzle.NewWordSet(used...)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.kickLocked()
}

// Disarm clears the queue and cancels any refill in flight.
func (m *Manager) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *Manager) resetLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
	m.armed = false
	m.inFlight = false
	m.queue = nil
	m.used = puzzle.NewWordSet()
}

// Take pops the oldest queued puzzle whose word is not in used. Skipped
// stale entries are dropped. The taken word is recorded as used and a
// refill is scheduled.
func (m *Manager) Take(used []string) (puzzle.Puzzle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergeUsedLocked(used)
	for len(m.queue) > 0 {
		p := m.queue[0]
		m.queue = m.queue[1:]
		if m.used.Add(p.Word) {
			m.kickLocked()
			return p, true
		}
	}
	m.kickLocked()
	return puzzle.Puzzle{}, false
}

// ObserveUsed records words used outside the queue (direct fetches) and
// refills if there is a shortfall.
func (m *Manager) ObserveUsed(used []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergeUsedLocked(used)
	kept := m.queue[:0]
	for _, p := range m.queue {
		if !m.used.Has(p.Word) {
			kept = append(kept, p)
		}
	}
	m.queue = kept
	m.kickLocked()
}

func (m *Manager) mergeUsedLocked(used []string) {
	for _, w := range used {
		m.used.Add(w)
	}
}

// Len is the number of queued puzzles.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Words lists the queued words, oldest first.
func (m *Manager) Words() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queue))
	for i, p := range m.queue {
		out[i] = p.Word
	}
	return out
}

// Wait blocks until no refill goroutine is running.
func (m *Manager) Wait() { m.wg.Wait() }

// kickLocked starts a refill if armed, idle and short. Caller holds m.mu.
func (m *Manager) kickLocked() {
	if !m.armed || m.inFlight {
		return
	}
	short := m.target - len(m.queue)
	if short <= 0 {
		return
	}
	exclude := m.used.List()
	for _, p := range m.queue {
		exclude = append(exclude, p.Word)
	}
	m.inFlight = true
	m.wg.Add(1)
	go m.refill(m.ctx, m.gen, m.topic, m.diff, exclude, short)
}

func (m *Manager) refill(ctx context.Context, gen uint64, topic string, d puzzle.Difficulty, exclude []string, count int) {
	defer m.wg.Done()
	got := m.src.GenerateMany(ctx, topic, d, exclude, count)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		log.Debug().Str("topic", topic).Msg("prefetch: discarding stale refill")
		return
	}
	m.inFlight = false

	queued := puzzle.NewWordSet()
	for _, p := range m.queue {
		queued.Add(p.Word)
	}
	added := 0
	for _, p := range got {
		if m.used.Has(p.Word) || !queued.Add(p.Word) || len(m.queue) >= m.target {
			continue
		}
		m.queue = append(m.queue, p)
		added++
	}
	log.Debug().Str("topic", topic).Int("requested", count).Int("added", added).Int("queued", len(m.queue)).Msg("prefetch: refill done")
	if added > 0 {
		m.kickLocked()
	}
}
