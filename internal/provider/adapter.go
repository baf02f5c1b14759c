// internal/provider/adapter.go
//
// Puzzle Provider Adapter.
// Responsibilities:
//   - Build topic-aware prompts (see prompts.go) and call a Client.
//   - Decode the JSON text the client returns and validate every puzzle
//     through puzzle.Normalize.
//   - Never let a content-generation failure reach gameplay: single requests
//     fall back to puzzle.Fallback, batch requests shrink to what survived.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
)

// Temperature is sent with every generation request.
const Temperature = 0.9

// Request describes one generation call. Prompt is what text models see;
// the structured fields let non-LLM clients serve the same request.
type Request struct {
	Prompt      string
	Topic       string
	Difficulty  puzzle.Difficulty
	Boss        bool
	Exclude     []string
	Count       int // 0 asks for a single object, >0 for an array of Count
	Temperature float64
}

// Client is an external content generator returning raw JSON text.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Adapter wraps a Client with prompts, validation and fallback.
type Adapter struct {
	client  Client
	timeout time.Duration
}

// NewAdapter returns an Adapter. A zero timeout leaves deadlines to ctx.
func NewAdapter(c Client, timeout time.Duration) *Adapter {
	return &Adapter{client: c, timeout: timeout}
}

// GenerateOne returns a validated puzzle not in exclude, or the fallback
// puzzle when the provider fails in any way. An error is returned only if ctx is done or the
// fallback itself does not validate.
func (a *Adapter) GenerateOne(ctx context.Context, topic string, d puzzle.Difficulty, boss bool, exclude []string) (puzzle.Puzzle, error) {
	req := Request{
		Prompt:      SinglePrompt(topic, d, boss, exclude),
		Topic:       topic,
		Difficulty:  d,
		Boss:        boss,
		Exclude:     exclude,
		Temperature: Temperature,
	}
	text, err := a.call(ctx, req)
	if err == nil {
		var raw puzzle.Puzzle
		if err = decode(text, &raw); err == nil {
			var p puzzle.Puzzle
			if p, err = puzzle.Normalize(raw); err == nil {
				if !slices.Contains(exclude, p.Word) {
					return p, nil
				}
				err = fmt.Errorf("%w: %q was already used", puzzle.ErrInvalid, p.Word)
			}
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return puzzle.Puzzle{}, ctxErr
	}
	log.Warn().Err(err).Str("topic", topic).Bool("boss", boss).Msg("provider: using fallback puzzle")
	return puzzle.Normalize(puzzle.Fallback())
}

// GenerateMany asks for count puzzles and returns the valid, distinct ones
// not in exclude. It never fails: on total failure it returns nil.
func (a *Adapter) GenerateMany(ctx context.Context, topic string, d puzzle.Difficulty, exclude []string, count int) []puzzle.Puzzle {
	if count <= 0 {
		return nil
	}
	req := Request{
		Prompt:      BatchPrompt(topic, d, exclude, count),
		Topic:       topic,
		Difficulty:  d,
		Exclude:     exclude,
		Count:       count,
		Temperature: Temperature,
	}
	text, err := a.call(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Int("count", count).Msg("provider: batch generation failed")
		return nil
	}
	var raw []puzzle.Puzzle
	if err := decode(text, &raw); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("provider: batch response is not a puzzle array")
		return nil
	}

	seen := puzzle.NewWordSet(exclude...)
	out := make([]puzzle.Puzzle, 0, len(raw))
	for _, r := range raw {
		p, err := puzzle.Normalize(r)
		if err != nil {
			log.Warn().Err(err).Msg("provider: dropping invalid puzzle from batch")
			continue
		}
		if !seen.Add(p.Word) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		log.Warn().Str("topic", topic).Int("received", len(raw)).Msg("provider: batch had no usable puzzles")
		return nil
	}
	return out
}

func (a *Adapter) call(ctx context.Context, req Request) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.client.Generate(ctx, req)
}

// decode strips an optional ```json fence and unmarshals strictly.
func decode(text string, v any) error {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if s == "" {
		return fmt.Errorf("empty response")
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
