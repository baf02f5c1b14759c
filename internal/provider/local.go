package provider

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"

	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
	"github.com/robalobadob/hangman/apps/go-server/internal/words"
)

// ErrBankExhausted is returned when every bank puzzle is excluded.
var ErrBankExhausted = errors.New("local: no unused puzzles left")

// LocalClient serves puzzles from the embedded bank so the game runs
// without an AI key. Entries matching the topic are preferred.
type LocalClient struct{}

// NewLocalClient loads the bank.
func NewLocalClient() (*LocalClient, error) {
	if err := words.Init(); err != nil {
		return nil, err
	}
	return &LocalClient{}, nil
}

// Generate implements Client.
func (c *LocalClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	excluded := puzzle.NewWordSet(req.Exclude...)
	pick := func(pool []words.Entry) []puzzle.Puzzle {
		var out []puzzle.Puzzle
		for _, i := range rand.Perm(len(pool)) {
			if !excluded.Has(pool[i].Puzzle.Word) {
				out = append(out, pool[i].Puzzle)
			}
		}
		return out
	}

	candidates := pick(words.ForTopic(req.Topic))
	if len(candidates) == 0 {
		candidates = pick(words.All())
	}
	if len(candidates) == 0 {
		return "", ErrBankExhausted
	}

	var v any = candidates[0]
	if req.Count > 0 {
		if len(candidates) > req.Count {
			candidates = candidates[:req.Count]
		}
		v = candidates
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
