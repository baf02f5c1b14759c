// internal/puzzle/puzzle.go
//
// Puzzle data shared by the provider adapter, the prefetch queue and the
// round engine.
// Defines:
//   - Difficulty: Easy | Medium | Hard.
//   - Puzzle: an uppercase word/phrase plus ordered hints (most cryptic first).
//   - Normalize: the single validation gate every generated puzzle passes.
//   - Fallback: the fixed puzzle used when content generation fails.

package puzzle

import (
	"errors"
	"fmt"
	"strings"
)

// MaxHints is the number of hints a round can reveal.
const MaxHints = 4

// Difficulty selects word obscurity, scoring and hint limits.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// ParseDifficulty accepts any casing of easy/medium/hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Puzzle is immutable once produced by Normalize.
type Puzzle struct {
	Word  string   `json:"word"`
	Hints []string `json:"hints"`
}

// ErrInvalid is returned for puzzles that must not reach gameplay.
var ErrInvalid = errors.New("puzzle: invalid")

// Normalize upper-cases the word, collapses its whitespace and validates it
// against ^[A-Z ]+$. Blank hints are dropped and at most MaxHints are kept;
// at least one must remain.
func Normalize(p Puzzle) (Puzzle, error) {
	word := strings.Join(strings.Fields(strings.ToUpper(p.Word)), " ")
	if word == "" {
		return Puzzle{}, fmt.Errorf("%w: empty word", ErrInvalid)
	}
	for _, r := range word {
		if r != ' ' && (r < 'A' || r > 'Z') {
			return Puzzle{}, fmt.Errorf("%w: word %q has non-letter %q", ErrInvalid, word, r)
		}
	}
	hints := make([]string, 0, MaxHints)
	for _, h := range p.Hints {
		if h = strings.TrimSpace(h); h != "" {
			hints = append(hints, h)
		}
		if len(hints) == MaxHints {
			break
		}
	}
	if len(hints) == 0 {
		return Puzzle{}, fmt.Errorf("%w: no hints for %q", ErrInvalid, word)
	}
	return Puzzle{Word: word, Hints: hints}, nil
}

// Fallback is served when the content provider fails.
func Fallback() Puzzle {
	return Puzzle{
		Word: "DEVELOPER",
		Hints: []string{
			"I build things, but not with my hands.",
			"My language is not spoken, but it creates worlds.",
			"I argue with inanimate objects.",
			"Someone who turns coffee into code.",
		},
	}
}
