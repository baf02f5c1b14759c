// internal/words/words.go
//
// Offline puzzle bank for the local content provider.
//
// Responsibilities:
//   - Load puzzle records from an environment-provided file or fall back to
//     the embedded default bank in the assets package.
//   - Validate every record through puzzle.Normalize; invalid lines are skipped.
//   - Supply lookups: All, ForTopic, Stats.
//
// Record format (one per line, # comments allowed):
//   topic|WORD|hint1|hint2|hint3|hint4
//
// Environment variables:
//   PUZZLES_FILE=/path/to/puzzles.txt
//
// Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/assets"
	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
)

// Entry is a bank puzzle tagged with its topic (lowercase).
type Entry struct {
	Topic  string
	Puzzle puzzle.Puzzle
}

var (
	initOnce   sync.Once
	entries    []Entry
	byTopic    map[string][]Entry
	initialErr error
)

// Init loads the bank exactly once.
// Returns an error if no valid puzzle could be loaded.
func Init() error {
	initOnce.Do(func() {
		var lines []string
		var err error
		if path := os.Getenv("PUZZLES_FILE"); path != "" {
			lines, err = readPuzzleFile(path)
		} else {
			lines, err = assets.PuzzleLines()
		}
		if err != nil {
			initialErr = err
			return
		}
		entries, byTopic = parse(lines)
		if len(entries) == 0 {
			initialErr = errors.New("words: puzzle bank is empty")
		}
	})
	return initialErr
}

// readPuzzleFile loads non-comment lines from a file.
func readPuzzleFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s != "" && !strings.HasPrefix(s, "#") {
			out = append(out, s)
		}
	}
	return out, sc.Err()
}

// parse turns records into entries, skipping malformed or duplicate words.
func parse(lines []string) ([]Entry, map[string][]Entry) {
	var all []Entry
	topics := make(map[string][]Entry)
	seen := puzzle.NewWordSet()
	for _, line := range lines {
		fields := strings.Split(line, "|")
		if len(fields) < 3 {
			log.Warn().Str("line", line).Msg("words: skipping short record")
			continue
		}
		p, err := puzzle.Normalize(puzzle.Puzzle{Word: fields[1], Hints: fields[2:]})
		if err != nil {
			log.Warn().Err(err).Str("line", line).Msg("words: skipping invalid record")
			continue
		}
		if !seen.Add(p.Word) {
			continue
		}
		e := Entry{Topic: strings.ToLower(strings.TrimSpace(fields[0])), Puzzle: p}
		all = append(all, e)
		topics[e.Topic] = append(topics[e.Topic], e)
	}
	return all, topics
}

// All returns every loaded entry.
func All() []Entry { return entries }

// ForTopic returns entries whose topic appears in the free-text topic, e.g.
// "Bollywood movies" matches the "bollywood" bank. Nil when nothing matches.
func ForTopic(topic string) []Entry {
	t := strings.ToLower(topic)
	var out []Entry
	for name, list := range byTopic {
		if strings.Contains(t, name) {
			out = append(out, list...)
		}
	}
	return out
}

// Stats returns counts of loaded entries and topics.
func Stats() (puzzles int, topics int) {
	return len(entries), len(byTopic)
}
