package words

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSkipsInvalidRecords(t *testing.T) {
	all, topics := parse([]string{
		"animals|elephant|big|grey|trunk|ivory",
		"animals|R2D2|droid",
		"space|nebula",
		"space|Black  Hole|dark|heavy",
		"animals|ELEPHANT|duplicate",
	})
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(all), all)
	}
	if all[0].Puzzle.Word != "ELEPHANT" || all[1].Puzzle.Word != "BLACK HOLE" {
		t.Errorf("unexpected words %q %q", all[0].Puzzle.Word, all[1].Puzzle.Word)
	}
	if len(topics["animals"]) != 1 || len(topics["space"]) != 1 {
		t.Errorf("unexpected topic index %v", topics)
	}
}

func TestInitEmbeddedBank(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	n, topics := Stats()
	if n == 0 || topics == 0 {
		t.Fatalf("empty bank: %d puzzles, %d topics", n, topics)
	}
	if got := ForTopic("Wild Animals"); len(got) == 0 {
		t.Error("expected animals entries for 'Wild Animals'")
	}
	if got := ForTopic("Bollywood Movies"); len(got) == 0 {
		t.Error("expected bollywood entries")
	}
	if got := ForTopic("quantum chromodynamics"); got != nil {
		t.Errorf("expected no entries, got %d", len(got))
	}
}

func TestReadPuzzleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.txt")
	if err := os.WriteFile(path, []byte("# comment\n\nfood|sushi|rice\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	lines, err := readPuzzleFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "food|sushi|rice" {
		t.Errorf("lines = %v", lines)
	}
}
