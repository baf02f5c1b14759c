package puzzle

import "github.com/zyedidia/generic/mapset"

// WordSet is an insertion-ordered set of words. The order is kept so that
// exclusion lists sent to the provider are stable.
type WordSet struct {
	set   mapset.Set[string]
	order []string
}

// NewWordSet builds a set from words, dropping duplicates.
func NewWordSet(words ...string) *WordSet {
	w := &WordSet{set: mapset.New[string]()}
	for _, x := range words {
		w.Add(x)
	}
	return w
}

// Add inserts word and reports whether it was new.
func (w *WordSet) Add(word string) bool {
	if word == "" || w.set.Has(word) {
		return false
	}
	w.set.Put(word)
	w.order = append(w.order, word)
	return true
}

// Has reports membership.
func (w *WordSet) Has(word string) bool { return w.set.Has(word) }

// Len is the number of words.
func (w *WordSet) Len() int { return w.set.Size() }

// List returns a copy of the words in insertion order.
func (w *WordSet) List() []string {
	return append([]string(nil), w.order...)
}
