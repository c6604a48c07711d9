package words

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

//go:embed words.txt
var defaultBank string

var ErrEmptyCatalog = errors.New("word bank empty after parsing")

// Source hands out secret words for new rounds.
type Source interface {
	Pick() string
}

// Catalog is an immutable word list with uniform random picks. Consecutive
// picks may repeat.
//
// A Catalog built with a nil rng draws from the global generator and is safe
// to share between rooms. One built with its own rng is not.
type Catalog struct {
	words []string
	rng   *rand.Rand
}

func NewCatalog(list []string, rng *rand.Rand) (*Catalog, error) {
	words := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &Catalog{words: words, rng: rng}, nil
}

// Default returns the built-in catalog.
func Default(rng *rand.Rand) *Catalog {
	c, err := NewCatalog(strings.Split(defaultBank, "\n"), rng)
	if err != nil {
		panic("words: embedded word bank is empty")
	}
	return c
}

// Load reads a word bank with one word per line. Blank lines are skipped.
func Load(path string, rng *rand.Rand) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading word bank %s: %w", path, err)
	}
	c, err := NewCatalog(strings.Split(string(data), "\n"), rng)
	if err != nil {
		return nil, fmt.Errorf("parsing word bank %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) Pick() string {
	if c.rng != nil {
		return c.words[c.rng.IntN(len(c.words))]
	}
	return c.words[rand.IntN(len(c.words))]
}

func (c *Catalog) Len() int {
	return len(c.words)
}
