package game

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"
)

const cluePlaceholder = '_'

// MaxExtraClues bounds the reveals granted after the opening letter.
const MaxExtraClues = 3

// Reveal returns the masked clue for word. When target is larger than the
// number of revealed positions and hidden letters remain, one more position is
// drawn uniformly and appended to revealed. Positions are rune indices.
func Reveal(word string, revealed []int, target int, rng *rand.Rand) (string, []int) {
	letters := []rune(word)
	if target > len(revealed) && len(revealed) < len(letters) {
		for {
			i := rng.IntN(len(letters))
			if !slices.Contains(revealed, i) {
				revealed = append(revealed, i)
				break
			}
		}
	}
	return Mask(letters, revealed), revealed
}

// Mask hides every rune not listed in revealed.
func Mask(letters []rune, revealed []int) string {
	out := make([]rune, len(letters))
	for i := range out {
		out[i] = cluePlaceholder
	}
	for _, i := range revealed {
		if i >= 0 && i < len(letters) {
			out[i] = letters[i]
		}
	}
	return string(out)
}

// ClueSchedule converts fractions of the round duration into the remaining
// seconds at which each extra clue is granted.
type ClueSchedule []int

func NewClueSchedule(duration time.Duration, fractions []float64) ClueSchedule {
	total := duration.Seconds()
	if len(fractions) > MaxExtraClues {
		fractions = fractions[:MaxExtraClues]
	}
	s := make(ClueSchedule, 0, len(fractions))
	for _, f := range fractions {
		s = append(s, int(math.Round(total*f)))
	}
	return s
}

// Due reports whether the clue after given clues is owed at remaining seconds.
func (s ClueSchedule) Due(given, remaining int) bool {
	return given < len(s) && remaining <= s[given]
}
