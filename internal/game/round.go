package game

import (
	"maps"
	"slices"
	"time"
)

type State int

const (
	StateIdle State = iota
	StatePlaying
	StateRoundEnd
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateRoundEnd:
		return "round-end"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Config struct {
	RoundDuration time.Duration
	// Fractions of RoundDuration, counted down, at which extra clues appear.
	ClueThresholds []float64
	MinPlayers     int
	// Misses within this edit distance earn a private hint. 0 disables it.
	CloseGuessDistance int
}

func DefaultConfig() Config {
	return Config{
		RoundDuration:      90 * time.Second,
		ClueThresholds:     []float64{0.7, 0.5, 0.3},
		MinPlayers:         2,
		CloseGuessDistance: 2,
	}
}

// Round is the state of one drawing turn.
type Round struct {
	ID       uint64
	Word     string
	Clue     string
	Revealed []int
	// CluesGiven counts reveals after the initial letter.
	CluesGiven int
	Drawer     PlayerID
	// Guessed holds players done guessing, the drawer included.
	Guessed map[PlayerID]bool
	Seconds int
}

func (r *Round) clone() Round {
	c := *r
	c.Revealed = slices.Clone(r.Revealed)
	c.Guessed = maps.Clone(r.Guessed)
	return c
}
