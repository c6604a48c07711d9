package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/sakshamg567/doodlz-duel/logger"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.EnableLogging(false)
}

type delivery struct {
	to PlayerID // empty for broadcasts
	ev Event
}

type recorder struct {
	sent []delivery
}

func (r *recorder) Broadcast(ev Event) {
	r.sent = append(r.sent, delivery{ev: ev})
}

func (r *recorder) Send(to PlayerID, ev Event) {
	r.sent = append(r.sent, delivery{to: to, ev: ev})
}

func (r *recorder) reset() {
	r.sent = nil
}

func (r *recorder) kinds() []string {
	out := make([]string, 0, len(r.sent))
	for _, d := range r.sent {
		out = append(out, d.ev.Kind())
	}
	return out
}

func (r *recorder) ofKind(kind string) []delivery {
	var out []delivery
	for _, d := range r.sent {
		if d.ev.Kind() == kind {
			out = append(out, d)
		}
	}
	return out
}

type fixedWord string

func (w fixedWord) Pick() string { return string(w) }

func testConfig() Config {
	return Config{
		RoundDuration:      90 * time.Second,
		ClueThresholds:     []float64{0.7, 0.5, 0.3},
		MinPlayers:         2,
		CloseGuessDistance: 2,
	}
}

func newTestSession(cfg Config) (*Session, *recorder) {
	rec := &recorder{}
	s := NewSession("test", cfg, fixedWord("Rocket"), rec, rand.New(rand.NewPCG(7, 11)))
	return s, rec
}

// readyAll marks each id ready using the id as its name.
func readyAll(s *Session, ids ...PlayerID) {
	for _, id := range ids {
		s.Join(id)
		s.Ready(id, string(id))
	}
}

func splitRoles(t *testing.T, s *Session) (drawer PlayerID, guessers []PlayerID) {
	t.Helper()
	r, ok := s.Round()
	require.True(t, ok, "expected an active round")
	for _, p := range s.Players() {
		if p.ID == r.Drawer {
			continue
		}
		if p.Playing {
			guessers = append(guessers, p.ID)
		}
	}
	return r.Drawer, guessers
}
