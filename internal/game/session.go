package game

import (
	"math/rand/v2"
	"strings"

	"github.com/sakshamg567/doodlz-duel/internal/words"
	"github.com/sakshamg567/doodlz-duel/logger"
)

// A round needs at least this many players to start or to keep going.
const minActivePlayers = 2

// Session runs the rounds of one room. It is driven by a single goroutine
// and does no locking of its own.
type Session struct {
	roomID   string
	cfg      Config
	schedule ClueSchedule
	players  *Registry
	words    words.Source
	rng      *rand.Rand
	out      Notifier

	state   State
	round   *Round
	roundID uint64
}

func NewSession(roomID string, cfg Config, src words.Source, out Notifier, rng *rand.Rand) *Session {
	if cfg.MinPlayers < minActivePlayers {
		cfg.MinPlayers = minActivePlayers
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Session{
		roomID:   roomID,
		cfg:      cfg,
		schedule: NewClueSchedule(cfg.RoundDuration, cfg.ClueThresholds),
		players:  NewRegistry(),
		words:    src,
		rng:      rng,
		out:      out,
		state:    StateIdle,
	}
}

func (s *Session) Handle(ev Inbound) {
	switch ev := ev.(type) {
	case PlayerJoined:
		s.Join(ev.ID)
	case PlayerReady:
		s.Ready(ev.ID, ev.Name)
	case GuessSubmitted:
		s.Guess(ev.ID, ev.Text)
	case TimerUpdate:
		s.Tick(ev.RoundID, ev.Remaining)
	case PlayerLeft:
		s.Disconnect(ev.ID)
	}
}

func (s *Session) State() State {
	return s.state
}

// Round returns a copy of the active round.
func (s *Session) Round() (Round, bool) {
	if s.round == nil || s.state != StatePlaying {
		return Round{}, false
	}
	return s.round.clone(), true
}

// ActiveRound reports the id and length in seconds of the running round.
func (s *Session) ActiveRound() (uint64, int, bool) {
	if s.round == nil || s.state != StatePlaying {
		return 0, 0, false
	}
	return s.round.ID, s.round.Seconds, true
}

func (s *Session) Players() []Player {
	return s.players.All()
}

func (s *Session) Standings() []Standing {
	return Rank(s.players.All())
}

func (s *Session) Join(id PlayerID) {
	if !s.players.Add(id) {
		return
	}
	logger.Info("room=%s player=%s joined (%d total)", s.roomID, id, s.players.TotalCount())
	if s.state == StatePlaying {
		s.out.Send(id, GameInProgress{})
	}
}

func (s *Session) Ready(id PlayerID, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		logger.Debug("room=%s player=%s ready with empty name", s.roomID, id)
		return
	}
	if s.state == StatePlaying {
		logger.Debug("room=%s player=%s ready ignored mid-round", s.roomID, id)
		return
	}
	if s.state == StateRoundEnd {
		s.state = StateIdle
	}
	if !s.players.SetReady(id, name) {
		return
	}

	ready := s.players.ReadyCount()
	logger.Info("room=%s player %s is ready (%d/%d)", s.roomID, name, ready, s.players.TotalCount())
	if ready >= s.cfg.MinPlayers {
		s.startRound()
		return
	}
	s.out.Send(id, Waiting{})
	s.broadcastCounts()
}

func (s *Session) Tick(roundID uint64, remaining int) {
	if s.state != StatePlaying || s.round == nil || s.round.ID != roundID {
		logger.Debug("room=%s stale tick for round %d", s.roomID, roundID)
		return
	}
	if remaining < 0 {
		return
	}

	r := s.round
	for s.schedule.Due(r.CluesGiven, remaining) && len(r.Revealed) < len([]rune(r.Word)) {
		r.CluesGiven++
		r.Clue, r.Revealed = Reveal(r.Word, r.Revealed, r.CluesGiven+1, s.rng)
		logger.Info("room=%s round=%d clue %d revealed at %ds", s.roomID, r.ID, r.CluesGiven, remaining)
		s.out.Broadcast(NewClue{Clue: r.Clue, CluesGiven: r.CluesGiven})
	}

	if remaining == 0 {
		s.endRound(EndTimeUp)
	}
}

func (s *Session) Disconnect(id PlayerID) {
	p, ok := s.players.Get(id)
	if !ok {
		return
	}
	s.players.Remove(id)
	logger.Info("room=%s player=%s left (%d remaining)", s.roomID, id, s.players.TotalCount())

	if s.state == StatePlaying && s.round != nil {
		delete(s.round.Guessed, id)
		switch {
		case s.players.PlayingCount() < minActivePlayers:
			s.endRound(EndPlayersLeft)
		case p.Playing && s.round.Drawer == id:
			s.endRound(EndDrawerLeft)
		case s.everyoneGuessed():
			s.endRound(EndAllGuessed)
		}
	}

	s.out.Broadcast(ScoreUpdate(s.Standings()))
	s.broadcastCounts()
}

func (s *Session) startRound() {
	ready := s.players.Ready()
	drawer := ready[s.rng.IntN(len(ready))]
	word := strings.ToLower(strings.TrimSpace(s.words.Pick()))

	s.roundID++
	r := &Round{
		ID:      s.roundID,
		Word:    word,
		Drawer:  drawer.ID,
		Guessed: map[PlayerID]bool{drawer.ID: true},
		Seconds: int(s.cfg.RoundDuration.Seconds()),
	}
	r.Clue, r.Revealed = Reveal(word, nil, 1, s.rng)

	for _, p := range ready {
		s.players.SetPlaying(p.ID)
	}
	s.round = r
	s.state = StatePlaying
	logger.Info("room=%s round=%d started, drawer=%s word=%q", s.roomID, r.ID, drawer.ID, word)

	public := NewRound{
		RoundID:    r.ID,
		Clue:       r.Clue,
		TimeLeft:   r.Seconds,
		DrawerID:   drawer.ID,
		DrawerName: drawer.Name,
	}
	private := public
	private.Word = word
	for _, p := range s.players.All() {
		if p.ID == drawer.ID {
			s.out.Send(p.ID, private)
		} else {
			s.out.Send(p.ID, public)
		}
	}
}

func (s *Session) endRound(reason EndReason) {
	word := s.round.Word
	s.players.ResetRoundFlags()
	s.state = StateRoundEnd
	s.round = nil
	logger.Info("room=%s round=%d ended: %s", s.roomID, s.roundID, reason)
	s.out.Broadcast(RoundEnd{Word: word, Reason: reason})
}

func (s *Session) everyoneGuessed() bool {
	for _, p := range s.players.Playing() {
		if !s.round.Guessed[p.ID] {
			return false
		}
	}
	return true
}

func (s *Session) broadcastCounts() {
	s.out.Broadcast(WaitingForPlayers{
		ReadyCount:   s.players.ReadyCount(),
		TotalPlayers: s.players.TotalCount(),
	})
}
