package room

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/sakshamg567/doodlz-duel/internal/game"
	"github.com/sakshamg567/doodlz-duel/internal/words"
	"github.com/sakshamg567/doodlz-duel/logger"
	"golang.org/x/time/rate"
)

// Options are shared by every room a manager creates.
type Options struct {
	Game  game.Config
	Words words.Source
	// ClientClock lets clients drive the round clock with timer-update
	// messages instead of the room's own ticker.
	ClientClock bool
	// GuessRate and GuessBurst limit guesses and chat per player.
	GuessRate  rate.Limit
	GuessBurst int
	// IdleTimeout closes a room that nobody has joined yet.
	IdleTimeout time.Duration
	// Ticks replaces the one second round clock, for tests.
	Ticks <-chan time.Time
}

const defaultIdleTimeout = 5 * time.Minute

// roundClock counts down the active round on the server side.
type roundClock struct {
	roundID   uint64
	remaining int
}

// Room owns one game session. Everything that touches the session or the
// player map runs on the Run goroutine.
type Room struct {
	ID         string
	Players    map[game.PlayerID]*Player
	Register   chan *Player
	Unregister chan *Player
	inbox      chan envelope
	snapshots  chan chan Snapshot
	done       chan struct{}

	opts      Options
	session   *game.Session
	strokes   []Stroke
	clock     roundClock
	ticks     <-chan time.Time
	ticker    *time.Ticker
	tickEvery time.Duration
}

func NewRoom(id string, opts Options) *Room {
	if opts.GuessRate == 0 {
		opts.GuessRate = rate.Inf
	}
	if opts.GuessBurst < 1 {
		opts.GuessBurst = 1
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	r := &Room{
		ID:         id,
		Players:    make(map[game.PlayerID]*Player),
		Register:   make(chan *Player, 10),
		Unregister: make(chan *Player, 10),
		inbox:      make(chan envelope, 256),
		snapshots:  make(chan chan Snapshot),
		done:       make(chan struct{}),
		opts:       opts,
		ticks:      opts.Ticks,
		tickEvery:  time.Second,
	}
	r.session = game.NewSession(id, opts.Game, opts.Words, r, nil)
	return r
}

// NewPlayer wraps c in a player limited by the room's guess rate.
func (r *Room) NewPlayer(id string, c Conn) *Player {
	return NewPlayer(id, c, r.opts.GuessRate, r.opts.GuessBurst)
}

// Join hands p to the room. It fails once the room has shut down.
func (r *Room) Join(p *Player) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.Register <- p:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) Leave(p *Player) {
	select {
	case r.Unregister <- p:
	case <-r.done:
	}
}

func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) deliver(env envelope) bool {
	select {
	case r.inbox <- env:
		return true
	case <-r.done:
		return false
	}
}

// Snapshot asks the Run loop for a copy of the room state.
func (r *Room) Snapshot(ctx context.Context) (Snapshot, error) {
	req := make(chan Snapshot, 1)
	select {
	case r.snapshots <- req:
	case <-r.done:
		return Snapshot{}, ErrRoomNotFound
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case s := <-req:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (r *Room) Run(rm *RoomManager) {
	defer close(r.done)

	ticks := r.ticks
	if ticks == nil {
		r.ticker = time.NewTicker(r.tickEvery)
		defer r.ticker.Stop()
		ticks = r.ticker.C
	}

	idle := time.NewTimer(r.opts.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case player := <-r.Register:
			idle.Stop()
			r.join(player)

		case <-idle.C:
			if len(r.Players) == 0 {
				r.shutdown(rm, "never joined")
				return
			}

		case player := <-r.Unregister:
			if cur, ok := r.Players[player.ID]; !ok || cur != player {
				continue
			}
			delete(r.Players, player.ID)
			r.handle(game.PlayerLeft{ID: player.ID})

			// clean up empty room
			if len(r.Players) == 0 {
				r.shutdown(rm, "empty")
				return
			}

		case env := <-r.inbox:
			r.dispatch(env)

		case <-ticks:
			r.tick()

		case req := <-r.snapshots:
			req <- r.snapshot()
		}
	}
}

func (r *Room) shutdown(rm *RoomManager, why string) {
	if rm != nil {
		rm.remove(r.ID)
	}
	logger.Info("Room %s deleted (%s)", r.ID, why)
}

func (r *Room) join(p *Player) {
	r.Players[p.ID] = p
	r.WsMsgTo(p, TypeConnected, connectedPayload{PlayerID: p.ID, RoomID: r.ID})
	r.handle(game.PlayerJoined{ID: p.ID})
	r.WsMsgTo(p, TypeGameState, r.snapshot())
	logger.Info("Player %s joined room %s", p.ID, r.ID)
}

// handle feeds the session. A new round wipes the canvas and restarts the
// clock so its first second is a full one.
func (r *Room) handle(ev game.Inbound) {
	before, _, _ := r.session.ActiveRound()
	r.session.Handle(ev)
	if after, secs, ok := r.session.ActiveRound(); ok && after != before {
		r.strokes = nil
		r.clock = roundClock{roundID: after, remaining: secs}
		if r.ticker != nil {
			r.ticker.Reset(r.tickEvery)
		}
	}
}

func (r *Room) dispatch(env envelope) {
	p, msg := env.from, env.msg
	if r.Players[p.ID] != p {
		return
	}

	switch msg.Type {
	case TypePlayerReady:
		name, ok := decodeText(msg.Data, "name")
		if !ok {
			logger.Warn("Player %s - invalid ready payload: %s", p.ID, string(msg.Data))
			return
		}
		r.handle(game.PlayerReady{ID: p.ID, Name: name})

	case TypeGuess:
		text, ok := decodeText(msg.Data, "guess", "message")
		if !ok {
			logger.Debug("Player %s - empty guess", p.ID)
			return
		}
		r.handle(game.GuessSubmitted{ID: p.ID, Text: text})

	case TypeTimerUpdate:
		if !r.opts.ClientClock {
			return
		}
		var payload timerPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.TimeLeft == nil {
			logger.Warn("Player %s - invalid timer payload: %s", p.ID, string(msg.Data))
			return
		}
		r.handle(game.TimerUpdate{RoundID: payload.RoundID, Remaining: *payload.TimeLeft})
		if id, _, ok := r.session.ActiveRound(); ok && id == payload.RoundID && *payload.TimeLeft >= 0 {
			r.clock = roundClock{roundID: id, remaining: *payload.TimeLeft}
		}

	case TypeStroke:
		var stroke Stroke
		if err := json.Unmarshal(msg.Data, &stroke); err != nil {
			logger.Warn("Player %s - invalid stroke data: %v", p.ID, err)
			return
		}
		r.strokes = append(r.strokes, stroke)
		r.broadcastExcept(p, env.raw)

	case TypeDraw:
		r.broadcastExcept(p, env.raw)

	case TypeUndo:
		if len(r.strokes) > 0 {
			r.strokes = r.strokes[:len(r.strokes)-1]
		}
		r.BroadcastWS(TypeUndo, struct{}{})

	case TypeClear:
		r.strokes = nil
		r.broadcastExcept(p, env.raw)

	case TypeSendMessage:
		r.broadcast(encodeMessage(TypeReceivedMessage, msg.Data))

	default:
		logger.Debug("Player %s - unknown message type: %s", p.ID, msg.Type)
	}
}

func (r *Room) tick() {
	if r.opts.ClientClock {
		return
	}
	id, secs, ok := r.session.ActiveRound()
	if !ok {
		r.clock = roundClock{}
		return
	}
	if r.clock.roundID != id {
		r.clock = roundClock{roundID: id, remaining: secs}
	}
	r.clock.remaining--
	r.handle(game.TimerUpdate{RoundID: id, Remaining: r.clock.remaining})
}

func (r *Room) snapshot() Snapshot {
	s := Snapshot{
		RoomID:    r.ID,
		State:     r.session.State(),
		Players:   r.session.Players(),
		Standings: r.session.Standings(),
		Strokes:   slices.Clone(r.strokes),
	}
	if s.Strokes == nil {
		s.Strokes = []Stroke{}
	}
	if round, ok := r.session.Round(); ok {
		s.RoundID = round.ID
		s.Clue = round.Clue
		s.DrawerID = round.Drawer
		s.TimeLeft = round.Seconds
		if r.clock.roundID == round.ID {
			s.TimeLeft = r.clock.remaining
		}
	}
	return s
}

// Broadcast and Send make the room the session's game.Notifier.
func (r *Room) Broadcast(ev game.Event) {
	r.BroadcastWS(ev.Kind(), ev)
}

func (r *Room) Send(to game.PlayerID, ev game.Event) {
	if p, ok := r.Players[to]; ok {
		r.WsMsgTo(p, ev.Kind(), ev)
	}
}

func (r *Room) broadcast(msg []byte) {
	if msg == nil {
		return
	}
	for _, pl := range r.Players {
		r.push(pl, msg)
	}
}

func (r *Room) broadcastExcept(sender *Player, msg []byte) {
	for _, pl := range r.Players {
		if pl == sender {
			continue
		}
		r.push(pl, msg)
	}
}

func (r *Room) push(p *Player, msg []byte) {
	select {
	case p.send <- msg:
	default:
		logger.Error("Player %s send channel is full", p.ID)
	}
}

func (r *Room) BroadcastWS(t string, d any) {
	data, err := json.Marshal(d)
	if err != nil {
		logger.Error("Failed to marshal %s: %v", t, err)
		return
	}
	r.broadcast(encodeMessage(t, data))
}

func (r *Room) WsMsgTo(p *Player, t string, d any) {
	data, err := json.Marshal(d)
	if err != nil {
		logger.Error("Failed to marshal %s for player %s: %v", t, p.ID, err)
		return
	}
	if msg := encodeMessage(t, data); msg != nil {
		r.push(p, msg)
	}
}

func encodeMessage(t string, data json.RawMessage) []byte {
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	msg, err := json.Marshal(WSMessage{Type: t, Data: data})
	if err != nil {
		logger.Error("Failed to marshal WSMessage %s: %v", t, err)
		return nil
	}
	return msg
}
