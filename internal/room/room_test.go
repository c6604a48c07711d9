package room

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/sakshamg567/doodlz-duel/internal/game"
	"github.com/sakshamg567/doodlz-duel/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	logger.EnableLogging(false)
}

type fakeConn struct {
	reads     chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	writes [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case b := <-c.reads:
		return websocket.TextMessage, b, nil
	case <-c.closed:
		return 0, nil, io.EOF
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closed:
		return io.ErrClosedPipe
	default:
	}
	if messageType == websocket.TextMessage {
		c.mu.Lock()
		c.writes = append(c.writes, data)
		c.mu.Unlock()
	}
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) written() []WSMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]WSMessage, 0, len(c.writes))
	for _, w := range c.writes {
		var m WSMessage
		if json.Unmarshal(w, &m) == nil {
			out = append(out, m)
		}
	}
	return out
}

type fixedWord string

func (w fixedWord) Pick() string { return string(w) }

func testOptions(ticks chan time.Time) Options {
	return Options{
		Game:       game.DefaultConfig(),
		Words:      fixedWord("rocket"),
		GuessRate:  rate.Inf,
		GuessBurst: 1,
		Ticks:      ticks,
	}
}

func startRoom(t *testing.T, opts Options) *Room {
	t.Helper()
	r := NewRoom("test-room", opts)
	go r.Run(nil)
	return r
}

func joinPlayer(t *testing.T, r *Room, id string) *Player {
	t.Helper()
	p := r.NewPlayer(id, newFakeConn())
	require.True(t, r.Join(p))
	expectMessage(t, p, TypeConnected)
	return p
}

func send(r *Room, p *Player, typ string, data any) {
	raw, _ := json.Marshal(data)
	msg := WSMessage{Type: typ, Data: raw}
	full, _ := json.Marshal(msg)
	r.deliver(envelope{from: p, msg: msg, raw: full})
}

// expectMessage skips queued messages until one of type typ arrives.
func expectMessage(t *testing.T, p *Player, typ string) WSMessage {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case raw := <-p.send:
			var m WSMessage
			require.NoError(t, json.Unmarshal(raw, &m))
			if m.Type == typ {
				return m
			}
		case <-timeout:
			t.Fatalf("player %s never received %s", p.ID, typ)
			return WSMessage{}
		}
	}
}

func expectNone(t *testing.T, p *Player, typ string) {
	t.Helper()
	for {
		select {
		case raw := <-p.send:
			var m WSMessage
			require.NoError(t, json.Unmarshal(raw, &m))
			assert.NotEqual(t, typ, m.Type)
		default:
			return
		}
	}
}

func snapshot(t *testing.T, r *Room) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := r.Snapshot(ctx)
	require.NoError(t, err)
	return s
}

func startRound(t *testing.T, r *Room) (drawer, guesser *Player) {
	t.Helper()
	ann := joinPlayer(t, r, "ann")
	bo := joinPlayer(t, r, "bo")

	send(r, ann, TypePlayerReady, "Ann")
	expectMessage(t, ann, game.KindWaiting)
	send(r, bo, TypePlayerReady, map[string]string{"name": "Bo"})

	var nr game.NewRound
	require.NoError(t, json.Unmarshal(expectMessage(t, ann, game.KindNewRound).Data, &nr))
	if nr.DrawerID == ann.ID {
		return ann, bo
	}
	return bo, ann
}

func TestRoom_NewRoundHidesWordFromGuesser(t *testing.T) {
	r := startRoom(t, testOptions(make(chan time.Time)))
	ann := joinPlayer(t, r, "ann")
	bo := joinPlayer(t, r, "bo")

	send(r, ann, TypePlayerReady, "Ann")
	send(r, bo, TypePlayerReady, "Bo")

	var forAnn, forBo game.NewRound
	require.NoError(t, json.Unmarshal(expectMessage(t, ann, game.KindNewRound).Data, &forAnn))
	require.NoError(t, json.Unmarshal(expectMessage(t, bo, game.KindNewRound).Data, &forBo))

	assert.Equal(t, forAnn.DrawerID, forBo.DrawerID)
	if forAnn.DrawerID == ann.ID {
		assert.Equal(t, "rocket", forAnn.Word)
		assert.Empty(t, forBo.Word)
	} else {
		assert.Equal(t, "rocket", forBo.Word)
		assert.Empty(t, forAnn.Word)
	}

	s := snapshot(t, r)
	assert.Equal(t, game.StatePlaying, s.State)
	assert.Len(t, s.Clue, 6)
	assert.Equal(t, forAnn.DrawerID, s.DrawerID)
}

func TestRoom_CorrectGuessEndsRound(t *testing.T) {
	r := startRoom(t, testOptions(make(chan time.Time)))
	drawer, guesser := startRound(t, r)

	send(r, guesser, TypeGuess, map[string]string{"guess": "Rocket"})

	for _, p := range []*Player{drawer, guesser} {
		expectMessage(t, p, game.KindGuessCorrect)
		var scores []game.Standing
		require.NoError(t, json.Unmarshal(expectMessage(t, p, game.KindScoreUpdate).Data, &scores))
		require.Len(t, scores, 1)
		assert.Equal(t, 5, scores[0].Score)

		var end game.RoundEnd
		require.NoError(t, json.Unmarshal(expectMessage(t, p, game.KindRoundEnd).Data, &end))
		assert.Equal(t, game.RoundEnd{Word: "rocket", Reason: game.EndAllGuessed}, end)
	}
	assert.Equal(t, game.StateRoundEnd, snapshot(t, r).State)
}

func TestRoom_ServerClockRevealsClues(t *testing.T) {
	ticks := make(chan time.Time)
	r := startRoom(t, testOptions(ticks))
	drawer, _ := startRound(t, r)

	for range 26 {
		ticks <- time.Now()
	}
	assert.Equal(t, 64, snapshot(t, r).TimeLeft)
	expectNone(t, drawer, game.KindNewClue)

	ticks <- time.Now()
	var clue game.NewClue
	require.NoError(t, json.Unmarshal(expectMessage(t, drawer, game.KindNewClue).Data, &clue))
	assert.Equal(t, 1, clue.CluesGiven)

	for range 63 {
		ticks <- time.Now()
	}
	var end game.RoundEnd
	require.NoError(t, json.Unmarshal(expectMessage(t, drawer, game.KindRoundEnd).Data, &end))
	assert.Equal(t, game.EndTimeUp, end.Reason)

	ticks <- time.Now()
	assert.Equal(t, game.StateRoundEnd, snapshot(t, r).State)
}

func TestRoom_ClientClock(t *testing.T) {
	ticks := make(chan time.Time)
	opts := testOptions(ticks)
	opts.ClientClock = true
	r := startRoom(t, opts)
	drawer, _ := startRound(t, r)
	roundID := snapshot(t, r).RoundID

	ticks <- time.Now()
	assert.Equal(t, 90, snapshot(t, r).TimeLeft, "server clock stays idle")

	send(r, drawer, TypeTimerUpdate, map[string]any{"roundId": roundID, "timeLeft": 63})
	expectMessage(t, drawer, game.KindNewClue)
	assert.Equal(t, 63, snapshot(t, r).TimeLeft)

	send(r, drawer, TypeTimerUpdate, map[string]any{"roundId": roundID + 7, "timeLeft": 0})
	send(r, drawer, TypeTimerUpdate, map[string]any{"roundId": roundID})
	assert.Equal(t, game.StatePlaying, snapshot(t, r).State)

	send(r, drawer, TypeTimerUpdate, map[string]any{"roundId": roundID, "timeLeft": 0})
	expectMessage(t, drawer, game.KindRoundEnd)
}

func TestRoom_TimerUpdateIgnoredWithServerClock(t *testing.T) {
	r := startRoom(t, testOptions(make(chan time.Time)))
	drawer, _ := startRound(t, r)
	roundID := snapshot(t, r).RoundID

	send(r, drawer, TypeTimerUpdate, map[string]any{"roundId": roundID, "timeLeft": 0})
	assert.Equal(t, game.StatePlaying, snapshot(t, r).State)
}

func TestRoom_RelaysDrawingAndChat(t *testing.T) {
	r := startRoom(t, testOptions(make(chan time.Time)))
	ann := joinPlayer(t, r, "ann")
	bo := joinPlayer(t, r, "bo")

	stroke := Stroke{StrokeColor: "#000", StrokeWidth: 3, Paths: []Point{{X: 1, Y: 2}}}
	send(r, ann, TypeStroke, stroke)
	got := expectMessage(t, bo, TypeStroke)
	var relayed Stroke
	require.NoError(t, json.Unmarshal(got.Data, &relayed))
	assert.Equal(t, stroke, relayed)
	expectNone(t, ann, TypeStroke)
	assert.Len(t, snapshot(t, r).Strokes, 1)

	send(r, ann, TypeUndo, nil)
	expectMessage(t, ann, TypeUndo)
	assert.Empty(t, snapshot(t, r).Strokes)

	send(r, bo, TypeSendMessage, map[string]string{"user": "@Bo", "message": "hi"})
	msg := expectMessage(t, ann, TypeReceivedMessage)
	assert.JSONEq(t, `{"user":"@Bo","message":"hi"}`, string(msg.Data))
}

func TestRoom_LateJoinerSeesGameInProgress(t *testing.T) {
	r := startRoom(t, testOptions(make(chan time.Time)))
	startRound(t, r)

	cy := r.NewPlayer("cy", newFakeConn())
	require.True(t, r.Join(cy))
	expectMessage(t, cy, game.KindGameInProgress)

	var state Snapshot
	require.NoError(t, json.Unmarshal(expectMessage(t, cy, TypeGameState).Data, &state))
	assert.Equal(t, game.StatePlaying, state.State)
	assert.Len(t, state.Players, 3)
}

func TestRoom_DisconnectForcesRoundEnd(t *testing.T) {
	r := startRoom(t, testOptions(make(chan time.Time)))
	drawer, guesser := startRound(t, r)

	r.Leave(guesser)

	var end game.RoundEnd
	require.NoError(t, json.Unmarshal(expectMessage(t, drawer, game.KindRoundEnd).Data, &end))
	assert.Equal(t, game.EndPlayersLeft, end.Reason)

	s := snapshot(t, r)
	require.Len(t, s.Players, 1)
	assert.False(t, s.Players[0].Playing)
	assert.False(t, s.Players[0].Ready)

	r.Leave(drawer)
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("room did not shut down once empty")
	}
	assert.False(t, r.Join(r.NewPlayer("late", newFakeConn())))
}

func TestPlayer_Pumps(t *testing.T) {
	rm := NewRoomManager(testOptions(make(chan time.Time)))
	r := rm.CreateRoom()

	conn := newFakeConn()
	p := r.NewPlayer("ann", conn)
	require.True(t, r.Join(p))
	go p.ReadPump(r)
	go p.WritePump()

	conn.reads <- []byte(`not json`)
	conn.reads <- []byte(`{"type":"player-ready","data":"Ann"}`)

	require.Eventually(t, func() bool {
		for _, m := range conn.written() {
			if m.Type == game.KindWaiting {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	conn.Close()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("room did not shut down after its last player left")
	}
	_, ok := rm.GetRoom(r.ID)
	assert.False(t, ok)
}

func TestRoom_UnjoinedRoomExpires(t *testing.T) {
	opts := testOptions(make(chan time.Time))
	opts.IdleTimeout = 20 * time.Millisecond
	rm := NewRoomManager(opts)
	r := rm.CreateRoom()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("room nobody joined was never closed")
	}
	_, ok := rm.GetRoom(r.ID)
	assert.False(t, ok)
	assert.False(t, r.Join(r.NewPlayer("late", newFakeConn())))
}

func TestRoom_JoinedRoomOutlivesIdleTimeout(t *testing.T) {
	opts := testOptions(make(chan time.Time))
	opts.IdleTimeout = 20 * time.Millisecond
	r := startRoom(t, opts)
	joinPlayer(t, r, "ann")

	time.Sleep(60 * time.Millisecond)
	select {
	case <-r.Done():
		t.Fatal("room with a player was closed")
	default:
	}
	assert.Len(t, snapshot(t, r).Players, 1)
}

func TestRoom_RoundClockRestartsWithRound(t *testing.T) {
	r := NewRoom("clock-room", testOptions(nil))
	r.tickEvery = 200 * time.Millisecond
	go r.Run(nil)

	ann := joinPlayer(t, r, "ann")
	bo := joinPlayer(t, r, "bo")
	send(r, ann, TypePlayerReady, "Ann")

	// start the round late in a tick period
	time.Sleep(150 * time.Millisecond)
	send(r, bo, TypePlayerReady, "Bo")
	expectMessage(t, ann, game.KindNewRound)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 90, snapshot(t, r).TimeLeft, "first second of the round was cut short")

	require.Eventually(t, func() bool {
		s, err := r.Snapshot(context.Background())
		return err == nil && s.TimeLeft == 89
	}, time.Second, 20*time.Millisecond)
}

func TestRoom_PlayersUseRoomGuessRate(t *testing.T) {
	opts := testOptions(make(chan time.Time))
	opts.GuessRate = rate.Every(time.Hour)
	opts.GuessBurst = 1
	p := NewRoom("limited", opts).NewPlayer("ann", newFakeConn())
	assert.False(t, p.throttled(TypeGuess))
	assert.True(t, p.throttled(TypeGuess))

	unset := testOptions(make(chan time.Time))
	unset.GuessRate, unset.GuessBurst = 0, 0
	q := NewRoom("open", unset).NewPlayer("bo", newFakeConn())
	for range 10 {
		assert.False(t, q.throttled(TypeGuess))
	}
}

func TestPlayer_ThrottlesGuesses(t *testing.T) {
	p := NewPlayer("ann", newFakeConn(), rate.Every(time.Hour), 2)
	assert.False(t, p.throttled(TypeGuess))
	assert.False(t, p.throttled(TypeSendMessage))
	assert.True(t, p.throttled(TypeGuess))
	assert.False(t, p.throttled(TypeStroke))
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		data string
		want string
		ok   bool
	}{
		{`"Ann"`, "Ann", true},
		{`"  Bo "`, "Bo", true},
		{`{"name":"Cy"}`, "Cy", true},
		{`{"guess":"","message":"kite"}`, "kite", true},
		{`"   "`, "", false},
		{`{"other":"x"}`, "", false},
		{`42`, "", false},
		{``, "", false},
	}
	for _, tt := range tests {
		got, ok := decodeText(json.RawMessage(tt.data), "name", "guess", "message")
		assert.Equal(t, tt.ok, ok, tt.data)
		assert.Equal(t, tt.want, got, tt.data)
	}
}
