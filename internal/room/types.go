package room

import (
	"encoding/json"
	"strings"

	"github.com/sakshamg567/doodlz-duel/internal/game"
)

type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Type string  `json:"type,omitempty"`
}

type Stroke struct {
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth int8    `json:"strokeWidth"`
	Paths       []Point `json:"paths"`
}

// client -> server
const (
	TypePlayerReady = "player-ready"
	TypeGuess       = "guess"
	TypeTimerUpdate = "timer-update"
	TypeDraw        = "draw"
	TypeStroke      = "stroke"
	TypeUndo        = "undo"
	TypeClear       = "clear"
	TypeSendMessage = "send-message"
)

// server -> client, besides the game.Kind* events
const (
	TypeConnected       = "connected"
	TypeGameState       = "game-state"
	TypeReceivedMessage = "received-message"
)

type envelope struct {
	from *Player
	msg  WSMessage
	raw  []byte
}

type timerPayload struct {
	RoundID  uint64 `json:"roundId"`
	TimeLeft *int   `json:"timeLeft"`
}

type connectedPayload struct {
	PlayerID game.PlayerID `json:"playerId"`
	RoomID   string        `json:"roomId"`
}

// Snapshot is a read-only view of a room.
type Snapshot struct {
	RoomID    string          `json:"roomId"`
	State     game.State      `json:"state"`
	Players   []game.Player   `json:"players"`
	Standings []game.Standing `json:"standings"`
	RoundID   uint64          `json:"roundId,omitempty"`
	Clue      string          `json:"clue,omitempty"`
	DrawerID  game.PlayerID   `json:"drawerId,omitempty"`
	TimeLeft  int             `json:"timeLeft,omitempty"`
	Strokes   []Stroke        `json:"strokes"`
}

// decodeText pulls a trimmed string out of data, which may be a bare JSON
// string or an object carrying one of keys.
func decodeText(data json.RawMessage, keys ...string) (string, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", false
	}
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s, true
			}
		}
	}
	return "", false
}
