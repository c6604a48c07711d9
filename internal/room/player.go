package room

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/sakshamg567/doodlz-duel/internal/game"
	"github.com/sakshamg567/doodlz-duel/logger"
	"golang.org/x/time/rate"
)

const (
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// Conn is the part of *websocket.Conn the pumps use.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Player struct {
	ID      game.PlayerID
	conn    Conn
	send    chan []byte
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
	limiter *rate.Limiter
}

// NewPlayer wraps a connection. Guesses and chat lines are limited to limit
// per second with the given burst.
func NewPlayer(id string, c Conn, limit rate.Limit, burst int) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		ID:      game.PlayerID(id),
		conn:    c,
		send:    make(chan []byte, 256),
		ctx:     ctx,
		cancel:  cancel,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (p *Player) cleanup() {
	p.once.Do(func() {
		p.cancel() // Cancel context first
		p.conn.Close()
	})
}

// throttled reports whether a chat-like message should be dropped.
func (p *Player) throttled(msgType string) bool {
	switch msgType {
	case TypeGuess, TypeSendMessage:
		return !p.limiter.Allow()
	}
	return false
}

func (p *Player) ReadPump(r *Room) {
	defer func() {
		if recover := recover(); recover != nil {
			logger.Error("Player %s readPump panic: %v", p.ID, recover)
		}
		logger.Debug("Player %s readPump exiting", p.ID)
		p.cleanup()
		r.Leave(p)
	}()

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
			_, msg, err := p.conn.ReadMessage()
			if err != nil {
				logger.Debug("ReadMessage error for player %s: %v", p.ID, err)
				return
			}

			var wsMsg WSMessage
			if err := json.Unmarshal(msg, &wsMsg); err != nil {
				logger.Warn("Invalid WS message from player %s: %v", p.ID, err)
				continue
			}
			if p.throttled(wsMsg.Type) {
				logger.Debug("Player %s throttled on %s", p.ID, wsMsg.Type)
				continue
			}

			if !r.deliver(envelope{from: p, msg: wsMsg, raw: msg}) {
				return
			}
		}
	}
}

func (p *Player) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.cleanup()
	}()

	for {
		select {
		case <-p.ctx.Done():
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			p.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("WriteMessage error for player %s: %v", p.ID, err)
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug("Ping error for player %s: %v", p.ID, err)
				return
			}
		}
	}
}
