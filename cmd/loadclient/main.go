// Command loadclient fills a room with bots that ready up, draw, chat and
// guess words from the built-in list.
//
//	go run ./cmd/loadclient <number_of_clients> [game_link]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sakshamg567/doodlz-duel/internal/words"
	"github.com/sakshamg567/doodlz-duel/logger"
)

type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type bot struct {
	name    string
	conn    *websocket.Conn
	guesses *words.Catalog

	mu      sync.Mutex
	drawing bool
	playing bool
}

func main() {
	server := flag.String("server", "localhost:3000", "host:port of the game server")
	messages := flag.Int("messages", 100, "messages each bot sends before leaving")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: loadclient [-server host:port] <number_of_clients> [game_link]")
		os.Exit(2)
	}
	numClients, err := strconv.Atoi(flag.Arg(0))
	if err != nil || numClients < 1 {
		logger.Error("Invalid number of clients %q", flag.Arg(0))
		os.Exit(2)
	}

	var roomID string
	if flag.NArg() >= 2 {
		if roomID = roomFromLink(flag.Arg(1)); roomID == "" {
			logger.Error("Could not extract roomId from game link: %s", flag.Arg(1))
			os.Exit(1)
		}
		logger.Info("Using existing room %s", roomID)
	} else {
		if roomID, err = createRoom(*server); err != nil {
			logger.Error("Failed to create room: %v", err)
			os.Exit(1)
		}
		logger.Info("Created room %s", roomID)
	}

	var wg sync.WaitGroup
	for i := range numClients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(*server, roomID, fmt.Sprintf("bot%d", i), *messages)
		}()
	}
	wg.Wait()
}

// roomFromLink accepts ?roomId=xyz, a bare ?xyz, a #/xyz fragment or a
// /room/xyz path.
func roomFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if id := u.Query().Get("roomId"); id != "" {
		return id
	}
	if u.RawQuery != "" && !strings.Contains(u.RawQuery, "=") {
		return u.RawQuery
	}
	if frag := strings.TrimPrefix(u.Fragment, "/"); frag != "" {
		if _, after, ok := strings.Cut(frag, "roomId="); ok {
			id, _, _ := strings.Cut(after, "&")
			return id
		}
		if !strings.Contains(frag, "=") {
			return frag
		}
	}
	if rest, ok := strings.CutPrefix(u.Path, "/room/"); ok {
		return strings.Trim(rest, "/")
	}
	return ""
}

func createRoom(server string) (string, error) {
	resp, err := http.Post("http://"+server+"/room/create", "application/json", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var res struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("invalid JSON from room creation: %w", err)
	}
	return res.RoomID, nil
}

func run(server, roomID, name string, count int) {
	u := url.URL{Scheme: "ws", Host: server, Path: "/ws/" + roomID}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Warn("%s: WS connect error: %v", name, err)
		return
	}
	defer conn.Close()

	b := &bot{name: name, conn: conn, guesses: words.Default(nil)}
	go b.listen()

	if err := b.write("player-ready", map[string]string{"name": name}); err != nil {
		return
	}
	logger.Info("%s joined", name)

	for range count {
		if err := b.act(); err != nil {
			logger.Warn("%s: write error: %v", name, err)
			return
		}
		time.Sleep(time.Duration(100+rand.IntN(900)) * time.Millisecond)
	}
	logger.Info("%s finished sending messages", name)
}

func (b *bot) act() error {
	b.mu.Lock()
	drawing, playing := b.drawing, b.playing
	b.mu.Unlock()

	switch {
	case drawing:
		return b.write("stroke", map[string]any{
			"strokeColor": "#000000",
			"strokeWidth": 3,
			"paths": []map[string]float64{
				{"x": float64(rand.IntN(800)), "y": float64(rand.IntN(600))},
				{"x": float64(rand.IntN(800)), "y": float64(rand.IntN(600))},
			},
		})
	case playing && rand.IntN(3) > 0:
		return b.write("guess", map[string]string{"guess": b.guesses.Pick()})
	default:
		return b.write("send-message", map[string]string{
			"user":    "@" + b.name,
			"message": "hello from " + b.name,
		})
	}
}

func (b *bot) listen() {
	for {
		_, raw, err := b.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg WSMessage
		if json.Unmarshal(raw, &msg) != nil {
			continue
		}

		switch msg.Type {
		case "new-round":
			var nr struct {
				Word string `json:"word"`
			}
			_ = json.Unmarshal(msg.Data, &nr)
			b.setRole(nr.Word != "", true)
			if nr.Word != "" {
				logger.Info("%s draws %q", b.name, nr.Word)
			}
		case "guess-correct", "already-guessed":
			var gc struct {
				Player string `json:"player"`
			}
			_ = json.Unmarshal(msg.Data, &gc)
			if msg.Type == "already-guessed" || gc.Player == b.name {
				b.setRole(false, false)
			}
		case "round-end":
			b.setRole(false, false)
			logger.Debug("%s saw round end: %s", b.name, string(msg.Data))
			// ready up again for the next round
			if err := b.write("player-ready", b.name); err != nil {
				return
			}
		}
	}
}

func (b *bot) setRole(drawing, playing bool) {
	b.mu.Lock()
	b.drawing, b.playing = drawing, playing
	b.mu.Unlock()
}

func (b *bot) write(t string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(WSMessage{Type: t, Data: payload})
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.WriteMessage(websocket.TextMessage, msg)
}
