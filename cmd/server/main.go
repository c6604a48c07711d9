package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"golang.org/x/time/rate"

	"github.com/sakshamg567/doodlz-duel/internal/config"
	"github.com/sakshamg567/doodlz-duel/internal/room"
	"github.com/sakshamg567/doodlz-duel/internal/words"
	"github.com/sakshamg567/doodlz-duel/logger"
	"github.com/sakshamg567/doodlz-duel/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("Unknown LOG_LEVEL %q, keeping info: %v", cfg.LogLevel, err)
	}

	src := words.Default(nil)
	if cfg.WordsFile != "" {
		if src, err = words.Load(cfg.WordsFile, nil); err != nil {
			logger.Error("Loading word list: %v", err)
			os.Exit(1)
		}
	}
	logger.Info("Word list ready (%d words)", src.Len())

	rm := room.NewRoomManager(room.Options{
		Game:        cfg.Game(),
		Words:       src,
		ClientClock: cfg.ClientClock,
		GuessRate:   rate.Limit(cfg.GuessRate),
		GuessBurst:  cfg.GuessBurst,
		IdleTimeout: cfg.RoomIdleTimeout,
	})

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/:roomId", websocket.New(func(c *websocket.Conn) {
		r, ok := rm.GetRoom(c.Params("roomId"))
		if !ok {
			c.Close()
			return
		}

		pl := r.NewPlayer(utils.NewPlayerID(), c)
		if !r.Join(pl) {
			c.Close()
			return
		}
		go pl.ReadPump(r)
		pl.WritePump()
	}))

	app.Post("/room/create", rm.CreateRoomHandler)
	app.Get("/api/rooms", rm.ListRoomsHandler)
	app.Get("/room/:id", rm.RoomHandler)
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("Shutdown: %v", err)
		}
	}()

	logger.Info("Server %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Error("Listen: %v", err)
		os.Exit(1)
	}
}
