package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sakshamg567/doodlz-duel/internal/game"
)

type Config struct {
	Addr               string
	RoundDuration      time.Duration
	ClueThresholds     []float64
	MinPlayers         int
	CloseGuessDistance int
	WordsFile          string
	LogLevel           string
	CORSOrigins        string
	ClientClock        bool
	GuessRate          float64
	GuessBurst         int
	RoomIdleTimeout    time.Duration
}

func Defaults() Config {
	g := game.DefaultConfig()
	return Config{
		Addr:               ":3000",
		RoundDuration:      g.RoundDuration,
		ClueThresholds:     g.ClueThresholds,
		MinPlayers:         g.MinPlayers,
		CloseGuessDistance: g.CloseGuessDistance,
		LogLevel:           "info",
		CORSOrigins:        "*",
		GuessRate:          2,
		GuessBurst:         5,
		RoomIdleTimeout:    5 * time.Minute,
	}
}

// Load reads .env files (when present) and then the environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, falling back to Defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Defaults()
	var errs []error

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}

	str("ADDR", &c.Addr)
	str("WORDS_FILE", &c.WordsFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("CORS_ORIGINS", &c.CORSOrigins)
	num("MIN_PLAYERS", &c.MinPlayers)
	num("CLOSE_GUESS_DISTANCE", &c.CloseGuessDistance)
	num("GUESS_BURST", &c.GuessBurst)

	secs := int(c.RoundDuration.Seconds())
	num("ROUND_SECONDS", &secs)
	c.RoundDuration = time.Duration(secs) * time.Second

	idle := int(c.RoomIdleTimeout.Seconds())
	num("ROOM_IDLE_SECONDS", &idle)
	c.RoomIdleTimeout = time.Duration(idle) * time.Second

	if v := strings.TrimSpace(getenv("CLIENT_CLOCK")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CLIENT_CLOCK: %w", err))
		}
		c.ClientClock = b
	}
	if v := strings.TrimSpace(getenv("GUESS_RATE")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("GUESS_RATE: %w", err))
		}
		c.GuessRate = f
	}
	if v := strings.TrimSpace(getenv("CLUE_THRESHOLDS")); v != "" {
		th, err := parseThresholds(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CLUE_THRESHOLDS: %w", err))
		}
		c.ClueThresholds = th
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

func parseThresholds(v string) ([]float64, error) {
	parts := strings.Split(v, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.RoundDuration <= 0 {
		errs = append(errs, errors.New("round duration must be positive"))
	}
	if c.MinPlayers < 2 {
		errs = append(errs, errors.New("at least two players are needed for a round"))
	}
	if c.RoomIdleTimeout <= 0 {
		errs = append(errs, errors.New("room idle timeout must be positive"))
	}
	if c.CloseGuessDistance < 0 {
		errs = append(errs, errors.New("close guess distance cannot be negative"))
	}
	if c.GuessRate <= 0 || c.GuessBurst < 1 {
		errs = append(errs, errors.New("guess rate and burst must be positive"))
	}
	if len(c.ClueThresholds) > game.MaxExtraClues {
		errs = append(errs, fmt.Errorf("at most %d clue thresholds, got %d", game.MaxExtraClues, len(c.ClueThresholds)))
	}
	prev := 1.0
	for _, f := range c.ClueThresholds {
		if f <= 0 || f >= prev {
			errs = append(errs, fmt.Errorf("clue thresholds must fall strictly between 1 and 0, got %v", c.ClueThresholds))
			break
		}
		prev = f
	}
	return errors.Join(errs...)
}

func (c Config) Game() game.Config {
	return game.Config{
		RoundDuration:      c.RoundDuration,
		ClueThresholds:     c.ClueThresholds,
		MinPlayers:         c.MinPlayers,
		CloseGuessDistance: c.CloseGuessDistance,
	}
}
