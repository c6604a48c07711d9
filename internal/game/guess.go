package game

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/sakshamg567/doodlz-duel/logger"
)

// Guess scores text against the secret word for a playing player.
func (s *Session) Guess(id PlayerID, text string) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		logger.Debug("room=%s player=%s empty guess", s.roomID, id)
		return
	}
	if s.state != StatePlaying || s.round == nil {
		return
	}
	p, ok := s.players.Get(id)
	if !ok || !p.Playing {
		return
	}

	r := s.round
	if r.Guessed[id] {
		s.out.Send(id, AlreadyGuessed{})
		return
	}

	guess := strings.ToLower(raw)
	if guess != r.Word {
		s.out.Broadcast(GuessWrong{
			Player:  p.Name,
			Guess:   raw,
			Message: fmt.Sprintf("[@%s]: %s", p.Name, raw),
		})
		if limit := closeLimit(s.cfg.CloseGuessDistance, r.Word); limit > 0 {
			if dist := levenshtein.ComputeDistance(guess, r.Word); dist <= limit {
				s.out.Send(id, GuessClose{Distance: dist})
			}
		}
		return
	}

	points := Points(r.CluesGiven)
	r.Guessed[id] = true
	total := s.players.AddScore(id, points)
	logger.Info("room=%s round=%d player=%s guessed for %d points (total %d)", s.roomID, r.ID, id, points, total)

	s.out.Broadcast(GuessCorrect{Player: p.Name})
	s.out.Broadcast(ScoreUpdate(s.Standings()))

	if s.everyoneGuessed() {
		s.endRound(EndAllGuessed)
	}
}

// closeLimit shrinks the close-guess distance for short words so that a
// couple of random letters never count as close.
func closeLimit(limit int, word string) int {
	return min(limit, utf8.RuneCountInString(word)/3)
}
