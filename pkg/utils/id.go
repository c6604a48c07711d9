package utils

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// unambiguous characters only, codes get read out loud
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeLen = 6

// NewRoomCode returns a short shareable room code.
func NewRoomCode() string {
	b := make([]byte, roomCodeLen)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = roomCodeAlphabet[int(b[i])%len(roomCodeAlphabet)]
	}
	return string(b)
}

// NewPlayerID identifies one websocket connection.
func NewPlayerID() string {
	return uuid.NewString()
}
