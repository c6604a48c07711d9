package room

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sakshamg567/doodlz-duel/logger"
	"github.com/sakshamg567/doodlz-duel/pkg/utils"
)

var ErrRoomNotFound = errors.New("room not found")

const snapshotTimeout = 2 * time.Second

type RoomManager struct {
	Rooms map[string]*Room
	sync.RWMutex
	opts Options
}

func NewRoomManager(opts Options) *RoomManager {
	return &RoomManager{
		Rooms: make(map[string]*Room),
		opts:  opts,
	}
}

// CreateRoom registers a room under a fresh id and starts its loop.
func (rm *RoomManager) CreateRoom() *Room {
	rm.Lock()
	roomID := utils.NewRoomCode()
	for rm.Rooms[roomID] != nil {
		roomID = utils.NewRoomCode()
	}
	room := NewRoom(roomID, rm.opts)
	rm.Rooms[roomID] = room
	rm.Unlock()

	go room.Run(rm)
	logger.Info("Room %s created", roomID)
	return room
}

func (rm *RoomManager) GetRoom(id string) (*Room, bool) {
	rm.RLock()
	defer rm.RUnlock()
	r, ok := rm.Rooms[id]
	return r, ok
}

func (rm *RoomManager) remove(id string) {
	rm.Lock()
	delete(rm.Rooms, id)
	rm.Unlock()
}

// Snapshots collects every live room, ordered by id.
func (rm *RoomManager) Snapshots(ctx context.Context) []Snapshot {
	rm.RLock()
	rooms := make([]*Room, 0, len(rm.Rooms))
	for _, r := range rm.Rooms {
		rooms = append(rooms, r)
	}
	rm.RUnlock()

	out := make([]Snapshot, 0, len(rooms))
	for _, r := range rooms {
		s, err := r.Snapshot(ctx)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

func (rm *RoomManager) CreateRoomHandler(c *fiber.Ctx) error {
	room := rm.CreateRoom()
	return c.JSON(fiber.Map{
		"roomId": room.ID,
	})
}

func (rm *RoomManager) ListRoomsHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), snapshotTimeout)
	defer cancel()
	return c.JSON(rm.Snapshots(ctx))
}

func (rm *RoomManager) RoomHandler(c *fiber.Ctx) error {
	r, ok := rm.GetRoom(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrRoomNotFound.Error()})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), snapshotTimeout)
	defer cancel()
	s, err := r.Snapshot(ctx)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		logger.Error("Snapshot of room %s failed: %v", r.ID, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "room busy"})
	}
	return c.JSON(s)
}
