package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"xo-arena/internal/room"
)

// Bus is the outbound half of the transport: deliver one event to one
// connection. Room-scoped broadcast is the coordinator looping over
// members, so the transport stays a dumb pipe.
type Bus interface {
	Send(id room.ConnID, event any)
}

type waiter struct {
	id   room.ConnID
	name string
}

// Coordinator resolves connection identity, runs the join/matchmaking/
// reconnect protocol, and drives the per-room state machine. Gameplay
// mutations are serialized by each room's own lock; the coordinator lock
// only covers the conn-to-room index and the matchmaking queue, so
// unrelated rooms never contend.
type Coordinator struct {
	bus      Bus
	registry *room.Registry
	grace    time.Duration

	mu      sync.Mutex
	byConn  map[room.ConnID]string
	waiting []waiter
}

func NewCoordinator(bus Bus, registry *room.Registry, grace time.Duration) *Coordinator {
	return &Coordinator{
		bus:      bus,
		registry: registry,
		grace:    grace,
		byConn:   make(map[room.ConnID]string),
	}
}

func (c *Coordinator) track(id room.ConnID, roomID string) {
	c.mu.Lock()
	c.byConn[id] = roomID
	c.mu.Unlock()
}

// memberOf reports which room, if any, the connection currently belongs to.
func (c *Coordinator) memberOf(conn room.ConnID) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	roomID, ok := c.byConn[conn]
	return roomID, ok
}

// CreateRoom opens a fresh room with the caller as sole member and mark X.
// A connection is a member of at most one room, so a caller that already
// belongs somewhere is rejected rather than leaving a phantom membership
// behind. Events from one connection are serialized by its read loop, so
// the check cannot race another operation on the same identity.
func (c *Coordinator) CreateRoom(conn room.ConnID, name string) {
	if _, ok := c.memberOf(conn); ok {
		c.bus.Send(conn, RoomError{Type: "roomError", Message: "already in a room"})
		return
	}
	rm := c.registry.Create()
	p, err := rm.AddPlayer(conn, displayName(name))
	if err != nil {
		c.bus.Send(conn, RoomError{Type: "roomError", Message: "could not create room"})
		return
	}
	c.track(conn, rm.ID)
	roomsCreatedTotal.Add(1)
	log.Info().Str("room", rm.ID).Str("player", p.Name).Msg("room_created")
	c.bus.Send(conn, RoomCreated{Type: "roomCreated", RoomID: rm.ID, Token: p.Token, Role: p.Role})
	c.broadcastState(rm)
}

// JoinRoom adds the caller to an existing room as mark O. Re-joining the
// room the caller is already in re-sends the original grant; joining a
// different room while still a member is rejected.
func (c *Coordinator) JoinRoom(conn room.ConnID, roomID, name string) {
	if current, ok := c.memberOf(conn); ok && current != roomID {
		c.bus.Send(conn, RoomError{Type: "roomError", Message: "already in a room"})
		return
	}
	rm, ok := c.registry.Get(roomID)
	if !ok {
		c.bus.Send(conn, RoomError{Type: "roomError", Message: "room not found"})
		return
	}
	p, err := rm.AddPlayer(conn, displayName(name))
	if err != nil {
		c.bus.Send(conn, RoomError{Type: "roomError", Message: "room is full"})
		return
	}
	c.track(conn, rm.ID)
	log.Info().Str("room", rm.ID).Str("player", p.Name).Msg("room_joined")
	c.bus.Send(conn, RoomJoined{Type: "roomJoined", RoomID: rm.ID, Token: p.Token, Role: p.Role})
	c.broadcastState(rm)
}

// FindOpponent pairs the caller with the oldest waiter, or queues them.
// The waiter who was first in line gets mark X. The pop-pair-index
// sequence stays inside one critical section: a waiter's Disconnect either
// finds the queue entry (before pairing) or the byConn entry (after), never
// a gap where the waiter is in neither and no eviction gets armed.
func (c *Coordinator) FindOpponent(conn room.ConnID, name string) {
	name = displayName(name)

	c.mu.Lock()
	if _, ok := c.byConn[conn]; ok {
		c.mu.Unlock()
		c.bus.Send(conn, RoomError{Type: "roomError", Message: "already in a room"})
		return
	}
	for i := range c.waiting {
		if c.waiting[i].id == conn {
			c.waiting[i].name = name
			c.mu.Unlock()
			c.bus.Send(conn, WaitingForOpponent{Type: "waitingForOpponent"})
			return
		}
	}
	if len(c.waiting) == 0 {
		c.waiting = append(c.waiting, waiter{id: conn, name: name})
		c.mu.Unlock()
		c.bus.Send(conn, WaitingForOpponent{Type: "waitingForOpponent"})
		return
	}
	w := c.waiting[0]
	c.waiting = c.waiting[1:]
	rm := c.registry.Create()
	pw, _ := rm.AddPlayer(w.id, w.name)
	pn, _ := rm.AddPlayer(conn, name)
	c.byConn[w.id] = rm.ID
	c.byConn[conn] = rm.ID
	c.mu.Unlock()

	matchesPairedTotal.Add(1)
	log.Info().Str("room", rm.ID).Str("waiter", pw.Name).Str("arrival", pn.Name).Msg("match_paired")
	c.bus.Send(w.id, OpponentFound{Type: "opponentFound", RoomID: rm.ID, Token: pw.Token, Role: pw.Role})
	c.bus.Send(conn, OpponentFound{Type: "opponentFound", RoomID: rm.ID, Token: pn.Token, Role: pn.Role})
	c.broadcastState(rm)
}

// CancelFindOpponent drops the caller's queue entry. No-op if absent,
// which covers late cancels after pairing or disconnect.
func (c *Coordinator) CancelFindOpponent(conn room.ConnID) {
	c.removeWaiter(conn)
}

func (c *Coordinator) removeWaiter(conn room.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.waiting {
		if c.waiting[i].id == conn {
			c.waiting = append(c.waiting[:i], c.waiting[i+1:]...)
			return
		}
	}
}

// MakeMove applies a move. Invalid moves are dropped without a reply;
// they indicate a stale or misbehaving client, never a server fault.
func (c *Coordinator) MakeMove(conn room.ConnID, roomID string, cell int) {
	rm, ok := c.registry.Get(roomID)
	if !ok {
		log.Debug().Str("room", roomID).Msg("move_unknown_room")
		return
	}
	if err := rm.ApplyMove(conn, cell); err != nil {
		log.Debug().Str("room", roomID).Int("cell", cell).Err(err).Msg("move_rejected")
		return
	}
	movesTotal.Add(1)
	c.broadcastState(rm)
}

// ResetGame starts a new round with the starting mark alternated.
func (c *Coordinator) ResetGame(conn room.ConnID, roomID string) {
	rm, ok := c.registry.Get(roomID)
	if !ok {
		return
	}
	if err := rm.Reset(conn); err != nil {
		log.Debug().Str("room", roomID).Err(err).Msg("reset_rejected")
		return
	}
	log.Info().Str("room", rm.ID).Msg("round_reset")
	c.broadcastState(rm)
}

// SendMessage appends a sanitized chat entry and pushes the full log to
// the room.
func (c *Coordinator) SendMessage(conn room.ConnID, roomID, text string) {
	rm, ok := c.registry.Get(roomID)
	if !ok {
		return
	}
	msgs, err := rm.AppendMessage(conn, sanitize(text))
	if err != nil {
		log.Debug().Str("room", roomID).Err(err).Msg("message_rejected")
		return
	}
	ev := MessageReceived{Type: "messageReceived", Messages: msgs}
	for _, id := range rm.Members() {
		c.bus.Send(id, ev)
	}
}

// Reconnect swaps the token holder's identity to the new connection and
// cancels the pending eviction. Concurrent attempts on one token are safe:
// only the one that finds the token still registered wins.
func (c *Coordinator) Reconnect(conn room.ConnID, token string) {
	if rm, ok := c.registry.FindByToken(token); ok {
		if p, oldID, swapped := rm.Reconnect(token, conn); swapped {
			c.mu.Lock()
			delete(c.byConn, oldID)
			c.byConn[conn] = rm.ID
			c.mu.Unlock()
			reconnectsTotal.Add(1)
			log.Info().Str("room", rm.ID).Str("player", p.Name).Msg("player_reconnected")
			c.bus.Send(conn, ReconnectSuccess{Type: "reconnectSuccess", RoomID: rm.ID})
			c.broadcastState(rm)
			return
		}
	}
	c.bus.Send(conn, ReconnectFailed{Type: "reconnectFailed"})
}

// Disconnect handles connection loss: queue removal first, then grace-period
// eviction scheduling for room members. The queue removal must come first so
// a dead waiter can never be paired.
func (c *Coordinator) Disconnect(conn room.ConnID) {
	c.removeWaiter(conn)

	c.mu.Lock()
	roomID, ok := c.byConn[conn]
	delete(c.byConn, conn)
	c.mu.Unlock()
	if !ok {
		return
	}
	rm, ok := c.registry.Get(roomID)
	if !ok {
		return
	}
	p, ok := rm.Player(conn)
	if !ok {
		return
	}
	log.Info().Str("room", rm.ID).Str("player", p.Name).Dur("grace", c.grace).Msg("player_disconnected")
	for _, id := range rm.Members() {
		if id != conn {
			c.bus.Send(id, PlayerDisconnected{Type: "playerDisconnected", Name: p.Name})
		}
	}
	rm.ScheduleEviction(conn, c.grace, func() {
		evictionsTotal.Add(1)
		if rm.Empty() {
			c.registry.Delete(rm.ID)
			log.Info().Str("room", rm.ID).Msg("room_deleted")
			return
		}
		log.Info().Str("room", rm.ID).Str("player", p.Name).Msg("player_evicted")
		c.broadcastState(rm)
	})
	c.broadcastState(rm)
}

func (c *Coordinator) broadcastState(rm *room.Room) {
	ev := RoomState{Type: "roomState", State: rm.Snapshot()}
	for _, id := range rm.Members() {
		c.bus.Send(id, ev)
	}
}
