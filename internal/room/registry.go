package room

import (
	"math/rand"
	"sync"
	"time"
)

// codeAlphabet skips visually ambiguous characters (0/O, 1/I/L) so codes
// survive being read aloud or retyped.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 4

// Registry owns the mapping from room code to live room. Codes are unique
// among live rooms; collisions regenerate under the registry lock so
// concurrent creates cannot race a duplicate.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rng   *rand.Rand
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *Registry) Create() *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		code := g.newCodeLocked()
		if _, taken := g.rooms[code]; taken {
			continue
		}
		rm := New(code)
		g.rooms[code] = rm
		return rm
	}
}

func (g *Registry) newCodeLocked() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[g.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func (g *Registry) Get(id string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rm, ok := g.rooms[id]
	return rm, ok
}

func (g *Registry) Delete(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, id)
}

func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Close stops all pending eviction timers and drops every room.
func (g *Registry) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, rm := range g.rooms {
		rm.StopTimers()
	}
	g.rooms = make(map[string]*Room)
}

// FindByToken scans live rooms for a member holding token. Linear on the
// number of rooms, which stays small; an index would only pay off past a
// few hundred concurrent rooms.
func (g *Registry) FindByToken(token string) (*Room, bool) {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, rm := range g.rooms {
		rooms = append(rooms, rm)
	}
	g.mu.Unlock()

	for _, rm := range rooms {
		if rm.HasToken(token) {
			return rm, true
		}
	}
	return nil, false
}
