package room

import (
	"errors"
	"sort"
	"sync"
	"time"

	"xo-arena/internal/game"
)

var (
	ErrRoomFull      = errors.New("room_full")
	ErrNotAMember    = errors.New("not_a_member")
	ErrNotYourTurn   = errors.New("not_your_turn")
	ErrGameOver      = errors.New("game_over")
	ErrInvalidCell   = errors.New("invalid_cell")
	ErrPositionTaken = errors.New("position_taken")
)

// ConnID identifies a live connection. It is an opaque value decoupled from
// the underlying socket so a reconnect can swap it without touching the rest
// of the player record.
type ConnID string

// Player is a room member. Token is the sole reconnection credential and
// never changes for the lifetime of the membership; ID changes on reconnect.
type Player struct {
	ID    ConnID
	Name  string
	Role  game.Mark
	Token string
}

type Scores struct {
	X     int `json:"X"`
	O     int `json:"O"`
	Draws int `json:"draws"`
}

type Message struct {
	From ConnID `json:"from"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// Room holds one match between two players. All mutable state is guarded by
// mu; every mutation appears atomic to other operations on the same room.
type Room struct {
	ID string

	mu            sync.Mutex
	players       map[ConnID]*Player
	board         game.Board
	currentPlayer game.Mark
	gameActive    bool
	scores        Scores
	messages      []Message
	winningCells  *[3]int
	lastStarting  game.Mark
	evictions     map[ConnID]*time.Timer
}

func New(id string) *Room {
	return &Room{
		ID:            id,
		players:       make(map[ConnID]*Player),
		currentPlayer: game.MarkX,
		gameActive:    true,
		lastStarting:  game.MarkX,
		evictions:     make(map[ConnID]*time.Timer),
	}
}

// AddPlayer registers a new member. The first joiner gets X, the second O.
// An identity that is already a member gets its existing grant back: role
// and token are fixed for the lifetime of the membership, so a duplicate
// join must never reassign them.
func (r *Room) AddPlayer(id ConnID, name string) (Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		return *p, nil
	}
	if len(r.players) >= 2 {
		return Player{}, ErrRoomFull
	}
	role := game.MarkX
	for _, p := range r.players {
		if p.Role == game.MarkX {
			role = game.MarkO
		}
	}
	p := &Player{ID: id, Name: name, Role: role, Token: NewToken()}
	r.players[id] = p
	return *p, nil
}

func (r *Room) Player(id ConnID) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0
}

// Members returns the connection identities of all current players.
func (r *Room) Members() []ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]ConnID, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	return ids
}

func (r *Room) HasToken(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.Token == token {
			return true
		}
	}
	return false
}

// ApplyMove validates and places a mark, then settles the round state:
// win freezes the game and records the winning cells, draw freezes it,
// otherwise the turn alternates.
func (r *Room) ApplyMove(id ConnID, cell int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return ErrNotAMember
	}
	if !r.gameActive {
		return ErrGameOver
	}
	if cell < 0 || cell > 8 {
		return ErrInvalidCell
	}
	if p.Role != r.currentPlayer {
		return ErrNotYourTurn
	}
	if r.board[cell] != game.Empty {
		return ErrPositionTaken
	}
	r.board[cell] = p.Role

	if win, won := game.CheckWin(r.board); won {
		r.gameActive = false
		cells := win.Cells
		r.winningCells = &cells
		switch win.Winner {
		case game.MarkX:
			r.scores.X++
		case game.MarkO:
			r.scores.O++
		}
		return nil
	}
	if game.CheckDraw(r.board) {
		r.gameActive = false
		r.scores.Draws++
		return nil
	}
	r.currentPlayer = r.currentPlayer.Other()
	return nil
}

// Reset starts a fresh round. The starting mark alternates between rounds;
// scores and chat history are kept.
func (r *Room) Reset(id ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return ErrNotAMember
	}
	r.board = game.Board{}
	r.winningCells = nil
	r.gameActive = true
	start := r.lastStarting.Other()
	r.currentPlayer = start
	r.lastStarting = start
	return nil
}

// AppendMessage adds a chat entry and returns the full log for broadcast.
func (r *Room) AppendMessage(id ConnID, text string) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, ErrNotAMember
	}
	r.messages = append(r.messages, Message{From: id, Name: p.Name, Text: text})
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out, nil
}

// Reconnect hands the membership holding token over to a new connection
// identity, cancelling any pending eviction for the old one. Returns the
// player and the identity it was registered under, or false if no member
// holds the token (already evicted or never existed).
func (r *Room) Reconnect(token string, newID ConnID) (Player, ConnID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for oldID, p := range r.players {
		if p.Token != token {
			continue
		}
		if t, ok := r.evictions[oldID]; ok {
			t.Stop()
			delete(r.evictions, oldID)
		}
		delete(r.players, oldID)
		p.ID = newID
		r.players[newID] = p
		return *p, oldID, true
	}
	return Player{}, "", false
}

// ScheduleEviction arms the grace timer for a disconnected player. At most
// one timer exists per identity; arming twice is a no-op. onEvict runs only
// when the timer actually removed the player.
func (r *Room) ScheduleEviction(id ConnID, grace time.Duration, onEvict func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return
	}
	if _, armed := r.evictions[id]; armed {
		return
	}
	token := p.Token
	r.evictions[id] = time.AfterFunc(grace, func() {
		if r.evict(id, token) {
			onEvict()
		}
	})
}

// evict removes the player unless the timer was cancelled or the token was
// reclaimed by a reconnect in the meantime.
func (r *Room) evict(id ConnID, token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, armed := r.evictions[id]; !armed {
		return false
	}
	delete(r.evictions, id)
	p, ok := r.players[id]
	if !ok || p.Token != token {
		return false
	}
	delete(r.players, id)
	return true
}

// StopTimers disarms every pending eviction timer. Used on teardown.
func (r *Room) StopTimers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.evictions {
		t.Stop()
		delete(r.evictions, id)
	}
}

// CancelEviction disarms the pending timer for id, if any.
func (r *Room) CancelEviction(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.evictions[id]; ok {
		t.Stop()
		delete(r.evictions, id)
	}
}

type PlayerView struct {
	Name      string    `json:"name"`
	Role      game.Mark `json:"role"`
	Connected bool      `json:"connected"`
}

// State is the canonical snapshot re-sent wholesale after every mutation.
type State struct {
	RoomID        string       `json:"roomId"`
	Players       []PlayerView `json:"players"`
	Board         game.Board   `json:"board"`
	CurrentPlayer game.Mark    `json:"currentPlayer"`
	GameActive    bool         `json:"gameActive"`
	Scores        Scores       `json:"scores"`
	Messages      []Message    `json:"messages"`
	WinningCells  *[3]int      `json:"winningCells"`
}

func (r *Room) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]PlayerView, 0, len(r.players))
	for id, p := range r.players {
		_, pending := r.evictions[id]
		players = append(players, PlayerView{Name: p.Name, Role: p.Role, Connected: !pending})
	}
	// X first, matching join order.
	sort.Slice(players, func(i, j int) bool {
		return players[i].Role == game.MarkX && players[j].Role != game.MarkX
	})
	messages := make([]Message, len(r.messages))
	copy(messages, r.messages)
	var winning *[3]int
	if r.winningCells != nil {
		cells := *r.winningCells
		winning = &cells
	}
	return State{
		RoomID:        r.ID,
		Players:       players,
		Board:         r.board,
		CurrentPlayer: r.currentPlayer,
		GameActive:    r.gameActive,
		Scores:        r.scores,
		Messages:      messages,
		WinningCells:  winning,
	}
}
