package session

import (
	"xo-arena/internal/game"
	"xo-arena/internal/room"
)

// Outbound events. Every frame carries a "type" discriminator; payload
// field names are part of the wire contract with clients.

type RoomCreated struct {
	Type   string    `json:"type"`
	RoomID string    `json:"roomId"`
	Token  string    `json:"playerToken"`
	Role   game.Mark `json:"role"`
}

type RoomJoined struct {
	Type   string    `json:"type"`
	RoomID string    `json:"roomId"`
	Token  string    `json:"playerToken"`
	Role   game.Mark `json:"role"`
}

type RoomError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type OpponentFound struct {
	Type   string    `json:"type"`
	RoomID string    `json:"roomId"`
	Token  string    `json:"playerToken"`
	Role   game.Mark `json:"role"`
}

type WaitingForOpponent struct {
	Type string `json:"type"`
}

// RoomState is the canonical-sync payload, sent to the full room after
// every mutation.
type RoomState struct {
	Type string `json:"type"`
	room.State
}

type MessageReceived struct {
	Type     string         `json:"type"`
	Messages []room.Message `json:"messages"`
}

type PlayerDisconnected struct {
	Type string `json:"type"`
	Name string `json:"playerName"`
}

type ReconnectSuccess struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type ReconnectFailed struct {
	Type string `json:"type"`
}
