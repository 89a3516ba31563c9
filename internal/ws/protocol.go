package ws

// Inbound frames. Every frame carries a "type" discriminator; unknown or
// malformed frames are skipped by the read loop.

type CreateRoomMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type JoinRoomMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Name   string `json:"playerName"`
}

type FindOpponentMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type MakeMoveMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Cell   int    `json:"cellIndex"`
}

type ResetGameMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type SendMessageMessage struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type ReconnectMessage struct {
	Type  string `json:"type"`
	Token string `json:"playerToken"`
}
