package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"xo-arena/internal/room"
	"xo-arena/internal/session"
)

type Client struct {
	id   room.ConnID
	conn *websocket.Conn
	send chan []byte
}

// Server is the websocket transport: it assigns each connection an opaque
// identity, decodes inbound frames into coordinator calls, and delivers
// outbound events. It implements session.Bus.
type Server struct {
	upgrader websocket.Upgrader
	coord    *session.Coordinator
	mu       sync.Mutex
	clients  map[room.ConnID]*Client
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[room.ConnID]*Client),
	}
}

// Attach wires in the coordinator. The server and coordinator reference
// each other (inbound dispatch one way, outbound delivery the other), so
// this runs after both are constructed and before serving.
func (s *Server) Attach(coord *session.Coordinator) {
	s.coord = coord
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{id: room.ConnID(uuid.NewString()), conn: conn, send: make(chan []byte, 8)}
	s.mu.Lock()
	s.clients[client.id] = client
	s.mu.Unlock()
	log.Debug().Str("conn", string(client.id)).Msg("ws_connected")

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		s.coord.Disconnect(c.id)
		_ = c.conn.Close()
		log.Debug().Str("conn", string(c.id)).Msg("ws_disconnected")
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		switch base.Type {
		case "createRoom":
			var m CreateRoomMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.coord.CreateRoom(c.id, m.Name)
		case "joinRoom":
			var m JoinRoomMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.coord.JoinRoom(c.id, m.RoomID, m.Name)
		case "findOpponent":
			var m FindOpponentMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.coord.FindOpponent(c.id, m.Name)
		case "cancelFindOpponent":
			s.coord.CancelFindOpponent(c.id)
		case "makeMove":
			var m MakeMoveMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.coord.MakeMove(c.id, m.RoomID, m.Cell)
		case "resetGame":
			var m ResetGameMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.coord.ResetGame(c.id, m.RoomID)
		case "sendMessage":
			var m SendMessageMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.coord.SendMessage(c.id, m.RoomID, m.Message)
		case "reconnectGame":
			var m ReconnectMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.coord.Reconnect(c.id, m.Token)
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	if s.clients[c.id] == c {
		delete(s.clients, c.id)
	}
	s.mu.Unlock()
	safeClose(c.send)
}

// Send implements session.Bus. Events for connections that are already
// gone are dropped.
func (s *Server) Send(id room.ConnID, event any) {
	msg, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.mu.Lock()
	c := s.clients[id]
	s.mu.Unlock()
	if c == nil {
		return
	}
	safeSend(c.send, msg)
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	ch <- msg
}
