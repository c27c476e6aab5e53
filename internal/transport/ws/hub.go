package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for rooms. It implements
// service.Broadcaster; a single run loop serializes delivery, so events
// reach a room's clients in the order services emitted them.
type Hub struct {
	// roomCode -> playerID -> conn
	conns map[string]map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *broadcastMessage
}

// Connection represents one player's WebSocket connection
type Connection struct {
	RoomCode string
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

type broadcastMessage struct {
	roomCode   string
	toPlayer   string // empty means every player in the room
	disconnect bool
	message    *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *broadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.RoomCode] == nil {
				h.conns[conn.RoomCode] = make(map[string]*Connection)
			}
			// A reconnect replaces the stale connection
			if existing, ok := h.conns[conn.RoomCode][conn.PlayerID]; ok {
				close(existing.Send)
			}
			h.conns[conn.RoomCode][conn.PlayerID] = conn
			h.mu.Unlock()
			log.Printf("player %s connected to room %s", conn.PlayerID, conn.RoomCode)

		case conn := <-h.unregister:
			h.mu.Lock()
			if players, ok := h.conns[conn.RoomCode]; ok {
				if existing, ok := players[conn.PlayerID]; ok && existing == conn {
					delete(players, conn.PlayerID)
					close(conn.Send)
					if len(players) == 0 {
						delete(h.conns, conn.RoomCode)
					}
					log.Printf("player %s disconnected from room %s", conn.PlayerID, conn.RoomCode)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.disconnect {
				h.closeRoom(msg.roomCode)
				continue
			}

			h.mu.RLock()
			data, _ := json.Marshal(msg.message)
			if players, ok := h.conns[msg.roomCode]; ok {
				if msg.toPlayer != "" {
					if conn, ok := players[msg.toPlayer]; ok {
						h.send(conn, data)
					}
				} else {
					for _, conn := range players {
						h.send(conn, data)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// send delivers without blocking the run loop; slow clients drop messages
func (h *Hub) send(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
	}
}

func (h *Hub) closeRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if players, ok := h.conns[roomCode]; ok {
		for _, conn := range players {
			close(conn.Send)
		}
		delete(h.conns, roomCode)
		log.Printf("room %s connections closed", roomCode)
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToRoom sends an event to every player in a room
// (implements service.Broadcaster)
func (h *Hub) BroadcastToRoom(roomCode string, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &broadcastMessage{
		roomCode: roomCode,
		message:  &Message{Event: event, Payload: data},
	}
}

// BroadcastToPlayer sends an event to one player in a room
// (implements service.Broadcaster)
func (h *Hub) BroadcastToPlayer(roomCode, playerID string, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &broadcastMessage{
		roomCode: roomCode,
		toPlayer: playerID,
		message:  &Message{Event: event, Payload: data},
	}
}

// DisconnectRoom closes every connection in a room
// (implements service.Broadcaster)
func (h *Hub) DisconnectRoom(roomCode string) {
	h.broadcast <- &broadcastMessage{
		roomCode:   roomCode,
		disconnect: true,
	}
}
