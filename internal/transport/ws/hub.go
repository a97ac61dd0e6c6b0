package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Candidate message types
const (
	MsgDraft            MessageType = "draft"
	MsgAnswer           MessageType = "answer"

	MsgCountdown        MessageType = "countdown"
	MsgEvaluationResult MessageType = "evaluation_result"
	MsgNextQuestion     MessageType = "next_question"
	MsgSessionFinished  MessageType = "session_finished"
	MsgError            MessageType = "error"
)

// Dashboard message types
const (
	MsgSessionCreated MessageType = "session_created"
	MsgSessionDeleted MessageType = "session_deleted"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for sessions and the interviewer dashboard
type Hub struct {
	// sessionID -> connections (one candidate may have several tabs open)
	sessionConns   map[string]map[*Connection]struct{}
	dashboardConns map[*Connection]struct{}

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string // Empty for dashboard connections
	Send      chan []byte
	Hub       *Hub
}

// IsDashboard reports whether the connection watches all sessions
func (c *Connection) IsDashboard() bool {
	return c.SessionID == ""
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID   string // Empty means dashboard
	ToDashboard bool
	To          *Connection // single recipient, overrides the fields above
	Message     *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		sessionConns:   make(map[string]map[*Connection]struct{}),
		dashboardConns: make(map[*Connection]struct{}),
		register:       make(chan *Connection),
		unregister:     make(chan *Connection),
		broadcast:      make(chan *BroadcastMessage, 256),
		disconnect:     make(chan string),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsDashboard() {
				h.dashboardConns[conn] = struct{}{}
				log.Println("Dashboard watcher connected")
			} else {
				if h.sessionConns[conn.SessionID] == nil {
					h.sessionConns[conn.SessionID] = make(map[*Connection]struct{})
				}
				h.sessionConns[conn.SessionID][conn] = struct{}{}
				log.Printf("Candidate connected to session %s", conn.SessionID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			h.remove(conn)
			h.mu.Unlock()

		case sessionID := <-h.disconnect:
			h.mu.Lock()
			for conn := range h.sessionConns[sessionID] {
				h.remove(conn)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			targets := h.dashboardConns
			switch {
			case msg.To != nil:
				targets = nil
				if h.registered(msg.To) {
					targets = map[*Connection]struct{}{msg.To: {}}
				}
			case !msg.ToDashboard:
				targets = h.sessionConns[msg.SessionID]
			}
			for conn := range targets {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// remove closes conn.Send exactly once; callers hold h.mu
func (h *Hub) remove(conn *Connection) {
	if conn.IsDashboard() {
		if _, ok := h.dashboardConns[conn]; ok {
			delete(h.dashboardConns, conn)
			close(conn.Send)
			log.Println("Dashboard watcher disconnected")
		}
		return
	}

	conns, ok := h.sessionConns[conn.SessionID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		close(conn.Send)
		log.Printf("Candidate disconnected from session %s", conn.SessionID)
	}
	if len(conns) == 0 {
		delete(h.sessionConns, conn.SessionID)
	}
}

// registered expects h.mu to be held
func (h *Hub) registered(conn *Connection) bool {
	if conn.IsDashboard() {
		_, ok := h.dashboardConns[conn]
		return ok
	}
	_, ok := h.sessionConns[conn.SessionID][conn]
	return ok
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToSession sends a message to every connection watching a session (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToDashboard sends a message to interviewer dashboards (implements service.Broadcaster)
func (h *Hub) BroadcastToDashboard(msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		ToDashboard: true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// Reply sends a message to one connection, if it is still registered
func (h *Hub) Reply(conn *Connection, msgType MessageType, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		To:      conn,
		Message: &Message{Type: msgType, Payload: data},
	}
}

// DisconnectSession closes every connection of a session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	h.disconnect <- sessionID
}
