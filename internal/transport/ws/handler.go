package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10 // answers arrive over the socket
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// SessionControl is what a candidate socket can do to its session
type SessionControl interface {
	Exists(id string) bool
	SaveDraft(id, draft string) error
	Submit(id, answer string) error
}

// inbound is a frame sent by a candidate
type inbound struct {
	Type   MessageType `json:"type"`
	Draft  string      `json:"draft"`
	Answer string      `json:"answer"`
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	sessions SessionControl
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, sessions SessionControl) *Handler {
	return &Handler{
		hub:      hub,
		sessions: sessions,
	}
}

// SessionWS handles GET /v1/ws/sessions/{id}
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.sessions.Exists(id) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	h.serve(w, r, id)
}

// DashboardWS handles GET /v1/ws/dashboard
func (h *Handler) DashboardWS(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "")
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, sessionID string) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		Hub:       h.hub,
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		if conn.IsDashboard() {
			continue
		}
		h.handleInbound(conn, data)
	}
}

// handleInbound applies a draft or answer frame to the connection's session
func (h *Handler) handleInbound(conn *Connection, data []byte) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		h.hub.Reply(conn, MsgError, map[string]string{"error": "invalid message"})
		return
	}

	var err error
	switch in.Type {
	case MsgDraft:
		err = h.sessions.SaveDraft(conn.SessionID, in.Draft)
	case MsgAnswer:
		err = h.sessions.Submit(conn.SessionID, in.Answer)
	default:
		return
	}
	if err != nil {
		h.hub.Reply(conn, MsgError, map[string]string{"error": err.Error()})
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
