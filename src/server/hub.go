package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"market-watchlist/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			s.stateMutex.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()
			return

		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			if s.latestView != nil {
				client.send <- *s.latestView
			}
			s.stateMutex.Unlock()
			s.Logger.Debug("Client %s connected", client.id)

		case client := <-s.unregister:
			s.stateMutex.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()

		case view := <-s.broadcast:
			s.stateMutex.Lock()
			s.latestView = &view
			for client := range s.clients {
				select {
				case client.send <- view:
				default:
					// Client too slow, disconnect to keep the hub moving
					s.Logger.Warning("Dropping slow client %s", client.id)
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.stateMutex.Unlock()
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues view for every connected client. When the queue is full
// the oldest pending view is dropped.
func (s *APIServer) Broadcast(view models.MDashboardView) {
	for {
		select {
		case <-s.done:
			return
		case s.broadcast <- view:
			return
		default:
			select {
			case <-s.broadcast:
			default:
			}
		}
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan models.MDashboardView, 8),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// MClientCommand is a message sent by a websocket client.
type MClientCommand struct {
	Command string `json:"command"` // "view" or "refresh"
}

func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse command from client %s: %v, disconnecting client", client.id, err)
		client.conn.Close()
		return
	}

	switch cmd.Command {
	case "refresh":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Service.Refresh(ctx); err != nil {
			s.Logger.Warning("Refresh requested by client %s failed: %v", client.id, err)
		}
	case "view":
	default:
		return
	}

	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	select {
	case client.send <- s.Service.View():
	default:
	}
}
