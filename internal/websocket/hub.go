package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"procurement/internal/cache"
	"procurement/internal/token"
	"procurement/pkg/api"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is a single connected subscriber.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	role   string
}

// receives reports whether the client may see an event about a request owned by ownerID.
func (c *Client) receives(ownerID string) bool {
	return c.role == api.RoleManager || (ownerID != "" && c.userID == ownerID)
}

type message struct {
	ownerID string
	payload []byte
}

// Hub fans request lifecycle events out to managers and to the owner of the
// affected request.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Run dispatches registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.WithField("user_id", client.userID).Debug("websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.WithField("user_id", client.userID).Debug("websocket client disconnected")
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.receives(msg.ownerID) {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// slow consumer
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues event for broadcast. It never blocks the caller; events are
// dropped when the queue is full.
func (h *Hub) Publish(event api.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("failed to encode websocket event")
		return
	}
	select {
	case h.broadcast <- message{ownerID: event.Owner(), payload: payload}:
	default:
		log.WithField("type", event.Type).Warn("websocket broadcast queue full, dropping event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *Client) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}
	}
}

// ServeWs authenticates the token query parameter and upgrades the connection.
// Revoked tokens are refused like on the REST routes.
func ServeWs(hub *Hub, tokens *token.Manager, blacklist cache.TokenBlacklist, c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := tokens.Parse(tokenString)
	if err != nil || !api.ValidRole(claims.Role) {
		log.WithError(err).Info("websocket connection rejected")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	revoked, err := blacklist.IsRevoked(c.Request.Context(), tokenString)
	if err != nil {
		log.WithError(err).Error("failed to check token blacklist")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if revoked {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), userID: claims.Subject, role: claims.Role}
	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
