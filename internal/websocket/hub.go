package websocket

import (
	"context"

	"haskify-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DisconnectChannel carries session ids whose streams must be closed on every
// instance.
const DisconnectChannel = "haskify:ws:disconnect"

// Hub tracks open tutor streams per study session so that deleting a session
// closes its sockets, here and on other instances through Redis.
type Hub struct {
	// Registered clients: SessionID -> open connections (several tabs)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client
	disconnect chan uuid.UUID
	count      chan chan int
	stopped    chan struct{}

	// Redis connection for cross-instance disconnects
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		disconnect: make(chan uuid.UUID),
		count:      make(chan chan int),
		stopped:    make(chan struct{}),
		rdb:        rdb,
		logger:     log,
	}
}

// Run owns the client map until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.clients {
				for _, c := range clients {
					c.close()
				}
			}
			h.clients = make(map[uuid.UUID][]*Client)
			return

		case client := <-h.register:
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.logger.Debug("HUB", "Stream client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.remove(client)

		case sessionID := <-h.disconnect:
			clients := h.clients[sessionID]
			for _, c := range clients {
				c.close()
			}
			delete(h.clients, sessionID)
			if len(clients) > 0 {
				h.logger.Info("HUB", "Session streams closed", map[string]interface{}{
					"session_id": sessionID,
					"clients":    len(clients),
				})
			}

		case reply := <-h.count:
			n := 0
			for _, clients := range h.clients {
				n += len(clients)
			}
			reply <- n
		}
	}
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
		client.close()
	}
}

func (h *Hub) remove(client *Client) {
	clients := h.clients[client.SessionID]
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
	}
	client.close()
}

// Disconnect closes every stream of a session on this instance and asks the
// other instances to do the same.
func (h *Hub) Disconnect(ctx context.Context, sessionID uuid.UUID) {
	select {
	case h.disconnect <- sessionID:
	case <-h.stopped:
		return
	}

	if h.rdb != nil {
		if err := h.rdb.Publish(ctx, DisconnectChannel, sessionID.String()).Err(); err != nil {
			h.logger.Warn("HUB", "Failed to publish disconnect", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}
}

// Connected returns the number of open streams on this instance.
func (h *Hub) Connected() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.stopped:
		return 0
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, DisconnectChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			sessionID, err := uuid.Parse(msg.Payload)
			if err != nil {
				h.logger.Warn("HUB", "Malformed disconnect payload", map[string]interface{}{"payload": msg.Payload})
				continue
			}
			select {
			case h.disconnect <- sessionID:
			case <-h.stopped:
				return
			}
		}
	}
}
