package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/usecase"
)

const defaultSendBuffer = 64

type connection struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (that *connection) closeSend() {
	that.closeOnce.Do(func() {
		close(that.send)
	})
}

// Hub tracks every open connection and delivers outbound events to their send queues.
// Enqueueing never blocks: a connection whose queue is full loses the message.
type Hub struct {
	logger     *slog.Logger
	sendBuffer int

	mu    sync.RWMutex
	conns map[string]*connection
}

func NewHub(logger *slog.Logger, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}

	return &Hub{
		logger:     logger.With("component", "hub"),
		sendBuffer: sendBuffer,
		conns:      make(map[string]*connection),
	}
}

// register - assigns a fresh id to conn and starts tracking it.
func (that *Hub) register(conn *websocket.Conn) *connection {
	c := &connection{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, that.sendBuffer),
	}

	that.mu.Lock()
	that.conns[c.id] = c
	that.mu.Unlock()

	return c
}

// unregister - stops tracking c and closes its queue. Safe to call more than once.
func (that *Hub) unregister(c *connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.conns[c.id]; ok && current == c {
		delete(that.conns, c.id)
	}

	c.closeSend()
}

// Send - queues an event for one connection. Unknown connections are ignored.
func (that *Hub) Send(connID string, action usecase.Action, payload any) {
	log := that.logger.With("method", "Send", "connID", connID, "action", action)

	data, err := encodeMessage(action, payload)
	if err != nil {
		log.Error("failed to encode message", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	c, ok := that.conns[connID]
	if !ok {
		log.Debug("connection is gone, message dropped")
		return
	}

	that.enqueue(c, data)
}

// Broadcast - queues an event for every open connection.
func (that *Hub) Broadcast(action usecase.Action, payload any) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "method", "Broadcast", "action", action, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, c := range that.conns {
		that.enqueue(c, data)
	}
}

func (that *Hub) enqueue(c *connection, data []byte) {
	select {
	case c.send <- data:
	default:
		that.logger.Warn("send queue is full, message dropped", "connID", c.id)
	}
}

func (that *Hub) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.conns)
}

// Close - closes every connection; their write loops send a close frame and exit.
func (that *Hub) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, c := range that.conns {
		c.closeSend()
		delete(that.conns, id)
	}
}
