package websocket

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/apperror"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/usecase"
)

// readPump - reads frames until the client goes away, then reports the disconnect.
func (that *Server) readPump(ctx context.Context, c *connection) {
	log := that.logger.With("method", "readPump", "connID", c.id)

	defer func() {
		that.hub.unregister(c)
		that.dispatcher.Disconnect(c.id)
		c.conn.Close()

		log.Info("WebSocket connection closed")
	}()

	c.conn.SetReadLimit(that.conf.ReadLimit)
	that.extendReadDeadline(c)
	c.conn.SetPongHandler(func(string) error {
		that.extendReadDeadline(c)
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		that.extendReadDeadline(c)

		if messageType != websocket.TextMessage {
			continue
		}

		that.handleMessage(ctx, c, data)
	}
}

func (that *Server) extendReadDeadline(c *connection) {
	if err := c.conn.SetReadDeadline(time.Now().Add(that.conf.PongWait)); err != nil {
		that.logger.Debug("failed to set read deadline", "connID", c.id, "error", err)
	}
}

func (that *Server) handleMessage(ctx context.Context, c *connection, data []byte) {
	log := that.logger.With("method", "handleMessage", "connID", c.id)

	event, err := decodeMessage(data)
	if err != nil {
		log.Warn("failed to decode message", "error", err)
		that.hub.Send(c.id, usecase.ActionErrorMsg, usecase.MsgMalformed)
		return
	}

	err = that.dispatcher.Dispatch(ctx, c.id, event)

	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrRoomNotFound),
		errors.Is(err, apperror.ErrRoomFull),
		errors.Is(err, apperror.ErrNotInRoom):
		log.Info("event rejected", "action", event.Action, "reason", err)
	case errors.Is(err, apperror.ErrUnknownAction),
		errors.Is(err, apperror.ErrMalformedEvent):
		log.Warn("bad event", "action", event.Action, "error", err)
	default:
		log.Error("error processing message", "action", event.Action, "error", err)
	}
}

// writePump - drains the send queue onto the socket and keeps the connection alive with pings.
func (that *Server) writePump(c *connection) {
	ticker := time.NewTicker(that.conf.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(that.conf.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				that.logger.Debug("failed to write message", "connID", c.id, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(that.conf.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
