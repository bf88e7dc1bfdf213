package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/usecase"
)

var errEmptyAction = errors.New("message has no action")

const (
	defaultPingInterval = 54 * time.Second
	defaultPongWait     = 60 * time.Second
	defaultWriteWait    = 10 * time.Second
	defaultReadLimit    = 64 * 1024

	shutdownTimeout = 5 * time.Second
)

type dispatcher interface {
	Dispatch(ctx context.Context, connID string, event usecase.Event) error
	Disconnect(connID string)
}

// Config holds the connection keep-alive settings. Zero values fall back to the defaults.
type Config struct {
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	ReadLimit    int64
}

func (that Config) withDefaults() Config {
	if that.PingInterval <= 0 {
		that.PingInterval = defaultPingInterval
	}
	if that.PongWait <= 0 {
		that.PongWait = defaultPongWait
	}
	if that.WriteWait <= 0 {
		that.WriteWait = defaultWriteWait
	}
	if that.ReadLimit <= 0 {
		that.ReadLimit = defaultReadLimit
	}

	return that
}

type Server struct {
	logger     *slog.Logger
	hub        *Hub
	dispatcher dispatcher
	upgrader   websocket.Upgrader
	conf       Config
}

func New(logger *slog.Logger, hub *Hub, dispatcher dispatcher, conf Config) *Server {
	return &Server{
		logger:     logger.With("component", "websocket"),
		hub:        hub,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		conf: conf.withDefaults(),
	}
}

// Handler - routes of the WebSocket server.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", that.upgradeToWebSocket)

	return mux
}

// Start - starts WebSocket server. It returns once ctx is done and every connection is closed.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		that.hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket and serves it until it closes.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := that.hub.register(conn)

	log.Info("WebSocket connection established", "connID", c.id, "remote", req.RemoteAddr)

	go that.writePump(c)
	that.readPump(req.Context(), c)
}
