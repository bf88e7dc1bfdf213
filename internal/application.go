package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/catalog"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/config"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/repository"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/repository/storage"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/service"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/usecase"
	"github.com/rocketscienceinc/rhythmduel-backend/transport/rest"
	"github.com/rocketscienceinc/rhythmduel-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	songs, err := catalog.Load(conf.CatalogPath)
	if err != nil {
		return fmt.Errorf("could not load song catalog: %w", err)
	}

	log.Info("Song catalog loaded", "songs", len(songs.Songs()))

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	profileRepo := repository.NewProfileRepository(redisStorage)
	scoreRepo := repository.NewScoreRepository(redisStorage)

	profileService := service.NewProfileService(logger, profileRepo, conf.Match.DefaultRating)
	scoreService := service.NewScoreService(scoreRepo)

	hub := websocket.NewHub(logger, conf.Match.SendBuffer)
	matchmaker := usecase.NewMatchmaker(
		logger,
		usecase.NewRoomRegistry(),
		profileService,
		songs,
		hub,
		conf.Match.StartDelay,
	)

	// run reaper
	reaper := usecase.NewReaper(logger, matchmaker, conf.Match.ReapInterval)
	go reaper.Run(ctx)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		handlers := rest.NewHandlers(logger, scoreService, profileService, matchmaker)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.Routes(logger, handlers)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, hub, matchmaker, websocket.Config{})
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
