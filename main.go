package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/rhythmduel-backend/internal"
	"github.com/rocketscienceinc/rhythmduel-backend/internal/config"
)

const defaultConfigFile = "config.yml"

// main - boots the duel server: config, logger, then the room coordinator with its listeners.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "rhythmduel: fatal: %v\n", err)
			os.Exit(1)
		}
	}()

	configPath := resolveConfigPath()
	conf := config.MustLoad(configPath)
	logger := newLogger(conf.LogLevel)

	logger.Info("rhythmduel starting",
		"config", configPath,
		"httpPort", conf.HTTPPort,
		"socketPort", conf.SocketPort,
		"catalog", catalogSource(conf.CatalogPath),
		"startDelay", conf.Match.StartDelay,
	)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// resolveConfigPath - CONFIG_PATH wins, otherwise config.yml next to the working directory.
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return filepath.Join(baseDir, defaultConfigFile)
}

// newLogger - JSON logs on stdout at the configured level; an unknown level falls back to info.
func newLogger(levelName string) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded"
	}

	return path
}
