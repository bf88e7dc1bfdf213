package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("Honors the configured level", func(t *testing.T) {
		// Given: a warn level
		// When: building the logger
		logger := newLogger("WARN")

		// Then: info is filtered and warn passes
		assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
		assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
	})

	t.Run("Falls back to info for an unknown level", func(t *testing.T) {
		logger := newLogger("chatty")

		assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
		assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	})
}

func TestResolveConfigPath(t *testing.T) {
	t.Run("Prefers CONFIG_PATH", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", "/etc/rhythmduel/config.yml")

		assert.Equal(t, "/etc/rhythmduel/config.yml", resolveConfigPath())
	})

	t.Run("Defaults to config.yml in the working directory", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", "")
		wd, err := os.Getwd()
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(wd, "config.yml"), resolveConfigPath())
	})
}

func TestCatalogSource(t *testing.T) {
	t.Run("Names the embedded catalog when no path is set", func(t *testing.T) {
		assert.Equal(t, "embedded", catalogSource(""))
		assert.Equal(t, "/srv/songs.yml", catalogSource("/srv/songs.yml"))
	})
}
