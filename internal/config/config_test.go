package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		data := `{"log_level":"debug","store":{"backend":"badger","compress":true}}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, BackendBadger, cfg.Store.Backend)
		assert.True(t, cfg.Store.Compress)
		assert.Equal(t, DefaultStoreDir, cfg.Store.Dir)
		assert.Equal(t, 256, cfg.Store.CacheSize)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("MINIGIT_LOG_LEVEL", "error")
		t.Setenv("MINIGIT_STORE_BACKEND", BackendDir)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.LogLevel)
		assert.Equal(t, BackendDir, cfg.Store.Backend)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("MINIGIT_STORE_BACKEND", "sqlite")

		_, err := Load("")
		assert.Error(t, err)
	})
}
