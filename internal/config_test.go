package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig 測試配置載入
func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")

		cfg, err := LoadConfig("")
		require.NoError(t, err)

		assert.Equal(t, 10000, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Setenv("PORT", "")

		path := filepath.Join(t.TempDir(), "config.yaml")
		content := []byte("server:\n  port: 9000\nlog:\n  level: debug\n  format: json\n")
		require.NoError(t, os.WriteFile(path, content, 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)

		// 檔案沒提到的欄位保留預設值
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	})

	t.Run("PORT env wins", func(t *testing.T) {
		t.Setenv("PORT", "8123")

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, 8123, cfg.Server.Port)
	})

	t.Run("invalid PORT env", func(t *testing.T) {
		t.Setenv("PORT", "not-a-port")

		_, err := LoadConfig("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
