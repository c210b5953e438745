package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/hexclash/hexclash-server-go/internal/game"
	"github.com/hexclash/hexclash-server-go/internal/game/board"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 256, cfg.Server.SendQueue)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data/cards.yaml", cfg.Catalog.Path)
	assert.Equal(t, 8*time.Second, cfg.Flavor.Timeout)

	want := game.DefaultSettings()
	assert.Equal(t, want, cfg.Settings())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
rules:
  starting_mana: 5
  max_turns: 12
  category_cost_multiplier: true
board:
  geometry: hex
  radius: 2
flavor:
  timeout: 3s
match:
  seed: 99
  player_name: Tony
  player_team: [iron_man, hulk]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 3*time.Second, cfg.Flavor.Timeout)

	s := cfg.Settings()
	assert.Equal(t, 5, s.StartingMana)
	assert.Equal(t, 12, s.MaxTurns)
	assert.True(t, s.CategoryCostMultiplier)
	assert.Equal(t, board.KindHex, s.Board.Kind)
	assert.Equal(t, 2, s.Board.Radius)
	assert.Equal(t, int64(99), s.Seed)
	assert.Equal(t, [2]string{"Tony", "Opponent"}, s.PlayerNames)
	assert.Equal(t, []string{"iron_man", "hulk"}, s.Teams[0])
	assert.Empty(t, s.Teams[1])
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HEXCLASH_RULES_MAX_TURNS", "7")
	t.Setenv("HEXCLASH_FLAVOR_ENABLED", "true")
	t.Setenv("HEXCLASH_FLAVOR_API_KEY", "from-env")

	cfg, err := Load(writeConfig(t, "rules:\n  max_turns: 20\n"))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Rules.MaxTurns)
	opts := cfg.FlavorOptions()
	assert.True(t, opts.Enabled)
	assert.Equal(t, "from-env", opts.APIKey)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"bad level":          "logging:\n  level: loud\n",
		"bad format":         "logging:\n  format: xml\n",
		"no catalog":         "catalog:\n  path: \"\"\n",
		"flavor without key": "flavor:\n  enabled: true\n",
		"bad rules":          "rules:\n  starting_hand_size: 9\n",
		"bad board":          "board:\n  geometry: triangle\n",
		"empty queue":        "server:\n  send_queue: 0\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, game.DefaultSettings(), cfg.Settings())
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		cfg   LoggingConfig
		debug bool
		info  bool
	}{
		{LoggingConfig{Level: "debug", Format: "console"}, true, true},
		{LoggingConfig{Level: "info", Format: "json"}, false, true},
		{LoggingConfig{Level: "error", Format: "json"}, false, false},
	}
	for _, tt := range tests {
		logger, err := NewLogger(tt.cfg)
		require.NoError(t, err)
		assert.Equal(t, tt.debug, logger.Core().Enabled(zapcore.DebugLevel), tt.cfg.Level)
		assert.Equal(t, tt.info, logger.Core().Enabled(zapcore.InfoLevel), tt.cfg.Level)
	}
}
