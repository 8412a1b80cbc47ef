package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2000.0, cfg.World.Width)
	assert.Equal(t, 30, cfg.Game.TickRate)
	assert.NotEmpty(t, cfg.Player.Colors)
	assert.LessOrEqual(t, cfg.Food.MinCount, cfg.Food.MaxCount)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GOBBLE_WORLD_WIDTH", "4242")
	t.Setenv("GOBBLE_TICK_RATE", "60")
	t.Setenv("GOBBLE_RESPAWN_COOLDOWN", "5s")
	t.Setenv("GOBBLE_SURVIVAL_ENABLED", "true")
	t.Setenv("GOBBLE_PLAYER_COLORS", "#111, #222 ,#333")

	cfg := Load()
	assert.Equal(t, 4242.0, cfg.World.Width)
	assert.Equal(t, 60, cfg.Game.TickRate)
	assert.Equal(t, 5*time.Second, cfg.Game.RespawnCooldown)
	assert.True(t, cfg.Survival.Enabled)
	assert.Equal(t, []string{"#111", "#222", "#333"}, cfg.Player.Colors)
}

func TestLoadBadValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("GOBBLE_TICK_RATE", "not-a-number")
	t.Setenv("GOBBLE_WORLD_WIDTH", "wide")

	cfg := Load()
	assert.Equal(t, 30, cfg.Game.TickRate)
	assert.Equal(t, 2000.0, cfg.World.Width)
}

func TestValidateCatchesBadGeometry(t *testing.T) {
	cfg := Load()
	cfg.World.Height = -5
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Game.TickRate = 0
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Food.MinCount = 100
	cfg.Food.MaxCount = 10
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Game.EatRatio = 0.5
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Game.SpawnAttempts = 0
	assert.Error(t, cfg.Validate(), "zero attempts would make spawn search return the zero point")

	cfg = Load()
	cfg.Food.SpawnPerSecond = 0
	assert.Error(t, cfg.Validate(), "a zero spawn rate can never replenish food to the minimum")
}
