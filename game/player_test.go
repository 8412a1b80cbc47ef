package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"gobble/config"
)

func testPlayerCfg() *config.PlayerConfig {
	return &config.PlayerConfig{
		StartRadius:    20,
		MaxRadius:      200,
		GrowthFactor:   1.0,
		GrowthExponent: 1.0,
		StartVelocity:  100,
		SpeedDecay:     0,
		NameMinLen:     3,
		NameMaxLen:     20,
		Colors:         []string{"#fff"},
	}
}

func testSkillsCfg() config.SkillsConfig {
	return config.SkillsConfig{Push: pushCfg(), Pull: pushCfg()}
}

func TestGrowthFormula(t *testing.T) {
	cfg := testPlayerCfg()
	cfg.GrowthExponent = 0.8
	p := NewPlayer("p1", "alice", "#fff", cfg, testSkillsCfg(), 0, 0)

	assert.Equal(t, 20.0, p.Radius)

	p.Grow(10)
	want := 20 + math.Pow(10*cfg.GrowthFactor, 0.8)
	assert.InDelta(t, want, p.Radius, 1e-9)

	// clamped at the configured max
	p.Grow(1e9)
	assert.Equal(t, cfg.MaxRadius, p.Radius)
}

func TestGrowIgnoresNegativeAmounts(t *testing.T) {
	p := NewPlayer("p1", "alice", "#fff", testPlayerCfg(), testSkillsCfg(), 0, 0)
	p.Grow(10)
	p.Grow(-5)
	assert.Equal(t, 10.0, p.Score)
}

func TestSetIntentRejectsStaleSequence(t *testing.T) {
	p := NewPlayer("p1", "alice", "#fff", testPlayerCfg(), testSkillsCfg(), 0, 0)

	assert.True(t, p.SetIntent(1, 0, 5))
	assert.False(t, p.SetIntent(0, 1, 5), "duplicate sequence must be discarded")
	assert.False(t, p.SetIntent(0, 1, 3), "old sequence must be discarded")
	assert.True(t, p.SetIntent(0, 1, 6))

	dx, dy, ok := p.takeIntent()
	assert.True(t, ok)
	assert.Equal(t, 0.0, dx)
	assert.Equal(t, 1.0, dy)
}

func TestSetIntentNormalizes(t *testing.T) {
	p := NewPlayer("p1", "alice", "#fff", testPlayerCfg(), testSkillsCfg(), 0, 0)
	p.SetIntent(3, 4, 1)
	dx, dy, _ := p.takeIntent()
	assert.InDelta(t, 0.6, dx, 1e-9)
	assert.InDelta(t, 0.8, dy, 1e-9)
}

func TestSetIntentClampsNonFinite(t *testing.T) {
	p := NewPlayer("p1", "alice", "#fff", testPlayerCfg(), testSkillsCfg(), 0, 0)
	assert.True(t, p.SetIntent(math.NaN(), math.Inf(1), 1))
	dx, dy, ok := p.takeIntent()
	assert.True(t, ok)
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestIntentConsumedOnce(t *testing.T) {
	p := NewPlayer("p1", "alice", "#fff", testPlayerCfg(), testSkillsCfg(), 0, 0)
	p.SetIntent(1, 0, 1)
	_, _, ok := p.takeIntent()
	assert.True(t, ok)
	_, _, ok = p.takeIntent()
	assert.False(t, ok, "intent must not survive past the tick that consumed it")
}

func TestSpeedDecaysWithRadius(t *testing.T) {
	cfg := testPlayerCfg()
	cfg.SpeedDecay = 1.0
	p := NewPlayer("p1", "alice", "#fff", cfg, testSkillsCfg(), 0, 0)

	assert.Equal(t, 100.0, p.Speed())
	p.Grow(20) // radius 40 with linear growth
	assert.InDelta(t, 50.0, p.Speed(), 1e-9)
}

func TestRespawnResetKeepsSequenceMonotonic(t *testing.T) {
	p := NewPlayer("p1", "alice", "#fff", testPlayerCfg(), testSkillsCfg(), 0, 0)
	p.Grow(50)
	p.SetIntent(1, 0, 9)
	p.Alive = false

	p.respawnReset(100, 100)
	assert.True(t, p.Alive)
	assert.Zero(t, p.Score)
	assert.Equal(t, 20.0, p.Radius)
	assert.False(t, p.SetIntent(1, 0, 9), "respawn must not reset move sequence tracking")
	assert.True(t, p.SetIntent(1, 0, 10))
}
