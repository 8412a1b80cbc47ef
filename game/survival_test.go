package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gobble/config"
)

func survivalCfg() config.SurvivalConfig {
	return config.SurvivalConfig{
		Enabled:            true,
		MaxHealth:          100,
		MaxCalories:        3000,
		MaxHydration:       5000,
		MaxBlood:           5000,
		CaloriesDrainIdle:  1,
		HydrationDrainIdle: 2,
		MoveMult:           2,
		StarveHPLoss:       1,
		DehydrateHPLoss:    1.5,
		BleedLossPerSec:    25,
		LowBloodHPLoss:     0.5,
		InfectionHPLoss:    0.3,
	}
}

func TestSurvivalIdleDrain(t *testing.T) {
	sys := NewSurvivalSystem(survivalCfg())
	st := NewSurvivalStats()

	sys.Update(&st, 10, Activity{})
	assert.Equal(t, 2990.0, st.Calories)
	assert.Equal(t, 4980.0, st.Hydration)
	assert.Equal(t, 100.0, st.Health, "healthy stats mean no hp loss")
}

func TestSurvivalMovingDrainsFaster(t *testing.T) {
	sys := NewSurvivalSystem(survivalCfg())
	st := NewSurvivalStats()

	sys.Update(&st, 10, Activity{Moving: true})
	assert.Equal(t, 2980.0, st.Calories)
	assert.Equal(t, 4960.0, st.Hydration)
}

func TestSurvivalStarvationCostsHealth(t *testing.T) {
	sys := NewSurvivalSystem(survivalCfg())
	st := NewSurvivalStats()
	st.Calories = 0
	st.Hydration = 0

	sys.Update(&st, 4, Activity{})
	// starve 1/s + dehydrate 1.5/s over 4s
	assert.Equal(t, 90.0, st.Health)
}

func TestSurvivalBleedingDrainsBlood(t *testing.T) {
	sys := NewSurvivalSystem(survivalCfg())
	st := NewSurvivalStats()
	st.Bleeding = true

	sys.Update(&st, 100, Activity{})
	assert.Equal(t, 2500.0, st.Blood)
	assert.Less(t, st.Health, 100.0, "low blood pressure costs health")
}

func TestSurvivalStatsClamped(t *testing.T) {
	sys := NewSurvivalSystem(survivalCfg())
	st := NewSurvivalStats()
	st.Calories = 0.5

	sys.Update(&st, 1000, Activity{})
	assert.Zero(t, st.Calories, "stats never go negative")
	assert.GreaterOrEqual(t, st.Health, 0.0)

	sys.Eat(&st, 1e9)
	assert.Equal(t, 3000.0, st.Calories, "eating clamps at the maximum")
}
