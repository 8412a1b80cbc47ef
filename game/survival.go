package game

import "gobble/config"

// SurvivalStats are per-player vitals. The subsystem is an optional
// periodic hook: when disabled no player carries stats and nothing here
// runs. It never gates movement speed and never kills a player on its own.
type SurvivalStats struct {
	Health      float64
	Calories    float64
	Hydration   float64
	Blood       float64
	Bleeding    bool
	Infection   bool
	Temperature float64 // Celsius
}

func NewSurvivalStats() SurvivalStats {
	return SurvivalStats{
		Health:      100,
		Calories:    3000,
		Hydration:   5000,
		Blood:       5000,
		Temperature: 37,
	}
}

// Activity describes what the player did this step, for drain multipliers.
type Activity struct {
	Moving bool
}

// SurvivalSystem applies drains and penalties at a fixed step.
type SurvivalSystem struct {
	cfg config.SurvivalConfig
}

func NewSurvivalSystem(cfg config.SurvivalConfig) *SurvivalSystem {
	return &SurvivalSystem{cfg: cfg}
}

// Update advances one player's vitals by dt seconds.
func (s *SurvivalSystem) Update(st *SurvivalStats, dt float64, act Activity) {
	c := s.cfg

	mult := 1.0
	if act.Moving {
		mult *= c.MoveMult
	}
	st.Calories -= c.CaloriesDrainIdle * mult * dt
	st.Hydration -= c.HydrationDrainIdle * mult * dt

	if st.Calories <= 0 {
		st.Health -= c.StarveHPLoss * dt
	}
	if st.Hydration <= 0 {
		st.Health -= c.DehydrateHPLoss * dt
	}
	if st.Bleeding {
		st.Blood -= c.BleedLossPerSec * dt
	}
	if st.Blood < c.MaxBlood*0.6 {
		st.Health -= c.LowBloodHPLoss * dt
	}
	if st.Infection {
		st.Health -= c.InfectionHPLoss * dt
	}

	s.clampStats(st)
}

// Eat restores calories, as when food is consumed with survival enabled.
func (s *SurvivalSystem) Eat(st *SurvivalStats, kcal float64) {
	if kcal > 0 {
		st.Calories += kcal
	}
	s.clampStats(st)
}

func (s *SurvivalSystem) clampStats(st *SurvivalStats) {
	st.Health = clamp(st.Health, 0, s.cfg.MaxHealth)
	st.Calories = clamp(st.Calories, 0, s.cfg.MaxCalories)
	st.Hydration = clamp(st.Hydration, 0, s.cfg.MaxHydration)
	st.Blood = clamp(st.Blood, 0, s.cfg.MaxBlood)
}
