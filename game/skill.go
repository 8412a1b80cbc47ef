package game

import (
	"time"

	"gobble/config"
)

// Skill names as they appear in skill packets.
const (
	SkillPush = "push"
	SkillPull = "pull"
)

// Skill is the per-player state machine for one radial ability.
//
// Lifecycle: idle → active (Activate) → cooling down (duration elapsed) →
// idle again (cooldown elapsed since last use). Activation is refused while
// the cooldown is still running.
type Skill struct {
	Name           string
	Level          int
	BaseRadius     float64
	RadiusPerLevel float64
	Force          float64
	Duration       time.Duration
	Cooldown       time.Duration
	SizeThreshold  float64

	Active      bool
	lastUsed    time.Time
	activatedAt time.Time
}

func NewSkill(name string, cfg config.SkillConfig) *Skill {
	return &Skill{
		Name:           name,
		Level:          1,
		BaseRadius:     cfg.BaseRadius,
		RadiusPerLevel: cfg.RadiusPerLevel,
		Force:          cfg.Force,
		Duration:       cfg.Duration,
		Cooldown:       cfg.Cooldown,
		SizeThreshold:  cfg.SizeThreshold,
	}
}

// Activate flips the skill on if it is off cooldown. Reports whether the
// activation took effect.
func (s *Skill) Activate(now time.Time) bool {
	if s.Active {
		return false
	}
	if !s.lastUsed.IsZero() && now.Sub(s.lastUsed) < s.Cooldown {
		return false
	}
	s.Active = true
	s.activatedAt = now
	s.lastUsed = now
	return true
}

// Update expires the active window. Called once per tick.
func (s *Skill) Update(now time.Time) {
	if s.Active && now.Sub(s.activatedAt) >= s.Duration {
		s.Active = false
	}
}

// Ready reports whether Activate would succeed right now.
func (s *Skill) Ready(now time.Time) bool {
	if s.Active {
		return false
	}
	return s.lastUsed.IsZero() || now.Sub(s.lastUsed) >= s.Cooldown
}

// Radius is the skill's own reach, before adding the caster's body radius.
func (s *Skill) Radius() float64 {
	return s.BaseRadius + float64(s.Level)*s.RadiusPerLevel
}

// EffectiveRadius is the full reach measured from the caster's center.
func (s *Skill) EffectiveRadius(casterRadius float64) float64 {
	return s.Radius() + casterRadius
}

// Reset puts the skill back to idle and ready, as after a respawn.
func (s *Skill) Reset() {
	s.Active = false
	s.lastUsed = time.Time{}
	s.activatedAt = time.Time{}
}
