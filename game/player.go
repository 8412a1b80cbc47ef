package game

import (
	"math"

	"gobble/config"
)

// Player is a connected blob. All mutation happens under the Game lock; the
// methods here never synchronize on their own.
type Player struct {
	Object
	ID    string
	Name  string
	Score float64
	Alive bool

	Skills map[string]*Skill
	Stats  *SurvivalStats // nil unless the survival hook is enabled

	// pending movement intent, last write since the previous tick wins
	intentX, intentY float64
	hasIntent        bool
	lastMoveSeq      uint64

	cfg *config.PlayerConfig
}

func NewPlayer(id, name, color string, cfg *config.PlayerConfig, skills config.SkillsConfig, x, y float64) *Player {
	p := &Player{
		Object: Object{X: x, Y: y, Color: color, Kind: "player"},
		ID:     id,
		Name:   name,
		Alive:  true,
		Skills: map[string]*Skill{
			SkillPush: NewSkill(SkillPush, skills.Push),
			SkillPull: NewSkill(SkillPull, skills.Pull),
		},
		cfg: cfg,
	}
	p.updateRadius()
	return p
}

// SetIntent records a movement direction from a move packet. Stale or
// duplicate sequence numbers are rejected; non-finite components are
// clamped to zero rather than propagated into the simulation.
func (p *Player) SetIntent(dx, dy float64, seq uint64) bool {
	if seq <= p.lastMoveSeq {
		return false
	}
	p.lastMoveSeq = seq
	if !isFinite(dx) || !isFinite(dy) {
		dx, dy = 0, 0
	}
	if mag := math.Hypot(dx, dy); mag > 0 {
		dx /= mag
		dy /= mag
	}
	p.intentX, p.intentY = dx, dy
	p.hasIntent = true
	return true
}

// takeIntent consumes the pending intent for this tick.
func (p *Player) takeIntent() (dx, dy float64, ok bool) {
	if !p.hasIntent {
		return 0, 0, false
	}
	p.hasIntent = false
	return p.intentX, p.intentY, true
}

// LastMoveSeq is the highest sequence number applied so far.
func (p *Player) LastMoveSeq() uint64 { return p.lastMoveSeq }

// Grow adds score and recomputes the body radius.
func (p *Player) Grow(amount float64) {
	if amount < 0 {
		return
	}
	p.Score += amount
	p.updateRadius()
}

// Speed is the current movement speed in units per second. Larger blobs
// move slower when SpeedDecay is above zero.
func (p *Player) Speed() float64 {
	if p.cfg.SpeedDecay == 0 || p.Radius <= 0 {
		return p.cfg.StartVelocity
	}
	return p.cfg.StartVelocity * math.Pow(p.cfg.StartRadius/p.Radius, p.cfg.SpeedDecay)
}

// respawnReset clears everything except identity and move sequence. The
// sequence counter stays monotonic for the life of the connection.
func (p *Player) respawnReset(x, y float64) {
	p.Score = 0
	p.Alive = true
	p.X, p.Y = x, y
	p.intentX, p.intentY = 0, 0
	p.hasIntent = false
	for _, s := range p.Skills {
		s.Reset()
	}
	if p.Stats != nil {
		*p.Stats = NewSurvivalStats()
	}
	p.updateRadius()
}

// updateRadius applies the growth curve:
// radius = clamp(start + (score*factor)^exponent, start, max).
func (p *Player) updateRadius() {
	r := p.cfg.StartRadius
	if p.Score > 0 {
		r += math.Pow(p.Score*p.cfg.GrowthFactor, p.cfg.GrowthExponent)
	}
	p.Radius = clamp(r, p.cfg.StartRadius, p.cfg.MaxRadius)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
