package game

import "time"

// Snapshot is an immutable point-in-time copy of the world, produced once
// per tick. The broadcaster reads it without holding the game lock because
// nothing mutates a snapshot after it is built.
type Snapshot struct {
	Tick    uint64
	Time    time.Time
	Players []PlayerSnapshot
	Food    []FoodSnapshot
}

type PlayerSnapshot struct {
	ID         string
	Name       string
	X, Y       float64
	Radius     float64
	Score      float64
	Color      string
	PushActive bool
	PushRadius float64
	PullActive bool
	PullRadius float64
	Health     *float64
}

type FoodSnapshot struct {
	ID     string
	X, Y   float64
	Radius float64
	Value  float64
	Color  string
}

func (g *Game) buildSnapshot(now time.Time) *Snapshot {
	snap := &Snapshot{
		Tick:    g.tick,
		Time:    now,
		Players: make([]PlayerSnapshot, 0, len(g.players)),
		Food:    make([]FoodSnapshot, 0, len(g.food)),
	}
	for _, id := range g.sortedPlayerIDs() {
		p := g.players[id]
		ps := PlayerSnapshot{
			ID:     p.ID,
			Name:   p.Name,
			X:      p.X,
			Y:      p.Y,
			Radius: p.Radius,
			Score:  p.Score,
			Color:  p.Color,
		}
		if push := p.Skills[SkillPush]; push != nil && push.Active {
			ps.PushActive = true
			ps.PushRadius = push.EffectiveRadius(p.Radius)
		}
		if pull := p.Skills[SkillPull]; pull != nil && pull.Active {
			ps.PullActive = true
			ps.PullRadius = pull.EffectiveRadius(p.Radius)
		}
		if p.Stats != nil {
			h := p.Stats.Health
			ps.Health = &h
		}
		snap.Players = append(snap.Players, ps)
	}
	for _, f := range g.food {
		snap.Food = append(snap.Food, FoodSnapshot{
			ID:     f.ID,
			X:      f.X,
			Y:      f.Y,
			Radius: f.Radius,
			Value:  f.Value,
			Color:  f.Color,
		})
	}
	return snap
}
