package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"gobble/config"
)

var (
	ErrNameTaken   = errors.New("game: name already taken")
	ErrInvalidName = errors.New("game: invalid name")
	ErrServerFull  = errors.New("game: server full")
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)

// Game owns the authoritative world state. One mutex guards the player and
// food collections: sessions take it briefly to record intents, the tick
// loop takes it for a whole Step. Snapshots leave the lock as copies, so
// broadcasting never blocks the simulation.
type Game struct {
	mu  sync.Mutex
	cfg config.Config
	log zerolog.Logger

	world   World
	players map[string]*Player
	food    []*Food
	tick    uint64

	respawns    []respawn
	foodLimiter *rate.Limiter
	rng         *rand.Rand
	survival    *SurvivalSystem
}

type respawn struct {
	player *Player
	due    time.Time
}

func New(cfg config.Config, log zerolog.Logger) *Game {
	g := &Game{
		cfg:         cfg,
		log:         log.With().Str("comp", "game").Logger(),
		world:       NewWorld(cfg.World),
		players:     make(map[string]*Player),
		foodLimiter: rate.NewLimiter(rate.Limit(cfg.Food.SpawnPerSecond), max(1, int(cfg.Food.SpawnPerSecond))),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if cfg.Survival.Enabled {
		g.survival = NewSurvivalSystem(cfg.Survival)
	}
	// Seed the world up to the minimum before anyone connects. The rate
	// cap only applies to replenishment afterwards.
	for len(g.food) < cfg.Food.MinCount {
		g.food = append(g.food, g.newFood())
	}
	return g
}

// AddPlayer validates the name, picks a spawn point, and registers a new
// player. Uniqueness counts dead-but-respawning players too, so a name
// cannot be sniped while its owner waits to respawn.
func (g *Game) AddPlayer(name string) (id string, x, y float64, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(name) < g.cfg.Player.NameMinLen || len(name) > g.cfg.Player.NameMaxLen || !nameRe.MatchString(name) {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if g.nameTaken(name) {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	if len(g.players)+len(g.respawns) >= g.cfg.Network.MaxPlayers {
		return "", 0, 0, ErrServerFull
	}

	x, y = g.spawnPoint()
	color := g.cfg.Player.Colors[g.rng.Intn(len(g.cfg.Player.Colors))]
	p := NewPlayer(uuid.NewString(), name, color, &g.cfg.Player, g.cfg.Skills, x, y)
	if g.survival != nil {
		st := NewSurvivalStats()
		p.Stats = &st
	}
	g.players[p.ID] = p
	g.log.Info().Str("player", p.ID).Str("name", name).Float64("x", x).Float64("y", y).Msg("player joined")
	return p.ID, x, y, nil
}

// RemovePlayer drops a player on disconnect. Idempotent; also clears any
// pending respawn so the slot and name free up immediately.
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.players[id]; ok {
		delete(g.players, id)
		g.log.Info().Str("player", id).Str("name", p.Name).Msg("player removed")
	}
	for i, r := range g.respawns {
		if r.player.ID == id {
			g.respawns = append(g.respawns[:i], g.respawns[i+1:]...)
			break
		}
	}
}

// ApplyMove records a movement intent for the next tick.
func (g *Game) ApplyMove(id string, dx, dy float64, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok {
		return false
	}
	return p.SetIntent(dx, dy, seq)
}

// ActivateSkill runs the skill's state machine. The result is only visible
// to the client through the next snapshot.
func (g *Game) ActivateSkill(id, name string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok {
		return false
	}
	sk, ok := p.Skills[name]
	if !ok {
		return false
	}
	if sk.Activate(now) {
		g.log.Debug().Str("player", id).Str("skill", name).Msg("skill activated")
		return true
	}
	return false
}

// SuggestNames proposes free variants of a taken name.
func (g *Game) SuggestNames(base string, n int) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, n)
	for i := 2; len(out) < n && i < 100; i++ {
		cand := fmt.Sprintf("%s%d", base, i)
		if len(cand) > g.cfg.Player.NameMaxLen {
			cand = fmt.Sprintf("%s%d", base[:g.cfg.Player.NameMaxLen-2], i)
		}
		if !g.nameTaken(cand) {
			out = append(out, cand)
		}
	}
	return out
}

// PlayerCount includes players waiting to respawn.
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players) + len(g.respawns)
}

// Step runs one authoritative tick and returns the snapshot to broadcast.
// The phase order is fixed; reordering changes collision outcomes.
func (g *Game) Step(now time.Time, dt float64) *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tick++
	ids := g.sortedPlayerIDs()
	g.applyIntents(ids, dt)
	g.resolveSkills(ids, now, dt)
	g.resolveFoodCollisions(ids)
	g.resolvePlayerCollisions()
	g.removeDead(now)
	g.processRespawns(now)
	g.replenishFood(now)
	return g.buildSnapshot(now)
}

// Snapshot copies the current world state without advancing the simulation.
func (g *Game) Snapshot(now time.Time) *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buildSnapshot(now)
}

func (g *Game) applyIntents(ids []string, dt float64) {
	for _, id := range ids {
		p := g.players[id]
		dx, dy, ok := p.takeIntent()
		moved := ok && (dx != 0 || dy != 0)
		if moved {
			speed := p.Speed()
			p.X += dx * speed * dt
			p.Y += dy * speed * dt
			g.world.Clamp(&p.Object)
		}
		if g.survival != nil && p.Stats != nil {
			g.survival.Update(p.Stats, dt, Activity{Moving: moved})
		}
	}
}

func (g *Game) resolveSkills(ids []string, now time.Time, dt float64) {
	for _, id := range ids {
		caster := g.players[id]
		for _, name := range []string{SkillPush, SkillPull} {
			sk := caster.Skills[name]
			sk.Update(now)
			if !sk.Active {
				continue
			}
			effR := sk.EffectiveRadius(caster.Radius)
			for _, otherID := range ids {
				if otherID == id {
					continue
				}
				target := g.players[otherID]
				if target == nil || !target.Alive {
					continue
				}
				g.applySkillForce(caster, sk, &target.Object, target.Radius, effR, dt)
			}
			for _, f := range g.food {
				g.applySkillForce(caster, sk, &f.Object, f.Radius, effR, dt)
			}
		}
	}
}

// applySkillForce moves one target (or the caster, for an inverted push)
// along the center line. Force falls off linearly with distance.
func (g *Game) applySkillForce(caster *Player, sk *Skill, target *Object, targetRadius, effR float64, dt float64) {
	d := caster.DistanceTo(target)
	if d > effR+targetRadius {
		return
	}
	if d < 1 {
		d = 1
	}
	scale := sk.Force * (1 - d/effR) * dt
	if scale <= 0 {
		return
	}
	nx := (target.X - caster.X) / d
	ny := (target.Y - caster.Y) / d

	switch sk.Name {
	case SkillPush:
		if targetRadius > caster.Radius*sk.SizeThreshold {
			// Pushing something much bigger shoves the caster instead.
			caster.X -= nx * scale
			caster.Y -= ny * scale
			g.world.Clamp(&caster.Object)
			return
		}
		target.X += nx * scale
		target.Y += ny * scale
	case SkillPull:
		if targetRadius > caster.Radius*sk.SizeThreshold {
			return
		}
		target.X -= nx * scale
		target.Y -= ny * scale
	}
	g.world.Clamp(target)
}

func (g *Game) resolveFoodCollisions(ids []string) {
	if len(g.food) == 0 || len(ids) == 0 {
		return
	}
	idx := newGrid(128)
	for _, f := range g.food {
		idx.insert(f)
	}
	eaten := make(map[string]bool)
	for _, id := range ids {
		p := g.players[id]
		for _, f := range idx.nearby(p.X, p.Y, p.Radius+max(g.cfg.Food.Radius, 1)) {
			if eaten[f.ID] {
				continue
			}
			if p.Overlaps(&f.Object) {
				p.Grow(f.Value)
				if g.survival != nil && p.Stats != nil {
					g.survival.Eat(p.Stats, f.Value)
				}
				eaten[f.ID] = true
			}
		}
	}
	if len(eaten) == 0 {
		return
	}
	kept := g.food[:0]
	for _, f := range g.food {
		if !eaten[f.ID] {
			kept = append(kept, f)
		}
	}
	g.food = kept
}

// resolvePlayerCollisions lets bigger players eat sufficiently smaller
// overlapping ones. Victims are processed smallest first; each victim is
// consumed by the single largest eligible eater.
func (g *Game) resolvePlayerCollisions() {
	ids := g.sortedPlayerIDs()
	victims := append([]string(nil), ids...)
	sort.SliceStable(victims, func(i, j int) bool {
		return g.players[victims[i]].Radius < g.players[victims[j]].Radius
	})
	for _, vid := range victims {
		victim := g.players[vid]
		if !victim.Alive {
			continue
		}
		var eater *Player
		for _, eid := range ids {
			if eid == vid {
				continue
			}
			cand := g.players[eid]
			if !cand.Alive {
				continue
			}
			if cand.Radius < victim.Radius*g.cfg.Game.EatRatio {
				continue
			}
			if !cand.Overlaps(&victim.Object) {
				continue
			}
			if eater == nil || cand.Radius > eater.Radius {
				eater = cand
			}
		}
		if eater == nil {
			continue
		}
		eater.Grow(victim.Score * g.cfg.Game.EatScoreFraction)
		victim.Alive = false
		g.log.Info().Str("eater", eater.Name).Str("victim", victim.Name).Msg("player eaten")
	}
}

func (g *Game) removeDead(now time.Time) {
	for _, id := range g.sortedPlayerIDs() {
		p := g.players[id]
		if p.Alive {
			continue
		}
		delete(g.players, id)
		g.respawns = append(g.respawns, respawn{player: p, due: now.Add(g.cfg.Game.RespawnCooldown)})
	}
}

func (g *Game) processRespawns(now time.Time) {
	if len(g.respawns) == 0 {
		return
	}
	pending := g.respawns[:0]
	for _, r := range g.respawns {
		if now.Before(r.due) {
			pending = append(pending, r)
			continue
		}
		x, y := g.spawnPoint()
		r.player.respawnReset(x, y)
		g.players[r.player.ID] = r.player
		g.log.Info().Str("player", r.player.ID).Str("name", r.player.Name).Msg("player respawned")
	}
	g.respawns = pending
}

func (g *Game) replenishFood(now time.Time) {
	for len(g.food) < g.cfg.Food.MinCount && len(g.food) < g.cfg.Food.MaxCount {
		if !g.foodLimiter.AllowN(now, 1) {
			return
		}
		g.food = append(g.food, g.newFood())
	}
}

func (g *Game) newFood() *Food {
	cfg := g.cfg.Food
	x, y := g.randomPoint(cfg.Radius)
	if cfg.MinPlayerDistance > 0 {
		for attempt := 0; attempt < g.cfg.Game.SpawnAttempts; attempt++ {
			if g.minPlayerDistance(x, y) >= cfg.MinPlayerDistance {
				break
			}
			x, y = g.randomPoint(cfg.Radius)
		}
	}
	return &Food{
		Object: Object{
			X:      x,
			Y:      y,
			Radius: cfg.Radius,
			Color:  cfg.Colors[g.rng.Intn(len(cfg.Colors))],
			Kind:   "food",
		},
		ID:    uuid.NewString(),
		Value: cfg.Value,
	}
}

// spawnPoint searches for a position far enough from everyone else. The
// search is capped; a saturated world falls back to the least crowded
// candidate seen instead of looping forever.
func (g *Game) spawnPoint() (float64, float64) {
	var bestX, bestY, bestDist float64
	bestDist = -1
	for attempt := 0; attempt < g.cfg.Game.SpawnAttempts; attempt++ {
		x, y := g.randomPoint(g.cfg.Player.StartRadius)
		d := g.minPlayerDistance(x, y)
		if d >= g.cfg.Game.MinSpawnDistance {
			return x, y
		}
		if d > bestDist {
			bestX, bestY, bestDist = x, y, d
		}
	}
	return bestX, bestY
}

func (g *Game) randomPoint(radius float64) (float64, float64) {
	lo := g.world.Padding + radius
	hx := g.world.Width - g.world.Padding - radius
	hy := g.world.Height - g.world.Padding - radius
	x := lo
	y := lo
	if hx > lo {
		x = lo + g.rng.Float64()*(hx-lo)
	}
	if hy > lo {
		y = lo + g.rng.Float64()*(hy-lo)
	}
	return x, y
}

func (g *Game) minPlayerDistance(x, y float64) float64 {
	nearest := math.MaxFloat64
	for _, p := range g.players {
		if d := math.Hypot(x-p.X, y-p.Y); d < nearest {
			nearest = d
		}
	}
	return nearest
}

func (g *Game) nameTaken(name string) bool {
	for _, p := range g.players {
		if p.Name == name {
			return true
		}
	}
	for _, r := range g.respawns {
		if r.player.Name == name {
			return true
		}
	}
	return false
}

func (g *Game) sortedPlayerIDs() []string {
	ids := make([]string, 0, len(g.players))
	for id := range g.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
