package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every knob the core consumes. Values come from the
// environment (optionally seeded from a .env file) with sane defaults, so
// the server runs with no configuration at all.
type Config struct {
	Network  NetworkConfig
	World    WorldConfig
	Player   PlayerConfig
	Food     FoodConfig
	Skills   SkillsConfig
	Game     GameConfig
	Survival SurvivalConfig
}

type NetworkConfig struct {
	Host             string
	Port             int
	WSAddr           string // HTTP listen address for the WebSocket transport, "" disables it
	MaxPlayers       int
	HandshakeTimeout time.Duration
	KeepaliveTimeout time.Duration
	ConnPerMinute    float64 // per-IP new-connection budget
	ConnBurst        int
}

type WorldConfig struct {
	Width   float64
	Height  float64
	Padding float64
}

type PlayerConfig struct {
	StartRadius     float64
	MaxRadius       float64
	GrowthFactor    float64
	GrowthExponent  float64
	StartVelocity   float64 // units per second at start radius
	SpeedDecay      float64 // 0 disables slowdown as players grow
	NameMinLen      int
	NameMaxLen      int
	Colors          []string
}

type FoodConfig struct {
	Radius            float64
	Value             float64
	MinCount          int
	MaxCount          int
	SpawnPerSecond    float64
	MinPlayerDistance float64
	Colors            []string
}

type SkillConfig struct {
	BaseRadius     float64
	RadiusPerLevel float64
	Force          float64
	Duration       time.Duration
	Cooldown       time.Duration
	SizeThreshold  float64 // multiplier of the caster's radius
}

type SkillsConfig struct {
	Push SkillConfig
	Pull SkillConfig
}

type GameConfig struct {
	TickRate         int
	EatRatio         float64 // min radius ratio for one player to eat another
	EatScoreFraction float64 // share of the victim's score the eater gains
	RespawnCooldown  time.Duration
	MinSpawnDistance float64
	SpawnAttempts    int
}

type SurvivalConfig struct {
	Enabled            bool
	MaxHealth          float64
	MaxCalories        float64
	MaxHydration       float64
	MaxBlood           float64
	CaloriesDrainIdle  float64
	HydrationDrainIdle float64
	MoveMult           float64
	StarveHPLoss       float64
	DehydrateHPLoss    float64
	BleedLossPerSec    float64
	LowBloodHPLoss     float64
	InfectionHPLoss    float64
}

// Load reads .env if present and builds the config from the environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("loaded environment from .env")
	}
	return Config{
		Network: NetworkConfig{
			Host:             envStr("GOBBLE_HOST", "0.0.0.0"),
			Port:             envInt("GOBBLE_PORT", 5555),
			WSAddr:           envStr("GOBBLE_WS_ADDR", ""),
			MaxPlayers:       envInt("GOBBLE_MAX_PLAYERS", 10),
			HandshakeTimeout: envDur("GOBBLE_HANDSHAKE_TIMEOUT", 10*time.Second),
			KeepaliveTimeout: envDur("GOBBLE_KEEPALIVE_TIMEOUT", 30*time.Second),
			ConnPerMinute:    envFloat("GOBBLE_CONN_PER_MINUTE", 5),
			ConnBurst:        envInt("GOBBLE_CONN_BURST", 5),
		},
		World: WorldConfig{
			Width:   envFloat("GOBBLE_WORLD_WIDTH", 2000),
			Height:  envFloat("GOBBLE_WORLD_HEIGHT", 2000),
			Padding: envFloat("GOBBLE_WORLD_PADDING", 10),
		},
		Player: PlayerConfig{
			StartRadius:    envFloat("GOBBLE_PLAYER_START_RADIUS", 20),
			MaxRadius:      envFloat("GOBBLE_PLAYER_MAX_RADIUS", 200),
			GrowthFactor:   envFloat("GOBBLE_PLAYER_GROWTH_FACTOR", 1.0),
			GrowthExponent: envFloat("GOBBLE_PLAYER_GROWTH_EXPONENT", 0.8),
			StartVelocity:  envFloat("GOBBLE_PLAYER_START_VELOCITY", 220),
			SpeedDecay:     envFloat("GOBBLE_PLAYER_SPEED_DECAY", 0.4),
			NameMinLen:     envInt("GOBBLE_NAME_MIN_LEN", 3),
			NameMaxLen:     envInt("GOBBLE_NAME_MAX_LEN", 20),
			Colors:         envList("GOBBLE_PLAYER_COLORS", "#e6194b,#3cb44b,#ffe119,#4363d8,#f58231,#911eb4"),
		},
		Food: FoodConfig{
			Radius:            envFloat("GOBBLE_FOOD_RADIUS", 6),
			Value:             envFloat("GOBBLE_FOOD_VALUE", 10),
			MinCount:          envInt("GOBBLE_FOOD_MIN", 80),
			MaxCount:          envInt("GOBBLE_FOOD_MAX", 120),
			SpawnPerSecond:    envFloat("GOBBLE_FOOD_SPAWN_PER_SECOND", 20),
			MinPlayerDistance: envFloat("GOBBLE_FOOD_MIN_PLAYER_DISTANCE", 0),
			Colors:            envList("GOBBLE_FOOD_COLORS", "#fabebe,#ffd8b1,#fffac8,#aaffc3,#dcbeff"),
		},
		Skills: SkillsConfig{
			Push: SkillConfig{
				BaseRadius:     envFloat("GOBBLE_PUSH_BASE_RADIUS", 80),
				RadiusPerLevel: envFloat("GOBBLE_PUSH_RADIUS_PER_LEVEL", 15),
				Force:          envFloat("GOBBLE_PUSH_FORCE", 40),
				Duration:       envDur("GOBBLE_PUSH_DURATION", 2*time.Second),
				Cooldown:       envDur("GOBBLE_PUSH_COOLDOWN", 8*time.Second),
				SizeThreshold:  envFloat("GOBBLE_PUSH_SIZE_THRESHOLD", 1.5),
			},
			Pull: SkillConfig{
				BaseRadius:     envFloat("GOBBLE_PULL_BASE_RADIUS", 100),
				RadiusPerLevel: envFloat("GOBBLE_PULL_RADIUS_PER_LEVEL", 15),
				Force:          envFloat("GOBBLE_PULL_FORCE", 30),
				Duration:       envDur("GOBBLE_PULL_DURATION", 2*time.Second),
				Cooldown:       envDur("GOBBLE_PULL_COOLDOWN", 10*time.Second),
				SizeThreshold:  envFloat("GOBBLE_PULL_SIZE_THRESHOLD", 1.2),
			},
		},
		Game: GameConfig{
			TickRate:         envInt("GOBBLE_TICK_RATE", 30),
			EatRatio:         envFloat("GOBBLE_EAT_RATIO", 1.2),
			EatScoreFraction: envFloat("GOBBLE_EAT_SCORE_FRACTION", 1.0),
			RespawnCooldown:  envDur("GOBBLE_RESPAWN_COOLDOWN", 3*time.Second),
			MinSpawnDistance: envFloat("GOBBLE_MIN_SPAWN_DISTANCE", 150),
			SpawnAttempts:    envInt("GOBBLE_SPAWN_ATTEMPTS", 25),
		},
		Survival: SurvivalConfig{
			Enabled:            envBool("GOBBLE_SURVIVAL_ENABLED", false),
			MaxHealth:          envFloat("GOBBLE_SURVIVAL_MAX_HEALTH", 100),
			MaxCalories:        envFloat("GOBBLE_SURVIVAL_MAX_CALORIES", 3000),
			MaxHydration:       envFloat("GOBBLE_SURVIVAL_MAX_HYDRATION", 5000),
			MaxBlood:           envFloat("GOBBLE_SURVIVAL_MAX_BLOOD", 5000),
			CaloriesDrainIdle:  envFloat("GOBBLE_SURVIVAL_CAL_DRAIN", 0.5),
			HydrationDrainIdle: envFloat("GOBBLE_SURVIVAL_HYD_DRAIN", 0.8),
			MoveMult:           envFloat("GOBBLE_SURVIVAL_MOVE_MULT", 1.5),
			StarveHPLoss:       envFloat("GOBBLE_SURVIVAL_STARVE_HP_LOSS", 1.0),
			DehydrateHPLoss:    envFloat("GOBBLE_SURVIVAL_DEHYDRATE_HP_LOSS", 1.5),
			BleedLossPerSec:    envFloat("GOBBLE_SURVIVAL_BLEED_LOSS", 25),
			LowBloodHPLoss:     envFloat("GOBBLE_SURVIVAL_LOW_BLOOD_HP_LOSS", 0.5),
			InfectionHPLoss:    envFloat("GOBBLE_SURVIVAL_INFECTION_HP_LOSS", 0.3),
		},
	}
}

// Validate rejects configurations the simulation cannot run with. These are
// fatal at startup; nothing defensive-clamps a zero-sized world.
func (c Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("config: world dimensions must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	if c.Game.TickRate <= 0 {
		return fmt.Errorf("config: tick rate must be positive, got %d", c.Game.TickRate)
	}
	if c.Player.StartRadius <= 0 {
		return fmt.Errorf("config: player start radius must be positive, got %g", c.Player.StartRadius)
	}
	if c.Food.MinCount > c.Food.MaxCount {
		return fmt.Errorf("config: food min count %d exceeds max count %d", c.Food.MinCount, c.Food.MaxCount)
	}
	if c.Network.MaxPlayers <= 0 {
		return fmt.Errorf("config: max players must be positive, got %d", c.Network.MaxPlayers)
	}
	if c.Game.EatRatio < 1 {
		return fmt.Errorf("config: eat ratio below 1 would let equals eat each other, got %g", c.Game.EatRatio)
	}
	if c.Game.SpawnAttempts <= 0 {
		return fmt.Errorf("config: spawn attempts must be positive, got %d", c.Game.SpawnAttempts)
	}
	if c.Food.SpawnPerSecond <= 0 {
		return fmt.Errorf("config: food spawn rate must be positive, got %g", c.Food.SpawnPerSecond)
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("bad int in env, using default")
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("bad float in env, using default")
		return def
	}
	return f
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("bad bool in env, using default")
		return def
	}
	return b
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("bad duration in env, using default")
		return def
	}
	return d
}

func envList(key, def string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
