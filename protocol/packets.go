package protocol

// Position is a point in world coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Client → server packets.

type ConnectPacket struct {
	Name     string `json:"name"`
	Version  int    `json:"version"`
	ClientID string `json:"client_id,omitempty"` // reserved for reconnects
}

type MovePacket struct {
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	Sequence  uint64  `json:"sequence"`
	Timestamp float64 `json:"timestamp"`
}

type SkillPacket struct {
	SkillName string  `json:"skill_name"`
	TargetX   float64 `json:"target_x"`
	TargetY   float64 `json:"target_y"`
	Direction float64 `json:"direction,omitempty"`
}

type GetGameStatePacket struct {
	FullUpdate bool   `json:"full_update"`
	LastAck    uint64 `json:"last_ack"`
}

type PingPacket struct {
	Timestamp float64 `json:"timestamp"`
	Sequence  uint64  `json:"sequence"`
}

// Server → client packets.

type PongPacket struct {
	Timestamp  float64 `json:"timestamp"`
	Sequence   uint64  `json:"sequence"`
	ServerTime float64 `json:"server_time"`
}

type PlayerIDPacket struct {
	PlayerID       string   `json:"player_id"`
	SpawnPosition  Position `json:"spawn_position"`
	ServerTickRate int      `json:"server_tick_rate"`
}

// PlayerState is one player's public fields in a snapshot. Raw skill timers
// never leave the server; clients only see the active flags and the current
// ring radius so they can draw the effect.
type PlayerState struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Position   Position `json:"position"`
	Radius     float64  `json:"radius"`
	Score      float64  `json:"score"`
	Color      string   `json:"color"`
	PushActive bool     `json:"push_active,omitempty"`
	PushRadius float64  `json:"push_radius,omitempty"`
	PullActive bool     `json:"pull_active,omitempty"`
	PullRadius float64  `json:"pull_radius,omitempty"`
	Health     *float64 `json:"health,omitempty"`
}

type FoodState struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Kind     string   `json:"type"`
	Value    float64  `json:"value"`
	Radius   float64  `json:"radius"`
	Color    string   `json:"color"`
}

type GameStatePacket struct {
	Players    map[string]PlayerState `json:"players"`
	Food       []FoodState            `json:"food"`
	ServerTick uint64                 `json:"server_tick"`
	Timestamp  float64                `json:"timestamp"`
}

type UsernameTakenPacket struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

type ServerFullPacket struct {
	Message       string `json:"message"`
	MaxPlayers    int    `json:"max_players"`
	QueuePosition int    `json:"queue_position,omitempty"`
}

func (*ConnectPacket) PacketType() string       { return TypeConnect }
func (*MovePacket) PacketType() string          { return TypeMove }
func (*SkillPacket) PacketType() string         { return TypeSkill }
func (*GetGameStatePacket) PacketType() string  { return TypeGetGameState }
func (*PingPacket) PacketType() string          { return TypePing }
func (*PongPacket) PacketType() string          { return TypePong }
func (*PlayerIDPacket) PacketType() string      { return TypePlayerID }
func (*GameStatePacket) PacketType() string     { return TypeGameState }
func (*UsernameTakenPacket) PacketType() string { return TypeUsernameTaken }
func (*ServerFullPacket) PacketType() string    { return TypeServerFull }
