package protocol

// Packet type discriminators. These strings are the wire compatibility
// contract; clients match on them exactly.
const (
	TypeConnect       = "connect"
	TypeMove          = "move"
	TypeSkill         = "skill"
	TypeGetGameState  = "get_game_state"
	TypePing          = "ping"
	TypePong          = "pong"
	TypePlayerID      = "player_id"
	TypeGameState     = "game_state"
	TypeUsernameTaken = "username_taken"
	TypeServerFull    = "server_full"
)

// Version is the protocol version expected in connect packets.
const Version = 1

// MaxFrameSize bounds how large a single framed payload may be. A length
// prefix above this closes the connection before the payload is even read.
const MaxFrameSize = 64 * 1024

// Packet is the closed set of wire messages. Every variant is a struct in
// packets.go and is registered in the decoder table in codec.go.
type Packet interface {
	PacketType() string
}
