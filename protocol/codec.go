package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

var (
	ErrEmptyFrame     = fmt.Errorf("protocol: empty frame")
	ErrOversizedFrame = fmt.Errorf("protocol: frame exceeds max size")
	ErrMalformed      = fmt.Errorf("protocol: malformed packet")
	ErrUnknownType    = fmt.Errorf("protocol: unknown packet type")
)

// Encode marshals a packet as a flat JSON object with the "type"
// discriminator stamped in, so callers never fill it by hand.
func Encode(p Packet) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("trying to encode nil packet")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	tag := `"type":"` + p.PacketType() + `"`
	if len(body) == 2 { // "{}", no fields of its own
		return []byte("{" + tag + "}"), nil
	}
	out := make([]byte, 0, len(body)+len(tag)+2)
	out = append(out, '{')
	out = append(out, tag...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

// decoders is the closed dispatch table keyed by discriminator. Adding a
// packet type means adding a struct, a PacketType method, and a row here.
var decoders = map[string]func([]byte) (Packet, error){
	TypeConnect:       decodeInto[ConnectPacket],
	TypeMove:          decodeInto[MovePacket],
	TypeSkill:         decodeInto[SkillPacket],
	TypeGetGameState:  decodeInto[GetGameStatePacket],
	TypePing:          decodeInto[PingPacket],
	TypePong:          decodeInto[PongPacket],
	TypePlayerID:      decodeInto[PlayerIDPacket],
	TypeGameState:     decodeInto[GameStatePacket],
	TypeUsernameTaken: decodeInto[UsernameTakenPacket],
	TypeServerFull:    decodeInto[ServerFullPacket],
}

func decodeInto[T any](b []byte) (Packet, error) {
	p := new(T)
	if err := json.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return any(p).(Packet), nil
}

// Decode parses one framed payload into its concrete packet type.
func Decode(b []byte) (Packet, error) {
	if len(b) == 0 {
		return nil, ErrEmptyFrame
	}
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if probe.Type == "" {
		return nil, fmt.Errorf("%w: missing type field", ErrMalformed)
	}
	dec, ok := decoders[probe.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, probe.Type)
	}
	return dec(b)
}

// WriteFrame writes a 4-byte big-endian length prefix followed by the
// payload, as a single Write so concurrent framed writes never interleave.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyFrame
	}
	if len(payload) > MaxFrameSize {
		return ErrOversizedFrame
	}
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one length-prefixed payload. The length is validated
// before any payload bytes are read, so a hostile prefix cannot make the
// server allocate or buffer more than MaxFrameSize.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n == 0 {
		return nil, ErrEmptyFrame
	}
	if n > MaxFrameSize {
		return nil, ErrOversizedFrame
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
