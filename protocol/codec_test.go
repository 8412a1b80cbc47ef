package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestEncodeStampsTypeField(t *testing.T) {
	b, err := Encode(&MovePacket{DX: 1, DY: 0, Sequence: 7, Timestamp: 12.5})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("encoded packet is not a JSON object: %v", err)
	}
	if m["type"] != TypeMove {
		t.Fatalf("type = %v, want %q", m["type"], TypeMove)
	}
	if m["sequence"] != float64(7) {
		t.Fatalf("sequence = %v, want 7", m["sequence"])
	}
}

func TestEncodeFieldlessPacket(t *testing.T) {
	b, err := Encode(&GetGameStatePacket{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !json.Valid(b) {
		t.Fatalf("invalid JSON: %s", b)
	}
	pkt, err := Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pkt.PacketType() != TypeGetGameState {
		t.Fatalf("round-trip type = %q", pkt.PacketType())
	}
}

func TestRoundTripAllPacketTypes(t *testing.T) {
	health := 80.0
	packets := []Packet{
		&ConnectPacket{Name: "alice", Version: 1, ClientID: "c1"},
		&MovePacket{DX: 0.6, DY: -0.8, Sequence: 42, Timestamp: 123.456},
		&SkillPacket{SkillName: "push", TargetX: 10, TargetY: -20, Direction: 1.5},
		&GetGameStatePacket{FullUpdate: true, LastAck: 9},
		&PingPacket{Timestamp: 1.25, Sequence: 3},
		&PongPacket{Timestamp: 1.25, Sequence: 3, ServerTime: 99.5},
		&PlayerIDPacket{PlayerID: "p1", SpawnPosition: Position{X: 100, Y: 200}, ServerTickRate: 30},
		&GameStatePacket{
			Players: map[string]PlayerState{
				"p1": {ID: "p1", Name: "alice", Position: Position{X: 1, Y: 2}, Radius: 25, Score: 10, Color: "#fff", PushActive: true, PushRadius: 120, Health: &health},
			},
			Food:       []FoodState{{ID: "f1", Position: Position{X: 3, Y: 4}, Kind: "food", Value: 10, Radius: 6, Color: "#abc"}},
			ServerTick: 77,
			Timestamp:  55.5,
		},
		&UsernameTakenPacket{Message: "taken", Suggestions: []string{"alice2", "alice3"}},
		&ServerFullPacket{Message: "full", MaxPlayers: 10, QueuePosition: 2},
	}
	for _, want := range packets {
		b, err := Encode(want)
		if err != nil {
			t.Fatalf("%s: encode: %v", want.PacketType(), err)
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("%s: decode: %v", want.PacketType(), err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: round trip mismatch:\n got %+v\nwant %+v", want.PacketType(), got, want)
		}
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("nil input: got %v, want ErrEmptyFrame", err)
	}
	if _, err := Decode([]byte(`{"dx":1}`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("missing type: got %v, want ErrMalformed", err)
	}
	if _, err := Decode([]byte(`{"type":"warp"}`)); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("unknown type: got %v, want ErrUnknownType", err)
	}
	if _, err := Decode([]byte(`not json`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("garbage: got %v, want ErrMalformed", err)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"type":"ping","timestamp":1,"sequence":2}`)
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if got := buf.Len(); got != 4+len(payload) {
		t.Fatalf("frame length = %d, want %d", got, 4+len(payload))
	}
	out, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("payload mismatch: %q vs %q", out, payload)
	}
}

func TestReadFrameRejectsOversizedPrefixBeforePayload(t *testing.T) {
	// Only a 4-byte header claiming a giant payload. ReadFrame must fail
	// on the prefix alone without waiting for payload bytes.
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], MaxFrameSize+1)
	if _, err := ReadFrame(bytes.NewReader(hdr[:])); !errors.Is(err, ErrOversizedFrame) {
		t.Fatalf("got %v, want ErrOversizedFrame", err)
	}
}

func TestFrameRejectsEmptyAndOversizedWrites(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, nil); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("empty write: got %v, want ErrEmptyFrame", err)
	}
	if err := WriteFrame(&buf, make([]byte, MaxFrameSize+1)); !errors.Is(err, ErrOversizedFrame) {
		t.Fatalf("oversized write: got %v, want ErrOversizedFrame", err)
	}
	var zero [4]byte
	if _, err := ReadFrame(bytes.NewReader(zero[:])); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("zero-length frame: got %v, want ErrEmptyFrame", err)
	}
}
