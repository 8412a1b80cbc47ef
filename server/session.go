package server

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"gobble/game"
	"gobble/protocol"
)

// Session states. The only forward transitions are
// Connecting → Authenticating → Active → Disconnecting → Closed.
const (
	stateConnecting int32 = iota
	stateAuthenticating
	stateActive
	stateDisconnecting
	stateClosed
)

// Session turns one connection into a stream of validated packets applied
// to the game, and delivers outbound snapshots. It holds no game state of
// its own beyond the player id; the registry owns its lifetime.
type Session struct {
	id    string
	tr    Transport
	srv   *Server
	state atomic.Int32
	log   zerolog.Logger

	playerID string
}

func (s *Session) run() {
	defer s.close()

	if err := s.handshake(); err != nil {
		if !errors.Is(err, net.ErrClosed) {
			s.log.Warn().Err(err).Msg("handshake failed")
		}
		return
	}
	s.state.Store(stateActive)
	s.readLoop()
}

// handshake reads the connect packet, validates the name (with one retry
// after a username_taken response), and replies with the assigned id.
func (s *Session) handshake() error {
	cfg := s.srv.cfg
	for attempt := 0; attempt < 2; attempt++ {
		_ = s.tr.SetReadDeadline(time.Now().Add(cfg.Network.HandshakeTimeout))
		payload, err := s.tr.ReadPayload()
		if err != nil {
			return fmt.Errorf("reading connect packet: %w", err)
		}
		pkt, err := protocol.Decode(payload)
		if err != nil {
			return err
		}
		conn, ok := pkt.(*protocol.ConnectPacket)
		if !ok {
			return fmt.Errorf("%w: expected connect, got %s", protocol.ErrMalformed, pkt.PacketType())
		}
		s.state.Store(stateAuthenticating)
		if conn.Version != protocol.Version {
			s.log.Warn().Int("version", conn.Version).Msg("client version mismatch, continuing anyway")
		}

		playerID, x, y, err := s.srv.game.AddPlayer(conn.Name)
		switch {
		case err == nil:
			// written under the registry lock; removeSession reads it there
			s.srv.mu.Lock()
			s.playerID = playerID
			s.srv.mu.Unlock()
			s.log.Info().Str("player", playerID).Str("name", conn.Name).Msg("authenticated")
			return s.send(&protocol.PlayerIDPacket{
				PlayerID:       playerID,
				SpawnPosition:  protocol.Position{X: x, Y: y},
				ServerTickRate: cfg.Game.TickRate,
			})
		case errors.Is(err, game.ErrServerFull):
			_ = s.send(&protocol.ServerFullPacket{
				Message:    "server is full, try again later",
				MaxPlayers: cfg.Network.MaxPlayers,
			})
			return err
		case errors.Is(err, game.ErrNameTaken), errors.Is(err, game.ErrInvalidName):
			msg := "username already taken"
			if errors.Is(err, game.ErrInvalidName) {
				msg = fmt.Sprintf("name must be %d-%d letters, digits, spaces, _ or -",
					cfg.Player.NameMinLen, cfg.Player.NameMaxLen)
			}
			if sendErr := s.send(&protocol.UsernameTakenPacket{
				Message:     msg,
				Suggestions: s.srv.game.SuggestNames(conn.Name, 3),
			}); sendErr != nil {
				return sendErr
			}
			// stay in Authenticating for one retry
		default:
			return err
		}
	}
	return fmt.Errorf("authentication failed after retry")
}

func (s *Session) readLoop() {
	keepalive := s.srv.cfg.Network.KeepaliveTimeout
	for s.srv.running.Load() {
		_ = s.tr.SetReadDeadline(time.Now().Add(keepalive))
		payload, err := s.tr.ReadPayload()
		if err != nil {
			var ne net.Error
			switch {
			case errors.As(err, &ne) && ne.Timeout():
				s.log.Info().Msg("keepalive window expired, dropping client")
			case errors.Is(err, protocol.ErrOversizedFrame), errors.Is(err, protocol.ErrEmptyFrame):
				s.log.Warn().Err(err).Msg("bad frame, dropping client")
			default:
				s.log.Debug().Err(err).Msg("read failed, client gone")
			}
			return
		}
		pkt, err := protocol.Decode(payload)
		if err != nil {
			s.log.Warn().Err(err).Msg("malformed packet, dropping client")
			return
		}
		if err := s.handle(pkt); err != nil {
			s.log.Warn().Err(err).Msg("packet rejected, dropping client")
			return
		}
	}
}

// handle dispatches one decoded packet. Side effects stay within recording
// this player's intents and writing to this session's own socket.
func (s *Session) handle(pkt protocol.Packet) error {
	switch p := pkt.(type) {
	case *protocol.MovePacket:
		s.srv.game.ApplyMove(s.playerID, p.DX, p.DY, p.Sequence)
	case *protocol.SkillPacket:
		s.srv.game.ActivateSkill(s.playerID, p.SkillName, time.Now())
	case *protocol.GetGameStatePacket:
		if b := s.srv.latestState(); b != nil {
			return s.tr.WritePayload(b)
		}
	case *protocol.PingPacket:
		return s.send(&protocol.PongPacket{
			Timestamp:  p.Timestamp,
			Sequence:   p.Sequence,
			ServerTime: unixSeconds(time.Now()),
		})
	default:
		// connect after handshake, or a server→client type from a client
		return fmt.Errorf("%w: unexpected %s", protocol.ErrMalformed, pkt.PacketType())
	}
	return nil
}

func (s *Session) send(p protocol.Packet) error {
	b, err := protocol.Encode(p)
	if err != nil {
		return err
	}
	return s.tr.WritePayload(b)
}

// active reports whether this session should receive broadcasts. Sessions
// still connecting or authenticating are skipped.
func (s *Session) active() bool {
	return s.state.Load() == stateActive
}

func (s *Session) close() {
	s.state.Store(stateDisconnecting)
	s.srv.removeSession(s.id)
	s.state.Store(stateClosed)
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
