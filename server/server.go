package server

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"gobble/config"
	"gobble/game"
	"gobble/protocol"
)

// Server owns the listening sockets, the session registry, and the tick
// cadence. The game itself lives in game.Game; the server's job is feeding
// packets in and snapshots out.
type Server struct {
	cfg  config.Config
	game *game.Game
	log  zerolog.Logger

	ln      net.Listener
	wsLn    net.Listener
	running atomic.Bool
	quit    chan struct{}
	wg      sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*Session
	limiters map[string]*rate.Limiter

	// last encoded game_state packet, served to get_game_state requests
	// without touching the game lock
	state atomic.Pointer[[]byte]
}

func New(cfg config.Config, g *game.Game, log zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		game:     g,
		log:      log.With().Str("comp", "server").Logger(),
		quit:     make(chan struct{}),
		sessions: make(map[string]*Session),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Start binds the listener and launches the accept and tick loops. A bind
// failure is the one startup error fatal to the whole process.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Network.Host, s.cfg.Network.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}
	s.ln = ln
	s.running.Store(true)
	s.log.Info().Str("addr", addr).Int("max_players", s.cfg.Network.MaxPlayers).Msg("listening")

	// publish an initial state; a get_game_state request can arrive before
	// the first tick does
	if b, err := protocol.Encode(snapshotPacket(s.game.Snapshot(time.Now()))); err == nil {
		s.state.Store(&b)
	}

	s.wg.Add(2)
	go s.acceptLoop()
	go s.tickLoop()

	if s.cfg.Network.WSAddr != "" {
		if err := s.startWebsocket(s.cfg.Network.WSAddr); err != nil {
			s.Shutdown()
			return err
		}
	}
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for s.running.Load() {
		conn, err := s.ln.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		s.handleConn(newTCPTransport(conn))
	}
}

// handleConn throttles by source IP and registers a session before its
// goroutine starts, so broadcasts can already see it (and skip it while it
// is still connecting).
func (s *Server) handleConn(tr Transport) {
	ip := hostOnly(tr.RemoteAddr())
	if !s.allowConn(ip) {
		s.log.Warn().Str("ip", ip).Msg("connection rate limit exceeded")
		s.refuse(tr, "too many connection attempts, slow down")
		return
	}

	sess := &Session{
		id:  uuid.NewString(),
		tr:  tr,
		srv: s,
	}
	sess.log = s.log.With().Str("session", sess.id).Str("remote", tr.RemoteAddr()).Logger()

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sess.run()
	}()
}

// refuse answers an over-limit connection with a server_full-class packet
// instead of accepting it and letting the handshake run.
func (s *Server) refuse(tr Transport, msg string) {
	b, err := protocol.Encode(&protocol.ServerFullPacket{
		Message:    msg,
		MaxPlayers: s.cfg.Network.MaxPlayers,
	})
	if err == nil {
		_ = tr.WritePayload(b)
	}
	_ = tr.Close()
}

func (s *Server) allowConn(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	// coarse cap on tracked sources; a scan that large resets everyone
	if len(s.limiters) > 4096 {
		s.limiters = make(map[string]*rate.Limiter)
	}
	lim, ok := s.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(s.cfg.Network.ConnPerMinute/60), s.cfg.Network.ConnBurst)
		s.limiters[ip] = lim
	}
	return lim.Allow()
}

// tickLoop drives the fixed-rate simulation. time.Ticker compensates for
// slow ticks so drift does not accumulate.
func (s *Server) tickLoop() {
	defer s.wg.Done()
	period := time.Second / time.Duration(s.cfg.Game.TickRate)
	dt := 1.0 / float64(s.cfg.Game.TickRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case now := <-ticker.C:
			snap := s.game.Step(now, dt)
			b, err := protocol.Encode(snapshotPacket(snap))
			if err != nil {
				s.log.Error().Err(err).Msg("encoding snapshot")
				continue
			}
			s.state.Store(&b)
			s.broadcast(b)
		}
	}
}

// broadcast writes the already-encoded snapshot to every active session.
// A failed write removes only that client and never blocks the others.
func (s *Server) broadcast(b []byte) {
	s.mu.Lock()
	targets := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.active() {
			targets = append(targets, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range targets {
		if err := sess.tr.WritePayload(b); err != nil {
			sess.log.Info().Err(err).Msg("broadcast write failed, removing client")
			s.removeSession(sess.id)
		}
	}
}

// removeSession deregisters a session, closes its socket, and drops the
// player from the game. Safe to call more than once.
func (s *Server) removeSession(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	var playerID string
	if ok {
		delete(s.sessions, id)
		playerID = sess.playerID
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	_ = sess.tr.Close()
	if playerID != "" {
		s.game.RemovePlayer(playerID)
	}
	sess.log.Info().Msg("session closed")
}

func (s *Server) latestState() []byte {
	if p := s.state.Load(); p != nil {
		return *p
	}
	return nil
}

// Addr is the bound TCP address, useful when the configured port is 0.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// SessionCount reports registered sessions, including ones still in the
// handshake.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown stops the loops and closes every socket. Closing is what
// actually unblocks the blocking reads; the flag alone cannot.
func (s *Server) Shutdown() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	close(s.quit)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	if s.wsLn != nil {
		_ = s.wsLn.Close()
	}
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.removeSession(id)
	}
	s.wg.Wait()
	s.log.Info().Msg("server shut down")
}

func snapshotPacket(snap *game.Snapshot) *protocol.GameStatePacket {
	pkt := &protocol.GameStatePacket{
		Players:    make(map[string]protocol.PlayerState, len(snap.Players)),
		Food:       make([]protocol.FoodState, 0, len(snap.Food)),
		ServerTick: snap.Tick,
		Timestamp:  unixSeconds(snap.Time),
	}
	for _, p := range snap.Players {
		pkt.Players[p.ID] = protocol.PlayerState{
			ID:         p.ID,
			Name:       p.Name,
			Position:   protocol.Position{X: p.X, Y: p.Y},
			Radius:     p.Radius,
			Score:      p.Score,
			Color:      p.Color,
			PushActive: p.PushActive,
			PushRadius: p.PushRadius,
			PullActive: p.PullActive,
			PullRadius: p.PullRadius,
			Health:     p.Health,
		}
	}
	for _, f := range snap.Food {
		pkt.Food = append(pkt.Food, protocol.FoodState{
			ID:       f.ID,
			Position: protocol.Position{X: f.X, Y: f.Y},
			Kind:     "food",
			Value:    f.Value,
			Radius:   f.Radius,
			Color:    f.Color,
		})
	}
	return pkt
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
