package server

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gobble/protocol"
)

var upgrader = websocket.Upgrader{
	// For dev, allow all origins. Lock this down in prod.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startWebsocket serves the same packet protocol to browser clients. A
// WebSocket message carries exactly one packet payload; the socket's own
// framing replaces the 4-byte length prefix.
func (s *Server) startWebsocket(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding websocket %s: %w", addr, err)
	}
	s.wsLn = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.wsHandler)
	srv := &http.Server{Handler: mux}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("websocket transport listening")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != http.ErrServerClosed && s.running.Load() {
			s.log.Error().Err(err).Msg("websocket listener stopped")
		}
	}()
	go func() {
		<-s.quit
		_ = srv.Close()
	}()
	return nil
}

// WSAddr is the bound WebSocket address, or "" when the transport is off.
func (s *Server) WSAddr() string {
	if s.wsLn == nil {
		return ""
	}
	return s.wsLn.Addr().String()
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(protocol.MaxFrameSize)
	s.handleConn(&wsTransport{conn: conn})
}

type wsTransport struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (t *wsTransport) ReadPayload() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) WritePayload(b []byte) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return t.conn.WriteMessage(websocket.TextMessage, b)
}

func (t *wsTransport) SetReadDeadline(d time.Time) error {
	return t.conn.SetReadDeadline(d)
}

func (t *wsTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
