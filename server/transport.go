package server

import (
	"bufio"
	"net"
	"sync"
	"time"

	"gobble/protocol"
)

// Transport carries framed packet payloads for one client, hiding whether
// the other end is raw TCP or a WebSocket. Writes are safe to call from
// both the session goroutine and the broadcaster.
type Transport interface {
	ReadPayload() ([]byte, error)
	WritePayload([]byte) error
	SetReadDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}

// tcpTransport speaks the 4-byte big-endian length-prefix framing over a
// plain TCP connection.
type tcpTransport struct {
	conn net.Conn
	r    *bufio.Reader

	wmu sync.Mutex
}

func newTCPTransport(conn net.Conn) *tcpTransport {
	return &tcpTransport{conn: conn, r: bufio.NewReaderSize(conn, 4096)}
}

func (t *tcpTransport) ReadPayload() ([]byte, error) {
	return protocol.ReadFrame(t.r)
}

func (t *tcpTransport) WritePayload(b []byte) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return protocol.WriteFrame(t.conn, b)
}

func (t *tcpTransport) SetReadDeadline(d time.Time) error {
	return t.conn.SetReadDeadline(d)
}

func (t *tcpTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}
