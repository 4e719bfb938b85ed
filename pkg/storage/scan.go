package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// Verdict is the outcome of a malware scan
type Verdict struct {
	Infected bool
	Threat   string
}

// Scanner inspects upload content before it is stored.
// An error means the content could not be checked and must be rejected.
type Scanner interface {
	Scan(ctx context.Context, data []byte) (Verdict, error)
}

// ClamAVScanner streams content to a clamd daemon over TCP or a unix socket
type ClamAVScanner struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner accepts "host:port" or an absolute socket path
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (s *ClamAVScanner) network() string {
	if strings.HasPrefix(s.address, "/") {
		return "unix"
	}
	return "tcp"
}

func (s *ClamAVScanner) dial(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := s.dialer.DialContext(ctx, s.network(), s.address)
	if err != nil {
		return nil, fmt.Errorf("dial clamd: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Ping checks that clamd answers PONG
func (s *ClamAVScanner) Ping(ctx context.Context) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	reply, err := s.command(conn, []byte("zPING\x00"))
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("unexpected clamd reply %q", reply)
	}
	return nil
}

// Scan sends data with the INSTREAM command as a single chunk
func (s *ClamAVScanner) Scan(ctx context.Context, data []byte) (Verdict, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return Verdict{}, err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return Verdict{}, fmt.Errorf("send command: %w", err)
	}

	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, uint32(len(data)))
	if _, err := conn.Write(size); err != nil {
		return Verdict{}, fmt.Errorf("send chunk size: %w", err)
	}
	if _, err := conn.Write(data); err != nil {
		return Verdict{}, fmt.Errorf("send chunk: %w", err)
	}

	reply, err := s.command(conn, []byte{0, 0, 0, 0})
	if err != nil {
		return Verdict{}, err
	}
	return parseClamReply(reply)
}

func (s *ClamAVScanner) command(conn net.Conn, payload []byte) (string, error) {
	if _, err := conn.Write(payload); err != nil {
		return "", fmt.Errorf("write clamd: %w", err)
	}
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		return "", fmt.Errorf("read clamd: %w", err)
	}
	return strings.TrimRight(string(buf[:n]), "\x00\n "), nil
}

// parseClamReply understands "stream: OK", "stream: <name> FOUND" and "... ERROR"
func parseClamReply(reply string) (Verdict, error) {
	body := reply
	if _, rest, ok := strings.Cut(reply, ":"); ok {
		body = strings.TrimSpace(rest)
	}

	switch {
	case body == "OK":
		return Verdict{}, nil
	case strings.HasSuffix(body, " FOUND"):
		return Verdict{Infected: true, Threat: strings.TrimSuffix(body, " FOUND")}, nil
	default:
		return Verdict{}, fmt.Errorf("clamd scan failed: %s", reply)
	}
}
