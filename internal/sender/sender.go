package sender

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrEmptyPacket = errors.New("sender: empty packet")

// SendTCP dials addr, writes pkt in full and closes the connection. Dial
// failures are retried per cfg.DialAttempts with backoff; write failures are not.
func SendTCP(ctx context.Context, addr string, pkt []byte, cfg Config) error {
	if len(pkt) == 0 {
		return ErrEmptyPacket
	}
	cfg = cfg.WithDefaults()
	conn, err := dialWithRetry(ctx, "tcp", addr, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	return writeAll(conn, pkt, cfg.WriteTimeout)
}

// SendUDP writes pkt as one datagram to addr.
func SendUDP(ctx context.Context, addr string, pkt []byte, cfg Config) error {
	if len(pkt) == 0 {
		return ErrEmptyPacket
	}
	cfg = cfg.WithDefaults()
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return fmt.Errorf("sender: dial udp %s: %w", addr, err)
	}
	defer conn.Close()
	return writeAll(conn, pkt, cfg.WriteTimeout)
}

func dialWithRetry(ctx context.Context, network, addr string, cfg Config) (net.Conn, error) {
	d := net.Dialer{Timeout: cfg.DialTimeout}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 1; attempt <= cfg.DialAttempts; attempt++ {
		conn, err := d.DialContext(ctx, network, addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt == cfg.DialAttempts || ctx.Err() != nil {
			break
		}
		delay := cfg.Backoff.Delay(attempt, rng)
		log.Debug().
			Err(err).
			Str("addr", addr).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("dial failed")
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("sender: dial %s %s: %w", network, addr, ctx.Err())
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("sender: dial %s %s: %w", network, addr, lastErr)
}

func writeAll(conn net.Conn, pkt []byte, timeout time.Duration) error {
	if timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	for off := 0; off < len(pkt); {
		n, err := conn.Write(pkt[off:])
		if err != nil {
			return fmt.Errorf("sender: write %s: %w", conn.RemoteAddr(), err)
		}
		off += n
	}
	return nil
}
