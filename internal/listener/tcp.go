package listener

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/danmuck/armwire/internal/observability"
)

const TransportTCP = "tcp"

// ListenTCP starts a background loop accepting connections on addr. Each
// connection is handled by its own goroutine that performs one read of
// opts.Size bytes, decodes it and queues the result.
//
// The returned error only reports invalid options; a bind failure is the
// loop's terminal error, observable through Stop().Err or Ready + Addr.
func ListenTCP[T any](addr string, opts Options[T]) (*Controller[T], error) {
	return start(TransportTCP, opts, func(l *loop[T]) error {
		return l.serveTCP(addr)
	})
}

func (l *loop[T]) serveTCP(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listener: bind tcp %s: %w", addr, err)
	}
	defer ln.Close()
	l.bound(ln.Addr())
	l.closeOnStop(ln)
	l.logger.Info().Str("addr", ln.Addr().String()).Int("packet_size", l.opts.Size).Msg("listening")

	for !l.stopped() {
		conn, err := ln.Accept()
		// a connection that wakes accept after Stop is closed unhandled
		if l.stopped() {
			if conn != nil {
				_ = conn.Close()
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("listener: accept: %w", err)
		}
		observability.RecordConnection(l.opts.Name)

		l.handlers.Add(1)
		go func() {
			defer l.handlers.Done()
			l.handleConn(conn)
		}()
	}
	return nil
}

// handleConn reads once, decodes and queues. Read failures are logged and the
// connection is dropped; they never reach the consumer.
func (l *loop[T]) handleConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr()

	buf := make([]byte, l.opts.Size)
	n, err := conn.Read(buf)
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			observability.RecordReadError(l.opts.Name, l.transport)
			l.logger.Warn().Err(err).Str("remote", remote.String()).Msg("read failed")
			return
		}
		l.logger.Debug().Str("remote", remote.String()).Msg("empty connection dropped")
		return
	}
	if n < l.opts.Size {
		l.logger.Debug().
			Str("remote", remote.String()).
			Int("read", n).
			Int("packet_size", l.opts.Size).
			Msg("short read")
	}
	l.deliver(l.view(buf, n), n, remote)
}
