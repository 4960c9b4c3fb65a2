package listener

import (
	"errors"
	"fmt"
	"net"

	"github.com/danmuck/armwire/internal/observability"
)

const TransportUDP = "udp"

// maxDatagram fits any UDP payload, so the real datagram length is always known.
const maxDatagram = 64 * 1024

// ListenUDP starts a background loop receiving datagrams on addr into a single
// reused buffer. Results are queued in arrival order.
//
// Without FixedBuffer the decoder sees the whole datagram, so a datagram of
// the wrong length fails with a LengthError. With FixedBuffer it sees exactly
// opts.Size bytes.
func ListenUDP[T any](addr string, opts Options[T]) (*Controller[T], error) {
	return start(TransportUDP, opts, func(l *loop[T]) error {
		return l.serveUDP(addr)
	})
}

func (l *loop[T]) serveUDP(addr string) error {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("listener: bind udp %s: %w", addr, err)
	}
	defer pc.Close()
	l.bound(pc.LocalAddr())
	l.closeOnStop(pc)
	l.logger.Info().Str("addr", pc.LocalAddr().String()).Int("packet_size", l.opts.Size).Msg("listening")

	buf := make([]byte, max(maxDatagram, l.opts.Size))
	for !l.stopped() {
		n, from, err := pc.ReadFrom(buf)
		if l.stopped() {
			return nil
		}
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("listener: receive: %w", err)
			}
			observability.RecordReadError(l.opts.Name, l.transport)
			l.logger.Warn().Err(err).Msg("receive failed")
			continue
		}
		if n == 0 {
			l.logger.Debug().Str("remote", from.String()).Msg("empty datagram dropped")
			continue
		}
		l.deliver(l.view(buf, n), n, from)
	}
	return nil
}
