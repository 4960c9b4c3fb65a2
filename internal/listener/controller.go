package listener

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/danmuck/armwire/internal/observability"
	"github.com/danmuck/armwire/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultQueueSize = 1024

var (
	ErrEmpty       = errors.New("listener: no packet pending")
	ErrClosed      = errors.New("listener: producer ended")
	ErrInvalidSize = errors.New("listener: packet size must be positive")
	ErrNoDecoder   = errors.New("listener: decoder is required")
)

// RecvInfo is one decode outcome paired with the peer that sent the bytes.
// Exactly one of Data or Err is meaningful.
type RecvInfo[T any] struct {
	Data T
	Err  error
	Addr net.Addr
}

// Options configures one listener instance.
type Options[T any] struct {
	// Name labels logs and metrics.
	Name string
	// Size is the fixed packet width of the active format.
	Size int
	// Decode is applied to every packet read.
	Decode protocol.Decoder[T]
	// FixedBuffer hands the decoder the whole Size-byte buffer even after a
	// short read, leaving zero bytes in the unread tail. When false the
	// decoder only sees the bytes actually read.
	FixedBuffer bool
	// InterruptOnStop closes the socket when Stop is called so a pending
	// accept/receive returns immediately.
	InterruptOnStop bool
	// QueueSize bounds the delivery queue; producers block while it is full.
	QueueSize int
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

func (o Options[T]) validate() error {
	if o.Size <= 0 {
		return ErrInvalidSize
	}
	if o.Decode == nil {
		return ErrNoDecoder
	}
	return nil
}

// Handle reports completion of a listener's accept/receive loop.
type Handle struct {
	done chan struct{}
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

func (h *Handle) finish(err error) {
	h.err = err
	close(h.done)
}

// Done is closed once the loop has returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the loop's terminal error. It is only meaningful after Done.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the loop returns or ctx ends.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Controller is the caller's side of a running listener.
type Controller[T any] struct {
	name      string
	transport string

	shutdown  chan struct{}
	stopOnce  sync.Once
	abort     chan struct{}
	abortOnce sync.Once
	recv     <-chan RecvInfo[T]
	handle   *Handle

	ready chan struct{}
	addr  net.Addr
}

// TryReceive returns the next queued RecvInfo without blocking. It returns
// ErrEmpty when nothing is pending and ErrClosed once the loop and every
// handler have exited and the queue is drained.
func (c *Controller[T]) TryReceive() (RecvInfo[T], error) {
	select {
	case info, ok := <-c.recv:
		if !ok {
			return RecvInfo[T]{}, ErrClosed
		}
		return info, nil
	default:
		return RecvInfo[T]{}, ErrEmpty
	}
}

// Receive blocks for the next RecvInfo.
func (c *Controller[T]) Receive(ctx context.Context) (RecvInfo[T], error) {
	select {
	case info, ok := <-c.recv:
		if !ok {
			return RecvInfo[T]{}, ErrClosed
		}
		return info, nil
	case <-ctx.Done():
		return RecvInfo[T]{}, ctx.Err()
	}
}

// Stop signals shutdown and returns the loop's Handle. Queued packets stay
// readable through TryReceive. Calling Stop again returns the same Handle.
func (c *Controller[T]) Stop() *Handle {
	c.stopOnce.Do(func() {
		close(c.shutdown)
	})
	return c.handle
}

// Abort stops the listener and closes its socket whether or not
// InterruptOnStop was set, so a loop blocked in accept/receive returns.
func (c *Controller[T]) Abort() *Handle {
	h := c.Stop()
	c.abortOnce.Do(func() {
		close(c.abort)
	})
	return h
}

// Pending reports how many results are queued and not yet received.
func (c *Controller[T]) Pending() int {
	return len(c.recv)
}

// Handle observes the loop without signalling shutdown.
func (c *Controller[T]) Handle() *Handle {
	return c.handle
}

// Ready is closed after the bind attempt, successful or not.
func (c *Controller[T]) Ready() <-chan struct{} {
	return c.ready
}

// Addr is the bound local address, nil before Ready or when bind failed.
func (c *Controller[T]) Addr() net.Addr {
	select {
	case <-c.ready:
		return c.addr
	default:
		return nil
	}
}

func (c *Controller[T]) Name() string {
	return c.name
}

func (c *Controller[T]) Transport() string {
	return c.transport
}

// loop is the producer side shared by the TCP and UDP variants.
type loop[T any] struct {
	opts      Options[T]
	transport string
	logger    zerolog.Logger

	ctl      *Controller[T]
	out      chan RecvInfo[T]
	handlers sync.WaitGroup
	exited   chan struct{}
	bindOnce sync.Once
}

func start[T any](transport string, opts Options[T], run func(*loop[T]) error) (*Controller[T], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("listener", opts.Name).Str("transport", transport).Logger()

	out := make(chan RecvInfo[T], opts.QueueSize)
	ctl := &Controller[T]{
		name:      opts.Name,
		transport: transport,
		shutdown:  make(chan struct{}),
		abort:     make(chan struct{}),
		recv:      out,
		handle:    newHandle(),
		ready:     make(chan struct{}),
	}
	l := &loop[T]{
		opts:      opts,
		transport: transport,
		logger:    logger,
		ctl:       ctl,
		out:       out,
		exited:    make(chan struct{}),
	}

	go func() {
		err := run(l)
		l.bound(nil)
		close(l.exited)
		if err != nil {
			l.logger.Error().Err(err).Msg("listener loop exited")
		} else {
			l.logger.Debug().Msg("listener loop stopped")
		}
		ctl.handle.finish(err)

		// handlers may still be decoding; the queue closes after the last one
		l.handlers.Wait()
		close(out)
	}()
	return ctl, nil
}

// bound publishes the local address once; later calls are ignored.
func (l *loop[T]) bound(addr net.Addr) {
	l.bindOnce.Do(func() {
		l.ctl.addr = addr
		close(l.ctl.ready)
	})
}

func (l *loop[T]) stopped() bool {
	select {
	case <-l.ctl.shutdown:
		return true
	default:
		return false
	}
}

// closeOnStop closes c on Abort, and on Stop when InterruptOnStop is set.
func (l *loop[T]) closeOnStop(c interface{ Close() error }) {
	var stop <-chan struct{}
	if l.opts.InterruptOnStop {
		stop = l.ctl.shutdown
	}
	go func() {
		select {
		case <-stop:
			_ = c.Close()
		case <-l.ctl.abort:
			_ = c.Close()
		case <-l.exited:
		}
	}()
}

// view returns the bytes the decoder sees for a read of n bytes into buf.
// FixedBuffer yields exactly Size bytes: a short read leaves a zeroed tail
// and anything past Size is cut off.
func (l *loop[T]) view(buf []byte, n int) []byte {
	if l.opts.FixedBuffer {
		size := l.opts.Size
		if n < size {
			clear(buf[n:size])
		}
		return buf[:size]
	}
	return buf[:n]
}

func (l *loop[T]) deliver(data []byte, n int, addr net.Addr) {
	v, err := l.opts.Decode(data)
	observability.RecordPacket(l.opts.Name, l.transport, n, err)
	if err != nil {
		l.logger.Debug().Err(err).Str("remote", addr.String()).Msg("decode failed")
	}
	l.out <- RecvInfo[T]{Data: v, Err: err, Addr: addr}
}
