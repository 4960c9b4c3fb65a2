package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/danmuck/armwire/internal/listener"
	"github.com/danmuck/armwire/internal/protocol/packets"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoListeners       = errors.New("daemon: no listeners configured")
	ErrUnknownTransport  = errors.New("daemon: unknown transport")
	ErrAlreadyStarted    = errors.New("daemon: already started")
	ErrInvalidDrainEvery = errors.New("daemon: invalid drain interval")
)

// ListenerSpec configures one listener run by the daemon.
type ListenerSpec struct {
	Name            string
	Transport       string
	Format          string
	Addr            string
	FixedBuffer     bool
	InterruptOnStop bool
	QueueSize       int
}

// ServiceConfig configures the daemon runtime.
type ServiceConfig struct {
	ID            string
	HTTPAddr      string
	CorsOrigins   []string
	DrainInterval time.Duration
	RecentLimit   int
	Listeners     []ListenerSpec
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ID:            "armlinkd",
		HTTPAddr:      "127.0.0.1:9300",
		DrainInterval: 50 * time.Millisecond,
		RecentLimit:   256,
	}
}

// Record is one drained packet as kept in the recent log.
type Record struct {
	Listener   string    `json:"listener"`
	Format     string    `json:"format"`
	Peer       string    `json:"peer"`
	Value      any       `json:"value,omitempty"`
	Text       string    `json:"text,omitempty"`
	Error      string    `json:"error,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// ListenerStatus is the externally visible state of one listener.
type ListenerStatus struct {
	Name         string `json:"name"`
	Transport    string `json:"transport"`
	Format       string `json:"format"`
	Addr         string `json:"addr"`
	PacketSize   int    `json:"packet_size"`
	Decoded      uint64 `json:"decoded"`
	DecodeErrors uint64 `json:"decode_errors"`
	Queued       int    `json:"queued"`
	Running      bool   `json:"running"`
	Error        string `json:"error,omitempty"`
}

type runningListener struct {
	spec    ListenerSpec
	format  packets.Format
	ctl     *listener.Controller[any]
	decoded atomic.Uint64
	failed  atomic.Uint64
}

// Service runs the configured listeners and exposes their state.
type Service struct {
	cfg      ServiceConfig
	registry *packets.Registry
	started  time.Time

	mu        sync.RWMutex
	listeners []*runningListener
	recent    []Record
	running   bool

	router *gin.Engine
}

func NewService(cfg ServiceConfig) *Service {
	if strings.TrimSpace(cfg.ID) == "" {
		cfg.ID = DefaultServiceConfig().ID
	}
	if cfg.RecentLimit < 0 {
		cfg.RecentLimit = 0
	}
	s := &Service{
		cfg:      cfg,
		registry: packets.DefaultRegistry(),
		recent:   make([]Record, 0),
	}
	s.router = s.newRouter()
	return s
}

// Start launches every configured listener and waits for each to bind.
// Either all listeners start or none are left running.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyStarted
	}
	if len(s.cfg.Listeners) == 0 {
		return ErrNoListeners
	}

	started := make([]*runningListener, 0, len(s.cfg.Listeners))
	for _, spec := range s.cfg.Listeners {
		rl, err := s.startListener(spec)
		if err != nil {
			for _, prev := range started {
				prev.ctl.Abort()
			}
			return fmt.Errorf("daemon: listener %q: %w", spec.Name, err)
		}
		started = append(started, rl)
	}
	s.listeners = started
	s.running = true
	s.started = time.Now()
	log.Info().Str("daemon", s.cfg.ID).Int("listeners", len(started)).Msg("daemon started")
	return nil
}

func (s *Service) startListener(spec ListenerSpec) (*runningListener, error) {
	format, err := s.registry.Lookup(spec.Format)
	if err != nil {
		return nil, err
	}
	opts := listener.Options[any]{
		Name:            spec.Name,
		Size:            format.Size,
		Decode:          format.Decode,
		FixedBuffer:     spec.FixedBuffer,
		InterruptOnStop: spec.InterruptOnStop,
		QueueSize:       spec.QueueSize,
	}

	var ctl *listener.Controller[any]
	switch strings.ToLower(strings.TrimSpace(spec.Transport)) {
	case listener.TransportTCP:
		ctl, err = listener.ListenTCP(spec.Addr, opts)
	case listener.TransportUDP:
		ctl, err = listener.ListenUDP(spec.Addr, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, spec.Transport)
	}
	if err != nil {
		return nil, err
	}

	<-ctl.Ready()
	if ctl.Addr() == nil {
		h := ctl.Handle()
		<-h.Done()
		return nil, h.Err()
	}
	return &runningListener{spec: spec, format: format, ctl: ctl}, nil
}

// Drain empties every listener queue into the recent log and returns the
// number of packets drained.
func (s *Service) Drain() int {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()

	total := 0
	for _, rl := range listeners {
		for {
			info, err := rl.ctl.TryReceive()
			if err != nil {
				break
			}
			s.record(rl, info)
			total++
		}
	}
	return total
}

func (s *Service) record(rl *runningListener, info listener.RecvInfo[any]) {
	rec := Record{
		Listener:   rl.spec.Name,
		Format:     rl.format.Name,
		ReceivedAt: time.Now(),
	}
	if info.Addr != nil {
		rec.Peer = info.Addr.String()
	}
	if info.Err != nil {
		rl.failed.Add(1)
		rec.Error = info.Err.Error()
		log.Warn().
			Str("listener", rec.Listener).
			Str("peer", rec.Peer).
			Err(info.Err).
			Msg("packet rejected")
	} else {
		rl.decoded.Add(1)
		rec.Value = info.Data
		rec.Text = fmt.Sprint(info.Data)
		log.Info().
			Str("listener", rec.Listener).
			Str("peer", rec.Peer).
			Str("packet", rec.Text).
			Msg("packet received")
	}

	if s.cfg.RecentLimit == 0 {
		return
	}
	s.mu.Lock()
	s.recent = append(s.recent, rec)
	if over := len(s.recent) - s.cfg.RecentLimit; over > 0 {
		s.recent = append(s.recent[:0], s.recent[over:]...)
	}
	s.mu.Unlock()
}

// Recent returns up to limit of the newest records, oldest first.
func (s *Service) Recent(limit int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]Record, limit)
	copy(out, s.recent[len(s.recent)-limit:])
	return out
}

func (s *Service) Listeners() []ListenerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ListenerStatus, 0, len(s.listeners))
	for _, rl := range s.listeners {
		st := ListenerStatus{
			Name:         rl.spec.Name,
			Transport:    rl.ctl.Transport(),
			Format:       rl.format.Name,
			Addr:         rl.spec.Addr,
			PacketSize:   rl.format.Size,
			Decoded:      rl.decoded.Load(),
			DecodeErrors: rl.failed.Load(),
			Queued:       rl.ctl.Pending(),
			Running:      true,
		}
		if addr := rl.ctl.Addr(); addr != nil {
			st.Addr = addr.String()
		}
		h := rl.ctl.Handle()
		select {
		case <-h.Done():
			st.Running = false
			if err := h.Err(); err != nil {
				st.Error = err.Error()
			}
		default:
		}
		out = append(out, st)
	}
	return out
}

// Shutdown stops every listener, waits for their loops and drains what was
// already queued.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	listeners := s.listeners
	s.running = false
	s.mu.Unlock()

	handles := make([]*listener.Handle, 0, len(listeners))
	for _, rl := range listeners {
		handles = append(handles, rl.ctl.Stop())
	}
	var errs []error
	for i, h := range handles {
		if err := h.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("listener %q: %w", listeners[i].spec.Name, err))
		}
	}
	drained := s.Drain()
	log.Info().Str("daemon", s.cfg.ID).Int("drained", drained).Msg("daemon stopped")
	return errors.Join(errs...)
}

// Run blocks until SIGINT/SIGTERM, draining listeners on every tick.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve runs the daemon until ctx ends.
func (s *Service) Serve(ctx context.Context) error {
	if s.cfg.DrainInterval <= 0 {
		return ErrInvalidDrainEvery
	}
	if err := s.Start(); err != nil {
		return err
	}

	httpErr := make(chan error, 1)
	var srv *http.Server
	if strings.TrimSpace(s.cfg.HTTPAddr) != "" {
		srv = &http.Server{Addr: s.cfg.HTTPAddr, Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info().Str("addr", s.cfg.HTTPAddr).Msg("status http listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				httpErr <- err
			}
		}()
	}

	ticker := time.NewTicker(s.cfg.DrainInterval)
	defer ticker.Stop()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-httpErr:
			runErr = fmt.Errorf("daemon: http: %w", err)
			break loop
		case <-ticker.C:
			s.Drain()
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if srv != nil {
		_ = srv.Shutdown(shutdownCtx)
	}
	if err := s.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
