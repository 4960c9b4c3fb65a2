package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/danmuck/armwire/internal/protocol/packets"
	"github.com/pelletier/go-toml/v2"
)

type DaemonConfig struct {
	ID            string           `toml:"id"`
	HTTPAddr      string           `toml:"http_addr"`
	CorsOrigins   []string         `toml:"cors_origins"`
	DrainInterval string           `toml:"drain_interval"`
	RecentLimit   int              `toml:"recent_limit"`
	Listeners     []ListenerConfig `toml:"listeners"`
}

type ListenerConfig struct {
	Name            string `toml:"name"`
	Transport       string `toml:"transport"`
	Format          string `toml:"format"`
	Addr            string `toml:"addr"`
	FixedBuffer     bool   `toml:"fixed_buffer"`
	// InterruptOnStop defaults to true when the key is absent.
	InterruptOnStop *bool `toml:"interrupt_on_stop"`
	QueueSize       int   `toml:"queue_size"`
}

// Interrupts reports whether stopping the listener closes its socket.
func (l ListenerConfig) Interrupts() bool {
	return l.InterruptOnStop == nil || *l.InterruptOnStop
}

func LoadDaemonConfig(path string) (DaemonConfig, error) {
	var cfg DaemonConfig
	if err := loadToml(path, &cfg); err != nil {
		return DaemonConfig{}, err
	}
	applyDaemonDefaults(&cfg)
	if err := ValidateDaemonConfig(cfg); err != nil {
		return DaemonConfig{}, err
	}
	return cfg, nil
}

func applyDaemonDefaults(cfg *DaemonConfig) {
	if strings.TrimSpace(cfg.ID) == "" {
		cfg.ID = "armlinkd"
	}
	if strings.TrimSpace(cfg.DrainInterval) == "" {
		cfg.DrainInterval = "50ms"
	}
	if cfg.RecentLimit == 0 {
		cfg.RecentLimit = 256
	}
	for i := range cfg.Listeners {
		l := &cfg.Listeners[i]
		l.Transport = strings.ToLower(strings.TrimSpace(l.Transport))
		if l.Transport == "" {
			l.Transport = "tcp"
		}
		l.Format = strings.ToLower(strings.TrimSpace(l.Format))
		if strings.TrimSpace(l.Name) == "" {
			l.Name = l.Format
		}
		if l.InterruptOnStop == nil {
			interrupt := true
			l.InterruptOnStop = &interrupt
		}
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateDaemonConfig(cfg DaemonConfig) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("daemon config missing id")
	}
	if _, err := time.ParseDuration(strings.TrimSpace(cfg.DrainInterval)); err != nil {
		return fmt.Errorf("daemon config drain_interval invalid: %w", err)
	}
	if cfg.RecentLimit < 0 {
		return fmt.Errorf("daemon config recent_limit must not be negative")
	}
	if len(cfg.Listeners) == 0 {
		return fmt.Errorf("daemon config has no listeners")
	}
	formats := packets.DefaultRegistry()
	names := make(map[string]struct{}, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		if err := ValidateListenerEntry(l, formats); err != nil {
			return fmt.Errorf("listener[%d] invalid: %w", i, err)
		}
		if _, dup := names[l.Name]; dup {
			return fmt.Errorf("listener[%d] invalid: duplicate name %q", i, l.Name)
		}
		names[l.Name] = struct{}{}
	}
	return nil
}

func ValidateListenerEntry(cfg ListenerConfig, formats *packets.Registry) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	switch cfg.Transport {
	case "tcp", "udp":
	default:
		return fmt.Errorf("transport must be tcp or udp, got %q", cfg.Transport)
	}
	if _, err := formats.Lookup(cfg.Format); err != nil {
		return err
	}
	if cfg.QueueSize < 0 {
		return fmt.Errorf("queue_size must not be negative")
	}
	return nil
}
