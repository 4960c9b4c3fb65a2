package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/armwire/internal/daemon"
)

// ServiceConfig converts a validated file config into the daemon runtime config.
func ServiceConfig(cfg DaemonConfig) (daemon.ServiceConfig, error) {
	out := daemon.DefaultServiceConfig()
	out.ID = cfg.ID
	out.HTTPAddr = strings.TrimSpace(cfg.HTTPAddr)
	out.CorsOrigins = cfg.CorsOrigins
	out.RecentLimit = cfg.RecentLimit

	d, err := time.ParseDuration(strings.TrimSpace(cfg.DrainInterval))
	if err != nil {
		return daemon.ServiceConfig{}, fmt.Errorf("parse drain_interval: %w", err)
	}
	out.DrainInterval = d

	out.Listeners = make([]daemon.ListenerSpec, 0, len(cfg.Listeners))
	for _, l := range cfg.Listeners {
		out.Listeners = append(out.Listeners, daemon.ListenerSpec{
			Name:            l.Name,
			Transport:       l.Transport,
			Format:          l.Format,
			Addr:            strings.TrimSpace(l.Addr),
			FixedBuffer:     l.FixedBuffer,
			InterruptOnStop: l.Interrupts(),
			QueueSize:       l.QueueSize,
		})
	}
	return out, nil
}
