package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "daemon":
		return daemonTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// Render marshals cfg back to TOML.
func Render(cfg DaemonConfig) (string, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("config render failed: %w", err)
	}
	return string(out), nil
}

const daemonTemplate = `id = "armlinkd"
http_addr = "127.0.0.1:9300"
cors_origins = ["http://localhost:3000"]
drain_interval = "50ms"
recent_limit = 256

# interrupt_on_stop defaults to true. With false, shutdown waits until the
# next connection or datagram wakes the listener.
[[listeners]]
name = "arm-state"
transport = "udp"
format = "arm_state"
addr = "0.0.0.0:7001"
fixed_buffer = true
interrupt_on_stop = true

[[listeners]]
name = "item-reach"
transport = "udp"
format = "item_reach"
addr = "0.0.0.0:7002"
interrupt_on_stop = true

[[listeners]]
name = "new-item"
transport = "tcp"
format = "new_item"
addr = "0.0.0.0:7003"
interrupt_on_stop = true

[[listeners]]
name = "pick-up-item"
transport = "tcp"
format = "pick_up_item"
addr = "0.0.0.0:7004"
interrupt_on_stop = true
`
