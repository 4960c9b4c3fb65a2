package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/armwire/internal/sender"
)

type filePeer struct {
	Addr      string `toml:"addr"`
	Transport string `toml:"transport"`
	Format    string `toml:"format"`
}

type fileConfig struct {
	DialTimeout  string              `toml:"dial_timeout"`
	WriteTimeout string              `toml:"write_timeout"`
	DialAttempts int                 `toml:"dial_attempts"`
	Backoff      string              `toml:"backoff"`
	Peers        map[string]filePeer `toml:"peers"`
}

// peer is one named destination from the peers file.
type peer struct {
	Addr      string
	Transport string
	Format    string
}

type peersConfig struct {
	Sender sender.Config
	Peers  map[string]peer
}

func loadPeersConfig(path string) (peersConfig, error) {
	cfg := peersConfig{Sender: sender.DefaultConfig(), Peers: map[string]peer{}}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return peersConfig{}, fmt.Errorf("load peers config: %w", err)
	}

	if meta.IsDefined("dial_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DialTimeout))
		if err != nil {
			return peersConfig{}, fmt.Errorf("parse dial_timeout: %w", err)
		}
		cfg.Sender.DialTimeout = d
	}

	if meta.IsDefined("write_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.WriteTimeout))
		if err != nil {
			return peersConfig{}, fmt.Errorf("parse write_timeout: %w", err)
		}
		cfg.Sender.WriteTimeout = d
	}

	if meta.IsDefined("dial_attempts") {
		cfg.Sender.DialAttempts = raw.DialAttempts
	}

	if meta.IsDefined("backoff") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Backoff))
		if err != nil {
			return peersConfig{}, fmt.Errorf("parse backoff: %w", err)
		}
		cfg.Sender.Backoff.InitialDelay = d
	}

	for name, p := range raw.Peers {
		name = strings.TrimSpace(name)
		addr := strings.TrimSpace(p.Addr)
		if name == "" || addr == "" {
			return peersConfig{}, fmt.Errorf("peer %q: addr is required", name)
		}
		transport := strings.ToLower(strings.TrimSpace(p.Transport))
		if transport == "" {
			transport = "tcp"
		}
		cfg.Peers[name] = peer{
			Addr:      addr,
			Transport: transport,
			Format:    strings.ToLower(strings.TrimSpace(p.Format)),
		}
	}
	return cfg, nil
}
