package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/armwire/internal/logging"
	"github.com/danmuck/armwire/internal/protocol/packets"
	"github.com/danmuck/armwire/internal/sender"
)

// fieldFlags collects repeated -set name=value flags.
type fieldFlags map[string]uint32

func (f fieldFlags) String() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, fmt.Sprintf("%s=%d", k, v))
	}
	return strings.Join(parts, ",")
}

func (f fieldFlags) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(value), 0, 32)
	if err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	f[name] = uint32(n)
	return nil
}

type options struct {
	peersPath string
	peerName  string
	addr      string
	transport string
	format    string
	variant   string
	fields    fieldFlags
	dryRun    bool
}

func main() {
	opts := options{fields: fieldFlags{}}
	flag.StringVar(&opts.peersPath, "peers", "", "peers file (toml)")
	flag.StringVar(&opts.peerName, "peer", "", "named peer from the peers file")
	flag.StringVar(&opts.addr, "addr", "", "destination host:port")
	flag.StringVar(&opts.transport, "transport", "", "tcp | udp")
	flag.StringVar(&opts.format, "format", "", "packet format: "+strings.Join(packets.DefaultRegistry().Names(), " | "))
	flag.StringVar(&opts.variant, "variant", "", "variant for sum-typed formats (e.g. working, in_reach)")
	flag.Var(opts.fields, "set", "field value name=value (repeatable)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "print the encoded packet without sending")
	flag.Parse()

	logging.ConfigureRuntime()
	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "armsend: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg := sender.DefaultConfig()
	if opts.peerName != "" && opts.peersPath == "" {
		logging.Warnf("armsend: -peer %q ignored without -peers", opts.peerName)
	}
	if opts.peersPath != "" {
		pc, err := loadPeersConfig(opts.peersPath)
		if err != nil {
			return err
		}
		cfg = pc.Sender
		if opts.peerName != "" {
			p, ok := pc.Peers[opts.peerName]
			if !ok {
				return fmt.Errorf("unknown peer %q", opts.peerName)
			}
			opts = withPeerDefaults(opts, p)
		}
	}
	if opts.transport == "" {
		opts.transport = "tcp"
	}

	pkt, err := encode(opts.format, opts.variant, opts.fields)
	if err != nil {
		return err
	}
	logging.Debugf("armsend encoded format=%s bytes=%x", opts.format, pkt)
	if opts.dryRun {
		fmt.Println(hex.EncodeToString(pkt))
		return nil
	}
	if opts.addr == "" {
		return errors.New("destination addr is required")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	switch strings.ToLower(opts.transport) {
	case "tcp":
		err = sender.SendTCP(ctx, opts.addr, pkt, cfg)
	case "udp":
		err = sender.SendUDP(ctx, opts.addr, pkt, cfg)
	default:
		return fmt.Errorf("unknown transport %q", opts.transport)
	}
	if err != nil {
		return err
	}
	logging.Infof("armsend sent format=%s bytes=%d addr=%s transport=%s", opts.format, len(pkt), opts.addr, opts.transport)
	return nil
}

// withPeerDefaults fills unset flags from the named peer.
func withPeerDefaults(opts options, p peer) options {
	if opts.addr == "" {
		opts.addr = p.Addr
	}
	if opts.transport == "" {
		opts.transport = p.Transport
	}
	if opts.format == "" {
		opts.format = p.Format
	}
	return opts
}

func encode(format, variant string, fields map[string]uint32) ([]byte, error) {
	f, err := packets.DefaultRegistry().Lookup(format)
	if err != nil {
		return nil, err
	}
	v, err := f.Build(strings.ToLower(strings.TrimSpace(variant)), fields)
	if err != nil {
		return nil, err
	}
	return f.Encode(v)
}
