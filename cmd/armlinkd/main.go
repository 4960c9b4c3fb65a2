package main

import (
	"flag"
	"os"

	"github.com/danmuck/armwire/internal/config"
	"github.com/danmuck/armwire/internal/daemon"
	"github.com/danmuck/armwire/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("config", "cmd/armlinkd/config.toml", "daemon config path")
	flag.Parse()

	logging.ConfigureRuntime()
	log.Logger = log.Logger.With().Str("app", "armlinkd").Logger()

	cfg, err := config.LoadDaemonConfig(*path)
	if err != nil {
		logging.Errorf("armlinkd: %v", err)
		os.Exit(1)
	}
	svcCfg, err := config.ServiceConfig(cfg)
	if err != nil {
		logging.Errorf("armlinkd: %v", err)
		os.Exit(1)
	}
	if err := daemon.NewService(svcCfg).Run(); err != nil {
		logging.Errorf("armlinkd: %v", err)
		os.Exit(1)
	}
}
