package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"xo-arena/internal/config"
	"xo-arena/internal/logging"
	"xo-arena/internal/room"
	"xo-arena/internal/session"
	"xo-arena/internal/ws"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	registry := room.NewRegistry()
	defer registry.Close()
	srv := ws.NewServer()
	coord := session.NewCoordinator(srv, registry, cfg.EvictionGrace)
	srv.Attach(coord)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(registry, srv),
		ReadHeaderTimeout: 5 * time.Second,
		// ReadTimeout stays zero: websocket connections idle between moves.
		IdleTimeout: 120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Dur("eviction_grace", cfg.EvictionGrace).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
