package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// EvictionGrace is how long a disconnected player's room slot is held
	// open for a token reconnect before the player is removed.
	EvictionGrace time.Duration `env:"EVICTION_GRACE" envDefault:"30s"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
