package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/cat0presale/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"PORT" default:"3001"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	AppEnv          string        `env:"APP_ENV" default:"PROD"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`

	Postgres config.PostgresConfig
	Redis    config.RedisConfig
	Rewards  config.RewardsConfig
	HTTP     config.HTTPConfig
}
