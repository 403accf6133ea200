package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" default:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" default:"30m"`

	// Initial connection: fixed backoff between attempts, process exits when exhausted.
	ConnectAttempts int           `env:"PG_CONNECT_ATTEMPTS" default:"5"`
	ConnectBackoff  time.Duration `env:"PG_CONNECT_BACKOFF" default:"2s"`

	// Per-operation retry on connection loss.
	Retry RetryConfig
}

type RetryConfig struct {
	Attempts  int           `env:"PG_RETRY_ATTEMPTS" default:"3"`
	BaseDelay time.Duration `env:"PG_RETRY_BASE_DELAY" default:"100ms"`
	MaxDelay  time.Duration `env:"PG_RETRY_MAX_DELAY" default:"2s"`
}

// RedisConfig is optional: an empty Addr selects the in-memory cooldown store.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" default:""`
	Password string `env:"REDIS_PASSWORD" default:""`
	DB       int    `env:"REDIS_DB" default:"0"`
}

type RewardsConfig struct {
	ClaimCooldown  time.Duration `env:"CLAIM_COOLDOWN" default:"50s"`
	MaxClaimAmount int64         `env:"CLAIM_MAX_AMOUNT" default:"100000"`
	GiftCodeWindow time.Duration `env:"GIFT_CODE_WINDOW" default:"24h"`
}

type HTTPConfig struct {
	CORSOrigins       []string      `env:"CORS_ORIGIN" default:"http://localhost:3000"`
	RateLimitRPS      float64       `env:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" default:"20"`
	TopBuyersCacheTTL time.Duration `env:"TOP_BUYERS_CACHE_TTL" default:"5s"`
}
