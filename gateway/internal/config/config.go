package config

import (
	"os"
	"time"

	base "github.com/Skotchmaster/coffeemania/pkg/config"
)

type Config struct {
	ServiceName     string
	LogLevel        string
	ListenAddr      string
	ShutdownTimeout time.Duration

	AuthURL    string
	CatalogURL string
	CartURL    string

	JWTSecret   []byte
	CORSOrigins []string
}

func Load() *Config {
	cfg := &Config{
		ServiceName:     base.EnvDefault("SERVICE_NAME", "gateway"),
		LogLevel:        base.EnvDefault("LOG_LEVEL", "info"),
		ListenAddr:      base.EnvDefault("GATEWAY_ADDR", ":8080"),
		ShutdownTimeout: base.EnvDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second),

		AuthURL:    os.Getenv("AUTH_URL"),
		CatalogURL: os.Getenv("CATALOG_URL"),
		CartURL:    os.Getenv("CART_URL"),

		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		CORSOrigins: base.CSV(base.EnvDefault("CORS_ORIGINS", "*")),
	}
	base.MustNonEmpty(cfg.AuthURL, "AUTH_URL")
	base.MustNonEmpty(cfg.CatalogURL, "CATALOG_URL")
	base.MustNonEmpty(cfg.CartURL, "CART_URL")
	base.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	return cfg
}
