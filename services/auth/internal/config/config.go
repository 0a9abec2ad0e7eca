package config

import (
	"context"
	"time"

	"gorm.io/gorm"

	base "github.com/Skotchmaster/coffeemania/pkg/config"
	"github.com/Skotchmaster/coffeemania/pkg/db"
)

type Config struct {
	base.Config
	TokenTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Config:   base.Load("auth"),
		TokenTTL: base.EnvDurationDefault("TOKEN_TTL", 7*24*time.Hour),
	}
	cfg.MustDatabase()
	return cfg
}

func InitDB(ctx context.Context, cfg Config) (*gorm.DB, error) {
	return db.Open(ctx, cfg.DatabaseURL)
}
