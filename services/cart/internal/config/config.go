package config

import (
	"context"

	"gorm.io/gorm"

	base "github.com/Skotchmaster/coffeemania/pkg/config"
	"github.com/Skotchmaster/coffeemania/pkg/db"
)

type Config struct {
	base.Config
}

func Load() Config {
	cfg := Config{Config: base.Load("cart")}
	cfg.MustDatabase()
	return cfg
}

func InitDB(ctx context.Context, cfg Config) (*gorm.DB, error) {
	return db.Open(ctx, cfg.DatabaseURL)
}
