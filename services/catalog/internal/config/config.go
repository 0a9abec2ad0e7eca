package config

import (
	"os"

	base "github.com/Skotchmaster/coffeemania/pkg/config"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/search"
)

type Config struct {
	base.Config
	Search search.Config
}

func Load() Config {
	cfg := Config{
		Config: base.Load("catalog"),
		Search: search.Config{
			URL:      os.Getenv("ES_URL"),
			Username: os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    base.EnvDefault("ES_INDEX", search.DefaultIndex),
		},
	}
	cfg.MustDatabase()
	return cfg
}
