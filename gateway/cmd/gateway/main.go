package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffeemania/gateway/internal/config"
	"github.com/Skotchmaster/coffeemania/gateway/internal/httpserver"
	base "github.com/Skotchmaster/coffeemania/pkg/config"
	"github.com/Skotchmaster/coffeemania/pkg/logging"
)

func main() {
	base.LoadDotEnv(".env", "../.env")
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	if err := httpserver.Register(e, &httpserver.Deps{
		AuthURL:     cfg.AuthURL,
		CatalogURL:  cfg.CatalogURL,
		CartURL:     cfg.CartURL,
		JWTSecret:   cfg.JWTSecret,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	}); err != nil {
		logger.Error("gateway init error", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("starting gateway", "addr", cfg.ListenAddr)
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("echo start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
}
