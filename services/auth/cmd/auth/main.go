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
	"github.com/labstack/echo/v4/middleware"

	base "github.com/Skotchmaster/coffeemania/pkg/config"
	"github.com/Skotchmaster/coffeemania/pkg/db"
	"github.com/Skotchmaster/coffeemania/pkg/events"
	"github.com/Skotchmaster/coffeemania/pkg/logging"
	loggingmw "github.com/Skotchmaster/coffeemania/pkg/middleware/logging"
	"github.com/Skotchmaster/coffeemania/services/auth/internal/config"
	"github.com/Skotchmaster/coffeemania/services/auth/internal/httpserver"
	"github.com/Skotchmaster/coffeemania/services/auth/internal/repo"
	"github.com/Skotchmaster/coffeemania/services/auth/internal/service"
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

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := config.InitDB(initCtx, cfg)
	cancel()
	if err != nil {
		logger.Error("db init error", "error", err)
		os.Exit(1)
	}

	pub, err := events.FromBrokers(cfg.KafkaBrokers)
	if err != nil {
		logger.Error("kafka init error", "error", err)
		os.Exit(1)
	}

	authService := service.New(repo.New(gdb), pub, cfg.JWTSecret, cfg.TokenTTL)

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: authService},
		Ready:       func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})

	go func() {
		logger.Info("starting auth service", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("echo start", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
	if err := pub.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}
	logger.Info("server stopped")
}
