package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	base "github.com/Skotchmaster/coffeemania/pkg/config"
	pkgdb "github.com/Skotchmaster/coffeemania/pkg/db"
	"github.com/Skotchmaster/coffeemania/pkg/events"
	"github.com/Skotchmaster/coffeemania/pkg/logging"
	loggingmw "github.com/Skotchmaster/coffeemania/pkg/middleware/logging"

	catalogcfg "github.com/Skotchmaster/coffeemania/services/catalog/internal/config"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/repo"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/search"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/service"
)

func main() {
	base.LoadDotEnv("services/catalog/.env", ".env")
	cfg := catalogcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		logger.Error("db open", "error", err)
		os.Exit(1)
	}

	var index search.Index
	if cfg.Search.URL != "" {
		esIndex, err := search.NewESIndex(ctx, cfg.Search)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search falls back to sql", "error", err)
		} else {
			index = esIndex
		}
	}
	cancel()

	pub, err := events.FromBrokers(cfg.KafkaBrokers)
	if err != nil {
		logger.Error("kafka init", "error", err)
		os.Exit(1)
	}

	svc := service.New(repo.New(db), index, pub)
	handler := &httpserver.CatalogHTTP{Svc: svc}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: handler,
		JWTSecret:      cfg.JWTSecret,
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("catalog listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = pub.Close()
	_ = pkgdb.Close(db)

	logger.Info("catalog stopped")
}
