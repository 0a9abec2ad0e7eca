package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	base "github.com/Skotchmaster/coffeemania/pkg/config"
	"github.com/Skotchmaster/coffeemania/pkg/logging"
	"github.com/Skotchmaster/coffeemania/pkg/migrate"
)

func main() {
	base.LoadDotEnv(".env", "../.env")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dsn     string
		timeout time.Duration
	)
	logger := logging.New(base.EnvDefault("LOG_LEVEL", "info")).With("service", "migrate")

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply or roll back the Coffeemania schema",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				return fmt.Errorf("database DSN is required (--dsn or DATABASE_URL)")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			cobra.OnFinalize(cancel)
			cmd.SetContext(ctx)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DATABASE_URL"), "postgres connection string")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := migrate.Up(cmd.Context(), dsn); err != nil {
				logger.Error("migrate_up_failed", "error", err)
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := migrate.Down(cmd.Context(), dsn, steps); err != nil {
				logger.Error("migrate_down_failed", "steps", steps, "error", err)
				return err
			}
			logger.Info("migrations rolled back", "steps", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back, 0 for all")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, dirty, err := migrate.Version(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", v, dirty)
			return nil
		},
	}

	root.AddCommand(up, down, version)
	return root
}
