package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/bootstrap"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/config"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/db"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/telemetry"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// RootCommand creates and returns the root command
func RootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "test-manager",
		Short:        "Lab test tracking API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default ./configs/config.yaml or ./config.yaml)")

	rootCmd.AddCommand(
		serveCommand(&configPath),
		ensureIndexesCommand(&configPath),
	)
	return rootCmd
}

func serveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func ensureIndexesCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			c := bootstrap.New(cfg, "")
			defer func() { _ = c.Close(context.Background()) }()

			database, err := do.Invoke[*mongo.Database](c.Injector)
			if err != nil {
				return err
			}
			if err := db.EnsureIndexes(cmd.Context(), database); err != nil {
				return err
			}
			do.MustInvoke[*zap.Logger](c.Injector).Info("indexes ensured")
			return nil
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return err
	}

	c := bootstrap.New(cfg, "")
	log, err := do.Invoke[*zap.Logger](c.Injector)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	engine, err := startup(ctx, c)
	if err != nil {
		_ = c.Close(context.Background())
		return err
	}

	addr := net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := c.Close(shutdownCtx); err != nil {
		log.Error("close dependencies", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("flush traces", zap.Error(err))
	}
	return nil
}

func startup(ctx context.Context, c *bootstrap.Container) (*gin.Engine, error) {
	database, err := do.Invoke[*mongo.Database](c.Injector)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureIndexes(ctx, database); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return do.Invoke[*gin.Engine](c.Injector)
}
