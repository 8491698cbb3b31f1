package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/api"
	"github.com/spigell/mentor-matcher/internal/logger"
	"github.com/spigell/mentor-matcher/internal/profiles"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ranking requests over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Duration("reload-interval", 0, "reload the candidate pool periodically; 0 disables reloading")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("pool.reload-interval", serveCmd.Flags().Lookup("reload-interval"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the mentor-matcher server", zap.String("version", version))

	engine, err := buildEngine(config, logger)
	if err != nil {
		logger.Fatal("building the matching engine", zap.Error(err))
	}

	source, closeSource, err := buildSource(config, logger)
	if err != nil {
		logger.Fatal("preparing candidate source", zap.Error(err))
	}
	defer closeSource()

	load := func(ctx context.Context) (*profiles.Candidates, error) {
		return loadPool(ctx, source, config, logger)
	}

	server := api.NewServer(config.Server, engine, logger.Named("api"))
	if err := server.Reload(ctx, load); err != nil {
		logger.Fatal("loading initial candidate pool", zap.Error(err))
	}

	go server.WatchPool(ctx, config.Pool.ReloadInterval, load)
	go refreshOnHangup(ctx, server, func(ctx context.Context) (*profiles.Candidates, error) {
		return refreshPool(ctx, source, config, logger)
	}, logger)

	if err := server.Run(ctx); err != nil {
		logger.Error("http server stopped", zap.Error(err))
		return
	}
	logger.Info("http server stopped")
}

// refreshOnHangup reloads the pool, bypassing the cache, on every SIGHUP.
func refreshOnHangup(ctx context.Context, server *api.Server, refresh api.PoolLoader, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logger.Info("refreshing candidate pool", zap.String("reason", "SIGHUP"))
			if err := server.Reload(ctx, refresh); err != nil {
				logger.Warn("keeping previous pool", zap.Error(err))
			}
		}
	}
}
