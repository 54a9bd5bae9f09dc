package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mojomast/arbor"
	httpAdapter "github.com/mojomast/arbor/pkg/adapters/http"
	"github.com/mojomast/arbor/pkg/adapters/memory"
	redisAdapter "github.com/mojomast/arbor/pkg/adapters/redis"
	"github.com/mojomast/arbor/pkg/observability"
	"github.com/mojomast/arbor/pkg/ports"
	"github.com/mojomast/arbor/pkg/session"

	"github.com/mojomast/arbor/internal/logging"
)

// serveConfig is populated from the environment; flags take precedence.
type serveConfig struct {
	Addr        string        `env:"ARBOR_ADDR" envDefault:":8080"`
	Trees       string        `env:"ARBOR_TREES"`
	RedisURL    string        `env:"ARBOR_REDIS_URL"`
	RedisPrefix string        `env:"ARBOR_REDIS_PREFIX" envDefault:"arbor:"`
	SessionTTL  time.Duration `env:"ARBOR_SESSION_TTL"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long: `Starts the engine in server mode, exposing a JSON API over HTTP.
Sessions are held in memory by default; set ARBOR_REDIS_URL (or --redis)
to share them across replicas.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides ARBOR_ADDR)")
	serveCmd.Flags().String("redis", "", "Redis URL for session storage (overrides ARBOR_REDIS_URL)")
}

func runServe(cmd *cobra.Command) error {
	cfg, err := env.ParseAs[serveConfig]()
	if err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if redisURL, _ := cmd.Flags().GetString("redis"); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if trees, _ := cmd.Flags().GetString("trees"); cmd.Flags().Changed("trees") || cfg.Trees == "" {
		cfg.Trees = trees
	}

	logger := logging.New(slog.LevelInfo)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(reg)

	engine, err := arbor.New(cfg.Trees,
		arbor.WithLogger(logger),
		arbor.WithLifecycleHooks(metrics.Hooks()),
	)
	if err != nil {
		return fmt.Errorf("error initializing engine: %w", err)
	}

	var (
		store      ports.SessionStore
		managerOpt []session.Option
	)
	if cfg.RedisURL != "" {
		redisOpts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid redis URL: %w", err)
		}
		client := goredis.NewClient(redisOpts)
		if err := client.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("redis unreachable: %w", err)
		}

		var storeOpts []redisAdapter.StoreOption
		if cfg.SessionTTL > 0 {
			storeOpts = append(storeOpts, redisAdapter.WithTTL(cfg.SessionTTL))
		}
		store = redisAdapter.NewStore(client, cfg.RedisPrefix, storeOpts...)
		managerOpt = append(managerOpt, session.WithDistributedLocker(redisAdapter.NewLocker(client, cfg.RedisPrefix)))
		logger.Info("using redis session store", "prefix", cfg.RedisPrefix)
	} else {
		store = memory.NewStore()
		logger.Info("using in-memory session store")
	}
	managerOpt = append(managerOpt, session.WithLogger(logger))
	sessions := session.NewManager(store, managerOpt...)

	handler := httpAdapter.NewHandler(engine, sessions,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithVersion(arbor.Version),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "trees", cfg.Trees)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		logger.Info("shutdown started", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("server stopped gracefully")
		return nil
	}
}
