package main

import (
	"context"
	"delivery-eta-service/internal/adapters/cache"
	"delivery-eta-service/internal/adapters/events"
	"delivery-eta-service/internal/adapters/prediction"
	"delivery-eta-service/internal/adapters/repositories"
	"delivery-eta-service/internal/adapters/routing"
	"delivery-eta-service/internal/adapters/weather"
	"delivery-eta-service/internal/api"
	"delivery-eta-service/internal/config"
	"delivery-eta-service/internal/platform/db"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"delivery-eta-service/internal/services"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// main is the application composition root.
// It wires concrete adapters (OSRM, OpenWeatherMap, prediction service,
// Redis, Kafka, Postgres) behind ports and starts the HTTP server.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serves live route and ETA forecasts for deliveries",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, v, cfgFile)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	cmd.Flags().String("port", "8080", "HTTP listen port")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().Duration("debounce-window", services.DefaultDebounceWindow, "minimum time between forecast cycles")

	_ = v.BindPFlag("http.port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))
	_ = v.BindPFlag("engine.debounce_window", cmd.Flags().Lookup("debounce-window"))

	return cmd
}

func run(ctx context.Context, v *viper.Viper, cfgFile string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	deps := services.Dependencies{
		Routes: routing.NewOSRMRouteProvider(cfg.Routing.BaseURL, nil, cfg.Engine.CallTimeout),
		Model:  prediction.NewHTTPDurationModel(cfg.Prediction.URL, nil, cfg.Engine.CallTimeout),
	}

	if cfg.Weather.APIKey != "" {
		wp, err := weather.NewOpenWeatherProvider(cfg.Weather.BaseURL, cfg.Weather.APIKey, nil, cfg.Engine.CallTimeout)
		if err != nil {
			return err
		}
		deps.Weather = wp
	} else {
		log.Warn("WEATHER_API_KEY not set; weather defaults to Clear")
	}

	// The route cache is optional; routing works without it.
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Warn("route cache disabled")
		} else {
			defer client.Close()
			deps.RouteCache = cache.NewRedisRouteCache(client, cfg.Redis.TTL, log)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := events.NewKafkaForecastPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Engine.CallTimeout, log)
		if err != nil {
			return err
		}
		defer pub.Close()
		deps.Publisher = pub
	}

	var repo ports.DeliveryRepository
	if cfg.Database.URL != "" {
		conn, err := db.Open(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer conn.Close()
		repo = repositories.NewPostgresDeliveryRepository(conn, log)
	}

	manager := services.NewSessionManager(deps, services.EngineOptions{
		DebounceWindow:    cfg.Engine.DebounceWindow,
		PredictionRetries: cfg.Engine.PredictionRetries,
		CallTimeout:       cfg.Engine.CallTimeout,
		Location:          loc,
	}, log)
	defer manager.CloseAll()

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           api.NewRouter(manager, repo, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
