package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"paygate/config"
	httpcontroller "paygate/internal/controller/http"
	"paygate/internal/controller/http/handlers"
	"paygate/internal/domain/checkout"
	"paygate/internal/domain/credentials"
	"paygate/internal/domain/gateway"
	"paygate/internal/domain/reference"
	"paygate/internal/external/breaker"
	"paygate/internal/external/httpclient"
	"paygate/internal/external/kafka"
	"paygate/internal/external/paypal"
	"paygate/internal/external/paystack"
	"paygate/internal/external/redis"
	"paygate/internal/external/stripe"
	checkout_repo "paygate/internal/repo/checkout"
	"paygate/pkg/health"
	"paygate/pkg/postgres"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App is the wired gateway: an HTTP engine plus the infrastructure it owns.
type App struct {
	Engine *gin.Engine

	closers []func()
}

// New wires the gateway. Postgres, Redis and Kafka are each optional and are
// skipped when their address is empty.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{}
	creds := cfg.Credentials()
	healthRegistry := health.NewRegistry()

	gw := gateway.NewService(creds, reference.NewGenerator(), adapters(cfg, creds),
		gateway.WithCallbackPath(cfg.CallbackPath),
		gateway.WithCancelPath(cfg.CancelPath),
	)

	var opts []checkout.Option

	if cfg.PgURL != "" {
		pg, err := postgres.New(cfg.PgURL, postgres.MaxPoolSize(cfg.PgPoolMax))
		if err != nil {
			return nil, fmt.Errorf("app - New - postgres.New: %w", err)
		}
		a.closers = append(a.closers, pg.Close)

		if err := ApplyMigrations(cfg.PgURL, MigrationFS); err != nil {
			a.Close()
			return nil, fmt.Errorf("app - New - ApplyMigrations: %w", err)
		}

		opts = append(opts, checkout.WithRepo(checkout_repo.NewPgCheckoutRepo(pg)))
		healthRegistry.Register(health.NewPingChecker("postgres", pg.Pool.Ping))
	}

	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app - New - redis.NewClient: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })

		opts = append(opts, checkout.WithReplayStore(redis.NewIdempotencyStore(rdb)))
		healthRegistry.Register(health.NewPingChecker("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaSessionsTopic)
		a.closers = append(a.closers, func() { _ = publisher.Close() })

		opts = append(opts, checkout.WithPublisher(publisher))
		healthRegistry.Register(health.NewKafkaChecker(cfg.KafkaBrokers))
	}

	checkoutService := checkout.NewService(gw, opts...)

	a.Engine = httpcontroller.NewGinEngine()
	router := httpcontroller.NewRouter(
		handlers.NewCheckoutHandler(checkoutService),
		handlers.NewProvidersHandler(gw),
		healthRegistry,
	)
	router.SetUp(a.Engine)

	for _, st := range gw.ProviderStatus() {
		slog.Info("provider status",
			slog.String("provider", st.Provider.String()),
			slog.Bool("configured", st.Configured),
			slog.Any("missing", st.Missing),
			slog.Any("invalid", st.Invalid),
		)
	}
	return a, nil
}

// Close releases infrastructure in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Run serves HTTP until SIGINT or SIGTERM.
func Run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting HTTP server", slog.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app - Run - ListenAndServe: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func adapters(cfg config.Config, creds credentials.Credentials) []gateway.Adapter {
	hc := httpclient.New()

	list := []gateway.Adapter{
		stripe.New(stripe.Config{
			SecretKey:  creds.Stripe.SecretKey,
			APIBaseURL: creds.StripeAPIURL(),
			Timeout:    cfg.SessionTimeout,
			HTTPClient: hc,
		}),
		paypal.New(paypal.Config{
			ClientID:       creds.PayPal.ClientID,
			ClientSecret:   creds.PayPal.ClientSecret,
			APIBaseURL:     creds.PayPalAPIURL(),
			BrandName:      cfg.PayPalBrandName,
			TokenTimeout:   cfg.TokenTimeout,
			SessionTimeout: cfg.SessionTimeout,
			HTTPClient:     hc,
		}),
		paystack.New(paystack.Config{
			SecretKey:  creds.Paystack.SecretKey,
			APIBaseURL: creds.PaystackAPIURL(),
			Timeout:    cfg.SessionTimeout,
			HTTPClient: hc,
		}),
	}

	if !cfg.BreakerEnabled {
		return list
	}
	bcfg := breaker.DefaultConfig()
	if cfg.BreakerFailures > 0 {
		bcfg.ConsecutiveFailures = cfg.BreakerFailures
	}
	if cfg.BreakerOpenTimeout > 0 {
		bcfg.OpenTimeout = cfg.BreakerOpenTimeout
	}
	for i, a := range list {
		list[i] = breaker.Wrap(a, bcfg)
	}
	return list
}
