package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/app/basket"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/app/pricing"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/app/repository"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/config"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/core/ports"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/infra/adapters/discount"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/infra/adapters/publisher"
	fsstore "github.com/jcmexdev/ecommerce-basket/internal/basket-service/infra/adapters/store/firestore"
	pgstore "github.com/jcmexdev/ecommerce-basket/internal/basket-service/infra/adapters/store/postgres"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/infra/httpx"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/mediator"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Parse(os.Args[1:], kong.UsageOnError())
	if err != nil {
		fmt.Fprintln(os.Stderr, "basket-service:", err)
		os.Exit(2)
	}
	logger := telemetry.InitLogger(cfg.Telemetry.Level())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("basket service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdown, err := telemetry.SetupTracer(ctx, cfg.Telemetry.TracerConfig("basket-service"))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	store, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	basketCache, closeCache := openCache(ctx, cfg.Cache, logger)
	defer closeCache()

	conn, err := discount.Dial(cfg.Discount.Addr)
	if err != nil {
		return fmt.Errorf("discount client: %w", err)
	}
	defer conn.Close()

	b := mediator.NewBuilder(
		mediator.WithLogger(logger),
		mediator.WithSlowThreshold(cfg.SlowRequestThreshold),
		mediator.WithExpectedErrors(domain.ErrBasketNotFound),
	)
	err = basket.RegisterHandlers(b, basket.Deps{
		Baskets:   repository.NewCachedBasketRepository(store, basketCache, cfg.Cache.TTL, logger),
		Pricing:   pricing.NewEnricher(discount.NewGRPCDiscountClient(conn, cfg.Discount.Timeout, logger), cfg.Discount.MaxConcurrency, logger),
		Publisher: publisher.NewLogPublisher(logger),
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	m, err := b.Build()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(httpx.NewHandler(m, logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("basket service HTTP running", "addr", cfg.HTTPAddr,
			"store", cfg.Store.Driver, "cache", cfg.Cache.Driver, "discount_addr", cfg.Discount.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down basket service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Store, logger *slog.Logger) (ports.BasketRepository, func(), error) {
	switch cfg.Driver {
	case "firestore":
		client, err := fsstore.NewClient(ctx, cfg.FirestoreProject, cfg.FirestoreCredentials)
		if err != nil {
			return nil, nil, err
		}
		return fsstore.New(client), func() { _ = client.Close() }, nil
	default:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		db, err := pgstore.Open(connectCtx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, nil, err
		}
		store := pgstore.New(db)
		if err := store.EnsureSchema(connectCtx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil
	}
}

// openCache never fails: an unreachable Redis only degrades reads to the store.
func openCache(ctx context.Context, cfg config.Cache, logger *slog.Logger) (cache.Cache, func()) {
	if cfg.Driver == "memory" {
		mem := cache.NewMemoryCache()
		return mem, func() { _ = mem.Close() }
	}
	rc := cache.NewRedisCache(cfg.RedisAddr)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable at startup, serving from the store", "addr", cfg.RedisAddr, "error", err)
	}
	return rc, func() { _ = rc.Close() }
}
