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

	"golang.org/x/sync/errgroup"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/store-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/user"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, logging.Options{
		Service: "store-service-go",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			return err
		}
	}

	products := catalog.NewService(catalog.NewPostgresRepository(pool))
	users := user.NewService(user.NewPostgresRepository(pool))

	cartOpts := []cart.Option{
		cart.WithLogger(logger),
		cart.WithMaxAttempts(cfg.CartMaxAttempts),
	}

	// --- AMQP ---
	if cfg.RabbitMQURL != "" {
		publisher, cleanup, err := startPublisher(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		cartOpts = append(cartOpts, cart.WithNotifier(publisher))
		logger.Info("cart events enabled", "exchange", events.EventsExchange)
	} else {
		logger.Warn("RABBITMQ_URL not set, cart events disabled")
	}

	carts := cart.NewService(cart.NewPostgresRepository(pool), products, cartOpts...)

	// --- HTTP ---
	h := httpapi.NewHandler(carts, products, users, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(h, cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// --- graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// startPublisher wires the cart event publisher: a database/sql handle for
// sequence numbers plus an AMQP channel.
func startPublisher(ctx context.Context, cfg config.Config) (*events.Publisher, func(), error) {
	sqlDB, err := db.OpenSQL(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}

	conn, err := events.Dial(cfg.RabbitMQURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}

	publisher, err := events.NewPublisher(conn, events.NewSequenceRepository(sqlDB))
	if err != nil {
		_ = conn.Close()
		_ = sqlDB.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = publisher.Close()
		_ = conn.Close()
		_ = sqlDB.Close()
	}
	return publisher, cleanup, nil
}
