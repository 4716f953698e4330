package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/order"
	"storefront/internal/pricing"
	"storefront/internal/store"
	"storefront/internal/wishlist"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("backend", cfg.Store.Backend).Msg("starting storefront state engine")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, cleanup, err := newStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer cleanup()

	bus := events.NewBus(logger)
	subscribeEventLog(bus, logger)

	shoppingCart, err := cart.New(ctx, st, pricing.DefaultTable(), pricing.Config{
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		FlatShippingFee:       cfg.Pricing.FlatShippingFee,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cart: %w", err)
	}

	wl, err := wishlist.New(ctx, st, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize wishlist: %w", err)
	}

	orders, err := order.NewManager(ctx, st, bus, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize order manager: %w", err)
	}

	catalogClient := catalog.NewClient(
		cfg.Catalog.BaseURL,
		time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second,
		logger,
	)

	logger.Info().
		Int("cart_items", shoppingCart.Len()).
		Int("wishlist_entries", wl.Count()).
		Int("orders", orders.Len()).
		Msg("commerce state hydrated")

	if products, err := catalogClient.ListProducts(ctx); err != nil {
		logger.Warn().Err(err).Str("catalog", cfg.Catalog.BaseURL).Msg("catalogue unreachable")
	} else {
		logger.Info().Int("products", len(products)).Msg("catalogue reachable")
	}

	// Block until we receive a shutdown signal. The state engine is
	// driven by the embedding presentation layer; this binary only
	// hosts it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	return nil
}

// newStore builds the configured persistence backend.
func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := store.NewPool(ctx, cfg.Database.ConnectionString(), nil)
		if err != nil {
			return nil, nil, err
		}
		st, err := store.NewPostgresStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return st, pool.Close, nil

	default:
		st, err := store.NewFileStore(cfg.Store.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	}
}

// subscribeEventLog attaches a listener per order topic, standing in
// for the admin dashboard surface that observes mutations performed
// elsewhere.
func subscribeEventLog(bus *events.Bus, logger zerolog.Logger) {
	l := logger.With().Str("component", "event-log").Logger()

	bus.Subscribe(events.TopicOrderPlaced, func(payload any) {
		if e, ok := payload.(events.OrderPlaced); ok {
			l.Info().Str("order_id", e.Order.ID).Float64("total", e.Order.Total).Msg("order placed")
		}
	})
	bus.Subscribe(events.TopicOrderUpdated, func(payload any) {
		if e, ok := payload.(events.OrderUpdated); ok {
			l.Info().Str("order_id", e.OrderID).Str("status", string(e.Status)).Msg("order updated")
		}
	})
	bus.Subscribe(events.TopicOrderDeleted, func(payload any) {
		if e, ok := payload.(events.OrderDeleted); ok {
			l.Info().Str("order_id", e.OrderID).Msg("order deleted")
		}
	})
	bus.Subscribe(events.TopicOrdersCleared, func(payload any) {
		l.Info().Msg("orders cleared")
	})
}
