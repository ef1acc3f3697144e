package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/vshulcz/Twintick/internal/adapters/http/ginserver"
	"github.com/vshulcz/Twintick/internal/adapters/http/ginserver/middlewares"
	"github.com/vshulcz/Twintick/internal/config"
	"github.com/vshulcz/Twintick/internal/domain"
	"github.com/vshulcz/Twintick/internal/services/aggregator"
	"github.com/vshulcz/Twintick/internal/services/bridge"
	"github.com/vshulcz/Twintick/internal/services/producer"
	"github.com/vshulcz/Twintick/pkg/observer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// producerCount is fixed: the page always shows Value A and Value B.
const producerCount = 2

// run starts the producers, the aggregator and the HTTP server on ln, and blocks until
// ctx is done or one of them fails.
func run(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger, ln net.Listener) error {
	events := observer.NewSubject(logUpdates(logger))
	events.SetErrorHandler(func(u domain.Update, err error) {
		logger.Warn("update observer failed", zap.Int("slot", u.Slot), zap.Error(err))
	})

	producers := make([]*producer.Producer, 0, producerCount)
	sources := make([]<-chan uint64, 0, producerCount)
	for i := range producerCount {
		p := producer.New(domain.SlotLabel(i), cfg.Producer(), logger)
		producers = append(producers, p)
		sources = append(sources, p.Updates())
	}
	agg := aggregator.New(logger, events, sources...)

	h := ginserver.NewHandler(
		bridge.New(agg, cfg.QueryTimeout),
		ginserver.WithLogger(logger),
		ginserver.WithLegacyErrorStatus(cfg.LegacyErrorStatus),
	)
	srv := &http.Server{
		Handler:           ginserver.NewRouter(h, middlewares.ZapLogger(logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range producers {
		g.Go(func() error {
			if err := p.Run(gctx); err != nil {
				return fmt.Errorf("producer %s: %w", p.Name(), err)
			}
			return nil
		})
	}
	g.Go(func() error { return agg.Run(gctx) })
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
