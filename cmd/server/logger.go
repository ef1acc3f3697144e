package main

import (
	"context"

	"github.com/vshulcz/Twintick/internal/domain"
	"github.com/vshulcz/Twintick/pkg/observer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// logUpdates reports every applied counter update at debug level.
func logUpdates(l *zap.Logger) observer.Observer[domain.Update] {
	l = l.Named("updates")
	return observer.ObserverFunc[domain.Update](func(_ context.Context, u domain.Update) error {
		l.Debug("counter updated",
			zap.String("counter", domain.SlotLabel(u.Slot)),
			zap.Uint64("value", u.Value),
		)
		return nil
	})
}
