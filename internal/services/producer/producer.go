// Package producer implements a self-paced counter that publishes its running total.
package producer

import (
	"context"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/vshulcz/Twintick/internal/domain"
	"go.uber.org/zap"
)

// Producer waits a random number of time units, grows its total and publishes it.
// The total only ever increases. The channel returned by Updates is closed when the first
// call to Run returns; a producer whose total would wrap past math.MaxUint64 stops instead.
type Producer struct {
	name    string
	cfg     Config
	out     chan uint64
	rnd     *rand.Rand
	sleep   func(context.Context, time.Duration) error
	logger  *zap.Logger
	started atomic.Bool
}

// New creates a producer; nil logger means no logging.
func New(name string, cfg Config, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := uint64(time.Now().UnixNano())
	return &Producer{
		name:   name,
		cfg:    cfg,
		out:    make(chan uint64, max(cfg.Buffer, 0)),
		rnd:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), // #nosec G404
		sleep:  sleepCtx,
		logger: logger.Named("producer").With(zap.String("producer", name)),
	}
}

// Name returns the label the producer was created with.
func (p *Producer) Name() string { return p.name }

// Updates is the receive side of the producer's channel.
func (p *Producer) Updates() <-chan uint64 { return p.out }

// Run publishes values until ctx is done. It returns nil on cancellation.
func (p *Producer) Run(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return domain.ErrAlreadyRunning
	}
	defer close(p.out)

	if err := p.cfg.Validate(); err != nil {
		return err
	}

	p.logger.Info("producer started",
		zap.Uint64("min_step", p.cfg.MinStep),
		zap.Uint64("max_step", p.cfg.MaxStep),
		zap.Duration("unit", p.cfg.Unit),
		zap.String("mode", string(p.cfg.Mode)),
	)

	var total uint64
	for {
		wait := p.draw()
		if err := p.sleep(ctx, time.Duration(wait)*p.cfg.Unit); err != nil {
			p.logger.Info("producer stopped while waiting", zap.Uint64("total", total))
			return nil
		}

		step := wait
		if p.cfg.Mode == StepIndependent {
			step = p.draw()
		}
		if total > math.MaxUint64-step {
			p.logger.Warn("counter saturated, producer stopped", zap.Uint64("total", total))
			return nil
		}
		total += step

		select {
		case p.out <- total:
			p.logger.Debug("published", zap.Uint64("total", total), zap.Uint64("step", step))
		case <-ctx.Done():
			p.logger.Info("producer stopped before publishing", zap.Uint64("total", total))
			return nil
		}
	}
}

// draw returns a value in [MinStep, MaxStep].
func (p *Producer) draw() uint64 {
	return p.cfg.MinStep + p.rnd.Uint64N(p.cfg.MaxStep-p.cfg.MinStep+1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
