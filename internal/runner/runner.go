// Package runner drives strategy ticks on a wall clock schedule.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

// StrategyRunner ticks a strategy until it is stopped.
type StrategyRunner interface {
	// Run adds symbols to the strategy and ticks it until ctx is done or
	// Stop is called.
	Run(ctx context.Context, s strategy.Strategy, symbols []string) error
	Stop()
}

// TickSecond is the second of every minute at which PerMinuteRunner ticks.
const TickSecond = 59

// OnTick is called after every tick with its outcome.
type OnTick func(at time.Time, action strategy.TickAction)

// PerMinuteRunner ticks once a minute at second TickSecond.
type PerMinuteRunner struct {
	log    *logger.Logger
	onTick OnTick

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPerMinuteRunner creates a runner. onTick may be nil.
func NewPerMinuteRunner(log *logger.Logger, onTick OnTick) *PerMinuteRunner {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &PerMinuteRunner{
		log:    log.Named("runner"),
		onTick: onTick,
		now:    time.Now,
		after:  time.After,
	}
}

// Run implements StrategyRunner. It blocks until ctx is done or Stop is
// called and returns nil in both cases.
func (r *PerMinuteRunner) Run(ctx context.Context, s strategy.Strategy, symbols []string) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "strategy is nil")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()

		return errors.New(errors.ErrCodeUnsupportedOperation, "runner is already running")
	}
	r.cancel = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
	}()

	for _, symbol := range symbols {
		if err := s.AddSymbol(ctx, symbol); err != nil {
			return errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to add %s to %s", symbol, s.Name())
		}
	}

	r.log.Info("Runner started", zap.String("strategy", s.Name()), zap.Strings("symbols", symbols))

	for {
		if ctx.Err() != nil {
			r.log.Info("Runner stopped", zap.String("strategy", s.Name()))

			return nil
		}

		select {
		case <-ctx.Done():
			continue
		case at := <-r.after(untilNextTick(r.now())):
			action := s.OnTick(ctx)

			r.log.Debug("Tick", zap.Time("at", at), zap.String("action", string(action)))

			if r.onTick != nil {
				r.onTick(at, action)
			}
		}
	}
}

// Stop implements StrategyRunner. It is safe to call at any time and more
// than once.
func (r *PerMinuteRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
}

// untilNextTick is the wait from now to the next second TickSecond.
func untilNextTick(now time.Time) time.Duration {
	next := now.Truncate(time.Minute).Add(TickSecond * time.Second)
	if !next.After(now) {
		next = next.Add(time.Minute)
	}

	return next.Sub(now)
}

var _ StrategyRunner = (*PerMinuteRunner)(nil)
