// Package kalman trades a pair on the error of a recursive cointegration
// filter: a position is opened when the error leaves its recent standard
// deviation band and closed when it crosses back.
package kalman

import (
	"context"

	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/signal"
	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
)

const Name = "kalman"

// DefaultErrorQueueSize is the number of filter errors the entry band is built from.
const DefaultErrorQueueSize = 30

type Config struct {
	First  string
	Second string
	// ErrorQueueSize is the error window length; the band uses its most recent half.
	ErrorQueueSize    int
	EntrySdMultiplier float64
	ExitSdMultiplier  float64
	// Delta and MeasurementVariance tune the filter; zero selects the defaults.
	Delta               float64
	MeasurementVariance float64
}

// DefaultConfig returns the configuration for a pair with the default
// window, an entry band of one standard deviation and exit on the mean.
func DefaultConfig(first, second string) Config {
	return Config{
		First:             first,
		Second:            second,
		ErrorQueueSize:    DefaultErrorQueueSize,
		EntrySdMultiplier: 1,
		ExitSdMultiplier:  0,
	}
}

// Strategy is the cointegration pairs strategy.
type Strategy struct {
	*strategy.Base
	pair
	cointegration *signal.Cointegration
	signal        *Signal
	entry         *ErrorEntry
	exit          *ErrorExit
}

// New builds the strategy and registers its entry and exit criteria. Entry
// initialization replays whatever history the trading context provides.
func New(ctx context.Context, tradingContext trading.TradingContext, config Config, log *logger.Logger) (*Strategy, error) {
	if config.First == "" || config.Second == "" || config.First == config.Second {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "kalman strategy needs two distinct symbols, got %q and %q", config.First, config.Second)
	}

	if config.ErrorQueueSize < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "error queue size must be at least 2, got %d", config.ErrorQueueSize)
	}

	if config.EntrySdMultiplier < 0 || config.ExitSdMultiplier < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "standard deviation multipliers must not be negative")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	log = log.Named(Name)
	p := pair{first: config.First, second: config.Second}

	delta, r := config.Delta, config.MeasurementVariance
	if delta == 0 {
		delta = signal.DefaultDelta
	}

	if r == 0 {
		r = signal.DefaultMeasurementVariance
	}

	s := &Strategy{
		Base:          strategy.NewBase(tradingContext, log),
		pair:          p,
		cointegration: signal.NewCointegration(delta, r),
		signal:        &Signal{},
	}

	s.entry = newErrorEntry(p, tradingContext, s.cointegration, s.signal, config.ErrorQueueSize, config.EntrySdMultiplier, log)
	s.exit = &ErrorExit{
		pair:           p,
		tradingContext: tradingContext,
		cointegration:  s.cointegration,
		signal:         s.signal,
		sdMultiplier:   config.ExitSdMultiplier,
	}

	if err := s.AddCriterion(ctx, strategy.RoleEntry, s.entry); err != nil {
		return nil, err
	}

	if err := s.AddCriterion(ctx, strategy.RoleExit, s.exit); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Strategy) Name() string {
	return Name
}

func (s *Strategy) OnTick(ctx context.Context) strategy.TickAction {
	return s.Tick(ctx, s)
}

// OpenPosition trades against the filter error: the second leg is bought
// when the error is negative, the first leg when it is positive.
func (s *Strategy) OpenPosition(ctx context.Context) error {
	filterError := s.cointegration.Error()

	return s.OpenLegs(ctx,
		strategy.Leg{Symbol: s.second, Buy: filterError < 0, Amount: int(s.signal.Size)},
		strategy.Leg{Symbol: s.first, Buy: filterError > 0, Amount: int(s.signal.Size * s.signal.Beta)},
	)
}

// ClosePosition closes both legs. A leg without an order is logged and skipped.
func (s *Strategy) ClosePosition(ctx context.Context) error {
	return s.CloseSymbols(ctx, s.first, s.second)
}

func (s *Strategy) Cointegration() *signal.Cointegration {
	return s.cointegration
}

// Signal returns a copy of the latest sizing signal.
func (s *Strategy) Signal() Signal {
	return *s.signal
}

func (s *Strategy) Entry() *ErrorEntry {
	return s.entry
}

func (s *Strategy) Exit() *ErrorExit {
	return s.exit
}

var _ strategy.Strategy = (*Strategy)(nil)
