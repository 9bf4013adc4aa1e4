// Package meanreversion trades a pair on the rolling Z-score of its
// regression spread (Bollinger band style).
package meanreversion

import (
	"context"
	"math"

	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/signal"
	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

const Name = "bollinger"

const (
	DefaultLookback    = 20
	DefaultEntryZScore = 1.0
	DefaultExitZScore  = 0.0
)

// maxSizingLeverage caps the leverage used for position sizing.
const maxSizingLeverage = 4

type Config struct {
	First       string
	Second      string
	Lookback    int
	EntryZScore float64
	ExitZScore  float64
	// SeedFromHistory seeds the Z-score engine with the trading context's
	// history so it can score from the first tick.
	SeedFromHistory bool
}

func DefaultConfig(first, second string) Config {
	return Config{
		First:       first,
		Second:      second,
		Lookback:    DefaultLookback,
		EntryZScore: DefaultEntryZScore,
		ExitZScore:  DefaultExitZScore,
	}
}

// Strategy is the Z-score pairs strategy. The first leg is the regressor.
type Strategy struct {
	*strategy.Base
	first  string
	second string
	cache  *SignalCache
	entry  *ZScoreEntry
	exit   *ZScoreExit
}

// New builds the strategy and registers the Z-score entry and exit criteria.
func New(ctx context.Context, tradingContext trading.TradingContext, config Config, log *logger.Logger) (*Strategy, error) {
	if config.First == "" || config.Second == "" || config.First == config.Second {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "bollinger strategy needs two distinct symbols, got %q and %q", config.First, config.Second)
	}

	if config.EntryZScore < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "entry z-score must not be negative, got %v", config.EntryZScore)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	log = log.Named(Name)

	zScore, err := newZScore(ctx, tradingContext, config, log)
	if err != nil {
		return nil, err
	}

	s := &Strategy{
		Base:   strategy.NewBase(tradingContext, log),
		first:  config.First,
		second: config.Second,
		cache:  NewSignalCache(zScore, tradingContext, config.First, config.Second),
	}

	s.entry = NewZScoreEntry(s.cache, config.EntryZScore)
	s.exit = NewZScoreExit(s.cache, tradingContext, config.First, config.ExitZScore)

	if err := s.AddCriterion(ctx, strategy.RoleEntry, s.entry); err != nil {
		return nil, err
	}

	if err := s.AddCriterion(ctx, strategy.RoleExit, s.exit); err != nil {
		return nil, err
	}

	return s, nil
}

func newZScore(ctx context.Context, tradingContext trading.TradingContext, config Config, log *logger.Logger) (*signal.ZScore, error) {
	if !config.SeedFromHistory {
		return signal.NewZScore(config.Lookback)
	}

	first, err := tradingContext.History(ctx, config.First)
	if err != nil {
		return nil, err
	}

	second, err := tradingContext.History(ctx, config.Second)
	if err != nil {
		return nil, err
	}

	aligned := types.Align(first, second)
	size := signal.HistorySize(config.Lookback)

	if aligned.Len() < size {
		log.Warn("Not enough history to seed the z-score, collecting it live",
			zap.Int("available", aligned.Len()),
			zap.Int("required", size),
		)

		return signal.NewZScore(config.Lookback)
	}

	tail := aligned.Rows[aligned.Len()-size:]
	xs := make([]float64, size)
	ys := make([]float64, size)

	for i, row := range tail {
		xs[i] = row.Prices[config.First]
		ys[i] = row.Prices[config.Second]
	}

	return signal.NewZScoreWithHistory(config.Lookback, xs, ys)
}

func (s *Strategy) Name() string {
	return Name
}

// OnTick starts a new signal tick and runs the state machine.
func (s *Strategy) OnTick(ctx context.Context) strategy.TickAction {
	s.cache.Invalidate()

	return s.Tick(ctx, s)
}

// OpenPosition sizes both legs by the hedge ratio: the first leg is bought
// when the score is negative, the second leg when it is positive.
func (s *Strategy) OpenPosition(ctx context.Context) error {
	zScore := s.cache.Engine()

	z, err := zScore.LastZScore()
	if err != nil {
		return err
	}

	hedgeRatio, err := zScore.HedgeRatio()
	if err != nil {
		return err
	}

	hedgeRatio = math.Abs(hedgeRatio)
	tradingContext := s.TradingContext()

	x, err := tradingContext.LastPrice(s.first)
	if err != nil {
		return err
	}

	y, err := tradingContext.LastPrice(s.second)
	if err != nil {
		return err
	}

	leverage := math.Min(maxSizingLeverage, float64(tradingContext.Leverage()))
	size := tradingContext.NetValue() * 0.5 * leverage / (y + hedgeRatio*x)

	return s.OpenLegs(ctx,
		strategy.Leg{Symbol: s.first, Buy: z < 0, Amount: int(size * hedgeRatio)},
		strategy.Leg{Symbol: s.second, Buy: z > 0, Amount: int(size)},
	)
}

// ClosePosition closes both legs. A leg without an order is logged and skipped.
func (s *Strategy) ClosePosition(ctx context.Context) error {
	return s.CloseSymbols(ctx, s.first, s.second)
}

// Cache exposes the per-tick signal memo.
func (s *Strategy) Cache() *SignalCache {
	return s.cache
}

func (s *Strategy) Entry() *ZScoreEntry {
	return s.entry
}

func (s *Strategy) Exit() *ZScoreExit {
	return s.exit
}

var _ strategy.Strategy = (*Strategy)(nil)
