// Package builder turns a StrategyConfig into a ready to tick strategy with
// its generic order and risk criteria attached.
package builder

import (
	"context"

	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/criterion"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/kalman"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/meanreversion"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

// Composable is a strategy whose criteria groups can be extended.
type Composable interface {
	strategy.Strategy
	AddCriterion(ctx context.Context, role strategy.Role, criterion strategy.Criterion) error
}

// Factory builds a strategy for a trading context. The backtest engine calls
// it once per run.
type Factory func(ctx context.Context, tradingContext trading.TradingContext) (strategy.Strategy, error)

// NewFactory returns a Factory bound to config.
func NewFactory(config StrategyConfig, log *logger.Logger) Factory {
	return func(ctx context.Context, tradingContext trading.TradingContext) (strategy.Strategy, error) {
		return Build(ctx, tradingContext, config, log)
	}
}

// Build validates config, creates the selected strategy and appends the
// generic criteria after the strategy's own ones.
func Build(ctx context.Context, tradingContext trading.TradingContext, config StrategyConfig, log *logger.Logger) (strategy.Strategy, error) {
	if tradingContext == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "trading context is nil")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	first, second := config.Symbols[0], config.Symbols[1]

	var (
		s   Composable
		err error
	)

	switch config.Type {
	case StrategyTypeKalman:
		s, err = kalman.New(ctx, tradingContext, kalman.Config{
			First:               first,
			Second:              second,
			ErrorQueueSize:      config.Kalman.ErrorQueueSize,
			EntrySdMultiplier:   config.Kalman.EntrySdMultiplier,
			ExitSdMultiplier:    config.Kalman.ExitSdMultiplier,
			Delta:               config.Kalman.Delta,
			MeasurementVariance: config.Kalman.MeasurementVariance,
		}, log)
	case StrategyTypeBollinger:
		s, err = meanreversion.New(ctx, tradingContext, meanreversion.Config{
			First:           first,
			Second:          second,
			Lookback:        config.Bollinger.Lookback,
			EntryZScore:     config.Bollinger.EntryZScore,
			ExitZScore:      config.Bollinger.ExitZScore,
			SeedFromHistory: config.Bollinger.SeedFromHistory,
		}, log)
	default:
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "unknown strategy type %q", config.Type)
	}

	if err != nil {
		return nil, err
	}

	if err := attachCriteria(ctx, s, tradingContext, config, log); err != nil {
		return nil, err
	}

	log.Info("Strategy built",
		zap.String("strategy", s.Name()),
		zap.Strings("symbols", config.Symbols),
		zap.Bool("stop_loss", config.Criteria.StopLoss != nil),
	)

	return s, nil
}

func attachCriteria(ctx context.Context, s Composable, tradingContext trading.TradingContext, config StrategyConfig, log *logger.Logger) error {
	symbols := config.Symbols
	toggles := config.Criteria

	type entry struct {
		enabled   bool
		role      strategy.Role
		criterion func() strategy.Criterion
	}

	entries := []entry{
		{toggles.NoPendingOrders, strategy.RoleCommon, func() strategy.Criterion {
			return criterion.NewNoPendingOrders(tradingContext, symbols)
		}},
		{toggles.NoOpenOrdersEntry, strategy.RoleEntry, func() strategy.Criterion {
			return criterion.NewNoOpenOrdersExist(tradingContext, symbols)
		}},
		{toggles.OpenOrdersExit, strategy.RoleExit, func() strategy.Criterion {
			return criterion.NewOpenOrdersExistForAllSymbols(tradingContext, symbols)
		}},
		{toggles.FilledOrdersExit, strategy.RoleExit, func() strategy.Criterion {
			return criterion.NewFilledOrdersExistForAllSymbols(tradingContext, symbols)
		}},
		{toggles.StopLoss != nil, strategy.RoleStopLoss, func() strategy.Criterion {
			return criterion.NewDefaultStopLoss(tradingContext, symbols, *toggles.StopLoss, log)
		}},
	}

	for _, e := range entries {
		if !e.enabled {
			continue
		}

		if err := s.AddCriterion(ctx, e.role, e.criterion()); err != nil {
			return err
		}
	}

	return nil
}

var (
	_ Composable = (*kalman.Strategy)(nil)
	_ Composable = (*meanreversion.Strategy)(nil)
)
