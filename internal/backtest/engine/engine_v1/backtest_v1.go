package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-pairs/internal/accounting"
	"github.com/rxtech-lab/argo-pairs/internal/backtest/engine"
	"github.com/rxtech-lab/argo-pairs/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-pairs/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/builder"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/internal/version"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	initialized   bool
	resultsFolder string
	log           *logger.Logger
	datasource    datasource.DataSource
	factory       builder.Factory
}

// NewBacktestEngineV1 creates an engine. A nil logger is replaced by the
// production logger on Initialize.
func NewBacktestEngineV1(log *logger.Logger) engine.Engine {
	return &BacktestEngineV1{
		config:        EmptyConfig(),
		initialized:   false,
		resultsFolder: "",
		log:           log,
		datasource:    nil,
		factory:       nil,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	b.config = EmptyConfig()

	if err := yaml.Unmarshal([]byte(config), &b.config); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest config", err)
	}

	if err := b.config.Validate(); err != nil {
		return err
	}

	if err := version.CheckVersionCompatibility(version.GetVersion(), b.config.EngineVersion); err != nil {
		return err
	}

	if b.log == nil {
		var loggerError error

		b.log, loggerError = logger.NewLogger()
		if loggerError != nil {
			return loggerError
		}
	}

	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.String("strategy", string(b.config.Strategy.Type)),
		zap.Strings("symbols", b.config.Strategy.Symbols),
		zap.Float64("initial_deposit", b.config.InitialDeposit),
		zap.Int("leverage", b.config.Leverage),
	)

	return nil
}

func (b *BacktestEngineV1) SetDataSource(dataSource datasource.DataSource) error {
	b.datasource = dataSource

	return nil
}

func (b *BacktestEngineV1) SetStrategyFactory(factory builder.Factory) error {
	b.factory = factory

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder

	return nil
}

// Config returns the parsed configuration.
func (b *BacktestEngineV1) Config() BacktestEngineV1Config {
	return b.config
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (types.BacktestReport, error) {
	if !b.initialized {
		return types.BacktestReport{}, errors.New(errors.ErrCodeBacktestConfigError, "engine is not initialized")
	}

	if b.datasource == nil {
		return types.BacktestReport{}, errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	series, err := b.datasource.Load(ctx, b.config.Strategy.Symbols, b.config.StartTime, b.config.EndTime)
	if err != nil {
		return types.BacktestReport{}, err
	}

	factory := b.factory
	if factory == nil {
		factory = builder.NewFactory(b.config.Strategy, b.log)
	}

	return b.Replay(ctx, series, factory, callbacks)
}

// Replay implements engine.Engine. Every call starts from a fresh simulated
// account, so replaying the same series twice gives the same result.
func (b *BacktestEngineV1) Replay(ctx context.Context, series types.MultiSeries, factory builder.Factory, callbacks engine.LifecycleCallbacks) (report types.BacktestReport, err error) {
	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	if !b.initialized {
		return report, errors.New(errors.ErrCodeBacktestConfigError, "engine is not initialized")
	}

	if factory == nil {
		return report, errors.New(errors.ErrCodeBacktestNoStrategy, "no strategy factory set")
	}

	if series.Len() == 0 {
		return report, errors.Newf(errors.ErrCodeInsufficientData, "no prices to replay for %v", series.Symbols)
	}

	tradingContext := NewBacktestTradingContext(
		b.config.InitialDeposit,
		b.config.Leverage,
		commission_fee.GetCommissionFeeHandler(b.config.Broker),
		series.Symbols,
		b.log,
	)

	for _, symbol := range series.Symbols {
		if err := tradingContext.AddSymbol(ctx, symbol); err != nil {
			return report, err
		}
	}

	s, err := factory(ctx, tradingContext)
	if err != nil {
		return report, err
	}

	for _, symbol := range series.Symbols {
		if err := s.AddSymbol(ctx, symbol); err != nil {
			return report, err
		}
	}

	runID := uuid.New().String()
	total := series.Len()

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(runID, series.Symbols, total); err != nil {
			return report, err
		}
	}

	b.log.Info("Backtest started",
		zap.String("run_id", runID),
		zap.String("strategy", s.Name()),
		zap.Strings("symbols", series.Symbols),
		zap.Int("rows", total),
	)

	stoppedEarly := false

	for i, row := range series.Rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		tradingContext.Advance(row)

		if funds := tradingContext.AvailableFunds(); funds < 0 {
			b.log.Warn("Available funds went negative, stopping the replay",
				zap.Time("time", row.Time),
				zap.Float64("available_funds", funds),
			)

			stoppedEarly = true

			break
		}

		action := s.OnTick(ctx)

		if err := tradingContext.Err(); err != nil {
			b.log.Error("Backtest aborted", zap.Time("time", row.Time), zap.Error(err))

			return report, err
		}

		if callbacks.OnTick != nil {
			if err := (*callbacks.OnTick)(row.Time, action); err != nil {
				return report, err
			}
		}

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(i+1, total); err != nil {
				return report, err
			}
		}
	}

	if err := tradingContext.CloseAll(ctx); err != nil {
		return report, fmt.Errorf("failed to close the remaining orders: %w", err)
	}

	report = b.buildReport(runID, series, tradingContext, stoppedEarly)

	if b.resultsFolder != "" {
		if err := writeResults(b.resultsFolder, report); err != nil {
			return report, err
		}
	}

	b.log.Info("Backtest finished",
		zap.String("run_id", runID),
		zap.String("summary", Summary(report)),
		zap.Int("trades", report.TotalTrades),
	)

	return report, nil
}

func (b *BacktestEngineV1) buildReport(runID string, series types.MultiSeries, tradingContext *BacktestTradingContext, stoppedEarly bool) types.BacktestReport {
	netValues := tradingContext.NetValueHistory()
	closed := tradingContext.ClosedOrders()
	finalValue := tradingContext.NetValue()
	totalReturn := finalValue/b.config.InitialDeposit - 1

	report := types.BacktestReport{
		RunID:            runID,
		Symbols:          series.Symbols,
		StartTime:        series.Rows[0].Time,
		EndTime:          series.Rows[len(netValues)-1].Time,
		InitialDeposit:   b.config.InitialDeposit,
		Leverage:         b.config.Leverage,
		Commissions:      tradingContext.Commissions(),
		PnL:              tradingContext.PnL(),
		FinalValue:       finalValue,
		Return:           totalReturn,
		AnnualizedReturn: accounting.AnnualizedReturn(totalReturn, len(netValues)),
		SharpeRatio:      accounting.SharpeRatio(netValues, b.config.PeriodsPerYear),
		MaxDrawdown:      accounting.MaxDrawdown(netValues),
		TotalTrades:      len(closed),
		StoppedEarly:     stoppedEarly,
		ClosedOrders:     closed,
	}

	for _, order := range closed {
		switch {
		case order.PnL > 0:
			report.WinningTrades++
		case order.PnL < 0:
			report.LosingTrades++
		}
	}

	return report
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}
