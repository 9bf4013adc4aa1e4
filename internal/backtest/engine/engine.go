package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/builder"
	"github.com/rxtech-lab/argo-pairs/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called once the strategy is built, before the first row is replayed.
// runID is a unique identifier for this run.
type OnBacktestStartCallback func(runID string, symbols []string, totalDataPoints int) error

// OnBacktestEndCallback is called when the backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnTickCallback is called after the strategy ticked on a replayed row.
type OnTickCallback func(at time.Time, action strategy.TickAction) error

// OnProcessDataCallback is called for each data point processed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnTick          *OnTickCallback
	OnProcessData   *OnProcessDataCallback
}

type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetDataSource sets the data source the prices of the configured pair are loaded from.
	SetDataSource(dataSource datasource.DataSource) error
	// SetStrategyFactory replaces the factory built from the strategy section of the config.
	SetStrategyFactory(factory builder.Factory) error
	// SetResultsFolder sets the output directory for the report and the closed orders.
	// An empty folder writes nothing.
	SetResultsFolder(folder string) error
	// Run loads the configured pair from the data source and replays it.
	// The context can be used to cancel the backtest operation.
	Run(ctx context.Context, callbacks LifecycleCallbacks) (types.BacktestReport, error)
	// Replay runs a strategy built by factory over series.
	Replay(ctx context.Context, series types.MultiSeries, factory builder.Factory, callbacks LifecycleCallbacks) (types.BacktestReport, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
