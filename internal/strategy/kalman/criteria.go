package kalman

import (
	"context"
	"math"

	"github.com/rxtech-lab/argo-pairs/internal/collections"
	"github.com/rxtech-lab/argo-pairs/internal/instrument"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/signal"
	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// fixedFutureSize is the position size used when the second leg is a future.
const fixedFutureSize = 4

// maxSizingLeverage caps the leverage used for position sizing.
const maxSizingLeverage = 4

// Signal is what the entry criterion leaves behind for the exit criterion
// and for sizing the position.
type Signal struct {
	// Beta is the hedge ratio read before the latest filter step.
	Beta float64
	// Size is the number of units of the second leg.
	Size float64
	// StdDev is the standard deviation of the recent filter errors.
	StdDev float64
}

type pair struct {
	first  string
	second string
}

func (p pair) bothFutures() bool {
	return instrument.IsFuture(p.first) && instrument.IsFuture(p.second)
}

// scale applies the contract multipliers when both legs are futures.
func (p pair) scale(x, y float64) (float64, float64) {
	if !p.bothFutures() {
		return x, y
	}

	return x * float64(instrument.Multiplier(p.first)), y * float64(instrument.Multiplier(p.second))
}

// ErrorEntry steps the cointegration filter on every evaluation and is met
// when the filter error leaves its recent standard deviation band and the
// resulting position is large enough to trade.
type ErrorEntry struct {
	pair
	tradingContext trading.TradingContext
	cointegration  *signal.Cointegration
	signal         *Signal
	errors         *collections.RingBuffer[float64]
	queueSize      int
	sdMultiplier   float64
	logger         *logger.Logger
}

func newErrorEntry(p pair, tradingContext trading.TradingContext, cointegration *signal.Cointegration, sig *Signal, queueSize int, sdMultiplier float64, log *logger.Logger) *ErrorEntry {
	return &ErrorEntry{
		pair:           p,
		tradingContext: tradingContext,
		cointegration:  cointegration,
		signal:         sig,
		errors:         collections.NewRingBuffer[float64](queueSize + 1),
		queueSize:      queueSize,
		sdMultiplier:   sdMultiplier,
		logger:         log,
	}
}

// Init warms the filter and the error window up with the history the
// trading context knows about. An empty history leaves both cold.
func (e *ErrorEntry) Init(ctx context.Context) error {
	firstHistory, err := e.tradingContext.History(ctx, e.first)
	if err != nil {
		e.logger.Warn("History is not available, starting cold", zap.String("symbol", e.first), zap.Error(err))

		return nil
	}

	secondHistory, err := e.tradingContext.History(ctx, e.second)
	if err != nil {
		e.logger.Warn("History is not available, starting cold", zap.String("symbol", e.second), zap.Error(err))

		return nil
	}

	aligned := types.Align(firstHistory, secondHistory)

	for _, row := range aligned.Rows {
		x, y := e.scale(row.Prices[e.first], row.Prices[e.second])
		e.cointegration.Step(x, y)
		e.errors.Push(e.cointegration.Error())
	}

	e.logger.Info("Cointegration filter initialized from history",
		zap.Int("points", aligned.Len()),
		zap.Float64("beta", e.cointegration.Beta()),
	)

	return nil
}

func (e *ErrorEntry) IsMet(context.Context) (bool, error) {
	x, ok, err := e.price(e.first)
	if !ok {
		return false, err
	}

	y, ok, err := e.price(e.second)
	if !ok {
		return false, err
	}

	beta := e.cointegration.Beta()

	x, y = e.scale(x, y)
	e.cointegration.Step(x, y)

	filterError := e.cointegration.Error()
	e.errors.Push(filterError)

	if e.errors.Len() <= e.queueSize {
		return false, nil
	}

	sd := sampleStdDev(e.errors.Recent(e.queueSize / 2))
	e.signal.StdDev = sd

	if !(math.Abs(filterError) > e.sdMultiplier*sd) {
		return false, nil
	}

	var size float64
	if instrument.IsFuture(e.second) {
		size = fixedFutureSize
		beta = 1
	} else {
		leverage := math.Min(maxSizingLeverage, float64(e.tradingContext.Leverage()))
		size = e.tradingContext.NetValue() * 0.5 * leverage / (y + beta*x)
	}

	e.signal.Beta = beta
	e.signal.Size = size

	e.logger.Debug("Filter error outside band",
		zap.Float64("error", filterError),
		zap.Float64("band", e.sdMultiplier*sd),
		zap.Float64("beta", beta),
		zap.Float64("size", size),
	)

	return beta > 0 && size*beta >= 1, nil
}

// Errors returns the filter errors currently in the window, oldest first.
func (e *ErrorEntry) Errors() []float64 {
	return e.errors.Values()
}

func (e *ErrorEntry) price(symbol string) (float64, bool, error) {
	price, err := e.tradingContext.LastPrice(symbol)
	if err == nil {
		return price, true, nil
	}

	if errors.IsPriceUnavailable(err) {
		e.logger.Warn("Price is not available", zap.String("symbol", symbol))

		return 0, false, nil
	}

	return 0, false, err
}

// ErrorExit is met when the filter error crosses back through the band on the
// side that profits the second leg's position.
type ErrorExit struct {
	strategy.NoInit
	pair
	tradingContext trading.TradingContext
	cointegration  *signal.Cointegration
	signal         *Signal
	sdMultiplier   float64
}

func (e *ErrorExit) IsMet(context.Context) (bool, error) {
	order, err := e.tradingContext.LastOrder(e.second)
	if err != nil {
		if errors.IsNoOrderAvailable(err) {
			return false, nil
		}

		return false, err
	}

	filterError := e.cointegration.Error()
	band := e.sdMultiplier * e.signal.StdDev

	return order.IsLong() && filterError > band || order.IsShort() && filterError < -band, nil
}

// sampleStdDev is the sample standard deviation, 0 for fewer than two values.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	return stat.StdDev(values, nil)
}

var (
	_ strategy.Criterion = (*ErrorEntry)(nil)
	_ strategy.Criterion = (*ErrorExit)(nil)
)
