package engine

import (
	"context"
	"slices"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/accounting"
	"github.com/rxtech-lab/argo-pairs/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-pairs/internal/instrument"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

// referenceHour and referenceMinute mark the daily tick whose price becomes
// the reference close for ChangeBySymbol.
const (
	referenceHour   = 13
	referenceMinute = 0
)

// BacktestTradingContext is a simulated account that fills every order at
// the last replayed price. It is driven by the engine one row at a time and
// is not safe for concurrent use.
type BacktestTradingContext struct {
	deposit    float64
	leverage   int
	commission commission_fee.CommissionFee
	logger     *logger.Logger

	// replayed holds the symbols that have prices in the replayed series.
	replayed []string
	symbols  []string

	now        time.Time
	prices     map[string]float64
	history    map[string][]types.PricePoint
	references map[string]float64

	orders       map[string]types.Order
	openOrders   []types.Order
	closedOrders []types.ClosedOrder
	closedPnL    float64
	commissions  float64
	nextOrderID  int

	pnlHistory   []float64
	fundsHistory []float64
	netValues    []float64

	fatalErr error
}

// NewBacktestTradingContext creates a fresh account of deposit for a replay
// of the given symbols. Order ids start at 1.
func NewBacktestTradingContext(deposit float64, leverage int, commission commission_fee.CommissionFee, replayed []string, log *logger.Logger) *BacktestTradingContext {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if commission == nil {
		commission = commission_fee.NewZeroCommissionFee()
	}

	return &BacktestTradingContext{
		deposit:     deposit,
		leverage:    leverage,
		commission:  commission,
		logger:      log,
		replayed:    slices.Clone(replayed),
		prices:      make(map[string]float64),
		history:     make(map[string][]types.PricePoint),
		references:  make(map[string]float64),
		orders:      make(map[string]types.Order),
		nextOrderID: 1,
	}
}

// Advance moves the simulated clock to row and records the account values
// at the new prices.
func (b *BacktestTradingContext) Advance(row types.MarketRow) {
	b.now = row.Time
	utc := row.Time.UTC()
	isReference := utc.Hour() == referenceHour && utc.Minute() == referenceMinute

	for symbol, price := range row.Prices {
		b.prices[symbol] = price
		b.history[symbol] = append(b.history[symbol], types.PricePoint{Time: row.Time, Price: price})

		if isReference {
			b.references[symbol] = price
		}
	}

	b.pnlHistory = append(b.pnlHistory, b.PnL())
	b.fundsHistory = append(b.fundsHistory, b.AvailableFunds())
	b.netValues = append(b.netValues, b.NetValue())
}

// Time implements trading.TradingContext.
func (b *BacktestTradingContext) Time() time.Time {
	return b.now
}

// LastPrice implements trading.TradingContext. Asking for a symbol that was
// never added is a configuration error that aborts the run.
func (b *BacktestTradingContext) LastPrice(symbol string) (float64, error) {
	if !slices.Contains(b.symbols, symbol) {
		err := errors.Newf(errors.ErrCodeInstrumentNotTracked, "%s is not tracked by the backtest", symbol)
		b.fail(err)

		return 0, err
	}

	price, ok := b.prices[symbol]
	if !ok {
		return 0, errors.NewPriceUnavailableError(symbol)
	}

	return price, nil
}

// History implements trading.TradingContext. It returns the prices replayed
// so far, oldest first.
func (b *BacktestTradingContext) History(_ context.Context, symbol string) (types.PriceSeries, error) {
	if !slices.Contains(b.symbols, symbol) {
		err := errors.Newf(errors.ErrCodeInstrumentNotTracked, "%s is not tracked by the backtest", symbol)
		b.fail(err)

		return types.PriceSeries{}, err
	}

	return types.PriceSeries{Symbol: symbol, Points: slices.Clone(b.history[symbol])}, nil
}

// Order implements trading.TradingContext. Orders are filled immediately at
// the last price and charged commission.
func (b *BacktestTradingContext) Order(_ context.Context, symbol string, buy bool, amount int) (types.Order, error) {
	if amount <= 0 {
		return types.Order{}, errors.Newf(errors.ErrCodeInvalidOrder, "order amount for %s must be positive, got %d", symbol, amount)
	}

	price, err := b.LastPrice(symbol)
	if err != nil {
		return types.Order{}, err
	}

	order := types.NewOrder(b.nextOrderID, symbol, types.SignedAmount(buy, amount), price, b.now)
	order.Status = types.OrderStatusFilled
	b.nextOrderID++

	b.openOrders = append(b.openOrders, order)
	b.orders[symbol] = order
	b.commissions += b.commission.Calculate(order)

	b.logger.Debug("Order opened",
		zap.Int("id", order.ID),
		zap.String("symbol", symbol),
		zap.Int("amount", order.Amount),
		zap.Float64("price", price),
	)

	return order, nil
}

// Close implements trading.TradingContext.
func (b *BacktestTradingContext) Close(_ context.Context, order types.Order) (types.ClosedOrder, error) {
	index := slices.IndexFunc(b.openOrders, func(o types.Order) bool { return o.ID == order.ID })
	if index < 0 {
		return types.ClosedOrder{}, errors.NewNoOrderAvailableError(order.Symbol)
	}

	price, err := b.LastPrice(order.Symbol)
	if err != nil {
		return types.ClosedOrder{}, err
	}

	open := b.openOrders[index]
	closed := accounting.Close(open, price, b.now, instrument.Multiplier(open.Symbol))

	b.openOrders = slices.Delete(b.openOrders, index, index+1)
	b.closedOrders = append(b.closedOrders, closed)
	b.closedPnL += closed.PnL
	b.commissions += b.commission.Calculate(open)

	if current, ok := b.orders[open.Symbol]; ok && current.ID == open.ID {
		delete(b.orders, open.Symbol)
	}

	b.logger.Debug("Order closed",
		zap.Int("id", open.ID),
		zap.String("symbol", open.Symbol),
		zap.Int("amount", -open.Amount),
		zap.Float64("price", price),
		zap.Float64("pnl", closed.PnL),
	)

	return closed, nil
}

// CloseAll closes every open order at the last prices.
func (b *BacktestTradingContext) CloseAll(ctx context.Context) error {
	for _, order := range slices.Clone(b.openOrders) {
		if _, err := b.Close(ctx, order); err != nil {
			return err
		}
	}

	return nil
}

// LastOrder implements trading.TradingContext.
func (b *BacktestTradingContext) LastOrder(symbol string) (types.Order, error) {
	order, ok := b.orders[symbol]
	if !ok {
		return types.Order{}, errors.NewNoOrderAvailableError(symbol)
	}

	return order, nil
}

// PnL implements trading.TradingContext: realized plus unrealized P&L minus
// every commission paid so far.
func (b *BacktestTradingContext) PnL() float64 {
	pnl := b.closedPnL

	for _, order := range b.openOrders {
		price, ok := b.prices[order.Symbol]
		if !ok {
			continue
		}

		pnl += accounting.UnrealizedPnL(order, price, instrument.Multiplier(order.Symbol))
	}

	return pnl - b.commissions
}

// AvailableFunds implements trading.TradingContext.
func (b *BacktestTradingContext) AvailableFunds() float64 {
	locked := 0.0
	for _, order := range b.openOrders {
		locked += accounting.Notional(order) / float64(b.leverage)
	}

	return b.NetValue() - locked
}

// NetValue implements trading.TradingContext.
func (b *BacktestTradingContext) NetValue() float64 {
	return b.deposit + b.PnL()
}

// Leverage implements trading.TradingContext.
func (b *BacktestTradingContext) Leverage() int {
	return b.leverage
}

// AddSymbol implements trading.TradingContext. Only symbols of the replayed
// series can be tracked; adding a symbol twice is a no-op.
func (b *BacktestTradingContext) AddSymbol(_ context.Context, symbol string) error {
	if !slices.Contains(b.replayed, symbol) {
		return errors.Newf(errors.ErrCodeInstrumentNotTracked, "%s has no prices in the replayed series", symbol)
	}

	if !slices.Contains(b.symbols, symbol) {
		b.symbols = append(b.symbols, symbol)
	}

	return nil
}

// RemoveSymbol implements trading.TradingContext. The replayed series is
// fixed for the whole run.
func (b *BacktestTradingContext) RemoveSymbol(symbol string) error {
	return errors.Newf(errors.ErrCodeUnsupportedOperation, "cannot remove %s from a running backtest", symbol)
}

// Symbols implements trading.TradingContext.
func (b *BacktestTradingContext) Symbols() []string {
	return slices.Clone(b.symbols)
}

// ChangeBySymbol implements trading.TradingContext.
func (b *BacktestTradingContext) ChangeBySymbol(symbol string) (float64, error) {
	reference, ok := b.references[symbol]
	if !ok {
		return 0, errors.NewPriceUnavailableError(symbol)
	}

	price, err := b.LastPrice(symbol)
	if err != nil {
		return 0, err
	}

	return accounting.PercentChange(reference, price)
}

// Err returns the first fatal error raised while the strategy was ticking.
func (b *BacktestTradingContext) Err() error {
	return b.fatalErr
}

func (b *BacktestTradingContext) fail(err error) {
	if b.fatalErr == nil {
		b.fatalErr = err
	}
}

func (b *BacktestTradingContext) OpenOrders() []types.Order {
	return slices.Clone(b.openOrders)
}

func (b *BacktestTradingContext) ClosedOrders() []types.ClosedOrder {
	return slices.Clone(b.closedOrders)
}

func (b *BacktestTradingContext) Commissions() float64 {
	return b.commissions
}

func (b *BacktestTradingContext) ClosedPnL() float64 {
	return b.closedPnL
}

// PnLHistory returns the P&L recorded at every replayed row.
func (b *BacktestTradingContext) PnLHistory() []float64 {
	return slices.Clone(b.pnlHistory)
}

func (b *BacktestTradingContext) FundsHistory() []float64 {
	return slices.Clone(b.fundsHistory)
}

// NetValueHistory returns the net value recorded at every replayed row.
func (b *BacktestTradingContext) NetValueHistory() []float64 {
	return slices.Clone(b.netValues)
}

var _ trading.TradingContext = (*BacktestTradingContext)(nil)
