package trading

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/types"
)

// TradingContext is the view of a market and an account that strategies
// trade through. The backtest and the live implementations behave the same
// from the strategy's point of view.
//
//nolint:interfacebloat // TradingContext is the single surface strategies see
type TradingContext interface {
	// Time returns the current (simulated or wall clock) time.
	Time() time.Time
	// LastPrice returns the most recent price of a tracked symbol.
	// Returns ErrCodePriceUnavailable when no price is known yet.
	LastPrice(symbol string) (float64, error)
	// History returns the recent price history of a symbol. The backtest
	// context returns the prices replayed so far, the live context asks the
	// broker for its configured lookback.
	History(ctx context.Context, symbol string) (types.PriceSeries, error)
	// Order opens a new order of amount units. Buy opens a long position.
	Order(ctx context.Context, symbol string, buy bool, amount int) (types.Order, error)
	// Close closes an outstanding order at the current price.
	Close(ctx context.Context, order types.Order) (types.ClosedOrder, error)
	// LastOrder returns the outstanding order of a symbol.
	// Returns ErrCodeNoOrderAvailable when the symbol holds no position.
	LastOrder(symbol string) (types.Order, error)
	// PnL returns the account profit and loss, including open positions.
	PnL() float64
	// AvailableFunds returns the capital not tied up in open positions.
	AvailableFunds() float64
	// NetValue returns the account net liquidation value.
	NetValue() float64
	// Leverage returns the account leverage.
	Leverage() int
	// AddSymbol starts tracking a symbol.
	AddSymbol(ctx context.Context, symbol string) error
	// RemoveSymbol stops tracking a symbol.
	RemoveSymbol(symbol string) error
	// Symbols returns the tracked symbols in registration order.
	Symbols() []string
	// ChangeBySymbol returns the percent change of a symbol against its
	// previous reference close.
	ChangeBySymbol(symbol string) (float64, error)
}
