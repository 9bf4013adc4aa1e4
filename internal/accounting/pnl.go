// Package accounting holds the P&L arithmetic shared by the simulated and the
// live trading contexts.
package accounting

import (
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"github.com/shopspring/decimal"
)

// UnrealizedPnL values an open order at currentPrice.
func UnrealizedPnL(order types.Order, currentPrice float64, multiplier int) float64 {
	return pnl(order, currentPrice, multiplier).InexactFloat64()
}

// RealizedPnL is the P&L of closing order at closePrice.
func RealizedPnL(order types.Order, closePrice float64, multiplier int) float64 {
	return pnl(order, closePrice, multiplier).InexactFloat64()
}

// Close freezes order into a ClosedOrder priced at closePrice.
func Close(order types.Order, closePrice float64, closeTime time.Time, multiplier int) types.ClosedOrder {
	return types.NewClosedOrder(order, closePrice, closeTime, RealizedPnL(order, closePrice, multiplier))
}

// Notional is |amount|·openPrice, the capital an order ties up before leverage.
func Notional(order types.Order) float64 {
	return decimal.NewFromInt(int64(order.AbsAmount())).
		Mul(decimal.NewFromFloat(order.OpenPrice)).
		InexactFloat64()
}

// PercentChange returns the change from reference to current in percent,
// rounded half up to two decimals.
func PercentChange(reference, current float64) (float64, error) {
	if reference == 0 {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "reference price is zero")
	}

	ref := decimal.NewFromFloat(reference)
	diff := decimal.NewFromFloat(current).Sub(ref)

	return diff.Mul(decimal.NewFromInt(100)).Div(ref).Round(2).InexactFloat64(), nil
}

func pnl(order types.Order, price float64, multiplier int) decimal.Decimal {
	if multiplier == 0 {
		multiplier = 1
	}

	return decimal.NewFromInt(int64(order.Amount)).
		Mul(decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(order.OpenPrice))).
		Mul(decimal.NewFromInt(int64(multiplier)))
}
