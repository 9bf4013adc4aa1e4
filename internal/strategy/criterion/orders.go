// Package criterion contains the order and risk criteria shared by every
// pairs strategy.
package criterion

import (
	"context"

	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
)

type symbolsCriterion struct {
	strategy.NoInit
	tradingContext trading.TradingContext
	symbols        []string
}

// lastOrder returns the outstanding order of a symbol and whether one exists.
func (c symbolsCriterion) lastOrder(symbol string) (types.Order, bool, error) {
	order, err := c.tradingContext.LastOrder(symbol)
	if err != nil {
		if errors.IsNoOrderAvailable(err) {
			return types.Order{}, false, nil
		}

		return types.Order{}, false, err
	}

	return order, true, nil
}

// NoOpenOrdersExist is met when none of the symbols holds an outstanding order.
type NoOpenOrdersExist struct {
	symbolsCriterion
}

func NewNoOpenOrdersExist(tradingContext trading.TradingContext, symbols []string) *NoOpenOrdersExist {
	return &NoOpenOrdersExist{symbolsCriterion{tradingContext: tradingContext, symbols: symbols}}
}

func (c *NoOpenOrdersExist) IsMet(context.Context) (bool, error) {
	for _, symbol := range c.symbols {
		_, ok, err := c.lastOrder(symbol)
		if err != nil {
			return false, err
		}

		if ok {
			return false, nil
		}
	}

	return true, nil
}

// OpenOrdersExistForAllSymbols is met when every symbol holds an outstanding order.
type OpenOrdersExistForAllSymbols struct {
	symbolsCriterion
}

func NewOpenOrdersExistForAllSymbols(tradingContext trading.TradingContext, symbols []string) *OpenOrdersExistForAllSymbols {
	return &OpenOrdersExistForAllSymbols{symbolsCriterion{tradingContext: tradingContext, symbols: symbols}}
}

func (c *OpenOrdersExistForAllSymbols) IsMet(context.Context) (bool, error) {
	for _, symbol := range c.symbols {
		_, ok, err := c.lastOrder(symbol)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

// FilledOrdersExistForAllSymbols is met when every symbol holds an order the
// broker reported as filled.
type FilledOrdersExistForAllSymbols struct {
	symbolsCriterion
}

func NewFilledOrdersExistForAllSymbols(tradingContext trading.TradingContext, symbols []string) *FilledOrdersExistForAllSymbols {
	return &FilledOrdersExistForAllSymbols{symbolsCriterion{tradingContext: tradingContext, symbols: symbols}}
}

func (c *FilledOrdersExistForAllSymbols) IsMet(context.Context) (bool, error) {
	for _, symbol := range c.symbols {
		order, ok, err := c.lastOrder(symbol)
		if err != nil || !ok {
			return false, err
		}

		if !order.IsFilled() {
			return false, nil
		}
	}

	return true, nil
}

// NoPendingOrders is met when no symbol has an order still waiting for a fill.
type NoPendingOrders struct {
	symbolsCriterion
}

func NewNoPendingOrders(tradingContext trading.TradingContext, symbols []string) *NoPendingOrders {
	return &NoPendingOrders{symbolsCriterion{tradingContext: tradingContext, symbols: symbols}}
}

func (c *NoPendingOrders) IsMet(context.Context) (bool, error) {
	for _, symbol := range c.symbols {
		order, ok, err := c.lastOrder(symbol)
		if err != nil {
			return false, err
		}

		if ok && !order.IsFilled() {
			return false, nil
		}
	}

	return true, nil
}

var (
	_ strategy.Criterion = (*NoOpenOrdersExist)(nil)
	_ strategy.Criterion = (*OpenOrdersExistForAllSymbols)(nil)
	_ strategy.Criterion = (*FilledOrdersExistForAllSymbols)(nil)
	_ strategy.Criterion = (*NoPendingOrders)(nil)
	_ strategy.Criterion = (*DefaultStopLoss)(nil)
)
