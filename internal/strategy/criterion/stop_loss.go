package criterion

import (
	"context"

	"github.com/rxtech-lab/argo-pairs/internal/accounting"
	"github.com/rxtech-lab/argo-pairs/internal/instrument"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

// DefaultStopLoss is met when the combined unrealized P&L of the symbols'
// orders falls to or below a fixed currency threshold (usually negative).
// Futures P&L is scaled by the contract multiplier.
// A symbol without an order or a price makes it not met.
type DefaultStopLoss struct {
	symbolsCriterion
	threshold float64
	logger    *logger.Logger
}

func NewDefaultStopLoss(tradingContext trading.TradingContext, symbols []string, threshold float64, log *logger.Logger) *DefaultStopLoss {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &DefaultStopLoss{
		symbolsCriterion: symbolsCriterion{tradingContext: tradingContext, symbols: symbols},
		threshold:        threshold,
		logger:           log,
	}
}

func (c *DefaultStopLoss) Threshold() float64 {
	return c.threshold
}

func (c *DefaultStopLoss) IsMet(context.Context) (bool, error) {
	total := 0.0

	for _, symbol := range c.symbols {
		order, ok, err := c.lastOrder(symbol)
		if err != nil || !ok {
			return false, err
		}

		price, err := c.tradingContext.LastPrice(symbol)
		if err != nil {
			if errors.IsPriceUnavailable(err) {
				return false, nil
			}

			return false, err
		}

		total += accounting.UnrealizedPnL(order, price, instrument.Multiplier(symbol))
	}

	c.logger.Debug("Stop loss evaluated",
		zap.Float64("total_pnl", total),
		zap.Float64("threshold", c.threshold),
	)

	return total <= c.threshold, nil
}
