package meanreversion

import (
	"context"

	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
)

// ZScoreEntry is met when the score leaves the [-entry, entry] band.
type ZScoreEntry struct {
	strategy.NoInit
	cache *SignalCache
	entry float64
}

func NewZScoreEntry(cache *SignalCache, entry float64) *ZScoreEntry {
	return &ZScoreEntry{cache: cache, entry: entry}
}

func (c *ZScoreEntry) IsMet(context.Context) (bool, error) {
	z, err := c.cache.ZScore()
	if err != nil {
		if errors.IsPriceUnavailable(err) {
			return false, nil
		}

		return false, err
	}

	return z < -c.entry || z > c.entry, nil
}

// ZScoreExit is met when the score crosses the exit level in the direction
// that profits the first leg's order.
type ZScoreExit struct {
	strategy.NoInit
	cache          *SignalCache
	tradingContext trading.TradingContext
	first          string
	exit           float64
}

func NewZScoreExit(cache *SignalCache, tradingContext trading.TradingContext, first string, exit float64) *ZScoreExit {
	return &ZScoreExit{cache: cache, tradingContext: tradingContext, first: first, exit: exit}
}

func (c *ZScoreExit) IsMet(context.Context) (bool, error) {
	z, err := c.cache.ZScore()
	if err != nil {
		if errors.IsPriceUnavailable(err) {
			return false, nil
		}

		return false, err
	}

	order, err := c.tradingContext.LastOrder(c.first)
	if err != nil {
		if errors.IsNoOrderAvailable(err) {
			return false, nil
		}

		return false, err
	}

	return order.IsShort() && z < c.exit || order.IsLong() && z > c.exit, nil
}

var (
	_ strategy.Criterion = (*ZScoreEntry)(nil)
	_ strategy.Criterion = (*ZScoreExit)(nil)
)
