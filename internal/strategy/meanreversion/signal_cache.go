package meanreversion

import (
	"github.com/rxtech-lab/argo-pairs/internal/signal"
	"github.com/rxtech-lab/argo-pairs/internal/trading"
)

// SignalCache feeds the Z-score engine at most once per tick. Entry and exit
// criteria both read the score through it, so evaluating both in one tick
// does not advance the rolling window twice.
type SignalCache struct {
	zScore         *signal.ZScore
	tradingContext trading.TradingContext
	first          string
	second         string

	fresh  bool
	value  float64
	err    error
	prices [2]float64
}

func NewSignalCache(zScore *signal.ZScore, tradingContext trading.TradingContext, first, second string) *SignalCache {
	return &SignalCache{
		zScore:         zScore,
		tradingContext: tradingContext,
		first:          first,
		second:         second,
	}
}

// Invalidate marks the start of a new tick.
func (c *SignalCache) Invalidate() {
	c.fresh = false
	c.value = 0
	c.err = nil
}

// ZScore returns this tick's score, updating the engine with the last
// prices of both legs on the first call.
func (c *SignalCache) ZScore() (float64, error) {
	if c.fresh {
		return c.value, c.err
	}

	c.fresh = true
	c.value, c.err = c.compute()

	return c.value, c.err
}

// Prices returns the prices of the first and the second leg used for this
// tick's score.
func (c *SignalCache) Prices() (float64, float64) {
	return c.prices[0], c.prices[1]
}

func (c *SignalCache) Engine() *signal.ZScore {
	return c.zScore
}

func (c *SignalCache) compute() (float64, error) {
	x, err := c.tradingContext.LastPrice(c.first)
	if err != nil {
		return 0, err
	}

	y, err := c.tradingContext.LastPrice(c.second)
	if err != nil {
		return 0, err
	}

	c.prices = [2]float64{x, y}

	return c.zScore.Update(x, y)
}
