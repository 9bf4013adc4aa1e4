package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BacktestTradingTestSuite struct {
	suite.Suite
	ctx            context.Context
	tradingContext *BacktestTradingContext
	start          time.Time
}

func TestBacktestTradingSuite(t *testing.T) {
	suite.Run(t, new(BacktestTradingTestSuite))
}

func (suite *BacktestTradingTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.start = time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC)
	suite.tradingContext = NewBacktestTradingContext(
		10000,
		2,
		commission_fee.NewInteractiveBrokerCommissionFee(),
		[]string{"GLD", "USO", "ES=F"},
		nil,
	)

	for _, symbol := range []string{"GLD", "USO", "ES=F"} {
		suite.Require().NoError(suite.tradingContext.AddSymbol(suite.ctx, symbol))
	}
}

func (suite *BacktestTradingTestSuite) advance(hours int, prices map[string]float64) {
	suite.tradingContext.Advance(types.MarketRow{
		Time:   suite.start.Add(time.Duration(hours) * time.Hour),
		Prices: prices,
	})
}

func (suite *BacktestTradingTestSuite) TestOrderIdsAndCommission() {
	suite.advance(0, map[string]float64{"GLD": 100, "USO": 50})

	first, err := suite.tradingContext.Order(suite.ctx, "GLD", true, 100)
	suite.Require().NoError(err)
	second, err := suite.tradingContext.Order(suite.ctx, "USO", false, 20)
	suite.Require().NoError(err)

	suite.Equal(1, first.ID)
	suite.Equal(2, second.ID)
	suite.Equal(100, first.Amount)
	suite.Equal(-20, second.Amount)
	suite.Equal(100.0, first.OpenPrice)
	suite.Equal(suite.start, first.OpenTime)
	suite.True(first.IsFilled())
	suite.Equal(2.0, suite.tradingContext.Commissions())

	last, err := suite.tradingContext.LastOrder("USO")
	suite.Require().NoError(err)
	suite.Equal(second, last)
}

func (suite *BacktestTradingTestSuite) TestAccountValues() {
	suite.advance(0, map[string]float64{"GLD": 100, "USO": 50})

	gld, err := suite.tradingContext.Order(suite.ctx, "GLD", true, 10)
	suite.Require().NoError(err)
	_, err = suite.tradingContext.Order(suite.ctx, "USO", false, 20)
	suite.Require().NoError(err)

	suite.advance(1, map[string]float64{"GLD": 105, "USO": 48})

	// unrealized 10·5 + (−20)·(−2) minus two minimum commissions
	suite.InDelta(88.0, suite.tradingContext.PnL(), 1e-9)
	suite.InDelta(10088.0, suite.tradingContext.NetValue(), 1e-9)
	suite.InDelta(10088.0-500-500, suite.tradingContext.AvailableFunds(), 1e-9)

	closed, err := suite.tradingContext.Close(suite.ctx, gld)
	suite.Require().NoError(err)
	suite.Equal(105.0, closed.ClosePrice)
	suite.InDelta(50.0, closed.PnL, 1e-9)
	suite.InDelta(50.0, suite.tradingContext.ClosedPnL(), 1e-9)
	suite.InDelta(87.0, suite.tradingContext.PnL(), 1e-9)
	suite.Len(suite.tradingContext.OpenOrders(), 1)
	suite.Len(suite.tradingContext.ClosedOrders(), 1)

	_, err = suite.tradingContext.LastOrder("GLD")
	suite.True(errors.IsNoOrderAvailable(err))

	// recorded before the tick of each row
	suite.InDeltaSlice([]float64{0, 88}, suite.tradingContext.PnLHistory(), 1e-9)
	suite.InDeltaSlice([]float64{10000, 10088}, suite.tradingContext.NetValueHistory(), 1e-9)
	suite.InDeltaSlice([]float64{10000, 9088}, suite.tradingContext.FundsHistory(), 1e-9)
}

func (suite *BacktestTradingTestSuite) TestFuturesUseTheContractMultiplier() {
	suite.advance(0, map[string]float64{"ES=F": 4000})

	order, err := suite.tradingContext.Order(suite.ctx, "ES=F", true, 1)
	suite.Require().NoError(err)

	suite.advance(1, map[string]float64{"ES=F": 4010})

	closed, err := suite.tradingContext.Close(suite.ctx, order)
	suite.Require().NoError(err)
	suite.InDelta(500.0, closed.PnL, 1e-9)
	suite.InDelta(2*2.04, suite.tradingContext.Commissions(), 1e-9)
}

func (suite *BacktestTradingTestSuite) TestPriceErrors() {
	_, err := suite.tradingContext.LastPrice("GLD")
	suite.True(errors.IsPriceUnavailable(err))
	suite.NoError(suite.tradingContext.Err())

	_, err = suite.tradingContext.Order(suite.ctx, "GLD", true, 1)
	suite.True(errors.IsPriceUnavailable(err))

	_, err = suite.tradingContext.LastPrice("SPY")
	suite.True(errors.HasCode(err, errors.ErrCodeInstrumentNotTracked))
	suite.True(errors.IsFatal(suite.tradingContext.Err()))
}

func (suite *BacktestTradingTestSuite) TestInvalidOrders() {
	suite.advance(0, map[string]float64{"GLD": 100})

	_, err := suite.tradingContext.Order(suite.ctx, "GLD", true, 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidOrder))

	_, err = suite.tradingContext.Close(suite.ctx, types.NewOrder(7, "GLD", 1, 100, suite.start))
	suite.True(errors.IsNoOrderAvailable(err))
}

func (suite *BacktestTradingTestSuite) TestCloseAll() {
	suite.advance(0, map[string]float64{"GLD": 100, "USO": 50})

	_, err := suite.tradingContext.Order(suite.ctx, "GLD", true, 10)
	suite.Require().NoError(err)
	_, err = suite.tradingContext.Order(suite.ctx, "USO", true, 10)
	suite.Require().NoError(err)

	suite.NoError(suite.tradingContext.CloseAll(suite.ctx))
	suite.Empty(suite.tradingContext.OpenOrders())
	suite.Len(suite.tradingContext.ClosedOrders(), 2)
	suite.Equal(4.0, suite.tradingContext.Commissions())
}

func (suite *BacktestTradingTestSuite) TestHistoryIsWhatWasReplayed() {
	series, err := suite.tradingContext.History(suite.ctx, "GLD")
	suite.Require().NoError(err)
	suite.Equal(0, series.Len())

	suite.advance(0, map[string]float64{"GLD": 100})
	suite.advance(1, map[string]float64{"GLD": 101})

	series, err = suite.tradingContext.History(suite.ctx, "GLD")
	suite.Require().NoError(err)
	suite.Equal([]float64{100, 101}, series.Prices())
	suite.Equal("GLD", series.Symbol)
}

func (suite *BacktestTradingTestSuite) TestChangeBySymbol() {
	_, err := suite.tradingContext.ChangeBySymbol("GLD")
	suite.True(errors.IsPriceUnavailable(err))

	// the 13:00 tick becomes the reference
	suite.advance(0, map[string]float64{"GLD": 100})
	suite.advance(1, map[string]float64{"GLD": 101.5})

	change, err := suite.tradingContext.ChangeBySymbol("GLD")
	suite.Require().NoError(err)
	suite.Equal(1.5, change)

	suite.advance(24, map[string]float64{"GLD": 98})
	change, err = suite.tradingContext.ChangeBySymbol("GLD")
	suite.Require().NoError(err)
	suite.Equal(0.0, change)
}

func (suite *BacktestTradingTestSuite) TestSymbols() {
	suite.NoError(suite.tradingContext.AddSymbol(suite.ctx, "GLD"))
	suite.Equal([]string{"GLD", "USO", "ES=F"}, suite.tradingContext.Symbols())

	err := suite.tradingContext.AddSymbol(suite.ctx, "SPY")
	suite.True(errors.HasCode(err, errors.ErrCodeInstrumentNotTracked))

	err = suite.tradingContext.RemoveSymbol("GLD")
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedOperation))
	suite.Equal(2, suite.tradingContext.Leverage())
}
