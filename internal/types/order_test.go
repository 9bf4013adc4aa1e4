package types

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type OrderTestSuite struct {
	suite.Suite
}

func TestOrderSuite(t *testing.T) {
	suite.Run(t, new(OrderTestSuite))
}

func (suite *OrderTestSuite) TestNewOrderStartsInactive() {
	order := NewOrder(1, "GLD", 10, 120.5, time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC))
	suite.Equal(OrderStatusInactive, order.Status)
	suite.False(order.IsFilled())
}

func (suite *OrderTestSuite) TestDirection() {
	tests := []struct {
		name    string
		amount  int
		isLong  bool
		side    PurchaseType
		absSize int
	}{
		{"long", 10, true, PurchaseTypeBuy, 10},
		{"short", -7, false, PurchaseTypeSell, 7},
		{"zero counts as short", 0, false, PurchaseTypeSell, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			order := NewOrder(1, "USO", tc.amount, 10, time.Time{})
			suite.Equal(tc.isLong, order.IsLong())
			suite.Equal(!tc.isLong, order.IsShort())
			suite.Equal(tc.side, order.Side())
			suite.Equal(tc.absSize, order.AbsAmount())
		})
	}
}

func (suite *OrderTestSuite) TestSignedAmount() {
	suite.Equal(5, SignedAmount(true, 5))
	suite.Equal(-5, SignedAmount(false, 5))
}

func (suite *OrderTestSuite) TestWriteAndReadBacktestReport() {
	path := filepath.Join(suite.T().TempDir(), "report.yaml")
	opened := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	closed := NewClosedOrder(NewOrder(3, "GLD", -4, 100, opened), 95, opened.Add(time.Hour), 20)

	report := BacktestReport{
		RunID:          "run-1",
		Symbols:        []string{"GLD", "USO"},
		InitialDeposit: 10000,
		FinalValue:     10020,
		ClosedOrders:   []ClosedOrder{closed},
	}

	suite.Require().NoError(WriteBacktestReport(path, report))

	loaded, err := ReadBacktestReport(path)
	suite.Require().NoError(err)
	suite.Equal("run-1", loaded.RunID)
	suite.Require().Len(loaded.ClosedOrders, 1)
	suite.Equal(-4, loaded.ClosedOrders[0].Amount)
	suite.Equal(95.0, loaded.ClosedOrders[0].ClosePrice)
	suite.Equal(20.0, loaded.ClosedOrders[0].PnL)
}
