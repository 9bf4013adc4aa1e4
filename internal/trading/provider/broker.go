// Package tradingprovider connects the live trading context to a broker.
package tradingprovider

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/types"
)

// OrderRequest is a market order sent to the broker.
type OrderRequest struct {
	// ClientOrderID identifies the order in every OrderUpdate.
	ClientOrderID string
	Symbol        string
	Buy           bool
	// Amount is the unsigned number of units.
	Amount int
}

// OrderUpdate is a status change of a placed order.
type OrderUpdate struct {
	ClientOrderID string
	Symbol        string
	Status        types.OrderStatus
	// FillPrice is the average fill price, set once the order is filled.
	FillPrice float64
	Time      time.Time
	Err       error
}

// AccountUpdate carries the account values reported by the broker.
type AccountUpdate struct {
	NetValue       float64
	AvailableFunds float64
	Time           time.Time
}

// Broker is the external price oracle and order router of the live engine.
// Channels returned by a Broker are closed when the subscription ends.
type Broker interface {
	// SubscribePrices streams price ticks of symbol until ctx is done or
	// UnsubscribePrices is called. A TickTypeClose tick carries the previous close.
	SubscribePrices(ctx context.Context, symbol string) (<-chan types.PriceTick, error)
	UnsubscribePrices(symbol string) error
	// History returns the closes of the last duration.
	History(ctx context.Context, symbol string, duration time.Duration) (types.PriceSeries, error)
	// PlaceOrder submits a market order. Status updates arrive on the returned
	// channel, which is closed after a terminal status.
	PlaceOrder(ctx context.Context, request OrderRequest) (<-chan OrderUpdate, error)
	// AccountUpdates streams account values until ctx is done.
	AccountUpdates(ctx context.Context) (<-chan AccountUpdate, error)
}
