package types

import (
	"time"
)

type OrderStatus string

type PurchaseType string

const (
	OrderStatusInactive  OrderStatus = "INACTIVE"
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

const (
	PurchaseTypeBuy  PurchaseType = "Buy"
	PurchaseTypeSell PurchaseType = "Sell"
)

// Order is an outstanding position in a single instrument.
// Amount is signed: positive is long, negative is short.
type Order struct {
	ID        int         `yaml:"id" json:"id" csv:"id"`
	Symbol    string      `yaml:"symbol" json:"symbol" csv:"symbol"`
	Amount    int         `yaml:"amount" json:"amount" csv:"amount"`
	OpenPrice float64     `yaml:"open_price" json:"open_price" csv:"open_price"`
	OpenTime  time.Time   `yaml:"open_time" json:"open_time" csv:"open_time"`
	Status    OrderStatus `yaml:"status" json:"status" csv:"status"`
}

// NewOrder creates an inactive order.
func NewOrder(id int, symbol string, amount int, openPrice float64, openTime time.Time) Order {
	return Order{
		ID:        id,
		Symbol:    symbol,
		Amount:    amount,
		OpenPrice: openPrice,
		OpenTime:  openTime,
		Status:    OrderStatusInactive,
	}
}

// SignedAmount converts a side and a size into the signed order amount.
func SignedAmount(buy bool, size int) int {
	if buy {
		return size
	}

	return -size
}

func (o Order) IsLong() bool {
	return o.Amount > 0
}

// IsShort is the negation of IsLong, so a zero amount counts as short.
func (o Order) IsShort() bool {
	return !o.IsLong()
}

func (o Order) Side() PurchaseType {
	if o.IsLong() {
		return PurchaseTypeBuy
	}

	return PurchaseTypeSell
}

func (o Order) AbsAmount() int {
	if o.Amount < 0 {
		return -o.Amount
	}

	return o.Amount
}

func (o Order) IsFilled() bool {
	return o.Status == OrderStatusFilled
}

// ClosedOrder is an immutable record of a finished position.
type ClosedOrder struct {
	Order      `yaml:",inline"`
	ClosePrice float64   `yaml:"close_price" json:"close_price" csv:"close_price"`
	CloseTime  time.Time `yaml:"close_time" json:"close_time" csv:"close_time"`
	PnL        float64   `yaml:"pnl" json:"pnl" csv:"pnl"`
}

// NewClosedOrder freezes an order with its realized P&L.
func NewClosedOrder(order Order, closePrice float64, closeTime time.Time, pnl float64) ClosedOrder {
	return ClosedOrder{
		Order:      order,
		ClosePrice: closePrice,
		CloseTime:  closeTime,
		PnL:        pnl,
	}
}
