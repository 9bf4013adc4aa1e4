package commission_fee

import (
	"github.com/rxtech-lab/argo-pairs/internal/instrument"
	"github.com/rxtech-lab/argo-pairs/internal/types"
)

type CommissionFee interface {
	// Calculate the commission charged for opening or closing order, in USD
	Calculate(order types.Order) float64
}

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerZero,
}

func GetCommissionFeeHandler(broker Broker) CommissionFee {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}

func absAmount(order types.Order) float64 {
	return float64(order.AbsAmount())
}

func isForex(order types.Order) bool {
	return instrument.IsForex(order.Symbol)
}

func isFuture(order types.Order) bool {
	return instrument.IsFuture(order.Symbol)
}
