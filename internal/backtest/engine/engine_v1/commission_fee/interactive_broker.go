package commission_fee

import (
	"math"

	"github.com/rxtech-lab/argo-pairs/internal/types"
)

const (
	stockFeePerShare     = 0.005
	stockMinimumFee      = 1.0
	forexFeeRate         = 0.00002
	futureFeePerContract = 2.04
)

// InteractiveBrokerCommissionFee charges the tiered fees of each asset class:
// a notional rate for forex, a flat fee per futures contract and a per-share
// fee with a minimum for everything else.
type InteractiveBrokerCommissionFee struct {
}

func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

func (c *InteractiveBrokerCommissionFee) Calculate(order types.Order) float64 {
	switch {
	case isForex(order):
		return absAmount(order) * order.OpenPrice * forexFeeRate
	case isFuture(order):
		return absAmount(order) * futureFeePerContract
	default:
		return math.Max(stockMinimumFee, absAmount(order)*stockFeePerShare)
	}
}
