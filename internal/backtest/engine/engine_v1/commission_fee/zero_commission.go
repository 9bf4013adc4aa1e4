package commission_fee

import "github.com/rxtech-lab/argo-pairs/internal/types"

// ZeroCommissionFee implements CommissionFee interface with zero commission.
type ZeroCommissionFee struct{}

// NewZeroCommissionFee creates a new zero commission fee.
func NewZeroCommissionFee() CommissionFee {
	return &ZeroCommissionFee{}
}

// Calculate returns 0 for any order.
func (c *ZeroCommissionFee) Calculate(order types.Order) float64 {
	return 0.0
}
