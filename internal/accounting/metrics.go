package accounting

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultPeriodsPerYear annualizes daily Sharpe ratios.
const DefaultPeriodsPerYear = 252

// TradingDaysPerYear converts a replay length into years for the annualized return.
const TradingDaysPerYear = 251.0

// Returns converts a value curve into simple period returns. Periods starting
// from a non-positive value are skipped.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(values)-1)

	for i := 1; i < len(values); i++ {
		if values[i-1] <= 0 {
			continue
		}

		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}

	return returns
}

// SharpeRatio is mean/sample-sd of the returns of values with a zero risk free rate,
// scaled by √periodsPerYear when periodsPerYear is positive.
func SharpeRatio(values []float64, periodsPerYear int) float64 {
	returns := Returns(values)
	if len(returns) < 2 {
		return 0
	}

	mean, sd := stat.MeanStdDev(returns, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}

	sharpe := mean / sd
	if periodsPerYear > 0 {
		sharpe *= math.Sqrt(float64(periodsPerYear))
	}

	return sharpe
}

// MaxDrawdown is the largest peak-to-trough fall of values as a fraction of the peak.
func MaxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	maxDrawdown := 0.0
	peak := values[0]

	for _, value := range values {
		if value > peak {
			peak = value
		}

		if peak <= 0 {
			continue
		}

		drawdown := (peak - value) / peak
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

// AnnualizedReturn spreads total return over the number of replayed periods.
func AnnualizedReturn(totalReturn float64, periods int) float64 {
	if periods <= 0 {
		return 0
	}

	return totalReturn / (float64(periods) / TradingDaysPerYear)
}
