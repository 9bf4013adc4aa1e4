package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/types"
)

// DataGenerator generates synthetic price series for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// PairConfig configures a cointegrated pair: X follows a geometric random
// walk and Y = HedgeRatio·X + spread, where the spread mean-reverts.
type PairConfig struct {
	SymbolX string
	SymbolY string
	// StartTime is the timestamp of the first point
	StartTime time.Time
	// Interval is the duration between points
	Interval time.Duration
	Count    int
	// InitialPrice is the first price of X
	InitialPrice float64
	// Volatility of X per step (0.01 = 1%)
	Volatility float64
	HedgeRatio float64
	// SpreadMean is the level the spread reverts to
	SpreadMean float64
	// SpreadVolatility is the standard deviation of the spread shocks
	SpreadVolatility float64
	// Reversion is the fraction of the spread deviation removed each step (0..1)
	Reversion float64
}

// DefaultPairConfig returns a daily pair resembling two correlated ETFs.
func DefaultPairConfig() PairConfig {
	return PairConfig{
		SymbolX:          "USO",
		SymbolY:          "GLD",
		StartTime:        time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC),
		Interval:         24 * time.Hour,
		Count:            250,
		InitialPrice:     40.0,
		Volatility:       0.01,
		HedgeRatio:       2.5,
		SpreadMean:       20.0,
		SpreadVolatility: 1.0,
		Reversion:        0.2,
	}
}

// GeneratePair returns the X and Y series of a cointegrated pair.
func (g *DataGenerator) GeneratePair(config PairConfig) (types.PriceSeries, types.PriceSeries) {
	xs := types.PriceSeries{Symbol: config.SymbolX, Points: make([]types.PricePoint, config.Count)}
	ys := types.PriceSeries{Symbol: config.SymbolY, Points: make([]types.PricePoint, config.Count)}

	x := config.InitialPrice
	spread := config.SpreadMean
	current := config.StartTime

	for i := 0; i < config.Count; i++ {
		y := config.HedgeRatio*x + spread
		if y <= 0 {
			y = 0.01
		}

		xs.Points[i] = types.PricePoint{Time: current, Price: roundToDecimals(x, 4)}
		ys.Points[i] = types.PricePoint{Time: current, Price: roundToDecimals(y, 4)}

		next := x * (1 + config.Volatility*g.normal())
		if next > 0 {
			x = next
		}

		spread += config.Reversion*(config.SpreadMean-spread) + config.SpreadVolatility*g.normal()
		current = current.Add(config.Interval)
	}

	return xs, ys
}

// GeneratePairSeries returns the pair already aligned, X first.
func (g *DataGenerator) GeneratePairSeries(config PairConfig) types.MultiSeries {
	xs, ys := g.GeneratePair(config)

	return types.Align(xs, ys)
}

// GenerateDailyPair is a convenience for a reproducible 250 day pair.
func GenerateDailyPair() types.MultiSeries {
	return NewDataGenerator(42).GeneratePairSeries(DefaultPairConfig())
}

// normal draws a standard normal sample with the Box-Muller transform.
func (g *DataGenerator) normal() float64 {
	u1 := g.rng.Float64()
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}

	u2 := g.rng.Float64()

	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
