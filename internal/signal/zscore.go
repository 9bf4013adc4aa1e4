package signal

import (
	"math"

	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ZScore computes the rolling hedge-ratio Z-score of a pair.
//
// Each update fits y = hr·x + c by least squares over the last lookback
// prices, builds the spread y - hr·x and scores the latest spread against
// the mean and sample standard deviation of the last lookback spreads.
//
// The engine needs 2·lookback-1 prices before it can score. They are either
// streamed in (each returns 0) or seeded up front. The first scored update
// replays the stored prices to build the initial spread window.
type ZScore struct {
	lookback int

	historyX []float64
	historyY []float64
	filled   int

	x      []float64
	y      []float64
	spread []float64

	bootstrapped bool
	scored       bool
	hedgeRatio   float64
	zScore       float64
}

// HistorySize is the number of prices required before the first score.
func HistorySize(lookback int) int {
	return 2*lookback - 1
}

// NewZScore creates an engine that collects its own warm-up history.
func NewZScore(lookback int) (*ZScore, error) {
	if lookback < 3 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "lookback must be at least 3, got %d", lookback)
	}

	size := HistorySize(lookback)

	return &ZScore{
		lookback: lookback,
		historyX: make([]float64, size),
		historyY: make([]float64, size),
	}, nil
}

// NewZScoreWithHistory creates an engine seeded with 2·lookback-1 prices per leg.
func NewZScoreWithHistory(lookback int, historyX, historyY []float64) (*ZScore, error) {
	z, err := NewZScore(lookback)
	if err != nil {
		return nil, err
	}

	size := HistorySize(lookback)
	if len(historyX) != size || len(historyY) != size {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration,
			"seed history must have %d prices per leg, got %d and %d", size, len(historyX), len(historyY))
	}

	for i := 0; i < size; i++ {
		if historyX[i] <= 0 || historyY[i] <= 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "seed history contains a non-positive price at %d", i)
		}
	}

	copy(z.historyX, historyX)
	copy(z.historyY, historyY)
	z.filled = size

	return z, nil
}

func (z *ZScore) Lookback() int {
	return z.lookback
}

// Ready reports whether enough history has been collected to score.
func (z *ZScore) Ready() bool {
	return z.filled == len(z.historyX)
}

// Update feeds the latest prices of both legs and returns the Z-score.
// While history is still being collected it returns 0.
func (z *ZScore) Update(priceX, priceY float64) (float64, error) {
	if !(priceX > 0) || !(priceY > 0) || math.IsInf(priceX, 0) || math.IsInf(priceY, 0) {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "prices must be positive, got %v and %v", priceX, priceY)
	}

	if !z.Ready() {
		z.historyX[z.filled] = priceX
		z.historyY[z.filled] = priceY
		z.filled++

		return 0, nil
	}

	if !z.bootstrapped {
		z.bootstrap()
	}

	lb := z.lookback

	copy(z.spread, z.spread[1:])
	z.x[lb-1] = priceX
	z.y[lb-1] = priceY
	z.hedgeRatio = z.fit()
	z.spread[lb-1] = priceY - z.hedgeRatio*priceX

	mean := stat.Mean(z.spread, nil)
	sd := stat.StdDev(z.spread, nil)

	copy(z.x, z.x[1:])
	copy(z.y, z.y[1:])

	if sd == 0 || math.IsNaN(sd) {
		return 0, errors.New(errors.ErrCodeCriterionViolation, "spread standard deviation is zero")
	}

	z.zScore = (z.spread[lb-1] - mean) / sd
	z.scored = true

	return z.zScore, nil
}

// HedgeRatio returns the hedge ratio of the most recent scored update.
func (z *ZScore) HedgeRatio() (float64, error) {
	if !z.bootstrapped {
		return 0, errors.New(errors.ErrCodeSignalNotReady, "hedge ratio is not available yet")
	}

	return z.hedgeRatio, nil
}

// LastZScore returns the most recent Z-score.
func (z *ZScore) LastZScore() (float64, error) {
	if !z.scored {
		return 0, errors.New(errors.ErrCodeSignalNotReady, "z-score is not available yet")
	}

	return z.zScore, nil
}

// bootstrap replays the stored history to fill the spread window. Each
// position gets its own regression so the window matches what a fully
// streamed engine would hold.
func (z *ZScore) bootstrap() {
	lb := z.lookback

	z.x = make([]float64, lb)
	z.y = make([]float64, lb)
	z.spread = make([]float64, lb)

	copy(z.x, z.historyX[:lb-1])
	copy(z.y, z.historyY[:lb-1])

	for i := lb - 1; i < HistorySize(lb); i++ {
		z.x[lb-1] = z.historyX[i]
		z.y[lb-1] = z.historyY[i]
		z.hedgeRatio = z.fit()
		z.spread[i+1-lb] = z.y[lb-1] - z.hedgeRatio*z.x[lb-1]

		copy(z.x, z.x[1:])
		copy(z.y, z.y[1:])
	}

	z.bootstrapped = true
}

// fit regresses the y window on [x, 1] and returns the x coefficient.
// A constant or rank-deficient window keeps the previous hedge ratio.
func (z *ZScore) fit() float64 {
	if stat.Variance(z.x, nil) == 0 {
		return z.hedgeRatio
	}

	lb := z.lookback
	design := mat.NewDense(lb, 2, nil)

	for i := 0; i < lb; i++ {
		design.Set(i, 0, z.x[i])
		design.Set(i, 1, 1)
	}

	var coefficients mat.VecDense
	if err := coefficients.SolveVec(design, mat.NewVecDense(lb, append([]float64(nil), z.y...))); err != nil {
		return z.hedgeRatio
	}

	hedgeRatio := coefficients.AtVec(0)
	if math.IsNaN(hedgeRatio) || math.IsInf(hedgeRatio, 0) {
		return z.hedgeRatio
	}

	return hedgeRatio
}
