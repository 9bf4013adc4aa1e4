package signal

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ZScoreTestSuite struct {
	suite.Suite
	xs []float64
	ys []float64
}

func TestZScoreSuite(t *testing.T) {
	suite.Run(t, new(ZScoreTestSuite))
}

func (suite *ZScoreTestSuite) SetupTest() {
	suite.xs = []float64{100, 102, 101, 104, 103, 106, 105, 108, 107, 110, 109, 112}
	suite.ys = []float64{201, 204, 203, 209, 205, 212, 211, 215, 214, 221, 218, 224}
}

func (suite *ZScoreTestSuite) TestWarmUpReturnsZero() {
	z, err := NewZScore(5)
	suite.Require().NoError(err)

	for i := 0; i < HistorySize(5); i++ {
		suite.False(z.Ready())

		score, err := z.Update(suite.xs[i], suite.ys[i])
		suite.NoError(err)
		suite.Equal(0.0, score)
	}

	suite.True(z.Ready())

	_, err = z.HedgeRatio()
	suite.True(errors.HasCode(err, errors.ErrCodeSignalNotReady))

	_, err = z.LastZScore()
	suite.True(errors.HasCode(err, errors.ErrCodeSignalNotReady))
}

func (suite *ZScoreTestSuite) TestScores() {
	z, err := NewZScore(5)
	suite.Require().NoError(err)

	expected := []struct {
		zScore     float64
		hedgeRatio float64
	}{
		{-0.7668381272600736, 1.9864864864864868},
		{0.03286959232754022, 1.9459459459459463},
		{-1.5953456892973303, 2.135135135135135},
	}

	for i := range suite.xs {
		score, err := z.Update(suite.xs[i], suite.ys[i])
		suite.Require().NoError(err)

		if i < HistorySize(5) {
			continue
		}

		want := expected[i-HistorySize(5)]
		suite.InDelta(want.zScore, score, 1e-9)

		hedgeRatio, err := z.HedgeRatio()
		suite.NoError(err)
		suite.InDelta(want.hedgeRatio, hedgeRatio, 1e-9)

		last, err := z.LastZScore()
		suite.NoError(err)
		suite.Equal(score, last)
	}
}

func (suite *ZScoreTestSuite) TestSeededHistoryMatchesStreaming() {
	size := HistorySize(5)

	streamed, err := NewZScore(5)
	suite.Require().NoError(err)

	for i := 0; i < size; i++ {
		_, err := streamed.Update(suite.xs[i], suite.ys[i])
		suite.Require().NoError(err)
	}

	seeded, err := NewZScoreWithHistory(5, suite.xs[:size], suite.ys[:size])
	suite.Require().NoError(err)
	suite.True(seeded.Ready())

	for i := size; i < len(suite.xs); i++ {
		a, errA := streamed.Update(suite.xs[i], suite.ys[i])
		b, errB := seeded.Update(suite.xs[i], suite.ys[i])
		suite.NoError(errA)
		suite.NoError(errB)
		suite.Equal(a, b)
	}
}

func (suite *ZScoreTestSuite) TestDeterministicReplay() {
	run := func() []float64 {
		z, err := NewZScore(4)
		suite.Require().NoError(err)

		scores := make([]float64, 0, len(suite.xs))

		for i := range suite.xs {
			score, err := z.Update(suite.xs[i], suite.ys[i])
			suite.Require().NoError(err)

			scores = append(scores, score)
		}

		return scores
	}

	first := run()
	second := run()

	for i := range first {
		suite.Equal(math.Float64bits(first[i]), math.Float64bits(second[i]))
	}
}

func (suite *ZScoreTestSuite) TestRejectsNonPositivePrices() {
	z, err := NewZScore(5)
	suite.Require().NoError(err)

	tests := []struct {
		name string
		x, y float64
	}{
		{"zero x", 0, 10},
		{"negative y", 10, -1},
		{"nan", math.NaN(), 10},
		{"inf", 10, math.Inf(1)},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := z.Update(tc.x, tc.y)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
		})
	}

	suite.False(z.Ready())
}

func (suite *ZScoreTestSuite) TestInvalidConstruction() {
	_, err := NewZScore(2)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = NewZScoreWithHistory(5, suite.xs[:8], suite.ys[:9])
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	bad := append([]float64{0}, suite.xs[1:9]...)
	_, err = NewZScoreWithHistory(5, bad, suite.ys[:9])
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ZScoreTestSuite) TestFlatSpreadIsAViolation() {
	size := HistorySize(3)
	xs := make([]float64, size)
	ys := make([]float64, size)

	for i := range xs {
		xs[i] = 10
		ys[i] = 41
	}

	z, err := NewZScoreWithHistory(3, xs, ys)
	suite.Require().NoError(err)

	_, err = z.Update(10, 41)
	suite.True(errors.HasCode(err, errors.ErrCodeCriterionViolation))

	_, err = z.LastZScore()
	suite.True(errors.HasCode(err, errors.ErrCodeSignalNotReady))
}
