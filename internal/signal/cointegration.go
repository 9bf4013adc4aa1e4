package signal

import "math"

const (
	// DefaultDelta controls how fast the hedge ratio is allowed to drift.
	DefaultDelta = 1e-4
	// DefaultMeasurementVariance is the assumed observation noise of y.
	DefaultMeasurementVariance = 1e-3
)

// Cointegration tracks the hedge ratio of y ≈ beta·x with a one-state Kalman filter.
//
// The state is beta, modelled as a random walk with variance delta/(1-delta)
// per step. Each Step predicts, observes y and corrects beta. Error is the
// residual y - beta·x computed with the corrected beta of the same step.
//
// Beta starts at 0. An observation with x == 0 carries no information about
// beta and leaves it unchanged. Non-finite observations are ignored.
type Cointegration struct {
	delta      float64
	r          float64
	vw         float64
	beta       float64
	covariance float64
	err        float64
	variance   float64
	steps      int
}

// NewCointegration creates a tracker with the given drift and measurement variance.
// Non-positive or out of range values fall back to the defaults.
func NewCointegration(delta, r float64) *Cointegration {
	if delta <= 0 || delta >= 1 {
		delta = DefaultDelta
	}

	if r <= 0 {
		r = DefaultMeasurementVariance
	}

	return &Cointegration{
		delta: delta,
		r:     r,
		vw:    delta / (1 - delta),
	}
}

// NewDefaultCointegration creates a tracker with DefaultDelta and DefaultMeasurementVariance.
func NewDefaultCointegration() *Cointegration {
	return NewCointegration(DefaultDelta, DefaultMeasurementVariance)
}

// Step feeds one observed pair into the filter.
func (c *Cointegration) Step(x, y float64) {
	if !isFinite(x) || !isFinite(y) {
		return
	}

	// predict
	priorCovariance := c.covariance + c.vw

	// correct
	innovation := y - c.beta*x
	innovationVariance := x*x*priorCovariance + c.r
	gain := priorCovariance * x / innovationVariance

	c.beta += gain * innovation
	c.covariance = priorCovariance - gain*x*priorCovariance
	c.variance = innovationVariance
	c.err = y - c.beta*x
	c.steps++
}

// Beta is the hedge ratio after the most recent step.
func (c *Cointegration) Beta() float64 {
	return c.beta
}

// Error is y - Beta()·x for the most recent step.
func (c *Cointegration) Error() float64 {
	return c.err
}

// Variance is the innovation variance of the most recent step.
func (c *Cointegration) Variance() float64 {
	return c.variance
}

// Steps counts the observations accepted so far.
func (c *Cointegration) Steps() int {
	return c.steps
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
