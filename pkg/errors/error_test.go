package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("connection reset")
	err := Wrapf(ErrCodeHistoricalDataFailed, cause, "history request failed for %s", "GLD")
	suite.Equal(ErrCodeHistoricalDataFailed, err.Code)
	suite.Equal("history request failed for GLD", err.Message)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestErrorString() {
	suite.Equal("[100] invalid parameter", New(ErrCodeInvalidParameter, "invalid parameter").Error())

	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.Equal("[200] data not found: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeInvalidParameter, GetCode(New(ErrCodeInvalidParameter, "x")))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))

	inner := New(ErrCodeDataNotFound, "data not found")
	outer := Wrap(ErrCodeHistoricalDataFailed, "history failed", inner)
	suite.Equal(ErrCodeHistoricalDataFailed, GetCode(outer))
}

func (suite *ErrorTestSuite) TestGetCodeThroughFmtWrap() {
	err := fmt.Errorf("tick failed: %w", NewPriceUnavailableError("USO"))
	suite.Equal(ErrCodePriceUnavailable, GetCode(err))
	suite.True(IsPriceUnavailable(err))
}

func (suite *ErrorTestSuite) TestSentinelHelpers() {
	tests := []struct {
		name             string
		err              error
		priceUnavailable bool
		noOrder          bool
		violation        bool
		fatal            bool
	}{
		{"price unavailable", NewPriceUnavailableError("GLD"), true, false, false, false},
		{"no order", NewNoOrderAvailableError("GLD"), false, true, false, false},
		{"criterion violation", New(ErrCodeCriterionViolation, "zero deviation"), false, false, true, false},
		{"untracked instrument", New(ErrCodeInstrumentNotTracked, "SPY"), false, false, false, true},
		{"invalid configuration", New(ErrCodeInvalidConfiguration, "bad"), false, false, false, true},
		{"plain error", errors.New("boom"), false, false, false, false},
		{"nil", nil, false, false, false, false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.priceUnavailable, IsPriceUnavailable(tc.err))
			suite.Equal(tc.noOrder, IsNoOrderAvailable(tc.err))
			suite.Equal(tc.violation, IsCriterionViolation(tc.err))
			suite.Equal(tc.fatal, IsFatal(tc.err))
		})
	}
}

func (suite *ErrorTestSuite) TestAsError() {
	err := NewNoOrderAvailableError("USO")

	var argoErr *Error
	suite.True(As(err, &argoErr))
	suite.Equal(ErrCodeNoOrderAvailable, argoErr.Code)
	suite.Contains(argoErr.Message, "USO")
}
