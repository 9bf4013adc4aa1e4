package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrder         ErrorCode = 105
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeHistoricalDataFailed  ErrorCode = 203

	// Signal errors (300-399)
	ErrCodeSignalNotReady ErrorCode = 300

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError ErrorCode = 401
	ErrCodeUnsupportedStrategy ErrorCode = 403
	ErrCodeVersionMismatch     ErrorCode = 404
	ErrCodeCriterionViolation  ErrorCode = 405

	// Trading errors (500-599)
	ErrCodeOrderFailed            ErrorCode = 500
	ErrCodeNoOrderAvailable       ErrorCode = 501
	ErrCodePriceUnavailable       ErrorCode = 502
	ErrCodeInstrumentNotTracked   ErrorCode = 503
	ErrCodeUnresolvableInstrument ErrorCode = 504
	ErrCodeUnsupportedOperation   ErrorCode = 505
	ErrCodeBrokerUnavailable      ErrorCode = 506

	// Backtest errors (600-699)
	ErrCodeBacktestConfigError  ErrorCode = 602
	ErrCodeBacktestNoDatasource ErrorCode = 608
	ErrCodeBacktestNoStrategy   ErrorCode = 609

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 704
)
