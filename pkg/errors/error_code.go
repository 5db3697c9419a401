package errors

// ErrorCode identifies a class of failure.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidBalance       ErrorCode = 102
	ErrCodeInvalidEstimate      ErrorCode = 103
	ErrCodeInvalidVersion       ErrorCode = 104

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 203

	// Predictor errors (300-399)
	ErrCodePredictorUnavailable ErrorCode = 300
	ErrCodePredictorLoadFailed  ErrorCode = 301
	ErrCodeInferenceFailed      ErrorCode = 302
	ErrCodeUnsupportedPredictor ErrorCode = 303

	// Agent errors (500-599)
	ErrCodeMarketDataMissing ErrorCode = 500
	ErrCodeZeroBaseline      ErrorCode = 501
	ErrCodeStateUndefined    ErrorCode = 502

	// Simulation errors (600-699)
	ErrCodeSimulationNotInitialized ErrorCode = 600
	ErrCodeSimulationConfigError    ErrorCode = 601
	ErrCodeSimulationNoData         ErrorCode = 602
	ErrCodeSimulationNoDatasource   ErrorCode = 603
	ErrCodeEpisodeFailed            ErrorCode = 604

	// Feed errors (700-799)
	ErrCodeFeedLoadFailed    ErrorCode = 700
	ErrCodeFeedParseFailed   ErrorCode = 701
	ErrCodeUnsupportedFormat ErrorCode = 702

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800

	// Report errors (900-999)
	ErrCodeReportWriteFailed ErrorCode = 900
)
