package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Pipeline-specific error codes
const (
	// Venue adapter errors
	CodeVenueFetchFailed   Code = "VENUE_FETCH_FAILED"
	CodeVenueRPCError      Code = "VENUE_RPC_ERROR"
	CodePoolNotFound       Code = "POOL_NOT_FOUND"
	CodeInvalidReserves    Code = "INVALID_RESERVES"
	CodeContractCallFailed Code = "CONTRACT_CALL_FAILED"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"

	// Detection errors
	CodeSimulationFailed      Code = "SIMULATION_FAILED"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodeInvalidBorrowAmount   Code = "INVALID_BORROW_AMOUNT"

	// Opportunity lifecycle errors
	CodeOpportunityExpired  Code = "OPPORTUNITY_EXPIRED"
	CodeOpportunityNotFound Code = "OPPORTUNITY_NOT_FOUND"

	// Execution errors
	CodeExecutionInFlight   Code = "EXECUTION_IN_FLIGHT"
	CodeExecutionCapReached Code = "EXECUTION_CAP_REACHED"
	CodeRequestStale        Code = "REQUEST_STALE"
	CodeSettlementFailed    Code = "SETTLEMENT_FAILED"
	CodeSettlementTimeout   Code = "SETTLEMENT_TIMEOUT"
	CodeProfitBelowMinimum  Code = "PROFIT_BELOW_MINIMUM"
	CodeRetriesExhausted    Code = "RETRIES_EXHAUSTED"
	CodeEnginePaused        Code = "ENGINE_PAUSED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
