package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Venue adapter errors
	CodeVenueFetchFailed:   "Failed to fetch pool state from venue",
	CodeVenueRPCError:      "Venue RPC call failed",
	CodePoolNotFound:       "Pool not found on venue",
	CodeInvalidReserves:    "Pool returned invalid reserves",
	CodeContractCallFailed: "Smart contract call failed",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",

	// Detection errors
	CodeSimulationFailed:      "Swap simulation failed",
	CodeInsufficientLiquidity: "Insufficient liquidity for trade size",
	CodeInvalidBorrowAmount:   "Invalid borrow amount",

	// Opportunity lifecycle errors
	CodeOpportunityExpired:  "Opportunity has expired",
	CodeOpportunityNotFound: "Opportunity not found",

	// Execution errors
	CodeExecutionInFlight:   "Execution already in flight for this opportunity",
	CodeExecutionCapReached: "Concurrent execution cap reached",
	CodeRequestStale:        "Settlement request is stale",
	CodeSettlementFailed:    "Settlement submission failed",
	CodeSettlementTimeout:   "Settlement submission timed out",
	CodeProfitBelowMinimum:  "Expected profit below configured minimum",
	CodeRetriesExhausted:    "All retry attempts exhausted",
	CodeEnginePaused:        "Execution engine is paused",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
