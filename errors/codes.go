package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates an upstream rate limit.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Workflow engine errors
const (
	// ErrCodeInvalidGraph indicates an edge that references an undeclared node.
	ErrCodeInvalidGraph ErrorCode = "INVALID_GRAPH"
	// ErrCodeCycleDetected indicates the node graph is not acyclic.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
	// ErrCodeUnsupportedNodeType indicates no handler is registered for a node type.
	ErrCodeUnsupportedNodeType ErrorCode = "UNSUPPORTED_NODE_TYPE"
	// ErrCodeInvalidNodeConfig indicates a node's data cannot be decoded or is incomplete.
	ErrCodeInvalidNodeConfig ErrorCode = "INVALID_NODE_CONFIG"
	// ErrCodeNodeFailed indicates a node handler returned an error.
	ErrCodeNodeFailed ErrorCode = "NODE_EXECUTION_FAILED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabaseError indicates a database error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeDatabaseError:      true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsGraphError reports whether code is a structural graph failure that is
// raised before any node runs.
func IsGraphError(code ErrorCode) bool {
	return code == ErrCodeInvalidGraph || code == ErrCodeCycleDetected
}
