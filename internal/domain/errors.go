package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies terminal execution failures.
type ErrorCode string

const (
	// ErrCodeConfiguration: missing credentials or deployment config.
	ErrCodeConfiguration ErrorCode = "configuration_error"
	// ErrCodeConnectionInactive: no active platform connection for the org.
	ErrCodeConnectionInactive ErrorCode = "connection_inactive"
	// ErrCodeValidation: malformed or missing parameters, caught before
	// any external mutation.
	ErrCodeValidation ErrorCode = "validation_error"
	// ErrCodeUnsupported: no adapter mapping for the requested
	// tool/platform/entity_type combination.
	ErrCodeUnsupported ErrorCode = "unsupported_operation"
	// ErrCodeExternalAPI: the platform rejected or failed the mutation.
	ErrCodeExternalAPI ErrorCode = "external_api_error"
	// ErrCodeRollbackFailure: a compensating action failed after a forward
	// action succeeded. Terminal, flagged for manual correction.
	ErrCodeRollbackFailure ErrorCode = "rollback_failure"
)

// ExecError is a coded execution failure surfaced to the Decision record.
type ExecError struct {
	Code    ErrorCode
	Message string

	// EntityID and InconsistentCents are set on rollback failures only:
	// the entity left in an unknown state and the budget value it was
	// last observed holding.
	EntityID          string
	InconsistentCents int64

	cause error
}

func (e *ExecError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExecError) Unwrap() error { return e.cause }

// NewValidationError reports malformed or missing parameters.
func NewValidationError(format string, args ...any) *ExecError {
	return &ExecError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewConfigurationError reports missing credentials or deployment config.
func NewConfigurationError(format string, args ...any) *ExecError {
	return &ExecError{Code: ErrCodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// NewConnectionInactiveError reports an inactive or missing connection.
func NewConnectionInactiveError(orgID string, platform Platform) *ExecError {
	return &ExecError{
		Code:    ErrCodeConnectionInactive,
		Message: fmt.Sprintf("no active %s connection for organization %s; reconnect the account", platform, orgID),
	}
}

// NewUnsupportedOperationError reports an unmapped routing triple.
func NewUnsupportedOperationError(format string, args ...any) *ExecError {
	return &ExecError{Code: ErrCodeUnsupported, Message: fmt.Sprintf(format, args...)}
}

// NewExternalAPIError wraps a platform failure, preserving the raw
// platform error message.
func NewExternalAPIError(cause error, format string, args ...any) *ExecError {
	return &ExecError{Code: ErrCodeExternalAPI, Message: fmt.Sprintf(format, args...), cause: cause}
}

// NewRollbackFailureError reports a failed compensating action. The
// entity id and the now-inconsistent budget value are carried so an
// operator can correct the state manually.
func NewRollbackFailureError(entityID string, inconsistentCents int64, cause error) *ExecError {
	return &ExecError{
		Code:              ErrCodeRollbackFailure,
		Message:           fmt.Sprintf("rollback failed for entity %s: budget left at %d cents, manual correction required", entityID, inconsistentCents),
		EntityID:          entityID,
		InconsistentCents: inconsistentCents,
		cause:             cause,
	}
}

// CodeOf extracts the ErrorCode from err, defaulting to
// external_api_error for errors produced outside the engine.
func CodeOf(err error) ErrorCode {
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ErrCodeExternalAPI
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
