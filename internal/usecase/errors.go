package usecase

import (
	"errors"
	"fmt"
)

// ValidationKind identifies which business rule a download request broke.
type ValidationKind string

const (
	KindInvalidSymbol     ValidationKind = "ERR_INVALID_SYMBOL"
	KindInvalidDateFormat ValidationKind = "ERR_INVALID_DATE_FORMAT"
	KindEndBeforeStart    ValidationKind = "ERR_END_BEFORE_START"
	KindRangeTooLarge     ValidationKind = "ERR_RANGE_TOO_LARGE"
	KindUnknownSource     ValidationKind = "ERR_UNKNOWN_SOURCE"
	KindInvalidInterval   ValidationKind = "ERR_INVALID_INTERVAL"
	KindNoDataFetched     ValidationKind = "ERR_NO_DATA_FETCHED"
)

// ValidationError reports a rejected download request. It is surfaced to the
// caller immediately and never retried.
type ValidationError struct {
	Kind    ValidationKind         `json:"code"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a validation error for the given rule and field.
func NewValidationError(kind ValidationKind, field, message string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: message}
}

// WithParam attaches a payload value, e.g. the list of valid sources.
func (e *ValidationError) WithParam(key string, value interface{}) *ValidationError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// AsValidation extracts a ValidationError if err carries one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
