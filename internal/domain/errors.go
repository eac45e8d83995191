package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures. Callers switch on the kind, never on the message.
type ErrorKind string

const (
	KindZoneNotFound         ErrorKind = "zone_not_found"
	KindWeightTierNotFound   ErrorKind = "weight_tier_not_found"
	KindRateNotConfigured    ErrorKind = "rate_not_configured"
	KindInvalidAddress       ErrorKind = "invalid_address"
	KindProviderUnavailable  ErrorKind = "provider_unavailable"
	KindNoCarrierAvailable   ErrorKind = "no_carrier_available"
	KindDuplicateShipment    ErrorKind = "duplicate_shipment"
	KindBulkPartialFailure   ErrorKind = "bulk_partial_failure"
	KindCarrierNotFound      ErrorKind = "carrier_not_found"
	KindOrderNotFound        ErrorKind = "order_not_found"
	KindMethodNotAvailable   ErrorKind = "method_not_available"
	KindInvalidTransition    ErrorKind = "invalid_transition"
	KindNoShipment           ErrorKind = "no_shipment"
	KindInvalidInput         ErrorKind = "invalid_input"
	KindInvalidConfiguration ErrorKind = "invalid_configuration"
)

// Error is the typed failure returned by every engine operation.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrZoneNotFound)
// holds for every zone failure regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a new Error.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// Sentinel errors, one per kind.
var (
	ErrZoneNotFound         = &Error{Kind: KindZoneNotFound, Message: "no shipping zone matches postal code"}
	ErrWeightTierNotFound   = &Error{Kind: KindWeightTierNotFound, Message: "no weight tier configured"}
	ErrRateNotConfigured    = &Error{Kind: KindRateNotConfigured, Message: "no shipping rate configured"}
	ErrInvalidAddress       = &Error{Kind: KindInvalidAddress, Message: "invalid address"}
	ErrProviderUnavailable  = &Error{Kind: KindProviderUnavailable, Message: "provider unavailable"}
	ErrNoCarrierAvailable   = &Error{Kind: KindNoCarrierAvailable, Message: "no carrier available"}
	ErrDuplicateShipment    = &Error{Kind: KindDuplicateShipment, Message: "order already has a shipment"}
	ErrBulkPartialFailure   = &Error{Kind: KindBulkPartialFailure, Message: "some orders failed"}
	ErrCarrierNotFound      = &Error{Kind: KindCarrierNotFound, Message: "carrier not registered"}
	ErrOrderNotFound        = &Error{Kind: KindOrderNotFound, Message: "order not found"}
	ErrMethodNotAvailable   = &Error{Kind: KindMethodNotAvailable, Message: "delivery method not available"}
	ErrInvalidTransition    = &Error{Kind: KindInvalidTransition, Message: "invalid status transition"}
	ErrNoShipment           = &Error{Kind: KindNoShipment, Message: "order has no shipment"}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInvalidConfiguration = &Error{Kind: KindInvalidConfiguration, Message: "invalid configuration"}
)

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
