// Package apperr defines the application error type shared by all modules.
// Errors carry a Kind so transport layers can map them to status codes and
// the conversation engine can map them to user-facing replies without
// string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for handling decisions.
type Kind int

const (
	// KindUnknown is the zero value for unclassified errors.
	KindUnknown Kind = iota
	// KindNotFound indicates a requested resource does not exist.
	KindNotFound
	// KindValidation indicates invalid input from a caller.
	KindValidation
	// KindConflict indicates a state conflict such as a duplicate.
	KindConflict
	// KindUnauthorized indicates missing or invalid credentials.
	KindUnauthorized
	// KindForbidden indicates the caller may not perform the action.
	KindForbidden
	// KindBadRequest indicates a malformed request.
	KindBadRequest
	// KindInternal indicates an unexpected internal failure.
	KindInternal
	// KindUnavailable indicates a dependency is temporarily down.
	KindUnavailable

	// KindExtractionLowConfidence indicates the extractor could not read
	// a quote request from the message with enough confidence.
	KindExtractionLowConfidence
	// KindUnknownProduct indicates a product outside the catalog enum.
	KindUnknownProduct
	// KindUnknownSize indicates a size the requested product is not
	// offered in.
	KindUnknownSize
	// KindGlaseoOutOfRange indicates a glaze percentage outside 0-50.
	KindGlaseoOutOfRange
	// KindFreightOutOfRange indicates a freight rate outside the accepted
	// per-kilo band.
	KindFreightOutOfRange
	// KindMissingFreightForDDP indicates a DDP quote was requested without
	// an explicit freight rate.
	KindMissingFreightForDDP
	// KindCatalogUnavailable indicates no price source could be reached.
	KindCatalogUnavailable
	// KindNoProductsDetected indicates a message carried no recognizable
	// quote request.
	KindNoProductsDetected
	// KindStateMismatch indicates a reply that does not fit the state the
	// conversation is waiting in.
	KindStateMismatch
)

// String returns a stable name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindInternal:
		return "internal"
	case KindUnavailable:
		return "unavailable"
	case KindExtractionLowConfidence:
		return "extraction_low_confidence"
	case KindUnknownProduct:
		return "unknown_product"
	case KindUnknownSize:
		return "unknown_size"
	case KindGlaseoOutOfRange:
		return "glaseo_out_of_range"
	case KindFreightOutOfRange:
		return "freight_out_of_range"
	case KindMissingFreightForDDP:
		return "missing_freight_for_ddp"
	case KindCatalogUnavailable:
		return "catalog_unavailable"
	case KindNoProductsDetected:
		return "no_products_detected"
	case KindStateMismatch:
		return "state_mismatch"
	default:
		return "unknown"
	}
}

// Error is the application error type.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// Message is safe to show to end users.
	Message string
	// Op is the operation that failed, e.g. "calculator.Quote".
	Op string
	// Err is the wrapped cause, if any.
	Err error
	// Details carries structured context such as the offending value.
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound, KindUnknownProduct, KindUnknownSize:
		return http.StatusNotFound
	case KindValidation, KindGlaseoOutOfRange, KindFreightOutOfRange, KindMissingFreightForDDP:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest, KindNoProductsDetected, KindExtractionLowConfidence, KindStateMismatch:
		return http.StatusBadRequest
	case KindUnavailable, KindCatalogUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error with a kind and user-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error with a formatted user-safe message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error that wraps a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp attaches the failing operation and returns the error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails attaches structured context and returns the error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// NotFound creates a not-found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// BadRequest creates a bad-request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal error wrapping a cause.
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// Unavailable creates an unavailable error wrapping a cause.
func Unavailable(message string, err error) *Error {
	return Wrap(KindUnavailable, message, err)
}

// UnknownProduct creates an error for a product outside the catalog.
func UnknownProduct(product string) *Error {
	return Newf(KindUnknownProduct, "unknown product %q", product)
}

// UnknownSize creates an error for a size the product is not sold in.
func UnknownSize(product, size string) *Error {
	return Newf(KindUnknownSize, "product %q has no size %q", product, size)
}

// CatalogUnavailable creates an error for a price source that cannot
// answer at all, wrapping the cause.
func CatalogUnavailable(err error) *Error {
	return Wrap(KindCatalogUnavailable, "price catalog unavailable", err)
}

// GetKind extracts the Kind from an error. It walks the wrap chain so
// fmt.Errorf("%w", appErr) still classifies correctly.
func GetKind(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is reports whether the error carries the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
