package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure the way the terminal surfaces it to the user.
type Kind int

const (
	KindInternal Kind = iota
	KindConnection
	KindValidation
	KindInsufficientStock
	KindInvalidQuantity
	KindEmptyCart
	KindMissingCustomerInfo
	KindPersistence
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

var kindNames = map[Kind]string{
	KindInternal:            "internal",
	KindConnection:          "connection_failure",
	KindValidation:          "validation_failure",
	KindInsufficientStock:   "insufficient_stock",
	KindInvalidQuantity:     "invalid_quantity",
	KindEmptyCart:           "empty_cart",
	KindMissingCustomerInfo: "missing_customer_info",
	KindPersistence:         "persistence_failure",
	KindUnauthorized:        "unauthorized",
	KindForbidden:           "forbidden",
	KindNotFound:            "not_found",
	KindConflict:            "conflict",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// HTTPStatus maps a kind onto the status code used by the HTTP shell.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindConnection:
		return http.StatusServiceUnavailable
	case KindValidation, KindInvalidQuantity, KindMissingCustomerInfo:
		return http.StatusUnprocessableEntity
	case KindInsufficientStock, KindEmptyCart, KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Detail is safe to show to the user; Err keeps
// the underlying cause for logs.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so sentinels such as
// cart.ErrEmptyCart match any error carrying that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// E creates a classified error without a cause.
func E(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap classifies err. A nil err yields a plain E.
func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// As extracts the outermost *Error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
