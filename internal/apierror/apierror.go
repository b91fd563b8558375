// Package apierror provides standardized error response structures for the API
// and the error taxonomy shared by every layer of the terminal.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Code: KindValidation.String(), Fields: fields}
}

// FromError builds the response envelope for err. Internal and persistence
// details are replaced by a generic message.
func FromError(err error) *APIError {
	kind := KindOf(err)
	detail := "Error interno del servidor"
	if e, ok := As(err); ok && kind != KindInternal {
		detail = e.Detail
	}
	return &APIError{Detail: detail, Code: kind.String()}
}
