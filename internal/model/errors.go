package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode represents API error codes
type ErrorCode int

const (
	// Resource errors (3xxx)
	ErrCodeNotFound ErrorCode = 3001
	ErrCodeConflict ErrorCode = 3003

	// Validation errors (4xxx)
	ErrCodeValidation   ErrorCode = 4001
	ErrCodeInvalidInput ErrorCode = 4002
	ErrCodeRateLimited  ErrorCode = 4004

	// Internal errors (5xxx)
	ErrCodeInternal      ErrorCode = 5001
	ErrCodeExternalAPI   ErrorCode = 5003
	ErrCodeConfiguration ErrorCode = 5004
)

const problemTypeBase = "https://api.eternumwasd.gg/errors/"

// ProblemDetails represents RFC 9457 Problem Details for HTTP APIs.
// Message and Details are extension members; dashboard clients read the
// "error" member for the human readable reason.
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
	// Extension fields
	Code    ErrorCode   `json:"code,omitempty"`
	Message string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Message)
}

// WithDetails attaches upstream context to the problem
func (p *ProblemDetails) WithDetails(details interface{}) *ProblemDetails {
	p.Details = details
	return p
}

// WriteJSON writes the problem details as JSON response
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func newProblem(slug, title string, status int, code ErrorCode, message string) *ProblemDetails {
	return &ProblemDetails{
		Type:    problemTypeBase + slug,
		Title:   title,
		Status:  status,
		Detail:  message,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError reports a missing record. The message is used verbatim.
func NewNotFoundError(message string) *ProblemDetails {
	return newProblem("not-found", "Not Found", http.StatusNotFound, ErrCodeNotFound, message)
}

func NewValidationError(errors []FieldError) *ProblemDetails {
	detail := "One or more fields failed validation"
	if len(errors) > 0 {
		detail = fmt.Sprintf("%s: %s", errors[0].Field, errors[0].Message)
		if len(errors) > 1 {
			detail = fmt.Sprintf("%s (and %d more errors)", detail, len(errors)-1)
		}
	}
	p := newProblem("validation", "Validation Error", http.StatusBadRequest, ErrCodeValidation, detail)
	p.Errors = errors
	return p
}

func NewConflictError(message string) *ProblemDetails {
	return newProblem("conflict", "Conflict", http.StatusConflict, ErrCodeConflict, message)
}

func NewInternalError(message string) *ProblemDetails {
	if message == "" {
		message = "Internal Server Error"
	}
	return newProblem("internal", "Internal Server Error", http.StatusInternalServerError, ErrCodeInternal, message)
}

func NewBadRequestError(message string) *ProblemDetails {
	return newProblem("bad-request", "Bad Request", http.StatusBadRequest, ErrCodeInvalidInput, message)
}

// NewConfigurationError reports a missing server setting
func NewConfigurationError(message string) *ProblemDetails {
	return newProblem("configuration", "Internal Server Error", http.StatusInternalServerError, ErrCodeConfiguration, message)
}

// NewUpstreamError mirrors a failed third-party response status
func NewUpstreamError(status int, message string) *ProblemDetails {
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	title := http.StatusText(status)
	if title == "" {
		title = "Upstream Error"
	}
	return newProblem("upstream", title, status, ErrCodeExternalAPI, message)
}

// NewBadGatewayError reports an upstream that answered with an unusable body
func NewBadGatewayError(message string) *ProblemDetails {
	return newProblem("bad-gateway", "Bad Gateway", http.StatusBadGateway, ErrCodeExternalAPI, message)
}

func NewRateLimitError(retryAfter int) *ProblemDetails {
	return newProblem("rate-limited", "Too Many Requests", http.StatusTooManyRequests, ErrCodeRateLimited,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter))
}
