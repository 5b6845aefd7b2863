package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured means the endpoint URL for a collaborator is unset.
	ErrNotConfigured = errors.New("upstream endpoint not configured")

	// ErrNotJSON means the upstream answered with a non-JSON content type.
	ErrNotJSON = errors.New("upstream did not return JSON")

	// ErrUnexpectedShape means the response decoded but lacked expected fields.
	ErrUnexpectedShape = errors.New("unexpected upstream response structure")

	// ErrControllerNotFound means Cartridge has no controller for a username.
	ErrControllerNotFound = errors.New("controller not found")

	// ErrRPCUnavailable means every RPC endpoint failed with a retriable error.
	ErrRPCUnavailable = errors.New("all rpc endpoints failed")
)

// StatusError is a non-2xx upstream response
type StatusError struct {
	Status     int
	StatusText string
	Body       string
	// Messages holds GraphQL error messages found in the body, if any
	Messages []string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d %s", e.Status, e.StatusText)
}

// ContentTypeError is a 2xx response that is not application/json
type ContentTypeError struct {
	ContentType string
	Body        string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("upstream content type %q is not JSON", e.ContentType)
}

func (e *ContentTypeError) Unwrap() error { return ErrNotJSON }

// GraphQLError carries the errors array of a GraphQL response verbatim
type GraphQLError struct {
	Errors []json.RawMessage
}

func (e *GraphQLError) Error() string {
	return "graphql errors: " + strings.Join(e.Messages(), ", ")
}

// Messages returns the message member of each error
func (e *GraphQLError) Messages() []string {
	return errorMessages(e.Errors)
}

// RPCError is a JSON-RPC error object
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func errorMessages(raw []json.RawMessage) []string {
	msgs := make([]string, 0, len(raw))
	for _, item := range raw {
		var e struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(item, &e); err == nil && e.Message != "" {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}
