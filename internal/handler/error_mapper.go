package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eternumwasd/api/internal/hexmap"
	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/service"
	"github.com/eternumwasd/api/internal/upstream"
)

// MapServiceError converts a service error to a ProblemDetails response.
// Routes whose upstream failures need their own wording map those first and
// fall back to this.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Validation Errors → 400 =====
	case errors.Is(err, service.ErrMemberRefRequired):
		return model.NewBadRequestError("Address or username required")
	case errors.Is(err, service.ErrEliteFlagRequired):
		return model.NewBadRequestError("Invalid payload: isElite must be a boolean.")
	case errors.Is(err, service.ErrMemberSelectorRequired):
		return model.NewBadRequestError("Invalid payload: identifier, id, or address is required.")
	case errors.Is(err, service.ErrRolesRequired):
		return model.NewBadRequestError("Invalid payload: roles array is required.")
	case errors.Is(err, service.ErrInvalidRole):
		return model.NewValidationError([]model.FieldError{{Field: "role", Message: err.Error()}})
	case errors.Is(err, service.ErrUsernameRequired):
		return model.NewBadRequestError("Username is required")
	case errors.Is(err, service.ErrAddressesRequired):
		return model.NewBadRequestError("Missing or invalid 'addresses' array in request body")
	case errors.Is(err, service.ErrInvalidLayer):
		return model.NewValidationError([]model.FieldError{{Field: "layer", Message: "must be one of guild, tribe, resource, village, player"}})

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrMemberNotFound):
		return model.NewNotFoundError("Member not found.")
	case errors.Is(err, service.ErrRealmNotFound):
		return model.NewNotFoundError("Realm not found")
	case errors.Is(err, service.ErrHexNotFound):
		return model.NewNotFoundError("No hex at the given coordinates")
	case errors.Is(err, upstream.ErrControllerNotFound):
		return model.NewNotFoundError("Controller not found for username.")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrSyncInProgress):
		return model.NewConflictError(err.Error())

	// ===== Configuration Errors → 500 =====
	case errors.Is(err, service.ErrSyncNotConfigured),
		errors.Is(err, upstream.ErrNotConfigured):
		return model.NewConfigurationError("Server configuration error")
	case errors.Is(err, hexmap.ErrAssetUnavailable):
		return model.NewConfigurationError("Map data unavailable").WithDetails(err.Error())
	}

	// Upstream failures without route specific wording
	var se *upstream.StatusError
	if errors.As(err, &se) {
		return model.NewUpstreamError(se.Status, fmt.Sprintf("Upstream request failed: %d %s", se.Status, se.StatusText)).
			WithDetails(se.Body)
	}
	if errors.Is(err, upstream.ErrNotJSON) {
		return model.NewBadGatewayError("Upstream did not return JSON.").WithDetails(contentBody(err))
	}

	slog.Error("unhandled service error", "error", err)
	return model.NewInternalError("Internal Server Error").WithDetails(err.Error())
}

// gameDataError words a game data SQL failure for one proxied resource.
// failure completes "Failed to fetch ..." and "... while fetching ...".
func gameDataError(err error, failure string) *model.ProblemDetails {
	var se *upstream.StatusError
	switch {
	case errors.Is(err, upstream.ErrNotConfigured):
		return model.NewConfigurationError("Server configuration error: Game data URL not set.")
	case errors.As(err, &se):
		return model.NewUpstreamError(se.Status, fmt.Sprintf("Failed to fetch %s: %d %s", failure, se.Status, se.StatusText)).
			WithDetails(se.Body)
	case errors.Is(err, upstream.ErrNotJSON):
		return model.NewBadGatewayError("Game SQL API did not return JSON.").WithDetails(contentBody(err))
	}
	slog.Error("game data request failed", "resource", failure, "error", err)
	return model.NewInternalError(fmt.Sprintf("Internal server error while fetching %s.", failure)).
		WithDetails(err.Error())
}

// usernamesError words a failed Cartridge username lookup
func usernamesError(err error) *model.ProblemDetails {
	var (
		se *upstream.StatusError
		ge *upstream.GraphQLError
	)
	switch {
	case errors.Is(err, service.ErrAddressesRequired):
		return MapServiceError(err)
	case errors.As(err, &se):
		return model.NewUpstreamError(se.Status, fmt.Sprintf("Cartridge API request failed: %d %s", se.Status, se.StatusText)).
			WithDetails(se.Body)
	case errors.Is(err, upstream.ErrNotJSON):
		return model.NewBadGatewayError("Cartridge API did not return JSON.").WithDetails(contentBody(err))
	case errors.As(err, &ge):
		return model.NewInternalError("Cartridge API returned GraphQL errors").WithDetails(ge.Errors)
	case errors.Is(err, upstream.ErrUnexpectedShape):
		return model.NewInternalError("Cartridge API response missing expected data structure")
	}
	slog.Error("cartridge username lookup failed", "error", err)
	return model.NewInternalError("Internal server error").WithDetails(err.Error())
}

// addressError words a failed Cartridge controller lookup
func addressError(err error) *model.ProblemDetails {
	var se *upstream.StatusError
	switch {
	case errors.Is(err, service.ErrUsernameRequired),
		errors.Is(err, upstream.ErrControllerNotFound):
		return MapServiceError(err)
	case errors.As(err, &se):
		msg := "Failed to fetch address from Cartridge API."
		if len(se.Messages) > 0 {
			msg = strings.Join(se.Messages, ", ")
		}
		return model.NewUpstreamError(se.Status, msg)
	case errors.Is(err, upstream.ErrUnexpectedShape):
		return model.NewInternalError("Failed to parse address from Cartridge API response.")
	}
	slog.Error("cartridge address lookup failed", "error", err)
	return model.NewInternalError("Internal server error: " + err.Error())
}

func contentBody(err error) string {
	var ce *upstream.ContentTypeError
	if errors.As(err, &ce) {
		return ce.Body
	}
	return err.Error()
}
