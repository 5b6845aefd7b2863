package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Member Errors =====
var (
	ErrMemberRefRequired      = errors.New("address or username required")
	ErrMemberNotFound         = errors.New("member not found")
	ErrEliteFlagRequired      = errors.New("isElite must be a boolean")
	ErrMemberSelectorRequired = errors.New("identifier, id, or address is required")
	ErrRolesRequired          = errors.New("roles array is required")
	ErrInvalidRole            = errors.New("invalid member role")
)

// ===== Realm Errors =====
var (
	ErrRealmNotFound = errors.New("realm not found")
)

// ===== Identity Errors =====
var (
	ErrUsernameRequired  = errors.New("username is required")
	ErrAddressesRequired = errors.New("addresses array is required")
)

// ===== Sync Errors =====
var (
	ErrSyncInProgress    = errors.New("sync already in progress")
	ErrSyncNotConfigured = errors.New("sync source not configured")
	ErrTokenFetch        = errors.New("failed to fetch token ids")
	ErrOwnerWrite        = errors.New("failed to update database")
)

// ===== Map Errors =====
var (
	ErrInvalidLayer = errors.New("invalid map layer")
	ErrHexNotFound  = errors.New("no hex at coordinates")
)
