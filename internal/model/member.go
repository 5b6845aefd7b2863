package model

import (
	"fmt"
	"regexp"
	"strings"
)

// MemberRole is the guild duty a member has been assigned
type MemberRole string

const (
	MemberRoleWarmonger MemberRole = "warmonger"
	MemberRoleFarmer    MemberRole = "farmer"
	MemberRoleHybrid    MemberRole = "hybrid"
)

// IsValid returns true if the role is one of the known duties
func (r MemberRole) IsValid() bool {
	switch r {
	case MemberRoleWarmonger, MemberRoleFarmer, MemberRoleHybrid:
		return true
	default:
		return false
	}
}

// Member is a tracked guild member
type Member struct {
	ID       string      `json:"_id"`
	Address  string      `json:"address,omitempty"`
	Username string      `json:"username,omitempty"`
	Role     *MemberRole `json:"role,omitempty"`
	IsElite  bool        `json:"isElite"`
}

// MemberWithRealmCount adds the number of realms the member's address owns
type MemberWithRealmCount struct {
	Member
	RealmCount int `json:"realmCount"`
}

// MemberRef identifies a member by address or username
type MemberRef struct {
	Address  string `json:"address,omitempty"`
	Username string `json:"username,omitempty"`
}

// IsEmpty returns true if neither address nor username is set
func (r MemberRef) IsEmpty() bool {
	return r.Address == "" && r.Username == ""
}

// MemberSelector carries the loose identifiers dashboard clients send.
// Identifier may hold either a record id or an address.
type MemberSelector struct {
	Identifier string `json:"identifier,omitempty"`
	ID         string `json:"id,omitempty"`
	Address    string `json:"address,omitempty"`
}

// IsEmpty returns true if no identifier is present
func (s MemberSelector) IsEmpty() bool {
	return s.Identifier == "" && s.ID == "" && s.Address == ""
}

// MemberField is a store field a member can be looked up by
type MemberField string

const (
	MemberFieldID       MemberField = "id"
	MemberFieldAddress  MemberField = "address"
	MemberFieldUsername MemberField = "username"
)

var memberIDPattern = regexp.MustCompile(`^(member:)?[0-9a-z]{20}$`)

// IsMemberID reports whether s is a well-formed member record id, with or
// without the table prefix
func IsMemberID(s string) bool {
	return memberIDPattern.MatchString(s)
}

// MemberRecordID returns s with the member table prefix
func MemberRecordID(s string) string {
	if strings.HasPrefix(s, "member:") {
		return s
	}
	return "member:" + s
}

// MemberFilter selects at most one member by a single field
type MemberFilter struct {
	Field MemberField
	Value string
}

// UpdateEliteRequest toggles the elite flag of one member
type UpdateEliteRequest struct {
	MemberSelector
	IsElite *bool `json:"isElite"`
}

// RoleUpdate assigns a role to one member; a nil Role clears it
type RoleUpdate struct {
	MemberSelector
	Role *MemberRole `json:"role"`
}

// UpdateRolesRequest is a batch of role assignments
type UpdateRolesRequest struct {
	Roles []RoleUpdate `json:"roles"`
}

// Validate checks every role value; entries without identifiers are left to
// the service, which skips them.
func (r *UpdateRolesRequest) Validate() []FieldError {
	var errs []FieldError
	for i, u := range r.Roles {
		if u.Role != nil && !u.Role.IsValid() {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("roles[%d].role", i),
				Message: "must be one of warmonger, farmer, hybrid or null",
			})
		}
	}
	return errs
}

// WriteResult reports how many records an update touched
type WriteResult struct {
	Matched  int `json:"matchedCount"`
	Modified int `json:"modifiedCount"`
}

// SuccessResponse is the acknowledgement body for member writes
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// MessageResponse carries an informational message only
type MessageResponse struct {
	Message string `json:"message"`
}
