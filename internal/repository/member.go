package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eternumwasd/api/internal/database"
	"github.com/eternumwasd/api/internal/model"
)

// MemberRepository handles member data access
type MemberRepository struct {
	db database.Database
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db database.Database) *MemberRepository {
	return &MemberRepository{db: db}
}

// List returns every tracked member in insertion order
func (r *MemberRepository) List(ctx context.Context) ([]model.Member, error) {
	query := `SELECT * FROM member ORDER BY created_on ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	records := extractRecords(result)
	members := make([]model.Member, 0, len(records))
	for _, rec := range records {
		members = append(members, parseMember(rec))
	}
	return members, nil
}

// Create inserts a member. Address and username are stored as given.
func (r *MemberRepository) Create(ctx context.Context, ref model.MemberRef) (*model.Member, error) {
	query := `
		CREATE member CONTENT {
			address: IF $address IS NOT NULL THEN $address ELSE NONE END,
			username: IF $username IS NOT NULL THEN $username ELSE NONE END,
			is_elite: false,
			created_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"address":  nilIfEmpty(ref.Address),
		"username": nilIfEmpty(ref.Username),
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rec, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	member := parseMember(rec)
	return &member, nil
}

// Find returns the first member matching the filter, or nil if none does
func (r *MemberRepository) Find(ctx context.Context, filter model.MemberFilter) (*model.Member, error) {
	var query string
	switch filter.Field {
	case model.MemberFieldID:
		query = `SELECT * FROM type::record($value)`
	case model.MemberFieldAddress:
		query = `SELECT * FROM member WHERE address = $value ORDER BY created_on ASC LIMIT 1`
	case model.MemberFieldUsername:
		query = `SELECT * FROM member WHERE username = $value ORDER BY created_on ASC LIMIT 1`
	default:
		return nil, fmt.Errorf("unsupported member field %q", filter.Field)
	}

	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"value": filter.Value})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rec, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	member := parseMember(rec)
	return &member, nil
}

// DeleteOne removes the first member matching the filter and reports
// whether one was removed
func (r *MemberRepository) DeleteOne(ctx context.Context, filter model.MemberFilter) (bool, error) {
	member, err := r.Find(ctx, filter)
	if err != nil || member == nil {
		return false, err
	}

	query := `DELETE type::record($id)`
	if err := r.db.Execute(ctx, query, map[string]interface{}{"id": member.ID}); err != nil {
		return false, err
	}
	return true, nil
}

// SetElite updates the elite flag of one member
func (r *MemberRepository) SetElite(ctx context.Context, id string, isElite bool) error {
	query := `UPDATE type::record($id) SET is_elite = $is_elite, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":       id,
		"is_elite": isElite,
	}
	return r.db.Execute(ctx, query, vars)
}

// SetRole assigns a role to one member; nil clears it
func (r *MemberRepository) SetRole(ctx context.Context, id string, role *model.MemberRole) error {
	query := `UPDATE type::record($id) SET role = IF $role IS NOT NULL THEN $role ELSE NONE END, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":   id,
		"role": nil,
	}
	if role != nil {
		vars["role"] = string(*role)
	}
	return r.db.Execute(ctx, query, vars)
}

func parseMember(data map[string]interface{}) model.Member {
	member := model.Member{
		ID:       extractRecordID(data["id"]),
		Address:  getString(data, "address"),
		Username: getString(data, "username"),
		IsElite:  getBool(data, "is_elite"),
	}
	if role := model.MemberRole(getString(data, "role")); role != "" {
		member.Role = &role
	}
	return member
}
