package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/pkg/starknet"
)

// MemberRepository defines the interface for member storage
type MemberRepository interface {
	List(ctx context.Context) ([]model.Member, error)
	Create(ctx context.Context, ref model.MemberRef) (*model.Member, error)
	Find(ctx context.Context, filter model.MemberFilter) (*model.Member, error)
	DeleteOne(ctx context.Context, filter model.MemberFilter) (bool, error)
	SetElite(ctx context.Context, id string, isElite bool) error
	SetRole(ctx context.Context, id string, role *model.MemberRole) error
}

// OwnerCounter counts stored realms per season pass owner
type OwnerCounter interface {
	OwnerCounts(ctx context.Context) ([]model.OwnerCount, error)
}

// MemberService handles the guild roster
type MemberService struct {
	repo   MemberRepository
	realms OwnerCounter
}

// NewMemberService creates a new member service
func NewMemberService(repo MemberRepository, realms OwnerCounter) *MemberService {
	return &MemberService{repo: repo, realms: realms}
}

// List returns every member in insertion order
func (s *MemberService) List(ctx context.Context) ([]model.Member, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if members == nil {
		members = []model.Member{}
	}
	return members, nil
}

// Add tracks a new member by address, username or both
func (s *MemberService) Add(ctx context.Context, ref model.MemberRef) (*model.Member, error) {
	ref = trimRef(ref)
	if ref.IsEmpty() {
		return nil, ErrMemberRefRequired
	}
	member, err := s.repo.Create(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return member, nil
}

// Remove deletes one member by address, or by username when no address is
// given. Removing an unknown member is not an error.
func (s *MemberService) Remove(ctx context.Context, ref model.MemberRef) (bool, error) {
	ref = trimRef(ref)
	if ref.IsEmpty() {
		return false, ErrMemberRefRequired
	}
	filter := model.MemberFilter{Field: model.MemberFieldUsername, Value: ref.Username}
	if ref.Address != "" {
		filter = model.MemberFilter{Field: model.MemberFieldAddress, Value: ref.Address}
	}
	removed, err := s.repo.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("delete member: %w", err)
	}
	return removed, nil
}

// UpdateElite sets the elite flag of the member the selector resolves to
func (s *MemberService) UpdateElite(ctx context.Context, req model.UpdateEliteRequest) (model.WriteResult, error) {
	if req.IsElite == nil {
		return model.WriteResult{}, ErrEliteFlagRequired
	}
	if req.MemberSelector.IsEmpty() {
		return model.WriteResult{}, ErrMemberSelectorRequired
	}

	filter, ok := resolveSelector(req.MemberSelector)
	if !ok {
		return model.WriteResult{}, ErrMemberSelectorRequired
	}
	member, err := s.repo.Find(ctx, filter)
	if err != nil {
		return model.WriteResult{}, fmt.Errorf("find member: %w", err)
	}
	if member == nil {
		return model.WriteResult{}, ErrMemberNotFound
	}

	result := model.WriteResult{Matched: 1}
	if member.IsElite == *req.IsElite {
		return result, nil
	}
	if err := s.repo.SetElite(ctx, member.ID, *req.IsElite); err != nil {
		return model.WriteResult{}, fmt.Errorf("set elite: %w", err)
	}
	result.Modified = 1
	return result, nil
}

// UpdateRoles applies role assignments in order. Entries with no
// identifier are skipped; a nil result means nothing was left to apply.
func (s *MemberService) UpdateRoles(ctx context.Context, req model.UpdateRolesRequest) (*model.WriteResult, error) {
	if len(req.Roles) == 0 {
		return nil, ErrRolesRequired
	}
	for _, u := range req.Roles {
		if u.Role != nil && !u.Role.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *u.Role)
		}
	}

	var result model.WriteResult
	applied := 0
	for _, u := range req.Roles {
		filter, ok := resolveSelector(u.MemberSelector)
		if !ok {
			continue
		}
		applied++

		member, err := s.repo.Find(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("find member: %w", err)
		}
		if member == nil {
			continue
		}
		result.Matched++
		if sameRole(member.Role, u.Role) {
			continue
		}
		if err := s.repo.SetRole(ctx, member.ID, u.Role); err != nil {
			return nil, fmt.Errorf("set role: %w", err)
		}
		result.Modified++
	}

	if applied == 0 {
		return nil, nil
	}
	return &result, nil
}

// ListWithRealmCounts returns members with the number of stored realms
// whose season pass owner matches the member's address
func (s *MemberService) ListWithRealmCounts(ctx context.Context) ([]model.MemberWithRealmCount, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	counts, err := s.realms.OwnerCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count realms: %w", err)
	}

	byOwner := make(map[string]int, len(counts))
	for _, c := range counts {
		byOwner[starknet.NormalizeAddress(c.Owner)] += c.Count
	}

	out := make([]model.MemberWithRealmCount, 0, len(members))
	for _, m := range members {
		count := 0
		if m.Address != "" {
			count = byOwner[starknet.NormalizeAddress(m.Address)]
		}
		out = append(out, model.MemberWithRealmCount{Member: m, RealmCount: count})
	}
	return out, nil
}

// resolveSelector picks the lookup in order: explicit id when well
// formed, explicit address, identifier as id, identifier as address.
// A malformed id with nothing else to go on resolves to nothing.
func resolveSelector(sel model.MemberSelector) (model.MemberFilter, bool) {
	switch {
	case sel.ID != "" && model.IsMemberID(sel.ID):
		return model.MemberFilter{Field: model.MemberFieldID, Value: model.MemberRecordID(sel.ID)}, true
	case sel.Address != "":
		return model.MemberFilter{Field: model.MemberFieldAddress, Value: sel.Address}, true
	case sel.Identifier != "" && model.IsMemberID(sel.Identifier):
		return model.MemberFilter{Field: model.MemberFieldID, Value: model.MemberRecordID(sel.Identifier)}, true
	case sel.Identifier != "":
		return model.MemberFilter{Field: model.MemberFieldAddress, Value: sel.Identifier}, true
	default:
		return model.MemberFilter{}, false
	}
}

func sameRole(a, b *model.MemberRole) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func trimRef(ref model.MemberRef) model.MemberRef {
	return model.MemberRef{
		Address:  strings.TrimSpace(ref.Address),
		Username: strings.TrimSpace(ref.Username),
	}
}
