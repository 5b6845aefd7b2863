package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/eternumwasd/api/internal/database"
	"github.com/eternumwasd/api/internal/model"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Factory creates test entities in the database
type Factory struct {
	db database.Database
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{db: db}
}

// RandomAddress returns a random 64-hex-digit Starknet address
func RandomAddress() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "0x" + hex.EncodeToString(b)
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// Member Fixtures
// ============================================================================

// MemberOpts customizes member creation
type MemberOpts struct {
	Address  string
	Username string
	Role     *model.MemberRole
	IsElite  bool
}

// WithRole assigns a role to the created member
func WithRole(role model.MemberRole) func(*MemberOpts) {
	return func(o *MemberOpts) { o.Role = &role }
}

// WithUsername sets the member username
func WithUsername(username string) func(*MemberOpts) {
	return func(o *MemberOpts) { o.Username = username }
}

// WithAddress sets the member address
func WithAddress(address string) func(*MemberOpts) {
	return func(o *MemberOpts) { o.Address = address }
}

// Elite marks the created member as elite
func Elite(o *MemberOpts) { o.IsElite = true }

// CreateMember creates a member with a random address by default
func (f *Factory) CreateMember(t *testing.T, opts ...func(*MemberOpts)) *model.Member {
	t.Helper()

	o := &MemberOpts{Address: RandomAddress()}
	for _, fn := range opts {
		fn(o)
	}

	vars := map[string]interface{}{
		"address":  nilIfEmpty(o.Address),
		"username": nilIfEmpty(o.Username),
		"is_elite": o.IsElite,
		"role":     nil,
	}
	if o.Role != nil {
		vars["role"] = string(*o.Role)
	}

	results, err := f.db.Query(ctx(t), `
		CREATE member CONTENT {
			address: IF $address IS NOT NULL THEN $address ELSE NONE END,
			username: IF $username IS NOT NULL THEN $username ELSE NONE END,
			role: IF $role IS NOT NULL THEN $role ELSE NONE END,
			is_elite: $is_elite,
			created_on: time::now()
		}
	`, vars)
	if err != nil {
		t.Fatalf("fixtures: create member: %v", err)
	}

	data := extractFirstResult(t, results)
	return &model.Member{
		ID:       recordID(data["id"]),
		Address:  o.Address,
		Username: o.Username,
		Role:     o.Role,
		IsElite:  o.IsElite,
	}
}

// ============================================================================
// Realm Fixtures
// ============================================================================

// RealmOpts customizes realm creation
type RealmOpts struct {
	Name      string
	Owner     string
	Resources []string
}

// WithOwner sets the season pass owner
func WithOwner(owner string) func(*RealmOpts) {
	return func(o *RealmOpts) { o.Owner = owner }
}

// WithResources sets the realm's Resource attributes
func WithResources(names ...string) func(*RealmOpts) {
	return func(o *RealmOpts) { o.Resources = names }
}

// WithRealmName overrides the generated realm name
func WithRealmName(name string) func(*RealmOpts) {
	return func(o *RealmOpts) { o.Name = name }
}

// CreateRealm stores a realm under the given id
func (f *Factory) CreateRealm(t *testing.T, realmID int, opts ...func(*RealmOpts)) *model.Realm {
	t.Helper()

	o := &RealmOpts{Name: fmt.Sprintf("Realm %d", realmID)}
	for _, fn := range opts {
		fn(o)
	}

	attrs := make([]model.RealmAttribute, 0, len(o.Resources))
	stored := make([]map[string]interface{}, 0, len(o.Resources))
	for _, name := range o.Resources {
		attrs = append(attrs, model.RealmAttribute{TraitType: model.TraitResource, Value: name})
		stored = append(stored, map[string]interface{}{"trait_type": model.TraitResource, "value": name})
	}

	_, err := f.db.Query(ctx(t), `
		CREATE type::thing('realm', $realm_id) CONTENT {
			realm_id: $realm_id,
			name: $name,
			attributes: $attributes,
			season_pass_owner: IF $owner IS NOT NULL THEN $owner ELSE NONE END,
			updated_on: time::now()
		}
	`, map[string]interface{}{
		"realm_id":   realmID,
		"name":       o.Name,
		"attributes": stored,
		"owner":      nilIfEmpty(o.Owner),
	})
	if err != nil {
		t.Fatalf("fixtures: create realm %d: %v", realmID, err)
	}

	return &model.Realm{
		RealmID:         realmID,
		Name:            o.Name,
		Attributes:      attrs,
		SeasonPassOwner: o.Owner,
	}
}

// ============================================================================
// Data Extraction Helpers
// ============================================================================

func extractFirstResult(t *testing.T, results []interface{}) map[string]interface{} {
	t.Helper()
	if len(results) == 0 {
		t.Fatal("fixtures: no results returned")
	}

	resp, ok := results[0].(map[string]interface{})
	if !ok {
		t.Fatalf("fixtures: unexpected result type: %T", results[0])
	}

	switch result := resp["result"].(type) {
	case []interface{}:
		if len(result) == 0 {
			t.Fatal("fixtures: empty result array")
		}
		data, ok := result[0].(map[string]interface{})
		if !ok {
			t.Fatalf("fixtures: unexpected array item type: %T", result[0])
		}
		return data
	case map[string]interface{}:
		return result
	default:
		t.Fatalf("fixtures: unexpected result type: %T", result)
		return nil
	}
}

func recordID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case models.RecordID:
		return fmt.Sprintf("%s:%v", id.Table, id.ID)
	case *models.RecordID:
		if id != nil {
			return fmt.Sprintf("%s:%v", id.Table, id.ID)
		}
	}
	return ""
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
