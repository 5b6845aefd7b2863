package repository

import (
	"context"
	"errors"

	"github.com/eternumwasd/api/internal/database"
	"github.com/eternumwasd/api/internal/model"
)

// realmWriteChunk bounds the statements sent in one transaction
const realmWriteChunk = 250

// RealmRepository handles realm data access
type RealmRepository struct {
	db database.Database
}

// NewRealmRepository creates a new realm repository
func NewRealmRepository(db database.Database) *RealmRepository {
	return &RealmRepository{db: db}
}

// List returns every stored realm ordered by realm id
func (r *RealmRepository) List(ctx context.Context) ([]model.Realm, error) {
	query := `SELECT * FROM realm ORDER BY realm_id ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	return parseRealms(result), nil
}

// GetByID retrieves a realm by its numeric id, or nil if missing
func (r *RealmRepository) GetByID(ctx context.Context, realmID int) (*model.Realm, error) {
	query := `SELECT * FROM type::thing('realm', $realm_id)`

	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"realm_id": realmID})
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
	realm := parseRealm(rec)
	return &realm, nil
}

// FindByName returns realms whose name matches case-insensitively
func (r *RealmRepository) FindByName(ctx context.Context, name string) ([]model.Realm, error) {
	query := `SELECT * FROM realm WHERE string::lowercase(name) = string::lowercase($name) ORDER BY realm_id ASC`

	result, err := r.db.Query(ctx, query, map[string]interface{}{"name": name})
	if err != nil {
		return nil, err
	}
	return parseRealms(result), nil
}

// OwnerCounts groups realms by their stored season pass owner
func (r *RealmRepository) OwnerCounts(ctx context.Context) ([]model.OwnerCount, error) {
	query := `
		SELECT season_pass_owner AS owner, count() AS count
		FROM realm
		WHERE season_pass_owner IS NOT NONE
		GROUP BY season_pass_owner
	`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	records := extractRecords(result)
	counts := make([]model.OwnerCount, 0, len(records))
	for _, rec := range records {
		owner := getString(rec, "owner")
		if owner == "" {
			continue
		}
		counts = append(counts, model.OwnerCount{Owner: owner, Count: getInt(rec, "count")})
	}
	return counts, nil
}

// Upsert writes realm metadata keyed by realm id. A realm without a
// SeasonPassOwner keeps whatever owner is already stored.
func (r *RealmRepository) Upsert(ctx context.Context, realms []model.Realm) error {
	queries := make([]struct {
		Query string
		Vars  map[string]interface{}
	}, 0, len(realms))

	for _, realm := range realms {
		query := `
			UPSERT type::thing('realm', $realm_id) MERGE {
				realm_id: $realm_id,
				name: $name,
				image: $image,
				attributes: $attributes,
				updated_on: time::now()
			}
		`
		vars := map[string]interface{}{
			"realm_id":   realm.RealmID,
			"name":       realm.Name,
			"image":      realm.Image,
			"attributes": attributesToStore(realm.Attributes),
		}
		if realm.SeasonPassOwner != "" {
			query = `
				UPSERT type::thing('realm', $realm_id) MERGE {
					realm_id: $realm_id,
					name: $name,
					image: $image,
					attributes: $attributes,
					season_pass_owner: $owner,
					updated_on: time::now()
				}
			`
			vars["owner"] = realm.SeasonPassOwner
		}

		queries = append(queries, struct {
			Query string
			Vars  map[string]interface{}
		}{query, vars})
	}

	_, err := BatchExecute(ctx, r.db, realmWriteChunk, queries)
	return err
}

// ApplyOwners sets the season pass owner of existing realms and returns how
// many records changed. Unknown realm ids are ignored.
func (r *RealmRepository) ApplyOwners(ctx context.Context, updates []model.OwnerUpdate) (int, error) {
	queries := make([]struct {
		Query string
		Vars  map[string]interface{}
	}, 0, len(updates))

	for _, u := range updates {
		queries = append(queries, struct {
			Query string
			Vars  map[string]interface{}
		}{
			Query: `UPDATE type::thing('realm', $realm_id) SET season_pass_owner = $owner, updated_on = time::now() WHERE season_pass_owner != $owner`,
			Vars: map[string]interface{}{
				"realm_id": u.RealmID,
				"owner":    u.Owner,
			},
		})
	}

	results, err := BatchExecute(ctx, r.db, realmWriteChunk, queries)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range results {
		if len(extractQueryResults(results, i)) > 0 {
			applied++
		}
	}
	return applied, nil
}

func attributesToStore(attrs []model.RealmAttribute) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, map[string]interface{}{
			"trait_type": a.TraitType,
			"value":      a.Value,
		})
	}
	return out
}

func parseRealms(result []interface{}) []model.Realm {
	records := extractRecords(result)
	realms := make([]model.Realm, 0, len(records))
	for _, rec := range records {
		realms = append(realms, parseRealm(rec))
	}
	return realms
}

func parseRealm(data map[string]interface{}) model.Realm {
	realm := model.Realm{
		RealmID:         getInt(data, "realm_id"),
		Name:            getString(data, "name"),
		Image:           getString(data, "image"),
		SeasonPassOwner: getString(data, "season_pass_owner"),
		UpdatedOn:       getTime(data, "updated_on"),
		Attributes:      []model.RealmAttribute{},
	}

	if attrs, ok := data["attributes"].([]interface{}); ok {
		for _, item := range attrs {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			realm.Attributes = append(realm.Attributes, model.RealmAttribute{
				TraitType: getString(m, "trait_type"),
				Value:     normalizeAttributeValue(m["value"]),
			})
		}
	}
	return realm
}

// normalizeAttributeValue maps driver numeric types onto float64 like JSON does
func normalizeAttributeValue(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
