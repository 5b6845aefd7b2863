package repository

import (
	"context"
	"testing"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// scriptedDB returns canned statement results and records each query
type scriptedDB struct {
	queries []string
	results func(query string) []interface{}
}

func (s *scriptedDB) Connect(context.Context) error { return nil }
func (s *scriptedDB) Close() error                  { return nil }
func (s *scriptedDB) Ping(context.Context) error    { return nil }

func (s *scriptedDB) Query(_ context.Context, query string, _ map[string]interface{}) ([]interface{}, error) {
	s.queries = append(s.queries, query)
	if s.results == nil {
		return nil, nil
	}
	return s.results(query), nil
}

func (s *scriptedDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	res, _ := s.Query(ctx, query, vars)
	if len(res) == 0 {
		return nil, nil
	}
	return res[0], nil
}

func (s *scriptedDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := s.Query(ctx, query, vars)
	return err
}

func ok(result interface{}) map[string]interface{} {
	return map[string]interface{}{"status": "OK", "result": result}
}

func TestExtractRecordID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"string", "member:abc", "member:abc"},
		{"record id", models.RecordID{Table: "realm", ID: 42}, "realm:42"},
		{"record id pointer", &models.RecordID{Table: "member", ID: "xyz"}, "member:xyz"},
		{"tb map", map[string]interface{}{"tb": "member", "id": "q1"}, "member:q1"},
		{"numeric tb map", map[string]interface{}{"tb": "realm", "id": float64(7)}, "realm:7"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractRecordID(tt.in); got != tt.want {
				t.Errorf("extractRecordID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractQueryResults(t *testing.T) {
	t.Parallel()

	results := []interface{}{
		ok([]interface{}{"a", "b"}),
		ok(map[string]interface{}{"single": true}),
		ok(nil),
	}

	if got := extractQueryResults(results, 0); len(got) != 2 {
		t.Errorf("statement 0: got %v", got)
	}
	if got := extractQueryResults(results, 1); len(got) != 1 {
		t.Errorf("statement 1 should wrap the object, got %v", got)
	}
	if got := extractQueryResults(results, 2); got != nil {
		t.Errorf("statement 2 should be nil, got %v", got)
	}
	if got := extractQueryResults(results, 5); got != nil {
		t.Errorf("out of range should be nil, got %v", got)
	}
}

func TestBatchExecute_Chunks(t *testing.T) {
	t.Parallel()

	db := &scriptedDB{results: func(string) []interface{} {
		return []interface{}{ok([]interface{}{1})}
	}}

	queries := make([]struct {
		Query string
		Vars  map[string]interface{}
	}, 5)
	for i := range queries {
		queries[i].Query = "UPDATE $id SET x = 1"
		queries[i].Vars = map[string]interface{}{"id": i}
	}

	results, err := BatchExecute(context.Background(), db, 2, queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.queries) != 3 {
		t.Errorf("expected 3 transactions, got %d", len(db.queries))
	}
	if len(results) != 3 {
		t.Errorf("expected one result per transaction call, got %d", len(results))
	}
}

func TestParseRealm(t *testing.T) {
	t.Parallel()

	realm := parseRealm(map[string]interface{}{
		"id":                models.RecordID{Table: "realm", ID: 12},
		"realm_id":          uint64(12),
		"name":              "Uw Rohi",
		"season_pass_owner": "0xabc",
		"attributes": []interface{}{
			map[string]interface{}{"trait_type": "Resource", "value": "Coal"},
			map[string]interface{}{"trait_type": "Regions", "value": int64(4)},
			"junk",
		},
	})

	if realm.RealmID != 12 || realm.Name != "Uw Rohi" || realm.SeasonPassOwner != "0xabc" {
		t.Errorf("unexpected realm: %+v", realm)
	}
	if len(realm.Attributes) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(realm.Attributes))
	}
	if realm.Attributes[1].Value != float64(4) {
		t.Errorf("numeric attribute should normalize to float64, got %T", realm.Attributes[1].Value)
	}
}

func TestParseMember(t *testing.T) {
	t.Parallel()

	m := parseMember(map[string]interface{}{
		"id":       "member:abc",
		"address":  "0x1",
		"role":     "farmer",
		"is_elite": true,
	})
	if m.ID != "member:abc" || m.Address != "0x1" || !m.IsElite {
		t.Errorf("unexpected member: %+v", m)
	}
	if m.Role == nil || *m.Role != "farmer" {
		t.Errorf("unexpected role: %v", m.Role)
	}

	if parseMember(map[string]interface{}{"id": "member:x"}).Role != nil {
		t.Error("missing role should stay nil")
	}
}
