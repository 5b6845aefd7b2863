package database

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingDB struct {
	query string
	vars  map[string]interface{}
	err   error
}

func (r *recordingDB) Connect(context.Context) error { return nil }
func (r *recordingDB) Close() error                  { return nil }
func (r *recordingDB) Ping(context.Context) error    { return nil }

func (r *recordingDB) Query(_ context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	r.query = query
	r.vars = vars
	return []interface{}{map[string]interface{}{"status": "OK", "result": []interface{}{}}}, r.err
}

func (r *recordingDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	res, err := r.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return FirstRecord(res)
}

func (r *recordingDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := r.Query(ctx, query, vars)
	return err
}

// ============================================================================
// TxBuilder
// ============================================================================

func TestTxBuilder_NamespacesVariables(t *testing.T) {
	t.Parallel()

	tb := NewTxBuilder()
	tb.Add("UPSERT $rid MERGE $data", map[string]interface{}{"rid": "realm:1", "data": 1})
	tb.Add("UPSERT $rid MERGE $data", map[string]interface{}{"rid": "realm:2", "data": 2})

	query, vars := tb.Build()

	want := "BEGIN TRANSACTION;\nUPSERT $s1_rid MERGE $s1_data;\nUPSERT $s2_rid MERGE $s2_data;\nCOMMIT TRANSACTION;"
	if query != want {
		t.Errorf("query =\n%s\nwant\n%s", query, want)
	}
	if vars["s1_rid"] != "realm:1" || vars["s2_rid"] != "realm:2" {
		t.Errorf("unexpected vars: %v", vars)
	}
	if len(vars) != 4 {
		t.Errorf("expected 4 vars, got %d", len(vars))
	}
}

func TestTxBuilder_PrefixCollision(t *testing.T) {
	t.Parallel()

	tb := NewTxBuilder()
	tb.Add("UPDATE member SET is_elite = $elite WHERE id = $e", map[string]interface{}{"e": "member:a", "elite": true})

	query, _ := tb.Build()
	if !strings.Contains(query, "$s1_elite WHERE id = $s1_e;") {
		t.Errorf("variables sharing a prefix must be renamed independently, got %s", query)
	}
}

func TestTxBuilder_LeavesUnboundParams(t *testing.T) {
	t.Parallel()

	tb := NewTxBuilder()
	tb.Add("UPDATE realm SET owner = $owner WHERE $this.owner = NONE", map[string]interface{}{"owner": "0x1"})

	query, _ := tb.Build()
	if !strings.Contains(query, "$this.owner") {
		t.Errorf("unbound params must be left alone, got %s", query)
	}
	if got := tb.VarNames(); len(got) != 1 || got[0] != "s1_owner" {
		t.Errorf("VarNames() = %v", got)
	}
}

func TestTxBuilder_Empty(t *testing.T) {
	t.Parallel()

	query, vars := NewTxBuilder().Build()
	if query != "" || vars != nil {
		t.Errorf("empty builder should build nothing, got %q %v", query, vars)
	}
}

// ============================================================================
// AtomicBatch
// ============================================================================

func TestAtomicBatch_Execute(t *testing.T) {
	t.Parallel()

	db := &recordingDB{}
	batch := NewAtomicBatch().
		Add("DELETE $rid", map[string]interface{}{"rid": "member:a"}).
		Add("DELETE $rid", map[string]interface{}{"rid": "member:b"})

	if batch.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", batch.Len())
	}

	if _, err := batch.Execute(context.Background(), db); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(db.query, "BEGIN TRANSACTION;") {
		t.Errorf("batch must run inside a transaction, got %s", db.query)
	}
	if db.vars["s2_rid"] != "member:b" {
		t.Errorf("unexpected vars: %v", db.vars)
	}
}

func TestAtomicBatch_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	db := &recordingDB{}
	if _, err := NewAtomicBatch().Execute(context.Background(), db); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if db.query != "" {
		t.Error("empty batch should not reach the database")
	}
}

func TestAtomicBatch_PropagatesError(t *testing.T) {
	t.Parallel()

	db := &recordingDB{err: ErrQuery}
	_, err := NewAtomicBatch().Add("DELETE member", nil).Execute(context.Background(), db)
	if !errors.Is(err, ErrQuery) {
		t.Errorf("expected ErrQuery, got %v", err)
	}
}

// ============================================================================
// Result helpers
// ============================================================================

func TestFirstRecord(t *testing.T) {
	t.Parallel()

	rec := map[string]interface{}{"id": "member:a"}
	tests := []struct {
		name    string
		results []interface{}
		want    interface{}
		wantErr error
	}{
		{"no statements", nil, nil, ErrNotFound},
		{"empty result", []interface{}{map[string]interface{}{"status": "OK", "result": []interface{}{}}}, nil, ErrNotFound},
		{"nil result", []interface{}{map[string]interface{}{"status": "OK", "result": nil}}, nil, ErrNotFound},
		{"first record", []interface{}{map[string]interface{}{"status": "OK", "result": []interface{}{rec}}}, rec, nil},
		{"scalar", []interface{}{map[string]interface{}{"status": "OK", "result": float64(3)}}, float64(3), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FirstRecord(tt.results)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if m, ok := tt.want.(map[string]interface{}); ok {
					if gm, _ := got.(map[string]interface{}); gm["id"] != m["id"] {
						t.Errorf("got %v, want %v", got, tt.want)
					}
				} else if got != tt.want {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	if err := classify("Database record `realm:1` already exists"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if err := classify("Parse error"); !errors.Is(err, ErrQuery) {
		t.Errorf("expected ErrQuery, got %v", err)
	}
}

func TestOperationName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"SELECT * FROM member":                        "SELECT",
		"BEGIN TRANSACTION;\nUPSERT $s1_rid;\nCOMMIT": "UPSERT",
		"":                                            "UNKNOWN",
	}
	for q, want := range cases {
		if got := operationName(q); got != want {
			t.Errorf("operationName(%q) = %q, want %q", q, got, want)
		}
	}
}
