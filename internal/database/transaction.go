package database

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// varPattern matches a $name reference in SurrealQL text
var varPattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*`)

// TxBuilder assembles a transaction from statements whose variable names may
// overlap. Each Add call gets its own prefix: $rid in the third statement
// becomes $s3_rid.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
}

// NewTxBuilder creates a new transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		vars: make(map[string]interface{}),
	}
}

// Add appends a statement, renaming the variables it binds
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) {
	prefix := fmt.Sprintf("s%d_", len(tb.statements)+1)

	rewritten := varPattern.ReplaceAllStringFunc(query, func(ref string) string {
		name := ref[1:]
		if _, bound := vars[name]; !bound {
			return ref
		}
		return "$" + prefix + name
	})

	for name, value := range vars {
		tb.vars[prefix+name] = value
	}
	tb.statements = append(tb.statements, rewritten)
}

// Len returns the number of statements added so far
func (tb *TxBuilder) Len() int {
	return len(tb.statements)
}

// Build returns the complete transaction query and merged variables
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		stmt = strings.TrimSpace(stmt)
		sb.WriteString(stmt)
		if !strings.HasSuffix(stmt, ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

// VarNames returns the bound variable names in sorted order
func (tb *TxBuilder) VarNames() []string {
	names := make([]string, 0, len(tb.vars))
	for k := range tb.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// AtomicBatch collects writes that must succeed together
type AtomicBatch struct {
	queries []batchQuery
}

type batchQuery struct {
	query string
	vars  map[string]interface{}
}

// NewAtomicBatch creates a new atomic batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{}
}

// Add adds a query to the batch
func (ab *AtomicBatch) Add(query string, vars map[string]interface{}) *AtomicBatch {
	ab.queries = append(ab.queries, batchQuery{query: query, vars: vars})
	return ab
}

// Execute runs all queries as a single transaction and returns the
// per-statement results
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) ([]interface{}, error) {
	if len(ab.queries) == 0 {
		return nil, nil
	}

	tb := NewTxBuilder()
	for _, q := range ab.queries {
		tb.Add(q.query, q.vars)
	}

	query, vars := tb.Build()
	return db.Query(ctx, query, vars)
}

// Len returns the number of queries in the batch
func (ab *AtomicBatch) Len() int {
	return len(ab.queries)
}
