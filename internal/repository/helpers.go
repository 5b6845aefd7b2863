package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/eternumwasd/api/internal/database"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// extractRecordID converts a SurrealDB record id into "table:id" form
func extractRecordID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%s:%v", v.Table, v.ID)
		}
	case map[string]interface{}:
		// {"tb": "table", "id": "xxx"} format
		if tb, ok := v["tb"].(string); ok {
			switch inner := v["id"].(type) {
			case string:
				return tb + ":" + inner
			case float64:
				return tb + ":" + strconv.FormatFloat(inner, 'f', -1, 64)
			}
		}
	}

	if data, err := json.Marshal(id); err == nil {
		var recordID models.RecordID
		if err := json.Unmarshal(data, &recordID); err == nil && recordID.Table != "" {
			return fmt.Sprintf("%s:%v", recordID.Table, recordID.ID)
		}
	}

	return ""
}

// extractQueryResults returns the records of one statement in a multi-statement response
func extractQueryResults(results []interface{}, statement int) []interface{} {
	if statement < 0 || statement >= len(results) {
		return nil
	}
	resp, ok := results[statement].(map[string]interface{})
	if !ok {
		return nil
	}
	switch data := resp["result"].(type) {
	case []interface{}:
		return data
	case nil:
		return nil
	default:
		return []interface{}{data}
	}
}

// extractRecords flattens the first statement result into record maps
func extractRecords(results []interface{}) []map[string]interface{} {
	raw := extractQueryResults(results, 0)
	records := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			records = append(records, m)
		}
	}
	return records
}

// BatchExecute runs the queries in chunks, each chunk as one transaction.
// It returns the per-statement results of every chunk in order.
func BatchExecute(ctx context.Context, db database.Database, chunkSize int, queries []struct {
	Query string
	Vars  map[string]interface{}
}) ([]interface{}, error) {
	if chunkSize <= 0 {
		chunkSize = len(queries)
	}

	var all []interface{}
	for start := 0; start < len(queries); start += chunkSize {
		end := start + chunkSize
		if end > len(queries) {
			end = len(queries)
		}

		batch := database.NewAtomicBatch()
		for _, q := range queries[start:end] {
			batch.Add(q.Query, q.Vars)
		}
		results, err := batch.Execute(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		all = append(all, results...)
	}
	return all, nil
}

// extractCountValue converts various numeric types to int
func extractCountValue(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	case json.Number:
		n, _ := c.Int64()
		return int(n)
	}
	return 0
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getInt extracts an int value from a map
func getInt(m map[string]interface{}, key string) int {
	return extractCountValue(m[key])
}

// getBool extracts a bool value from a map
func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// getTime extracts a time value from a map
func getTime(m map[string]interface{}, key string) time.Time {
	switch v := m[key].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	case time.Time:
		return v
	case models.CustomDateTime:
		return v.Time
	case *models.CustomDateTime:
		if v != nil {
			return v.Time
		}
	}
	return time.Time{}
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
