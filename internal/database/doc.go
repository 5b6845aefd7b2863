// Package database wraps the SurrealDB client behind a small interface.
//
// Query results keep SurrealDB's per-statement shape: each entry is a map
// with "status" and "result" keys, one per statement in the query text.
// Repositories unwrap them with their own helpers.
//
// Multi-statement writes go through AtomicBatch, which renames every
// statement's variables so they cannot collide and wraps the batch in
// BEGIN/COMMIT TRANSACTION:
//
//	batch := database.NewAtomicBatch()
//	batch.Add("UPSERT $rid MERGE $data", map[string]interface{}{"rid": id1, "data": d1})
//	batch.Add("UPSERT $rid MERGE $data", map[string]interface{}{"rid": id2, "data": d2})
//	err := batch.Execute(ctx, db)
//
// Errors wrap ErrConnection, ErrQuery, ErrNotFound or ErrDuplicate and
// should be checked with errors.Is.
package database
