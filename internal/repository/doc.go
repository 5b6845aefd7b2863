// Package repository implements SurrealDB access for members and realms.
//
// Repositories take a database.Database and speak parameterized SurrealQL.
// Lookups that find nothing return (nil, nil); callers decide whether that
// is an error. Realm records are keyed realm:<realm_id> so refreshes can
// upsert without a prior read, and multi-record writes go through
// BatchExecute, which commits in fixed-size transactions.
package repository
