// Package model defines the entities and API shapes of the guild dashboard.
//
// Stored records (Member, Realm) are persisted in SurrealDB by the
// repository package. Game data rows (Structure, TribeMember) come from the
// SQL indexer as loosely typed JSON objects and are wrapped with typed
// accessors instead of being decoded into fixed structs, since the indexer
// adds columns between seasons.
//
// JSON field names follow what dashboard clients already consume, so
// members expose "_id" and "isElite" while realm metadata keeps the
// token's "trait_type".
//
// Errors are returned to clients as RFC 9457 problem details carrying an
// extra "error" member with the human readable reason and an optional
// "details" member with upstream context.
package model
