// Package upstream holds the HTTP clients for the third-party services the
// dashboard reads from: the SQL-over-HTTP game and season pass indexers, the
// GraphQL token indexer, the Cartridge identity API and public Starknet
// JSON-RPC nodes.
//
// Clients return typed failures so handlers can echo upstream statuses:
// *StatusError for non-2xx replies, *ContentTypeError (wrapping ErrNotJSON)
// for non-JSON bodies, *GraphQLError for GraphQL error arrays and *RPCError
// for JSON-RPC errors. Every request is traced as a client span.
package upstream
