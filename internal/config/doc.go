// Package config loads the API configuration from environment variables.
//
// Every setting is declared as a struct field with an env tag and parsed by
// github.com/caarlos0/env. Validate reports all problems at once so a
// misconfigured deployment fails with the full list.
//
// Upstream endpoints (GAME_DATA_SQL, SEASON_PASSES_SQL, SEASON_PASSES_GQL) are
// optional at startup. Routes that depend on a missing endpoint answer with a
// server configuration error instead.
package config
