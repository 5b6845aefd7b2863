// Package catalog holds the static resource and troop band tables.
//
// The tables are compiled in from resources.yaml and exposed through
// Default(). Lookups by name tolerate the spellings seen in realm metadata
// ("Cold Iron", "ColdIron", "cold_iron").
package catalog
