// Package hexmap holds the hex-grid world map: the coordinate assets
// served from disk, the palettes used to color occupied spots and the
// viewBox arithmetic behind zooming and panning.
//
// Assets are read from a directory containing eternum_all_locations.json
// and eternum_settlement_map_data.json. A Store can watch that directory
// and reload a file shortly after it changes.
package hexmap
