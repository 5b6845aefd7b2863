package model

import "strconv"

// MapLayer selects how occupied realm spots are colored
type MapLayer string

const (
	MapLayerGuild    MapLayer = "guild"
	MapLayerTribe    MapLayer = "tribe"
	MapLayerResource MapLayer = "resource"
	MapLayerVillage  MapLayer = "village"
	MapLayerPlayer   MapLayer = "player"
)

// IsValid returns true for a known layer
func (l MapLayer) IsValid() bool {
	switch l {
	case MapLayerGuild, MapLayerTribe, MapLayerResource, MapLayerVillage, MapLayerPlayer:
		return true
	default:
		return false
	}
}

// DefaultHighlightResource is the resource highlighted when none is chosen
const DefaultHighlightResource = "Dragonhide"

// LiveMapQuery holds the layer selection and its parameter
type LiveMapQuery struct {
	Layer    MapLayer
	Resource string
	TribeID  string
	Player   string
	Viewport ViewportQuery
}

// ViewBox is an SVG viewport in normalized map units
type ViewBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// String renders the viewBox attribute value
func (v ViewBox) String() string {
	f := func(n float64) string { return strconv.FormatFloat(n, 'f', -1, 64) }
	return f(v.X) + " " + f(v.Y) + " " + f(v.Width) + " " + f(v.Height)
}

// MapPoint is a rendered position in normalized map units
type MapPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LiveMapSpot is an occupied realm spot with its layer color
type LiveMapSpot struct {
	Key       string  `json:"key"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ContractX int     `json:"contractX"`
	ContractY int     `json:"contractY"`
	Layer     int     `json:"layer"`
	Point     int     `json:"point"`
	Fill      string  `json:"fill"`
	IsWonder  bool    `json:"isWonder"`
	RealmID   int     `json:"realmId"`
	Owner     string  `json:"owner,omitempty"`
}

// LiveMapBank is a bank spot with the owner from its structure, if any
type LiveMapBank struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ContractX int     `json:"contractX"`
	ContractY int     `json:"contractY"`
	Owner     string  `json:"owner,omitempty"`
}

// LegendEntry maps a guild member to their palette color
type LegendEntry struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	Color   string `json:"color"`
}

// LiveMap is the computed live map for one layer selection
type LiveMap struct {
	Layer       MapLayer      `json:"layer"`
	BaseViewBox ViewBox       `json:"baseViewBox"`
	ViewBox     ViewBox       `json:"viewBox"`
	Center      MapPoint      `json:"center"`
	FreeSpots   []MapPoint    `json:"freeSpots"`
	Spots       []LiveMapSpot `json:"spots"`
	Banks       []LiveMapBank `json:"banks"`
	Legend      []LegendEntry `json:"legend"`
	Players     []Option      `json:"players"`
	Tribes      []Option      `json:"tribes"`
	MaxVillages int           `json:"maxVillages"`
}

// Hex kinds reported by hex detail lookups
const (
	HexOccupied  = "Occupied Spot"
	HexBank      = "Bank"
	HexPotential = "Potential Spot"
	HexCenter    = "Center"
)

// HexDetail describes a single clicked hex
type HexDetail struct {
	Type          string          `json:"type"`
	X             float64         `json:"x"`
	Y             float64         `json:"y"`
	ContractX     *int            `json:"contractX,omitempty"`
	ContractY     *int            `json:"contractY,omitempty"`
	Side          *int            `json:"side,omitempty"`
	Layer         *int            `json:"layer,omitempty"`
	Point         *int            `json:"point,omitempty"`
	OwnerAddress  string          `json:"ownerAddress,omitempty"`
	OwnerName     string          `json:"ownerName"`
	IsWonder      bool            `json:"isWonder"`
	RealmID       *int            `json:"realmId,omitempty"`
	RealmName     string          `json:"realmName,omitempty"`
	Resources     []RealmResource `json:"resources,omitempty"`
	GuardTroops   []string        `json:"guardTroops,omitempty"`
	VillagesCount *int            `json:"villagesCount,omitempty"`
	TribeID       string          `json:"tribeId,omitempty"`
	TribeName     string          `json:"tribeName,omitempty"`
}

// SettlementSpot is a settleable hex colored by its zone
type SettlementSpot struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ContractX int     `json:"contractX"`
	ContractY int     `json:"contractY"`
	Side      int     `json:"side"`
	Layer     int     `json:"layer"`
	Point     int     `json:"point"`
	ZoneID    int     `json:"zoneId,omitempty"`
	ZoneName  string  `json:"zoneName,omitempty"`
	Fill      string  `json:"fill"`
	Occupied  bool    `json:"occupied"`
}

// ZoneLegendEntry describes one settlement zone
type ZoneLegendEntry struct {
	ZoneID int    `json:"zoneId"`
	Name   string `json:"name"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

// SettlementMap is the settling phase map
type SettlementMap struct {
	ViewBox   ViewBox           `json:"viewBox"`
	Center    *MapPoint         `json:"center,omitempty"`
	MaxLayers int               `json:"maxLayers"`
	Spots     []SettlementSpot  `json:"spots"`
	Banks     []MapPoint        `json:"banks"`
	Zones     []ZoneLegendEntry `json:"zones"`
}

// ViewportQuery is an optional zoom and pan applied to a map's viewBox
type ViewportQuery struct {
	Zoom float64
	PanX float64
	PanY float64
}
