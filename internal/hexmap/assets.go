package hexmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/eternumwasd/api/internal/model"
)

// Asset file names inside the map directory
const (
	LocationsFile  = "eternum_all_locations.json"
	SettlementFile = "eternum_settlement_map_data.json"
)

// ErrAssetUnavailable is returned when a map file has not been loaded
var ErrAssetUnavailable = errors.New("map asset unavailable")

// Spot is a settleable hex. Normalized coordinates are render units;
// contract coordinates are what structures report on-chain.
type Spot struct {
	NormalizedX float64 `json:"normalizedX"`
	NormalizedY float64 `json:"normalizedY"`
	ContractX   int     `json:"originalContractX"`
	ContractY   int     `json:"originalContractY"`
	Side        int     `json:"side"`
	Layer       int     `json:"layer"`
	Point       int     `json:"point"`
}

// Key returns the contract coordinate key of the spot
func (s Spot) Key() string {
	return model.CoordKey(s.ContractX, s.ContractY)
}

// MapPoint returns the render position of the spot
func (s Spot) MapPoint() model.MapPoint {
	return model.MapPoint{X: s.NormalizedX, Y: s.NormalizedY}
}

// Center is the middle tile of the map
type Center struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ContractX *int    `json:"originalContractX,omitempty"`
	ContractY *int    `json:"originalContractY,omitempty"`
}

// Zone groups settlement spots under a numbered zone
type Zone struct {
	ZoneID    int    `json:"zoneId"`
	Name      string `json:"name"`
	Locations []Spot `json:"locations"`
}

// Locations is the full world grid used by the live map
type Locations struct {
	MaxLayers int     `json:"maxLayers"`
	Center    *Center `json:"center"`
	Banks     []Spot  `json:"banks"`
	Spots     []Spot  `json:"allPotentialSpots"`

	spotIndex map[string]int
	bankIndex map[string]int
}

// Settlement is the settling phase map with zones and taken spots
type Settlement struct {
	Locations
	Occupied map[string]Spot `json:"occupiedContractSpots"`
	Zones    []Zone          `json:"zones"`

	zoneIndex   map[string]int
	occupiedSet map[string]bool
}

// ParseLocations decodes and indexes a locations document
func ParseLocations(data []byte) (*Locations, error) {
	var l Locations
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode %s: %w", LocationsFile, err)
	}
	l.buildIndex()
	return &l, nil
}

// ParseSettlement decodes and indexes a settlement document
func ParseSettlement(data []byte) (*Settlement, error) {
	var s Settlement
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", SettlementFile, err)
	}
	s.buildIndex()
	s.zoneIndex = make(map[string]int)
	for i, z := range s.Zones {
		for _, loc := range z.Locations {
			if _, dup := s.zoneIndex[loc.Key()]; !dup {
				s.zoneIndex[loc.Key()] = i
			}
		}
	}
	s.occupiedSet = make(map[string]bool, len(s.Occupied))
	for _, spot := range s.Occupied {
		s.occupiedSet[spot.Key()] = true
	}
	return &s, nil
}

func readLocations(path string) (*Locations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLocations(data)
}

func readSettlement(path string) (*Settlement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSettlement(data)
}

func (l *Locations) buildIndex() {
	l.spotIndex = make(map[string]int, len(l.Spots))
	for i, s := range l.Spots {
		if _, dup := l.spotIndex[s.Key()]; !dup {
			l.spotIndex[s.Key()] = i
		}
	}
	l.bankIndex = make(map[string]int, len(l.Banks))
	for i, b := range l.Banks {
		if _, dup := l.bankIndex[b.Key()]; !dup {
			l.bankIndex[b.Key()] = i
		}
	}
}

// SpotAt finds the potential spot at contract coordinates
func (l *Locations) SpotAt(x, y int) (Spot, bool) {
	i, ok := l.spotIndex[model.CoordKey(x, y)]
	if !ok {
		return Spot{}, false
	}
	return l.Spots[i], true
}

// BankAt finds the bank at contract coordinates
func (l *Locations) BankAt(x, y int) (Spot, bool) {
	i, ok := l.bankIndex[model.CoordKey(x, y)]
	if !ok {
		return Spot{}, false
	}
	return l.Banks[i], true
}

// IsCenter reports whether contract coordinates address the center tile
func (l *Locations) IsCenter(x, y int) bool {
	c := l.Center
	if c == nil || c.ContractX == nil || c.ContractY == nil {
		return false
	}
	return *c.ContractX == x && *c.ContractY == y
}

// Points returns every potential spot, bank and the center as render
// positions, the set the base viewBox must enclose.
func (l *Locations) Points() []model.MapPoint {
	points := make([]model.MapPoint, 0, len(l.Spots)+len(l.Banks)+1)
	for _, s := range l.Spots {
		points = append(points, s.MapPoint())
	}
	for _, b := range l.Banks {
		points = append(points, b.MapPoint())
	}
	if l.Center != nil {
		points = append(points, model.MapPoint{X: l.Center.X, Y: l.Center.Y})
	}
	return points
}

// ZoneAt returns the zone containing contract coordinates
func (s *Settlement) ZoneAt(x, y int) (Zone, bool) {
	i, ok := s.zoneIndex[model.CoordKey(x, y)]
	if !ok {
		return Zone{}, false
	}
	return s.Zones[i], true
}

// IsOccupied reports whether a spot was taken during settling
func (s *Settlement) IsOccupied(x, y int) bool {
	return s.occupiedSet[model.CoordKey(x, y)]
}
