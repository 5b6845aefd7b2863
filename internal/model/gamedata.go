package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Row is one record of a SQL-over-HTTP indexer response. Column names
// keep the indexer's dotted form, e.g. "base.coord_x".
type Row map[string]interface{}

// String returns the column as a string, formatting numbers
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Int returns the column as an int; hex strings are accepted
func (r Row) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
			n, err := strconv.ParseInt(v[2:], 16, 64)
			if err != nil {
				return 0
			}
			return int(n)
		}
		n, _ := strconv.Atoi(v)
		return n
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Has reports whether the column is present and non-null
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Structure category values
const (
	CategoryRealm   = 1
	CategoryBank    = 3
	CategoryVillage = 5
)

// Structure wraps a row of the game's Structure table
type Structure struct {
	Row
}

// Category prefers base.category and falls back to category
func (s Structure) Category() int {
	if s.Has("base.category") {
		return s.Int("base.category")
	}
	return s.Int("category")
}

func (s Structure) EntityID() int        { return s.Int("entity_id") }
func (s Structure) Owner() string        { return s.String("owner") }
func (s Structure) CoordX() int          { return s.Int("base.coord_x") }
func (s Structure) CoordY() int          { return s.Int("base.coord_y") }
func (s Structure) Level() int           { return s.Int("base.level") }
func (s Structure) RealmID() int         { return s.Int("metadata.realm_id") }
func (s Structure) VillagesCount() int   { return s.Int("metadata.villages_count") }
func (s Structure) HasWonder() bool      { return s.Int("metadata.has_wonder") == 1 }
func (s Structure) TroopGuardCount() int { return s.Int("base.troop_guard_count") }

// CoordKey joins contract coordinates the way map assets key them
func CoordKey(x, y int) string {
	return strconv.Itoa(x) + "-" + strconv.Itoa(y)
}

// troopUnit is the on-chain fixed point scale of troop counts
const troopUnit = 1e9

// GuardTroop is the aggregated count of one troop type guarding a structure
type GuardTroop struct {
	Type  string  `json:"type"`
	Count float64 `json:"count"`
}

// guardSlots returns the troop_guards slot names in stable order
func (s Structure) guardSlots() []string {
	var slots []string
	for key := range s.Row {
		if !strings.HasPrefix(key, "troop_guards.") || !strings.HasSuffix(key, ".count") {
			continue
		}
		parts := strings.Split(key, ".")
		if len(parts) != 3 {
			continue
		}
		slots = append(slots, parts[1])
	}
	sort.Strings(slots)
	return slots
}

func guardCount(raw string) (float64, bool) {
	if !strings.HasPrefix(raw, "0x") {
		return 0, false
	}
	n, err := strconv.ParseUint(raw[2:], 16, 64)
	if err != nil {
		return 0, false
	}
	return float64(n) / troopUnit, true
}

// GuardTroops aggregates guard slots by category and tier. Slots missing a
// category or tier, or holding no troops, are ignored.
func (s Structure) GuardTroops() []GuardTroop {
	var troops []GuardTroop
	index := map[string]int{}

	for _, slot := range s.guardSlots() {
		prefix := "troop_guards." + slot + "."
		category := s.String(prefix + "category")
		tier := s.String(prefix + "tier")
		if category == "" || tier == "" {
			continue
		}
		count, ok := guardCount(s.String(prefix + "count"))
		if !ok || count <= 0 {
			continue
		}

		key := category + tier
		if i, seen := index[key]; seen {
			troops[i].Count += count
			continue
		}
		index[key] = len(troops)
		troops = append(troops, GuardTroop{Type: key, Count: count})
	}
	return troops
}

// TotalGuards sums every guard slot count regardless of troop type
func (s Structure) TotalGuards() float64 {
	var total float64
	for _, slot := range s.guardSlots() {
		if count, ok := guardCount(s.String("troop_guards." + slot + ".count")); ok {
			total += count
		}
	}
	return total
}

// Guard filter thresholds for raid candidates
const (
	MaxRaidableGuards   = 900
	MaxRaidableVillages = 6
)

// IsRaidable reports whether the structure is lightly defended: no guards
// or at most MaxRaidableGuards troops, and fewer than MaxRaidableVillages
// villages.
func (s Structure) IsRaidable() bool {
	lightlyGuarded := s.TroopGuardCount() == 0 || s.TotalGuards() <= MaxRaidableGuards
	return lightlyGuarded && s.VillagesCount() < MaxRaidableVillages
}

// TribeMember is one row of the guild member join
type TribeMember struct {
	Row
}

func (t TribeMember) GuildID() string  { return t.String("guild_id") }
func (t TribeMember) Address() string  { return t.String("member") }
func (t TribeMember) HexName() string  { return t.String("name") }
func (t TribeMember) MemberCount() int { return t.Int("member_count") }

// Tribe is an in-game guild with decoded name and normalized members
type Tribe struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Members     []string `json:"members"`
	MemberCount int      `json:"memberCount"`
}

// TribeRef links a player to their tribe
type TribeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Option is a value/label pair for dashboard filters
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RealmStructure is a realm structure joined with realm, owner and tribe data
type RealmStructure struct {
	EntityID        int             `json:"entityId"`
	RealmID         int             `json:"realmId"`
	RealmName       string          `json:"realmName"`
	Owner           string          `json:"owner"`
	OwnerAddress    string          `json:"ownerAddress"`
	OwnerDisplay    string          `json:"ownerDisplay"`
	Level           int             `json:"level"`
	CoordX          int             `json:"coordX"`
	CoordY          int             `json:"coordY"`
	Resources       []RealmResource `json:"resources"`
	AvailableTroops []string        `json:"availableTroops"`
	GuardTroops     []string        `json:"guardTroops"`
	TotalGuards     float64         `json:"totalGuards"`
	VillagesCount   int             `json:"villagesCount"`
	TribeID         string          `json:"tribeId,omitempty"`
	TribeName       string          `json:"tribeName,omitempty"`
}

// RealmStructureFilter narrows the realm structure listing
type RealmStructureFilter struct {
	Owner       string
	TribeID     string
	GuardFilter bool
}

// RealmStructureList is the realm structure view with its filter options
type RealmStructureList struct {
	Structures []RealmStructure `json:"structures"`
	Owners     []Option         `json:"owners"`
	Tribes     []Option         `json:"tribes"`
}
