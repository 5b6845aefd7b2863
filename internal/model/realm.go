package model

import (
	"strconv"
	"time"
)

// RealmAttribute is one trait from the season pass token metadata
type RealmAttribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// Realm is the stored season pass record, keyed by numeric realm id
type Realm struct {
	RealmID         int              `json:"realmId"`
	Name            string           `json:"name"`
	Image           string           `json:"image,omitempty"`
	Attributes      []RealmAttribute `json:"attributes"`
	SeasonPassOwner string           `json:"seasonPassOwner,omitempty"`
	UpdatedOn       time.Time        `json:"updated_on,omitempty"`
}

// TraitResource is the trait_type carrying a produced resource
const TraitResource = "Resource"

// ResourceNames returns the values of all Resource attributes as strings
func (r *Realm) ResourceNames() []string {
	names := make([]string, 0, len(r.Attributes))
	for _, attr := range r.Attributes {
		if attr.TraitType != TraitResource || attr.Value == nil {
			continue
		}
		names = append(names, attributeString(attr.Value))
	}
	return names
}

func attributeString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RealmSummary is the list representation served to the dashboard
type RealmSummary struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Owner     string   `json:"owner,omitempty"`
	Resources []string `json:"resources"`
}

// RealmResource is a produced resource resolved against the catalog
type RealmResource struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Display string `json:"display"`
	Rarity  string `json:"rarity"`
}

// RealmDetail enriches a realm with catalog data and buildable troop bands
type RealmDetail struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Owner           string          `json:"owner,omitempty"`
	Image           string          `json:"image,omitempty"`
	Resources       []RealmResource `json:"resources"`
	AvailableTroops []string        `json:"availableTroops"`
}

// OwnerCount is the number of realms held by one owner address
type OwnerCount struct {
	Owner string
	Count int
}
