package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/eternumwasd/api/internal/catalog"
	"github.com/eternumwasd/api/internal/model"
)

// RealmRepository defines the interface for realm storage reads
type RealmRepository interface {
	List(ctx context.Context) ([]model.Realm, error)
	GetByID(ctx context.Context, realmID int) (*model.Realm, error)
	FindByName(ctx context.Context, name string) ([]model.Realm, error)
}

// RealmService serves stored season pass realms
type RealmService struct {
	repo    RealmRepository
	catalog *catalog.Catalog
}

// NewRealmService creates a new realm service
func NewRealmService(repo RealmRepository, cat *catalog.Catalog) *RealmService {
	if cat == nil {
		cat = catalog.Default()
	}
	return &RealmService{repo: repo, catalog: cat}
}

// List returns every realm with a positive id in summary form
func (s *RealmService) List(ctx context.Context) ([]model.RealmSummary, error) {
	realms, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list realms: %w", err)
	}
	return summarize(realms), nil
}

// FindByName returns realms whose name matches ignoring case
func (s *RealmService) FindByName(ctx context.Context, name string) ([]model.RealmSummary, error) {
	realms, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find realm %q: %w", name, err)
	}
	matched := summarize(realms)
	if len(matched) == 0 {
		return nil, ErrRealmNotFound
	}
	return matched, nil
}

// Detail returns one realm with catalog resources and buildable troops
func (s *RealmService) Detail(ctx context.Context, realmID int) (*model.RealmDetail, error) {
	realm, err := s.repo.GetByID(ctx, realmID)
	if err != nil {
		return nil, fmt.Errorf("get realm %d: %w", realmID, err)
	}
	if realm == nil || realm.RealmID <= 0 {
		return nil, ErrRealmNotFound
	}

	names := realm.ResourceNames()
	return &model.RealmDetail{
		ID:              realm.RealmID,
		Name:            realm.Name,
		Owner:           realm.SeasonPassOwner,
		Image:           realm.Image,
		Resources:       resolveResources(s.catalog, names),
		AvailableTroops: s.catalog.AvailableTroops(names),
	}, nil
}

func summarize(realms []model.Realm) []model.RealmSummary {
	out := make([]model.RealmSummary, 0, len(realms))
	for i := range realms {
		r := &realms[i]
		if r.RealmID <= 0 {
			continue
		}
		out = append(out, model.RealmSummary{
			ID:        r.RealmID,
			Name:      r.Name,
			Owner:     r.SeasonPassOwner,
			Resources: r.ResourceNames(),
		})
	}
	return out
}

// resolveResources maps resource names onto catalog entries, dropping
// names the catalog does not know, ordered by id then name
func resolveResources(cat *catalog.Catalog, names []string) []model.RealmResource {
	out := make([]model.RealmResource, 0, len(names))
	for _, n := range names {
		r, ok := cat.ByName(n)
		if !ok {
			continue
		}
		out = append(out, model.RealmResource{
			ID:      r.ID,
			Name:    r.Name,
			Display: r.Display,
			Rarity:  string(r.Rarity),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}
