package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/eternumwasd/api/internal/catalog"
	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/upstream"
	"github.com/eternumwasd/api/pkg/starknet"
)

// SQLSource runs fixed statements against the game data SQL indexer
type SQLSource interface {
	Raw(ctx context.Context, statement string) (json.RawMessage, error)
	Rows(ctx context.Context, statement string) ([]model.Row, error)
}

// RealmLister lists stored realms
type RealmLister interface {
	List(ctx context.Context) ([]model.Realm, error)
}

// UsernameResolver maps addresses to Cartridge usernames
type UsernameResolver interface {
	UsernamesByAddresses(ctx context.Context, addresses []string) (map[string]string, error)
}

// GameDataService proxies and reshapes on-chain game state
type GameDataService struct {
	sql       SQLSource
	realms    RealmLister
	usernames UsernameResolver
	catalog   *catalog.Catalog
}

// GameDataServiceConfig holds the collaborators of the game data service
type GameDataServiceConfig struct {
	SQL       SQLSource
	Realms    RealmLister
	Usernames UsernameResolver
	Catalog   *catalog.Catalog // Optional, defaults to the embedded catalog
}

// NewGameDataService creates a new game data service
func NewGameDataService(cfg GameDataServiceConfig) *GameDataService {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	return &GameDataService{
		sql:       cfg.SQL,
		realms:    cfg.Realms,
		usernames: cfg.Usernames,
		catalog:   cat,
	}
}

// RawTribes returns the guild member join as the indexer sent it
func (s *GameDataService) RawTribes(ctx context.Context) (json.RawMessage, error) {
	return s.sql.Raw(ctx, upstream.TribesQuery)
}

// RawArmies returns explorer troops as the indexer sent them
func (s *GameDataService) RawArmies(ctx context.Context) (json.RawMessage, error) {
	return s.sql.Raw(ctx, upstream.ArmiesQuery)
}

// RawStructures returns every structure as the indexer sent it
func (s *GameDataService) RawStructures(ctx context.Context) (json.RawMessage, error) {
	return s.sql.Raw(ctx, upstream.StructuresQuery)
}

// RawStructureResources returns structure resource balances as sent
func (s *GameDataService) RawStructureResources(ctx context.Context) (json.RawMessage, error) {
	return s.sql.Raw(ctx, upstream.ResourcesQuery)
}

// Structures returns every structure row
func (s *GameDataService) Structures(ctx context.Context) ([]model.Structure, error) {
	rows, err := s.sql.Rows(ctx, upstream.StructuresQuery)
	if err != nil {
		return nil, err
	}
	out := make([]model.Structure, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Structure{Row: r})
	}
	return out, nil
}

// Tribes groups the guild member join by guild, sorted by name
func (s *GameDataService) Tribes(ctx context.Context) ([]model.Tribe, error) {
	rows, err := s.sql.Rows(ctx, upstream.TribesQuery)
	if err != nil {
		return nil, err
	}
	tribes := groupTribes(rows)
	sort.SliceStable(tribes, func(i, j int) bool {
		a, b := strings.ToLower(tribes[i].Name), strings.ToLower(tribes[j].Name)
		if a != b {
			return a < b
		}
		return tribes[i].ID < tribes[j].ID
	})
	return tribes, nil
}

// groupTribes collects member rows per guild id. The first row names the
// guild; member addresses are normalized and deduplicated and the member
// count is the largest one reported.
func groupTribes(rows []model.Row) []model.Tribe {
	index := make(map[string]int)
	var tribes []model.Tribe
	for _, r := range rows {
		row := model.TribeMember{Row: r}
		addr := starknet.NormalizeAddress(row.Address())
		if addr == "" {
			continue
		}
		i, ok := index[row.GuildID()]
		if !ok {
			i = len(tribes)
			index[row.GuildID()] = i
			tribes = append(tribes, model.Tribe{
				ID:      row.GuildID(),
				Name:    starknet.HexToASCII(row.HexName()),
				Members: []string{},
			})
		}
		t := &tribes[i]
		if !slices.Contains(t.Members, addr) {
			t.Members = append(t.Members, addr)
		}
		if c := row.MemberCount(); c > t.MemberCount {
			t.MemberCount = c
		}
	}
	if tribes == nil {
		tribes = []model.Tribe{}
	}
	return tribes
}

// tribeIndex maps each normalized member address to its tribe
func tribeIndex(tribes []model.Tribe) map[string]model.TribeRef {
	out := make(map[string]model.TribeRef)
	for _, t := range tribes {
		for _, m := range t.Members {
			out[m] = model.TribeRef{ID: t.ID, Name: t.Name}
		}
	}
	return out
}

func tribeOptions(tribes []model.Tribe) []model.Option {
	opts := make([]model.Option, 0, len(tribes))
	for _, t := range tribes {
		label := t.Name
		if label == "" {
			label = "Unnamed Tribe"
		}
		opts = append(opts, model.Option{Value: t.ID, Label: label})
	}
	sortOptions(opts)
	return opts
}

// RealmStructures lists realm structures that have a stored realm, joined
// with owner names and tribes, narrowed by the filter.
func (s *GameDataService) RealmStructures(ctx context.Context, filter model.RealmStructureFilter) (*model.RealmStructureList, error) {
	structures, err := s.Structures(ctx)
	if err != nil {
		return nil, err
	}
	realms, err := s.realms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list realms: %w", err)
	}

	tribes, err := s.Tribes(ctx)
	if err != nil {
		slog.WarnContext(ctx, "tribes unavailable for realm structures", "error", err)
		tribes = nil
	}
	tribeOf := tribeIndex(tribes)

	var realmStructures []model.Structure
	var owners []string
	for _, st := range structures {
		if st.Category() != model.CategoryRealm {
			continue
		}
		realmStructures = append(realmStructures, st)
		owners = append(owners, st.Owner())
	}
	usernames := s.lookupUsernames(ctx, uniqueNormalized(owners))

	realmByID := make(map[int]*model.Realm, len(realms))
	for i := range realms {
		realmByID[realms[i].RealmID] = &realms[i]
	}

	ownerFilter := starknet.NormalizeAddress(filter.Owner)
	out := make([]model.RealmStructure, 0, len(realmStructures))
	for _, st := range realmStructures {
		if filter.GuardFilter && !st.IsRaidable() {
			continue
		}
		realm := realmByID[st.RealmID()]
		if realm == nil || realm.Name == "" {
			continue
		}

		owner := starknet.NormalizeAddress(st.Owner())
		if ownerFilter != "" && owner != ownerFilter {
			continue
		}
		tribe, inTribe := tribeOf[owner]
		if filter.TribeID != "" && (!inTribe || tribe.ID != filter.TribeID) {
			continue
		}

		display := usernames[owner]
		if display == "" {
			display = "N/A"
			if st.Owner() != "" {
				display = starknet.ShortAddress(st.Owner())
			}
		}

		names := realm.ResourceNames()
		guards := guardLabels(st.GuardTroops())
		if guards == nil {
			guards = []string{}
		}
		out = append(out, model.RealmStructure{
			EntityID:        st.EntityID(),
			RealmID:         st.RealmID(),
			RealmName:       realm.Name,
			Owner:           st.Owner(),
			OwnerAddress:    owner,
			OwnerDisplay:    display,
			Level:           st.Level(),
			CoordX:          st.CoordX(),
			CoordY:          st.CoordY(),
			Resources:       resolveResources(s.catalog, names),
			AvailableTroops: s.catalog.AvailableTroops(names),
			GuardTroops:     guards,
			TotalGuards:     st.TotalGuards(),
			VillagesCount:   st.VillagesCount(),
			TribeID:         tribe.ID,
			TribeName:       tribe.Name,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		// Structures without a tribe name come after every named tribe
		if (a.TribeName == "") != (b.TribeName == "") {
			return b.TribeName == ""
		}
		ta, tb := strings.ToLower(a.TribeName), strings.ToLower(b.TribeName)
		if ta != tb {
			return ta < tb
		}
		oa, ob := strings.ToLower(a.OwnerDisplay), strings.ToLower(b.OwnerDisplay)
		if oa != ob {
			return oa < ob
		}
		return a.EntityID < b.EntityID
	})

	return &model.RealmStructureList{
		Structures: out,
		Owners:     ownerOptions(realmStructures, usernames),
		Tribes:     tribeOptions(tribes),
	}, nil
}

// ownerOptions lists each realm owner once, labelled by username or short
// address
func ownerOptions(structures []model.Structure, usernames map[string]string) []model.Option {
	seen := make(map[string]bool)
	opts := make([]model.Option, 0)
	for _, st := range structures {
		addr := starknet.NormalizeAddress(st.Owner())
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		opts = append(opts, model.Option{Value: addr, Label: ownerLabel(usernames, addr)})
	}
	sortOptions(opts)
	return opts
}

// lookupUsernames resolves Cartridge names, degrading to none on failure
func (s *GameDataService) lookupUsernames(ctx context.Context, addresses []string) map[string]string {
	if len(addresses) == 0 || s.usernames == nil {
		return map[string]string{}
	}
	names, err := s.usernames.UsernamesByAddresses(ctx, addresses)
	if err != nil {
		slog.WarnContext(ctx, "cartridge usernames unavailable", "addresses", len(addresses), "error", err)
		return map[string]string{}
	}
	return names
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
