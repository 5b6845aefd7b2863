package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/eternumwasd/api/internal/catalog"
	"github.com/eternumwasd/api/internal/hexmap"
	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/pkg/starknet"
)

// MapAssets provides the parsed hex-grid files
type MapAssets interface {
	Locations() (*hexmap.Locations, error)
	Settlement() (*hexmap.Settlement, error)
}

// MemberLister lists tracked guild members
type MemberLister interface {
	List(ctx context.Context) ([]model.Member, error)
}

// WorldSource reads structures and tribes from the game indexer
type WorldSource interface {
	Structures(ctx context.Context) ([]model.Structure, error)
	Tribes(ctx context.Context) ([]model.Tribe, error)
}

// LiveMapService assembles the live world map and hex details
type LiveMapService struct {
	assets    MapAssets
	members   MemberLister
	realms    RealmLister
	world     WorldSource
	usernames UsernameResolver
	catalog   *catalog.Catalog
}

// LiveMapServiceConfig holds the collaborators of the live map service
type LiveMapServiceConfig struct {
	Assets    MapAssets
	Members   MemberLister
	Realms    RealmLister
	World     WorldSource
	Usernames UsernameResolver
	Catalog   *catalog.Catalog // Optional, defaults to the embedded catalog
}

// NewLiveMapService creates a new live map service
func NewLiveMapService(cfg LiveMapServiceConfig) *LiveMapService {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	return &LiveMapService{
		assets:    cfg.Assets,
		members:   cfg.Members,
		realms:    cfg.Realms,
		world:     cfg.World,
		usernames: cfg.Usernames,
		catalog:   cat,
	}
}

// worldSnapshot is everything a map view joins together
type worldSnapshot struct {
	locations *hexmap.Locations
	members   []model.Member

	realmStructures []model.Structure
	realmByCoord    map[string]model.Structure
	bankByCoord     map[string]model.Structure

	realms    map[int]*model.Realm
	tribes    []model.Tribe
	tribeOf   map[string]model.TribeRef
	usernames map[string]string
	colors    map[string]string
}

// snapshot loads the world concurrently. Only the map assets are required;
// any other source that fails is logged and treated as empty.
func (s *LiveMapService) snapshot(ctx context.Context) (*worldSnapshot, error) {
	locations, err := s.assets.Locations()
	if err != nil {
		return nil, err
	}

	var (
		members    []model.Member
		structures []model.Structure
		realms     []model.Realm
		tribes     []model.Tribe
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		members = degrade(gctx, "members", func() ([]model.Member, error) { return s.members.List(gctx) })
		return nil
	})
	g.Go(func() error {
		structures = degrade(gctx, "structures", func() ([]model.Structure, error) { return s.world.Structures(gctx) })
		return nil
	})
	g.Go(func() error {
		realms = degrade(gctx, "realms", func() ([]model.Realm, error) { return s.realms.List(gctx) })
		return nil
	})
	g.Go(func() error {
		tribes = degrade(gctx, "tribes", func() ([]model.Tribe, error) { return s.world.Tribes(gctx) })
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &worldSnapshot{
		locations:    locations,
		members:      members,
		realmByCoord: make(map[string]model.Structure),
		bankByCoord:  make(map[string]model.Structure),
		realms:       make(map[int]*model.Realm, len(realms)),
		tribes:       tribes,
		tribeOf:      tribeIndex(tribes),
	}

	var owners []string
	for _, st := range structures {
		key := model.CoordKey(st.CoordX(), st.CoordY())
		switch st.Category() {
		case model.CategoryRealm:
			snap.realmStructures = append(snap.realmStructures, st)
			snap.realmByCoord[key] = st
		case model.CategoryBank:
			snap.bankByCoord[key] = st
		}
		if st.Owner() != "" {
			owners = append(owners, st.Owner())
		}
	}
	for i := range realms {
		snap.realms[realms[i].RealmID] = &realms[i]
	}

	snap.usernames = s.mergeUsernames(ctx, uniqueNormalized(owners), members)
	snap.colors = memberColors(members)
	return snap, nil
}

func degrade[T any](ctx context.Context, source string, fetch func() ([]T, error)) []T {
	out, err := fetch()
	if err != nil {
		slog.WarnContext(ctx, "live map source unavailable", "source", source, "error", err)
		return nil
	}
	return out
}

// mergeUsernames takes Cartridge names and lets member usernames win
func (s *LiveMapService) mergeUsernames(ctx context.Context, addresses []string, members []model.Member) map[string]string {
	names := make(map[string]string)
	if len(addresses) > 0 && s.usernames != nil {
		found, err := s.usernames.UsernamesByAddresses(ctx, addresses)
		if err != nil {
			slog.WarnContext(ctx, "cartridge usernames unavailable", "addresses", len(addresses), "error", err)
		}
		for addr, name := range found {
			names[addr] = name
		}
	}
	for _, m := range members {
		if m.Address == "" || m.Username == "" {
			continue
		}
		names[starknet.NormalizeAddress(m.Address)] = m.Username
	}
	return names
}

// memberColors assigns palette colors by position in the member list
func memberColors(members []model.Member) map[string]string {
	colors := make(map[string]string, len(members))
	for i, m := range members {
		if m.Address == "" {
			continue
		}
		colors[starknet.NormalizeAddress(m.Address)] = hexmap.MemberColor(i)
	}
	return colors
}

func (w *worldSnapshot) maxVillages() int {
	if len(w.realmStructures) == 0 {
		return 0
	}
	highest := 0
	for _, st := range w.realmStructures {
		highest = max(highest, st.VillagesCount())
	}
	if highest == 0 {
		return 1
	}
	return highest
}

func (w *worldSnapshot) producesResource(st model.Structure, resource string) bool {
	realm := w.realms[st.RealmID()]
	if realm == nil {
		return false
	}
	return slices.Contains(realm.ResourceNames(), resource)
}

// fill picks the color of an occupied realm spot for the selected layer
func (w *worldSnapshot) fill(st model.Structure, q model.LiveMapQuery, maxVillages int) string {
	owner := starknet.NormalizeAddress(st.Owner())
	switch {
	case q.Layer == model.MapLayerGuild:
		if c, ok := w.colors[owner]; ok && owner != "" {
			return c
		}
		return hexmap.OccupiedFill
	case q.Layer == model.MapLayerTribe && q.TribeID != "":
		if t, ok := w.tribeOf[owner]; ok && t.ID == q.TribeID {
			return hexmap.TribeHighlightFill
		}
	case q.Layer == model.MapLayerResource && q.Resource != "":
		if w.producesResource(st, q.Resource) {
			return hexmap.ResourceHighlight
		}
	case q.Layer == model.MapLayerVillage:
		if v := st.VillagesCount(); v >= 1 {
			return hexmap.VillageDensityColor(v, maxVillages)
		}
	case q.Layer == model.MapLayerPlayer:
		player := starknet.NormalizeAddress(q.Player)
		if owner != "" && player != "" && owner == player {
			return hexmap.ResourceHighlight
		}
	}
	return hexmap.DefaultFill
}

// LiveMap renders the world for one layer selection
func (s *LiveMapService) LiveMap(ctx context.Context, q model.LiveMapQuery) (*model.LiveMap, error) {
	if q.Layer == "" {
		q.Layer = model.MapLayerGuild
	}
	if !q.Layer.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLayer, q.Layer)
	}
	if q.Layer == model.MapLayerResource && q.Resource == "" {
		q.Resource = model.DefaultHighlightResource
	}

	w, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	loc := w.locations
	maxVillages := w.maxVillages()

	out := &model.LiveMap{
		Layer:       q.Layer,
		FreeSpots:   []model.MapPoint{},
		Spots:       []model.LiveMapSpot{},
		Banks:       []model.LiveMapBank{},
		Legend:      []model.LegendEntry{},
		MaxVillages: maxVillages,
	}

	occupied := make(map[string]bool)
	for _, st := range w.realmStructures {
		spot, ok := loc.SpotAt(st.CoordX(), st.CoordY())
		if !ok {
			continue
		}
		occupied[spot.Key()] = true
		out.Spots = append(out.Spots, model.LiveMapSpot{
			Key:       fmt.Sprintf("occupied-%d-%d-%d-%d", spot.Layer, spot.Point, st.CoordX(), st.CoordY()),
			X:         spot.NormalizedX,
			Y:         spot.NormalizedY,
			ContractX: st.CoordX(),
			ContractY: st.CoordY(),
			Layer:     spot.Layer,
			Point:     spot.Point,
			Fill:      w.fill(st, q, maxVillages),
			IsWonder:  st.HasWonder(),
			RealmID:   st.RealmID(),
			Owner:     starknet.NormalizeAddress(st.Owner()),
		})
	}

	for _, spot := range loc.Spots {
		if occupied[spot.Key()] {
			continue
		}
		if _, isBank := loc.BankAt(spot.ContractX, spot.ContractY); isBank {
			continue
		}
		out.FreeSpots = append(out.FreeSpots, spot.MapPoint())
	}

	for _, b := range loc.Banks {
		bank := model.LiveMapBank{
			X:         b.NormalizedX,
			Y:         b.NormalizedY,
			ContractX: b.ContractX,
			ContractY: b.ContractY,
		}
		if st, ok := w.bankByCoord[b.Key()]; ok {
			bank.Owner = starknet.NormalizeAddress(st.Owner())
		}
		out.Banks = append(out.Banks, bank)
	}

	if loc.Center != nil {
		out.Center = model.MapPoint{X: loc.Center.X, Y: loc.Center.Y}
	}

	out.BaseViewBox = hexmap.BaseViewBox(loc.Points(), hexmap.LiveHexSize)
	out.ViewBox = applyViewport(out.BaseViewBox, q.Viewport)
	out.Legend = w.legend()
	out.Players = w.playerOptions()
	out.Tribes = tribeOptions(w.tribes)
	return out, nil
}

// applyViewport zooms and pans a base viewBox; a zero zoom means 1
func applyViewport(base model.ViewBox, q model.ViewportQuery) model.ViewBox {
	v := hexmap.NewViewport(base)
	if q.Zoom != 0 {
		v = v.WithZoom(q.Zoom)
	}
	return v.Pan(q.PanX, q.PanY).ViewBox()
}

// legend lists every member with an address and their palette color,
// sorted by display name
func (w *worldSnapshot) legend() []model.LegendEntry {
	entries := []model.LegendEntry{}
	if len(w.realmStructures) == 0 || len(w.members) == 0 {
		return entries
	}
	seen := make(map[string]bool)
	for _, m := range w.members {
		if m.Address == "" {
			continue
		}
		addr := starknet.NormalizeAddress(m.Address)
		color, ok := w.colors[addr]
		if !ok || seen[addr] {
			continue
		}
		seen[addr] = true
		name := w.usernames[addr]
		if name == "" {
			name = m.Username
		}
		entries = append(entries, model.LegendEntry{Address: addr, Name: name, Color: color})
	}
	c := newLabelCollator()
	sort.SliceStable(entries, func(i, j int) bool {
		return c.CompareString(orDefault(entries[i].Name, entries[i].Address), orDefault(entries[j].Name, entries[j].Address)) < 0
	})
	return entries
}

// playerOptions lists each realm owner once for the player search
func (w *worldSnapshot) playerOptions() []model.Option {
	seen := make(map[string]bool)
	opts := []model.Option{}
	for _, st := range w.realmStructures {
		addr := starknet.NormalizeAddress(st.Owner())
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		label := w.usernames[addr]
		if label == "" {
			label = truncate(addr, 6) + "..."
		}
		opts = append(opts, model.Option{Value: addr, Label: label})
	}
	sortOptions(opts)
	return opts
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// HexDetail describes the hex at contract coordinates
func (s *LiveMapService) HexDetail(ctx context.Context, x, y int) (*model.HexDetail, error) {
	w, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	loc := w.locations
	key := model.CoordKey(x, y)

	var (
		kind       string
		spot       hexmap.Spot
		realm      *model.Structure
		troopsFrom *model.Structure
		owner      string
	)
	potential, isSpot := loc.SpotAt(x, y)
	bank, isBank := loc.BankAt(x, y)
	if st, ok := w.realmByCoord[key]; ok {
		realm = &st
	}

	switch {
	case realm != nil && isSpot:
		kind, spot = model.HexOccupied, potential
		owner = starknet.NormalizeAddress(realm.Owner())
		troopsFrom = realm
	case isBank:
		kind, spot = model.HexBank, bank
		if st, ok := w.bankByCoord[key]; ok {
			owner = starknet.NormalizeAddress(st.Owner())
			troopsFrom = &st
		}
	case isSpot:
		kind, spot = model.HexPotential, potential
	case loc.IsCenter(x, y):
		return &model.HexDetail{
			Type:      model.HexCenter,
			X:         loc.Center.X,
			Y:         loc.Center.Y,
			OwnerName: "-",
		}, nil
	default:
		return nil, ErrHexNotFound
	}

	detail := &model.HexDetail{
		Type:         kind,
		X:            spot.NormalizedX,
		Y:            spot.NormalizedY,
		ContractX:    intPtr(spot.ContractX),
		ContractY:    intPtr(spot.ContractY),
		Side:         intPtr(spot.Side),
		Layer:        intPtr(spot.Layer),
		Point:        intPtr(spot.Point),
		OwnerAddress: owner,
		OwnerName:    ownerLabel(w.usernames, owner),
	}

	if realm != nil {
		detail.IsWonder = realm.HasWonder()
		detail.RealmID = intPtr(realm.RealmID())
		if info := w.realms[realm.RealmID()]; info != nil {
			detail.RealmName = info.Name
			detail.Resources = resolveResources(s.catalog, info.ResourceNames())
		} else {
			detail.RealmName = fmt.Sprintf("Realm ID: %d", realm.RealmID())
		}
	}
	if troopsFrom != nil {
		detail.GuardTroops = guardLabels(troopsFrom.GuardTroops())
	}
	if kind == model.HexOccupied {
		detail.VillagesCount = intPtr(realm.VillagesCount())
		if t, ok := w.tribeOf[owner]; ok && owner != "" {
			detail.TribeID = t.ID
			detail.TribeName = t.Name
		}
	}
	return detail, nil
}

func intPtr(v int) *int {
	return &v
}

// SettlementMap renders the settling phase map with its zones
func (s *LiveMapService) SettlementMap(q model.ViewportQuery) (*model.SettlementMap, error) {
	st, err := s.assets.Settlement()
	if err != nil {
		return nil, err
	}

	out := &model.SettlementMap{
		MaxLayers: st.MaxLayers,
		Spots:     make([]model.SettlementSpot, 0, len(st.Spots)),
		Banks:     make([]model.MapPoint, 0, len(st.Banks)),
		Zones:     make([]model.ZoneLegendEntry, 0, len(st.Zones)),
	}

	for _, spot := range st.Spots {
		if _, isBank := st.BankAt(spot.ContractX, spot.ContractY); isBank {
			continue
		}
		entry := model.SettlementSpot{
			X:         spot.NormalizedX,
			Y:         spot.NormalizedY,
			ContractX: spot.ContractX,
			ContractY: spot.ContractY,
			Side:      spot.Side,
			Layer:     spot.Layer,
			Point:     spot.Point,
			Fill:      hexmap.DefaultFill,
			Occupied:  st.IsOccupied(spot.ContractX, spot.ContractY),
		}
		if zone, ok := st.ZoneAt(spot.ContractX, spot.ContractY); ok {
			entry.ZoneID = zone.ZoneID
			entry.ZoneName = hexmap.ZoneLabel(zone.ZoneID, zone.Name)
			entry.Fill = hexmap.ZoneColor(zone.ZoneID)
		}
		if entry.Occupied {
			entry.Fill = hexmap.OccupiedFill
		}
		out.Spots = append(out.Spots, entry)
	}
	for _, b := range st.Banks {
		out.Banks = append(out.Banks, b.MapPoint())
	}
	if st.Center != nil {
		out.Center = &model.MapPoint{X: st.Center.X, Y: st.Center.Y}
	}

	zones := slices.Clone(st.Zones)
	sort.SliceStable(zones, func(i, j int) bool { return zones[i].ZoneID < zones[j].ZoneID })
	for _, z := range zones {
		out.Zones = append(out.Zones, model.ZoneLegendEntry{
			ZoneID: z.ZoneID,
			Name:   z.Name,
			Label:  strings.TrimSpace(hexmap.ZoneLabel(z.ZoneID, z.Name)),
			Color:  hexmap.ZoneColor(z.ZoneID),
		})
	}

	out.ViewBox = applyViewport(hexmap.BaseViewBox(st.Points(), hexmap.SettlementHexSize), q)
	return out, nil
}
