package handler

import "net/http"

// Handlers groups every HTTP handler served by the API
type Handlers struct {
	Health   *HealthHandler
	Members  *MemberHandler
	Realms   *RealmHandler
	GameData *GameDataHandler
	Identity *IdentityHandler
	Sync     *SyncHandler
	LiveMap  *LiveMapHandler
}

// Register mounts all routes on mux
func (h *Handlers) Register(mux *http.ServeMux) {
	// Health check endpoint
	mux.HandleFunc("GET /health", h.Health.Health)

	// Member endpoints
	mux.HandleFunc("GET /api/members", h.Members.List)
	mux.HandleFunc("POST /api/members", h.Members.Add)
	mux.HandleFunc("DELETE /api/members", h.Members.Delete)
	mux.HandleFunc("PUT /api/members/update-elite", h.Members.UpdateElite)
	mux.HandleFunc("PUT /api/members/roles", h.Members.UpdateRoles)
	mux.HandleFunc("GET /api/members-with-realm-counts", h.Members.WithRealmCounts)

	// Realm endpoints
	mux.HandleFunc("GET /api/realms", h.Realms.List)
	mux.HandleFunc("GET /api/realms/{realmId}", h.Realms.Get)

	// Game data endpoints
	mux.HandleFunc("GET /api/tribes", h.GameData.Tribes)
	mux.HandleFunc("GET /api/tribes/summary", h.GameData.TribeSummary)
	mux.HandleFunc("GET /api/armies", h.GameData.Armies)
	mux.HandleFunc("GET /api/eternum-structures", h.GameData.Structures)
	mux.HandleFunc("GET /api/structures-resources", h.GameData.StructureResources)
	mux.HandleFunc("GET /api/realm-structures", h.GameData.RealmStructures)

	// Cartridge identity endpoints
	mux.HandleFunc("GET /api/cartridge-address", h.Identity.Address)
	mux.HandleFunc("POST /api/cartridge-usernames", h.Identity.Usernames)

	// Sync endpoints
	mux.HandleFunc("POST /api/refresh-realms-data", h.Sync.RefreshRealms)
	mux.HandleFunc("GET /api/refresh-realms-data", h.Sync.RealmsInfo)
	mux.HandleFunc("POST /api/update-owners", h.Sync.RefreshOwners)
	mux.HandleFunc("GET /api/update-owners", h.Sync.OwnersInfo)
	mux.HandleFunc("GET /api/sync/status", h.Sync.Status)
	mux.HandleFunc("GET /api/sync/events", h.Sync.Events)

	// Map endpoints
	mux.HandleFunc("GET /api/live-map", h.LiveMap.LiveMap)
	mux.HandleFunc("GET /api/live-map/hex", h.LiveMap.Hex)
	mux.HandleFunc("GET /api/settlement-map", h.LiveMap.Settlement)
}
