package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/service"
	"github.com/eternumwasd/api/internal/testing/helpers"
	"github.com/eternumwasd/api/internal/upstream"
)

func newGameDataHandler(baseURL string, realms *mockRealmRepo) *GameDataHandler {
	if realms == nil {
		realms = &mockRealmRepo{}
	}
	return NewGameDataHandler(service.NewGameDataService(service.GameDataServiceConfig{
		SQL:    upstream.NewSQLClient(newTestClient(), baseURL),
		Realms: realms,
	}))
}

// ============================================================================
// Proxies
// ============================================================================

func TestGameDataHandler_Proxy_PassesBodyThrough(t *testing.T) {
	t.Parallel()

	const body = `[{"entity_id":1,"base.category":1}]`
	up := helpers.NewUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
	h := newGameDataHandler(up.URL, nil)

	rec := serve(h.Structures, helpers.NewRequest(t, http.MethodGet, "/api/eternum-structures").Build())
	helpers.AssertStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, body, rec.Body.String())

	reqs := up.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, upstream.StructuresQuery, reqs[0].URL.Query().Get("query"))
}

func TestGameDataHandler_Proxy_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		handler     func(h *GameDataHandler) http.HandlerFunc
		upstream    http.HandlerFunc
		unset       bool
		wantStatus  int
		wantMsg     string
		wantDetails string
	}{
		{
			name:    "upstream status is mirrored",
			handler: func(h *GameDataHandler) http.HandlerFunc { return h.Tribes },
			upstream: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("maintenance"))
			},
			wantStatus:  http.StatusServiceUnavailable,
			wantMsg:     "Failed to fetch tribes data: 503 Service Unavailable",
			wantDetails: "maintenance",
		},
		{
			name:    "non JSON body",
			handler: func(h *GameDataHandler) http.HandlerFunc { return h.Armies },
			upstream: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html>login</html>"))
			},
			wantStatus:  http.StatusBadGateway,
			wantMsg:     "Game SQL API did not return JSON.",
			wantDetails: "<html>login</html>",
		},
		{
			name:       "indexer not configured",
			handler:    func(h *GameDataHandler) http.HandlerFunc { return h.StructureResources },
			unset:      true,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Server configuration error: Game data URL not set.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			baseURL := ""
			if !tt.unset {
				baseURL = helpers.NewUpstream(t, tt.upstream).URL
			}
			h := newGameDataHandler(baseURL, nil)

			rec := serve(tt.handler(h), helpers.NewRequest(t, http.MethodGet, "/api/x").Build())
			problem := helpers.AssertProblem(t, rec, tt.wantStatus, tt.wantMsg)
			if tt.wantDetails != "" {
				assert.Equal(t, tt.wantDetails, problem.Details)
			}
		})
	}
}

// ============================================================================
// Parsed Views
// ============================================================================

func gameIndexer(t *testing.T) *helpers.Upstream {
	t.Helper()
	return helpers.NewUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		switch {
		case strings.Contains(q, "GuildMember"):
			helpers.WriteJSON(w, http.StatusOK, []map[string]interface{}{
				{"guild_id": "0x9", "member": "0x0ABC", "name": "0x416c706861", "member_count": 2},
				{"guild_id": "0x9", "member": "0xdef", "name": "0x416c706861", "member_count": 3},
			})
		case strings.Contains(q, "Structure"):
			helpers.WriteJSON(w, http.StatusOK, []map[string]interface{}{
				{"entity_id": 11, "base.category": 1, "owner": "0xabc", "metadata.realm_id": 7, "metadata.villages_count": 1},
				{"entity_id": 12, "base.category": 1, "owner": "0x123", "metadata.realm_id": 8, "metadata.villages_count": 7},
				{"entity_id": 13, "base.category": 5, "owner": "0xabc"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestGameDataHandler_TribeSummary(t *testing.T) {
	t.Parallel()

	h := newGameDataHandler(gameIndexer(t).URL, nil)

	rec := serve(h.TribeSummary, helpers.NewRequest(t, http.MethodGet, "/api/tribes/summary").Build())
	helpers.AssertStatus(t, rec, http.StatusOK)

	var tribes []model.Tribe
	helpers.DecodeResponse(t, rec, &tribes)
	require.Len(t, tribes, 1)
	assert.Equal(t, "Alpha", tribes[0].Name)
	assert.Equal(t, 3, tribes[0].MemberCount)
	assert.ElementsMatch(t, []string{"0xabc", "0xdef"}, tribes[0].Members)
}

func TestGameDataHandler_RealmStructures(t *testing.T) {
	t.Parallel()

	realms := &mockRealmRepo{
		listFunc: func(ctx context.Context) ([]model.Realm, error) {
			return []model.Realm{realm(7, "Uw Rohi", ""), realm(8, "Twins", "")}, nil
		},
	}
	h := newGameDataHandler(gameIndexer(t).URL, realms)

	t.Run("all realms", func(t *testing.T) {
		t.Parallel()
		rec := serve(h.RealmStructures, helpers.NewRequest(t, http.MethodGet, "/api/realm-structures").Build())
		helpers.AssertStatus(t, rec, http.StatusOK)

		var list model.RealmStructureList
		helpers.DecodeResponse(t, rec, &list)
		require.Len(t, list.Structures, 2)
		assert.Equal(t, "Alpha", list.Structures[0].TribeName)
		assert.Equal(t, "", list.Structures[1].TribeName)
		assert.Len(t, list.Owners, 2)
		assert.Len(t, list.Tribes, 1)
	})

	t.Run("guard filter drops village heavy realms", func(t *testing.T) {
		t.Parallel()
		req := helpers.NewRequest(t, http.MethodGet, "/api/realm-structures").WithQuery("guardFilter", "1").Build()
		rec := serve(h.RealmStructures, req)
		helpers.AssertStatus(t, rec, http.StatusOK)

		var list model.RealmStructureList
		helpers.DecodeResponse(t, rec, &list)
		require.Len(t, list.Structures, 1)
		assert.Equal(t, 7, list.Structures[0].RealmID)
	})

	t.Run("tribe filter", func(t *testing.T) {
		t.Parallel()
		req := helpers.NewRequest(t, http.MethodGet, "/api/realm-structures").WithQuery("tribeId", "0x9").Build()
		rec := serve(h.RealmStructures, req)

		var list model.RealmStructureList
		helpers.DecodeResponse(t, rec, &list)
		require.Len(t, list.Structures, 1)
		assert.Equal(t, "0xabc", list.Structures[0].OwnerAddress)
	})
}
