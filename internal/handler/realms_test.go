package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/service"
	"github.com/eternumwasd/api/internal/testing/helpers"
)

func realm(id int, name, owner string, resources ...string) model.Realm {
	r := model.Realm{RealmID: id, Name: name, SeasonPassOwner: owner}
	for _, res := range resources {
		r.Attributes = append(r.Attributes, model.RealmAttribute{TraitType: model.TraitResource, Value: res})
	}
	r.Attributes = append(r.Attributes, model.RealmAttribute{TraitType: "Wonder", Value: "None"})
	return r
}

func newRealmHandler(repo *mockRealmRepo) *RealmHandler {
	return NewRealmHandler(service.NewRealmService(repo, nil))
}

func TestRealmHandler_List(t *testing.T) {
	t.Parallel()

	h := newRealmHandler(&mockRealmRepo{
		listFunc: func(ctx context.Context) ([]model.Realm, error) {
			return []model.Realm{
				realm(0, "Placeholder", ""),
				realm(7, "Uw Rohi", "0xabc", "Wood", "Coal"),
			}, nil
		},
	})

	rec := serve(h.List, helpers.NewRequest(t, http.MethodGet, "/api/realms").Build())
	helpers.AssertStatus(t, rec, http.StatusOK)

	var realms []model.RealmSummary
	helpers.DecodeResponse(t, rec, &realms)
	require.Len(t, realms, 1)
	assert.Equal(t, model.RealmSummary{ID: 7, Name: "Uw Rohi", Owner: "0xabc", Resources: []string{"Wood", "Coal"}}, realms[0])
}

func TestRealmHandler_List_ByName(t *testing.T) {
	t.Parallel()

	byName := map[string][]model.Realm{
		"uw rohi": {realm(7, "Uw Rohi", "0xabc")},
		"twins":   {realm(8, "Twins", ""), realm(9, "TWINS", "")},
	}
	h := newRealmHandler(&mockRealmRepo{
		findByNameFunc: func(ctx context.Context, name string) ([]model.Realm, error) {
			return byName[name], nil
		},
	})

	t.Run("single match is an object", func(t *testing.T) {
		t.Parallel()
		rec := serve(h.List, helpers.NewRequest(t, http.MethodGet, "/api/realms").WithQuery("name", "uw rohi").Build())
		helpers.AssertStatus(t, rec, http.StatusOK)
		helpers.AssertJSONContains(t, rec, map[string]interface{}{"id": 7, "name": "Uw Rohi"})
	})

	t.Run("several matches are an array", func(t *testing.T) {
		t.Parallel()
		rec := serve(h.List, helpers.NewRequest(t, http.MethodGet, "/api/realms").WithQuery("name", "twins").Build())
		helpers.AssertStatus(t, rec, http.StatusOK)
		var realms []model.RealmSummary
		helpers.DecodeResponse(t, rec, &realms)
		assert.Len(t, realms, 2)
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		rec := serve(h.List, helpers.NewRequest(t, http.MethodGet, "/api/realms").WithQuery("name", "Atlantis").Build())
		helpers.AssertProblem(t, rec, http.StatusNotFound, "Realm with name 'Atlantis' not found")
	})
}

func TestRealmHandler_List_StoreFailure(t *testing.T) {
	t.Parallel()

	h := newRealmHandler(&mockRealmRepo{
		listFunc: func(ctx context.Context) ([]model.Realm, error) {
			return nil, errors.New("db down")
		},
	})

	rec := serve(h.List, helpers.NewRequest(t, http.MethodGet, "/api/realms").Build())
	problem := helpers.AssertProblem(t, rec, http.StatusInternalServerError, "Internal Server Error")
	assert.Equal(t, "list realms: db down", problem.Details)
}

func TestRealmHandler_Get(t *testing.T) {
	t.Parallel()

	h := newRealmHandler(&mockRealmRepo{
		getByIDFunc: func(ctx context.Context, id int) (*model.Realm, error) {
			if id != 12 {
				return nil, nil
			}
			r := realm(12, "Obsidia", "0x1", "Obsidian", "ColdIron", "Unobtainium")
			return &r, nil
		},
	})

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		req := helpers.NewRequest(t, http.MethodGet, "/api/realms/12").WithPathValue("realmId", "12").Build()
		rec := serve(h.Get, req)
		helpers.AssertStatus(t, rec, http.StatusOK)

		var detail model.RealmDetail
		helpers.DecodeResponse(t, rec, &detail)
		assert.Equal(t, "Obsidia", detail.Name)
		assert.Len(t, detail.Resources, 2)
		assert.Equal(t, []string{"KNIGHT_T1_MATERIALS"}, detail.AvailableTroops)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		req := helpers.NewRequest(t, http.MethodGet, "/api/realms/13").WithPathValue("realmId", "13").Build()
		rec := serve(h.Get, req)
		helpers.AssertProblem(t, rec, http.StatusNotFound, "Realm with id 13 not found")
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		req := helpers.NewRequest(t, http.MethodGet, "/api/realms/abc").WithPathValue("realmId", "abc").Build()
		rec := serve(h.Get, req)
		helpers.AssertProblem(t, rec, http.StatusBadRequest, "realm id must be a positive integer")
	})
}
