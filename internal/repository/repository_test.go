package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/testing/fixtures"
	"github.com/eternumwasd/api/internal/testing/testdb"
)

/*
FEATURE: Member and realm persistence
DOMAIN: Repository

AC-REPO-001: Members are listed in insertion order
AC-REPO-002: Members are found and deleted by address or username
AC-REPO-003: Elite and role updates persist
AC-REPO-004: Realm upserts keep an existing owner when none is supplied
AC-REPO-005: Owner updates only touch realms whose owner changed
AC-REPO-006: Realm names match case-insensitively
*/

func TestMemberRepository_CreateListDelete(t *testing.T) {
	tdb := testdb.New(t)
	repo := NewMemberRepository(tdb.DB)
	ctx := tdb.Ctx()

	first, err := repo.Create(ctx, model.MemberRef{Address: "0xABC"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "0xABC", first.Address, "address is stored as given")

	_, err = repo.Create(ctx, model.MemberRef{Username: "loaf"})
	require.NoError(t, err)

	members, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "0xABC", members[0].Address)
	assert.Equal(t, "loaf", members[1].Username)

	deleted, err := repo.DeleteOne(ctx, model.MemberFilter{Field: model.MemberFieldUsername, Value: "loaf"})
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteOne(ctx, model.MemberFilter{Field: model.MemberFieldAddress, Value: "0xdef"})
	require.NoError(t, err)
	assert.False(t, deleted)

	members, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestMemberRepository_Updates(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := NewMemberRepository(tdb.DB)
	ctx := tdb.Ctx()

	m := f.CreateMember(t, fixtures.WithRole(model.MemberRoleFarmer))

	found, err := repo.Find(ctx, model.MemberFilter{Field: model.MemberFieldID, Value: m.ID})
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.Role)
	assert.Equal(t, model.MemberRoleFarmer, *found.Role)

	require.NoError(t, repo.SetElite(ctx, m.ID, true))
	require.NoError(t, repo.SetRole(ctx, m.ID, nil))

	found, err = repo.Find(ctx, model.MemberFilter{Field: model.MemberFieldAddress, Value: m.Address})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsElite)
	assert.Nil(t, found.Role)

	missing, err := repo.Find(ctx, model.MemberFilter{Field: model.MemberFieldAddress, Value: "0xnobody"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRealmRepository_UpsertKeepsOwner(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := NewRealmRepository(tdb.DB)
	ctx := tdb.Ctx()

	f.CreateRealm(t, 1, fixtures.WithOwner("0xowner"), fixtures.WithResources("Wood"))

	err := repo.Upsert(ctx, []model.Realm{
		{RealmID: 1, Name: "Renamed", Attributes: []model.RealmAttribute{{TraitType: "Resource", Value: "Coal"}}},
		{RealmID: 2, Name: "Fresh", SeasonPassOwner: "0xnew"},
	})
	require.NoError(t, err)

	one, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, "Renamed", one.Name)
	assert.Equal(t, "0xowner", one.SeasonPassOwner)
	assert.Equal(t, []string{"Coal"}, one.ResourceNames())

	two, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, two)
	assert.Equal(t, "0xnew", two.SeasonPassOwner)

	none, err := repo.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRealmRepository_ApplyOwners(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := NewRealmRepository(tdb.DB)
	ctx := tdb.Ctx()

	f.CreateRealm(t, 10, fixtures.WithOwner("0xa"))
	f.CreateRealm(t, 11, fixtures.WithOwner("0xb"))

	applied, err := repo.ApplyOwners(ctx, []model.OwnerUpdate{
		{RealmID: 10, Owner: "0xa"},
		{RealmID: 11, Owner: "0xc"},
		{RealmID: 12, Owner: "0xd"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	counts, err := repo.OwnerCounts(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.OwnerCount{{Owner: "0xa", Count: 1}, {Owner: "0xc", Count: 1}}, counts)
}

func TestRealmRepository_FindByName(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := NewRealmRepository(tdb.DB)
	ctx := tdb.Ctx()

	f.CreateRealm(t, 3, fixtures.WithRealmName("Eoiw"))
	f.CreateRealm(t, 4, fixtures.WithRealmName("Other"))

	realms, err := repo.FindByName(ctx, "EOIW")
	require.NoError(t, err)
	require.Len(t, realms, 1)
	assert.Equal(t, 3, realms[0].RealmID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
