// Package fixtures provides test data factories backed by a real database.
//
//	f := fixtures.New(tdb.DB)
//	m := f.CreateMember(t, fixtures.WithRole(model.MemberRoleFarmer))
//	r := f.CreateRealm(t, 42, fixtures.WithOwner(m.Address), fixtures.WithResources("Coal", "Wood"))
//
// Members get a random address unless one is supplied.
package fixtures
