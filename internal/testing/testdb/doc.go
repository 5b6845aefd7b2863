// Package testdb provides isolated SurrealDB namespaces for repository tests.
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewMemberRepository(tdb.DB)
//	    ...
//	}
//
// Each call gets a fresh namespace with the migrations directory applied and
// is removed on cleanup. Tests are skipped when SurrealDB is not reachable
// (configure with TEST_DB_HOST, TEST_DB_PORT, TEST_DB_USER, TEST_DB_PASSWORD)
// or when running with -short.
package testdb
