// Package helpers provides test utilities shared by handler, service and
// upstream tests.
//
// # Requests
//
//	req := helpers.NewRequest(t, http.MethodPut, "/api/members/roles").
//	    WithBody(map[string]interface{}{"roles": []interface{}{}}).
//	    Build()
//
// # Problem Responses
//
//	helpers.AssertProblem(t, rec, http.StatusBadRequest, "Username is required")
//
// # Upstream Fakes
//
// NewUpstream starts an httptest server that records requests, for tests of
// the SQL, GraphQL and JSON-RPC clients:
//
//	up := helpers.NewUpstream(t, func(w http.ResponseWriter, r *http.Request) {
//	    helpers.WriteJSON(w, http.StatusOK, []interface{}{})
//	})
package helpers
