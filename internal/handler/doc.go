// Package handler provides HTTP request handlers for the WASD dashboard API.
//
// Handlers are grouped by concern (members, realms, game data, identity,
// sync, maps). Each handler struct wraps one service and is registered on a
// net/http ServeMux through Handlers.Register.
//
// # Response Format
//
// Successful responses are plain JSON documents shaped the way the dashboard
// pages consume them. Game data proxies pass the indexer body through
// unchanged via WriteRaw.
//
// Failures are RFC 9457 Problem Details. The "error" extension member carries
// the human readable reason and "details" carries upstream context such as
// the body of a failed indexer response.
//
// # Error Mapping
//
// MapServiceError maps service and upstream sentinels to problems. Routes
// whose upstream failures need specific wording (game data proxies and the
// Cartridge lookups) use their own mappers that fall back to it.
//
// # Example Usage
//
//	handlers := &handler.Handlers{
//	    Members: handler.NewMemberHandler(memberService),
//	    // ...
//	}
//	mux := http.NewServeMux()
//	handlers.Register(mux)
package handler
