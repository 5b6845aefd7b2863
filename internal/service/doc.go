// Package service implements the business logic layer for the WASD dashboard API.
//
// The service package contains all domain logic, validation rules, and
// orchestration of repository operations. Services are the primary
// abstraction between HTTP handlers and data access.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts its dependencies, or a config struct when there are many
//   - Methods implement business operations with proper validation
//   - Errors are returned as sentinel errors or wrapped errors for context
//   - Context is passed through for cancellation and request-scoped values
//
// # Repository Interfaces
//
// Services define their own repository interfaces, allowing:
//
//   - Easy mocking for unit tests
//   - Decoupling from specific database implementations
//   - Clear contracts for data access requirements
//
// # Error Handling
//
// Services return domain-specific errors defined as package-level variables:
//
//	var (
//	    ErrMemberNotFound = errors.New("member not found")
//	    ErrRealmNotFound  = errors.New("realm not found")
//	)
//
// # Example Usage
//
//	maps := NewLiveMapService(LiveMapServiceConfig{
//	    Assets:    store,
//	    Members:   memberRepository,
//	    Realms:    realmRepository,
//	    World:     gameData,
//	    Usernames: identity,
//	})
//	view, err := maps.LiveMap(ctx, model.LiveMapQuery{Layer: model.MapLayerGuild})
package service
