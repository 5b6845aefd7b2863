package model

import "time"

// RealmWriteSummary reports the outcome of a realm upsert batch
type RealmWriteSummary struct {
	UpsertedCount int `json:"upsertedCount"`
	ModifiedCount int `json:"modifiedCount"`
	MatchedCount  int `json:"matchedCount"`
}

// RealmRefreshResult is returned by the realm metadata refresh
type RealmRefreshResult struct {
	Message       string `json:"message"`
	RealmsFetched int    `json:"realmsFetched"`
	OwnersFetched int    `json:"ownersFetched"`
	OwnersFound   int    `json:"ownersFound"`
	OpsPrepared   int    `json:"opsPrepared"`
	*RealmWriteSummary
}

// OwnerRefreshCounts are the tallies of an owner refresh run
type OwnerRefreshCounts struct {
	TokensProcessed int `json:"tokensProcessed"`
	OwnersFound     int `json:"ownersFound"`
	RPCErrors       int `json:"rpcErrors"`
	UpdatesApplied  int `json:"updatesApplied"`
}

// OwnerRefreshResult is returned by the on-chain owner refresh
type OwnerRefreshResult struct {
	Message string `json:"message"`
	*OwnerRefreshCounts
}

// OwnerUpdate is one resolved owner for a realm
type OwnerUpdate struct {
	RealmID int
	Owner   string
}

// SyncJob names a refresh job
type SyncJob string

const (
	SyncJobRealms SyncJob = "realms"
	SyncJobOwners SyncJob = "owners"
)

// SyncPhase is the lifecycle stage reported by a sync event
type SyncPhase string

const (
	SyncPhaseStarted  SyncPhase = "started"
	SyncPhaseProgress SyncPhase = "progress"
	SyncPhaseFinished SyncPhase = "finished"
	SyncPhaseFailed   SyncPhase = "failed"
)

// SyncEvent is published while a refresh runs
type SyncEvent struct {
	Job       SyncJob     `json:"job"`
	Phase     SyncPhase   `json:"phase"`
	Processed int         `json:"processed,omitempty"`
	Total     int         `json:"total,omitempty"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	At        time.Time   `json:"at"`
}
