package upstream

import "github.com/eternumwasd/api/internal/config"

// SyncSources are the clients behind the realm and owner refreshes
type SyncSources struct {
	Passes *SeasonPassClient
	Tokens *TokenIndexer
	RPC    *StarknetRPC
}

// NewSyncSources builds the refresh clients from configuration. The token
// indexer lists ids of the realm contract, the same contract owner_of is
// called on.
func NewSyncSources(client *Client, cfg config.UpstreamConfig, tokenLimit int) SyncSources {
	return SyncSources{
		Passes: NewSeasonPassClient(
			NewSQLClient(client, cfg.SeasonPassesSQL),
			cfg.SeasonPassesContract,
			cfg.RealmMetadataContract,
		),
		Tokens: NewTokenIndexer(client, cfg.SeasonPassesGQL, cfg.RealmContract, tokenLimit),
		RPC:    NewStarknetRPC(client, cfg.StarknetRPCURLs, cfg.RealmContract),
	}
}
