package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eternumwasd/api/internal/config"
	"github.com/eternumwasd/api/internal/database"
	"github.com/eternumwasd/api/internal/jobs"
	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/repository"
	"github.com/eternumwasd/api/internal/service"
	"github.com/eternumwasd/api/internal/upstream"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a realm refresh once, using the server's environment",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "realms",
			Short: "Refresh realm metadata and owners from the season pass indexer",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSync(cmd, func(svc *service.SyncService) *jobs.SyncJob {
					return jobs.NewRealmSyncJob(svc, 0)
				})
			},
		},
		&cobra.Command{
			Use:   "owners",
			Short: "Refresh realm owners from Starknet RPC",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSync(cmd, func(svc *service.SyncService) *jobs.SyncJob {
					return jobs.NewOwnerSyncJob(svc, 0)
				})
			},
		},
	)
	return cmd
}

// runSync wires the sync service against the configured database and
// upstreams, runs the job once and prints its progress events as JSON lines.
func runSync(cmd *cobra.Command, build func(*service.SyncService) *jobs.SyncJob) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	httpClient := upstream.NewClient(cfg.Upstream.RequestTimeout, cfg.Upstream.UserAgent)
	sources := upstream.NewSyncSources(httpClient, cfg.Upstream, cfg.Sync.TokenLimit)
	svc := service.NewSyncService(service.SyncServiceConfig{
		Passes:         sources.Passes,
		Tokens:         sources.Tokens,
		RPC:            sources.RPC,
		Realms:         repository.NewRealmRepository(db),
		Publisher:      &eventPrinter{enc: json.NewEncoder(cmd.OutOrStdout())},
		RPCConcurrency: cfg.Sync.RPCConcurrency,
		RPCStagger:     cfg.Sync.RPCStagger,
		RPCTimeout:     cfg.Sync.RPCTimeout,
	})

	return build(svc).RunOnce(ctx)
}

// eventPrinter writes each sync event as one JSON line
type eventPrinter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (p *eventPrinter) Publish(ev model.SyncEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.enc.Encode(ev)
}
