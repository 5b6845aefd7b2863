package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/upstream"
	"github.com/eternumwasd/api/pkg/starknet"
)

var tracer = otel.Tracer("github.com/eternumwasd/api/internal/service")

// SeasonPassSource reads realm metadata and pass holders
type SeasonPassSource interface {
	Configured() bool
	Metadata(ctx context.Context) ([]upstream.TokenRow, error)
	Owners(ctx context.Context) ([]upstream.OwnerRow, error)
}

// TokenSource lists realm token ids from the GraphQL indexer
type TokenSource interface {
	Configured() bool
	TokenIDs(ctx context.Context) ([]int, error)
}

// OwnerResolver reads the current on-chain owner of a realm token
type OwnerResolver interface {
	OwnerOf(ctx context.Context, realmID int) (string, error)
}

// RealmStore persists refreshed realms
type RealmStore interface {
	List(ctx context.Context) ([]model.Realm, error)
	Upsert(ctx context.Context, realms []model.Realm) error
	ApplyOwners(ctx context.Context, updates []model.OwnerUpdate) (int, error)
}

// SyncPublisher receives progress events
type SyncPublisher interface {
	Publish(ev model.SyncEvent)
}

// Result messages of the refresh runs
const (
	MsgRealmsUpserted  = "Realm data upsert process finished successfully."
	MsgRealmsNoData    = "Realm data refresh process finished. No valid realm data found to upsert."
	MsgOwnersNoTokens  = "No tokens found, no updates needed."
	MsgOwnersNoData    = "No owner data obtained from RPC."
	MsgOwnersFinished  = "Owner update process finished successfully."
	ownerProgressEvery = 100
)

// SyncService runs the realm metadata and on-chain owner refreshes. Each
// job runs at most once at a time, whether triggered over HTTP or by a
// background job.
type SyncService struct {
	passes    SeasonPassSource
	tokens    TokenSource
	rpc       OwnerResolver
	realms    RealmStore
	publisher SyncPublisher

	concurrency int
	stagger     time.Duration
	rpcTimeout  time.Duration

	mu      sync.Mutex
	running map[model.SyncJob]bool
}

// SyncServiceConfig holds the collaborators and tuning of the sync service
type SyncServiceConfig struct {
	Passes    SeasonPassSource
	Tokens    TokenSource
	RPC       OwnerResolver
	Realms    RealmStore
	Publisher SyncPublisher // Optional

	RPCConcurrency int           // Parallel owner lookups, defaults to 8
	RPCStagger     time.Duration // Minimum gap between lookup starts
	RPCTimeout     time.Duration // Per-lookup deadline, 0 means none
}

// NewSyncService creates a new sync service
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	concurrency := cfg.RPCConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	return &SyncService{
		passes:      cfg.Passes,
		tokens:      cfg.Tokens,
		rpc:         cfg.RPC,
		realms:      cfg.Realms,
		publisher:   cfg.Publisher,
		concurrency: concurrency,
		stagger:     cfg.RPCStagger,
		rpcTimeout:  cfg.RPCTimeout,
		running:     make(map[model.SyncJob]bool),
	}
}

// Running reports whether a job is in flight
func (s *SyncService) Running(job model.SyncJob) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[job]
}

func (s *SyncService) begin(job model.SyncJob) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[job] {
		return nil, fmt.Errorf("%w: %s", ErrSyncInProgress, job)
	}
	s.running[job] = true
	return func() {
		s.mu.Lock()
		delete(s.running, job)
		s.mu.Unlock()
	}, nil
}

func (s *SyncService) publish(ev model.SyncEvent) {
	if s.publisher == nil {
		return
	}
	ev.At = time.Now().UTC()
	s.publisher.Publish(ev)
}

func (s *SyncService) finish(job model.SyncJob, result interface{}, err error) {
	if err != nil {
		s.publish(model.SyncEvent{Job: job, Phase: model.SyncPhaseFailed, Error: err.Error()})
		return
	}
	s.publish(model.SyncEvent{Job: job, Phase: model.SyncPhaseFinished, Result: result})
}

// ===== Realm refresh =====

type tokenMetadata struct {
	Name       string                 `json:"name"`
	Image      string                 `json:"image"`
	Attributes []model.RealmAttribute `json:"attributes"`
}

// RefreshRealms reads realm metadata and season pass holders, merges them
// by decimal token id and upserts one record per realm.
func (s *SyncService) RefreshRealms(ctx context.Context) (result *model.RealmRefreshResult, err error) {
	if s.passes == nil || !s.passes.Configured() {
		return nil, ErrSyncNotConfigured
	}
	done, err := s.begin(model.SyncJobRealms)
	if err != nil {
		return nil, err
	}
	defer done()

	ctx, span := tracer.Start(ctx, "sync.realms")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	s.publish(model.SyncEvent{Job: model.SyncJobRealms, Phase: model.SyncPhaseStarted})
	defer func() { s.finish(model.SyncJobRealms, result, err) }()

	metadata, err := s.passes.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	owners, err := s.passes.Owners(ctx)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "realm refresh fetched", "tokens", len(metadata), "owners", len(owners))

	realms, ownersFound := mergeRealms(ctx, metadata, owners)
	result = &model.RealmRefreshResult{
		Message:       MsgRealmsNoData,
		RealmsFetched: len(metadata),
		OwnersFetched: len(owners),
		OwnersFound:   ownersFound,
		OpsPrepared:   len(realms),
	}
	span.SetAttributes(
		attribute.Int("realms.fetched", len(metadata)),
		attribute.Int("realms.prepared", len(realms)),
	)
	if len(realms) == 0 {
		return result, nil
	}

	existing, err := s.realms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored realms: %w", err)
	}
	summary := summarizeWrite(existing, realms)
	if err := s.realms.Upsert(ctx, realms); err != nil {
		return nil, fmt.Errorf("upsert realms: %w", err)
	}

	result.Message = MsgRealmsUpserted
	result.RealmWriteSummary = summary
	slog.InfoContext(ctx, "realm refresh finished",
		"prepared", len(realms),
		"owners_found", ownersFound,
		"upserted", summary.UpsertedCount,
		"modified", summary.ModifiedCount,
	)
	return result, nil
}

// mergeRealms builds realm records from metadata rows. Rows with empty or
// invalid metadata, no name, or an unparseable token id are skipped. The
// owner is the first holder row with the same decimal token id and a
// non-empty address.
func mergeRealms(ctx context.Context, metadata []upstream.TokenRow, owners []upstream.OwnerRow) ([]model.Realm, int) {
	holders := make(map[uint64]string, len(owners))
	for _, o := range owners {
		id, err := starknet.ParseFelt(o.TokenID)
		if err != nil || strings.TrimSpace(o.AccountAddress) == "" {
			continue
		}
		if _, seen := holders[id]; !seen {
			holders[id] = o.AccountAddress
		}
	}

	realms := make([]model.Realm, 0, len(metadata))
	found := 0
	for _, row := range metadata {
		if strings.TrimSpace(row.Metadata) == "" {
			slog.WarnContext(ctx, "skipping realm token without metadata", "token_id", row.TokenID)
			continue
		}
		var meta tokenMetadata
		if err := json.Unmarshal([]byte(row.Metadata), &meta); err != nil {
			slog.WarnContext(ctx, "skipping realm token with invalid metadata", "token_id", row.TokenID, "error", err)
			continue
		}
		id, err := starknet.ParseFelt(row.TokenID)
		if err != nil || meta.Name == "" {
			slog.WarnContext(ctx, "skipping incomplete realm token", "token_id", row.TokenID)
			continue
		}

		realm := model.Realm{
			RealmID:    int(id),
			Name:       meta.Name,
			Image:      meta.Image,
			Attributes: meta.Attributes,
		}
		if owner, ok := holders[id]; ok {
			realm.SeasonPassOwner = owner
			found++
		}
		realms = append(realms, realm)
	}
	return realms, found
}

// summarizeWrite counts how an upsert batch lands on the stored realms
func summarizeWrite(existing, incoming []model.Realm) *model.RealmWriteSummary {
	stored := make(map[int]model.Realm, len(existing))
	for _, r := range existing {
		stored[r.RealmID] = r
	}
	summary := &model.RealmWriteSummary{}
	for _, r := range incoming {
		prev, ok := stored[r.RealmID]
		if !ok {
			summary.UpsertedCount++
			stored[r.RealmID] = r
			continue
		}
		summary.MatchedCount++
		if realmChanged(prev, r) {
			summary.ModifiedCount++
		}
	}
	return summary
}

func realmChanged(prev, next model.Realm) bool {
	if prev.Name != next.Name || prev.Image != next.Image {
		return true
	}
	if next.SeasonPassOwner != "" && next.SeasonPassOwner != prev.SeasonPassOwner {
		return true
	}
	return !slices.EqualFunc(prev.Attributes, next.Attributes, func(a, b model.RealmAttribute) bool {
		return a.TraitType == b.TraitType && fmt.Sprint(a.Value) == fmt.Sprint(b.Value)
	})
}

// ===== Owner refresh =====

// RefreshOwners asks the realm contract for the owner of every indexed
// token and stores the owners it finds. Lookups run in parallel, started
// no faster than one per stagger interval.
func (s *SyncService) RefreshOwners(ctx context.Context) (result *model.OwnerRefreshResult, err error) {
	if s.tokens == nil || !s.tokens.Configured() {
		return nil, ErrSyncNotConfigured
	}
	done, err := s.begin(model.SyncJobOwners)
	if err != nil {
		return nil, err
	}
	defer done()

	ctx, span := tracer.Start(ctx, "sync.owners")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	s.publish(model.SyncEvent{Job: model.SyncJobOwners, Phase: model.SyncPhaseStarted})
	defer func() { s.finish(model.SyncJobOwners, result, err) }()

	ids, err := s.tokens.TokenIDs(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch token ids", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTokenFetch, err)
	}
	if len(ids) == 0 {
		return &model.OwnerRefreshResult{Message: MsgOwnersNoTokens}, nil
	}
	span.SetAttributes(attribute.Int("tokens", len(ids)))

	owners, rpcErrors, err := s.lookupOwners(ctx, ids)
	if err != nil {
		return nil, err
	}

	updates := make([]model.OwnerUpdate, 0, len(ids))
	for i, id := range ids {
		if owners[i] != "" {
			updates = append(updates, model.OwnerUpdate{RealmID: id, Owner: owners[i]})
		}
	}
	counts := &model.OwnerRefreshCounts{
		TokensProcessed: len(ids),
		OwnersFound:     len(updates),
		RPCErrors:       rpcErrors,
	}
	slog.InfoContext(ctx, "owner lookups complete",
		"tokens", len(ids),
		"owners_found", counts.OwnersFound,
		"rpc_errors", rpcErrors,
	)
	if len(updates) == 0 {
		return &model.OwnerRefreshResult{
			Message:            MsgOwnersNoData,
			OwnerRefreshCounts: &model.OwnerRefreshCounts{TokensProcessed: len(ids)},
		}, nil
	}

	applied, err := s.realms.ApplyOwners(ctx, updates)
	if err != nil {
		slog.ErrorContext(ctx, "failed to apply owners", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrOwnerWrite, err)
	}
	counts.UpdatesApplied = applied
	return &model.OwnerRefreshResult{Message: MsgOwnersFinished, OwnerRefreshCounts: counts}, nil
}

// lookupOwners resolves owners in parallel and returns them aligned with
// ids. A failed lookup leaves an empty owner and counts as an rpc error.
func (s *SyncService) lookupOwners(ctx context.Context, ids []int) ([]string, int, error) {
	limit := rate.Inf
	if s.stagger > 0 {
		limit = rate.Every(s.stagger)
	}
	limiter := rate.NewLimiter(limit, 1)

	owners := make([]string, len(ids))
	var (
		failures  atomic.Int64
		processed atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		if err := limiter.Wait(gctx); err != nil {
			break
		}
		g.Go(func() error {
			callCtx := gctx
			if s.rpcTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, s.rpcTimeout)
				defer cancel()
			}
			owner, err := s.rpc.OwnerOf(callCtx, id)
			if err != nil {
				if gctx.Err() == nil {
					slog.WarnContext(gctx, "owner lookup failed", "realm_id", id, "error", err)
				}
				failures.Add(1)
			} else {
				owners[i] = owner
			}
			if n := processed.Add(1); n%ownerProgressEvery == 0 {
				s.publish(model.SyncEvent{
					Job:       model.SyncJobOwners,
					Phase:     model.SyncPhaseProgress,
					Processed: int(n),
					Total:     len(ids),
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return owners, int(failures.Load()), nil
}
