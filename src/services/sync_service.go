package services

import (
	"context"
	"sort"
	"time"

	"ledger/src/clients/connector"
	"ledger/src/repositories"
	"ledger/src/utils"

	"github.com/sirupsen/logrus"
)

// ConnectorClient is the boundary through which balances enter the core.
type ConnectorClient = connector.Client

// SyncLocker deduplicates concurrent sync passes for the same account/source.
// It is an optimization against redundant work; per-holding correctness is
// carried by the store's compare-and-set, not by this lock.
type SyncLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// SourceSyncResult is the outcome of one connector's pass over an account.
type SourceSyncResult struct {
	Source  string            `json:"source"`
	Skipped bool              `json:"skipped,omitempty"`
	Error   string            `json:"error,omitempty"`
	Results []AssetSyncResult `json:"results,omitempty"`
}

type SyncServiceI interface {
	SyncAccount(ctx context.Context, accountID string) []SourceSyncResult
	SyncHistory(ctx context.Context, accountID, source string, start, end time.Time) ([]time.Time, error)
	PruneSyncLogs(ctx context.Context, accountID string, start, end time.Time) error
}

// SyncService pulls normalized balances from every registered connector and
// hands them to the reconciler, recording a sync log row per completed pass.
type SyncService struct {
	reconciler ReconcilerServiceI
	syncLogs   repositories.SyncLogRepository
	connectors map[string]ConnectorClient
	locker     SyncLocker
	lockTTL    time.Duration
	freshness  time.Duration
}

func NewSyncService(reconciler ReconcilerServiceI, syncLogs repositories.SyncLogRepository,
	connectors []ConnectorClient, locker SyncLocker, lockTTL, freshness time.Duration) *SyncService {

	byName := make(map[string]ConnectorClient, len(connectors))
	for _, c := range connectors {
		byName[c.Name()] = c
	}
	if lockTTL == 0 {
		lockTTL = 5 * time.Minute
	}
	return &SyncService{
		reconciler: reconciler,
		syncLogs:   syncLogs,
		connectors: byName,
		locker:     locker,
		lockTTL:    lockTTL,
		freshness:  freshness,
	}
}

// SyncAccount runs one reconciliation pass per connector. A pass that cannot
// acquire the in-flight lock is skipped, not failed; a connector error fails
// only that source. A caller timeout abandons remaining sources but whatever
// already committed stays committed.
func (s *SyncService) SyncAccount(ctx context.Context, accountID string) []SourceSyncResult {
	logger := utils.LoggerFromContext(ctx).WithField("account_id", accountID)

	names := make([]string, 0, len(s.connectors))
	for name := range s.connectors {
		names = append(names, name)
	}
	sort.Strings(names)

	reports := make([]SourceSyncResult, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			reports = append(reports, SourceSyncResult{Source: name, Error: ctx.Err().Error()})
			continue
		}
		reports = append(reports, s.syncSource(ctx, logger, accountID, name))
	}
	return reports
}

func (s *SyncService) syncSource(ctx context.Context, logger *logrus.Entry, accountID, name string) SourceSyncResult {
	client := s.connectors[name]

	if s.syncLogs != nil && s.freshness > 0 {
		last, err := s.syncLogs.GetLastSyncDate(ctx, accountID, name)
		if err != nil {
			logger.WithField("source", name).WithError(err).Warn("failed to read last sync date")
		} else if last != nil && time.Since(*last) < s.freshness {
			logger.WithField("source", name).Info("synced within freshness window, skipping")
			return SourceSyncResult{Source: name, Skipped: true}
		}
	}

	if s.locker != nil {
		key := "sync:" + accountID + ":" + name
		acquired, err := s.locker.TryLock(ctx, key, s.lockTTL)
		if err != nil {
			return SourceSyncResult{Source: name, Error: err.Error()}
		}
		if !acquired {
			logger.WithField("source", name).Info("sync already in flight, skipping")
			return SourceSyncResult{Source: name, Skipped: true, Error: ErrSyncInFlight.Error()}
		}
		defer func() {
			if err := s.locker.Unlock(ctx, key); err != nil {
				logger.WithField("source", name).WithError(err).Warn("failed to release sync lock")
			}
		}()
	}

	balances, err := client.GetBalances(ctx, accountID)
	if err != nil {
		logger.WithField("source", name).WithError(err).Error("connector fetch failed")
		return SourceSyncResult{Source: name, Error: err.Error()}
	}

	results := s.reconciler.ApplySync(ctx, accountID, name, balances)

	if s.syncLogs != nil {
		if err := s.syncLogs.MarkAccountForDate(ctx, accountID, name, time.Now().UTC()); err != nil {
			logger.WithField("source", name).WithError(err).Warn("failed to record sync log")
		}
	}
	return SourceSyncResult{Source: name, Results: results}
}

// SyncHistory lists the recorded sync passes for an account/source within
// [start, end).
func (s *SyncService) SyncHistory(ctx context.Context, accountID, source string, start, end time.Time) ([]time.Time, error) {
	if s.syncLogs == nil {
		return nil, nil
	}
	return s.syncLogs.GetSyncedDates(ctx, accountID, source, start, end)
}

// PruneSyncLogs drops the account's sync log rows within [start, end]. The
// ledger itself is never touched; only the dedup/freshness bookkeeping goes.
func (s *SyncService) PruneSyncLogs(ctx context.Context, accountID string, start, end time.Time) error {
	if s.syncLogs == nil {
		return nil
	}
	return s.syncLogs.CleanupSyncLogs(ctx, accountID, start, end)
}
