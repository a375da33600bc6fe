package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledger/src/models"
	"ledger/src/repositories"
	"ledger/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnector struct {
	name     string
	balances []models.Balance
	err      error
}

func (f *fakeConnector) Name() string { return f.name }

func (f *fakeConnector) GetBalances(context.Context, string) ([]models.Balance, error) {
	return f.balances, f.err
}

type fakeLocker struct {
	held map[string]bool
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.held[key] {
		return false, nil
	}
	return true, nil
}

func (l *fakeLocker) Unlock(context.Context, string) error { return nil }

type fakeSyncLogs struct {
	lastDate *time.Time
	marked   []string
	pruned   int
}

func (f *fakeSyncLogs) MarkAccountForDate(_ context.Context, accountID, source string, _ time.Time) error {
	f.marked = append(f.marked, accountID+"/"+source)
	return nil
}

func (f *fakeSyncLogs) GetLastSyncDate(context.Context, string, string) (*time.Time, error) {
	return f.lastDate, nil
}

func (f *fakeSyncLogs) GetSyncedDates(_ context.Context, _, _ string, start, _ time.Time) ([]time.Time, error) {
	return []time.Time{start}, nil
}

func (f *fakeSyncLogs) CleanupSyncLogs(context.Context, string, time.Time, time.Time) error {
	f.pruned++
	return nil
}

func TestSyncAccountFansInAllConnectors(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryLedgerRepository()
	reconciler := services.NewReconcilerService(store, 5)

	sync := services.NewSyncService(reconciler, nil, []services.ConnectorClient{
		&fakeConnector{name: "binance", balances: []models.Balance{{Asset: "BTC", Quantity: "0.5"}}},
		&fakeConnector{name: "ethereum", balances: []models.Balance{{Asset: "ETH", Quantity: "2"}}},
	}, nil, 0, 0)

	reports := sync.SyncAccount(ctx, "acc-1")
	require.Len(t, reports, 2)
	// Sources are processed in deterministic name order.
	assert.Equal(t, "binance", reports[0].Source)
	assert.Equal(t, "ethereum", reports[1].Source)
	for _, report := range reports {
		require.Len(t, report.Results, 1)
		assert.Equal(t, services.SyncApplied, report.Results[0].Status)
	}
}

func TestSyncAccountIsolatesConnectorFailures(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryLedgerRepository()
	reconciler := services.NewReconcilerService(store, 5)

	sync := services.NewSyncService(reconciler, nil, []services.ConnectorClient{
		&fakeConnector{name: "broken", err: errors.New("connection refused")},
		&fakeConnector{name: "working", balances: []models.Balance{{Asset: "ETH", Quantity: "1"}}},
	}, nil, 0, 0)

	reports := sync.SyncAccount(ctx, "acc-1")
	require.Len(t, reports, 2)
	assert.Contains(t, reports[0].Error, "connection refused")
	assert.Empty(t, reports[0].Results)
	require.Len(t, reports[1].Results, 1)
	assert.Equal(t, services.SyncApplied, reports[1].Results[0].Status)
}

func TestSyncAccountSkipsInFlightSources(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryLedgerRepository()
	reconciler := services.NewReconcilerService(store, 5)

	locker := &fakeLocker{held: map[string]bool{"sync:acc-1:binance": true}}
	sync := services.NewSyncService(reconciler, nil, []services.ConnectorClient{
		&fakeConnector{name: "binance", balances: []models.Balance{{Asset: "BTC", Quantity: "1"}}},
	}, locker, time.Minute, 0)

	reports := sync.SyncAccount(ctx, "acc-1")
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Skipped)
	assert.Empty(t, reports[0].Results)

	// Nothing was written for the skipped pass.
	holding, err := store.GetOrCreateHolding(ctx, "acc-1", "BTC")
	require.NoError(t, err)
	assert.True(t, holding.Quantity.IsZero())
}

func TestSyncAccountHonorsFreshnessWindow(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryLedgerRepository()
	reconciler := services.NewReconcilerService(store, 5)

	recent := time.Now().UTC().Add(-time.Minute)
	logs := &fakeSyncLogs{lastDate: &recent}
	sync := services.NewSyncService(reconciler, logs, []services.ConnectorClient{
		&fakeConnector{name: "binance", balances: []models.Balance{{Asset: "BTC", Quantity: "1"}}},
	}, nil, 0, time.Hour)

	reports := sync.SyncAccount(ctx, "acc-1")
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Skipped)
	assert.Empty(t, reports[0].Results)
	assert.Empty(t, logs.marked)

	// A pass older than the window runs and records a fresh log row.
	stale := time.Now().UTC().Add(-2 * time.Hour)
	logs.lastDate = &stale
	reports = sync.SyncAccount(ctx, "acc-1")
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Skipped)
	require.Len(t, reports[0].Results, 1)
	assert.Equal(t, services.SyncApplied, reports[0].Results[0].Status)
	assert.Equal(t, []string{"acc-1/binance"}, logs.marked)
}

func TestSyncHistoryAndPruneDelegateToSyncLogs(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryLedgerRepository()
	reconciler := services.NewReconcilerService(store, 5)

	logs := &fakeSyncLogs{}
	sync := services.NewSyncService(reconciler, logs, nil, nil, 0, 0)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	dates, err := sync.SyncHistory(ctx, "acc-1", "binance", start, end)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.True(t, dates[0].Equal(start))

	require.NoError(t, sync.PruneSyncLogs(ctx, "acc-1", start, end))
	assert.Equal(t, 1, logs.pruned)
}
