package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"ledger/src/models"
)

// memoryLedgerRepo is an in-memory LedgerRepository with the same
// compare-and-set semantics as the Postgres implementation. It backs service
// tests and works as a lightweight storage backend for local tooling.
type memoryLedgerRepo struct {
	mu           sync.Mutex
	holdings     map[int64]*models.Holding
	byKey        map[string]int64
	transactions map[int64][]models.Transaction
	nextHolding  int64
	nextEntry    int64
}

func NewMemoryLedgerRepository() LedgerRepository {
	return &memoryLedgerRepo{
		holdings:     map[int64]*models.Holding{},
		byKey:        map[string]int64{},
		transactions: map[int64][]models.Transaction{},
	}
}

func holdingKey(accountID, assetSymbol string) string {
	return accountID + "/" + assetSymbol
}

func (r *memoryLedgerRepo) GetOrCreateHolding(_ context.Context, accountID, assetSymbol string) (*models.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byKey[holdingKey(accountID, assetSymbol)]; ok {
		h := *r.holdings[id]
		return &h, nil
	}

	r.nextHolding++
	now := time.Now().UTC()
	h := &models.Holding{
		ID:          r.nextHolding,
		AccountID:   accountID,
		AssetSymbol: assetSymbol,
		Quantity:    models.ZeroQuantity(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.holdings[h.ID] = h
	r.byKey[holdingKey(accountID, assetSymbol)] = h.ID

	cp := *h
	return &cp, nil
}

func (r *memoryLedgerRepo) GetHolding(_ context.Context, accountID, assetSymbol string) (*models.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byKey[holdingKey(accountID, assetSymbol)]
	if !ok {
		return nil, ErrHoldingNotFound
	}
	cp := *r.holdings[id]
	return &cp, nil
}

func (r *memoryLedgerRepo) GetHoldingByID(_ context.Context, id int64) (*models.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.holdings[id]
	if !ok {
		return nil, ErrHoldingNotFound
	}
	cp := *h
	return &cp, nil
}

func (r *memoryLedgerRepo) ListHoldingsByAccount(_ context.Context, accountID string) ([]models.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Holding
	for _, h := range r.holdings {
		if h.AccountID == accountID {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetSymbol < out[j].AssetSymbol })
	return out, nil
}

func (r *memoryLedgerRepo) CommitChange(_ context.Context, holding *models.Holding, entry *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.holdings[holding.ID]
	if !ok {
		return ErrHoldingNotFound
	}
	if stored.Version != holding.Version {
		return ErrVersionConflict
	}

	now := time.Now().UTC()
	stored.Quantity = entry.QuantityAfter
	stored.Version++
	stored.UpdatedAt = now

	r.nextEntry++
	entry.ID = r.nextEntry
	entry.HoldingID = stored.ID
	entry.CreatedAt = now
	entry.UpdatedAt = now
	r.transactions[stored.ID] = append(r.transactions[stored.ID], *entry)

	holding.Quantity = stored.Quantity
	holding.Version = stored.Version
	holding.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *memoryLedgerRepo) ListTransactionsByHolding(_ context.Context, holdingID int64) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.transactions[holdingID]
	out := make([]models.Transaction, len(entries))
	copy(out, entries)
	// Replay order: created_at ascending, id as the deterministic tie-break.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
