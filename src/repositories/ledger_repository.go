package repositories

import (
	"context"
	"errors"

	"ledger/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrVersionConflict signals that a compare-and-set lost against another
	// writer; the caller re-reads the holding and retries.
	ErrVersionConflict = errors.New("holding version conflict")

	ErrHoldingNotFound = errors.New("holding not found")
)

// LedgerRepository is the storage contract the reconciler and verifier work
// against: holding lookup/creation, the atomic commit of one balance change,
// and ordered ledger reads.
type LedgerRepository interface {
	GetOrCreateHolding(ctx context.Context, accountID, assetSymbol string) (*models.Holding, error)
	// GetHolding resolves an existing holding without creating one; it returns
	// ErrHoldingNotFound when the account never held the asset.
	GetHolding(ctx context.Context, accountID, assetSymbol string) (*models.Holding, error)
	GetHoldingByID(ctx context.Context, id int64) (*models.Holding, error)
	ListHoldingsByAccount(ctx context.Context, accountID string) ([]models.Holding, error)

	// CommitChange applies one balance change atomically: the holding row is
	// compare-and-set to entry.QuantityAfter and the entry is appended, both
	// in the same database transaction. On success the holding struct carries
	// the new quantity and version. Returns ErrVersionConflict when another
	// writer advanced the holding since it was read.
	CommitChange(ctx context.Context, holding *models.Holding, entry *models.Transaction) error

	ListTransactionsByHolding(ctx context.Context, holdingID int64) ([]models.Transaction, error)
}

type ledgerRepo struct {
	db           *pgxpool.Pool
	holdings     HoldingRepository
	transactions TransactionRepository
}

func NewLedgerRepository(db *pgxpool.Pool) LedgerRepository {
	return &ledgerRepo{
		db:           db,
		holdings:     NewHoldingRepository(db),
		transactions: NewTransactionRepository(db),
	}
}

func (r *ledgerRepo) GetOrCreateHolding(ctx context.Context, accountID, assetSymbol string) (*models.Holding, error) {
	h, err := r.holdings.GetByAccountAndAsset(ctx, accountID, assetSymbol)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, ErrHoldingNotFound) {
		return nil, err
	}

	created := &models.Holding{AccountID: accountID, AssetSymbol: assetSymbol}
	if err := r.holdings.Create(ctx, created, nil); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *ledgerRepo) GetHolding(ctx context.Context, accountID, assetSymbol string) (*models.Holding, error) {
	return r.holdings.GetByAccountAndAsset(ctx, accountID, assetSymbol)
}

func (r *ledgerRepo) GetHoldingByID(ctx context.Context, id int64) (*models.Holding, error) {
	return r.holdings.GetByID(ctx, id)
}

func (r *ledgerRepo) ListHoldingsByAccount(ctx context.Context, accountID string) ([]models.Holding, error) {
	return r.holdings.ListByAccount(ctx, accountID)
}

func (r *ledgerRepo) CommitChange(ctx context.Context, holding *models.Holding, entry *models.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = r.holdings.UpdateQuantity(ctx, holding, entry.QuantityAfter, tx); err != nil {
		return err
	}

	entry.HoldingID = holding.ID
	if err = r.transactions.Create(ctx, entry, tx); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	return err
}

func (r *ledgerRepo) ListTransactionsByHolding(ctx context.Context, holdingID int64) ([]models.Transaction, error) {
	return r.transactions.ListByHoldingID(ctx, holdingID)
}
