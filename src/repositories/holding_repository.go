package repositories

import (
	"context"
	"errors"

	"ledger/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HoldingRepository interface {
	GetByAccountAndAsset(ctx context.Context, accountID, assetSymbol string) (*models.Holding, error)
	GetByID(ctx context.Context, id int64) (*models.Holding, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.Holding, error)
	Create(ctx context.Context, h *models.Holding, tx pgx.Tx) error
	UpdateQuantity(ctx context.Context, h *models.Holding, newQuantity models.Quantity, tx pgx.Tx) error
}

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

const holdingColumns = `id, account_id, asset_symbol, quantity::text, version, created_at, updated_at`

func scanHolding(row pgx.Row, h *models.Holding) error {
	return row.Scan(&h.ID, &h.AccountID, &h.AssetSymbol, &h.Quantity, &h.Version, &h.CreatedAt, &h.UpdatedAt)
}

func (r *holdingRepo) GetByAccountAndAsset(ctx context.Context, accountID, assetSymbol string) (*models.Holding, error) {
	var h models.Holding
	err := scanHolding(r.db.QueryRow(ctx,
		`SELECT `+holdingColumns+`
		FROM holdings
		WHERE account_id = $1 AND asset_symbol = $2`,
		accountID, assetSymbol), &h)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrHoldingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *holdingRepo) GetByID(ctx context.Context, id int64) (*models.Holding, error) {
	var h models.Holding
	err := scanHolding(r.db.QueryRow(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE id = $1`, id), &h)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrHoldingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *holdingRepo) ListByAccount(ctx context.Context, accountID string) ([]models.Holding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+holdingColumns+`
		FROM holdings
		WHERE account_id = $1
		ORDER BY asset_symbol ASC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := scanHolding(rows, &h); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// Create inserts a new holding with quantity zero unless one already exists
// for (account_id, asset_symbol). On a lost race the existing row is loaded
// into h instead.
func (r *holdingRepo) Create(ctx context.Context, h *models.Holding, tx pgx.Tx) error {
	query := `
		INSERT INTO holdings (account_id, asset_symbol, quantity)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (account_id, asset_symbol) DO NOTHING
		RETURNING id, version, quantity::text, created_at, updated_at`

	var row pgx.Row
	if tx == nil {
		row = r.db.QueryRow(ctx, query, h.AccountID, h.AssetSymbol, h.Quantity)
	} else {
		row = tx.QueryRow(ctx, query, h.AccountID, h.AssetSymbol, h.Quantity)
	}

	err := row.Scan(&h.ID, &h.Version, &h.Quantity, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Someone else created it between our lookup and this insert.
		existing, err := r.GetByAccountAndAsset(ctx, h.AccountID, h.AssetSymbol)
		if err != nil {
			return err
		}
		*h = *existing
		return nil
	}
	return err
}

// UpdateQuantity is the compare-and-set step: it only succeeds when the row
// still carries the version h was read at, bumping it by one. A missed match
// is reported as ErrVersionConflict and the caller must re-read and retry.
func (r *holdingRepo) UpdateQuantity(ctx context.Context, h *models.Holding, newQuantity models.Quantity, tx pgx.Tx) error {
	query := `
		UPDATE holdings
		SET quantity = $1::numeric, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3
		RETURNING version, quantity::text, updated_at`

	var row pgx.Row
	if tx == nil {
		row = r.db.QueryRow(ctx, query, newQuantity, h.ID, h.Version)
	} else {
		row = tx.QueryRow(ctx, query, newQuantity, h.ID, h.Version)
	}

	err := row.Scan(&h.Version, &h.Quantity, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrVersionConflict
	}
	return err
}
