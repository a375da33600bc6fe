package repositories

import (
	"context"

	"ledger/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error
	ListByHoldingID(ctx context.Context, holdingID int64) ([]models.Transaction, error)
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

// Create appends one immutable ledger entry. There is no update or delete
// counterpart on purpose; corrections are compensating entries.
func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error {
	query := `
		INSERT INTO transactions
			(holding_id, transaction_type, quantity_before, quantity_after, quantity_change, source, metadata)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6, $7)
		RETURNING id, created_at, updated_at`

	args := []interface{}{
		t.HoldingID, t.TransactionType,
		t.QuantityBefore, t.QuantityAfter, t.QuantityChange,
		t.Source, t.Metadata,
	}

	var err error
	if tx == nil {
		// If no transaction is provided, create a new one
		tx, err = r.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback(ctx)
			}
		}()

		err = tx.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	// Use the provided transaction
	return tx.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// ListByHoldingID returns the full ledger for a holding in replay order:
// created_at ascending with id as the tie-break.
func (r *transactionRepo) ListByHoldingID(ctx context.Context, holdingID int64) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, holding_id, transaction_type,
			quantity_before::text, quantity_after::text, quantity_change::text,
			source, metadata, created_at, updated_at
		FROM transactions
		WHERE holding_id = $1
		ORDER BY created_at ASC, id ASC`,
		holdingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.ID, &t.HoldingID, &t.TransactionType,
			&t.QuantityBefore, &t.QuantityAfter, &t.QuantityChange,
			&t.Source, &t.Metadata, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
