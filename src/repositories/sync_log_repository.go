package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SyncLogRepository interface {
	MarkAccountForDate(ctx context.Context, accountID, source string, syncDate time.Time) error
	GetLastSyncDate(ctx context.Context, accountID, source string) (*time.Time, error)
	GetSyncedDates(ctx context.Context, accountID, source string, startDate, endDate time.Time) ([]time.Time, error)
	CleanupSyncLogs(ctx context.Context, accountID string, startDate, endDate time.Time) error
}

type syncLogRepo struct {
	DB *pgxpool.Pool
}

func NewSyncLogRepository(db *pgxpool.Pool) SyncLogRepository {
	return &syncLogRepo{DB: db}
}

func (r *syncLogRepo) MarkAccountForDate(ctx context.Context, accountID, source string, syncDate time.Time) error {
	query := `
		INSERT INTO sync_logs (account_id, source, sync_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, source, sync_date) DO NOTHING`

	_, err := r.DB.Exec(ctx, query, accountID, source, syncDate)
	if err != nil {
		return err
	}
	return nil
}

func (r *syncLogRepo) GetLastSyncDate(ctx context.Context, accountID, source string) (*time.Time, error) {
	var syncDate time.Time
	err := r.DB.QueryRow(ctx, `
		SELECT sync_date
		FROM sync_logs
		WHERE account_id = $1 AND source = $2
		ORDER BY sync_date DESC
		LIMIT 1
	`, accountID, source).Scan(&syncDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &syncDate, nil
}

func (r *syncLogRepo) GetSyncedDates(ctx context.Context, accountID, source string, startDate, endDate time.Time) ([]time.Time, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT sync_date
		FROM sync_logs
		WHERE account_id = $1
		AND source = $2
		AND sync_date >= $3
		AND sync_date < $4
		ORDER BY sync_date ASC
	`, accountID, source, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dates, nil
}

func (r *syncLogRepo) CleanupSyncLogs(ctx context.Context, accountID string, startDate, endDate time.Time) error {
	_, err := r.DB.Exec(ctx, `
		DELETE FROM sync_logs
		WHERE account_id = $1
		AND sync_date >= $2
		AND sync_date <= $3
	`, accountID, startDate, endDate)
	if err != nil {
		return err
	}
	return nil
}
