package models

import "time"

type SyncLog struct {
	ID        int64     `db:"id"`
	AccountID string    `db:"account_id"`
	Source    string    `db:"source"`
	SyncDate  time.Time `db:"sync_date"`
	CreatedAt time.Time `db:"created_at"`
}
