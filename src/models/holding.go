package models

import (
	"time"
)

// Holding is the materialized current quantity for one (account, asset) pair.
// Quantity always equals the quantity_after of the latest transaction for this
// holding; a holding with no transactions holds zero. Version backs the
// compare-and-set used by the reconciler.
type Holding struct {
	ID          int64     `db:"id" json:"id"`
	AccountID   string    `db:"account_id" json:"account_id"`
	AssetSymbol string    `db:"asset_symbol" json:"asset_symbol"`
	Quantity    Quantity  `db:"quantity" json:"quantity"`
	Version     int64     `db:"version" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
