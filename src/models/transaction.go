package models

import (
	"encoding/json"
	"time"
)

type TransactionType string

const (
	TransactionTypeSync             TransactionType = "sync"
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeWithdrawal       TransactionType = "withdrawal"
	TransactionTypeManualAdjustment TransactionType = "manual_adjustment"
)

// Valid reports whether t is one of the known ledger entry types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeSync, TransactionTypeDeposit,
		TransactionTypeWithdrawal, TransactionTypeManualAdjustment:
		return true
	}
	return false
}

// Transaction is one immutable ledger entry for a holding. Before, after and
// change are stored redundantly so an audit never has to recompute them.
// Corrections are appended as compensating entries; rows are never edited.
// Metadata is an opaque payload stored and returned untouched.
type Transaction struct {
	ID              int64           `db:"id" json:"id"`
	HoldingID       int64           `db:"holding_id" json:"holding_id"`
	TransactionType TransactionType `db:"transaction_type" json:"transaction_type"`
	QuantityBefore  Quantity        `db:"quantity_before" json:"quantity_before"`
	QuantityAfter   Quantity        `db:"quantity_after" json:"quantity_after"`
	QuantityChange  Quantity        `db:"quantity_change" json:"quantity_change"`
	Source          string          `db:"source" json:"source"`
	Metadata        json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
