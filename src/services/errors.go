package services

import (
	"errors"
	"fmt"

	"ledger/src/models"
)

// ErrSyncInFlight is returned when another worker already holds the sync lock
// for an account/source pair.
var ErrSyncInFlight = errors.New("sync already in flight")

// NegativeBalanceError rejects a non-sync adjustment that would drive a
// holding below zero. Sync-sourced balances are exempt: a provider may
// legitimately report a transient negative and the ledger records it as-is.
type NegativeBalanceError struct {
	HoldingID int64
	Current   models.Quantity
	Requested models.Quantity
}

func (e *NegativeBalanceError) Error() string {
	return fmt.Sprintf("adjustment on holding %d rejected: %s would become %s",
		e.HoldingID, e.Current, e.Requested)
}

// IntegrityDriftError reports a broken fold chain found by the verifier. It
// carries the offending transaction ids and is never auto-corrected; drift is
// an operational signal, not a condition the core repairs.
type IntegrityDriftError struct {
	HoldingID      int64
	TransactionIDs []int64
	Reason         string
}

func (e *IntegrityDriftError) Error() string {
	return fmt.Sprintf("integrity drift on holding %d (transactions %v): %s",
		e.HoldingID, e.TransactionIDs, e.Reason)
}
