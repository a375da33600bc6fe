package services

import (
	"context"

	"ledger/src/models"
	"ledger/src/repositories"
)

type VerifierServiceI interface {
	Verify(ctx context.Context, holdingID int64) error
}

// VerifierService replays a holding's ledger from zero and checks that the
// fold reproduces the stored quantity. It is strictly read-only: drift is
// reported, never repaired.
type VerifierService struct {
	store repositories.LedgerRepository
}

func NewVerifierService(store repositories.LedgerRepository) *VerifierService {
	return &VerifierService{store: store}
}

// Verify folds all transactions for the holding in (created_at, id) order,
// asserting that every entry chains onto the previous one, that each
// quantity_change is exact, and that the final quantity_after matches the
// holding's materialized quantity. Any mismatch is an IntegrityDriftError
// carrying the offending transaction id(s).
func (s *VerifierService) Verify(ctx context.Context, holdingID int64) error {
	holding, err := s.store.GetHoldingByID(ctx, holdingID)
	if err != nil {
		return err
	}
	entries, err := s.store.ListTransactionsByHolding(ctx, holdingID)
	if err != nil {
		return err
	}

	running := models.ZeroQuantity()
	for i, entry := range entries {
		if !entry.QuantityBefore.Equal(running) {
			ids := []int64{entry.ID}
			if i > 0 {
				ids = []int64{entries[i-1].ID, entry.ID}
			}
			return &IntegrityDriftError{
				HoldingID:      holdingID,
				TransactionIDs: ids,
				Reason:         "quantity_before does not chain onto the previous quantity_after",
			}
		}
		if !entry.QuantityAfter.Sub(entry.QuantityBefore).Equal(entry.QuantityChange) {
			return &IntegrityDriftError{
				HoldingID:      holdingID,
				TransactionIDs: []int64{entry.ID},
				Reason:         "quantity_change does not equal quantity_after - quantity_before",
			}
		}
		running = entry.QuantityAfter
	}

	if !holding.Quantity.Equal(running) {
		var ids []int64
		if len(entries) > 0 {
			ids = []int64{entries[len(entries)-1].ID}
		}
		return &IntegrityDriftError{
			HoldingID:      holdingID,
			TransactionIDs: ids,
			Reason:         "holding quantity diverges from the ledger fold",
		}
	}
	return nil
}
