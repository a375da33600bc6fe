// Package connector defines the boundary between the ledger core and the
// systems that report balances (exchanges, chains). The core only ever sees
// normalized Balance records; anything provider-specific stays behind Client.
package connector

import (
	"context"

	"ledger/src/models"
)

// Client fetches the current balance snapshot a provider reports for an
// account. Implementations must hand back human-readable quantities: raw
// minor-unit amounts have to be divided by 10^decimals on this side of the
// boundary (models.NormalizeRawUnits), never by the reconciler.
type Client interface {
	Name() string
	GetBalances(ctx context.Context, accountID string) ([]models.Balance, error)
}
