package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ledger/src/models"
	"ledger/src/repositories"
	"ledger/src/utils"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

type SyncStatus string

const (
	SyncApplied SyncStatus = "applied"
	SyncNoop    SyncStatus = "no-op"
	SyncFailed  SyncStatus = "failed"
)

// AssetSyncResult is the per-asset outcome of a sync batch. A batch never has
// a single verdict: each asset succeeds or fails on its own.
type AssetSyncResult struct {
	Asset       string              `json:"asset"`
	Status      SyncStatus          `json:"status"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Error       string              `json:"error,omitempty"`

	err error
}

// Err returns the underlying failure for a SyncFailed result, nil otherwise.
func (r AssetSyncResult) Err() error { return r.err }

type ReconcilerServiceI interface {
	ApplySync(ctx context.Context, accountID, source string, balances []models.Balance) []AssetSyncResult
	ApplyAdjustment(ctx context.Context, holdingID int64, transactionType models.TransactionType,
		quantityChange models.Quantity, source string, metadata json.RawMessage) (*models.Transaction, error)
}

// ReconcilerService is the only writer of holdings and their ledgers. Every
// mutation goes through a read-compute-commit step guarded by the store's
// compare-and-set, retried a bounded number of times on conflict.
type ReconcilerService struct {
	store      repositories.LedgerRepository
	maxRetries uint64
}

const defaultMaxRetries = 5

func NewReconcilerService(store repositories.LedgerRepository, maxRetries uint64) *ReconcilerService {
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	return &ReconcilerService{store: store, maxRetries: maxRetries}
}

// ApplySync reconciles one account against the balances a connector reported.
// The connector is authoritative for its own view: the reported quantity
// becomes quantity_after verbatim, negatives included. Each asset is an
// independent unit of work; a failure on one never rolls back another.
func (s *ReconcilerService) ApplySync(ctx context.Context, accountID, source string, balances []models.Balance) []AssetSyncResult {
	logger := utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"batch_id":   uuid.NewString(),
		"account_id": accountID,
		"source":     source,
	})

	results := make([]AssetSyncResult, 0, len(balances))
	for _, balance := range balances {
		result := s.syncAsset(ctx, accountID, source, balance)
		switch result.Status {
		case SyncFailed:
			logger.WithField("asset", balance.Asset).WithError(result.err).Warn("sync failed for asset")
		case SyncApplied:
			logger.WithFields(logrus.Fields{
				"asset":  balance.Asset,
				"change": result.Transaction.QuantityChange.String(),
			}).Info("sync applied")
		}
		results = append(results, result)
	}
	return results
}

func (s *ReconcilerService) syncAsset(ctx context.Context, accountID, source string, balance models.Balance) AssetSyncResult {
	reported, err := models.ParseQuantity(balance.Quantity)
	if err != nil {
		return failedResult(balance.Asset, err)
	}

	var result AssetSyncResult
	err = retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		var holding *models.Holding
		var err error
		if reported.IsZero() {
			// A zero report for an asset the account never held is a no-op;
			// holdings come into existence on the first nonzero balance.
			holding, err = s.store.GetHolding(ctx, accountID, balance.Asset)
			if errors.Is(err, repositories.ErrHoldingNotFound) {
				result = AssetSyncResult{Asset: balance.Asset, Status: SyncNoop}
				return nil
			}
		} else {
			holding, err = s.store.GetOrCreateHolding(ctx, accountID, balance.Asset)
		}
		if err != nil {
			return err
		}

		change := reported.Sub(holding.Quantity)
		if change.IsZero() {
			// Unchanged asset: a sync is a pure no-op, nothing is written.
			result = AssetSyncResult{Asset: balance.Asset, Status: SyncNoop}
			return nil
		}

		entry := &models.Transaction{
			TransactionType: models.TransactionTypeSync,
			QuantityBefore:  holding.Quantity,
			QuantityAfter:   reported,
			QuantityChange:  change,
			Source:          source,
		}
		if err := s.store.CommitChange(ctx, holding, entry); err != nil {
			if errors.Is(err, repositories.ErrVersionConflict) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = AssetSyncResult{Asset: balance.Asset, Status: SyncApplied, Transaction: entry}
		return nil
	})
	if err != nil {
		return failedResult(balance.Asset, err)
	}
	return result
}

// ApplyAdjustment appends a manual correction, deposit or withdrawal. The
// signed quantityChange is applied as given; sign convention belongs to the
// caller. Non-sync adjustments that would drive the holding negative are
// rejected with NegativeBalanceError and leave state untouched.
func (s *ReconcilerService) ApplyAdjustment(ctx context.Context, holdingID int64, transactionType models.TransactionType,
	quantityChange models.Quantity, source string, metadata json.RawMessage) (*models.Transaction, error) {

	if !transactionType.Valid() || transactionType == models.TransactionTypeSync {
		return nil, fmt.Errorf("unsupported adjustment type %q", transactionType)
	}

	var entry *models.Transaction
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		holding, err := s.store.GetHoldingByID(ctx, holdingID)
		if err != nil {
			return err
		}

		after := holding.Quantity.Add(quantityChange)
		if after.IsNegative() {
			return &NegativeBalanceError{
				HoldingID: holdingID,
				Current:   holding.Quantity,
				Requested: after,
			}
		}

		entry = &models.Transaction{
			TransactionType: transactionType,
			QuantityBefore:  holding.Quantity,
			QuantityAfter:   after,
			QuantityChange:  quantityChange,
			Source:          source,
			Metadata:        metadata,
		}
		if err := s.store.CommitChange(ctx, holding, entry); err != nil {
			if errors.Is(err, repositories.ErrVersionConflict) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"holding_id": holdingID,
		"type":       transactionType,
		"change":     quantityChange.String(),
	}).Info("adjustment applied")
	return entry, nil
}

func (s *ReconcilerService) backoff() retry.Backoff {
	return retry.WithMaxRetries(s.maxRetries, retry.NewFibonacci(10*time.Millisecond))
}

func failedResult(asset string, err error) AssetSyncResult {
	return AssetSyncResult{Asset: asset, Status: SyncFailed, Error: err.Error(), err: err}
}
