package repositories_test

import (
	"context"
	"testing"
	"time"

	"ledger/src/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncLogRepository(t *testing.T) {
	pool := SetupTestDB(t)
	repo := repositories.NewSyncLogRepository(pool)
	ctx := context.Background()

	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
	}

	t.Run("MarkAccountForDate is idempotent", func(t *testing.T) {
		TruncateTables(t, pool)

		require.NoError(t, repo.MarkAccountForDate(ctx, "acc-1", "binance", day(1)))
		require.NoError(t, repo.MarkAccountForDate(ctx, "acc-1", "binance", day(1)))

		dates, err := repo.GetSyncedDates(ctx, "acc-1", "binance", day(1), day(2))
		require.NoError(t, err)
		assert.Len(t, dates, 1)
	})

	t.Run("GetLastSyncDate returns the most recent pass", func(t *testing.T) {
		TruncateTables(t, pool)

		require.NoError(t, repo.MarkAccountForDate(ctx, "acc-1", "binance", day(1)))
		require.NoError(t, repo.MarkAccountForDate(ctx, "acc-1", "binance", day(3)))
		require.NoError(t, repo.MarkAccountForDate(ctx, "acc-1", "kraken", day(5)))

		last, err := repo.GetLastSyncDate(ctx, "acc-1", "binance")
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.True(t, last.Equal(day(3)))

		never, err := repo.GetLastSyncDate(ctx, "acc-2", "binance")
		require.NoError(t, err)
		assert.Nil(t, never)
	})

	t.Run("GetSyncedDates filters by source and half-open range", func(t *testing.T) {
		TruncateTables(t, pool)

		for d := 1; d <= 4; d++ {
			require.NoError(t, repo.MarkAccountForDate(ctx, "acc-1", "binance", day(d)))
		}
		require.NoError(t, repo.MarkAccountForDate(ctx, "acc-1", "kraken", day(2)))

		dates, err := repo.GetSyncedDates(ctx, "acc-1", "binance", day(2), day(4))
		require.NoError(t, err)
		require.Len(t, dates, 2)
		assert.True(t, dates[0].Equal(day(2)))
		assert.True(t, dates[1].Equal(day(3)))
	})

	t.Run("CleanupSyncLogs removes the account's rows in range", func(t *testing.T) {
		TruncateTables(t, pool)

		for d := 1; d <= 3; d++ {
			require.NoError(t, repo.MarkAccountForDate(ctx, "acc-1", "binance", day(d)))
		}
		require.NoError(t, repo.MarkAccountForDate(ctx, "acc-2", "binance", day(2)))

		require.NoError(t, repo.CleanupSyncLogs(ctx, "acc-1", day(1), day(2)))

		remaining, err := repo.GetSyncedDates(ctx, "acc-1", "binance", day(1), day(4))
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.True(t, remaining[0].Equal(day(3)))

		// Other accounts are untouched.
		other, err := repo.GetSyncedDates(ctx, "acc-2", "binance", day(1), day(4))
		require.NoError(t, err)
		assert.Len(t, other, 1)
	})
}
