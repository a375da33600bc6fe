package models_test

import (
	"testing"

	"ledger/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRawUnits(t *testing.T) {
	t.Run("wei to ether", func(t *testing.T) {
		q, err := models.NormalizeRawUnits("1500000000000000000", 18)
		require.NoError(t, err)
		assert.Equal(t, "1.5", q.String())
	})

	t.Run("satoshi to btc", func(t *testing.T) {
		q, err := models.NormalizeRawUnits("123456789", 8)
		require.NoError(t, err)
		assert.Equal(t, "1.23456789", q.String())
	})

	t.Run("zero decimals is identity", func(t *testing.T) {
		q, err := models.NormalizeRawUnits("42", 0)
		require.NoError(t, err)
		assert.Equal(t, "42", q.String())
	})

	t.Run("malformed raw amount", func(t *testing.T) {
		_, err := models.NormalizeRawUnits("0x1f", 18)
		require.Error(t, err)
	})
}
