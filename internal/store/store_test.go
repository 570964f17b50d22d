package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedflow/internal/contract"
)

func testRecord(documentID string, createdAt time.Time) ContractRecord {
	return ContractRecord{
		DocumentID:      documentID,
		PropertyAddress: "12 Elm St, Springfield",
		Form: contract.FormData{
			PropertyAddress: "12 Elm St, Springfield",
			OfferPrice:      450000,
			LoanType:        contract.LoanConventional,
		},
		CreatedAt: createdAt,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save and get", func(t *testing.T) {
		record := testRecord("doc-1", time.Now().UTC())
		require.NoError(t, s.Save(ctx, record))

		got, err := s.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, record, *got)
	})

	t.Run("save overwrites", func(t *testing.T) {
		record := testRecord("doc-1", time.Now().UTC())
		record.SandboxSkipped = true
		require.NoError(t, s.Save(ctx, record))

		got, err := s.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.True(t, got.SandboxSkipped)
	})

	t.Run("list newest first", func(t *testing.T) {
		base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.Save(ctx, testRecord("doc-old", base)))
		require.NoError(t, s.Save(ctx, testRecord("doc-new", base.Add(time.Hour))))

		records, err := s.List(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(records), 2)
		assert.Equal(t, "doc-new", records[0].DocumentID)
	})
}
