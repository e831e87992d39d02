package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentEmailStore_RecordAndLastSent(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := db.Sent
	base := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	last, err := store.LastSent(7)
	require.NoError(t, err)
	assert.Nil(t, last)

	first := &SentEmailEntry{
		InvoiceID:      7,
		InvoiceNumber:  "FAC-2025-007",
		Recipients:     []string{"parent@example.sn"},
		GmailMessageID: "msg-1",
		SentAt:         base,
	}
	require.NoError(t, store.Record(first))
	assert.NotZero(t, first.ID)
	assert.Equal(t, SendStatusSent, first.Status)

	require.NoError(t, store.Record(&SentEmailEntry{
		InvoiceID:     7,
		InvoiceNumber: "FAC-2025-007",
		Recipients:    []string{"parent@example.sn"},
		Status:        SendStatusFailed,
		ErrorMessage:  "quota exceeded",
		SentAt:        base.Add(time.Hour),
	}))

	last, err = store.LastSent(7)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(base), "failed attempts must not count as sends, got %v", last)

	other, err := store.LastSent(8)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestSentEmailStore_History(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := db.Sent
	base := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	for i, id := range []int64{1, 2, 1} {
		require.NoError(t, store.Record(&SentEmailEntry{
			InvoiceID:     id,
			InvoiceNumber: "N",
			Recipients:    []string{"a@example.sn", "b@example.sn"},
			Cc:            []string{"compta@example.sn"},
			SentAt:        base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.GetByInvoiceID(1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].SentAt.After(entries[1].SentAt), "newest first")
	assert.Equal(t, []string{"a@example.sn", "b@example.sn"}, entries[0].Recipients)
	assert.Equal(t, []string{"compta@example.sn"}, entries[0].Cc)

	recent, err := store.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(1), recent[0].InvoiceID)
	assert.Equal(t, int64(2), recent[1].InvoiceID)

	removed, err := store.CleanupOlderThan(base.Add(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	recent, err = store.GetRecent(0)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
