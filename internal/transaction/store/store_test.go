package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
)

// rowFunc adapts a function to the scanner interface.
type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

// fakeRow fills dest in the order of selectTransactionColumns.
func fakeRow(id uuid.UUID, parties, documents, activities string) scanner {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	return rowFunc(func(dest ...any) error {
		if len(dest) != 21 {
			return errors.New("unexpected column count")
		}

		*dest[0].(*uuid.UUID) = id
		*dest[1].(*string) = "pending_closing"
		*dest[2].(*string) = "condo"
		*dest[3].(*string) = "assignment"
		*dest[4].(*string) = "fha"
		*dest[9].(*string) = "123 Main St"
		*dest[10].(*string) = "Austin"
		*dest[11].(*string) = "TX"
		*dest[13].(*[]byte) = []byte(parties)
		*dest[14].(*time.Time) = created
		*dest[15].(*string) = "Dana"
		*dest[17].(*[]byte) = []byte(documents)
		*dest[18].(*[]byte) = []byte(activities)
		*dest[19].(*time.Time) = created
		*dest[20].(*time.Time) = created

		return nil
	})
}

func TestScanTransaction(t *testing.T) {
	id := uuid.New()

	tx, err := scanTransaction(fakeRow(id,
		`{"seller":{"name":"Sam","phone":"555-0100"}}`,
		`[{"id":"d1","name":"contract.pdf","url":"/uploads/contract.pdf","file_size":42}]`,
		`[{"id":"a1","user":"Ann","user_email":"ann@example.com","message":"hi","likes":2}]`,
	))
	require.NoError(t, err)

	assert.Equal(t, id, tx.ID)
	assert.Equal(t, transaction.StatusPendingClosing, tx.Status)
	assert.Equal(t, transaction.PropertyCondo, tx.PropertyType)
	assert.Equal(t, transaction.TypeAssignment, tx.TransactionType)
	assert.Equal(t, transaction.LoanFHA, tx.LoanType)
	assert.Equal(t, "Sam", tx.Parties.Seller.Name)
	require.Len(t, tx.Documents, 1)
	assert.Equal(t, int64(42), tx.Documents[0].FileSize)
	require.Len(t, tx.Activities, 1)
	assert.Equal(t, 2, tx.Activities[0].Likes)
}

func TestScanTransaction_NullCollections(t *testing.T) {
	tx, err := scanTransaction(fakeRow(uuid.New(), `{}`, `null`, `null`))
	require.NoError(t, err)

	assert.NotNil(t, tx.Documents)
	assert.NotNil(t, tx.Activities)
	assert.Empty(t, tx.Documents)
	assert.Empty(t, tx.Activities)
}

func TestScanTransaction_BadJSON(t *testing.T) {
	_, err := scanTransaction(fakeRow(uuid.New(), `{}`, `not json`, `[]`))
	assert.ErrorContains(t, err, "decoding documents")
}

func TestScanTransaction_ScanError(t *testing.T) {
	boom := errors.New("boom")

	_, err := scanTransaction(rowFunc(func(...any) error { return boom }))
	assert.ErrorIs(t, err, boom)
}

func TestEncodeEmbedded(t *testing.T) {
	emb, err := encodeEmbedded(&transaction.Transaction{})
	require.NoError(t, err)

	assert.Equal(t, "[]", emb.documents)
	assert.Equal(t, "[]", emb.activities)
	assert.Contains(t, emb.parties, `"seller":{}`)

	emb, err = encodeEmbedded(&transaction.Transaction{
		Activities: []transaction.Activity{{ID: "a1", Message: "hi"}},
	})
	require.NoError(t, err)
	assert.Contains(t, emb.activities, `"id":"a1"`)
}
