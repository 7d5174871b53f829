package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dealdesk/internal/database"
	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
	"github.com/MrJamesThe3rd/dealdesk/internal/transaction/store"
)

// openTestDB connects to the database named by DEALDESK_TEST_DATABASE_URL and
// applies migrations. Tests are skipped when it is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	connStr := os.Getenv("DEALDESK_TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("DEALDESK_TEST_DATABASE_URL not set")
	}

	db, err := database.New(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))

	return db
}

func createTx(t *testing.T, db *sql.DB, svc *transaction.Service, coordinator string) *transaction.Transaction {
	t.Helper()

	tx, err := svc.Create(context.Background(), transaction.CreateParams{
		Address:         "123 Main St",
		City:            "Austin",
		State:           "TX",
		ContractDate:    "2024-03-01",
		CoordinatorName: coordinator,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM transactions WHERE id = $1`, tx.ID)
	})

	return tx
}

func TestPostgres_ConcurrentActivitiesAreNotLost(t *testing.T) {
	db := openTestDB(t)
	svc := transaction.NewService(store.New(db))
	ctx := context.Background()

	tx := createTx(t, db, svc, "Dana")

	const writers = 20

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := svc.AddActivity(ctx, tx.ID, transaction.ActivityParams{
				User:      "Ann",
				UserEmail: "ann@example.com",
				Message:   fmt.Sprintf("note %d", i),
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	got, err := svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, got.Activities, writers)

	for i := 1; i < len(got.Activities); i++ {
		assert.False(t, got.Activities[i].Timestamp.After(got.Activities[0].Timestamp))
	}
}

func TestPostgres_MutationRoundTrip(t *testing.T) {
	db := openTestDB(t)
	svc := transaction.NewService(store.New(db))
	ctx := context.Background()

	tx := createTx(t, db, svc, "Dana")

	withDoc, err := svc.AddDocument(ctx, tx.ID, transaction.DocumentParams{
		Name: "contract.pdf",
		URL:  "/uploads/contract.pdf",
	})
	require.NoError(t, err)
	require.Len(t, withDoc.Documents, 1)

	_, err = svc.RemoveDocument(ctx, tx.ID, "nonexistent-id")
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	got, err := svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Len(t, got.Documents, 1)

	removed, err := svc.RemoveDocument(ctx, tx.ID, withDoc.Documents[0].ID)
	require.NoError(t, err)
	assert.Empty(t, removed.Documents)

	_, err = svc.AddActivity(ctx, uuid.New(), transaction.ActivityParams{
		User: "Ann", UserEmail: "ann@example.com", Message: "hi",
	})
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestPostgres_ListAndCount(t *testing.T) {
	db := openTestDB(t)
	repo := store.New(db)
	svc := transaction.NewService(repo)
	ctx := context.Background()

	coordinator := "coord-" + uuid.NewString()
	first := createTx(t, db, svc, coordinator)
	second := createTx(t, db, svc, coordinator)

	_, err := svc.UpdateStatus(ctx, second.ID, transaction.StatusOnHold)
	require.NoError(t, err)

	listed, err := svc.ListByCoordinator(ctx, coordinator)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)

	onHold, err := repo.ListTransactions(ctx, transaction.ListFilter{
		Status:          new(transaction.StatusOnHold),
		CoordinatorName: &coordinator,
	})
	require.NoError(t, err)
	require.Len(t, onHold, 1)
	assert.Equal(t, second.ID, onHold[0].ID)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts[transaction.StatusOnHold], 1)
	assert.GreaterOrEqual(t, counts[transaction.StatusGatheringDocs], 1)

	require.NoError(t, svc.Delete(ctx, first.ID))
	assert.ErrorIs(t, svc.Delete(ctx, first.ID), transaction.ErrNotFound)
}
