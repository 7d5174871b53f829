package memstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
	"github.com/MrJamesThe3rd/dealdesk/internal/transaction/memstore"
)

func newService(t *testing.T) *transaction.Service {
	t.Helper()

	return transaction.NewService(memstore.New())
}

func create(t *testing.T, svc *transaction.Service, address, coordinator string) *transaction.Transaction {
	t.Helper()

	tx, err := svc.Create(context.Background(), transaction.CreateParams{
		Address:         address,
		City:            "Austin",
		State:           "TX",
		ContractDate:    "2024-03-01",
		CoordinatorName: coordinator,
	})
	require.NoError(t, err)

	return tx
}

func TestStore_ListNewestFirst(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first := create(t, svc, "1 First St", "Dana")
	second := create(t, svc, "2 Second St", "Eli")
	third := create(t, svc, "3 Third St", "Dana")

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)

	dana, err := svc.ListByCoordinator(ctx, "Dana")
	require.NoError(t, err)
	require.Len(t, dana, 2)
	assert.Equal(t, third.ID, dana[0].ID)

	nobody, err := svc.ListByCoordinator(ctx, "Nobody")
	require.NoError(t, err)
	assert.NotNil(t, nobody)
	assert.Empty(t, nobody)
}

func TestStore_StatusLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tx := create(t, svc, "123 Main St", "Dana")
	assert.Equal(t, transaction.StatusGatheringDocs, tx.Status)

	updated, err := svc.UpdateStatus(ctx, tx.ID, transaction.StatusPendingClosing)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusPendingClosing, updated.Status)
	assert.False(t, updated.UpdatedAt.Before(tx.UpdatedAt))
	assert.Equal(t, tx.CreatedAt, updated.CreatedAt)

	pending, err := svc.List(ctx, new(transaction.StatusPendingClosing))
	require.NoError(t, err)
	require.Len(t, pending, 1)

	gathering, err := svc.List(ctx, new(transaction.StatusGatheringDocs))
	require.NoError(t, err)
	assert.Empty(t, gathering)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, map[transaction.Status]int{transaction.StatusPendingClosing: 1}, stats.ByStatus)
}

func TestStore_NotFound(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.Get(ctx, id)
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	_, err = svc.UpdateStatus(ctx, id, transaction.StatusClosed)
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	err = svc.Delete(ctx, id)
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	var nf *transaction.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, transaction.EntityTransaction, nf.Entity)
	assert.Equal(t, id.String(), nf.ID)
}

func TestStore_Delete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tx := create(t, svc, "123 Main St", "Dana")
	require.NoError(t, svc.Delete(ctx, tx.ID))

	_, err := svc.Get(ctx, tx.ID)
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.ByStatus)
}

func TestStore_ActivityFeed(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tx := create(t, svc, "123 Main St", "Dana")

	for i := range 3 {
		_, err := svc.AddActivity(ctx, tx.ID, transaction.ActivityParams{
			User:      "Ann",
			UserEmail: "ann@example.com",
			Message:   fmt.Sprintf("note %d", i),
		})
		require.NoError(t, err)
	}

	got, err := svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, got.Activities, 3)
	assert.Equal(t, "note 2", got.Activities[0].Message)
	assert.Equal(t, "note 0", got.Activities[2].Message)

	target := got.Activities[1].ID
	for range 4 {
		_, err = svc.LikeActivity(ctx, tx.ID, target)
		require.NoError(t, err)
	}

	got, err = svc.RemoveActivity(ctx, tx.ID, got.Activities[0].ID)
	require.NoError(t, err)
	require.Len(t, got.Activities, 2)
	assert.Equal(t, target, got.Activities[0].ID)
	assert.Equal(t, 4, got.Activities[0].Likes)

	_, err = svc.LikeActivity(ctx, tx.ID, "nonexistent-id")
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestStore_Documents(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tx := create(t, svc, "123 Main St", "Dana")

	withDoc, err := svc.AddDocument(ctx, tx.ID, transaction.DocumentParams{
		Name:     "contract.pdf",
		URL:      "/uploads/contract.pdf",
		FileSize: 1024,
		MimeType: "application/pdf",
	})
	require.NoError(t, err)
	require.Len(t, withDoc.Documents, 1)

	doc := withDoc.Documents[0]
	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.UploadedAt.IsZero())

	removed, err := svc.RemoveDocument(ctx, tx.ID, doc.ID)
	require.NoError(t, err)
	assert.NotNil(t, removed.Documents)
	assert.Empty(t, removed.Documents)

	_, err = svc.RemoveDocument(ctx, tx.ID, doc.ID)

	var nf *transaction.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, transaction.EntityDocument, nf.Entity)
}

func TestStore_FailedMutationLeavesRecordUntouched(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tx := create(t, svc, "123 Main St", "Dana")

	_, err := svc.Update(ctx, tx.ID, transaction.UpdateParams{
		Notes:        new("changed"),
		ContractDate: new("not a date"),
	})
	assert.ErrorIs(t, err, transaction.ErrValidation)

	got, err := svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
}

func TestStore_ReturnedCopiesAreIsolated(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tx := create(t, svc, "123 Main St", "Dana")
	tx.Address = "mutated"

	got, err := svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "123 Main St", got.Address)
}

func TestStore_ConcurrentActivitiesAreNotLost(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tx := create(t, svc, "123 Main St", "Dana")

	const writers = 50

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
	assert.Len(t, got.Activities, writers)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := memstore.New().ListTransactions(ctx, transaction.ListFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}
