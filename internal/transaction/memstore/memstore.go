// Package memstore keeps transactions in process memory. It backs tests and
// the "memory" storage driver; data does not survive a restart.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
)

var _ transaction.Repository = (*Store)(nil)

type record struct {
	tx  *transaction.Transaction
	seq uint64
}

type Store struct {
	mu      sync.Mutex
	records map[uuid.UUID]record
	seq     uint64
	now     func() time.Time
}

func New() *Store {
	return &Store{
		records: make(map[uuid.UUID]record),
		now:     time.Now,
	}
}

func notFound(id uuid.UUID) error {
	return &transaction.NotFoundError{Entity: transaction.EntityTransaction, ID: id.String()}
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	s.seq++
	s.records[tx.ID] = record{tx: tx.Clone(), seq: s.seq}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}

	return rec.tx.Clone(), nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]record, 0, len(s.records))

	for _, rec := range s.records {
		if filter.Status != nil && rec.tx.Status != *filter.Status {
			continue
		}

		if filter.CoordinatorName != nil && rec.tx.CoordinatorName != *filter.CoordinatorName {
			continue
		}

		matched = append(matched, rec)
	}

	// Newest first; insertion order breaks ties between equal timestamps.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.tx.CreatedAt.Equal(b.tx.CreatedAt) {
			return a.tx.CreatedAt.After(b.tx.CreatedAt)
		}

		return a.seq > b.seq
	})

	txs := make([]*transaction.Transaction, len(matched))
	for i, rec := range matched {
		txs[i] = rec.tx.Clone()
	}

	return txs, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status transaction.Status) (*transaction.Transaction, error) {
	return s.MutateTransaction(ctx, id, func(tx *transaction.Transaction) error {
		tx.Status = status
		return nil
	})
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}

	delete(s.records, id)

	return nil
}

// MutateTransaction holds the store lock for the whole read-modify-write, so
// concurrent mutations of one transaction apply one after another.
func (s *Store) MutateTransaction(
	ctx context.Context,
	id uuid.UUID,
	fn func(tx *transaction.Transaction) error,
) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}

	tx := rec.tx.Clone()
	if err := fn(tx); err != nil {
		return nil, err
	}

	tx.ID = rec.tx.ID
	tx.CreatedAt = rec.tx.CreatedAt
	tx.UpdatedAt = s.now().UTC()

	rec.tx = tx.Clone()
	s.records[id] = rec

	return tx, nil
}

func (s *Store) CountByStatus(ctx context.Context) (map[transaction.Status]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[transaction.Status]int)
	for _, rec := range s.records {
		counts[rec.tx.Status]++
	}

	return counts, nil
}
