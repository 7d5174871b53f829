package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	// MutateTransaction loads the transaction, applies fn and writes the whole
	// record back. Concurrent calls for the same id are serialized by the store.
	// Nothing is written when fn returns an error.
	MutateTransaction(ctx context.Context, id uuid.UUID, fn func(tx *Transaction) error) (*Transaction, error)

	CountByStatus(ctx context.Context) (map[Status]int, error)
}

// ListFilter restricts a listing by equality. Nil fields match everything.
type ListFilter struct {
	Status          *Status
	CoordinatorName *string
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	contractDate, err := ParseContractDate(params.ContractDate)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		ID:                uuid.New(),
		Status:            StatusGatheringDocs,
		PropertyType:      params.PropertyType,
		TransactionType:   params.TransactionType,
		LoanType:          params.LoanType,
		ClientAccount:     params.ClientAccount,
		PreliminarySearch: params.PreliminarySearch,
		JointVenture:      params.JointVenture,
		DispoWithEZ:       params.DispoWithEZ,
		Address:           params.Address,
		City:              params.City,
		State:             params.State,
		Zip:               params.Zip,
		Parties:           params.Parties,
		ContractDate:      contractDate,
		CoordinatorName:   params.CoordinatorName,
		Notes:             params.Notes,
		Documents:         make([]Document, 0, len(params.Documents)),
		Activities:        make([]Activity, 0, len(params.Activities)),
	}

	// Initial entries share one timestamp so the supplied feed order stays newest first.
	now := s.now().UTC()

	for _, d := range params.Documents {
		tx.Documents = appendEntry(tx.Documents, newDocument(d, now))
	}

	for _, a := range params.Activities {
		tx.Activities = append(tx.Activities, newActivity(a, now))
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// List returns all transactions, newest first, optionally only those in status.
func (s *Service) List(ctx context.Context, status *Status) ([]*Transaction, error) {
	if status != nil && !status.Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", *status))
	}

	return s.repo.ListTransactions(ctx, ListFilter{Status: status})
}

func (s *Service) ListByCoordinator(ctx context.Context, coordinatorName string) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, ListFilter{CoordinatorName: &coordinatorName})
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	return s.repo.MutateTransaction(ctx, id, params.apply)
}

// UpdateStatus moves the transaction to status. Every transition is allowed.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Transaction, error) {
	if !status.Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", status))
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

func (s *Service) AddActivity(ctx context.Context, id uuid.UUID, params ActivityParams) (*Transaction, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	return s.repo.MutateTransaction(ctx, id, func(tx *Transaction) error {
		tx.Activities = prependEntry(tx.Activities, newActivity(params, s.now().UTC()))
		return nil
	})
}

// LikeActivity increments the like counter. Repeated likes by the same caller accumulate.
func (s *Service) LikeActivity(ctx context.Context, id uuid.UUID, activityID string) (*Transaction, error) {
	return s.repo.MutateTransaction(ctx, id, func(tx *Transaction) error {
		return mutateByID(tx.Activities, EntityActivity, activityID, func(a *Activity) {
			a.Likes++
		})
	})
}

func (s *Service) RemoveActivity(ctx context.Context, id uuid.UUID, activityID string) (*Transaction, error) {
	return s.repo.MutateTransaction(ctx, id, func(tx *Transaction) error {
		activities, err := removeByID(tx.Activities, EntityActivity, activityID)
		if err != nil {
			return err
		}

		tx.Activities = activities

		return nil
	})
}

func (s *Service) AddDocument(ctx context.Context, id uuid.UUID, params DocumentParams) (*Transaction, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	return s.repo.MutateTransaction(ctx, id, func(tx *Transaction) error {
		tx.Documents = appendEntry(tx.Documents, newDocument(params, s.now().UTC()))
		return nil
	})
}

func (s *Service) RemoveDocument(ctx context.Context, id uuid.UUID, documentID string) (*Transaction, error) {
	return s.repo.MutateTransaction(ctx, id, func(tx *Transaction) error {
		documents, err := removeByID(tx.Documents, EntityDocument, documentID)
		if err != nil {
			return err
		}

		tx.Documents = documents

		return nil
	})
}

// Stats counts the currently stored transactions per status.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByStatus: make(map[Status]int, len(counts))}

	for status, n := range counts {
		if n == 0 {
			continue
		}

		stats.ByStatus[status] = n
		stats.Total += n
	}

	return stats, nil
}

func newActivity(p ActivityParams, at time.Time) Activity {
	return Activity{
		ID:          uuid.NewString(),
		User:        p.User,
		UserEmail:   p.UserEmail,
		Message:     p.Message,
		Timestamp:   at,
		Likes:       0,
		Mentions:    p.Mentions,
		Attachments: p.Attachments,
	}
}

func newDocument(p DocumentParams, at time.Time) Document {
	return Document{
		ID:         uuid.NewString(),
		Name:       p.Name,
		URL:        p.URL,
		UploadedAt: at,
		UploadedBy: p.UploadedBy,
		FileSize:   p.FileSize,
		MimeType:   p.MimeType,
	}
}
