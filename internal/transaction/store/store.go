package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
)

var _ transaction.Repository = (*Store)(nil)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectTransactionColumns = `
	id, status, property_type, transaction_type, loan_type,
	client_account, preliminary_search, joint_venture, dispo_with_ez,
	address, city, state, zip, parties, contract_date, coordinator_name, notes,
	documents, activities, created_at, updated_at
`

// scanTransaction reads a row selected with selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var status, propertyType, txType, loanType string

	var parties, documents, activities []byte

	if err := s.Scan(
		&tx.ID, &status, &propertyType, &txType, &loanType,
		&tx.ClientAccount, &tx.PreliminarySearch, &tx.JointVenture, &tx.DispoWithEZ,
		&tx.Address, &tx.City, &tx.State, &tx.Zip, &parties, &tx.ContractDate, &tx.CoordinatorName, &tx.Notes,
		&documents, &activities, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Status = transaction.Status(status)
	tx.PropertyType = transaction.PropertyType(propertyType)
	tx.TransactionType = transaction.Type(txType)
	tx.LoanType = transaction.LoanType(loanType)

	if err := json.Unmarshal(parties, &tx.Parties); err != nil {
		return nil, fmt.Errorf("decoding parties: %w", err)
	}

	if err := json.Unmarshal(documents, &tx.Documents); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}

	if err := json.Unmarshal(activities, &tx.Activities); err != nil {
		return nil, fmt.Errorf("decoding activities: %w", err)
	}

	if tx.Documents == nil {
		tx.Documents = []transaction.Document{}
	}

	if tx.Activities == nil {
		tx.Activities = []transaction.Activity{}
	}

	return &tx, nil
}

// embedded holds the JSONB encodings of a transaction's nested values.
type embedded struct {
	parties, documents, activities string
}

func encodeEmbedded(tx *transaction.Transaction) (embedded, error) {
	parties, err := json.Marshal(tx.Parties)
	if err != nil {
		return embedded{}, fmt.Errorf("encoding parties: %w", err)
	}

	docs := tx.Documents
	if docs == nil {
		docs = []transaction.Document{}
	}

	documents, err := json.Marshal(docs)
	if err != nil {
		return embedded{}, fmt.Errorf("encoding documents: %w", err)
	}

	acts := tx.Activities
	if acts == nil {
		acts = []transaction.Activity{}
	}

	activities, err := json.Marshal(acts)
	if err != nil {
		return embedded{}, fmt.Errorf("encoding activities: %w", err)
	}

	return embedded{
		parties:    string(parties),
		documents:  string(documents),
		activities: string(activities),
	}, nil
}

func notFound(id uuid.UUID) error {
	return &transaction.NotFoundError{Entity: transaction.EntityTransaction, ID: id.String()}
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	emb, err := encodeEmbedded(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (
			id, status, property_type, transaction_type, loan_type,
			client_account, preliminary_search, joint_venture, dispo_with_ez,
			address, city, state, zip, parties, contract_date, coordinator_name, notes,
			documents, activities, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14::jsonb, $15, $16, $17,
			$18::jsonb, $19::jsonb, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		tx.ID, tx.Status, tx.PropertyType, tx.TransactionType, tx.LoanType,
		tx.ClientAccount, tx.PreliminarySearch, tx.JointVenture, tx.DispoWithEZ,
		tx.Address, tx.City, tx.State, tx.Zip, emb.parties, tx.ContractDate, tx.CoordinatorName, tx.Notes,
		emb.documents, emb.activities,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return getTransaction(ctx, s.db, id, "")
}

func getTransaction(ctx context.Context, q queryer, id uuid.UUID, lock string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE id = $1 ` + lock

	tx, err := scanTransaction(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	var (
		conds []string
		args  []any
	)

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if filter.CoordinatorName != nil {
		args = append(args, *filter.CoordinatorName)
		conds = append(conds, fmt.Sprintf("coordinator_name = $%d", len(args)))
	}

	query := `SELECT ` + selectTransactionColumns + ` FROM transactions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

// UpdateStatus is a single-statement field update; it does not read the nested collections first.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status transaction.Status) (*transaction.Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + selectTransactionColumns

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}

		return nil, fmt.Errorf("updating status: %w", err)
	}

	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n == 0 {
		return notFound(id)
	}

	return nil
}

// MutateTransaction locks the row with SELECT ... FOR UPDATE for the duration
// of the read-modify-write, so concurrent appends to the same transaction
// are applied in turn instead of overwriting each other.
func (s *Store) MutateTransaction(
	ctx context.Context,
	id uuid.UUID,
	fn func(tx *transaction.Transaction) error,
) (*transaction.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	tx, err := getTransaction(ctx, dbTx, id, "FOR UPDATE")
	if err != nil {
		return nil, err
	}

	if err := fn(tx); err != nil {
		return nil, err
	}

	emb, err := encodeEmbedded(tx)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE transactions
		SET status = $1, property_type = $2, transaction_type = $3, loan_type = $4,
			client_account = $5, preliminary_search = $6, joint_venture = $7, dispo_with_ez = $8,
			address = $9, city = $10, state = $11, zip = $12, parties = $13::jsonb,
			contract_date = $14, coordinator_name = $15, notes = $16,
			documents = $17::jsonb, activities = $18::jsonb, updated_at = NOW()
		WHERE id = $19
		RETURNING updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		tx.Status, tx.PropertyType, tx.TransactionType, tx.LoanType,
		tx.ClientAccount, tx.PreliminarySearch, tx.JointVenture, tx.DispoWithEZ,
		tx.Address, tx.City, tx.State, tx.Zip, emb.parties,
		tx.ContractDate, tx.CoordinatorName, tx.Notes,
		emb.documents, emb.activities, id,
	).Scan(&tx.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("writing transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	tx.ID = id

	return tx, nil
}

func (s *Store) CountByStatus(ctx context.Context) (map[transaction.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM transactions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting transactions: %w", err)
	}
	defer rows.Close()

	counts := make(map[transaction.Status]int)

	for rows.Next() {
		var (
			status string
			n      int
		)

		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}

		counts[transaction.Status(status)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}

	return counts, nil
}
