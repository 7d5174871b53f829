package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
)

type transactionResponse struct {
	ID                uuid.UUID                `json:"id"`
	Status            transaction.Status       `json:"status"`
	PropertyType      transaction.PropertyType `json:"property_type,omitempty"`
	TransactionType   transaction.Type         `json:"transaction_type,omitempty"`
	LoanType          transaction.LoanType     `json:"loan_type,omitempty"`
	ClientAccount     string                   `json:"client_account,omitempty"`
	PreliminarySearch string                   `json:"preliminary_search,omitempty"`
	JointVenture      string                   `json:"joint_venture,omitempty"`
	DispoWithEZ       string                   `json:"dispo_with_ez,omitempty"`
	Address           string                   `json:"address"`
	City              string                   `json:"city"`
	State             string                   `json:"state"`
	Zip               string                   `json:"zip,omitempty"`
	Parties           transaction.Parties      `json:"parties"`
	ContractDate      time.Time                `json:"contract_date"`
	CoordinatorName   string                   `json:"coordinator_name,omitempty"`
	Notes             string                   `json:"notes,omitempty"`
	Documents         []transaction.Document   `json:"documents"`
	Activities        []transaction.Activity   `json:"activities"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:                tx.ID,
		Status:            tx.Status,
		PropertyType:      tx.PropertyType,
		TransactionType:   tx.TransactionType,
		LoanType:          tx.LoanType,
		ClientAccount:     tx.ClientAccount,
		PreliminarySearch: tx.PreliminarySearch,
		JointVenture:      tx.JointVenture,
		DispoWithEZ:       tx.DispoWithEZ,
		Address:           tx.Address,
		City:              tx.City,
		State:             tx.State,
		Zip:               tx.Zip,
		Parties:           tx.Parties,
		ContractDate:      tx.ContractDate,
		CoordinatorName:   tx.CoordinatorName,
		Notes:             tx.Notes,
		Documents:         tx.Documents,
		Activities:        tx.Activities,
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}

	if resp.Documents == nil {
		resp.Documents = []transaction.Document{}
	}

	if resp.Activities == nil {
		resp.Activities = []transaction.Activity{}
	}

	return resp
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

type statsResponse struct {
	Total    int                        `json:"total"`
	ByStatus map[transaction.Status]int `json:"by_status"`
}

func toStatsResponse(s *transaction.Stats) statsResponse {
	return statsResponse{Total: s.Total, ByStatus: s.ByStatus}
}
