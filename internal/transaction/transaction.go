package transaction

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the stage of a transaction in its closing workflow.
// Any status may follow any other.
type Status string

const (
	StatusGatheringDocs     Status = "gathering_docs"
	StatusHoldingForFunding Status = "holding_for_funding"
	StatusGatheringTitle    Status = "gathering_title"
	StatusClientHelpNeeded  Status = "client_help_needed"
	StatusOnHold            Status = "on_hold"
	StatusPendingClosing    Status = "pending_closing"
	StatusReadyToClose      Status = "ready_to_close"
	StatusClosed            Status = "closed"
	StatusCancelled         Status = "cancelled"
)

// Statuses lists every valid status in workflow order.
var Statuses = []Status{
	StatusGatheringDocs,
	StatusHoldingForFunding,
	StatusGatheringTitle,
	StatusClientHelpNeeded,
	StatusOnHold,
	StatusPendingClosing,
	StatusReadyToClose,
	StatusClosed,
	StatusCancelled,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}

	return false
}

// PropertyType classifies the property being transacted.
type PropertyType string

const (
	PropertySingleFamily PropertyType = "single_family"
	PropertyMultiFamily  PropertyType = "multi_family"
	PropertyCondo        PropertyType = "condo"
	PropertyLand         PropertyType = "land"
)

// Type classifies how the deal is structured.
type Type string

const (
	TypeAssignment  Type = "assignment"
	TypeDoubleClose Type = "double_close"
	TypeWholetail   Type = "wholetail"
	TypeCashDeal    Type = "cash_deal"
)

// LoanType classifies the buyer's financing.
type LoanType string

const (
	LoanConventional LoanType = "conventional"
	LoanFHA          LoanType = "fha"
	LoanVA           LoanType = "va"
	LoanOther        LoanType = "other"
)

// Contact is a free-form party to the deal. All fields are optional.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Title describes the title company handling the closing.
type Title struct {
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	OfficeAddress string `json:"office_address,omitempty"`
}

// Lender describes the buyer's lender.
type Lender struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Office string `json:"office,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Type   string `json:"type,omitempty"`
}

// Parties groups every contact attached to a transaction.
type Parties struct {
	Seller            Contact `json:"seller"`
	Seller2           Contact `json:"seller2"`
	Buyer             Contact `json:"buyer"`
	AcquisitionsAgent Contact `json:"acquisitions_agent"`
	DispositionsAgent Contact `json:"dispositions_agent"`
	Title             Title   `json:"title"`
	Lender            Lender  `json:"lender"`
}

// Transaction is a single real-estate deal and everything attached to it.
// Documents are kept in upload order, activities newest first.
type Transaction struct {
	ID     uuid.UUID
	Status Status

	PropertyType      PropertyType
	TransactionType   Type
	LoanType          LoanType
	ClientAccount     string
	PreliminarySearch string
	JointVenture      string
	DispoWithEZ       string

	Address string
	City    string
	State   string
	Zip     string

	Parties Parties

	ContractDate    time.Time
	CoordinatorName string
	Notes           string

	Documents  []Document
	Activities []Activity

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document references an uploaded file. It only exists inside its transaction.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
	FileSize   int64     `json:"file_size,omitempty"`
	MimeType   string    `json:"mime_type,omitempty"`
}

// Activity is a comment on the transaction feed.
type Activity struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	UserEmail   string    `json:"user_email"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Likes       int       `json:"likes"`
	Mentions    []string  `json:"mentions,omitempty"`
	Attachments []string  `json:"attachments,omitempty"`
}

func (d Document) entryID() string { return d.ID }
func (a Activity) entryID() string { return a.ID }

// Clone returns a deep copy so callers can mutate the nested collections freely.
func (t *Transaction) Clone() *Transaction {
	c := *t

	c.Documents = append([]Document(nil), t.Documents...)
	c.Activities = make([]Activity, len(t.Activities))

	for i, a := range t.Activities {
		a.Mentions = append([]string(nil), a.Mentions...)
		a.Attachments = append([]string(nil), a.Attachments...)
		c.Activities[i] = a
	}

	if c.Documents == nil {
		c.Documents = []Document{}
	}

	return &c
}

// Stats is a rollup of transactions by status. Statuses with no transactions
// are absent from ByStatus.
type Stats struct {
	Total    int
	ByStatus map[Status]int
}
