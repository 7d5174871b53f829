package transaction

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json field names so errors match what the caller sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func validateParams(p any) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return invalid("payload", err.Error())
	}

	fe := fieldErrs[0]

	// Namespace is "CreateParams.parties.seller.email"; drop the struct name.
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return invalid(field, "is required")
	case "oneof":
		return invalid(field, fmt.Sprintf("must be one of [%s]", fe.Param()))
	case "min":
		return invalid(field, "must not be empty")
	case "gte":
		return invalid(field, "must be at least "+fe.Param())
	default:
		return invalid(field, "failed "+fe.Tag()+" check")
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseContractDate accepts an ISO-8601 date or timestamp.
func ParseContractDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, invalid("contract_date", fmt.Sprintf("cannot parse %q as a date", s))
}

// CreateParams is the payload for a new transaction.
type CreateParams struct {
	// Status is accepted for compatibility and always replaced with StatusGatheringDocs.
	Status Status `json:"status,omitempty"`

	PropertyType      PropertyType `json:"property_type,omitempty" validate:"omitempty,oneof=single_family multi_family condo land"`
	TransactionType   Type         `json:"transaction_type,omitempty" validate:"omitempty,oneof=assignment double_close wholetail cash_deal"`
	LoanType          LoanType     `json:"loan_type,omitempty" validate:"omitempty,oneof=conventional fha va other"`
	ClientAccount     string       `json:"client_account,omitempty"`
	PreliminarySearch string       `json:"preliminary_search,omitempty"`
	JointVenture      string       `json:"joint_venture,omitempty"`
	DispoWithEZ       string       `json:"dispo_with_ez,omitempty"`

	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip,omitempty"`

	Parties Parties `json:"parties"`

	ContractDate    string `json:"contract_date" validate:"required"`
	CoordinatorName string `json:"coordinator_name,omitempty"`
	Notes           string `json:"notes,omitempty"`

	Documents  []DocumentParams `json:"documents,omitempty" validate:"dive"`
	Activities []ActivityParams `json:"activities,omitempty" validate:"dive"`
}

// ActivityParams is the payload for a new feed entry.
type ActivityParams struct {
	// ID is ignored; entries always get a fresh identifier.
	ID          string   `json:"id,omitempty"`
	User        string   `json:"user" validate:"required"`
	UserEmail   string   `json:"user_email" validate:"required"`
	Message     string   `json:"message" validate:"required"`
	Mentions    []string `json:"mentions,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// DocumentParams describes a file that has already been stored somewhere addressable.
type DocumentParams struct {
	// ID is ignored; entries always get a fresh identifier.
	ID         string `json:"id,omitempty"`
	Name       string `json:"name" validate:"required"`
	URL        string `json:"url" validate:"required"`
	UploadedBy string `json:"uploaded_by,omitempty"`
	FileSize   int64  `json:"file_size,omitempty" validate:"gte=0"`
	MimeType   string `json:"mime_type,omitempty"`
}

// UpdateParams overlays only the non-nil fields onto a stored transaction.
// Documents and activities are only changed through their own operations,
// so those keys are accepted and ignored.
type UpdateParams struct {
	PropertyType      *PropertyType `json:"property_type,omitempty" validate:"omitempty,oneof=single_family multi_family condo land"`
	TransactionType   *Type         `json:"transaction_type,omitempty" validate:"omitempty,oneof=assignment double_close wholetail cash_deal"`
	LoanType          *LoanType     `json:"loan_type,omitempty" validate:"omitempty,oneof=conventional fha va other"`
	ClientAccount     *string       `json:"client_account,omitempty"`
	PreliminarySearch *string       `json:"preliminary_search,omitempty"`
	JointVenture      *string       `json:"joint_venture,omitempty"`
	DispoWithEZ       *string       `json:"dispo_with_ez,omitempty"`

	Address *string `json:"address,omitempty" validate:"omitempty,min=1"`
	City    *string `json:"city,omitempty" validate:"omitempty,min=1"`
	State   *string `json:"state,omitempty" validate:"omitempty,min=1"`
	Zip     *string `json:"zip,omitempty"`

	Parties *PartiesUpdate `json:"parties,omitempty"`

	ContractDate    *string `json:"contract_date,omitempty"`
	CoordinatorName *string `json:"coordinator_name,omitempty"`
	Notes           *string `json:"notes,omitempty"`

	Documents  any `json:"documents,omitempty"`
	Activities any `json:"activities,omitempty"`
}

// PartiesUpdate replaces each supplied contact as a whole.
type PartiesUpdate struct {
	Seller            *Contact `json:"seller,omitempty"`
	Seller2           *Contact `json:"seller2,omitempty"`
	Buyer             *Contact `json:"buyer,omitempty"`
	AcquisitionsAgent *Contact `json:"acquisitions_agent,omitempty"`
	DispositionsAgent *Contact `json:"dispositions_agent,omitempty"`
	Title             *Title   `json:"title,omitempty"`
	Lender            *Lender  `json:"lender,omitempty"`
}

func (p *UpdateParams) apply(tx *Transaction) error {
	if p.ContractDate != nil {
		d, err := ParseContractDate(*p.ContractDate)
		if err != nil {
			return err
		}

		tx.ContractDate = d
	}

	setIf(&tx.PropertyType, p.PropertyType)
	setIf(&tx.TransactionType, p.TransactionType)
	setIf(&tx.LoanType, p.LoanType)
	setIf(&tx.ClientAccount, p.ClientAccount)
	setIf(&tx.PreliminarySearch, p.PreliminarySearch)
	setIf(&tx.JointVenture, p.JointVenture)
	setIf(&tx.DispoWithEZ, p.DispoWithEZ)
	setIf(&tx.Address, p.Address)
	setIf(&tx.City, p.City)
	setIf(&tx.State, p.State)
	setIf(&tx.Zip, p.Zip)
	setIf(&tx.CoordinatorName, p.CoordinatorName)
	setIf(&tx.Notes, p.Notes)

	if p.Parties != nil {
		setIf(&tx.Parties.Seller, p.Parties.Seller)
		setIf(&tx.Parties.Seller2, p.Parties.Seller2)
		setIf(&tx.Parties.Buyer, p.Parties.Buyer)
		setIf(&tx.Parties.AcquisitionsAgent, p.Parties.AcquisitionsAgent)
		setIf(&tx.Parties.DispositionsAgent, p.Parties.DispositionsAgent)
		setIf(&tx.Parties.Title, p.Parties.Title)
		setIf(&tx.Parties.Lender, p.Parties.Lender)
	}

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
