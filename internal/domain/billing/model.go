package billing

import (
	"errors"
	"time"
)

// InvoiceDueDays is the fixed short payment offset applied to generated
// invoices.
const InvoiceDueDays = 7

// Domain errors
var (
	ErrEmptyMemberID = errors.New("invoice must reference a member")
	ErrEmptyClassID  = errors.New("invoice must reference a class")
)

// PriceQuote is the membership-tier pricing breakdown returned by the
// external pricing engine. The engine itself is a black box.
type PriceQuote struct {
	BasePriceCents  int64
	DiscountPercent float64
	DiscountCents   int64
	FinalPriceCents int64
}

// InvoiceRequest is the payload handed to the external invoicing engine
// after a successful enrollment.
type InvoiceRequest struct {
	EnrollmentID string `json:"enrollment_id"`
	MemberID     string `json:"member_id"`
	ClassID      string `json:"class_id"`
	ClassName    string `json:"class_name"`
	SessionCount int    `json:"session_count"`
}

// Validate checks if the InvoiceRequest has valid data.
// PRE: InvoiceRequest struct is populated
// POST: Returns nil if valid, error otherwise
func (r *InvoiceRequest) Validate() error {
	if r.MemberID == "" {
		return ErrEmptyMemberID
	}
	if r.ClassID == "" {
		return ErrEmptyClassID
	}
	if r.SessionCount <= 0 {
		return errors.New("session count must be greater than zero")
	}
	return nil
}

// Invoice is the collaborator's receipt. Only Reference is stored on the
// enrollment; the rest is informational.
type Invoice struct {
	Reference       string
	MemberID        string
	AmountCents     int64
	DiscountPercent float64
	IssuedAt        time.Time
	DueAt           time.Time
}
