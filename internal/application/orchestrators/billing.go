package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gymdesk/internal/adapters/email"
	"gymdesk/internal/domain/billing"
	"gymdesk/internal/domain/class"
	"gymdesk/internal/domain/member"
)

// PriceCalculator quotes a price for a class booking. The pricing engine is
// external; membership-tier discounts live behind this interface.
type PriceCalculator interface {
	Quote(ctx context.Context, memberID string, cls class.Class, sessionCount int) (billing.PriceQuote, error)
}

// InvoiceGenerator turns a quote into an issued invoice with a reference.
type InvoiceGenerator interface {
	Generate(ctx context.Context, req billing.InvoiceRequest, quote billing.PriceQuote) (billing.Invoice, error)
}

// InvoiceEnrollmentStore writes the invoice reference back onto the enrollment.
type InvoiceEnrollmentStore interface {
	SetInvoiceRef(ctx context.Context, id, invoiceRef string) error
}

// InvoiceMemberStore resolves the member for the notification email.
type InvoiceMemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// InvoiceExecutor consumes invoice outbox entries: it quotes the price,
// generates the invoice, writes the reference back onto the enrollment, and
// sends a best-effort notification email. It satisfies ActionExecutor.
type InvoiceExecutor struct {
	Calculator      PriceCalculator
	Generator       InvoiceGenerator
	ClassStore      ClassLookupStore
	MemberStore     InvoiceMemberStore
	EnrollmentStore InvoiceEnrollmentStore
	EmailSender     email.Sender // optional: nil skips the notification
	FromAddress     string
}

// Execute runs one invoice action. The returned external id is the invoice
// reference recorded on the outbox entry.
// PRE: payload is a JSON-encoded billing.InvoiceRequest
// POST: Invoice generated, reference written onto the enrollment
// INVARIANT: outbox entry status managed by the processor
func (x *InvoiceExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var req billing.InvoiceRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("unmarshal invoice payload: %w", err)
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	cls, err := x.ClassStore.GetByID(ctx, req.ClassID)
	if err != nil {
		return "", fmt.Errorf("load class: %w", err)
	}

	quote, err := x.Calculator.Quote(ctx, req.MemberID, cls, req.SessionCount)
	if err != nil {
		return "", fmt.Errorf("price quote: %w", err)
	}

	invoice, err := x.Generator.Generate(ctx, req, quote)
	if err != nil {
		return "", fmt.Errorf("generate invoice: %w", err)
	}

	if err := x.EnrollmentStore.SetInvoiceRef(ctx, req.EnrollmentID, invoice.Reference); err != nil {
		return "", fmt.Errorf("record invoice reference: %w", err)
	}

	slog.Info("billing_event", "event", "invoice_generated", "enrollment_id", req.EnrollmentID,
		"invoice_ref", invoice.Reference, "amount_cents", invoice.AmountCents)

	x.notify(ctx, req, invoice)
	return invoice.Reference, nil
}

// notify emails the member about the new invoice. Failures are logged, never
// returned: the invoice already exists.
func (x *InvoiceExecutor) notify(ctx context.Context, req billing.InvoiceRequest, invoice billing.Invoice) {
	if x.EmailSender == nil || x.MemberStore == nil {
		return
	}
	m, err := x.MemberStore.GetByID(ctx, req.MemberID)
	if err != nil || m.Email == "" {
		return
	}

	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your booking for <strong>%s</strong> has been invoiced.</p><p>Invoice %s for $%.2f is due by %s.</p>",
		m.Name, req.ClassName, invoice.Reference,
		float64(invoice.AmountCents)/100.0, invoice.DueAt.Format("2 January 2006"))

	_, err = x.EmailSender.Send(ctx, email.SendRequest{
		To:      []string{m.Email},
		From:    x.FromAddress,
		Subject: fmt.Sprintf("Invoice %s for %s", invoice.Reference, req.ClassName),
		HTML:    body,
	})
	if err != nil {
		slog.Warn("billing_event", "event", "invoice_email_failed", "invoice_ref", invoice.Reference, "error", err)
	}
}

// FlatPriceCalculator is the built-in pricing engine: the class price with no
// discount. Tiered pricing plugs in by replacing this implementation.
type FlatPriceCalculator struct{}

// Quote returns the class price multiplied by the session count.
func (FlatPriceCalculator) Quote(_ context.Context, _ string, cls class.Class, sessionCount int) (billing.PriceQuote, error) {
	base := cls.PriceCents * int64(sessionCount)
	return billing.PriceQuote{
		BasePriceCents:  base,
		FinalPriceCents: base,
	}, nil
}

// SequentialInvoiceGenerator issues invoices with a date-prefixed reference
// and the standard due-date offset.
type SequentialInvoiceGenerator struct {
	GenerateID func() string
	Now        func() time.Time
}

// Generate builds the invoice from the quote.
func (g *SequentialInvoiceGenerator) Generate(_ context.Context, req billing.InvoiceRequest, quote billing.PriceQuote) (billing.Invoice, error) {
	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}
	frag := g.GenerateID()
	if len(frag) > 8 {
		frag = frag[:8]
	}
	return billing.Invoice{
		Reference:       fmt.Sprintf("INV-%s-%s", now.Format("20060102"), frag),
		MemberID:        req.MemberID,
		AmountCents:     quote.FinalPriceCents,
		DiscountPercent: quote.DiscountPercent,
		IssuedAt:        now,
		DueAt:           now.AddDate(0, 0, billing.InvoiceDueDays),
	}, nil
}
