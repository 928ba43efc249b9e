package ar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	salesshared "github.com/cloudforge-erp/cloudforge-erp/internal/sales/shared"
)

// RepositoryPort is the persistence surface needed by the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
	ListOutstanding(ctx context.Context) ([]Invoice, error)
}

// Service implements receivables operations.
type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// RecordPayment appends a receipt to an invoice and re-derives the
// settlement status from the sum of all receipts. The invoice row is
// locked so concurrent receipts serialize.
func (s *Service) RecordPayment(ctx context.Context, invoiceID string, req RecordPaymentRequest) (*PaymentReceipt, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	method := req.Method
	if method == "" {
		method = "unspecified"
	}
	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	payment := &Payment{
		ID:        uuid.NewString(),
		InvoiceID: invoiceID,
		Amount:    req.Amount,
		Method:    method,
		Reference: req.Reference,
		PaidAt:    paidAt,
	}

	var receipt *PaymentReceipt
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		invoice, err := tx.GetInvoiceForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := tx.InsertPayment(ctx, *payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		paid, err := tx.SumPayments(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}
		next := NextStatus(invoice.Status, paid, invoice.Total)
		if next != invoice.Status {
			if err := tx.UpdateStatus(ctx, invoiceID, next); err != nil {
				return fmt.Errorf("update invoice status: %w", err)
			}
		}
		outstanding := salesshared.SumMoney(invoice.Total, -paid)
		if outstanding < 0 {
			outstanding = 0
		}
		receipt = &PaymentReceipt{Payment: *payment, InvoiceStatus: next, Outstanding: outstanding}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Get returns one invoice with its payments.
func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns all invoices with their payments.
func (s *Service) List(ctx context.Context) ([]Invoice, error) {
	return s.repo.List(ctx)
}

// Aging buckets outstanding invoices by days overdue as of now.
func (s *Service) Aging(ctx context.Context) ([]AgingBucket, error) {
	invoices, err := s.repo.ListOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	return BucketByAge(invoices, time.Now().UTC()), nil
}

// BucketByAge assigns each open invoice to a standard aging bucket
// based on how far past its due date the reference time is.
func BucketByAge(invoices []Invoice, asOf time.Time) []AgingBucket {
	buckets := []AgingBucket{
		{Bucket: "current"},
		{Bucket: "1-30"},
		{Bucket: "31-60"},
		{Bucket: "61-90"},
		{Bucket: "90+"},
	}
	for _, inv := range invoices {
		outstanding := inv.Outstanding()
		if outstanding <= 0 {
			continue
		}
		overdue := int(asOf.Sub(inv.DueDate).Hours() / 24)
		idx := 0
		switch {
		case overdue <= 0:
			idx = 0
		case overdue <= 30:
			idx = 1
		case overdue <= 60:
			idx = 2
		case overdue <= 90:
			idx = 3
		default:
			idx = 4
		}
		buckets[idx].Invoices++
		buckets[idx].Outstanding += outstanding
	}
	return buckets
}
