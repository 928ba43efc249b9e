package ar

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed receivables persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InvoiceTxRepository issues invoices inside a caller owned
// transaction. The shipment workflow composes it with its own writes.
type InvoiceTxRepository interface {
	ExistsForOrder(ctx context.Context, salesOrderID string) (bool, error)
	NextNumber(ctx context.Context) (string, error)
	InsertInvoice(ctx context.Context, inv Invoice) error
}

// TxRepository exposes the payment recording operations.
type TxRepository interface {
	GetInvoiceForUpdate(ctx context.Context, id string) (*Invoice, error)
	InsertPayment(ctx context.Context, p Payment) error
	SumPayments(ctx context.Context, invoiceID string) (float64, error)
	UpdateStatus(ctx context.Context, id string, status InvoiceStatus) error
}

type invoiceTxRepository struct {
	tx pgx.Tx
}

// NewInvoiceTxRepository wraps an open transaction.
func NewInvoiceTxRepository(tx pgx.Tx) InvoiceTxRepository {
	return &invoiceTxRepository{tx: tx}
}

func (r *invoiceTxRepository) ExistsForOrder(ctx context.Context, salesOrderID string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invoices WHERE sales_order_id=$1)`, salesOrderID).Scan(&exists)
	return exists, err
}

func (r *invoiceTxRepository) NextNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.tx.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%06d", seq), nil
}

func (r *invoiceTxRepository) InsertInvoice(ctx context.Context, inv Invoice) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO invoices (id, sales_order_id, number, status, due_date, subtotal, tax_rate, discount, total, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		inv.ID, inv.SalesOrderID, inv.Number, inv.Status, inv.DueDate,
		inv.Subtotal, inv.TaxRate, inv.Discount, inv.Total, inv.CreatedAt)
	return err
}

type txRepository struct {
	tx pgx.Tx
}

func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *txRepository) GetInvoiceForUpdate(ctx context.Context, id string) (*Invoice, error) {
	var inv Invoice
	err := r.tx.QueryRow(ctx, `SELECT id, sales_order_id, number, status, due_date, subtotal, tax_rate, discount, total, created_at
FROM invoices WHERE id=$1 FOR UPDATE`, id).Scan(
		&inv.ID, &inv.SalesOrderID, &inv.Number, &inv.Status, &inv.DueDate,
		&inv.Subtotal, &inv.TaxRate, &inv.Discount, &inv.Total, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *txRepository) InsertPayment(ctx context.Context, p Payment) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO payments (id, invoice_id, amount, method, reference, paid_at)
VALUES ($1,$2,$3,$4,$5,$6)`, p.ID, p.InvoiceID, p.Amount, p.Method, p.Reference, p.PaidAt)
	return err
}

func (r *txRepository) SumPayments(ctx context.Context, invoiceID string) (float64, error) {
	var sum float64
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id=$1`, invoiceID).Scan(&sum)
	return sum, err
}

func (r *txRepository) UpdateStatus(ctx context.Context, id string, status InvoiceStatus) error {
	_, err := r.tx.Exec(ctx, `UPDATE invoices SET status=$1 WHERE id=$2`, status, id)
	return err
}

// Get loads one invoice with its payments.
func (r *Repository) Get(ctx context.Context, id string) (*Invoice, error) {
	invs, err := r.query(ctx, `WHERE i.id=$1`, id)
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, ErrNotFound
	}
	return &invs[0], nil
}

// List returns all invoices with their payments, newest first.
func (r *Repository) List(ctx context.Context) ([]Invoice, error) {
	return r.query(ctx, ``)
}

// ListOutstanding returns invoices that are not fully settled.
func (r *Repository) ListOutstanding(ctx context.Context) ([]Invoice, error) {
	return r.query(ctx, `WHERE i.status <> 'PAID'`)
}

func (r *Repository) query(ctx context.Context, where string, args ...any) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT i.id, i.sales_order_id, i.number, i.status, i.due_date, i.subtotal, i.tax_rate, i.discount, i.total, i.created_at
FROM invoices i `+where+` ORDER BY i.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []Invoice{}
	ids := []string{}
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.SalesOrderID, &inv.Number, &inv.Status, &inv.DueDate,
			&inv.Subtotal, &inv.TaxRate, &inv.Discount, &inv.Total, &inv.CreatedAt); err != nil {
			return nil, err
		}
		inv.Payments = []Payment{}
		invoices = append(invoices, inv)
		ids = append(ids, inv.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return invoices, nil
	}

	payRows, err := r.pool.Query(ctx, `SELECT id, invoice_id, amount, method, reference, paid_at
FROM payments WHERE invoice_id = ANY($1) ORDER BY paid_at ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer payRows.Close()

	byInvoice := make(map[string][]Payment)
	for payRows.Next() {
		var p Payment
		if err := payRows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference, &p.PaidAt); err != nil {
			return nil, err
		}
		byInvoice[p.InvoiceID] = append(byInvoice[p.InvoiceID], p)
	}
	if err := payRows.Err(); err != nil {
		return nil, err
	}
	for i := range invoices {
		if payments, ok := byInvoice[invoices[i].ID]; ok {
			invoices[i].Payments = payments
		}
	}
	return invoices, nil
}
