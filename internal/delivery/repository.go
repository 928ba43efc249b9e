package delivery

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloudforge-erp/cloudforge-erp/internal/ar"
	"github.com/cloudforge-erp/cloudforge-erp/internal/inventory"
	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed shipment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// GetOrderForShipment loads the order header, its quote total and
// the allocated lines.
func (r *Repository) GetOrderForShipment(ctx context.Context, orderID string) (*OrderInfo, error) {
	var info OrderInfo
	var quoteID string
	err := r.pool.QueryRow(ctx, `SELECT o.id, o.quote_id, o.customer_name, q.total
FROM sales_orders o
JOIN quotes q ON q.id = o.quote_id
WHERE o.id=$1`, orderID).Scan(&info.ID, &quoteID, &info.CustomerName, &info.Total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT material_id, quantity FROM quote_items
WHERE quote_id=$1 ORDER BY line_order ASC`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.MaterialID, &line.Quantity); err != nil {
			return nil, err
		}
		info.Items = append(info.Items, line)
	}
	return &info, rows.Err()
}

func (r *Repository) ListForOrder(ctx context.Context, orderID string) ([]Shipment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, sales_order_id, carrier, tracking, estimated_delivery, created_at
FROM shipments WHERE sales_order_id=$1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shipments := []Shipment{}
	for rows.Next() {
		var s Shipment
		if err := rows.Scan(&s.ID, &s.SalesOrderID, &s.Carrier, &s.Tracking, &s.EstimatedDelivery, &s.CreatedAt); err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, rows.Err()
}

// LockOrder takes a row lock on the sales order so concurrent
// shipment attempts for the same order serialize.
func (r *txRepository) LockOrder(ctx context.Context, orderID string) error {
	var id string
	err := r.tx.QueryRow(ctx, `SELECT id FROM sales_orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}

func (r *txRepository) InsertShipment(ctx context.Context, s Shipment) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO shipments (id, sales_order_id, carrier, tracking, estimated_delivery, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`, s.ID, s.SalesOrderID, s.Carrier, s.Tracking, s.EstimatedDelivery, s.CreatedAt)
	return err
}

func (r *txRepository) Inventory() inventory.TxRepository {
	return inventory.NewTxRepository(r.tx)
}

func (r *txRepository) Invoices() ar.InvoiceTxRepository {
	return ar.NewInvoiceTxRepository(r.tx)
}
