package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloudforge-erp/cloudforge-erp/internal/inventory"
	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/db"
	"github.com/cloudforge-erp/cloudforge-erp/internal/sales/quotes"
)

// Repository provides PostgreSQL backed sales order persistence.
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

func (r *Repository) Get(ctx context.Context, id string) (*SalesOrder, error) {
	var order SalesOrder
	err := r.pool.QueryRow(ctx, `SELECT id, quote_id, customer_name, created_at
FROM sales_orders WHERE id=$1`, id).Scan(&order.ID, &order.QuoteID, &order.CustomerName, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *Repository) List(ctx context.Context) ([]OrderWithShipments, error) {
	rows, err := r.pool.Query(ctx, `SELECT o.id, o.quote_id, o.customer_name, o.created_at, q.total
FROM sales_orders o
JOIN quotes q ON q.id = o.quote_id
ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []OrderWithShipments{}
	ids := []string{}
	for rows.Next() {
		var o OrderWithShipments
		if err := rows.Scan(&o.ID, &o.QuoteID, &o.CustomerName, &o.CreatedAt, &o.QuoteTotal); err != nil {
			return nil, err
		}
		o.Status = "OPEN"
		o.Shipments = []ShipmentInfo{}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	shipRows, err := r.pool.Query(ctx, `SELECT id, sales_order_id, carrier, tracking, estimated_delivery, created_at
FROM shipments WHERE sales_order_id = ANY($1) ORDER BY created_at ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer shipRows.Close()

	byOrder := make(map[string][]ShipmentInfo)
	for shipRows.Next() {
		var orderID string
		var s ShipmentInfo
		if err := shipRows.Scan(&s.ID, &orderID, &s.Carrier, &s.Tracking, &s.EstimatedDelivery, &s.CreatedAt); err != nil {
			return nil, err
		}
		byOrder[orderID] = append(byOrder[orderID], s)
	}
	if err := shipRows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if shipments, ok := byOrder[orders[i].ID]; ok {
			orders[i].Shipments = shipments
			orders[i].Status = "SHIPPED"
		}
	}
	return orders, nil
}

func (r *txRepository) MarkQuoteApproved(ctx context.Context, quoteID string) (bool, error) {
	tag, err := r.tx.Exec(ctx, `UPDATE quotes SET status=$1, updated_at=NOW()
WHERE id=$2 AND status=$3`, quotes.StatusApproved, quoteID, quotes.StatusDraft)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *txRepository) InsertOrder(ctx context.Context, order SalesOrder) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO sales_orders (id, quote_id, customer_name, created_at)
VALUES ($1,$2,$3,$4)`, order.ID, order.QuoteID, order.CustomerName, order.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *txRepository) Inventory() inventory.TxRepository {
	return inventory.NewTxRepository(r.tx)
}
