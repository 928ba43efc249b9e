package quotes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed quote persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the write operations used inside a transaction.
type TxRepository interface {
	InsertQuote(ctx context.Context, q Quote) error
	InsertItem(ctx context.Context, item QuoteItem) error
}

type txRepository struct {
	tx pgx.Tx
}

func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *Repository) Get(ctx context.Context, id string) (*Quote, error) {
	var q Quote
	err := r.pool.QueryRow(ctx, `SELECT id, customer_name, status, total, created_at, updated_at
FROM quotes WHERE id=$1`, id).Scan(&q.ID, &q.CustomerName, &q.Status, &q.Total, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	items, err := r.itemsFor(ctx, []string{q.ID})
	if err != nil {
		return nil, err
	}
	q.Items = items[q.ID]
	if q.Items == nil {
		q.Items = []QuoteItem{}
	}
	return &q, nil
}

func (r *Repository) List(ctx context.Context) ([]Quote, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, customer_name, status, total, created_at, updated_at
FROM quotes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := []Quote{}
	ids := []string{}
	for rows.Next() {
		var q Quote
		if err := rows.Scan(&q.ID, &q.CustomerName, &q.Status, &q.Total, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		q.Items = []QuoteItem{}
		quotes = append(quotes, q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return quotes, nil
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		if lines, ok := items[quotes[i].ID]; ok {
			quotes[i].Items = lines
		}
	}
	return quotes, nil
}

func (r *Repository) itemsFor(ctx context.Context, quoteIDs []string) (map[string][]QuoteItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, quote_id, material_id, quantity, price, notes, line_order
FROM quote_items WHERE quote_id = ANY($1) ORDER BY line_order ASC`, quoteIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]QuoteItem)
	for rows.Next() {
		var item QuoteItem
		if err := rows.Scan(&item.ID, &item.QuoteID, &item.MaterialID, &item.Quantity, &item.Price, &item.Notes, &item.LineOrder); err != nil {
			return nil, err
		}
		out[item.QuoteID] = append(out[item.QuoteID], item)
	}
	return out, rows.Err()
}

func (r *txRepository) InsertQuote(ctx context.Context, q Quote) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO quotes (id, customer_name, status, total, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)`, q.ID, q.CustomerName, q.Status, q.Total, q.CreatedAt, q.UpdatedAt)
	return err
}

func (r *txRepository) InsertItem(ctx context.Context, item QuoteItem) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO quote_items (id, quote_id, material_id, quantity, price, notes, line_order)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, item.ID, item.QuoteID, item.MaterialID, item.Quantity, item.Price, item.Notes, item.LineOrder)
	return err
}
