package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/db"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional ledger operations. GetForUpdate takes a
// row lock for the duration of the surrounding transaction, which is what
// serializes concurrent movements against the same material.
type TxRepository interface {
	GetForUpdate(ctx context.Context, materialID string) (Inventory, error)
	Save(ctx context.Context, inv Inventory) error
	InsertPurchase(ctx context.Context, entry PurchaseHistory) error
}

type txRepository struct {
	tx pgx.Tx
}

// NewTxRepository wraps an existing transaction so other modules can compose
// ledger operations into their own transaction boundary.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Get reads the current counters without locking.
func (r *Repository) Get(ctx context.Context, materialID string) (Inventory, error) {
	var inv Inventory
	err := r.pool.QueryRow(ctx, `SELECT material_id, on_hand, allocated, updated_at FROM inventory WHERE material_id=$1`, materialID).
		Scan(&inv.MaterialID, &inv.OnHand, &inv.Allocated, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Inventory{}, ErrNotFound
		}
		return Inventory{}, err
	}
	return inv, nil
}

// ListLevels returns every inventory row joined with its material.
func (r *Repository) ListLevels(ctx context.Context) ([]Level, error) {
	rows, err := r.pool.Query(ctx, `SELECT i.material_id, i.on_hand, i.allocated, i.updated_at, m.name, m.grade
FROM inventory i
JOIN materials m ON m.id = i.material_id
ORDER BY m.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	levels := []Level{}
	for rows.Next() {
		var lvl Level
		if err := rows.Scan(&lvl.MaterialID, &lvl.OnHand, &lvl.Allocated, &lvl.UpdatedAt, &lvl.MaterialName, &lvl.MaterialGrade); err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}
	return levels, rows.Err()
}

// ListPurchases returns receipt history for a material, newest first.
func (r *Repository) ListPurchases(ctx context.Context, materialID string) ([]PurchaseHistory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, material_id, quantity, vendor, received_at
FROM purchase_history
WHERE material_id=$1
ORDER BY received_at DESC, id DESC`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []PurchaseHistory{}
	for rows.Next() {
		var entry PurchaseHistory
		if err := rows.Scan(&entry.ID, &entry.MaterialID, &entry.Quantity, &entry.Vendor, &entry.ReceivedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *txRepository) GetForUpdate(ctx context.Context, materialID string) (Inventory, error) {
	var inv Inventory
	err := r.tx.QueryRow(ctx, `SELECT material_id, on_hand, allocated, updated_at FROM inventory WHERE material_id=$1 FOR UPDATE`, materialID).
		Scan(&inv.MaterialID, &inv.OnHand, &inv.Allocated, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Inventory{}, ErrNotFound
		}
		return Inventory{}, err
	}
	return inv, nil
}

func (r *txRepository) Save(ctx context.Context, inv Inventory) error {
	_, err := r.tx.Exec(ctx, `UPDATE inventory SET on_hand=$2, allocated=$3, updated_at=NOW() WHERE material_id=$1`, inv.MaterialID, inv.OnHand, inv.Allocated)
	return err
}

func (r *txRepository) InsertPurchase(ctx context.Context, entry PurchaseHistory) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO purchase_history (id, material_id, quantity, vendor, received_at)
VALUES ($1,$2,$3,$4,$5)`, entry.ID, entry.MaterialID, entry.Quantity, entry.Vendor, entry.ReceivedAt)
	return err
}
