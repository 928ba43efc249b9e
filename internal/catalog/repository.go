package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by service.
type TxRepository interface {
	InsertMaterial(ctx context.Context, m Material) error
	InitInventory(ctx context.Context, materialID string) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Get retrieves a material by ID.
func (r *Repository) Get(ctx context.Context, id string) (*Material, error) {
	var m Material
	err := r.pool.QueryRow(ctx, `SELECT id, name, grade, length, length_units, width, width_units, thickness, thickness_units, default_price, price_units, created_at
FROM materials WHERE id=$1`, id).Scan(
		&m.ID, &m.Name, &m.Grade, &m.Length, &m.LengthUnits, &m.Width, &m.WidthUnits,
		&m.Thickness, &m.ThicknessUnits, &m.DefaultPrice, &m.PriceUnits, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns all materials joined with their inventory counters.
func (r *Repository) List(ctx context.Context) ([]MaterialWithStock, error) {
	rows, err := r.pool.Query(ctx, `SELECT m.id, m.name, m.grade, m.length, m.length_units, m.width, m.width_units, m.thickness, m.thickness_units, m.default_price, m.price_units, m.created_at, i.on_hand, i.allocated
FROM materials m
JOIN inventory i ON i.material_id = m.id
ORDER BY m.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	materials := []MaterialWithStock{}
	for rows.Next() {
		var m MaterialWithStock
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Grade, &m.Length, &m.LengthUnits, &m.Width, &m.WidthUnits,
			&m.Thickness, &m.ThicknessUnits, &m.DefaultPrice, &m.PriceUnits, &m.CreatedAt,
			&m.OnHand, &m.Allocated,
		); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func (r *txRepository) InsertMaterial(ctx context.Context, m Material) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO materials (id, name, grade, length, length_units, width, width_units, thickness, thickness_units, default_price, price_units, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		m.ID, m.Name, m.Grade, m.Length, m.LengthUnits, m.Width, m.WidthUnits,
		m.Thickness, m.ThicknessUnits, m.DefaultPrice, m.PriceUnits, m.CreatedAt)
	return err
}

func (r *txRepository) InitInventory(ctx context.Context, materialID string) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO inventory (material_id, on_hand, allocated, updated_at)
VALUES ($1, 0, 0, NOW())`, materialID)
	return err
}
