package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IntegrityChecker verifies that no inventory counter went negative.
type IntegrityChecker struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIntegrityChecker(pool *pgxpool.Pool, logger *slog.Logger) *IntegrityChecker {
	return &IntegrityChecker{pool: pool, logger: logger}
}

// Handle processes TaskTypeStockIntegrity tasks. A negative counter
// means an allocation or release bypassed the ledger, which should
// be impossible, so it fails the task loudly.
func (c *IntegrityChecker) Handle(ctx context.Context, _ *asynq.Task) error {
	rows, err := c.pool.Query(ctx, `SELECT material_id, on_hand, allocated
FROM inventory WHERE on_hand < 0 OR allocated < 0`)
	if err != nil {
		return err
	}
	defer rows.Close()

	violations := 0
	for rows.Next() {
		var materialID string
		var onHand, allocated float64
		if err := rows.Scan(&materialID, &onHand, &allocated); err != nil {
			return err
		}
		violations++
		c.logger.Error("negative inventory counter",
			slog.String("materialId", materialID),
			slog.Float64("onHand", onHand),
			slog.Float64("allocated", allocated),
		)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if violations > 0 {
		return fmt.Errorf("stock integrity: %d materials with negative counters", violations)
	}
	c.logger.Info("stock integrity check passed")
	return nil
}
