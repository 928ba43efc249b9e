package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OverdueScanner reports unsettled invoices past their due date.
type OverdueScanner struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewOverdueScanner(pool *pgxpool.Pool, logger *slog.Logger) *OverdueScanner {
	return &OverdueScanner{pool: pool, logger: logger}
}

// Handle processes TaskTypeInvoiceOverdue tasks.
func (s *OverdueScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload InvoiceOverduePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	rows, err := s.pool.Query(ctx, `SELECT number, due_date, total
FROM invoices WHERE status <> 'PAID' AND due_date < $1 ORDER BY due_date ASC`, asOf)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var number string
		var dueDate time.Time
		var total float64
		if err := rows.Scan(&number, &dueDate, &total); err != nil {
			return err
		}
		count++
		s.logger.Warn("invoice overdue",
			slog.String("number", number),
			slog.Time("dueDate", dueDate),
			slog.Float64("total", total),
		)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	s.logger.Info("overdue scan finished", slog.Int("overdue", count))
	return nil
}
