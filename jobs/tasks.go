package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeInvoiceOverdue flags invoices past their due date.
	TaskTypeInvoiceOverdue = "invoice:overdue_scan"
	// TaskTypeStockIntegrity verifies the inventory counters.
	TaskTypeStockIntegrity = "inventory:integrity_scan"
)

// InvoiceOverduePayload parameterizes the overdue scan.
type InvoiceOverduePayload struct {
	AsOf time.Time `json:"asOf"`
}

// NewInvoiceOverdueTask constructs an Asynq task.
func NewInvoiceOverdueTask(payload InvoiceOverduePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInvoiceOverdue, data), nil
}

// NewStockIntegrityTask constructs an Asynq task with no payload.
func NewStockIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskTypeStockIntegrity, nil)
}
