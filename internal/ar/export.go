package ar

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ExportCSV streams all invoices as CSV. Amounts are grouped with
// thousands separators for spreadsheet consumers.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	printer := message.NewPrinter(language.English)
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"number", "salesOrderId", "status", "dueDate", "total", "paid", "outstanding"}); err != nil {
		return err
	}
	for _, inv := range invoices {
		paid := 0.0
		for _, p := range inv.Payments {
			paid += p.Amount
		}
		record := []string{
			inv.Number,
			inv.SalesOrderID,
			string(inv.Status),
			inv.DueDate.Format(time.DateOnly),
			printer.Sprintf("%.2f", inv.Total),
			printer.Sprintf("%.2f", paid),
			printer.Sprintf("%.2f", inv.Outstanding()),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
