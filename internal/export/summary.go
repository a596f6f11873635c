// Package export turns accepted invoice records into the batch
// summary and the JSON, CSV, and XLSX download formats.
package export

import "github.com/taxlens/invoice-analyzer/internal/entity"

// Summarize aggregates a batch of accepted records. It is pure:
// calling it twice over the same slice yields identical summaries, and
// TotalTaxableAmount is always TotalGrandTotal minus TotalGSTAmount.
func Summarize(records []entity.InvoiceRecord) entity.BatchSummary {
	var s entity.BatchSummary
	s.TotalInvoices = len(records)
	for _, r := range records {
		s.TotalGrandTotal += r.GrandTotal
		s.TotalGSTAmount += r.TotalGST
	}
	s.TotalTaxableAmount = s.TotalGrandTotal - s.TotalGSTAmount
	return s
}
