package entity

// BatchSummary aggregates the accepted records of one batch.
// TotalTaxableAmount is always TotalGrandTotal minus TotalGSTAmount.
type BatchSummary struct {
	TotalInvoices      int     `json:"total_invoices"`
	TotalGrandTotal    float64 `json:"total_grand_total"`
	TotalGSTAmount     float64 `json:"total_gst_amount"`
	TotalTaxableAmount float64 `json:"total_taxable_amount"`
}
