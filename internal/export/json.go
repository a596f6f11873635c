package export

import (
	"encoding/json"
	"io"

	"github.com/taxlens/invoice-analyzer/internal/entity"
)

// Document is the exported JSON shape: every invoice with its seller,
// customer, and financial groupings, plus the batch summary.
type Document struct {
	Invoices []DocumentInvoice   `json:"invoices"`
	Summary  entity.BatchSummary `json:"summary_statistics"`
}

type DocumentInvoice struct {
	FileName      string            `json:"file_name"`
	InvoiceNumber string            `json:"invoice_number"`
	InvoiceDate   string            `json:"invoice_date"`
	SellerInfo    SellerInfo        `json:"seller_info"`
	CustomerInfo  CustomerInfo      `json:"customer_info"`
	Financial     FinancialSummary  `json:"financial_summary"`
	Items         []entity.LineItem `json:"items"`
}

type SellerInfo struct {
	Name  string `json:"name"`
	GSTIN string `json:"gstin"`
	Place string `json:"place"`
	State string `json:"state"`
}

type CustomerInfo struct {
	Name string `json:"name"`
}

type FinancialSummary struct {
	GrandTotal    float64 `json:"grand_total"`
	TotalGST      float64 `json:"total_gst"`
	TaxableAmount float64 `json:"taxable_amount"`
}

// BuildDocument maps records into the export shape.
func BuildDocument(records []entity.InvoiceRecord) Document {
	doc := Document{
		Invoices: make([]DocumentInvoice, 0, len(records)),
		Summary:  Summarize(records),
	}
	for _, r := range records {
		items := r.Items
		if items == nil {
			items = []entity.LineItem{}
		}
		doc.Invoices = append(doc.Invoices, DocumentInvoice{
			FileName:      r.FileName,
			InvoiceNumber: r.InvoiceNo,
			InvoiceDate:   r.Date,
			SellerInfo: SellerInfo{
				Name:  r.SellerName,
				GSTIN: r.GSTINNo,
				Place: r.Place,
				State: r.State,
			},
			CustomerInfo: CustomerInfo{Name: r.CustomerName},
			Financial: FinancialSummary{
				GrandTotal:    r.GrandTotal,
				TotalGST:      r.TotalGST,
				TaxableAmount: r.TaxableAmount(),
			},
			Items: items,
		})
	}
	return doc
}

// WriteJSON streams the export document to w with indentation, ready
// for an attachment download.
func WriteJSON(w io.Writer, records []entity.InvoiceRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDocument(records))
}
