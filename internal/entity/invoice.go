package entity

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is one billed line on an invoice.
type LineItem struct {
	ItemName  string  `json:"item_name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Amount    float64 `json:"amount"`
	HSNCode   string  `json:"hsn_code"`
	GSTRate   string  `json:"gst_rate"`
	Category  string  `json:"category,omitempty"`
}

// InvoiceRecord is the reconciled extraction result for one document.
// Every field is always populated: reconciliation substitutes defaults
// ("", 0, empty items) for anything neither the model nor the fallback
// rules could recover.
type InvoiceRecord struct {
	FileName     string     `json:"file_name"`
	InvoiceNo    string     `json:"invoice_no"`
	GSTINNo      string     `json:"gstin_no"`
	SellerName   string     `json:"seller_name"`
	CustomerName string     `json:"customer_name"`
	GrandTotal   float64    `json:"grand_total"`
	TotalGST     float64    `json:"total_gst"`
	Place        string     `json:"place"`
	Date         string     `json:"date"`
	State        string     `json:"state"`
	Items        []LineItem `json:"items" gorm:"serializer:json"`
}

// TaxableAmount is the pre-GST portion of the invoice total.
func (r InvoiceRecord) TaxableAmount() float64 {
	return r.GrandTotal - r.TotalGST
}

// Invoice is a persisted, accepted invoice record.
type Invoice struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	BatchID       uuid.UUID  `json:"batch_id" gorm:"type:uuid;index"`
	FileID        *uuid.UUID `json:"file_id,omitempty" gorm:"type:uuid"`
	InvoiceRecord `gorm:"embedded"`
	CreatedAt     time.Time `json:"created_at"`
}
