// Package billgen builds manually entered bills: generated invoice
// identifiers, per-line tax computation, and the same record shape the
// extraction pipeline produces, so generated bills flow into the same
// summaries and exports.
package billgen

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/taxlens/invoice-analyzer/internal/entity"
)

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewInvoiceNumber returns "INV/<year>/<4-digit random>".
func NewInvoiceNumber() string {
	return fmt.Sprintf("INV/%d/%d", time.Now().Year(), 1000+rand.Intn(9000))
}

// NewGSTIN returns a random identifier matching the 15-character GSTIN
// shape (2-digit state code, 5 letters, 4 digits, letter, entity code,
// Z, check character). It is explicitly fake, used only to stamp
// generated bills.
func NewGSTIN() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d", 1+rand.Intn(37))
	for i := 0; i < 5; i++ {
		b.WriteByte(letters[rand.Intn(len(letters))])
	}
	fmt.Fprintf(&b, "%04d", rand.Intn(10000))
	b.WriteByte(letters[rand.Intn(len(letters))])
	b.WriteByte("123456789"[rand.Intn(9)])
	b.WriteByte('Z')
	b.WriteByte((letters + "0123456789")[rand.Intn(36)])
	return b.String()
}

// Party holds one side of a bill.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
	GSTIN   string `json:"gstin,omitempty"`
	Bank    string `json:"bank,omitempty"`
	State   string `json:"state,omitempty"`
	Place   string `json:"place,omitempty"`
}

// ItemInput is one picked catalog item with its quantity and price.
// HSNCode and GSTRatePercent come from the item catalog.
type ItemInput struct {
	ItemName       string  `json:"item_name"`
	Category       string  `json:"category,omitempty"`
	HSNCode        string  `json:"hsn_code"`
	GSTRatePercent float64 `json:"gst_rate_percent"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
}

// Input is everything the bill form collects.
type Input struct {
	InvoiceNumber string      `json:"invoice_number"`
	GSTIN         string      `json:"gstin"`
	Date          time.Time   `json:"date"`
	Seller        Party       `json:"seller"`
	Buyer         Party       `json:"buyer"`
	InterState    bool        `json:"inter_state"`
	Items         []ItemInput `json:"items"`
}

// TaxLine is the per-bill tax breakup: a CGST/SGST half-rate pair for
// intra-state bills, a single IGST line otherwise.
type TaxLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Bill is a computed bill ready for preview or PDF rendering.
type Bill struct {
	Record      entity.InvoiceRecord `json:"record"`
	Seller      Party                `json:"seller"`
	Buyer       Party                `json:"buyer"`
	TotalAmount float64              `json:"total_amount"`
	TotalGST    float64              `json:"total_gst"`
	GrandTotal  float64              `json:"grand_total"`
	TaxLines    []TaxLine            `json:"tax_lines"`
}

// Build computes line amounts, the tax breakup, and totals, and shapes
// the result as an InvoiceRecord. Identifiers left empty are generated.
func Build(in Input) Bill {
	number := in.InvoiceNumber
	if number == "" {
		number = NewInvoiceNumber()
	}
	gstin := in.GSTIN
	if gstin == "" {
		gstin = NewGSTIN()
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	var (
		items       []entity.LineItem
		totalAmount float64
		totalGST    float64
	)
	for _, it := range in.Items {
		amount := it.Quantity * it.UnitPrice
		totalAmount += amount
		totalGST += amount * it.GSTRatePercent / 100
		items = append(items, entity.LineItem{
			ItemName:  it.ItemName,
			Category:  it.Category,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Amount:    amount,
			HSNCode:   it.HSNCode,
			GSTRate:   formatRate(it.GSTRatePercent),
		})
	}
	if items == nil {
		items = []entity.LineItem{}
	}
	grandTotal := totalAmount + totalGST

	var taxLines []TaxLine
	if totalGST > 0 {
		if in.InterState {
			taxLines = []TaxLine{{Label: "IGST", Amount: round2(totalGST)}}
		} else {
			half := round2(totalGST / 2)
			taxLines = []TaxLine{
				{Label: "CGST", Amount: half},
				{Label: "SGST", Amount: half},
			}
		}
	}

	return Bill{
		Record: entity.InvoiceRecord{
			FileName:     "generated",
			InvoiceNo:    number,
			GSTINNo:      gstin,
			SellerName:   in.Seller.Name,
			CustomerName: in.Buyer.Name,
			GrandTotal:   round2(grandTotal),
			TotalGST:     round2(totalGST),
			Place:        in.Seller.Place,
			Date:         date.Format("2006.01.02"),
			State:        in.Seller.State,
			Items:        items,
		},
		Seller:      in.Seller,
		Buyer:       in.Buyer,
		TotalAmount: round2(totalAmount),
		TotalGST:    round2(totalGST),
		GrandTotal:  round2(grandTotal),
		TaxLines:    taxLines,
	}
}

func formatRate(percent float64) string {
	if percent == float64(int(percent)) {
		return fmt.Sprintf("%d%%", int(percent))
	}
	return fmt.Sprintf("%g%%", percent)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
