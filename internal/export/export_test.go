package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/taxlens/invoice-analyzer/internal/entity"
)

func sampleRecords() []entity.InvoiceRecord {
	return []entity.InvoiceRecord{
		{
			FileName:     "invoice_a.pdf",
			InvoiceNo:    "INV-001",
			GSTINNo:      "27ABCDE1234F1Z5",
			SellerName:   "Acme Traders",
			CustomerName: "Zen Retail",
			GrandTotal:   1180,
			TotalGST:     180,
			Place:        "Mumbai",
			Date:         "2024.01.15",
			State:        "Maharashtra",
			Items: []entity.LineItem{
				{ItemName: "Widget", Quantity: 2, UnitPrice: 500, Amount: 1000, HSNCode: "8471", GSTRate: "18%"},
			},
		},
		{
			FileName:   "invoice_b.jpg",
			InvoiceNo:  "INV-002",
			GrandTotal: 550.5,
			TotalGST:   50.5,
		},
	}
}

func TestSummarize(t *testing.T) {
	records := sampleRecords()
	s := Summarize(records)

	if s.TotalInvoices != 2 {
		t.Errorf("TotalInvoices = %d, want 2", s.TotalInvoices)
	}
	if s.TotalGrandTotal != 1730.5 {
		t.Errorf("TotalGrandTotal = %v, want 1730.5", s.TotalGrandTotal)
	}
	if s.TotalGSTAmount != 230.5 {
		t.Errorf("TotalGSTAmount = %v, want 230.5", s.TotalGSTAmount)
	}
	if s.TotalTaxableAmount != s.TotalGrandTotal-s.TotalGSTAmount {
		t.Errorf("TotalTaxableAmount = %v, want grand total minus gst", s.TotalTaxableAmount)
	}

	// Idempotence over the same slice.
	if again := Summarize(records); again != s {
		t.Errorf("second Summarize = %+v, want %+v", again, s)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalInvoices != 0 || s.TotalGrandTotal != 0 || s.TotalGSTAmount != 0 || s.TotalTaxableAmount != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero summary", s)
	}
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(sampleRecords())

	if len(doc.Invoices) != 2 {
		t.Fatalf("invoices = %d, want 2", len(doc.Invoices))
	}
	first := doc.Invoices[0]
	if first.SellerInfo.GSTIN != "27ABCDE1234F1Z5" {
		t.Errorf("seller gstin = %q", first.SellerInfo.GSTIN)
	}
	if first.Financial.TaxableAmount != 1000 {
		t.Errorf("taxable = %v, want 1000", first.Financial.TaxableAmount)
	}
	// Item-less invoices export an empty array, never null.
	if doc.Invoices[1].Items == nil {
		t.Error("item-less invoice exported nil items")
	}
	if doc.Summary.TotalInvoices != 2 {
		t.Errorf("summary invoices = %d", doc.Summary.TotalInvoices)
	}
}

func TestWriteJSONShape(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded struct {
		Invoices []map[string]any `json:"invoices"`
		Summary  map[string]any   `json:"summary_statistics"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(decoded.Invoices) != 2 {
		t.Fatalf("invoices = %d, want 2", len(decoded.Invoices))
	}
	for _, key := range []string{"total_invoices", "total_grand_total", "total_gst_amount", "total_taxable_amount"} {
		if _, ok := decoded.Summary[key]; !ok {
			t.Errorf("summary_statistics missing %q", key)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read exported csv: %v", err)
	}
	// header + 1 item row + 1 N/A row + marker + 4 stat rows
	if len(rows) != 8 {
		t.Fatalf("rows = %d, want 8", len(rows))
	}
	if len(rows[0]) != 18 {
		t.Errorf("columns = %d, want 18", len(rows[0]))
	}
	if rows[1][8] != "Widget" {
		t.Errorf("item name = %q, want Widget", rows[1][8])
	}
	if rows[2][8] != "N/A" {
		t.Errorf("item-less row item name = %q, want N/A", rows[2][8])
	}
	if rows[3][0] != "SUMMARY STATISTICS" {
		t.Errorf("marker row = %q", rows[3][0])
	}
	if rows[4][0] != "Total Invoices: 2" {
		t.Errorf("invoice count row = %q", rows[4][0])
	}
	if !strings.HasPrefix(rows[5][0], "Total Grand Total: 1,730.50") {
		t.Errorf("grand total row = %q", rows[5][0])
	}
}

func TestXLSX(t *testing.T) {
	b, err := XLSX(sampleRecords())
	if err != nil {
		t.Fatalf("XLSX: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("empty workbook")
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(b, []byte("PK")) {
		t.Errorf("workbook does not look like a zip archive: % x", b[:4])
	}
}

func TestGroupAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{999.5, "999.50"},
		{1000, "1,000.00"},
		{1234567.891, "1,234,567.89"},
		{-54321, "-54,321.00"},
	}
	for _, tc := range cases {
		if got := groupAmount(tc.in); got != tc.want {
			t.Errorf("groupAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
