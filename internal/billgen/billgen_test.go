package billgen

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

var gstinShape = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

func TestNewInvoiceNumber(t *testing.T) {
	year := time.Now().Format("2006")
	for i := 0; i < 20; i++ {
		n := NewInvoiceNumber()
		parts := strings.Split(n, "/")
		if len(parts) != 3 || parts[0] != "INV" || parts[1] != year {
			t.Fatalf("invoice number %q does not match INV/<year>/<num>", n)
		}
		if len(parts[2]) != 4 {
			t.Fatalf("invoice number %q suffix is not 4 digits", n)
		}
	}
}

func TestNewGSTINShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		g := NewGSTIN()
		if !gstinShape.MatchString(g) {
			t.Fatalf("generated GSTIN %q does not match the 15-char shape", g)
		}
	}
}

func testInput() Input {
	return Input{
		InvoiceNumber: "INV/2024/1234",
		GSTIN:         "27ABCDE1234F1Z5",
		Date:          time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Seller:        Party{Name: "Acme Traders", State: "Maharashtra", Place: "Mumbai"},
		Buyer:         Party{Name: "Zen Retail"},
		Items: []ItemInput{
			{ItemName: "Laptop", HSNCode: "8471", GSTRatePercent: 18, Quantity: 2, UnitPrice: 40000},
			{ItemName: "Mouse", HSNCode: "8472", GSTRatePercent: 12, Quantity: 1, UnitPrice: 500},
		},
	}
}

func TestBuildTotals(t *testing.T) {
	bill := Build(testInput())

	if bill.TotalAmount != 80500 {
		t.Errorf("TotalAmount = %v, want 80500", bill.TotalAmount)
	}
	// 80000*0.18 + 500*0.12 = 14400 + 60
	if bill.TotalGST != 14460 {
		t.Errorf("TotalGST = %v, want 14460", bill.TotalGST)
	}
	if bill.GrandTotal != 94960 {
		t.Errorf("GrandTotal = %v, want 94960", bill.GrandTotal)
	}

	rec := bill.Record
	if rec.InvoiceNo != "INV/2024/1234" {
		t.Errorf("InvoiceNo = %q", rec.InvoiceNo)
	}
	if rec.Date != "2024.03.04" {
		t.Errorf("Date = %q, want 2024.03.04", rec.Date)
	}
	if len(rec.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(rec.Items))
	}
	if rec.Items[0].Amount != 80000 {
		t.Errorf("line amount = %v, want 80000", rec.Items[0].Amount)
	}
	if rec.Items[0].GSTRate != "18%" {
		t.Errorf("gst rate = %q, want 18%%", rec.Items[0].GSTRate)
	}
	if rec.GrandTotal-rec.TotalGST != bill.TotalAmount {
		t.Errorf("taxable = %v, want %v", rec.GrandTotal-rec.TotalGST, bill.TotalAmount)
	}
}

func TestBuildTaxSplit(t *testing.T) {
	in := testInput()

	intra := Build(in)
	if len(intra.TaxLines) != 2 {
		t.Fatalf("intra-state tax lines = %d, want 2", len(intra.TaxLines))
	}
	if intra.TaxLines[0].Label != "CGST" || intra.TaxLines[1].Label != "SGST" {
		t.Errorf("labels = %s/%s, want CGST/SGST", intra.TaxLines[0].Label, intra.TaxLines[1].Label)
	}
	if intra.TaxLines[0].Amount != 7230 || intra.TaxLines[1].Amount != 7230 {
		t.Errorf("half amounts = %v/%v, want 7230 each", intra.TaxLines[0].Amount, intra.TaxLines[1].Amount)
	}

	in.InterState = true
	inter := Build(in)
	if len(inter.TaxLines) != 1 || inter.TaxLines[0].Label != "IGST" {
		t.Fatalf("inter-state tax lines = %+v, want single IGST", inter.TaxLines)
	}
	if inter.TaxLines[0].Amount != 14460 {
		t.Errorf("IGST = %v, want 14460", inter.TaxLines[0].Amount)
	}
}

func TestBuildGeneratesIdentifiers(t *testing.T) {
	bill := Build(Input{Seller: Party{Name: "S"}, Buyer: Party{Name: "B"}})
	if bill.Record.InvoiceNo == "" {
		t.Error("empty invoice number not generated")
	}
	if !gstinShape.MatchString(bill.Record.GSTINNo) {
		t.Errorf("generated GSTIN %q invalid", bill.Record.GSTINNo)
	}
	if bill.Record.Items == nil {
		t.Error("items should default to empty slice")
	}
	if len(bill.TaxLines) != 0 {
		t.Errorf("tax lines for empty bill = %+v", bill.TaxLines)
	}
}
