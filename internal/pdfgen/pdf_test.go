package pdfgen

import (
	"bytes"
	"testing"
	"time"

	"github.com/taxlens/invoice-analyzer/internal/billgen"
)

func TestAmountInWords(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "Zero Rupees Only"},
		{5, "Five Rupees Only"},
		{19, "Nineteen Rupees Only"},
		{42, "Forty Two Rupees Only"},
		{100, "One Hundred Rupees Only"},
		{218, "Two Hundred Eighteen Rupees Only"},
		{1000, "One Thousand Rupees Only"},
		{94960, "Ninety Four Thousand Nine Hundred Sixty Rupees Only"},
		{100000, "One Lakh Rupees Only"},
		{2500000, "Twenty Five Lakh Rupees Only"},
		{10000000, "One Crore Rupees Only"},
		{12345678, "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight Rupees Only"},
		{12.50, "Twelve Rupees and Fifty Paise Only"},
	}
	for _, tc := range cases {
		if got := AmountInWords(tc.in); got != tc.want {
			t.Errorf("AmountInWords(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInvoicePDF(t *testing.T) {
	bill := billgen.Build(billgen.Input{
		InvoiceNumber: "INV/2024/4242",
		GSTIN:         "27ABCDE1234F1Z5",
		Date:          time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Seller:        billgen.Party{Name: "Acme Traders", Address: "12 MG Road, Mumbai", Contact: "9000000000"},
		Buyer:         billgen.Party{Name: "Zen Retail", Address: "4 Park Street, Pune"},
		Items: []billgen.ItemInput{
			{ItemName: "Laptop", HSNCode: "8471", GSTRatePercent: 18, Quantity: 1, UnitPrice: 50000},
		},
	})

	b, err := InvoicePDF(bill)
	if err != nil {
		t.Fatalf("InvoicePDF: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}
}
