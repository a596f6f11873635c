package reconcile

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTotalGSTSumsSplitComponents(t *testing.T) {
	text := `Subtotal: ₹1728.81
CGST @9%: ₹155.59
SGST @9%: ₹155.59
Grand Total: ₹2039.99`

	got := TotalGSTFromText(text)
	if !almostEqual(got, 311.18) {
		t.Fatalf("expected 311.18, got %v", got)
	}
}

func TestTotalGSTSumsIGSTAlone(t *testing.T) {
	text := `Taxable Value: 2118.64
IGST @18%: ₹381.36
Grand Total: 2500.00`

	got := TotalGSTFromText(text)
	if !almostEqual(got, 381.36) {
		t.Fatalf("expected 381.36, got %v", got)
	}
}

func TestTotalGSTPrefersExplicitTotal(t *testing.T) {
	// An explicit consolidated line wins even when the split
	// components are also itemized, avoiding double counting.
	text := `CGST @9%: ₹50.00
SGST @9%: ₹50.00
Total GST: ₹100.00`

	got := TotalGSTFromText(text)
	if !almostEqual(got, 100.00) {
		t.Fatalf("expected 100.00, got %v", got)
	}
}

func TestTotalGSTSumsMultipleRates(t *testing.T) {
	text := `CGST 2.5%: ₹39.29
SGST 2.5%: ₹39.29
CGST 6%: ₹26.79
SGST 6%: ₹26.79
CGST 9%: ₹155.59
SGST 9%: ₹155.59`

	got := TotalGSTFromText(text)
	if !almostEqual(got, 443.34) {
		t.Fatalf("expected 443.34, got %v", got)
	}
}

func TestTotalGSTStripsThousandsSeparators(t *testing.T) {
	got := TotalGSTFromText("Total Tax: ₹1,234.56")
	if !almostEqual(got, 1234.56) {
		t.Fatalf("expected 1234.56, got %v", got)
	}
}

func TestTotalGSTNoMatchesYieldsZero(t *testing.T) {
	got := TotalGSTFromText("no tax lines anywhere in this text")
	if got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
