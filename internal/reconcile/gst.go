package reconcile

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	totalGSTPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total GST\s*:?\s*[₹\s]*([0-9,]+\.?[0-9]*)`),
		regexp.MustCompile(`(?i)Total Tax\s*:?\s*[₹\s]*([0-9,]+\.?[0-9]*)`),
		regexp.MustCompile(`(?i)GST Total\s*:?\s*[₹\s]*([0-9,]+\.?[0-9]*)`),
	}
	cgstPattern = regexp.MustCompile(`(?i)CGST\s*@?\s*[0-9.%]*\s*:?\s*[₹\s]*([0-9,]+\.?[0-9]*)`)
	sgstPattern = regexp.MustCompile(`(?i)SGST\s*@?\s*[0-9.%]*\s*:?\s*[₹\s]*([0-9,]+\.?[0-9]*)`)
	igstPattern = regexp.MustCompile(`(?i)IGST\s*@?\s*[0-9.%]*\s*:?\s*[₹\s]*([0-9,]+\.?[0-9]*)`)
)

// TotalGSTFromText recovers the document's total tax from the raw
// transcript. Three methods run in strict order and the first one
// yielding a positive sum wins:
//
//  1. sum every explicit "Total GST" / "Total Tax" / "GST Total" line;
//  2. sum every CGST amount plus every SGST amount;
//  3. sum every IGST amount.
//
// The ordering avoids double counting: an invoice reporting a
// consolidated total usually also itemizes the split components.
func TotalGSTFromText(text string) float64 {
	var total float64
	for _, p := range totalGSTPatterns {
		total += sumAmounts(p, text)
	}
	if total > 0 {
		return total
	}

	total = sumAmounts(cgstPattern, text) + sumAmounts(sgstPattern, text)
	if total > 0 {
		return total
	}

	return sumAmounts(igstPattern, text)
}

func sumAmounts(pattern *regexp.Regexp, text string) float64 {
	var sum float64
	for _, match := range pattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			continue
		}
		sum += v
	}
	return sum
}
