package reconcile

import (
	"regexp"
	"strconv"
	"strings"
)

// stringRule pairs a compiled pattern with an extractor turning its
// submatches into a field value. Rules for one field form an ordered
// list; the first rule whose pattern matches and whose extractor
// accepts the match wins.
type stringRule struct {
	pattern *regexp.Regexp
	extract func(match []string) (string, bool)
}

// numberRule is the numeric counterpart: the extractor also owns the
// conversion, so a non-numeric capture skips to the next rule instead
// of failing the field.
type numberRule struct {
	pattern *regexp.Regexp
	extract func(match []string) (float64, bool)
}

func firstString(rules []stringRule, text string) (string, bool) {
	for _, r := range rules {
		match := r.pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if v, ok := r.extract(match); ok {
			return v, true
		}
	}
	return "", false
}

func firstNumber(rules []numberRule, text string) (float64, bool) {
	for _, r := range rules {
		match := r.pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if v, ok := r.extract(match); ok {
			return v, true
		}
	}
	return 0, false
}

func capture(i int) func([]string) (string, bool) {
	return func(match []string) (string, bool) {
		if i >= len(match) {
			return "", false
		}
		return match[i], true
	}
}

func captureTrimmed(i int) func([]string) (string, bool) {
	return func(match []string) (string, bool) {
		if i >= len(match) {
			return "", false
		}
		return strings.TrimSpace(match[i]), true
	}
}

// captureAmount strips thousands separators before conversion.
func captureAmount(i int) func([]string) (float64, bool) {
	return func(match []string) (float64, bool) {
		if i >= len(match) {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(match[i], ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
}

var invoiceNoRules = []stringRule{
	{regexp.MustCompile(`(?i)Invoice No\.?\s*:?\s*([A-Z0-9-]+)`), captureTrimmed(1)},
	{regexp.MustCompile(`(?i)Invoice Number\s*:?\s*([A-Z0-9-]+)`), captureTrimmed(1)},
	{regexp.MustCompile(`(?i)Bill No\.?\s*:?\s*([A-Z0-9-]+)`), captureTrimmed(1)},
	{regexp.MustCompile(`(?i)INV-\s*([A-Z0-9-]+)`), captureTrimmed(1)},
	{regexp.MustCompile(`(?i)Inv\.?\s*No\.?\s*:?\s*([A-Z0-9-]+)`), captureTrimmed(1)},
}

// The GSTIN shape is structural, no label anchor: 2-digit state code,
// 5-letter PAN block, 4 digits, 1 letter, entity code, literal Z,
// check character. Case-sensitive on purpose.
var gstinRules = []stringRule{
	{regexp.MustCompile(`[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]`), capture(0)},
}

var grandTotalRules = []numberRule{
	{regexp.MustCompile(`(?i)Grand Total\s*:?\s*[₹\s]*([0-9,]+\.?[0-9]*)`), captureAmount(1)},
	{regexp.MustCompile(`(?i)Total Amount\s*:?\s*[₹\s]*([0-9,]+\.?[0-9]*)`), captureAmount(1)},
	{regexp.MustCompile(`(?i)Amount Payable\s*:?\s*[₹\s]*([0-9,]+\.?[0-9]*)`), captureAmount(1)},
	{regexp.MustCompile(`(?i)Net Amount\s*:?\s*[₹\s]*([0-9,]+\.?[0-9]*)`), captureAmount(1)},
}

var dateRules = []stringRule{
	{regexp.MustCompile(`(?i)Date\s*:?\s*(\d{2}-\d{2}-\d{4})`), capture(1)},
	{regexp.MustCompile(`(?i)Date\s*:?\s*(\d{2}/\d{2}/\d{4})`), capture(1)},
	{regexp.MustCompile(`(?i)Invoice Date\s*:?\s*(\d{2}-\d{2}-\d{4})`), capture(1)},
	{regexp.MustCompile(`(?i)Bill Date\s*:?\s*(\d{2}-\d{2}-\d{4})`), capture(1)},
}

var placeRules = []stringRule{
	{regexp.MustCompile(`(?i)Place of Supply\s*:?\s*([A-Za-z\s]+)`), captureTrimmed(1)},
	{regexp.MustCompile(`(?i)Delivery At\s*:?\s*([A-Za-z\s]+)`), captureTrimmed(1)},
	{regexp.MustCompile(`(?i)City\s*:?\s*([A-Za-z\s]+)`), captureTrimmed(1)},
}
