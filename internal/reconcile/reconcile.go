// Package reconcile turns a best-effort model reply plus the raw OCR
// transcript into a fully-populated invoice record. Fields the model
// missed are recovered by per-field regex rule lists against the
// transcript; anything still unknown degrades to the field's default.
// Nothing in this package returns an error: reconciliation never
// fails, it only fills in less.
package reconcile

import (
	"strconv"

	"github.com/taxlens/invoice-analyzer/constants"
	"github.com/taxlens/invoice-analyzer/internal/entity"
)

// FieldKind selects the sentinel policy IsUnset applies.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindList
)

// IsUnset reports whether value counts as missing for a field of the
// given kind: absent key (nil), empty string, the literal "N/A"
// placeholder, or exact numeric zero.
func IsUnset(value any, kind FieldKind) bool {
	if value == nil {
		return true
	}
	switch kind {
	case KindString:
		s, ok := asString(value)
		return !ok || s == "" || s == "N/A"
	case KindNumber:
		f, ok := asNumber(value)
		return !ok || f == 0
	case KindList:
		_, ok := value.([]any)
		return !ok
	default:
		return true
	}
}

// Result carries the reconciled record plus the names of the fields
// the fallback rules recovered, for observability.
type Result struct {
	Record    entity.InvoiceRecord
	Recovered []string
}

// Reconcile produces the final record for one document.
func Reconcile(parsed map[string]any, transcript, fileName string) entity.InvoiceRecord {
	return ReconcileResult(parsed, transcript, fileName).Record
}

// ReconcileResult is Reconcile plus the list of fallback-recovered
// field names.
func ReconcileResult(parsed map[string]any, transcript, fileName string) Result {
	if parsed == nil {
		parsed = map[string]any{}
	}
	var res Result
	rec := entity.InvoiceRecord{FileName: fileName}

	rec.InvoiceNo = res.resolveString(parsed, "invoice_no", transcript, invoiceNoRules)
	rec.GSTINNo = res.resolveString(parsed, "gstin_no", transcript, gstinRules)
	rec.SellerName = res.resolveString(parsed, "seller_name", transcript, nil)
	rec.CustomerName = res.resolveString(parsed, "customer_name", transcript, nil)
	rec.GrandTotal = res.resolveNumber(parsed, "grand_total", transcript, grandTotalRules)
	rec.TotalGST = res.resolveTotalGST(parsed, transcript)
	rec.Place = res.resolveString(parsed, "place", transcript, placeRules)
	rec.Date = res.resolveString(parsed, "date", transcript, dateRules)
	rec.State = res.resolveState(parsed, transcript)
	rec.Items = lineItems(parsed["items"])

	if rec.Date != "" {
		rec.Date = NormalizeDate(rec.Date)
	}

	res.Record = rec
	return res
}

func (res *Result) resolveString(parsed map[string]any, key, transcript string, rules []stringRule) string {
	if !IsUnset(parsed[key], KindString) {
		s, _ := asString(parsed[key])
		return s
	}
	if v, ok := firstString(rules, transcript); ok {
		res.Recovered = append(res.Recovered, key)
		return v
	}
	return ""
}

func (res *Result) resolveNumber(parsed map[string]any, key, transcript string, rules []numberRule) float64 {
	if !IsUnset(parsed[key], KindNumber) {
		f, _ := asNumber(parsed[key])
		return f
	}
	if v, ok := firstNumber(rules, transcript); ok {
		res.Recovered = append(res.Recovered, key)
		return v
	}
	return 0
}

// resolveTotalGST is the one numeric field whose fallback is a
// computation over the whole transcript rather than a label pattern.
func (res *Result) resolveTotalGST(parsed map[string]any, transcript string) float64 {
	if !IsUnset(parsed["total_gst"], KindNumber) {
		f, _ := asNumber(parsed["total_gst"])
		return f
	}
	if gst := TotalGSTFromText(transcript); gst > 0 {
		res.Recovered = append(res.Recovered, "total_gst")
		return gst
	}
	return 0
}

// resolveState falls back to a substring scan over the known state
// list instead of a label pattern.
func (res *Result) resolveState(parsed map[string]any, transcript string) string {
	if !IsUnset(parsed["state"], KindString) {
		s, _ := asString(parsed["state"])
		return s
	}
	if state, ok := constants.MatchState(transcript); ok {
		res.Recovered = append(res.Recovered, "state")
		return state
	}
	return ""
}

// lineItems decodes the items array leniently. There is no fallback
// for line items: anything unusable becomes the empty sequence.
func lineItems(value any) []entity.LineItem {
	raw, ok := value.([]any)
	if !ok {
		return []entity.LineItem{}
	}
	items := make([]entity.LineItem, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		item := entity.LineItem{}
		item.ItemName, _ = asString(obj["item_name"])
		item.Quantity, _ = asNumber(obj["quantity"])
		item.UnitPrice, _ = asNumber(obj["unit_price"])
		item.Amount, _ = asNumber(obj["amount"])
		item.HSNCode, _ = asString(obj["hsn_code"])
		item.GSTRate, _ = asString(obj["gst_rate"])
		item.Category, _ = asString(obj["category"])
		items = append(items, item)
	}
	return items
}

// asString coerces model output into a string field. Models
// occasionally emit numbers where the schema asks for strings
// (invoice numbers, HSN codes), so numeric values are formatted
// rather than discarded.
func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}

// asNumber coerces model output into a numeric field, accepting
// numeric strings like "449.00".
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
