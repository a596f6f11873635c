package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/taxlens/invoice-analyzer/internal/entity"
)

// csvHeader is the tabular layout: one row per line item, invoice
// fields repeated on each of its item rows.
var csvHeader = []string{
	"File Name",
	"Invoice Number",
	"Invoice Date",
	"Seller Name",
	"Seller GSTIN",
	"Seller Place",
	"Seller State",
	"Customer Name",
	"Item Name",
	"Item Category",
	"HSN Code",
	"Quantity",
	"Unit Price",
	"Item Amount",
	"GST Rate",
	"Grand Total",
	"Total GST",
	"Taxable Amount",
}

// WriteCSV writes the row-per-line-item table followed by the
// SUMMARY STATISTICS marker and the four trailing stat rows. Invoices
// without items still get one row, with N/A item columns.
func WriteCSV(w io.Writer, records []entity.InvoiceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		if len(r.Items) == 0 {
			if err := cw.Write(itemRow(r, nil)); err != nil {
				return err
			}
			continue
		}
		for i := range r.Items {
			if err := cw.Write(itemRow(r, &r.Items[i])); err != nil {
				return err
			}
		}
	}
	for _, row := range summaryRows(Summarize(records)) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func itemRow(r entity.InvoiceRecord, item *entity.LineItem) []string {
	name, category, hsn, qty, price, amount, rate := "N/A", "N/A", "N/A", "N/A", "N/A", "N/A", "N/A"
	if item != nil {
		name = item.ItemName
		category = item.Category
		hsn = item.HSNCode
		qty = formatNumber(item.Quantity)
		price = formatNumber(item.UnitPrice)
		amount = formatNumber(item.Amount)
		rate = item.GSTRate
	}
	return []string{
		r.FileName,
		r.InvoiceNo,
		r.Date,
		r.SellerName,
		r.GSTINNo,
		r.Place,
		r.State,
		r.CustomerName,
		name,
		category,
		hsn,
		qty,
		price,
		amount,
		rate,
		formatNumber(r.GrandTotal),
		formatNumber(r.TotalGST),
		formatNumber(r.TaxableAmount()),
	}
}

// summaryRows carries the totals in the File Name column, matching
// the exported table's trailing block.
func summaryRows(s entity.BatchSummary) [][]string {
	labels := []string{
		"SUMMARY STATISTICS",
		fmt.Sprintf("Total Invoices: %d", s.TotalInvoices),
		fmt.Sprintf("Total Grand Total: %s", groupAmount(s.TotalGrandTotal)),
		fmt.Sprintf("Total GST Amount: %s", groupAmount(s.TotalGSTAmount)),
		fmt.Sprintf("Total Taxable Amount: %s", groupAmount(s.TotalTaxableAmount)),
	}
	rows := make([][]string, 0, len(labels))
	for _, label := range labels {
		row := make([]string, len(csvHeader))
		row[0] = label
		rows = append(rows, row)
	}
	return rows
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// groupAmount renders v with comma-grouped thousands and two decimals,
// e.g. 1234567.5 -> "1,234,567.50".
func groupAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteString(frac)
	return b.String()
}
