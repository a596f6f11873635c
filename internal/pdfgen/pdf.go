// Package pdfgen renders generated bills to PDF.
package pdfgen

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/taxlens/invoice-analyzer/internal/billgen"
)

var (
	titleStyle  = props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}
	headStyle   = props.Text{Size: 9, Style: fontstyle.Bold}
	cellStyle   = props.Text{Size: 9}
	tableHead   = props.Text{Size: 8, Style: fontstyle.Bold}
	tableCell   = props.Text{Size: 8}
	rightAlign  = props.Text{Size: 8, Align: align.Right}
	totalStyle  = props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}
	footerStyle = props.Text{Size: 8, Align: align.Center}
)

// InvoicePDF renders a TAX INVOICE layout for the bill and returns the
// document bytes.
func InvoicePDF(bill billgen.Bill) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	rec := bill.Record

	m.AddRows(
		row.New(12).Add(text.NewCol(12, "TAX INVOICE", titleStyle)),
		row.New(6).Add(
			text.NewCol(3, "Invoice Number:", headStyle),
			text.NewCol(3, rec.InvoiceNo, cellStyle),
			text.NewCol(3, "Invoice Date:", headStyle),
			text.NewCol(3, rec.Date, cellStyle),
		),
		row.New(6).Add(
			text.NewCol(3, "GSTIN:", headStyle),
			text.NewCol(3, rec.GSTINNo, cellStyle),
			text.NewCol(3, "Reverse Charge:", headStyle),
			text.NewCol(3, "No", cellStyle),
		),
		line.NewRow(4),
	)

	m.AddRows(
		row.New(6).Add(
			text.NewCol(6, "Details of Seller (Billed From)", headStyle),
			text.NewCol(6, "Details of Buyer (Billed To)", headStyle),
		),
		row.New(20).Add(
			col.New(6).Add(
				text.New(partyBlock(bill.Seller), cellStyle),
			),
			col.New(6).Add(
				text.New(partyBlock(bill.Buyer), cellStyle),
			),
		),
		line.NewRow(4),
	)

	m.AddRow(7,
		text.NewCol(1, "Sr", tableHead),
		text.NewCol(4, "Item Description", tableHead),
		text.NewCol(1, "HSN", tableHead),
		text.NewCol(1, "Qty", tableHead),
		text.NewCol(2, "Unit Price", tableHead),
		text.NewCol(2, "Amount", tableHead),
		text.NewCol(1, "GST", tableHead),
	)
	for i, item := range rec.Items {
		m.AddRow(6,
			text.NewCol(1, fmt.Sprintf("%d", i+1), tableCell),
			text.NewCol(4, item.ItemName, tableCell),
			text.NewCol(1, item.HSNCode, tableCell),
			text.NewCol(1, trimFloat(item.Quantity), rightAlign),
			text.NewCol(2, money(item.UnitPrice), rightAlign),
			text.NewCol(2, money(item.Amount), rightAlign),
			text.NewCol(1, item.GSTRate, tableCell),
		)
	}
	m.AddRows(line.NewRow(4))

	m.AddRow(6,
		text.NewCol(9, "Total Amount:", totalStyle),
		text.NewCol(3, money(bill.TotalAmount), rightAlign),
	)
	for _, tl := range bill.TaxLines {
		m.AddRow(6,
			text.NewCol(9, tl.Label+":", totalStyle),
			text.NewCol(3, money(tl.Amount), rightAlign),
		)
	}
	m.AddRows(
		row.New(7).Add(
			text.NewCol(9, "Grand Total:", totalStyle),
			text.NewCol(3, money(bill.GrandTotal), rightAlign),
		),
		row.New(6).Add(
			text.NewCol(12, "Amount in words: "+AmountInWords(bill.GrandTotal), cellStyle),
		),
		row.New(14).Add(
			text.NewCol(12, "This is a computer-generated invoice. No signature required.", footerStyle),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func partyBlock(p billgen.Party) string {
	s := p.Name + "\n" + p.Address
	if p.Contact != "" {
		s += "\nContact: " + p.Contact
	}
	if p.Bank != "" {
		s += "\nBank: " + p.Bank
	}
	if p.GSTIN != "" {
		s += "\nGSTIN: " + p.GSTIN
	} else {
		s += "\nGSTIN: Not Provided"
	}
	return s
}

func money(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
