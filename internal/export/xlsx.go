package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/taxlens/invoice-analyzer/internal/entity"
)

// XLSX renders the same tabular shape as the CSV export into a
// workbook and returns the serialized bytes.
func XLSX(records []entity.InvoiceRecord) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIndex, _ := f.GetSheetIndex("Sheet1"); defaultIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	writeRow := func(rowNum int, values []string) error {
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, csvHeader); err != nil {
		return nil, err
	}
	row := 2
	for _, r := range records {
		if len(r.Items) == 0 {
			if err := writeRow(row, itemRow(r, nil)); err != nil {
				return nil, err
			}
			row++
			continue
		}
		for i := range r.Items {
			if err := writeRow(row, itemRow(r, &r.Items[i])); err != nil {
				return nil, err
			}
			row++
		}
	}
	for _, sr := range summaryRows(Summarize(records)) {
		if err := writeRow(row, sr); err != nil {
			return nil, err
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // file name / summary labels
	_ = f.SetColWidth(sheet, "B", "C", 16) // invoice number, date
	_ = f.SetColWidth(sheet, "D", "E", 24) // seller name, gstin
	_ = f.SetColWidth(sheet, "F", "H", 18) // place, state, customer
	_ = f.SetColWidth(sheet, "I", "I", 28) // item name
	_ = f.SetColWidth(sheet, "J", "R", 14) // remaining numerics

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
