package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/taxlens/invoice-analyzer/constants"
)

// scannedPDFThreshold is the minimum number of non-space characters a
// PDF text layer must carry before it is trusted. Scanned invoices
// usually expose an empty or near-empty layer and need rasterizing.
const scannedPDFThreshold = 32

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	text, pages, warns, err := readTextLayer(path)
	if err == nil && hasTextLayer(text) {
		return ExtractionResult{
			Text:       Normalize(text),
			Pages:      pages,
			SourceType: constants.PDF,
			Method:     "pdf-text",
			Warnings:   warns,
		}, nil
	}
	if err != nil {
		warns = append(warns, err.Error())
		e.logger.Warn("pdf text layer unreadable, rasterizing", "path", path, "error", err)
	} else {
		e.logger.Debug("pdf text layer too thin, rasterizing", "path", path, "chars", len(text))
	}

	ocrText, ocrPages, w, err := e.pdfToOCR(ctx, path)
	warns = append(warns, w...)
	if err != nil {
		return ExtractionResult{SourceType: constants.PDF, Method: "pdf-ocr", Warnings: warns}, err
	}
	return ExtractionResult{
		Text:       Normalize(ocrText),
		Pages:      ocrPages,
		SourceType: constants.PDF,
		Method:     "pdf-ocr",
		Language:   e.cfg.TesseractLang,
		Warnings:   warns,
	}, nil
}

// readTextLayer pulls the embedded text out of a PDF, page by page.
// The reader needs the full size up front, so the file is buffered.
func readTextLayer(path string) (text string, pages int, warnings []string, err error) {
	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text layer: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return "", 0, nil, err
	}
	defer f.Close()

	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(f)
	if err != nil {
		return "", 0, nil, err
	}
	reader, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), size)
	if err != nil {
		return "", 0, nil, err
	}

	var b strings.Builder
	pages = reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, rowErr))
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
				b.WriteString(" ")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String(), pages, warnings, nil
}

func hasTextLayer(text string) bool {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
			if n >= scannedPDFThreshold {
				return true
			}
		}
	}
	return false
}
