package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/taxlens/invoice-analyzer/internal/billgen"
	"github.com/taxlens/invoice-analyzer/internal/httpx"
	"github.com/taxlens/invoice-analyzer/internal/pdfgen"
)

func decodeBillInput(w http.ResponseWriter, r *http.Request) (billgen.Input, bool) {
	var in billgen.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return in, false
	}
	if strings.TrimSpace(in.Seller.Name) == "" || strings.TrimSpace(in.Buyer.Name) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", "seller and buyer names are required")
		return in, false
	}
	return in, true
}

// previewBill computes a bill without rendering it, so the form can
// show line amounts and the tax breakup before download.
func (s *Server) previewBill(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeBillInput(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, billgen.Build(in))
}

// billPDF renders the bill and serves it as a PDF attachment.
func (s *Server) billPDF(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeBillInput(w, r)
	if !ok {
		return
	}
	bill := billgen.Build(in)

	body, err := pdfgen.InvoicePDF(bill)
	if err != nil {
		s.logger.Error("server.bill.pdf_failed", "invoice_no", bill.Record.InvoiceNo, "err", err)
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_failed", nil)
		return
	}

	filename := fmt.Sprintf("Invoice_%s.pdf", strings.ReplaceAll(bill.Record.InvoiceNo, "/", "_"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
