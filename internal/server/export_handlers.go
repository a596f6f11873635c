package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/taxlens/invoice-analyzer/internal/export"
	"github.com/taxlens/invoice-analyzer/internal/httpx"
)

// exportBatch serves the accepted records of a batch as a JSON, CSV,
// or XLSX attachment.
func (s *Server) exportBatch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	records := sess.Records()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	var (
		body        []byte
		contentType string
		ext         string
	)
	switch format {
	case "json":
		var buf bytes.Buffer
		if err := export.WriteJSON(&buf, records); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
			return
		}
		body, contentType, ext = buf.Bytes(), "application/json", "json"
	case "csv":
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, records); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
			return
		}
		body, contentType, ext = buf.Bytes(), "text/csv", "csv"
	case "xlsx":
		b, err := export.XLSX(records)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
			return
		}
		body, contentType, ext = b, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	default:
		httpx.JSONError(w, http.StatusBadRequest, "unknown_format", "format must be json, csv, or xlsx")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordExport(s.service, ext)
	}
	filename := fmt.Sprintf("invoices_%s.%s", sess.ID(), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
