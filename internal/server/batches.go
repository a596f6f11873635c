package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/taxlens/invoice-analyzer/constants"
	"github.com/taxlens/invoice-analyzer/internal/common"
	"github.com/taxlens/invoice-analyzer/internal/entity"
	"github.com/taxlens/invoice-analyzer/internal/export"
	"github.com/taxlens/invoice-analyzer/internal/httpx"
	"github.com/taxlens/invoice-analyzer/internal/pipeline"
)

// maxUploadBytes caps one multipart batch upload.
const maxUploadBytes = 64 << 20

type batchResponse struct {
	Status  pipeline.SessionStatus `json:"status"`
	Records []entity.InvoiceRecord `json:"records,omitempty"`
	Summary *entity.BatchSummary   `json:"summary,omitempty"`
}

// createBatch accepts a multipart upload (field "files"), runs every
// document through the pipeline, and opens a batch session. Direct
// mode returns the accepted records immediately; verify mode leaves
// them for the review endpoints.
func (s *Server) createBatch(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFromContext(r.Context())
	mode := constants.ParseBatchMode(r.URL.Query().Get("mode"))

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart", err.Error())
		return
	}
	uploads := r.MultipartForm.File["files"]
	if len(uploads) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "no_files", "multipart field 'files' is required")
		return
	}

	batchID := uuid.New()
	var fileIDs []uuid.UUID
	outcome := &pipeline.BatchOutcome{BatchID: batchID, Documents: []pipeline.Document{}, Failed: []pipeline.FailedFile{}}

	for _, fh := range uploads {
		id, err := s.storeUpload(r, userID, fh)
		if err != nil {
			s.logger.Warn("server.upload.rejected", "filename", fh.Filename, "err", err)
			outcome.Failed = append(outcome.Failed, pipeline.FailedFile{
				FileID:   uuid.Nil,
				Filename: fh.Filename,
				Reason:   err.Error(),
			})
			continue
		}
		fileIDs = append(fileIDs, id)
	}

	processed := s.processor.ProcessBatch(r.Context(), batchID, fileIDs)
	outcome.Documents = processed.Documents
	outcome.Failed = append(outcome.Failed, processed.Failed...)

	sess := pipeline.NewBatchSession(outcome, mode)
	persisted := false
	if mode == constants.BatchModeDirect {
		if err := s.persistRecords(r, batchID, sess.Records()); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "persist_failed", nil)
			return
		}
		persisted = true
	}
	s.sessions.Put(sess, persisted)
	if s.metrics != nil {
		s.metrics.RecordBatch(s.service, string(mode))
	}

	resp := batchResponse{Status: sess.Status()}
	if mode == constants.BatchModeDirect {
		records := sess.Records()
		summary := export.Summarize(records)
		resp.Records = records
		resp.Summary = &summary
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

// storeUpload writes one multipart file under the upload dir and
// registers it through the ingestor (hash dedup included).
func (s *Server) storeUpload(r *http.Request, userID uint, fh *multipart.FileHeader) (uuid.UUID, error) {
	ext := constants.NormalizeExt(filepath.Ext(fh.Filename))
	if !constants.IsAllowedExt(ext) {
		return uuid.Nil, fmt.Errorf("unsupported file type: %q", ext)
	}

	src, err := fh.Open()
	if err != nil {
		return uuid.Nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir := s.cfg.Server.UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return uuid.Nil, fmt.Errorf("upload dir: %w", err)
	}
	dstPath := filepath.Join(dir, uuid.NewString()+"."+ext)
	dst, err := os.Create(dstPath)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return uuid.Nil, fmt.Errorf("store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return uuid.Nil, fmt.Errorf("store upload: %w", err)
	}

	res, err := s.ingestor.IngestPath(r.Context(), userID, dstPath)
	if err != nil {
		os.Remove(dstPath)
		return uuid.Nil, err
	}
	if res.Deduplicated {
		// The stored row points at the earlier copy.
		os.Remove(dstPath)
	}
	return res.FileID, nil
}

func (s *Server) persistRecords(r *http.Request, batchID uuid.UUID, records []entity.InvoiceRecord) error {
	if len(records) == 0 {
		return nil
	}
	invs := make([]entity.Invoice, 0, len(records))
	for _, rec := range records {
		invs = append(invs, entity.Invoice{BatchID: batchID, InvoiceRecord: rec})
	}
	_, err := s.invoices.CreateBatch(r.Context(), invs)
	return err
}

func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) (*pipeline.BatchSession, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_batch_id", nil)
		return nil, false
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "batch_not_found", nil)
		return nil, false
	}
	return sess, true
}

func (s *Server) getBatch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	records := sess.Records()
	summary := export.Summarize(records)
	httpx.JSON(w, http.StatusOK, batchResponse{
		Status:  sess.Status(),
		Records: records,
		Summary: &summary,
	})
}

func (s *Server) batchCurrent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	doc, err := sess.Current()
	if err != nil {
		if errors.Is(err, pipeline.ErrSessionComplete) {
			httpx.JSONError(w, http.StatusConflict, "session_complete", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "current_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (s *Server) batchVerify(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	var rec entity.InvoiceRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := sess.Verify(rec); err != nil {
		httpx.JSONError(w, http.StatusConflict, "session_complete", nil)
		return
	}
	s.finishIfDone(r, sess)
	httpx.JSON(w, http.StatusOK, sess.Status())
}

func (s *Server) batchSkip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	if err := sess.Skip(); err != nil {
		httpx.JSONError(w, http.StatusConflict, "session_complete", nil)
		return
	}
	s.finishIfDone(r, sess)
	httpx.JSON(w, http.StatusOK, sess.Status())
}

func (s *Server) batchPrevious(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	if err := sess.Previous(); err != nil {
		httpx.JSONError(w, http.StatusConflict, "at_first_document", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, sess.Status())
}

// finishIfDone persists a verify-mode batch exactly once, when the
// last document has been reviewed.
func (s *Server) finishIfDone(r *http.Request, sess *pipeline.BatchSession) {
	if !sess.Done() {
		return
	}
	if !s.sessions.MarkPersisted(sess.ID()) {
		return
	}
	if err := s.persistRecords(r, sess.ID(), sess.Records()); err != nil {
		s.logger.Error("server.batch.persist_failed", "batch_id", sess.ID(), "err", err)
	}
}
