// Package pipeline drives per-document extraction: OCR, model call,
// reconciliation. A failed document is reported and excluded from its
// batch; it never aborts the documents behind it.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxlens/invoice-analyzer/constants"
	"github.com/taxlens/invoice-analyzer/internal/common"
	"github.com/taxlens/invoice-analyzer/internal/entity"
	"github.com/taxlens/invoice-analyzer/internal/extract"
	"github.com/taxlens/invoice-analyzer/internal/llm"
	"github.com/taxlens/invoice-analyzer/internal/observability/metrics"
	"github.com/taxlens/invoice-analyzer/internal/reconcile"
	"github.com/taxlens/invoice-analyzer/internal/repository"
	"github.com/taxlens/invoice-analyzer/internal/resilience"
)

// Document is one successfully extracted invoice, ready for
// verification or direct acceptance.
type Document struct {
	FileID    uuid.UUID            `json:"file_id"`
	JobID     uuid.UUID            `json:"job_id"`
	Filename  string               `json:"filename"`
	Record    entity.InvoiceRecord `json:"record"`
	Recovered []string             `json:"recovered,omitempty"`
}

// FailedFile names a document excluded from its batch and why.
type FailedFile struct {
	FileID   uuid.UUID `json:"file_id"`
	Filename string    `json:"filename"`
	Reason   string    `json:"reason"`
}

// BatchOutcome collects what a batch run produced. Every input file
// lands in exactly one of Documents or Failed.
type BatchOutcome struct {
	BatchID   uuid.UUID    `json:"batch_id"`
	Documents []Document   `json:"documents"`
	Failed    []FailedFile `json:"failed"`
}

// Processor coordinates OCR (text extract) then LLM parse (fields)
// for uploaded invoice files.
type Processor struct {
	Logger  *slog.Logger
	Files   repository.InvoiceFileRepository
	Jobs    repository.ExtractJobRepository
	Text    extract.TextExtractor
	Fields  llm.FieldExtractor
	Exec    *resilience.Executor
	Metrics *metrics.ServerMetrics
	Service string
	Model   string
}

func NewProcessor(
	logger *slog.Logger,
	files repository.InvoiceFileRepository,
	jobs repository.ExtractJobRepository,
	text extract.TextExtractor,
	fields llm.FieldExtractor,
	exec *resilience.Executor,
	m *metrics.ServerMetrics,
	service, model string,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if service == "" {
		service = "invoiced"
	}
	return &Processor{
		Logger:  logger,
		Files:   files,
		Jobs:    jobs,
		Text:    text,
		Fields:  fields,
		Exec:    exec,
		Metrics: m,
		Service: service,
		Model:   model,
	}
}

// ProcessFile runs the full per-document flow for one uploaded file:
// start an extract job, OCR the file, call the model once, reconcile
// the reply against the transcript. The job row records each stage.
func (p *Processor) ProcessFile(ctx context.Context, fileID, batchID uuid.UUID) (*Document, error) {
	row, err := p.Files.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	return p.process(ctx, row, batchID)
}

// ProcessBatch runs every file through ProcessFile, collecting results
// and failures. Failures are per-document: the batch always finishes.
func (p *Processor) ProcessBatch(ctx context.Context, batchID uuid.UUID, fileIDs []uuid.UUID) *BatchOutcome {
	out := &BatchOutcome{
		BatchID:   batchID,
		Documents: []Document{},
		Failed:    []FailedFile{},
	}
	for _, id := range fileIDs {
		row, err := p.Files.GetByID(ctx, id)
		if err != nil {
			p.recordFailure(out, id, id.String(), err)
			continue
		}
		doc, err := p.process(ctx, row, batchID)
		if err != nil {
			p.recordFailure(out, id, row.Filename, err)
			continue
		}
		out.Documents = append(out.Documents, *doc)
		if p.Metrics != nil {
			p.Metrics.RecordDocument(p.Service, "ok")
		}
	}
	p.Logger.Info("pipeline.batch.done",
		"batch_id", batchID,
		"files", len(fileIDs),
		"extracted", len(out.Documents),
		"failed", len(out.Failed),
	)
	return out
}

func (p *Processor) process(ctx context.Context, row *entity.InvoiceFile, batchID uuid.UUID) (*Document, error) {
	if !constants.IsAllowedExt(row.FileExt) {
		return nil, fmt.Errorf("unsupported format: %s", row.FileExt)
	}
	format := constants.FileTypeForExt(row.FileExt)

	job, err := p.Jobs.Start(ctx, row.ID, batchID, format, string(constants.JobStatusRunning))
	if err != nil {
		return nil, err
	}

	ocrStart := time.Now()
	res, err := p.Text.Extract(ctx, row.SourcePath)
	p.observeStage("ocr", time.Since(ocrStart))
	if err != nil {
		p.failJob(ctx, job.ID, err)
		return nil, fmt.Errorf("ocr: %w", err)
	}
	if strings.TrimSpace(res.Text) == "" {
		err := fmt.Errorf("%w: %s", common.ErrEmptyTranscript, row.Filename)
		p.failJob(ctx, job.ID, err)
		return nil, err
	}
	if err := p.Jobs.FinishOCR(ctx, job.ID, res.Text); err != nil {
		return nil, err
	}
	p.Logger.Info("pipeline.ocr.ok",
		"job_id", job.ID,
		"file_id", row.ID,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
	)

	var (
		fields map[string]any
		raw    []byte
	)
	llmStart := time.Now()
	callErr := p.Exec.Execute(ctx, "model.extract", func(ctx context.Context) error {
		var err error
		fields, raw, err = p.Fields.ExtractFields(ctx, llm.ExtractRequest{
			OCRText:      res.Text,
			FilenameHint: row.Filename,
		})
		return err
	}, resilience.ModelCallClassifier)
	elapsed := time.Since(llmStart)
	p.observeStage("llm", elapsed)
	if callErr != nil {
		if p.Metrics != nil {
			p.Metrics.RecordModelCall(p.Service, p.Model, "error", elapsed)
		}
		if resilience.IsCircuitOpen(callErr) {
			p.Logger.Warn("pipeline.model.circuit_open", "job_id", job.ID, "file", row.Filename)
		}
		p.failJob(ctx, job.ID, callErr)
		return nil, fmt.Errorf("extract fields: %w", callErr)
	}
	if p.Metrics != nil {
		p.Metrics.RecordModelCall(p.Service, p.Model, "ok", elapsed)
	}

	recRes := reconcile.ReconcileResult(fields, res.Text, row.Filename)
	if p.Metrics != nil {
		for _, field := range recRes.Recovered {
			p.Metrics.RecordFallbackHit(p.Service, field)
		}
	}

	if err := p.Jobs.FinishSuccess(ctx, job.ID, raw, p.Model); err != nil {
		return nil, err
	}
	p.Logger.Info("pipeline.document.ok",
		"job_id", job.ID,
		"file", row.Filename,
		"invoice_no", recRes.Record.InvoiceNo,
		"grand_total", recRes.Record.GrandTotal,
		"recovered", recRes.Recovered,
	)
	return &Document{
		FileID:    row.ID,
		JobID:     job.ID,
		Filename:  row.Filename,
		Record:    recRes.Record,
		Recovered: recRes.Recovered,
	}, nil
}

func (p *Processor) failJob(ctx context.Context, jobID uuid.UUID, cause error) {
	if err := p.Jobs.FinishFailure(ctx, jobID, cause.Error()); err != nil {
		p.Logger.Error("pipeline.job.fail_update_failed", "job_id", jobID, "err", err)
	}
}

func (p *Processor) recordFailure(out *BatchOutcome, fileID uuid.UUID, filename string, cause error) {
	out.Failed = append(out.Failed, FailedFile{
		FileID:   fileID,
		Filename: filename,
		Reason:   cause.Error(),
	})
	if p.Metrics != nil {
		p.Metrics.RecordDocument(p.Service, "failed")
	}
	p.Logger.Warn("pipeline.document.failed", "file", filename, "err", cause)
}

func (p *Processor) observeStage(stage string, d time.Duration) {
	if p.Metrics != nil {
		p.Metrics.ObserveStage(p.Service, stage, d)
	}
}
