package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taxlens/invoice-analyzer/constants"
	"github.com/taxlens/invoice-analyzer/internal/common"
	"github.com/taxlens/invoice-analyzer/internal/entity"
	"github.com/taxlens/invoice-analyzer/internal/extract"
	"github.com/taxlens/invoice-analyzer/internal/llm"
	"github.com/taxlens/invoice-analyzer/internal/resilience"
)

type fakeFiles struct {
	rows map[uuid.UUID]*entity.InvoiceFile
}

func (f *fakeFiles) GetByID(_ context.Context, id uuid.UUID) (*entity.InvoiceFile, error) {
	if row, ok := f.rows[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFiles) GetByHash(context.Context, []byte) (*entity.InvoiceFile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFiles) Create(_ context.Context, file *entity.InvoiceFile) error {
	f.rows[file.ID] = file
	return nil
}

func (f *fakeFiles) UpsertByHash(ctx context.Context, file *entity.InvoiceFile) (*entity.InvoiceFile, bool, error) {
	return file, false, f.Create(ctx, file)
}

type jobState struct {
	status  string
	ocrText string
	model   string
	raw     json.RawMessage
	errMsg  string
}

type fakeJobs struct {
	jobs map[uuid.UUID]*jobState
}

func (f *fakeJobs) Start(_ context.Context, fileID, batchID uuid.UUID, format, status string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:        uuid.New(),
		FileID:    fileID,
		BatchID:   batchID,
		Format:    format,
		Status:    status,
		StartedAt: time.Now(),
	}
	f.jobs[job.ID] = &jobState{status: status}
	return job, nil
}

func (f *fakeJobs) SetStatus(_ context.Context, jobID uuid.UUID, status string) error {
	f.jobs[jobID].status = status
	return nil
}

func (f *fakeJobs) FinishOCR(_ context.Context, jobID uuid.UUID, ocrText string) error {
	s := f.jobs[jobID]
	s.status = string(constants.JobStatusOCROK)
	s.ocrText = ocrText
	return nil
}

func (f *fakeJobs) FinishSuccess(_ context.Context, jobID uuid.UUID, extracted json.RawMessage, modelName string) error {
	s := f.jobs[jobID]
	s.status = string(constants.JobStatusLLMOK)
	s.raw = extracted
	s.model = modelName
	return nil
}

func (f *fakeJobs) FinishFailure(_ context.Context, jobID uuid.UUID, message string) error {
	s := f.jobs[jobID]
	s.status = string(constants.JobStatusFailed)
	s.errMsg = message
	return nil
}

func (f *fakeJobs) ListByBatch(context.Context, uuid.UUID) ([]entity.ExtractJob, error) {
	return nil, nil
}

type fakeText struct {
	byPath map[string]string
	err    map[string]error
}

func (f *fakeText) Extract(_ context.Context, path string) (extract.TextExtractionResult, error) {
	if err, ok := f.err[path]; ok {
		return extract.TextExtractionResult{}, err
	}
	return extract.TextExtractionResult{
		Text:       f.byPath[path],
		Pages:      1,
		SourceType: constants.PDF,
		Method:     "pdf-text",
	}, nil
}

type fakeFields struct {
	fn    func(req llm.ExtractRequest) (map[string]any, []byte, error)
	calls int
}

func (f *fakeFields) ExtractFields(_ context.Context, req llm.ExtractRequest) (map[string]any, []byte, error) {
	f.calls++
	return f.fn(req)
}

func addFile(files *fakeFiles, name, path string) uuid.UUID {
	id := uuid.New()
	ext := name[strings.LastIndexByte(name, '.')+1:]
	files.rows[id] = &entity.InvoiceFile{
		ID:         id,
		SourcePath: path,
		Filename:   name,
		FileExt:    ext,
	}
	return id
}

func newTestProcessor(files *fakeFiles, jobs *fakeJobs, text *fakeText, fields *fakeFields) *Processor {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	exec := resilience.NewExecutor(resilience.Config{BreakerEnabled: false})
	return NewProcessor(log, files, jobs, text, fields, exec, nil, "test", "gemini-2.5-flash")
}

func TestProcessFileHappyPath(t *testing.T) {
	files := &fakeFiles{rows: map[uuid.UUID]*entity.InvoiceFile{}}
	jobs := &fakeJobs{jobs: map[uuid.UUID]*jobState{}}
	id := addFile(files, "acme.pdf", "/tmp/acme.pdf")

	transcript := "TAX INVOICE\nBill No: BN-77\nGrand Total: 1,180.00\n"
	text := &fakeText{byPath: map[string]string{"/tmp/acme.pdf": transcript}}
	raw := []byte(`{"invoice_no":"BN-77","grand_total":1180}`)
	fields := &fakeFields{fn: func(req llm.ExtractRequest) (map[string]any, []byte, error) {
		if !strings.Contains(req.OCRText, "BN-77") {
			t.Errorf("model did not receive the transcript: %q", req.OCRText)
		}
		return map[string]any{"invoice_no": "BN-77", "grand_total": 1180.0}, raw, nil
	}}

	p := newTestProcessor(files, jobs, text, fields)
	doc, err := p.ProcessFile(context.Background(), id, uuid.New())
	if err != nil {
		t.Fatalf("process file: %v", err)
	}
	if doc.Record.InvoiceNo != "BN-77" || doc.Record.GrandTotal != 1180 {
		t.Errorf("record = %+v", doc.Record)
	}
	if doc.Record.FileName != "acme.pdf" {
		t.Errorf("file name = %q", doc.Record.FileName)
	}

	st := jobs.jobs[doc.JobID]
	if st.status != string(constants.JobStatusLLMOK) {
		t.Errorf("job status = %s, want LLM_OK", st.status)
	}
	if st.ocrText != transcript {
		t.Error("ocr text not persisted on the job")
	}
	if string(st.raw) != string(raw) {
		t.Error("raw model reply not persisted")
	}
	if st.model != "gemini-2.5-flash" {
		t.Errorf("model name = %q", st.model)
	}
}

func TestProcessFileRecoversFieldsFromTranscript(t *testing.T) {
	files := &fakeFiles{rows: map[uuid.UUID]*entity.InvoiceFile{}}
	jobs := &fakeJobs{jobs: map[uuid.UUID]*jobState{}}
	id := addFile(files, "sparse.pdf", "/tmp/sparse.pdf")

	transcript := "Invoice No: INV-901\nGSTIN: 27ABCDE1234F1Z5\nGrand Total: 4,500.00\n"
	text := &fakeText{byPath: map[string]string{"/tmp/sparse.pdf": transcript}}
	// The model only managed the seller name.
	fields := &fakeFields{fn: func(llm.ExtractRequest) (map[string]any, []byte, error) {
		return map[string]any{"seller_name": "Acme Traders"}, []byte(`{"seller_name":"Acme Traders"}`), nil
	}}

	p := newTestProcessor(files, jobs, text, fields)
	doc, err := p.ProcessFile(context.Background(), id, uuid.New())
	if err != nil {
		t.Fatalf("process file: %v", err)
	}
	if doc.Record.InvoiceNo != "INV-901" {
		t.Errorf("invoice no = %q", doc.Record.InvoiceNo)
	}
	if doc.Record.GSTINNo != "27ABCDE1234F1Z5" {
		t.Errorf("gstin = %q", doc.Record.GSTINNo)
	}
	if doc.Record.GrandTotal != 4500 {
		t.Errorf("grand total = %v", doc.Record.GrandTotal)
	}
	for _, field := range []string{"invoice_no", "gstin_no", "grand_total"} {
		if !slices.Contains(doc.Recovered, field) {
			t.Errorf("recovered list missing %s: %v", field, doc.Recovered)
		}
	}
}

func TestProcessFileRejectsUnsupportedExtension(t *testing.T) {
	files := &fakeFiles{rows: map[uuid.UUID]*entity.InvoiceFile{}}
	jobs := &fakeJobs{jobs: map[uuid.UUID]*jobState{}}
	id := addFile(files, "notes.txt", "/tmp/notes.txt")

	p := newTestProcessor(files, jobs, &fakeText{}, &fakeFields{})
	_, err := p.ProcessFile(context.Background(), id, uuid.New())
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("err = %v", err)
	}
	if len(jobs.jobs) != 0 {
		t.Error("no job should be started for an unsupported file")
	}
}

func TestProcessBatchContinuesPastFailures(t *testing.T) {
	files := &fakeFiles{rows: map[uuid.UUID]*entity.InvoiceFile{}}
	jobs := &fakeJobs{jobs: map[uuid.UUID]*jobState{}}

	good := addFile(files, "good.pdf", "/tmp/good.pdf")
	blank := addFile(files, "blank.pdf", "/tmp/blank.pdf")
	broken := addFile(files, "broken.pdf", "/tmp/broken.pdf")
	missing := uuid.New()

	text := &fakeText{
		byPath: map[string]string{
			"/tmp/good.pdf":  "Invoice No: INV-1\nGrand Total: 100",
			"/tmp/blank.pdf": "   \n\t ",
		},
		err: map[string]error{
			"/tmp/broken.pdf": errors.New("pdftoppm: exit status 1"),
		},
	}
	fields := &fakeFields{fn: func(llm.ExtractRequest) (map[string]any, []byte, error) {
		return map[string]any{"invoice_no": "INV-1"}, []byte(`{}`), nil
	}}

	p := newTestProcessor(files, jobs, text, fields)
	out := p.ProcessBatch(context.Background(), uuid.New(), []uuid.UUID{good, blank, broken, missing})

	if len(out.Documents) != 1 {
		t.Fatalf("extracted %d documents, want 1", len(out.Documents))
	}
	if out.Documents[0].Filename != "good.pdf" {
		t.Errorf("extracted %q", out.Documents[0].Filename)
	}
	if len(out.Failed) != 3 {
		t.Fatalf("failed %d documents, want 3: %+v", len(out.Failed), out.Failed)
	}

	reasons := map[string]string{}
	for _, f := range out.Failed {
		reasons[f.Filename] = f.Reason
	}
	if !strings.Contains(reasons["blank.pdf"], common.ErrEmptyTranscript.Error()) {
		t.Errorf("blank.pdf reason = %q", reasons["blank.pdf"])
	}
	if !strings.Contains(reasons["broken.pdf"], "pdftoppm") {
		t.Errorf("broken.pdf reason = %q", reasons["broken.pdf"])
	}
	if _, ok := reasons[missing.String()]; !ok {
		t.Errorf("missing file not reported: %v", reasons)
	}

	// Only the good document reached the model.
	if fields.calls != 1 {
		t.Errorf("model called %d times, want 1", fields.calls)
	}

	failedStatuses := 0
	for _, st := range jobs.jobs {
		if st.status == string(constants.JobStatusFailed) {
			failedStatuses++
			if st.errMsg == "" {
				t.Error("failed job has no error message")
			}
		}
	}
	if failedStatuses != 2 {
		t.Errorf("failed jobs = %d, want 2 (blank + broken)", failedStatuses)
	}
}

func TestProcessFileModelFailureMarksJobFailed(t *testing.T) {
	files := &fakeFiles{rows: map[uuid.UUID]*entity.InvoiceFile{}}
	jobs := &fakeJobs{jobs: map[uuid.UUID]*jobState{}}
	id := addFile(files, "one.jpg", "/tmp/one.jpg")

	text := &fakeText{byPath: map[string]string{"/tmp/one.jpg": "some text"}}
	fields := &fakeFields{fn: func(llm.ExtractRequest) (map[string]any, []byte, error) {
		return nil, nil, common.ErrModelInvocation
	}}

	p := newTestProcessor(files, jobs, text, fields)
	_, err := p.ProcessFile(context.Background(), id, uuid.New())
	if !errors.Is(err, common.ErrModelInvocation) {
		t.Fatalf("err = %v", err)
	}
	for _, st := range jobs.jobs {
		if st.status != string(constants.JobStatusFailed) {
			t.Errorf("job status = %s, want FAILED", st.status)
		}
	}
}
