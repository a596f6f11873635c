// Command invoice-batch ingests a directory of invoice documents, runs
// the extraction pipeline over every file, and writes the accepted
// records to <out>.json and <out>.csv.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/taxlens/invoice-analyzer/internal/common"
	"github.com/taxlens/invoice-analyzer/internal/entity"
	"github.com/taxlens/invoice-analyzer/internal/export"
	"github.com/taxlens/invoice-analyzer/internal/extract"
	"github.com/taxlens/invoice-analyzer/internal/ingest"
	"github.com/taxlens/invoice-analyzer/internal/llm/gemini"
	"github.com/taxlens/invoice-analyzer/internal/observability/logging"
	"github.com/taxlens/invoice-analyzer/internal/ocr"
	"github.com/taxlens/invoice-analyzer/internal/pipeline"
	"github.com/taxlens/invoice-analyzer/internal/repository"
	"github.com/taxlens/invoice-analyzer/internal/resilience"
)

func main() {
	var (
		dir        = flag.String("dir", "", "directory of invoice PDFs/images to process")
		out        = flag.String("out", "invoices", "output file prefix (writes <out>.json and <out>.csv)")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
	)
	flag.Parse()
	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: invoice-batch -dir <directory> [-out prefix]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	log := logging.NewJSONLogger("invoice-batch", os.Getenv("LOG_LEVEL"))
	if err := cfg.Validate(); err != nil {
		log.Error("config invalid", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Error("db open", "err", err)
		os.Exit(1)
	}
	defer repository.Close(db, log)
	if err := repository.AutoMigrate(db, log); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	files := repository.NewInvoiceFileRepository(db, log)
	jobs := repository.NewExtractJobRepository(db, log)
	invoices := repository.NewInvoiceRepository(db, log)

	results, stats, err := ingest.NewFSIngestor(files, log).IngestDirectory(ctx, 0, *dir, *skipHidden)
	if err != nil {
		log.Error("ingest", "dir", *dir, "err", err)
		os.Exit(1)
	}
	log.Info("ingest done",
		"scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated,
		"failed", stats.Failed)

	var fileIDs []uuid.UUID
	for _, res := range results {
		if res.Err == "" {
			fileIDs = append(fileIDs, res.FileID)
		}
	}
	if len(fileIDs) == 0 {
		log.Warn("no processable files", "dir", *dir)
		os.Exit(1)
	}

	text := extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		TesseractLang: cfg.OCR.Language,
		DPI:           cfg.OCR.RasterDPI,
		TessdataDir:   cfg.OCR.TessdataDir,
		WorkDir:       cfg.OCR.WorkDir,
	}, log))
	model := gemini.NewClient(gemini.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, log)

	proc := pipeline.NewProcessor(
		log, files, jobs, text, model,
		resilience.NewExecutor(resilience.DefaultConfig()),
		nil, "invoice-batch", model.Model(),
	)

	batchID := uuid.New()
	outcome := proc.ProcessBatch(ctx, batchID, fileIDs)
	for _, f := range outcome.Failed {
		log.Warn("document failed", "filename", f.Filename, "reason", f.Reason)
	}
	if len(outcome.Documents) == 0 {
		log.Error("no documents extracted", "batch_id", batchID)
		os.Exit(1)
	}

	records := make([]entity.InvoiceRecord, 0, len(outcome.Documents))
	invs := make([]entity.Invoice, 0, len(outcome.Documents))
	for _, doc := range outcome.Documents {
		records = append(records, doc.Record)
		fileID := doc.FileID
		invs = append(invs, entity.Invoice{
			BatchID:       batchID,
			FileID:        &fileID,
			InvoiceRecord: doc.Record,
		})
	}
	if _, err := invoices.CreateBatch(ctx, invs); err != nil {
		log.Error("persist", "batch_id", batchID, "err", err)
		os.Exit(1)
	}

	if err := writeOutputs(*out, records); err != nil {
		log.Error("write outputs", "err", err)
		os.Exit(1)
	}
	summary := export.Summarize(records)
	log.Info("batch done",
		"batch_id", batchID,
		"invoices", summary.TotalInvoices,
		"grand_total", summary.TotalGrandTotal,
		"json", *out+".json", "csv", *out+".csv")
}

func writeOutputs(prefix string, records []entity.InvoiceRecord) error {
	jf, err := os.Create(prefix + ".json")
	if err != nil {
		return err
	}
	defer jf.Close()
	if err := export.WriteJSON(jf, records); err != nil {
		return err
	}

	cf, err := os.Create(prefix + ".csv")
	if err != nil {
		return err
	}
	defer cf.Close()
	return export.WriteCSV(cf, records)
}
