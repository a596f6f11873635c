package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taxlens/invoice-analyzer/internal/auth"
	"github.com/taxlens/invoice-analyzer/internal/common"
	"github.com/taxlens/invoice-analyzer/internal/extract"
	"github.com/taxlens/invoice-analyzer/internal/ingest"
	"github.com/taxlens/invoice-analyzer/internal/llm/gemini"
	"github.com/taxlens/invoice-analyzer/internal/observability/logging"
	"github.com/taxlens/invoice-analyzer/internal/observability/metrics"
	"github.com/taxlens/invoice-analyzer/internal/ocr"
	"github.com/taxlens/invoice-analyzer/internal/pipeline"
	"github.com/taxlens/invoice-analyzer/internal/repository"
	"github.com/taxlens/invoice-analyzer/internal/resilience"
	"github.com/taxlens/invoice-analyzer/internal/server"
)

const service = "invoiced"

func main() {
	// Env
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	// Logger
	log := logging.NewJSONLogger(service, os.Getenv("LOG_LEVEL"))

	if err := cfg.Validate(); err != nil {
		log.Error("config invalid", "err", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		log.Error("upload dir", "dir", cfg.Server.UploadDir, "err", err)
		os.Exit(1)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
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
	if err := repository.HealthCheck(ctx, db, 3*time.Second); err != nil {
		log.Error("db health", "err", err)
		os.Exit(1)
	}

	// Repositories
	users := repository.NewUserRepository(db, log)
	items := repository.NewItemRepository(db, log)
	files := repository.NewInvoiceFileRepository(db, log)
	jobs := repository.NewExtractJobRepository(db, log)
	invoices := repository.NewInvoiceRepository(db, log)

	// Stale sessions are rejected once their user is gone.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		_, err := users.GetByID(ctx, uid)
		return err == nil
	})

	// Extraction pipeline
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

	m := metrics.NewServerMetrics(service)
	proc := pipeline.NewProcessor(
		log, files, jobs, text, model,
		resilience.NewExecutor(resilience.DefaultConfig()),
		m, service, model.Model(),
	)

	srv := server.New(log, cfg, db, users, items, invoices,
		ingest.NewFSIngestor(files, log), proc, m)

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http serve", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
}
