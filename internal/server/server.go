// Package server exposes the HTTP surface: auth, batch upload and
// verification, exports, the item catalog, and bill generation.
package server

import (
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/taxlens/invoice-analyzer/internal/auth"
	"github.com/taxlens/invoice-analyzer/internal/common"
	"github.com/taxlens/invoice-analyzer/internal/ingest"
	"github.com/taxlens/invoice-analyzer/internal/observability/metrics"
	"github.com/taxlens/invoice-analyzer/internal/pipeline"
	"github.com/taxlens/invoice-analyzer/internal/repository"
)

// Server wires the handlers to their collaborators.
type Server struct {
	logger    *slog.Logger
	cfg       *common.Config
	db        *gorm.DB
	users     repository.UserRepository
	items     repository.ItemRepository
	invoices  repository.InvoiceRepository
	ingestor  *ingest.FSIngestor
	processor *pipeline.Processor
	sessions  *SessionStore
	metrics   *metrics.ServerMetrics
	service   string
}

func New(
	logger *slog.Logger,
	cfg *common.Config,
	db *gorm.DB,
	users repository.UserRepository,
	items repository.ItemRepository,
	invoices repository.InvoiceRepository,
	ingestor *ingest.FSIngestor,
	processor *pipeline.Processor,
	m *metrics.ServerMetrics,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:    logger,
		cfg:       cfg,
		db:        db,
		users:     users,
		items:     items,
		invoices:  invoices,
		ingestor:  ingestor,
		processor: processor,
		sessions:  NewSessionStore(),
		metrics:   m,
		service:   "invoiced",
	}
}

// Router builds the full handler chain. Health, metrics, and the auth
// endpoints are open; everything under /v1 requires a session.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /healthz", s.healthz)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("POST /signup", s.signup)
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("POST /logout", s.logout)

	api := http.NewServeMux()
	api.HandleFunc("POST /v1/batches", s.createBatch)
	api.HandleFunc("GET /v1/batches/{id}", s.getBatch)
	api.HandleFunc("GET /v1/batches/{id}/current", s.batchCurrent)
	api.HandleFunc("POST /v1/batches/{id}/verify", s.batchVerify)
	api.HandleFunc("POST /v1/batches/{id}/skip", s.batchSkip)
	api.HandleFunc("POST /v1/batches/{id}/previous", s.batchPrevious)
	api.HandleFunc("GET /v1/batches/{id}/export", s.exportBatch)
	api.HandleFunc("GET /v1/items", s.listItems)
	api.HandleFunc("GET /v1/categories", s.listCategories)
	api.HandleFunc("POST /v1/bills", s.previewBill)
	api.HandleFunc("POST /v1/bills/pdf", s.billPDF)
	mux.Handle("/v1/", auth.RequireAuth(api))

	handler := http.Handler(mux)
	handler = auth.Middleware(handler)
	if s.metrics != nil {
		handler = s.metrics.Middleware(s.service, handler)
	}
	handler = s.accessLogMiddleware(handler)
	handler = s.recoverMiddleware(handler)
	handler = s.requestIDMiddleware(handler)
	return handler
}
