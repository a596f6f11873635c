package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taxlens/invoice-analyzer/internal/entity"
)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	CreateBatch(ctx context.Context, invs []entity.Invoice) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.Invoice, error)
}

type invoiceRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewInvoiceRepository(db *gorm.DB, log *slog.Logger) InvoiceRepository {
	return &invoiceRepo{db: db, log: log}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	prepare(inv)
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		r.log.Error("failed to create invoice", "invoice_no", inv.InvoiceNo, "err", err)
		return err
	}
	return nil
}

// CreateBatch persists all accepted records of one batch in a single
// transaction and reports how many rows were written.
func (r *invoiceRepo) CreateBatch(ctx context.Context, invs []entity.Invoice) (int, error) {
	if len(invs) == 0 {
		return 0, nil
	}
	for i := range invs {
		prepare(&invs[i])
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(invs, 100).Error
	})
	if err != nil {
		r.log.Error("failed to create invoice batch", "count", len(invs), "err", err)
		return 0, err
	}
	r.log.Info("invoice batch persisted", "batch_id", invs[0].BatchID, "count", len(invs))
	return len(invs), nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var inv entity.Invoice
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.Invoice, error) {
	var invs []entity.Invoice
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at").
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

func prepare(inv *entity.Invoice) {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	if inv.Items == nil {
		inv.Items = []entity.LineItem{}
	}
}
