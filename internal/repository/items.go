package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/taxlens/invoice-analyzer/internal/entity"
)

type ItemRepository interface {
	// ReplaceAll swaps the whole catalog for the given rows. Seeding is
	// a full refresh, not a merge.
	ReplaceAll(ctx context.Context, items []entity.Item) (int, error)
	List(ctx context.Context) ([]entity.Item, error)
	ListByCategory(ctx context.Context, category string) ([]entity.Item, error)
	Categories(ctx context.Context) ([]string, error)
}

type itemRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewItemRepository(db *gorm.DB, log *slog.Logger) ItemRepository {
	return &itemRepo{db: db, log: log}
}

func (r *itemRepo) ReplaceAll(ctx context.Context, items []entity.Item) (int, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&entity.Item{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(items, 500).Error
	})
	if err != nil {
		r.log.Error("failed to replace item catalog", "rows", len(items), "error", err)
		return 0, err
	}
	r.log.Info("item catalog replaced", "rows", len(items))
	return len(items), nil
}

func (r *itemRepo) List(ctx context.Context) ([]entity.Item, error) {
	var items []entity.Item
	if err := r.db.WithContext(ctx).Order("category, item_name").Find(&items).Error; err != nil {
		r.log.Error("failed to list items", "error", err)
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) ListByCategory(ctx context.Context, category string) ([]entity.Item, error) {
	var items []entity.Item
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("item_name").
		Find(&items).Error
	if err != nil {
		r.log.Error("failed to list items by category", "category", category, "error", err)
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&entity.Item{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		r.log.Error("failed to list categories", "error", err)
		return nil, err
	}
	return categories, nil
}
