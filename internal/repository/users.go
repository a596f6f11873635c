package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/taxlens/invoice-analyzer/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmailOrAadhaar(ctx context.Context, email, aadhaar string) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewUserRepository(db *gorm.DB, log *slog.Logger) UserRepository {
	return &userRepo{db: db, log: log}
}

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.Error("failed to create user", "email", user.Email, "error", err)
		return err
	}
	r.log.Info("user created", "user_id", user.ID, "user_type", user.UserType)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmailOrAadhaar backs duplicate checks at signup: an account
// is a duplicate when either identifier is already registered.
func (r *userRepo) ExistsByEmailOrAadhaar(ctx context.Context, email, aadhaar string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("email = ? OR aadhaar_number = ?", email, aadhaar).
		Count(&count).Error
	if err != nil {
		r.log.Error("failed to check user duplicates", "error", err)
		return false, err
	}
	return count > 0, nil
}
