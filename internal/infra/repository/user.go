package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Upsert(ctx context.Context, walletAddress string) (domain.User, error) {

	now := time.Now()
	record := models.User{
		WalletAddress: walletAddress,
		LastLoginAt:   now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.Assignments(map[string]any{"last_login_at": now}),
	}).Create(&record).Error
	if err != nil {
		return domain.User{}, domain.StorageError{Err: err}
	}

	// the conflict path does not return the row
	err = r.db.WithContext(ctx).
		Where("wallet_address = ?", walletAddress).
		Take(&record).Error
	if err != nil {
		return domain.User{}, domain.StorageError{Err: err}
	}

	return userToDomain(record), nil
}

func (r *UserRepository) GetByWallet(ctx context.Context, walletAddress string) (domain.User, error) {
	var record models.User
	err := r.db.WithContext(ctx).
		Where("wallet_address = ?", walletAddress).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, domain.StorageError{Err: err}
	}
	return userToDomain(record), nil
}

func userToDomain(record models.User) domain.User {
	return domain.User{
		ID:            record.ID,
		WalletAddress: record.WalletAddress,
		CreatedAt:     record.CreatedAt,
		LastLoginAt:   record.LastLoginAt,
	}
}
