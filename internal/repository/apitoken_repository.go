//go:generate mockery --name APITokenRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devhub/internal/middleware"
	"devhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type APITokenRepository interface {
	Create(ctx context.Context, db *gorm.DB, token *model.APIToken) error
	// FindBySecretHash はシークレットのハッシュでトークンを検索します。
	// 有効性 (失効・期限) の判定は呼び出し側が行います
	FindBySecretHash(ctx context.Context, db *gorm.DB, secretHash string) (*model.APIToken, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.APIToken, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]model.APIToken, error)
	// Revoke は状態遷移のみ行います。スコープ集合は変更しません
	Revoke(ctx context.Context, db *gorm.DB, id uuid.UUID, userID uuid.UUID) error
}

type gormAPITokenRepository struct{}

func NewGormAPITokenRepository() APITokenRepository {
	return &gormAPITokenRepository{}
}

func (r *gormAPITokenRepository) Create(ctx context.Context, db *gorm.DB, token *model.APIToken) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(token).Error; err != nil {
		logger.Error("Failed to create api token", "error", err)
		return fmt.Errorf("gormAPITokenRepository.Create: %w", err)
	}
	return nil
}

func (r *gormAPITokenRepository) FindBySecretHash(ctx context.Context, db *gorm.DB, secretHash string) (*model.APIToken, error) {
	logger := middleware.GetLogger(ctx)
	var token model.APIToken
	if err := db.WithContext(ctx).Where("secret_hash = ?", secretHash).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find api token by secret hash", "error", err)
		return nil, fmt.Errorf("gormAPITokenRepository.FindBySecretHash: %w", err)
	}
	return &token, nil
}

func (r *gormAPITokenRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.APIToken, error) {
	logger := middleware.GetLogger(ctx)
	var token model.APIToken
	if err := db.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find api token by ID", "error", err, "token_id", id.String())
		return nil, fmt.Errorf("gormAPITokenRepository.FindByID: %w", err)
	}
	return &token, nil
}

func (r *gormAPITokenRepository) ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]model.APIToken, error) {
	logger := middleware.GetLogger(ctx)
	var tokens []model.APIToken
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tokens).Error
	if err != nil {
		logger.Error("Failed to list api tokens", "error", err, "user_id", userID.String())
		return nil, fmt.Errorf("gormAPITokenRepository.ListByUser: %w", err)
	}
	return tokens, nil
}

func (r *gormAPITokenRepository) Revoke(ctx context.Context, db *gorm.DB, id uuid.UUID, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).
		Model(&model.APIToken{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", id, userID).
		Update("revoked_at", time.Now())
	if result.Error != nil {
		logger.Error("Failed to revoke api token", "error", result.Error, "token_id", id.String())
		return fmt.Errorf("gormAPITokenRepository.Revoke: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

