//go:generate mockery --name OAuthRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"devhub/internal/middleware"
	"devhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type OAuthRepository interface {
	// FindByProvider は (provider, provider_id) の複合キーで紐付けを検索します
	FindByProvider(ctx context.Context, db *gorm.DB, provider, providerID string) (*model.OAuthIdentity, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, provider string) (*model.OAuthIdentity, error)
	Create(ctx context.Context, db *gorm.DB, identity *model.OAuthIdentity) error
	Update(ctx context.Context, db *gorm.DB, identity *model.OAuthIdentity) error
}

type gormOAuthRepository struct{}

func NewGormOAuthRepository() OAuthRepository {
	return &gormOAuthRepository{}
}

func (r *gormOAuthRepository) FindByProvider(ctx context.Context, db *gorm.DB, provider, providerID string) (*model.OAuthIdentity, error) {
	logger := middleware.GetLogger(ctx)
	var identity model.OAuthIdentity
	err := db.WithContext(ctx).
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find oauth identity", "error", err, "provider", provider)
		return nil, fmt.Errorf("gormOAuthRepository.FindByProvider: %w", err)
	}
	return &identity, nil
}

func (r *gormOAuthRepository) FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, provider string) (*model.OAuthIdentity, error) {
	logger := middleware.GetLogger(ctx)
	var identity model.OAuthIdentity
	err := db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find oauth identity by user", "error", err, "provider", provider)
		return nil, fmt.Errorf("gormOAuthRepository.FindByUser: %w", err)
	}
	return &identity, nil
}

func (r *gormOAuthRepository) Create(ctx context.Context, db *gorm.DB, identity *model.OAuthIdentity) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(identity).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// (provider, provider_id) の一意性はシステム全体の不変条件
			logger.Warn("Duplicate oauth identity", "error", err, "provider", identity.Provider)
			return model.ErrConflict
		}
		logger.Error("Failed to create oauth identity", "error", err, "provider", identity.Provider)
		return fmt.Errorf("gormOAuthRepository.Create: %w", err)
	}
	return nil
}

func (r *gormOAuthRepository) Update(ctx context.Context, db *gorm.DB, identity *model.OAuthIdentity) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Save(identity).Error; err != nil {
		logger.Error("Failed to update oauth identity", "error", err, "provider", identity.Provider)
		return fmt.Errorf("gormOAuthRepository.Update: %w", err)
	}
	return nil
}
