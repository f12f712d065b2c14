//go:generate mockery --name UserRepository --output ./mocks --outpkg mocks --case=underscore
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

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *model.User) error
	FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.User, error)
	// FindByNameOrEmail は識別子が名前・メールのどちらであっても1回の問い合わせで解決します
	FindByNameOrEmail(ctx context.Context, db *gorm.DB, identifier string) (*model.User, error)
	// SetTOTPSecret は登録途中の共有シークレットを保存します。有効化はしません
	SetTOTPSecret(ctx context.Context, db *gorm.DB, userID uuid.UUID, secret string) error
	// EnableTwoFactor は二要素認証を有効化します
	EnableTwoFactor(ctx context.Context, db *gorm.DB, userID uuid.UUID) error
}

type gormUserRepository struct{}

func NewGormUserRepository() UserRepository {
	return &gormUserRepository{}
}

func (r *gormUserRepository) Create(ctx context.Context, db *gorm.DB, user *model.User) error {
	logger := middleware.GetLogger(ctx)

	result := db.WithContext(ctx).Create(user)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23505" {
			logger.Warn(
				"Duplicate key error on create user",
				"error", result.Error,
				"user_name", user.Name,
				"email", user.Email,
			)
			return model.ErrConflict
		}

		logger.Error(
			"Error creating user in DB",
			"error", result.Error,
			"user_name", user.Name,
		)
		return fmt.Errorf("gormUserRepository.Create: %w", result.Error)
	}

	return nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var user model.User

	result := db.WithContext(ctx).Where("user_id = ?", userID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error(
			"Error finding user by ID in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormUserRepository.FindByID: %w", result.Error)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var user model.User

	result := db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			logger.Debug("User not found by email", "email", email)
			return nil, model.ErrNotFound
		}
		logger.Error(
			"Error finding user by email in DB",
			"error", result.Error,
			"email", email,
		)
		return nil, fmt.Errorf("gormUserRepository.FindByEmail: %w", result.Error)
	}
	return &user, nil
}

func (r *gormUserRepository) SetTOTPSecret(ctx context.Context, db *gorm.DB, userID uuid.UUID, secret string) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("totp_secret", secret)
	if result.Error != nil {
		logger.Error("Error setting totp secret in DB", "error", result.Error, "user_id", userID.String())
		return fmt.Errorf("gormUserRepository.SetTOTPSecret: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormUserRepository) EnableTwoFactor(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("two_factor_enabled", true)
	if result.Error != nil {
		logger.Error("Error enabling two factor in DB", "error", result.Error, "user_id", userID.String())
		return fmt.Errorf("gormUserRepository.EnableTwoFactor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormUserRepository) FindByNameOrEmail(ctx context.Context, db *gorm.DB, identifier string) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var user model.User

	result := db.WithContext(ctx).Where("name = ? OR email = ?", identifier, identifier).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error(
			"Error finding user by name or email in DB",
			"error", result.Error,
		)
		return nil, fmt.Errorf("gormUserRepository.FindByNameOrEmail: %w", result.Error)
	}
	return &user, nil
}
