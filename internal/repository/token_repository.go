//go:generate mockery --name TokenRepository --output ./mocks --outpkg mocks --case=underscore
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

type TokenRepository interface {
	// PendingLogin (二要素認証の仮ログイントークン)
	CreatePendingLogin(ctx context.Context, db *gorm.DB, pending *model.PendingLogin) error
	FindPendingLogin(ctx context.Context, db *gorm.DB, token string) (*model.PendingLogin, error)
	// ConsumePendingLogin は未消費のトークンだけを test-and-set で消費済みにします。
	// 勝者が1人だけになるよう、消費できなかった場合は model.ErrNotFound を返します
	ConsumePendingLogin(ctx context.Context, db *gorm.DB, token string) error
	DeleteExpiredPendingLogins(ctx context.Context, db *gorm.DB) error

	// RefreshToken (ローテーション付きリフレッシュトークン)
	CreateRefreshToken(ctx context.Context, db *gorm.DB, token *model.RefreshToken) error
	FindRefreshToken(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.RefreshToken, error)
	// MarkReplaced は旧トークンを置換済みにします。既に置換・失効済みなら model.ErrConflict
	MarkReplaced(ctx context.Context, db *gorm.DB, id, replacedBy uuid.UUID) error
	// RevokeChain は同一ログインセッション系列の有効なトークンを全て失効させます
	RevokeChain(ctx context.Context, db *gorm.DB, chainID uuid.UUID) error

	// RecoveryCode
	FindUnusedRecoveryCodes(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]model.RecoveryCode, error)
	MarkRecoveryCodeUsed(ctx context.Context, db *gorm.DB, id uint) error
	// ReplaceRecoveryCodes は既存のコードを全て破棄して新しいセットに入れ替えます
	ReplaceRecoveryCodes(ctx context.Context, db *gorm.DB, userID uuid.UUID, codeHashes []string) error
}

type gormTokenRepository struct{}

func NewGormTokenRepository() TokenRepository {
	return &gormTokenRepository{}
}

func (r *gormTokenRepository) CreatePendingLogin(ctx context.Context, db *gorm.DB, pending *model.PendingLogin) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(pending).Error; err != nil {
		logger.Error("Failed to create pending login", "error", err)
		return fmt.Errorf("gormTokenRepository.CreatePendingLogin: %w", err)
	}
	return nil
}

func (r *gormTokenRepository) FindPendingLogin(ctx context.Context, db *gorm.DB, tokenStr string) (*model.PendingLogin, error) {
	logger := middleware.GetLogger(ctx)
	var pending model.PendingLogin
	if err := db.WithContext(ctx).Where("token = ?", tokenStr).First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find pending login", "error", err)
		return nil, fmt.Errorf("gormTokenRepository.FindPendingLogin: %w", err)
	}
	return &pending, nil
}

func (r *gormTokenRepository) ConsumePendingLogin(ctx context.Context, db *gorm.DB, tokenStr string) error {
	logger := middleware.GetLogger(ctx)

	// consumed = false の行だけを更新する。2つの並行した二要素認証提出のうち
	// 勝てるのは RowsAffected == 1 になった1つだけ
	result := db.WithContext(ctx).
		Model(&model.PendingLogin{}).
		Where("token = ? AND consumed = ?", tokenStr, false).
		Update("consumed", true)
	if result.Error != nil {
		logger.Error("Failed to consume pending login", "error", result.Error)
		return fmt.Errorf("gormTokenRepository.ConsumePendingLogin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormTokenRepository) DeleteExpiredPendingLogins(ctx context.Context, db *gorm.DB) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.PendingLogin{})
	if result.Error != nil {
		logger.Error("Failed to delete expired pending logins", "error", result.Error)
		return fmt.Errorf("gormTokenRepository.DeleteExpiredPendingLogins: %w", result.Error)
	}
	return nil
}

func (r *gormTokenRepository) CreateRefreshToken(ctx context.Context, db *gorm.DB, token *model.RefreshToken) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(token).Error; err != nil {
		logger.Error("Failed to create refresh token", "error", err)
		return fmt.Errorf("gormTokenRepository.CreateRefreshToken: %w", err)
	}
	return nil
}

func (r *gormTokenRepository) FindRefreshToken(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.RefreshToken, error) {
	logger := middleware.GetLogger(ctx)
	var token model.RefreshToken
	if err := db.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find refresh token", "error", err)
		return nil, fmt.Errorf("gormTokenRepository.FindRefreshToken: %w", err)
	}
	return &token, nil
}

func (r *gormTokenRepository) MarkReplaced(ctx context.Context, db *gorm.DB, id, replacedBy uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	// ローテーションも単一勝者。並行した更新リクエストが同じトークンを
	// 同時に置換できないよう、未置換・未失効の行だけを対象にする
	result := db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("id = ? AND replaced_by IS NULL AND revoked_at IS NULL", id).
		Update("replaced_by", replacedBy)
	if result.Error != nil {
		logger.Error("Failed to mark refresh token replaced", "error", result.Error)
		return fmt.Errorf("gormTokenRepository.MarkReplaced: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrConflict
	}
	return nil
}

func (r *gormTokenRepository) RevokeChain(ctx context.Context, db *gorm.DB, chainID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("chain_id = ? AND revoked_at IS NULL", chainID).
		Update("revoked_at", time.Now())
	if result.Error != nil {
		logger.Error("Failed to revoke refresh token chain", "error", result.Error, "chain_id", chainID.String())
		return fmt.Errorf("gormTokenRepository.RevokeChain: %w", result.Error)
	}
	return nil
}

func (r *gormTokenRepository) ReplaceRecoveryCodes(ctx context.Context, db *gorm.DB, userID uuid.UUID, codeHashes []string) error {
	logger := middleware.GetLogger(ctx)

	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.RecoveryCode{}).Error; err != nil {
		logger.Error("Failed to delete old recovery codes", "error", err)
		return fmt.Errorf("gormTokenRepository.ReplaceRecoveryCodes: %w", err)
	}

	codes := make([]model.RecoveryCode, 0, len(codeHashes))
	for _, hash := range codeHashes {
		codes = append(codes, model.RecoveryCode{UserID: userID, CodeHash: hash})
	}
	if len(codes) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).Create(&codes).Error; err != nil {
		logger.Error("Failed to create recovery codes", "error", err)
		return fmt.Errorf("gormTokenRepository.ReplaceRecoveryCodes: %w", err)
	}
	return nil
}

func (r *gormTokenRepository) FindUnusedRecoveryCodes(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]model.RecoveryCode, error) {
	logger := middleware.GetLogger(ctx)
	var codes []model.RecoveryCode
	err := db.WithContext(ctx).
		Where("user_id = ? AND used_at IS NULL", userID).
		Find(&codes).Error
	if err != nil {
		logger.Error("Failed to find recovery codes", "error", err)
		return nil, fmt.Errorf("gormTokenRepository.FindUnusedRecoveryCodes: %w", err)
	}
	return codes, nil
}

func (r *gormTokenRepository) MarkRecoveryCodeUsed(ctx context.Context, db *gorm.DB, id uint) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).
		Model(&model.RecoveryCode{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", time.Now())
	if result.Error != nil {
		logger.Error("Failed to mark recovery code used", "error", result.Error)
		return fmt.Errorf("gormTokenRepository.MarkRecoveryCodeUsed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
