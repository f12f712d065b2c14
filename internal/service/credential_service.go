package service

import (
	"context"
	"errors"

	"devhub/internal/middleware"
	"devhub/internal/model"
	"devhub/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CredentialService はユーザー名/メールアドレスとパスワードの検証と、
// 認証済みユーザーの読み出しを行います
type CredentialService interface {
	Verify(ctx context.Context, usernameOrEmail, password string) (*model.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type credentialService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
}

func NewCredentialService(db *gorm.DB, userRepo repository.UserRepository) CredentialService {
	return &credentialService{
		db:       db,
		userRepo: userRepo,
	}
}

// Verify はパスワード認証を行い、成功時にユーザーを返します。
// 「ユーザーが存在しない」と「パスワードが違う」は呼び出し側から
// 区別できてはいけない (ユーザー名の列挙攻撃を防ぐため)。
// ストレージ障害は認証失敗とは別の内部エラーとして返します
func (s *credentialService) Verify(ctx context.Context, usernameOrEmail, password string) (*model.User, error) {
	logger := middleware.GetLogger(ctx)

	user, err := s.userRepo.FindByNameOrEmail(ctx, s.db, usernameOrEmail)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Login failed: user not found")
			return nil, invalidCredentialsError()
		}
		logger.Error("Login failed: db error on FindByNameOrEmail", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	// bcryptの比較は定数時間で行われる
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn("Login failed: password mismatch", "user_id", user.UserID)
		return nil, invalidCredentialsError()
	}

	if !user.IsActive {
		logger.Warn("Login failed: account not active", "user_id", user.UserID)
		return nil, model.NewAppError("ACCOUNT_NOT_ACTIVE", "アカウントが有効化されていません。", "", model.ErrForbidden)
	}

	return user, nil
}

// GetUser は指定されたIDのユーザーを取得します
func (s *credentialService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("User not found", "user_id", userID.String())
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Error finding user by ID", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return user, nil
}

func invalidCredentialsError() *model.AppError {
	// どちらの失敗でも同一のコード・メッセージを返す
	return model.NewAppError("AUTHENTICATION_FAILED", "ユーザー名またはパスワードが正しくありません。", "", model.ErrInvalidInput)
}
