package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"devhub/internal/middleware"
	"devhub/internal/model"
	"devhub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APITokenService は長期利用のスコープ付きAPIトークンを管理します
type APITokenService interface {
	// Create はトークンを発行します。シークレット平文はこの戻り値でのみ得られ、
	// 以後はハッシュ照合しかできません
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateAPITokenRequest) (*model.CreateAPITokenResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.APIToken, error)
	// Revoke は失効状態への遷移のみ行います。スコープ集合は不変です
	Revoke(ctx context.Context, userID uuid.UUID, tokenID uuid.UUID) error
}

type apiTokenService struct {
	db   *gorm.DB
	repo repository.APITokenRepository
}

func NewAPITokenService(db *gorm.DB, repo repository.APITokenRepository) APITokenService {
	return &apiTokenService{db: db, repo: repo}
}

func (s *apiTokenService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateAPITokenRequest) (*model.CreateAPITokenResponse, error) {
	logger := middleware.GetLogger(ctx)

	secretBytes := make([]byte, 20)
	if _, err := rand.Read(secretBytes); err != nil {
		logger.Error("Failed to generate api token secret", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}
	secret := model.APITokenPrefix + hex.EncodeToString(secretBytes)
	hash := sha256.Sum256([]byte(secret))

	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return nil, model.NewAppError("INVALID_EXPIRY", "有効期限には未来の日時を指定してください。", "expires_at", model.ErrInvalidInput)
	}

	token := &model.APIToken{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       req.Name,
		SecretHash: hex.EncodeToString(hash[:]),
		Scopes:     strings.Join(req.Scopes, " "),
		ExpiresAt:  req.ExpiresAt,
	}
	if err := s.repo.Create(ctx, s.db, token); err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの保存に失敗しました。", "", err)
	}

	logger.Info("API token created", "user_id", userID, "token_id", token.ID, "scopes", token.Scopes)
	return &model.CreateAPITokenResponse{
		Token:  secret,
		Detail: token,
	}, nil
}

func (s *apiTokenService) List(ctx context.Context, userID uuid.UUID) ([]model.APIToken, error) {
	tokens, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}
	return tokens, nil
}

func (s *apiTokenService) Revoke(ctx context.Context, userID uuid.UUID, tokenID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	if err := s.repo.Revoke(ctx, s.db, tokenID, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("TOKEN_NOT_FOUND", "トークンが見つからないか、既に失効しています。", "token_id", model.ErrNotFound)
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}

	logger.Info("API token revoked", "user_id", userID, "token_id", tokenID)
	return nil
}
