package service

import (
	"context"
	"errors"
	"time"

	"devhub/internal/config"
	"devhub/internal/middleware"
	"devhub/internal/model"
	"devhub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenService は検証済みユーザーへのトークンペア発行と、
// リフレッシュトークンのローテーション・失効を担います
type TokenService interface {
	// IssuePair は新しいログインセッション (チェーン) を開始し、
	// アクセス/リフレッシュトークンの組を発行します
	IssuePair(ctx context.Context, user *model.User) (*model.TokenPair, error)
	// Refresh は有効なリフレッシュトークンを新しいペアに交換します。
	// 置換済みトークンの再利用を検出した場合、そのセッション系列を丸ごと失効させます
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	// RevokeSession はリフレッシュトークンの属するセッション系列を失効させます (ログアウト)
	RevokeSession(ctx context.Context, refreshToken string) error
}

type tokenService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	cfg       *config.Config
	now       func() time.Time
}

func NewTokenService(db *gorm.DB, userRepo repository.UserRepository, tokenRepo repository.TokenRepository, cfg *config.Config) TokenService {
	return &tokenService{
		db:        db,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *tokenService) IssuePair(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	chainID := uuid.New()
	return s.issue(ctx, s.db, user, chainID)
}

// issue は指定したチェーンに属する新しいトークンペアを発行します
func (s *tokenService) issue(ctx context.Context, db *gorm.DB, user *model.User, chainID uuid.UUID) (*model.TokenPair, error) {
	logger := middleware.GetLogger(ctx)
	now := s.now()

	accessExpiry := now.Add(s.cfg.JWT.AccessTokenTTL)
	accessClaims := &model.AccessClaims{
		TokenType: model.TokenTypeAccess,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.App.Name,
			Subject:   user.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).
		SignedString([]byte(s.cfg.JWT.AccessSecret))
	if err != nil {
		logger.Error("Failed to sign access token", "error", err, "user_id", user.UserID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	refreshID := uuid.New()
	refreshExpiry := now.Add(s.cfg.JWT.RefreshTokenTTL)
	refreshClaims := &model.RefreshClaims{
		TokenType: model.TokenTypeRefresh,
		ChainID:   chainID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        refreshID.String(),
			Issuer:    s.cfg.App.Name,
			Subject:   user.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString([]byte(s.cfg.JWT.RefreshSecret))
	if err != nil {
		logger.Error("Failed to sign refresh token", "error", err, "user_id", user.UserID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	record := &model.RefreshToken{
		ID:        refreshID,
		UserID:    user.UserID,
		ChainID:   chainID,
		ExpiresAt: refreshExpiry,
	}
	if err := s.tokenRepo.CreateRefreshToken(ctx, db, record); err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの保存に失敗しました。", "", err)
	}

	return &model.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: accessExpiry,
	}, nil
}

func (s *tokenService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	logger := middleware.GetLogger(ctx)

	claims, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		logger.Warn("Refresh failed: invalid token", "error", err)
		return nil, invalidRefreshTokenError()
	}
	tokenID, chainID, userID, err := refreshClaimIDs(claims)
	if err != nil {
		logger.Warn("Refresh failed: malformed claims", "error", err)
		return nil, invalidRefreshTokenError()
	}

	var pair *model.TokenPair
	var reuseDetected bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.tokenRepo.FindRefreshToken(ctx, tx, tokenID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Refresh failed: unknown token id", "user_id", userID)
				return invalidRefreshTokenError()
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}

		if !record.Live(s.now()) {
			// 置換済みトークンの再提示はセッション乗っ取りの兆候として扱い、
			// 系列全体を失効させる。失効の書き込みはこのトランザクションが
			// エラーで巻き戻った後に行う (下記)
			if record.ReplacedBy != nil || record.RevokedAt != nil {
				reuseDetected = true
			}
			return invalidRefreshTokenError()
		}

		user, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			logger.Error("Refresh failed: user lookup", "error", err, "user_id", userID)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}
		if !user.IsActive {
			logger.Warn("Refresh refused: account not active", "user_id", userID)
			return invalidRefreshTokenError()
		}

		newPair, err := s.issue(ctx, tx, user, chainID)
		if err != nil {
			return err
		}

		newClaims, err := s.parseRefreshToken(newPair.RefreshToken)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}
		newID, _ := uuid.Parse(newClaims.ID)

		if err := s.tokenRepo.MarkReplaced(ctx, tx, tokenID, newID); err != nil {
			if errors.Is(err, model.ErrConflict) {
				// 並行した更新に先を越された
				logger.Warn("Refresh lost rotation race", "user_id", userID)
				return invalidRefreshTokenError()
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}

		pair = newPair
		return nil
	})
	if reuseDetected {
		// 失効はエラー返却で巻き戻るトランザクションの中では確定しないため、
		// 外側で独立したコミットとして書き込む
		logger.Warn("Refresh token reuse detected, revoking chain",
			"user_id", userID, "chain_id", chainID.String())
		if revokeErr := s.tokenRepo.RevokeChain(ctx, s.db, chainID); revokeErr != nil {
			logger.Error("Failed to revoke chain after reuse", "error", revokeErr)
		}
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Token pair refreshed", "user_id", userID)
	return pair, nil
}

func (s *tokenService) RevokeSession(ctx context.Context, refreshToken string) error {
	logger := middleware.GetLogger(ctx)

	claims, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		logger.Warn("Logout with invalid refresh token", "error", err)
		return invalidRefreshTokenError()
	}
	_, chainID, userID, err := refreshClaimIDs(claims)
	if err != nil {
		return invalidRefreshTokenError()
	}

	if err := s.tokenRepo.RevokeChain(ctx, s.db, chainID); err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}

	logger.Info("Session revoked", "user_id", userID, "chain_id", chainID.String())
	return nil
}

// parseRefreshToken は署名・有効期限・トークン種別を検証します。
// アクセストークンとは署名鍵が異なるため、アクセストークンをリフレッシュ
// トークンとして提示してもここで弾かれる
func (s *tokenService) parseRefreshToken(tokenString string) (*model.RefreshClaims, error) {
	claims := &model.RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWT.RefreshSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.TokenType != model.TokenTypeRefresh {
		return nil, errors.New("not a refresh token")
	}
	return claims, nil
}

func refreshClaimIDs(claims *model.RefreshClaims) (tokenID, chainID, userID uuid.UUID, err error) {
	if tokenID, err = uuid.Parse(claims.ID); err != nil {
		return
	}
	if chainID, err = uuid.Parse(claims.ChainID); err != nil {
		return
	}
	userID, err = uuid.Parse(claims.Subject)
	return
}

func invalidRefreshTokenError() *model.AppError {
	return model.NewAppError("INVALID_REFRESH_TOKEN", "リフレッシュトークンが無効です。再度ログインしてください。", "refresh_token", model.ErrForbidden)
}
