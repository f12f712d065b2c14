package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"devhub/internal/config"
	"devhub/internal/middleware"
	"devhub/internal/model"
	"devhub/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// リカバリコードは10桁hexを8本。1本ごとに単回使用
const (
	recoveryCodeCount = 8
	recoveryCodeBytes = 5
)

// TwoFactorService は二要素認証のチャレンジを管理します。
// 一要素目成功後に仮ログイントークンを発行し、TOTPコードまたは
// リカバリコードで検証します
type TwoFactorService interface {
	// BeginChallenge は短いTTLの単回使用トークンを発行します
	BeginChallenge(ctx context.Context, user *model.User) (string, error)
	// CompleteChallenge は仮ログイントークンとコードを検証し、成功時に
	// トークンを消費してユーザーを返します。コード検証に失敗しても
	// 仮ログイントークン自体は無効化しません
	CompleteChallenge(ctx context.Context, pendingToken, code string) (*model.User, error)
	// BeginEnrollment は共有シークレットを生成・保存し、オーセンティケータ
	// 登録用のURIとともに返します。二要素認証の有効化は ActivateEnrollment まで
	// 行われません
	BeginEnrollment(ctx context.Context, userID uuid.UUID) (*model.TwoFactorEnrollResponse, error)
	// ActivateEnrollment は保存済みシークレットに対するTOTPコードを検証し、
	// 二要素認証を有効化してリカバリコードの平文を返します
	ActivateEnrollment(ctx context.Context, userID uuid.UUID, code string) (*model.TwoFactorActivateResponse, error)
}

type twoFactorService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	cfg       *config.Config
	now       func() time.Time
}

func NewTwoFactorService(db *gorm.DB, userRepo repository.UserRepository, tokenRepo repository.TokenRepository, cfg *config.Config) TwoFactorService {
	return &twoFactorService{
		db:        db,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *twoFactorService) BeginChallenge(ctx context.Context, user *model.User) (string, error) {
	logger := middleware.GetLogger(ctx)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		logger.Error("Failed to generate random bytes for pending login", "error", err)
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}
	tokenString := hex.EncodeToString(tokenBytes)

	pending := &model.PendingLogin{
		Token:     tokenString,
		UserID:    user.UserID,
		ExpiresAt: s.now().Add(s.cfg.TwoFactor.PendingTTL),
	}
	if err := s.tokenRepo.CreatePendingLogin(ctx, s.db, pending); err != nil {
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの保存に失敗しました。", "", err)
	}

	logger.Info("Two-factor challenge issued", "user_id", user.UserID)
	return tokenString, nil
}

func (s *twoFactorService) CompleteChallenge(ctx context.Context, pendingToken, code string) (*model.User, error) {
	logger := middleware.GetLogger(ctx)

	var verified *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := s.tokenRepo.FindPendingLogin(ctx, tx, pendingToken)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Pending login not found")
				return pendingTokenInvalidError()
			}
			logger.Error("Error finding pending login", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}

		if pending.Consumed || s.now().After(pending.ExpiresAt) {
			logger.Warn("Pending login consumed or expired", "user_id", pending.UserID)
			return pendingTokenInvalidError()
		}

		user, err := s.userRepo.FindByID(ctx, tx, pending.UserID)
		if err != nil {
			logger.Error("Error finding user for pending login", "error", err, "user_id", pending.UserID)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}

		ok, err := s.verifyCode(ctx, tx, user, code)
		if err != nil {
			return err
		}
		if !ok {
			// コード不一致。仮ログイントークンはそのまま残し、再入力を許す
			logger.Warn("Second factor failed", "user_id", user.UserID)
			return model.NewAppError("SECOND_FACTOR_FAILED", "認証コードが正しくありません。", "token", model.ErrInvalidInput)
		}

		// 消費は test-and-set。並行した提出が両方成功することはない
		if err := s.tokenRepo.ConsumePendingLogin(ctx, tx, pendingToken); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Pending login lost consume race", "user_id", user.UserID)
				return pendingTokenInvalidError()
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}

		verified = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Two-factor challenge completed", "user_id", verified.UserID)
	return verified, nil
}

func (s *twoFactorService) BeginEnrollment(ctx context.Context, userID uuid.UUID) (*model.TwoFactorEnrollResponse, error) {
	logger := middleware.GetLogger(ctx)

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}
	if user.TwoFactorEnabled {
		logger.Warn("Two-factor enrollment refused: already enabled", "user_id", userID)
		return nil, model.NewAppError("TWO_FACTOR_ALREADY_ENABLED", "二要素認証は既に有効です。", "", model.ErrConflict)
	}

	secret, err := GenerateTOTPSecret()
	if err != nil {
		logger.Error("Failed to generate totp secret", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "シークレットの生成に失敗しました。", "", err)
	}

	// 有効化前の再実行は前回のシークレットを上書きする
	if err := s.userRepo.SetTOTPSecret(ctx, s.db, userID, secret); err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}

	logger.Info("Two-factor enrollment started", "user_id", userID)
	return &model.TwoFactorEnrollResponse{
		Secret:       secret,
		ProvisionURI: TOTPProvisionURI(secret, s.cfg.TwoFactor.Issuer, user.Email),
	}, nil
}

func (s *twoFactorService) ActivateEnrollment(ctx context.Context, userID uuid.UUID, code string) (*model.TwoFactorActivateResponse, error) {
	logger := middleware.GetLogger(ctx)

	var plainCodes []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}
		if user.TwoFactorEnabled {
			return model.NewAppError("TWO_FACTOR_ALREADY_ENABLED", "二要素認証は既に有効です。", "", model.ErrConflict)
		}
		if user.TOTPSecret == "" {
			logger.Warn("Two-factor activation without enrollment", "user_id", userID)
			return model.NewAppError("TWO_FACTOR_NOT_ENROLLED", "二要素認証の登録が開始されていません。", "", model.ErrInvalidInput)
		}

		ok, err := VerifyTOTP(user.TOTPSecret, code, s.now())
		if err != nil {
			logger.Error("TOTP verification error during enrollment", "error", err, "user_id", userID)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}
		if !ok {
			logger.Warn("Two-factor activation failed: wrong code", "user_id", userID)
			return model.NewAppError("SECOND_FACTOR_FAILED", "認証コードが正しくありません。", "code", model.ErrInvalidInput)
		}

		plainCodes, err = s.generateRecoveryCodes(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := s.userRepo.EnableTwoFactor(ctx, tx, userID); err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Two-factor enabled", "user_id", userID)
	return &model.TwoFactorActivateResponse{RecoveryCodes: plainCodes}, nil
}

// generateRecoveryCodes は新しいリカバリコードを発行して保存し、平文を返します。
// 平文はこの戻り値以外に残りません
func (s *twoFactorService) generateRecoveryCodes(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]string, error) {
	logger := middleware.GetLogger(ctx)

	plain := make([]string, 0, recoveryCodeCount)
	hashes := make([]string, 0, recoveryCodeCount)
	for i := 0; i < recoveryCodeCount; i++ {
		raw := make([]byte, recoveryCodeBytes)
		if _, err := rand.Read(raw); err != nil {
			logger.Error("Failed to generate recovery code", "error", err)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "リカバリコードの生成に失敗しました。", "", err)
		}
		code := hex.EncodeToString(raw)
		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "リカバリコードの生成に失敗しました。", "", err)
		}
		plain = append(plain, code)
		hashes = append(hashes, string(hash))
	}

	if err := s.tokenRepo.ReplaceRecoveryCodes(ctx, tx, userID, hashes); err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}
	return plain, nil
}

// verifyCode は code をまずTOTP値として、次に未使用のリカバリコードとして検証します
func (s *twoFactorService) verifyCode(ctx context.Context, tx *gorm.DB, user *model.User, code string) (bool, error) {
	logger := middleware.GetLogger(ctx)

	if user.TOTPSecret != "" {
		ok, err := VerifyTOTP(user.TOTPSecret, code, s.now())
		if err != nil {
			logger.Error("TOTP verification error", "error", err, "user_id", user.UserID)
			return false, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}
		if ok {
			return true, nil
		}
	}

	codes, err := s.tokenRepo.FindUnusedRecoveryCodes(ctx, tx, user.UserID)
	if err != nil {
		return false, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}
	for _, rc := range codes {
		if bcrypt.CompareHashAndPassword([]byte(rc.CodeHash), []byte(code)) == nil {
			if err := s.tokenRepo.MarkRecoveryCodeUsed(ctx, tx, rc.ID); err != nil {
				if errors.Is(err, model.ErrNotFound) {
					// 並行利用で先を越された。未使用コードとしては成立しない
					return false, nil
				}
				return false, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
			}
			logger.Info("Recovery code used", "user_id", user.UserID)
			return true, nil
		}
	}

	return false, nil
}

func pendingTokenInvalidError() *model.AppError {
	return model.NewAppError("PENDING_TOKEN_INVALID", "このログインは無効か、期限切れです。最初からやり直してください。", "pending_token", model.ErrInvalidInput)
}
