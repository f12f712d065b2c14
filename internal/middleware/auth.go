package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"devhub/internal/config"
	"devhub/internal/model"
	"devhub/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APITokenFinder はAPIトークンの照合に必要な最小限の契約です。
// repository.APITokenRepository がこれを満たします
type APITokenFinder interface {
	FindBySecretHash(ctx context.Context, db *gorm.DB, secretHash string) (*model.APIToken, error)
}

// BearerAuthMiddleware は Authorization ヘッダーの Bearer トークンを検証するミドルウェアです。
// トークン種別はプレフィックスで判定します:
// "pat_" で始まればスコープ付きAPIトークン、それ以外はセッションアクセストークン (JWT)。
// どの検証段階でも失敗は「閉じる」方向に倒します
func BearerAuthMiddleware(cfg *config.Config, db *gorm.DB, apiTokenRepo APITokenFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			// 1. Authorization ヘッダーからトークンを取得
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Auth failed: Authorization header missing")
				appErr := model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーが必要です。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}

			// "Bearer {token}" の形式を検証
			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				logger.Warn("Auth failed: Invalid Authorization header format")
				appErr := model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーの形式が正しくありません。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}
			tokenString := headerParts[1]

			var authCtx *model.AuthContext
			var err error
			if strings.HasPrefix(tokenString, model.APITokenPrefix) {
				authCtx, err = validateAPIToken(r.Context(), db, apiTokenRepo, tokenString)
			} else {
				authCtx, err = validateSessionToken(cfg, tokenString)
			}
			if err != nil {
				logger.Warn("Auth failed: token validation", "error", err)
				webutil.HandleError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), model.AuthContextKey, authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateSessionToken はアクセストークン (JWT) の署名・有効期限・種別を検証します
func validateSessionToken(cfg *config.Config, tokenString string) (*model.AuthContext, error) {
	claims := &model.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// 署名アルゴリズムが期待通り(HS256)かチェック
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWT.AccessSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, model.NewAppError("INVALID_TOKEN", "トークンが無効です。", "", model.ErrForbidden)
	}

	// リフレッシュトークンをアクセストークンとして流用させない
	if claims.TokenType != model.TokenTypeAccess {
		return nil, model.NewAppError("INVALID_TOKEN", "トークンの種別が正しくありません。", "", model.ErrForbidden)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, model.NewAppError("INVALID_TOKEN", "トークンのユーザー情報が不正です。", "", model.ErrForbidden)
	}

	return &model.AuthContext{
		UserID: userID,
		Kind:   model.AuthKindSession,
		Role:   claims.Role,
	}, nil
}

// validateAPIToken はスコープ付きAPIトークンを照合します。
// 存在し、失効も期限切れもしていないことを確認するだけで、副作用はありません
func validateAPIToken(ctx context.Context, db *gorm.DB, repo APITokenFinder, secret string) (*model.AuthContext, error) {
	hash := sha256.Sum256([]byte(secret))
	record, err := repo.FindBySecretHash(ctx, db, hex.EncodeToString(hash[:]))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, invalidAPITokenError()
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}

	if !record.Valid(time.Now()) {
		return nil, invalidAPITokenError()
	}

	return &model.AuthContext{
		UserID: record.UserID,
		Kind:   model.AuthKindAPIToken,
		Scopes: record.ScopeList(),
	}, nil
}

func invalidAPITokenError() *model.AppError {
	return model.NewAppError("INVALID_OR_EXPIRED_TOKEN", "APIトークンが無効か、期限切れです。", "", model.ErrForbidden)
}

// RequireScopes はルート登録時に要求スコープを宣言するためのミドルウェアです。
// APIトークンは宣言されたスコープのいずれか1つ (論理OR) を持っていれば通過します。
// セッショントークンはロールベースの認可に委ねるため、スコープ検査の対象外です。
// 失敗時は不足しているスコープをエラーに列挙します (運用上の診断に必要であり、
// 列挙攻撃のような悪用はできないため)
func RequireScopes(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			authCtx, err := GetAuthContext(r.Context())
			if err != nil {
				webutil.HandleError(w, logger, err)
				return
			}

			if authCtx.Kind != model.AuthKindAPIToken {
				next.ServeHTTP(w, r)
				return
			}

			for _, scope := range scopes {
				if authCtx.HasScope(scope) {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("API token missing required scopes", "required", scopes)
			appErr := model.NewAppError("INSUFFICIENT_SCOPE", "このAPIトークンには必要なスコープがありません。", "", model.ErrForbidden).
				WithMissingScopes(scopes)
			webutil.HandleError(w, logger, appErr)
		})
	}
}

// RequireSessionAuth はAPIトークンでのアクセスを認めないルート用のミドルウェアです。
// APIトークン自体の管理操作などに使います
func RequireSessionAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			authCtx, err := GetAuthContext(r.Context())
			if err != nil {
				webutil.HandleError(w, logger, err)
				return
			}
			if authCtx.Kind != model.AuthKindSession {
				logger.Warn("Session-only route accessed with api token")
				appErr := model.NewAppError("UNAUTHORIZED", "この操作はセッショントークンでのみ実行できます。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAuthContext はコンテキストから認可コンテキストを取得します
func GetAuthContext(ctx context.Context) (*model.AuthContext, error) {
	value, ok := ctx.Value(model.AuthContextKey).(*model.AuthContext)
	if !ok {
		// ミドルウェアが正しく適用されていない等の内部エラー
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストから認証情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return value, nil
}

// GetUserIDFromContext は認可コンテキストからユーザーIDを取得します
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	authCtx, err := GetAuthContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return authCtx.UserID, nil
}
