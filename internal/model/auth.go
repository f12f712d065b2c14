package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン種別クレーム。アクセストークンとリフレッシュトークンを
// 相互に流用できないようにするためのもの
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// LoginRequest はログインAPIのリクエストボディ
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required,max=255"`
	Password        string `json:"password" validate:"required"`
}

// TokenPair はアクセストークンとリフレッシュトークンの組
type TokenPair struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

// LoginResponse はログイン成功時のレスポンス。
// 二要素認証が有効なユーザーの場合、トークンペアは返さず
// PendingToken のみを返し、2段階目の呼び出しを要求する
type LoginResponse struct {
	TwoFactorRequired bool          `json:"two_factor_required"`
	PendingToken      string        `json:"pending_token,omitempty"`
	TokenPair         *TokenPair    `json:"tokens,omitempty"`
	User              *UserResponse `json:"user,omitempty"`
}

// TwoFactorRequest は二要素認証APIのリクエストボディ。
// Token はTOTPコードまたはリカバリコード
type TwoFactorRequest struct {
	PendingToken string `json:"pending_token" validate:"required"`
	Token        string `json:"token" validate:"required,min=6,max=32"`
}

// TwoFactorEnrollResponse は二要素認証の登録開始レスポンス。
// Secret はオーセンティケータに手入力するためのbase32表現
type TwoFactorEnrollResponse struct {
	Secret       string `json:"secret"`
	ProvisionURI string `json:"provision_uri"`
}

// TwoFactorActivateRequest は登録確認APIのリクエストボディ
type TwoFactorActivateRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// TwoFactorActivateResponse は有効化成功時のレスポンス。
// リカバリコードの平文はこの応答でしか得られない
type TwoFactorActivateResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
}

// RefreshRequest はトークン更新APIのリクエストボディ
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest はログアウトAPIのリクエストボディ
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AccessClaims はアクセストークンに含めるクレーム
type AccessClaims struct {
	TokenType string `json:"typ"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims はリフレッシュトークンに含めるクレーム。
// ID (jti) で発行済みレコードと突合し、ChainID でセッション単位の失効を行う
type RefreshClaims struct {
	TokenType string `json:"typ"`
	ChainID   string `json:"chain_id"`
	jwt.RegisteredClaims
}
