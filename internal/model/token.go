package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIトークンのシークレットに付ける認識用プレフィックス。
// セッショントークン (JWT) との取り違え防止のため、ミドルウェアは
// このプレフィックスでトークン種別を判定する
const APITokenPrefix = "pat_"

// PendingLogin は一要素目成功から二要素目検証までを橋渡しする単回使用トークンです。
// 消費は test-and-set で行い、同一トークンから2つのトークンペアが発行されることはありません
type PendingLogin struct {
	Token     string    `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Consumed  bool      `gorm:"not null;default:false"`
}

func (PendingLogin) TableName() string {
	return "pending_logins"
}

// RefreshToken は発行済みリフレッシュトークンのサーバー側レコードです。
// ID はJWTの jti と一致します。ローテーション時は ReplacedBy に後継の ID を
// 記録し、置換済みトークンの再利用を検出できるようにします
type RefreshToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ChainID    uuid.UUID  `gorm:"type:uuid;not null;index"` // ログインセッション単位の系列ID
	ExpiresAt  time.Time  `gorm:"not null"`
	RevokedAt  *time.Time `gorm:"default:null"`
	ReplacedBy *uuid.UUID `gorm:"type:uuid;default:null"`
	CreatedAt  time.Time
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Live はこのレコードが現在有効な (未失効・未置換・未期限切れの) ものかを返します
func (t *RefreshToken) Live(now time.Time) bool {
	return t.RevokedAt == nil && t.ReplacedBy == nil && now.Before(t.ExpiresAt)
}

// APIToken は長期利用のスコープ付きトークンです。シークレットは平文では
// 保存せず、SHA-256ハッシュで照合します。スコープ集合は作成後に変更されません
// (失効は状態遷移のみ)
type APIToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"token_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	Name       string     `gorm:"not null" json:"name"`
	SecretHash string     `gorm:"unique;not null" json:"-"`
	Scopes     string     `gorm:"not null" json:"scopes"` // 空白区切り
	ExpiresAt  *time.Time `gorm:"default:null" json:"expires_at,omitempty"`
	RevokedAt  *time.Time `gorm:"default:null" json:"revoked_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (APIToken) TableName() string {
	return "api_tokens"
}

// ScopeList は空白区切りのスコープをスライスに展開します
func (t *APIToken) ScopeList() []string {
	if t.Scopes == "" {
		return nil
	}
	return strings.Fields(t.Scopes)
}

// Valid はトークンが失効も期限切れもしていないかを返します
func (t *APIToken) Valid(now time.Time) bool {
	if t.RevokedAt != nil {
		return false
	}
	if t.ExpiresAt != nil && now.After(*t.ExpiresAt) {
		return false
	}
	return true
}

// RecoveryCode は二要素認証のリカバリコードです。コード本体は bcrypt ハッシュで
// 保存され、一度使用すると UsedAt が記録されて再利用できなくなります
type RecoveryCode struct {
	ID       uint       `gorm:"primaryKey"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CodeHash string     `gorm:"not null"`
	UsedAt   *time.Time `gorm:"default:null"`
}

func (RecoveryCode) TableName() string {
	return "recovery_codes"
}

// CreateAPITokenRequest はAPIトークン作成APIのリクエストボディ
type CreateAPITokenRequest struct {
	Name      string     `json:"name" validate:"required,min=1,max=100"`
	Scopes    []string   `json:"scopes" validate:"required,min=1,dive,oneof=repo:read repo:write issue:read issue:write user:read"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateAPITokenResponse は作成直後の一度だけシークレット平文を返します
type CreateAPITokenResponse struct {
	Token  string    `json:"token"`
	Detail *APIToken `json:"detail"`
}
