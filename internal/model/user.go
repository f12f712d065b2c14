package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ユーザーのロール
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ユーザーの基本情報。所有はユーザー管理側にあり、認証サブシステムは参照のみ行う
type User struct {
	UserID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name         string         `gorm:"unique;not null" json:"name"`
	Email        string         `gorm:"unique;not null" json:"email"`
	Role         string         `gorm:"type:varchar(20);not null;default:member" json:"role"`
	IsActive     bool           `gorm:"default:false" json:"is_active"`
	PasswordHash string         `gorm:"not null" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// 二要素認証
	TwoFactorEnabled bool   `gorm:"default:false" json:"two_factor_enabled"`
	TOTPSecret       string `gorm:"default:null" json:"-"` // base32エンコード済み

	// GORM用のリレーション (JSONには含めない)
	OAuthIdentities []OAuthIdentity `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse はクライアントに返すユーザー情報の構造体
type UserResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type ContextKey string

const (
	AuthContextKey ContextKey = "authContext"
)

// 認証済みリクエストの種別
const (
	AuthKindSession  = "session"
	AuthKindAPIToken = "api_token"
)

// AuthContext はリクエスト単位で解決される認可コンテキストです。
// セッショントークンなら Role、APIトークンなら Scopes を保持します。
// 永続化はされず、1リクエストの間だけ生存します。
type AuthContext struct {
	UserID uuid.UUID
	Kind   string
	Role   string   // Kind == session の場合のみ
	Scopes []string // Kind == api_token の場合のみ
}

// HasScope は付与済みスコープに scope が含まれるかを返します
func (a *AuthContext) HasScope(scope string) bool {
	for _, s := range a.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
