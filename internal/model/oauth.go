package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuthProviderGoogle = "google"
	AuthProviderGitHub = "github"
)

// OAuthIdentity は外部プロバイダのアカウントとローカルユーザーの紐付けを表します。
// (provider, provider_id) はシステム全体で一意
type OAuthIdentity struct {
	ID     uint      `gorm:"primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	Provider   string `gorm:"type:varchar(50);not null;uniqueIndex:uq_oauth_provider"`
	ProviderID string `gorm:"not null;uniqueIndex:uq_oauth_provider"` // googleの場合はsub, githubの場合は数値ID

	Email       string `gorm:"not null"`
	DisplayName string
	AvatarURL   string
	Metadata    string `gorm:"type:text"` // プロバイダ固有属性のJSON文字列

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OAuthIdentity) TableName() string {
	return "oauth_identities"
}

// ProfileEmail はプロバイダが返すメールアドレスエントリ
type ProfileEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// ExternalProfile はプロバイダのコールバックで得られる生のプロフィールです。
// メールアドレスの選定はまだ行われていません
type ExternalProfile struct {
	Provider    string
	ProviderID  string
	Login       string
	DisplayName string
	AvatarURL   string
	Emails      []ProfileEmail
	Raw         map[string]any
}

// ResolvedProfile は検証済みメールアドレスの選定まで済んだ正規化プロフィールです。
// 選定に失敗した場合、このオブジェクトは生成されません (部分的な出力はしない)
type ResolvedProfile struct {
	Provider     string `json:"provider"`
	ProviderID   string `json:"provider_id"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	Username     string `json:"username"`
	AvatarURL    string `json:"avatar_url"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	Scope        string `json:"scope"`
	Metadata     string `json:"-"`
}
