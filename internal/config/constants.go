// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "devhub"
	AppVersion = "0.3.1"
)

// デフォルト設定値
const (
	DefaultServerPort      = ":8080"
	DefaultLogLevel        = "info"
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 720 * time.Hour
	DefaultPendingLoginTTL = 5 * time.Minute
	// アクセストークン失効のどれだけ前にクライアントが更新を仕掛けるか
	DefaultRefreshLead = 1 * time.Minute
)
