// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingProviderConfig は有効化されたOAuthプロバイダに client id / secret が
// 設定されていない場合のエラーです。リクエスト時ではなく起動時に致命的エラーとして扱います
var ErrMissingProviderConfig = errors.New("missing oauth provider config")

// OAuthProviderConfig はOAuthプロバイダ1つ分の設定です
type OAuthProviderConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RedirectURL  string   `mapstructure:"redirect_url"`
	AuthURL      string   `mapstructure:"auth_url"`
	TokenURL     string   `mapstructure:"token_url"`
	ProfileURL   string   `mapstructure:"profile_url"`
	Scopes       []string `mapstructure:"scopes"`
}

type JWTConfig struct {
	// アクセストークンとリフレッシュトークンで署名鍵を分け、
	// 片方をもう片方として再生できないようにする
	AccessSecret    string        `mapstructure:"access_secret"`
	RefreshSecret   string        `mapstructure:"refresh_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type TwoFactorConfig struct {
	Issuer     string        `mapstructure:"issuer"`
	PendingTTL time.Duration `mapstructure:"pending_ttl"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type Config struct {
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	App       AppConfig                      `mapstructure:"app"`
	JWT       JWTConfig                      `mapstructure:"jwt"`
	TwoFactor TwoFactorConfig                `mapstructure:"two_factor"`
	OAuth     map[string]OAuthProviderConfig `mapstructure:"oauth"`
	CORS      CORSConfig                     `mapstructure:"cors"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	// シークレット類は環境変数からの上書きを許可する
	viper.BindEnv("jwt.access_secret", "APP_JWT_ACCESS_SECRET")
	viper.BindEnv("jwt.refresh_secret", "APP_JWT_REFRESH_SECRET")
	viper.BindEnv("database.url", "APP_DATABASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		log.Printf("Server port not set, using default '%s'", DefaultServerPort)
		Cfg.Server.Port = DefaultServerPort
	}
	if Cfg.Log.Level == "" {
		Cfg.Log.Level = DefaultLogLevel
	}
	if Cfg.App.Name == "" {
		Cfg.App.Name = AppName
	}
	if Cfg.JWT.AccessTokenTTL <= 0 {
		Cfg.JWT.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if Cfg.JWT.RefreshTokenTTL <= 0 {
		Cfg.JWT.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	if Cfg.TwoFactor.PendingTTL <= 0 {
		Cfg.TwoFactor.PendingTTL = DefaultPendingLoginTTL
	}
	if Cfg.TwoFactor.Issuer == "" {
		Cfg.TwoFactor.Issuer = Cfg.App.Name
	}
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	if err := validate(&Cfg); err != nil {
		return err
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Access Token TTL: %s", Cfg.JWT.AccessTokenTTL)
	for name, p := range Cfg.OAuth {
		log.Printf("OAuth Provider '%s' enabled: %t", name, p.Enabled)
	}

	return nil
}

// validate は起動時の設定検証を行います。
// OAuthプロバイダの client id / secret の欠落はここで致命的エラーとして弾き、
// リクエスト時まで発覚が遅れないようにします
func validate(cfg *Config) error {
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		return errors.New("config: jwt.access_secret and jwt.refresh_secret are required")
	}
	if cfg.JWT.AccessSecret == cfg.JWT.RefreshSecret {
		return errors.New("config: jwt.access_secret and jwt.refresh_secret must differ")
	}
	for name, p := range cfg.OAuth {
		if !p.Enabled {
			continue
		}
		if p.ClientID == "" || p.ClientSecret == "" {
			return fmt.Errorf("config: oauth provider %q: client_id and client_secret are required: %w", name, ErrMissingProviderConfig)
		}
		if p.RedirectURL == "" {
			return fmt.Errorf("config: oauth provider %q: redirect_url is required: %w", name, ErrMissingProviderConfig)
		}
	}
	return nil
}
