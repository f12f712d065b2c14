package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"devhub/internal/config"
	"devhub/internal/middleware"
	"devhub/internal/model"
	"devhub/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// OAuthService は外部プロバイダのプロフィールを正規化し、
// ローカルユーザーへの紐付け・作成を行います
type OAuthService interface {
	// AuthCodeURL はプロバイダの認可URLを返します
	AuthCodeURL(provider, state string) (string, error)
	// HandleCallback は認可コードをプロフィールに交換し、検証済みメールを
	// 選定したうえでローカルユーザーに紐付けます
	HandleCallback(ctx context.Context, provider, code string) (*model.User, *model.ResolvedProfile, error)
}

// providerClient はプロバイダとのHTTPやり取りを抽象化します (テスト用の継ぎ目)
type providerClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (*model.ExternalProfile, error)
}

type oauthService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	oauthRepo repository.OAuthRepository
	clients   map[string]providerClient
}

// NewOAuthService は有効化された各プロバイダのクライアントを構築します。
// client id / secret の欠落は設定ロード時に検証済みですが、ここでも
// 起動時に弾いて遅延した失敗を防ぎます
func NewOAuthService(db *gorm.DB, userRepo repository.UserRepository, oauthRepo repository.OAuthRepository, cfg *config.Config) (OAuthService, error) {
	clients := make(map[string]providerClient)
	for name, pc := range cfg.OAuth {
		if !pc.Enabled {
			continue
		}
		if pc.ClientID == "" || pc.ClientSecret == "" {
			return nil, fmt.Errorf("oauth provider %q: %w", name, config.ErrMissingProviderConfig)
		}
		clients[name] = &httpProviderClient{
			name: name,
			conf: &oauth2.Config{
				ClientID:     pc.ClientID,
				ClientSecret: pc.ClientSecret,
				RedirectURL:  pc.RedirectURL,
				Scopes:       pc.Scopes,
				Endpoint: oauth2.Endpoint{
					AuthURL:  pc.AuthURL,
					TokenURL: pc.TokenURL,
				},
			},
			profileURL: pc.ProfileURL,
		}
	}
	return &oauthService{
		db:        db,
		userRepo:  userRepo,
		oauthRepo: oauthRepo,
		clients:   clients,
	}, nil
}

func (s *oauthService) AuthCodeURL(provider, state string) (string, error) {
	client, ok := s.clients[provider]
	if !ok {
		return "", unknownProviderError(provider)
	}
	return client.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider, code string) (*model.User, *model.ResolvedProfile, error) {
	logger := middleware.GetLogger(ctx).With("provider", provider)

	client, ok := s.clients[provider]
	if !ok {
		return nil, nil, unknownProviderError(provider)
	}

	token, err := client.Exchange(ctx, code)
	if err != nil {
		logger.Warn("OAuth code exchange failed", "error", err)
		return nil, nil, model.NewAppError("AUTHENTICATION_FAILED", "外部プロバイダでの認証に失敗しました。", "", model.ErrInvalidInput)
	}

	profile, err := client.FetchProfile(ctx, token)
	if err != nil {
		logger.Error("OAuth profile fetch failed", "error", err)
		return nil, nil, model.NewAppError("INTERNAL_SERVER_ERROR", "プロフィールの取得に失敗しました。", "", err)
	}

	resolved, err := ResolveProfile(profile, token)
	if err != nil {
		logger.Warn("OAuth profile resolution failed", "error", err)
		return nil, nil, err
	}

	var user *model.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err = s.linkOrCreate(ctx, tx, resolved)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("OAuth login resolved", "user_id", user.UserID)
	return user, resolved, nil
}

// ResolveProfile は生のプロフィールを正規化します。メールアドレスは
// primary かつ verified のもの、なければ最初の verified のものを選び、
// 検証済みメールが1つもなければ失敗します。未検証メールをアカウント
// 紐付けに使ってはならないため、これは省略できない安全性の検査です。
// 失敗時に部分的なプロフィールは返しません
func ResolveProfile(profile *model.ExternalProfile, token *oauth2.Token) (*model.ResolvedProfile, error) {
	email, err := pickVerifiedEmail(profile.Emails)
	if err != nil {
		return nil, err
	}

	metadata := ""
	if len(profile.Raw) > 0 {
		if b, err := json.Marshal(profile.Raw); err == nil {
			metadata = string(b)
		}
	}

	resolved := &model.ResolvedProfile{
		Provider:    profile.Provider,
		ProviderID:  profile.ProviderID,
		Email:       email,
		DisplayName: profile.DisplayName,
		Username:    profile.Login,
		AvatarURL:   profile.AvatarURL,
		Metadata:    metadata,
	}
	if token != nil {
		resolved.AccessToken = token.AccessToken
		resolved.RefreshToken = token.RefreshToken
		if scope, ok := token.Extra("scope").(string); ok {
			resolved.Scope = scope
		}
	}
	return resolved, nil
}

func pickVerifiedEmail(emails []model.ProfileEmail) (string, error) {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return "", model.NewAppError("NO_VERIFIED_EMAIL", "検証済みのメールアドレスがプロバイダから得られませんでした。", "email", model.ErrForbidden)
}

// linkOrCreate は紐付けポリシーを適用します:
// (provider, provider_id) の紐付けが既にあれば再利用、
// 解決済みメールが既存ユーザーに一致すれば紐付けを作成、
// どちらでもなければ新規ユーザーを作成します。
// OAuth紐付けがユーザーのロールを変更することはありません
func (s *oauthService) linkOrCreate(ctx context.Context, tx *gorm.DB, resolved *model.ResolvedProfile) (*model.User, error) {
	logger := middleware.GetLogger(ctx)

	identity, err := s.oauthRepo.FindByProvider(ctx, tx, resolved.Provider, resolved.ProviderID)
	if err == nil {
		// 既存の紐付けを再利用。プロフィール属性は最新に更新する
		identity.Email = resolved.Email
		identity.DisplayName = resolved.DisplayName
		identity.AvatarURL = resolved.AvatarURL
		if resolved.Metadata != "" {
			identity.Metadata = resolved.Metadata
		}
		if err := s.oauthRepo.Update(ctx, tx, identity); err != nil {
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}
		return s.userRepo.FindByID(ctx, tx, identity.UserID)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, tx, resolved.Email)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
		}

		// 新規ユーザーを作成。OAuth経由はメール検証済みなので最初から有効化する
		name := resolved.Username
		if name == "" {
			name = resolved.DisplayName
		}
		user = &model.User{
			UserID:   uuid.New(),
			Name:     name,
			Email:    resolved.Email,
			Role:     model.RoleMember,
			IsActive: true,
		}
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Conflict during oauth user creation", "error", err)
				return nil, model.NewAppError("DUPLICATE_ENTRY", "指定された名前またはメールアドレスは既に使用されています。", "name,email", model.ErrConflict)
			}
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
		}
		logger.Info("User created from oauth profile", "user_id", user.UserID)
	} else {
		// メール一致で紐付けるのは、このプロバイダの紐付けをまだ持たない
		// ユーザーに限る。既に同一プロバイダの別アカウントが紐付いている
		// 場合に追加してしまうと、ユーザーあたり1プロバイダ1紐付けの
		// 前提が崩れる
		if _, lerr := s.oauthRepo.FindByUser(ctx, tx, user.UserID, resolved.Provider); lerr == nil {
			logger.Warn("User already linked to another account of this provider",
				"user_id", user.UserID, "oauth_provider", resolved.Provider)
			return nil, model.NewAppError("PROVIDER_ALREADY_LINKED", "このメールアドレスのアカウントには、同じプロバイダの別の外部アカウントが既に紐付いています。", "provider", model.ErrConflict)
		} else if !errors.Is(lerr, model.ErrNotFound) {
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", lerr)
		}
	}

	link := &model.OAuthIdentity{
		UserID:      user.UserID,
		Provider:    resolved.Provider,
		ProviderID:  resolved.ProviderID,
		Email:       resolved.Email,
		DisplayName: resolved.DisplayName,
		AvatarURL:   resolved.AvatarURL,
		Metadata:    resolved.Metadata,
	}
	if err := s.oauthRepo.Create(ctx, tx, link); err != nil {
		if errors.Is(err, model.ErrConflict) {
			// レースで先に紐付けが作られた場合は既存の紐付けを使う
			existing, ferr := s.oauthRepo.FindByProvider(ctx, tx, resolved.Provider, resolved.ProviderID)
			if ferr == nil {
				return s.userRepo.FindByID(ctx, tx, existing.UserID)
			}
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}

	logger.Info("OAuth identity linked", "user_id", user.UserID, "provider", resolved.Provider)
	return user, nil
}

func unknownProviderError(provider string) *model.AppError {
	return model.NewAppError("UNKNOWN_PROVIDER", "未対応の認証プロバイダです。", "provider", model.ErrNotFound)
}

// --- httpProviderClient ---

type httpProviderClient struct {
	name       string
	conf       *oauth2.Config
	profileURL string
}

func (c *httpProviderClient) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (c *httpProviderClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.conf.Exchange(ctx, code)
}

// FetchProfile はプロバイダのプロフィールAPIを呼び、生のプロフィールに変換します。
// Google系 (sub / email / email_verified) と GitHub系 (id / login / emails[])
// のどちらのペイロードも受け付けます
func (c *httpProviderClient) FetchProfile(ctx context.Context, token *oauth2.Token) (*model.ExternalProfile, error) {
	httpClient := c.conf.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch profile: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Sub           string               `json:"sub"`
		ID            json.Number          `json:"id"`
		Login         string               `json:"login"`
		Name          string               `json:"name"`
		Picture       string               `json:"picture"`
		AvatarURL     string               `json:"avatar_url"`
		Email         string               `json:"email"`
		EmailVerified bool                 `json:"email_verified"`
		Emails        []model.ProfileEmail `json:"emails"`
	}
	raw := map[string]any{}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	b, _ := json.Marshal(raw)
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	providerID := payload.Sub
	if providerID == "" {
		providerID = payload.ID.String()
	}
	if providerID == "" || providerID == "0" {
		return nil, errors.New("profile missing provider id")
	}

	avatar := payload.AvatarURL
	if avatar == "" {
		avatar = payload.Picture
	}

	emails := payload.Emails
	if len(emails) == 0 && payload.Email != "" {
		// 単一メール形式のプロバイダは primary 扱いに正規化する
		emails = []model.ProfileEmail{{
			Email:    payload.Email,
			Primary:  true,
			Verified: payload.EmailVerified,
		}}
	}

	return &model.ExternalProfile{
		Provider:    c.name,
		ProviderID:  providerID,
		Login:       payload.Login,
		DisplayName: payload.Name,
		AvatarURL:   avatar,
		Emails:      emails,
		Raw:         raw,
	}, nil
}
