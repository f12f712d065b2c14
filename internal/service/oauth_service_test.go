package service

import (
	"context"
	"errors"
	"testing"

	"devhub/internal/config"
	"devhub/internal/model"
	"devhub/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// stubProviderClient はHTTPを介さずにプロバイダ応答を返すテスト用クライアント
type stubProviderClient struct {
	authURL     string
	token       *oauth2.Token
	exchangeErr error
	profile     *model.ExternalProfile
	profileErr  error
}

func (s *stubProviderClient) AuthCodeURL(state string) string {
	return s.authURL + "&state=" + state
}

func (s *stubProviderClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return s.token, nil
}

func (s *stubProviderClient) FetchProfile(ctx context.Context, token *oauth2.Token) (*model.ExternalProfile, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.profile, nil
}

func TestResolveProfile_EmailSelection(t *testing.T) {
	baseProfile := func(emails []model.ProfileEmail) *model.ExternalProfile {
		return &model.ExternalProfile{
			Provider:    model.AuthProviderGitHub,
			ProviderID:  "12345",
			Login:       "alice",
			DisplayName: "Alice Example",
			Emails:      emails,
		}
	}

	t.Run("primaryかつverifiedが最優先", func(t *testing.T) {
		profile := baseProfile([]model.ProfileEmail{
			{Email: "old@example.com", Primary: false, Verified: true},
			{Email: "main@example.com", Primary: true, Verified: true},
		})
		resolved, err := ResolveProfile(profile, nil)
		require.NoError(t, err)
		assert.Equal(t, "main@example.com", resolved.Email)
	})

	t.Run("primaryが未検証なら最初のverifiedを選ぶ", func(t *testing.T) {
		profile := baseProfile([]model.ProfileEmail{
			{Email: "unverified@example.com", Primary: true, Verified: false},
			{Email: "second@example.com", Primary: false, Verified: true},
		})
		resolved, err := ResolveProfile(profile, nil)
		require.NoError(t, err)
		assert.Equal(t, "second@example.com", resolved.Email)
	})

	t.Run("検証済みメールが無ければ失敗し、部分的な結果を返さない", func(t *testing.T) {
		profile := baseProfile([]model.ProfileEmail{
			{Email: "unverified@example.com", Primary: true, Verified: false},
		})
		resolved, err := ResolveProfile(profile, nil)
		require.Error(t, err)
		assert.Nil(t, resolved)
		assert.ErrorIs(t, err, model.ErrForbidden)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NO_VERIFIED_EMAIL", appErr.Detail.Code)
	})

	t.Run("メールが空のプロフィールも失敗", func(t *testing.T) {
		resolved, err := ResolveProfile(baseProfile(nil), nil)
		require.Error(t, err)
		assert.Nil(t, resolved)
	})

	t.Run("トークンの属性が引き継がれる", func(t *testing.T) {
		profile := baseProfile([]model.ProfileEmail{
			{Email: "main@example.com", Primary: true, Verified: true},
		})
		token := &oauth2.Token{AccessToken: "provider-access", RefreshToken: "provider-refresh"}
		resolved, err := ResolveProfile(profile, token)
		require.NoError(t, err)
		assert.Equal(t, "provider-access", resolved.AccessToken)
		assert.Equal(t, "provider-refresh", resolved.RefreshToken)
		assert.Equal(t, "alice", resolved.Username)
	})
}

func Test_oauthService_HandleCallback(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()

	githubProfile := func() *model.ExternalProfile {
		return &model.ExternalProfile{
			Provider:    model.AuthProviderGitHub,
			ProviderID:  "12345",
			Login:       "alice",
			DisplayName: "Alice Example",
			AvatarURL:   "https://example.com/avatar.png",
			Emails: []model.ProfileEmail{
				{Email: "alice@example.com", Primary: true, Verified: true},
			},
		}
	}

	newService := func(client providerClient, userRepo *mocks.UserRepository, oauthRepo *mocks.OAuthRepository) *oauthService {
		return &oauthService{
			db:        db,
			userRepo:  userRepo,
			oauthRepo: oauthRepo,
			clients:   map[string]providerClient{model.AuthProviderGitHub: client},
		}
	}

	t.Run("正常系: 既存の紐付けがあるユーザー", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockOAuthRepo := new(mocks.OAuthRepository)
		userID := uuid.New()
		svc := newService(&stubProviderClient{
			token:   &oauth2.Token{AccessToken: "tok"},
			profile: githubProfile(),
		}, mockUserRepo, mockOAuthRepo)

		mockOAuthRepo.On("FindByProvider", ctx, mock.AnythingOfType("*gorm.DB"), model.AuthProviderGitHub, "12345").
			Return(&model.OAuthIdentity{UserID: userID, Provider: model.AuthProviderGitHub, ProviderID: "12345"}, nil).Once()
		mockOAuthRepo.On("Update", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.OAuthIdentity")).
			Return(nil).Once()
		mockUserRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return(&model.User{UserID: userID, Name: "alice", IsActive: true}, nil).Once()

		user, resolved, err := svc.HandleCallback(ctx, model.AuthProviderGitHub, "auth-code")
		require.NoError(t, err)
		assert.Equal(t, userID, user.UserID)
		assert.Equal(t, "alice@example.com", resolved.Email)

		mockOAuthRepo.AssertExpectations(t)
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("正常系: 既存ユーザーへのメール一致による紐付け", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockOAuthRepo := new(mocks.OAuthRepository)
		userID := uuid.New()
		svc := newService(&stubProviderClient{
			token:   &oauth2.Token{AccessToken: "tok"},
			profile: githubProfile(),
		}, mockUserRepo, mockOAuthRepo)

		mockOAuthRepo.On("FindByProvider", ctx, mock.AnythingOfType("*gorm.DB"), model.AuthProviderGitHub, "12345").
			Return(nil, model.ErrNotFound).Once()
		mockUserRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), "alice@example.com").
			Return(&model.User{UserID: userID, Name: "alice", Role: model.RoleAdmin, IsActive: true}, nil).Once()
		mockOAuthRepo.On("FindByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID, model.AuthProviderGitHub).
			Return(nil, model.ErrNotFound).Once()
		var link *model.OAuthIdentity
		mockOAuthRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.OAuthIdentity")).
			Run(func(args mock.Arguments) {
				link = args.Get(2).(*model.OAuthIdentity)
			}).
			Return(nil).Once()

		user, _, err := svc.HandleCallback(ctx, model.AuthProviderGitHub, "auth-code")
		require.NoError(t, err)
		assert.Equal(t, userID, user.UserID)
		// 紐付けはロールを変更しない
		assert.Equal(t, model.RoleAdmin, user.Role)
		require.NotNil(t, link)
		assert.Equal(t, userID, link.UserID)

		mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("異常系: 同一プロバイダの別アカウントが既に紐付いているユーザー", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockOAuthRepo := new(mocks.OAuthRepository)
		userID := uuid.New()
		svc := newService(&stubProviderClient{
			token:   &oauth2.Token{AccessToken: "tok"},
			profile: githubProfile(),
		}, mockUserRepo, mockOAuthRepo)

		mockOAuthRepo.On("FindByProvider", ctx, mock.AnythingOfType("*gorm.DB"), model.AuthProviderGitHub, "12345").
			Return(nil, model.ErrNotFound).Once()
		mockUserRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), "alice@example.com").
			Return(&model.User{UserID: userID, Name: "alice", IsActive: true}, nil).Once()
		mockOAuthRepo.On("FindByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID, model.AuthProviderGitHub).
			Return(&model.OAuthIdentity{UserID: userID, Provider: model.AuthProviderGitHub, ProviderID: "99999"}, nil).Once()

		_, _, err := svc.HandleCallback(ctx, model.AuthProviderGitHub, "auth-code")
		require.Error(t, err)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "PROVIDER_ALREADY_LINKED", appErr.Detail.Code)
		assert.ErrorIs(t, err, model.ErrConflict)
		mockOAuthRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("正常系: 新規ユーザー作成", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockOAuthRepo := new(mocks.OAuthRepository)
		svc := newService(&stubProviderClient{
			token:   &oauth2.Token{AccessToken: "tok"},
			profile: githubProfile(),
		}, mockUserRepo, mockOAuthRepo)

		mockOAuthRepo.On("FindByProvider", ctx, mock.AnythingOfType("*gorm.DB"), model.AuthProviderGitHub, "12345").
			Return(nil, model.ErrNotFound).Once()
		mockUserRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), "alice@example.com").
			Return(nil, model.ErrNotFound).Once()
		var created *model.User
		mockUserRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) {
				created = args.Get(2).(*model.User)
			}).
			Return(nil).Once()
		mockOAuthRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.OAuthIdentity")).
			Return(nil).Once()

		user, _, err := svc.HandleCallback(ctx, model.AuthProviderGitHub, "auth-code")
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "alice", created.Name)
		assert.Equal(t, model.RoleMember, created.Role)
		assert.True(t, created.IsActive)
		assert.Equal(t, created.UserID, user.UserID)
	})

	t.Run("異常系: 認可コード交換の失敗", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockOAuthRepo := new(mocks.OAuthRepository)
		svc := newService(&stubProviderClient{
			exchangeErr: errors.New("invalid_grant"),
		}, mockUserRepo, mockOAuthRepo)

		_, _, err := svc.HandleCallback(ctx, model.AuthProviderGitHub, "bad-code")
		require.Error(t, err)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "AUTHENTICATION_FAILED", appErr.Detail.Code)
	})

	t.Run("異常系: 検証済みメール無しでは紐付けを一切行わない", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockOAuthRepo := new(mocks.OAuthRepository)
		profile := githubProfile()
		profile.Emails = []model.ProfileEmail{{Email: "x@example.com", Primary: true, Verified: false}}
		svc := newService(&stubProviderClient{
			token:   &oauth2.Token{AccessToken: "tok"},
			profile: profile,
		}, mockUserRepo, mockOAuthRepo)

		_, _, err := svc.HandleCallback(ctx, model.AuthProviderGitHub, "auth-code")
		require.Error(t, err)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NO_VERIFIED_EMAIL", appErr.Detail.Code)
		mockOAuthRepo.AssertNotCalled(t, "FindByProvider", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("異常系: 未知のプロバイダ", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockOAuthRepo := new(mocks.OAuthRepository)
		svc := newService(&stubProviderClient{}, mockUserRepo, mockOAuthRepo)

		_, _, err := svc.HandleCallback(ctx, "gitlab", "auth-code")
		require.Error(t, err)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNKNOWN_PROVIDER", appErr.Detail.Code)
	})
}

func Test_oauthService_AuthCodeURL(t *testing.T) {
	db := setupTestDB()
	svc := &oauthService{
		db: db,
		clients: map[string]providerClient{
			model.AuthProviderGoogle: &stubProviderClient{authURL: "https://accounts.example.com/auth?client_id=x"},
		},
	}

	url, err := svc.AuthCodeURL(model.AuthProviderGoogle, "state123")
	require.NoError(t, err)
	assert.Contains(t, url, "state=state123")

	_, err = svc.AuthCodeURL("unknown", "state123")
	require.Error(t, err)
}

func TestNewOAuthService_MissingConfig(t *testing.T) {
	db := setupTestDB()
	cfg := &config.Config{
		OAuth: map[string]config.OAuthProviderConfig{
			"google": {Enabled: true, ClientID: "id"}, // client_secret が無い
		},
	}

	_, err := NewOAuthService(db, new(mocks.UserRepository), new(mocks.OAuthRepository), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingProviderConfig)
}
