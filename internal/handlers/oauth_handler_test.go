package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devhub/internal/handlers"
	"devhub/internal/model"
	"devhub/internal/service/mocks"
)

type oauthCallbackBody struct {
	Code string `json:"code"`
}

func newOAuthTestRouter() (*chi.Mux, *mocks.OAuthService, *mocks.TokenService) {
	mockOAuth := new(mocks.OAuthService)
	mockTokens := new(mocks.TokenService)
	handler := handlers.NewOAuthHandler(mockOAuth, mockTokens)

	router := chi.NewRouter()
	router.Get("/auth/oauth/{provider}", handler.Authorize)
	router.Post("/auth/oauth/{provider}/callback", handler.Callback)
	return router, mockOAuth, mockTokens
}

func TestOAuthHandler_Authorize(t *testing.T) {
	t.Run("正常系: 認可URLとstateが返る", func(t *testing.T) {
		router, mockOAuth, _ := newOAuthTestRouter()

		mockOAuth.On("AuthCodeURL", "google", mock.AnythingOfType("string")).
			Return("https://accounts.google.com/o/oauth2/auth?state=xyz", nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/oauth/google", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=xyz", resp["authorize_url"])
		// stateは16バイト乱数のhex表現
		assert.Len(t, resp["state"], 32)
		mockOAuth.AssertExpectations(t)
	})

	t.Run("異常系: 未知のプロバイダ", func(t *testing.T) {
		router, mockOAuth, _ := newOAuthTestRouter()

		mockOAuth.On("AuthCodeURL", "gitlab", mock.AnythingOfType("string")).
			Return("", model.NewAppError("UNKNOWN_PROVIDER", "サポートされていない認証プロバイダです。", "provider", model.ErrNotFound)).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/oauth/gitlab", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
		var resp model.APIErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "UNKNOWN_PROVIDER", resp.Error.Code)
	})
}

func TestOAuthHandler_Callback(t *testing.T) {
	user := &model.User{
		UserID:   uuid.New(),
		Name:     "alice",
		Email:    "alice@example.com",
		Role:     model.RoleMember,
		IsActive: true,
	}
	profile := &model.ResolvedProfile{
		Provider:   "github",
		ProviderID: "12345",
		Email:      "alice@example.com",
		Username:   "alice",
	}

	t.Run("正常系: コードがトークンペアに交換される", func(t *testing.T) {
		router, mockOAuth, mockTokens := newOAuthTestRouter()

		mockOAuth.On("HandleCallback", mock.Anything, "github", "auth-code").
			Return(user, profile, nil).Once()
		mockTokens.On("IssuePair", mock.Anything, user).
			Return(testTokenPair(), nil).Once()

		rec := postJSON(t, router, "/auth/oauth/github/callback", oauthCallbackBody{Code: "auth-code"})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp model.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.TwoFactorRequired)
		require.NotNil(t, resp.TokenPair)
		require.NotNil(t, resp.User)
		assert.Equal(t, "alice", resp.User.Name)
		mockOAuth.AssertExpectations(t)
		mockTokens.AssertExpectations(t)
	})

	t.Run("異常系: コード交換に失敗", func(t *testing.T) {
		router, mockOAuth, mockTokens := newOAuthTestRouter()

		mockOAuth.On("HandleCallback", mock.Anything, "github", "bad-code").
			Return(nil, nil, model.NewAppError("AUTHENTICATION_FAILED", "認証に失敗しました。", "", model.ErrInvalidInput)).Once()

		rec := postJSON(t, router, "/auth/oauth/github/callback", oauthCallbackBody{Code: "bad-code"})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		mockTokens.AssertNotCalled(t, "IssuePair", mock.Anything, mock.Anything)
	})

	t.Run("異常系: コードが空", func(t *testing.T) {
		router, mockOAuth, _ := newOAuthTestRouter()

		rec := postJSON(t, router, "/auth/oauth/github/callback", oauthCallbackBody{Code: ""})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		mockOAuth.AssertNotCalled(t, "HandleCallback", mock.Anything, mock.Anything, mock.Anything)
	})
}
