package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"devhub/internal/middleware"
	"devhub/internal/model"
	"devhub/internal/service"
	"devhub/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type OAuthHandler struct {
	oauth  service.OAuthService
	tokens service.TokenService
}

func NewOAuthHandler(oauth service.OAuthService, tokens service.TokenService) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, tokens: tokens}
}

// oauthCallbackRequest はフロントエンドがプロバイダから受け取った
// 認可コードを転送するためのリクエストです
type oauthCallbackRequest struct {
	Code string `json:"code" validate:"required"`
}

// Authorize はプロバイダの認可URLとCSRF対策用のstateを返します。
// stateの照合はリダイレクトを受けるフロントエンド側で行います
func (h *OAuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())
	provider := chi.URLParam(r, "provider")

	state, err := newOAuthState()
	if err != nil {
		logger.Error("Failed to generate OAuth state", "error", err)
		webutil.HandleError(w, logger, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", model.ErrInternalServer))
		return
	}

	authorizeURL, err := h.oauth.AuthCodeURL(provider, state)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"authorize_url": authorizeURL,
		"state":         state,
	}, logger)
}

// Callback は認可コードを検証済みプロフィールに解決し、
// ローカルユーザーへのリンクとトークンペアの発行まで行います
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())
	provider := chi.URLParam(r, "provider")

	var req oauthCallbackRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode OAuth callback body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		handleValidationError(w, logger, err)
		return
	}

	user, _, err := h.oauth.HandleCallback(r.Context(), provider, req.Code)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	pair, err := h.tokens.IssuePair(r.Context(), user)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("OAuth login successful", "user_id", user.UserID, "provider", provider)
	webutil.RespondWithJSON(w, http.StatusOK, &model.LoginResponse{
		TokenPair: pair,
		User:      model.NewUserResponse(user),
	}, logger)
}

func newOAuthState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
