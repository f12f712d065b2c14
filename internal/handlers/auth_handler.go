package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"devhub/internal/middleware"
	"devhub/internal/model"
	"devhub/internal/service"
	"devhub/internal/webutil"

	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	credentials service.CredentialService
	twoFactor   service.TwoFactorService
	tokens      service.TokenService
}

func NewAuthHandler(credentials service.CredentialService, twoFactor service.TwoFactorService, tokens service.TokenService) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		twoFactor:   twoFactor,
		tokens:      tokens,
	}
}

// Login はパスワード認証を行います。二要素認証が有効なユーザーには
// トークンペアの代わりに仮ログイントークンだけを返します
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.LoginRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode login request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		handleValidationError(w, logger, err)
		return
	}

	user, err := h.credentials.Verify(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		// サービス層でログは出力済みなので、ここではエラー処理に専念
		webutil.HandleError(w, logger, err)
		return
	}

	if user.TwoFactorEnabled {
		pendingToken, err := h.twoFactor.BeginChallenge(r.Context(), user)
		if err != nil {
			webutil.HandleError(w, logger, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, &model.LoginResponse{
			TwoFactorRequired: true,
			PendingToken:      pendingToken,
		}, logger)
		return
	}

	pair, err := h.tokens.IssuePair(r.Context(), user)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Login successful", "user_id", user.UserID)
	webutil.RespondWithJSON(w, http.StatusOK, &model.LoginResponse{
		TokenPair: pair,
		User:      model.NewUserResponse(user),
	}, logger)
}

// CompleteTwoFactor は二要素認証の2段階目を検証し、トークンペアを発行します
func (h *AuthHandler) CompleteTwoFactor(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.TwoFactorRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode two-factor request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		handleValidationError(w, logger, err)
		return
	}

	user, err := h.twoFactor.CompleteChallenge(r.Context(), req.PendingToken, req.Token)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	pair, err := h.tokens.IssuePair(r.Context(), user)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Two-factor login successful", "user_id", user.UserID)
	webutil.RespondWithJSON(w, http.StatusOK, &model.LoginResponse{
		TokenPair: pair,
		User:      model.NewUserResponse(user),
	}, logger)
}

// Refresh はリフレッシュトークンを新しいトークンペアに交換します
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.RefreshRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode refresh request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		handleValidationError(w, logger, err)
		return
	}

	pair, err := h.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, pair, logger)
}

// Logout はサーバー側のセッション (リフレッシュトークン系列) を失効させます。
// クライアントは応答を受けて自前の更新タイマーを停止します
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.LogoutRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode logout request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		handleValidationError(w, logger, err)
		return
	}

	if err := h.tokens.RevokeSession(r.Context(), req.RefreshToken); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "ログアウトしました。",
	}, logger)
}

// GetMe は認証済みユーザー自身の情報を返します
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	user, err := h.credentials.GetUser(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.NewUserResponse(user), logger)
}

// SetupTwoFactor は二要素認証の登録を開始し、シークレットと
// オーセンティケータ登録用URIを返します
func (h *AuthHandler) SetupTwoFactor(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.twoFactor.BeginEnrollment(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// ActivateTwoFactor は登録中のシークレットに対するコードを検証して
// 二要素認証を有効化し、リカバリコードを返します
func (h *AuthHandler) ActivateTwoFactor(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.TwoFactorActivateRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode two-factor activation body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		handleValidationError(w, logger, err)
		return
	}

	resp, err := h.twoFactor.ActivateEnrollment(r.Context(), userID, req.Code)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// handleValidationError はバリデーション失敗を共通のエラー応答へ変換します
func handleValidationError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		logger.Warn("Validation failed", "error", err)
		webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
		return
	}
	logger.Error("Unexpected error during validation", "error", err)
	webutil.HandleError(w, logger, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", model.ErrInternalServer))
}
