package handlers

import (
	"net/http"

	"devhub/internal/middleware"
	"devhub/internal/model"
	"devhub/internal/service"
	"devhub/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type APITokenHandler struct {
	tokens service.APITokenService
}

func NewAPITokenHandler(tokens service.APITokenService) *APITokenHandler {
	return &APITokenHandler{tokens: tokens}
}

// Create はAPIトークンを発行します。平文のシークレットはこの応答にしか含まれません
func (h *APITokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.CreateAPITokenRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode API token request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		handleValidationError(w, logger, err)
		return
	}

	resp, err := h.tokens.Create(r.Context(), userID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, resp, logger)
}

// List は自分のAPIトークン一覧を返します。シークレットは含まれません
func (h *APITokenHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	tokens, err := h.tokens.List(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, tokens, logger)
}

// Revoke は指定されたAPIトークンを失効させます
func (h *APITokenHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	tokenID, err := uuid.Parse(chi.URLParam(r, "tokenID"))
	if err != nil {
		appErr := model.NewAppError("INVALID_TOKEN_ID", "トークンIDの形式が正しくありません。", "token_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.tokens.Revoke(r.Context(), userID, tokenID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("API token revoked", "user_id", userID, "token_id", tokenID)
	w.WriteHeader(http.StatusNoContent)
}
