// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

// アプリケーション固有のエラー
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("resource conflict") // 重複エラー用
)

// ErrorDetail はクライアントに返すエラーの詳細です
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	// スコープ不足エラーの場合のみ、不足しているスコープを列挙する
	MissingScopes []string `json:"missing_scopes,omitempty"`
}

// APIErrorResponse はAPIエラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError はエラーコードと利用者向けメッセージを持つアプリケーションエラーです。
// 根本原因のセンチネルエラー (ErrNotFound など) をラップし、
// webutil 側で HTTP ステータスへのマッピングに使われます。
type AppError struct {
	Detail ErrorDetail
	err    error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{Code: code, Message: message, Field: field},
		err:    err,
	}
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Detail.Code, e.err)
	}
	return e.Detail.Code
}

func (e *AppError) Unwrap() error {
	return e.err
}

// WithMissingScopes は不足スコープ情報を付与した AppError を返します
func (e *AppError) WithMissingScopes(scopes []string) *AppError {
	e.Detail.MissingScopes = scopes
	return e
}
