// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は呼び出し元に返すエラーの統一フォーマットを表す。
// Messageはそのままレスポンスボディに載るため内部詳細を含めない。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDonorNotFound    = "DONOR_NOT_FOUND"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
)

// NewDonorNotFoundError はドナー未検出エラーを生成する。
// メッセージは外部インターフェースで固定された文言を使用する。
func NewDonorNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeDonorNotFound,
		Message: "Donor not found",
	}
}

// NewValidationError は入力バリデーション失敗エラーを生成する。
// 違反したすべてのフィールドのメッセージを連結して1つのメッセージにする。
func NewValidationError(violations []string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: strings.Join(violations, "; "),
	}
}

// NewInvalidRequestError はリクエストボディが解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: "Invalid request body",
	}
}
