// Package handler はドナー登録APIのHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/donordesk/internal/model"
)

// DonorStorage はドナーハンドラーが必要とするストレージインターフェース。
type DonorStorage interface {
	// ListDonors は全ドナーを登録日時の新しい順で返す。
	ListDonors(ctx context.Context) ([]model.Donor, error)
	// GetDonor は指定IDのドナーを取得する。見つからない場合はnilを返す。
	GetDonor(ctx context.Context, id string) (*model.Donor, error)
	// CreateDonor はIDと登録日時を付与してドナーを作成する。
	CreateDonor(ctx context.Context, in model.InsertDonor) (*model.Donor, error)
	// UpdateDonor は可変フィールドを上書きする。見つからない場合はnilを返す。
	UpdateDonor(ctx context.Context, id string, in model.InsertDonor) (*model.Donor, error)
	// DeleteDonor は指定IDのドナーを削除し、削除の有無を返す。
	DeleteDonor(ctx context.Context, id string) (bool, error)
}

// DonorHandler はドナー管理のHTTPハンドラー。
// バリデーションを通過した入力のみをストレージに渡す。
type DonorHandler struct {
	store DonorStorage
}

// NewDonorHandler はDonorHandlerを生成する。
func NewDonorHandler(store DonorStorage) *DonorHandler {
	return &DonorHandler{
		store: store,
	}
}

// ListDonors は全ドナーの一覧を取得する。
// GET /api/donors
func (h *DonorHandler) ListDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := h.store.ListDonors(r.Context())
	if err != nil {
		handleStorageError(w, err, "Failed to fetch donors")
		return
	}

	writeJSON(w, http.StatusOK, donors)
}

// GetDonor は単一のドナーを取得する。
// GET /api/donors/:id
func (h *DonorHandler) GetDonor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	donor, err := h.store.GetDonor(r.Context(), id)
	if err != nil {
		handleStorageError(w, err, "Failed to fetch donor")
		return
	}
	if donor == nil {
		writeAPIError(w, http.StatusNotFound, model.NewDonorNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, donor)
}

// CreateDonor は新規ドナーを登録する。
// POST /api/donors
func (h *DonorHandler) CreateDonor(w http.ResponseWriter, r *http.Request) {
	var in model.InsertDonor
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if apiErr := model.ValidateInsertDonor(in); apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	donor, err := h.store.CreateDonor(r.Context(), in)
	if err != nil {
		handleStorageError(w, err, "Failed to create donor")
		return
	}

	writeJSON(w, http.StatusCreated, donor)
}

// UpdateDonor は既存ドナーの可変フィールドを更新する。
// PUT /api/donors/:id
func (h *DonorHandler) UpdateDonor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in model.InsertDonor
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if apiErr := model.ValidateInsertDonor(in); apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	donor, err := h.store.UpdateDonor(r.Context(), id, in)
	if err != nil {
		handleStorageError(w, err, "Failed to update donor")
		return
	}
	if donor == nil {
		writeAPIError(w, http.StatusNotFound, model.NewDonorNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, donor)
}

// DeleteDonor はドナーを削除する。
// DELETE /api/donors/:id
func (h *DonorHandler) DeleteDonor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.store.DeleteDonor(r.Context(), id)
	if err != nil {
		handleStorageError(w, err, "Failed to delete donor")
		return
	}
	if !deleted {
		writeAPIError(w, http.StatusNotFound, model.NewDonorNotFoundError())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// errorResponse はAPIエラーレスポンスのボディ。
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIError はAPIErrorのメッセージをエラーレスポンスとして書き込む。
func writeAPIError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, errorResponse{Error: apiErr.Message})
}

// handleStorageError はストレージ層のエラーを500に変換する。
// 内部詳細はログのみに記録し、呼び出し元にはエンドポイントごとの固定文言を返す。
func handleStorageError(w http.ResponseWriter, err error, message string) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		// ストレージからAPIErrorが返ることは想定しないが、返った場合はそのまま通す
		writeAPIError(w, http.StatusInternalServerError, apiErr)
		return
	}

	slog.Error("storage error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: message})
}
