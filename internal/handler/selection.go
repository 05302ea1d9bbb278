// Package handler はHTTPハンドラーを提供します
package handler

import (
	"errors"
	"log"
	"net/http"

	"iryohi/internal/dataset"
	"iryohi/internal/service"

	"github.com/gin-gonic/gin"
)

// SelectRequest は/api/selectionリクエストの構造体です
type SelectRequest struct {
	Selector service.SelectorID `json:"selector"` // "a" or "b"
	Value    dataset.ColumnRef  `json:"value"`    // 列名
}

// SelectionResponse は/api/selectionレスポンスの構造体です
type SelectionResponse struct {
	Success   bool                    `json:"success"`             // 成功フラグ
	Selection *service.SelectionState `json:"selection,omitempty"` // 現在の選択
	Error     string                  `json:"error,omitempty"`     // エラーメッセージ
}

// OptionsResponse は/api/optionsレスポンスの構造体です
type OptionsResponse struct {
	Success   bool                   `json:"success"`   // 成功フラグ
	Options   []service.Option       `json:"options"`   // 2つのセレクタで共通の選択肢
	Selection service.SelectionState `json:"selection"` // 現在の選択
}

// SelectionHandler はセレクタ関連のHTTPハンドラを提供します
type SelectionHandler struct {
	selectors *service.SelectorPair
}

// NewSelectionHandler は新しいSelectionHandlerを生成します
func NewSelectionHandler(selectors *service.SelectorPair) *SelectionHandler {
	return &SelectionHandler{
		selectors: selectors,
	}
}

// HandleOptions は選択肢と現在の選択を返します
// GET /api/options
func (h *SelectionHandler) HandleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, OptionsResponse{
		Success:   true,
		Options:   h.selectors.Options(),
		Selection: h.selectors.State(),
	})
}

// HandleGet は現在の選択を返します
// GET /api/selection
func (h *SelectionHandler) HandleGet(c *gin.Context) {
	state := h.selectors.State()
	c.JSON(http.StatusOK, SelectionResponse{
		Success:   true,
		Selection: &state,
	})
}

// HandleSelect はセレクタの値を置き換えます
//
// グラフの再計算は非同期で行われるため、202を返す。
// 再計算の結果は /api/events または /api/chart で受け取る。
//
// レスポンス:
//   - 202: 受理（SelectionResponse.Selection に置き換え後の選択）
//   - 400: リクエスト不正、未知のセレクタ、選択肢にない値
//
// POST /api/selection
func (h *SelectionHandler) HandleSelect(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[SelectionHandler] HandleSelect failed: invalid request, error=%v", err)
		c.JSON(http.StatusBadRequest, SelectionResponse{
			Success: false,
			Error:   "リクエストが不正です",
		})
		return
	}

	log.Printf("[SelectionHandler] HandleSelect started: selector=%s, value=%s", req.Selector, req.Value)

	state, err := h.selectors.Select(c.Request.Context(), req.Selector, req.Value)
	if err != nil {
		log.Printf("[SelectionHandler] HandleSelect failed: selector=%s, value=%s, error=%v", req.Selector, req.Value, err)

		status := http.StatusBadRequest
		msg := err.Error()
		switch {
		case errors.Is(err, service.ErrUnknownSelector):
			msg = "存在しないセレクタです: " + string(req.Selector)
		case errors.Is(err, service.ErrUnknownOption):
			msg = "選択できない値です: " + string(req.Value)
		default:
			// クライアント切断など
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, SelectionResponse{
			Success:   false,
			Selection: &state,
			Error:     msg,
		})
		return
	}

	log.Printf("[SelectionHandler] HandleSelect completed: a=%s, b=%s", state.A, state.B)

	c.JSON(http.StatusAccepted, SelectionResponse{
		Success:   true,
		Selection: &state,
	})
}
