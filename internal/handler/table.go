// Package handler はHTTPハンドラーを提供します
package handler

import (
	"net/http"

	"iryohi/internal/table"

	"github.com/gin-gonic/gin"
)

// TableResponse は/api/tableレスポンスの構造体です
type TableResponse struct {
	Success bool        `json:"success"`
	Table   *table.View `json:"table"`
}

// TableHandler は表データのHTTPハンドラを提供します
// 表は起動時に1回だけ組み立てる
type TableHandler struct {
	view *table.View
}

// NewTableHandler は新しいTableHandlerを生成します
func NewTableHandler(view *table.View) *TableHandler {
	return &TableHandler{view: view}
}

// Handle は表データを返します
// GET /api/table
func (h *TableHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, TableResponse{
		Success: true,
		Table:   h.view,
	})
}
