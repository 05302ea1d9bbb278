// Package handler はHTTPハンドラーを提供します
package handler

import (
	"net/http"

	"iryohi/internal/dataset"

	"github.com/gin-gonic/gin"
)

// HealthHandler はヘルスチェック関連のHTTPハンドラを提供します
type HealthHandler struct {
	rows int
}

// NewHealthHandler は新しいHealthHandlerを生成します
func NewHealthHandler(ds *dataset.Dataset) *HealthHandler {
	return &HealthHandler{rows: ds.Len()}
}

// Handle はサーバーのヘルスチェックを実行する。
//
// データセットは起動時に読み込み済みで、読み込みに失敗した場合は
// サーバーが起動しないため、プロセスが動いていれば常に成功を返す。
//
// レスポンス:
//   - 200: 成功 {"status": "ok", "rows": 64}
func (h *HealthHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"rows":   h.rows,
	})
}
