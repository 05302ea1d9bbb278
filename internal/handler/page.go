// Package handler はHTTPハンドラーを提供します
package handler

import (
	"embed"
	"html/template"
	"net/http"

	"iryohi/internal/service"
	"iryohi/internal/table"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pageTitle はページの見出し
const pageTitle = "Medical Cost in Japan"

// PageTemplate はページのHTMLテンプレートを返します
// gin.Engine.SetHTMLTemplate に渡して使う
func PageTemplate() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

// PageHandler はダッシュボードのページを返すHTTPハンドラを提供します
type PageHandler struct {
	view      *table.View
	selectors *service.SelectorPair
	binder    *service.Binder
}

// NewPageHandler は新しいPageHandlerを生成します
func NewPageHandler(view *table.View, selectors *service.SelectorPair, binder *service.Binder) *PageHandler {
	return &PageHandler{
		view:      view,
		selectors: selectors,
		binder:    binder,
	}
}

// Handle はダッシュボードのページを返します
//
// 表は見出し固定で表示領域内をスクロールする。グラフは /api/events の
// スナップショットに従って差し替え、再計算中はローディング表示を出す。
//
// GET /
func (h *PageHandler) Handle(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":     pageTitle,
		"Table":     h.view,
		"Options":   h.selectors.Options(),
		"Selection": h.selectors.State(),
		"Snapshot":  h.binder.Snapshot(),
	})
}
