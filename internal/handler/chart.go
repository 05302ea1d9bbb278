// Package handler はHTTPハンドラーを提供します
package handler

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"iryohi/internal/chart"
	"iryohi/internal/dataset"
	"iryohi/internal/service"

	"github.com/gin-gonic/gin"
)

// ChartResponse は/api/chartレスポンスの構造体です
type ChartResponse struct {
	Success  bool             `json:"success"`         // 成功フラグ
	Snapshot service.Snapshot `json:"snapshot"`        // 現在の状態
	Error    string           `json:"error,omitempty"` // エラーメッセージ
}

// ChartHandler はグラフ関連のHTTPハンドラを提供します
type ChartHandler struct {
	ds        *dataset.Dataset
	binder    *service.Binder
	drawOpts  chart.DrawOptions
	keepalive time.Duration
}

// NewChartHandler は新しいChartHandlerを生成します
func NewChartHandler(ds *dataset.Dataset, binder *service.Binder, drawOpts chart.DrawOptions, keepalive time.Duration) *ChartHandler {
	return &ChartHandler{
		ds:        ds,
		binder:    binder,
		drawOpts:  drawOpts,
		keepalive: keepalive,
	}
}

// Handle は現在のグラフの状態を返します
//
// 再計算中は直前のグラフと state=recomputing を返す。
// 列が解決できなかった場合も200で、snapshot.error に理由が入る。
//
// GET /api/chart
func (h *ChartHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, ChartResponse{
		Success:  true,
		Snapshot: h.binder.Snapshot(),
	})
}

// HandleImage は現在のグラフを画像として返すハンドラを生成します
//
// クエリ a, b を指定した場合は選択状態を変えずにその組み合わせを描く。
// 片方だけ指定した場合、もう片方は現在の選択を使う。
//
// レスポンス:
//   - 200: 画像（SVG or PNG）
//   - 500: 描画エラー
//
// GET /api/chart.svg, GET /api/chart.png
func (h *ChartHandler) HandleImage(format chart.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := h.binder.Snapshot()
		a := dataset.ColumnRef(c.Query("a"))
		b := dataset.ColumnRef(c.Query("b"))

		var spec chart.ChartSpec
		switch {
		case a == "" && b == "" && snap.Chart != nil:
			spec = *snap.Chart
		default:
			if a == "" {
				a = snap.Selection.A
			}
			if b == "" {
				b = snap.Selection.B
			}
			spec = chart.Render(h.ds, a, b)
		}

		var buf bytes.Buffer
		if err := chart.Draw(spec, h.drawOpts, format, &buf); err != nil {
			log.Printf("[ChartHandler] HandleImage failed: format=%s, error=%v", format, err)
			c.JSON(http.StatusInternalServerError, ChartResponse{
				Success: false,
				Error:   "グラフの描画に失敗しました",
			})
			return
		}

		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}

// HandleEvents はグラフの状態変化をServer-Sent Eventsで送信します
//
// 接続直後に現在の状態を1つ送り、その後は状態が変わるたびに送る。
// 受信が遅いクライアントには途中の状態を飛ばして最新の状態を送る。
//
// GET /api/events
func (h *ChartHandler) HandleEvents(c *gin.Context) {
	log.Printf("[ChartHandler] HandleEvents started: remote=%s", c.ClientIP())

	setSSEHeaders(c)

	snapshotCh, unsubscribe := h.binder.Subscribe()
	defer unsubscribe()

	writeSSEEvents(c, snapshotCh, h.keepalive, "ChartHandler")

	log.Printf("[ChartHandler] HandleEvents completed: remote=%s", c.ClientIP())
}
