// Package handler はHTTPハンドラーを提供します
package handler

import (
	"fmt"
	"log"
	"time"

	"iryohi/internal/service"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
)

// defaultSSEKeepalive はSSEキープアライブコメントの送信間隔
// クライアントやプロキシのアイドルタイムアウトを防止するため15秒に設定
const defaultSSEKeepalive = 15 * time.Second

// sseEventSnapshot はスナップショットを送るSSEイベント名
const sseEventSnapshot = "snapshot"

// setSSEHeaders はSSEレスポンスに必要なHTTPヘッダーを設定します
func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// writeSSEEvents はsnapshotChからスナップショットを読み取り、SSE形式でクライアントに送信します。
// Ginのc.Stream()の代わりにselectベースのループを使用し、
// コンテキストキャンセル（クライアント切断）を即座に検出します。
// また、keepalive ごとにキープアライブコメントを送信して接続を維持します。
func writeSSEEvents(c *gin.Context, snapshotCh <-chan service.Snapshot, keepalive time.Duration, handlerName string) {
	w := c.Writer
	flusher, ok := w.(interface{ Flush() })
	if !ok {
		log.Printf("[%s] ResponseWriter does not support Flush", handlerName)
		return
	}

	if keepalive <= 0 {
		keepalive = defaultSSEKeepalive
	}
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] Client disconnected (context canceled)", handlerName)
			return

		case snap, ok := <-snapshotCh:
			if !ok {
				// 購読が解除された
				log.Printf("[%s] Snapshot channel closed, stream completed", handlerName)
				return
			}

			data, err := json.Marshal(snap)
			if err != nil {
				log.Printf("[%s] Marshal error: %v", handlerName, err)
				continue
			}

			log.Printf("[%s] SSE sending: state=%s, generation=%d", handlerName, snap.State, snap.Generation)
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", sseEventSnapshot, data); err != nil {
				log.Printf("[%s] SSE write error (client disconnected): %v", handlerName, err)
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// SSEキープアライブコメント（プロキシのタイムアウト防止）
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				log.Printf("[%s] Keepalive write error (client disconnected): %v", handlerName, err)
				return
			}
			flusher.Flush()
		}
	}
}
