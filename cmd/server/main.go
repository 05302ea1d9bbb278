// Package main は医療費ダッシュボードサーバーのエントリーポイントです
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"iryohi/internal/chart"
	"iryohi/internal/config"
	"iryohi/internal/dataset"
	"iryohi/internal/handler"
	"iryohi/internal/service"
	"iryohi/internal/table"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.Println("[Server] Starting dashboard server...")

	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("[Server] Invalid configuration: %v", err)
	}

	// SIGINT/SIGTERM でキャンセルされる。SSE の接続もこれで切る
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// データセットの読み込み（失敗したら起動しない）
	src, err := dataset.SourceFor(cfg.DataSource, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("[Server] Invalid data source: %v", err)
	}
	ds, err := dataset.Load(ctx, src)
	if err != nil {
		log.Fatalf("[Server] Failed to load dataset: %v", err)
	}

	view, err := table.Build(ds, table.Options{MaxHeight: cfg.TableMaxHeight})
	if err != nil {
		log.Fatalf("[Server] Failed to build table: %v", err)
	}

	// 依存性の組み立て
	selectors := service.NewSelectorPair(ds)
	binder := service.NewBinder(ds, selectors, service.WithDelay(cfg.RecomputeDelay))
	drawOpts := chart.DrawOptions{Width: cfg.ChartWidth, Height: cfg.ChartHeight}

	healthHandler := handler.NewHealthHandler(ds)
	tableHandler := handler.NewTableHandler(view)
	selectionHandler := handler.NewSelectionHandler(selectors)
	chartHandler := handler.NewChartHandler(ds, binder, drawOpts, cfg.SSEKeepalive)
	pageHandler := handler.NewPageHandler(view, selectors, binder)

	// Ginエンジン初期化
	r := gin.Default()
	r.SetHTMLTemplate(handler.PageTemplate())

	// CORS設定（フロントエンドを別オリジンで開発する場合）
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	// ページ
	r.GET("/", pageHandler.Handle)

	// APIルーティング
	api := r.Group("/api")
	{
		// ヘルスチェックAPI
		api.GET("/health", healthHandler.Handle)

		// 表データAPI
		api.GET("/table", tableHandler.Handle)

		// セレクタAPI
		api.GET("/options", selectionHandler.HandleOptions)
		api.GET("/selection", selectionHandler.HandleGet)
		api.POST("/selection", selectionHandler.HandleSelect)

		// グラフAPI
		api.GET("/chart", chartHandler.Handle)
		api.GET("/chart.svg", chartHandler.HandleImage(chart.FormatSVG))
		api.GET("/chart.png", chartHandler.HandleImage(chart.FormatPNG))
		api.GET("/events", chartHandler.HandleEvents)
	}

	srv := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: r,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return binder.Run(gctx)
	})

	g.Go(func() error {
		log.Printf("[Server] Listening on %s", cfg.BindAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Printf("[Server] Shutdown started: timeout=%v", cfg.GracefulShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
		defer cancel()

		start := time.Now()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[Server] Shutdown failed: error=%v", err)
			return err
		}
		log.Printf("[Server] Shutdown completed: elapsed=%v", time.Since(start))
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("[Server] Server stopped with error: %v", err)
	}
}
