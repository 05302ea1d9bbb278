// Package handler は国民医療費ダッシュボードのHTTPハンドラーを提供する。
//
// # 概要
//
// このパッケージはGin Frameworkを使用したHTTPリクエストハンドラーを提供する。
// 各ハンドラーはserviceパッケージのセレクタとバインダーを呼び出し、
// HTTPレスポンスを返却する。データセットと表は起動時に1回だけ作られ、
// ハンドラーからは読み取り専用で参照する。
//
// # 主要なコンポーネント
//
//   - PageHandler: / ダッシュボードのページ（表、セレクタ、グラフ）
//   - TableHandler: /api/table 表データ
//   - SelectionHandler: /api/options, /api/selection セレクタの選択肢と選択
//   - ChartHandler: /api/chart, /api/chart.svg, /api/chart.png, /api/events グラフ
//   - HealthHandler: /api/health ヘルスチェック
//
// # エンドポイント一覧
//
// GET /api/options - 選択肢と現在の選択
//
// レスポンス:
//
//	{
//	    "success": true,
//	    "options": [{"label": "医療費計(億円)", "value": "医療費計(億円)"}, ...],
//	    "selection": {"a": "医療費計(億円)", "b": "GDPに対する比率(%)"}
//	}
//
// POST /api/selection - セレクタの値を置き換える
//
// リクエスト:
//
//	{
//	    "selector": "a",               // "a"（棒、第1軸）or "b"（折れ線、第2軸）
//	    "value": "国内総生産(GDP)(億円)" // 選択肢のいずれか
//	}
//
// グラフの再計算は非同期で行うため202を返す。
//
// GET /api/chart - 現在のグラフの状態
//
// レスポンス:
//
//	{
//	    "success": true,
//	    "snapshot": {
//	        "state": "idle",            // idle or recomputing
//	        "selection": {"a": "...", "b": "..."},
//	        "chart": {...},             // ChartSpec
//	        "generation": 3
//	    }
//	}
//
// GET /api/chart.svg, /api/chart.png - 現在のグラフの画像
//
// クエリ a, b を指定すると選択状態を変えずにその組み合わせを描く。
//
// GET /api/events - グラフの状態変化 (SSE)
//
// 接続直後に現在の状態を送り、その後は状態が変わるたびに
// "event: snapshot" で送る。キープアライブコメントを定期的に送る。
//
// # HTTPステータスコード
//
//   - 200 OK: 正常完了
//   - 202 Accepted: 選択を受理（再計算は非同期）
//   - 400 Bad Request: リクエスト不正、未知のセレクタ、選択肢にない値
//   - 500 Internal Server Error: グラフの描画エラー
//   - 503 Service Unavailable: 選択イベントを送る前にクライアントが切断した
//
// # 使用例
//
//	ds, _ := dataset.Load(ctx, dataset.EmbeddedSource{})
//	selectors := service.NewSelectorPair(ds)
//	binder := service.NewBinder(ds, selectors)
//	go binder.Run(ctx)
//
//	r := gin.Default()
//	r.SetHTMLTemplate(handler.PageTemplate())
//	chartHandler := handler.NewChartHandler(ds, binder, chart.DrawOptions{Width: 960, Height: 480}, 15*time.Second)
//	r.GET("/api/events", chartHandler.HandleEvents)
package handler
