// Package service はダッシュボードのビジネスロジックを提供する。
//
// # 概要
//
// このパッケージは2つのセレクタの選択状態と、選択に応じたグラフの
// 再計算を扱う。HTTPの層には依存せず、handlerパッケージから利用される。
//
// # 主要なコンポーネント
//
// SelectorPair がセレクタA/Bの選択状態を保持し、Binder が選択の変更を
// グラフの再計算に結び付ける。両者は SelectionChanged イベントの
// チャネルでつながる。
//
// # SelectorPair
//
// 選択肢はデータセットの年次以外の列で、2つのセレクタで共通。
// 初期値は A=医療費計(億円)、B=GDPに対する比率(%)。
//
// 主な機能:
//   - Options で選択肢の一覧を返す
//   - Select で片方のセレクタの値を置き換え、変更イベントを発生順に送信する
//   - 選択肢にない値や未知のセレクタはエラーを返し、状態は変えない
//
// # Binder
//
// Idle と Recomputing の2状態を持つ。選択変更で Recomputing に入り、
// 計算が終わると Idle に戻る。再計算中も直前のグラフを保持する。
//
// 主な機能:
//   - 後から要求された計算だけを反映する（追い越された計算は破棄）
//   - WithDelay でローディング表示のための最小待ち時間を設定
//   - グラフ生成関数のパニックはグラフなしの状態に変換
//   - Subscribe で状態の変化を購読（遅い購読者には最新の状態だけを渡す）
//
// # 使用例
//
//	selectors := service.NewSelectorPair(ds)
//	binder := service.NewBinder(ds, selectors, service.WithDelay(time.Second))
//	go binder.Run(ctx)
//
//	ch, unsubscribe := binder.Subscribe()
//	defer unsubscribe()
//	_, err := selectors.Select(ctx, service.SelectorA, dataset.ColumnGDP)
package service
