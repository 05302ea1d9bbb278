// Package service はビジネスロジックを提供します
package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"iryohi/internal/chart"
	"iryohi/internal/dataset"
)

// BinderState はグラフの再計算状態です
type BinderState string

// 再計算状態
const (
	StateIdle        BinderState = "idle"        // グラフが現在の選択を反映している
	StateRecomputing BinderState = "recomputing" // 再計算中（ローディング表示）
)

// Snapshot は購読者に配信するバインダーの状態です
type Snapshot struct {
	State      BinderState      `json:"state"`
	Selection  SelectionState   `json:"selection"`            // 直近に要求された選択
	Chart      *chart.ChartSpec `json:"chart,omitempty"`      // 再計算中は直前のグラフのまま
	Generation uint64           `json:"generation"`           // 再計算要求ごとに増える
	Error      string           `json:"error,omitempty"`      // グラフを作れなかった理由
	UpdatedAt  time.Time        `json:"updated_at,omitempty"` // 状態が変わった時刻
}

// RenderFunc はデータセットと選択からグラフの仕様を作る関数です
type RenderFunc func(ds *dataset.Dataset, a, b dataset.ColumnRef) chart.ChartSpec

// BinderOption はBinderの設定を変更します
type BinderOption func(*Binder)

// WithDelay は再計算を完了するまでの最小待ち時間を設定します
// ローディング表示を見せるためのもので、0 なら待たない
func WithDelay(d time.Duration) BinderOption {
	return func(b *Binder) {
		b.delay = d
	}
}

// WithRenderFunc はグラフ生成関数を差し替えます
func WithRenderFunc(fn RenderFunc) BinderOption {
	return func(b *Binder) {
		b.render = fn
	}
}

type renderResult struct {
	generation uint64
	selection  SelectionState
	spec       chart.ChartSpec
}

// Binder はセレクタの変更をグラフの再計算に結び付けます
//
// 状態は Idle → 選択変更 → Recomputing → Idle と遷移する。
// 選択変更のたびに新しい計算を開始し、後から要求された計算の結果だけを
// 反映する。追い越された計算はキャンセルし、結果が届いても捨てる。
type Binder struct {
	ds        *dataset.Dataset
	selectors *SelectorPair
	delay     time.Duration
	render    RenderFunc

	results chan renderResult

	// Run のゴルーチンだけが触る
	generation uint64
	cancel     context.CancelFunc

	mu      sync.RWMutex
	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int
}

// NewBinder は新しいBinderを生成します
func NewBinder(ds *dataset.Dataset, selectors *SelectorPair, opts ...BinderOption) *Binder {
	b := &Binder{
		ds:        ds,
		selectors: selectors,
		render:    chart.Render,
		results:   make(chan renderResult),
		subs:      make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.snap = Snapshot{
		State:     StateRecomputing,
		Selection: selectors.State(),
		UpdatedAt: time.Now(),
	}
	return b
}

// Run はセレクタのイベントを発生順に処理します
//
// 起動時に初期選択のグラフを計算し、ctx が終了するまで戻らない。
func (b *Binder) Run(ctx context.Context) error {
	log.Printf("[Binder] Run started: delay=%v", b.delay)

	b.start(ctx, b.selectors.State())

	events := b.selectors.Events()
	for {
		select {
		case <-ctx.Done():
			if b.cancel != nil {
				b.cancel()
			}
			log.Printf("[Binder] Run stopped: generation=%d", b.generation)
			return nil

		case ev := <-events:
			log.Printf("[Binder] Selection changed: selector=%s, value=%s", ev.Selector, ev.Value)
			b.start(ctx, ev.State)

		case res := <-b.results:
			if res.generation != b.generation {
				log.Printf("[Binder] Stale result discarded: generation=%d, latest=%d", res.generation, b.generation)
				continue
			}
			b.apply(res)
		}
	}
}

// start は新しい世代の計算を開始し、前の計算をキャンセルします
func (b *Binder) start(ctx context.Context, sel SelectionState) {
	if b.cancel != nil {
		b.cancel()
	}
	b.generation++
	gen := b.generation

	cctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	b.mu.Lock()
	b.snap = Snapshot{
		State:      StateRecomputing,
		Selection:  sel,
		Chart:      b.snap.Chart,
		Generation: gen,
		UpdatedAt:  time.Now(),
	}
	b.publishLocked()
	b.mu.Unlock()

	go b.compute(cctx, gen, sel)
}

// compute は待ち時間の後にグラフを作って結果を返します
// 待ち時間が唯一の中断点
func (b *Binder) compute(ctx context.Context, gen uint64, sel SelectionState) {
	if b.delay > 0 {
		timer := time.NewTimer(b.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	res := renderResult{generation: gen, selection: sel, spec: b.safeRender(sel)}

	select {
	case b.results <- res:
	case <-ctx.Done():
	}
}

// safeRender はグラフ生成のパニックを NoData のグラフに変換します
func (b *Binder) safeRender(sel SelectionState) (spec chart.ChartSpec) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Binder] Render panicked: a=%s, b=%s, panic=%v", sel.A, sel.B, r)
			spec = chart.ChartSpec{
				XAxis:   chart.Axis{Title: chart.XAxisTitle},
				Series:  []chart.Series{},
				NoData:  true,
				Message: fmt.Sprintf("render failed: %v", r),
			}
		}
	}()
	return b.render(b.ds, sel.A, sel.B)
}

func (b *Binder) apply(res renderResult) {
	spec := res.spec

	b.mu.Lock()
	b.snap = Snapshot{
		State:      StateIdle,
		Selection:  res.selection,
		Chart:      &spec,
		Generation: res.generation,
		UpdatedAt:  time.Now(),
	}
	if spec.NoData {
		b.snap.Error = spec.Message
		log.Printf("[Binder] Render failed: generation=%d, a=%s, b=%s, error=%s", res.generation, res.selection.A, res.selection.B, spec.Message)
	} else {
		log.Printf("[Binder] Render completed: generation=%d, a=%s, b=%s", res.generation, res.selection.A, res.selection.B)
	}
	b.publishLocked()
	b.mu.Unlock()
}

// Snapshot は現在の状態を返します
func (b *Binder) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

// Subscribe は状態の変化を受け取るチャンネルを返します
//
// 購読直後に現在の状態が1つ届く。受信が遅れた場合は途中の状態を
// 飛ばし、常に最新の状態が残る。返される関数で購読を解除する。
func (b *Binder) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch
	ch <- b.snap
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// publishLocked は購読者に現在の状態を送ります。b.mu を保持して呼ぶこと
func (b *Binder) publishLocked() {
	for _, ch := range b.subs {
		select {
		case ch <- b.snap:
			continue
		default:
		}
		// 古い状態を捨てて最新に置き換える
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- b.snap:
		default:
		}
	}
}
