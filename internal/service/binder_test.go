package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"iryohi/internal/chart"
	"iryohi/internal/dataset"
)

const waitTimeout = 3 * time.Second

// startBinder はBinderを起動し、テスト終了時に停止します
func startBinder(t *testing.T, opts ...BinderOption) (*Binder, *SelectorPair) {
	t.Helper()
	ds := loadDataset(t)
	selectors := NewSelectorPair(ds)
	b := NewBinder(ds, selectors, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- b.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(waitTimeout):
			t.Error("Run() did not stop")
		}
	})
	return b, selectors
}

// waitFor は条件を満たすスナップショットが届くまで待ちます
func waitFor(t *testing.T, ch <-chan Snapshot, seen *[]Snapshot, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(waitTimeout)
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				t.Fatal("subscription closed")
			}
			if seen != nil {
				*seen = append(*seen, s)
			}
			if cond(s) {
				return s
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func idleAt(gen uint64) func(Snapshot) bool {
	return func(s Snapshot) bool {
		return s.State == StateIdle && s.Generation == gen
	}
}

func TestBinder_InitialRender(t *testing.T) {
	b, _ := startBinder(t)
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	s := waitFor(t, ch, nil, idleAt(1))

	if s.Chart == nil || len(s.Chart.Series) != 2 {
		t.Fatalf("initial chart = %+v", s.Chart)
	}
	if s.Chart.Series[0].Name != string(DefaultA) || s.Chart.Series[1].Name != string(DefaultB) {
		t.Errorf("initial series = %s, %s", s.Chart.Series[0].Name, s.Chart.Series[1].Name)
	}
	if s.Error != "" {
		t.Errorf("Error = %q, want empty", s.Error)
	}
}

func TestBinder_SelectionChangeRecomputes(t *testing.T) {
	b, selectors := startBinder(t, WithDelay(200*time.Millisecond))
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	waitFor(t, ch, nil, idleAt(1))

	if _, err := selectors.Select(context.Background(), SelectorA, dataset.ColumnGDP); err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}

	// 再計算中は直前のグラフを表示し続ける
	recomputing := waitFor(t, ch, nil, func(s Snapshot) bool {
		return s.State == StateRecomputing && s.Generation == 2
	})
	if recomputing.Chart == nil || recomputing.Chart.Series[0].Name != string(dataset.ColumnTotalCost) {
		t.Errorf("stale chart not kept while recomputing: %+v", recomputing.Chart)
	}
	if recomputing.Selection.A != dataset.ColumnGDP {
		t.Errorf("Selection.A = %s, want %s", recomputing.Selection.A, dataset.ColumnGDP)
	}

	idle := waitFor(t, ch, nil, idleAt(2))
	if idle.Chart.Series[0].Name != string(dataset.ColumnGDP) {
		t.Errorf("bar series = %s, want %s", idle.Chart.Series[0].Name, dataset.ColumnGDP)
	}
	if idle.Chart.Series[1].Name != string(dataset.ColumnGDPRatio) {
		t.Errorf("line series = %s, want %s", idle.Chart.Series[1].Name, dataset.ColumnGDPRatio)
	}
}

func TestBinder_LastWriteWins(t *testing.T) {
	b, selectors := startBinder(t, WithDelay(50*time.Millisecond))
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	waitFor(t, ch, nil, idleAt(1))

	ctx := context.Background()
	if _, err := selectors.Select(ctx, SelectorA, dataset.ColumnCostPerCapita); err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}
	if _, err := selectors.Select(ctx, SelectorA, dataset.ColumnGDP); err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}

	var seen []Snapshot
	s := waitFor(t, ch, &seen, idleAt(3))

	if s.Selection.A != dataset.ColumnGDP || s.Chart.Series[0].Name != string(dataset.ColumnGDP) {
		t.Errorf("settled on %s / %s, want %s", s.Selection.A, s.Chart.Series[0].Name, dataset.ColumnGDP)
	}
	for _, snap := range seen {
		if snap.State == StateIdle && snap.Selection.A == dataset.ColumnCostPerCapita {
			t.Errorf("superseded selection was applied: %+v", snap)
		}
	}

	// 落ち着いた後も変わらない
	time.Sleep(100 * time.Millisecond)
	if got := b.Snapshot(); got.Generation != 3 || got.Selection.A != dataset.ColumnGDP {
		t.Errorf("Snapshot() = gen %d, a %s", got.Generation, got.Selection.A)
	}
}

func TestBinder_StaleResultIsDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	slow := func(ds *dataset.Dataset, a, b dataset.ColumnRef) chart.ChartSpec {
		if a == dataset.ColumnCostPerCapita {
			close(entered)
			<-release
		}
		return chart.Render(ds, a, b)
	}

	b, selectors := startBinder(t, WithRenderFunc(slow))
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	waitFor(t, ch, nil, idleAt(1))

	ctx := context.Background()
	if _, err := selectors.Select(ctx, SelectorA, dataset.ColumnCostPerCapita); err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}
	<-entered

	if _, err := selectors.Select(ctx, SelectorA, dataset.ColumnNationalIncome); err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}
	waitFor(t, ch, nil, idleAt(3))

	// 追い越された計算を完了させる
	close(release)
	time.Sleep(100 * time.Millisecond)

	got := b.Snapshot()
	if got.Generation != 3 || got.Chart.Series[0].Name != string(dataset.ColumnNationalIncome) {
		t.Errorf("Snapshot() = gen %d, bar %s; want gen 3, bar %s", got.Generation, got.Chart.Series[0].Name, dataset.ColumnNationalIncome)
	}
}

func TestBinder_RenderFailure(t *testing.T) {
	tests := []struct {
		name      string
		render    RenderFunc
		wantError string
	}{
		{
			name: "列が解決できない場合はNoDataを表示する",
			render: func(ds *dataset.Dataset, _, _ dataset.ColumnRef) chart.ChartSpec {
				return chart.Render(ds, "存在しない列", dataset.ColumnGDP)
			},
			wantError: "unknown column",
		},
		{
			name: "グラフ生成がパニックしてもNoDataを表示する",
			render: func(*dataset.Dataset, dataset.ColumnRef, dataset.ColumnRef) chart.ChartSpec {
				panic("boom")
			},
			wantError: "render failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := startBinder(t, WithRenderFunc(tt.render))
			ch, unsubscribe := b.Subscribe()
			defer unsubscribe()

			s := waitFor(t, ch, nil, idleAt(1))

			if !strings.Contains(s.Error, tt.wantError) {
				t.Errorf("Error = %q, want containing %q", s.Error, tt.wantError)
			}
			if s.Chart == nil || !s.Chart.NoData || len(s.Chart.Series) != 0 {
				t.Errorf("Chart = %+v, want NoData with zero series", s.Chart)
			}
		})
	}
}

func TestBinder_Subscribe(t *testing.T) {
	ds := loadDataset(t)
	b := NewBinder(ds, NewSelectorPair(ds))

	ch, unsubscribe := b.Subscribe()

	// 購読直後に現在の状態が届く
	select {
	case s := <-ch:
		if s.State != StateRecomputing || s.Generation != 0 {
			t.Errorf("first snapshot = %+v", s)
		}
	default:
		t.Fatal("no snapshot on subscribe")
	}

	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Error("channel not closed after unsubscribe")
	}
}
