package handler

import (
	"context"
	"testing"
	"time"

	"iryohi/internal/dataset"
	"iryohi/internal/service"
	"iryohi/internal/table"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testDeps はハンドラーのテストで使う依存をまとめたものです
type testDeps struct {
	ds        *dataset.Dataset
	selectors *service.SelectorPair
	binder    *service.Binder
	view      *table.View
}

// newTestDeps は埋め込みデータでバインダーを起動し、初回の計算が終わるまで待ちます
func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	ds, err := dataset.Load(context.Background(), dataset.EmbeddedSource{})
	if err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}
	view, err := table.Build(ds, table.Options{})
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}

	selectors := service.NewSelectorPair(ds)
	binder := service.NewBinder(ds, selectors)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		binder.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.Now().Add(3 * time.Second)
	for binder.Snapshot().State != service.StateIdle {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for initial render")
		}
		time.Sleep(5 * time.Millisecond)
	}

	return &testDeps{ds: ds, selectors: selectors, binder: binder, view: view}
}
