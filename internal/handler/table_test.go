package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestTableHandler_Handle(t *testing.T) {
	deps := newTestDeps(t)
	h := NewTableHandler(deps.view)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/table", nil)

	h.Handle(c)

	if w.Code != http.StatusOK {
		t.Errorf("status code: got %d, want %d", w.Code, http.StatusOK)
	}

	var resp TableResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v\nbody: %s", err, w.Body.String())
	}

	if !resp.Success || resp.Table == nil {
		t.Fatalf("response: got %+v", resp)
	}
	if len(resp.Table.Columns) != 8 {
		t.Errorf("columns count: got %d, want 8", len(resp.Table.Columns))
	}
	if len(resp.Table.Rows) != 64 {
		t.Errorf("rows count: got %d, want 64", len(resp.Table.Rows))
	}
	if !resp.Table.FixedHeader || resp.Table.MaxHeight != 300 {
		t.Errorf("display options: got fixed_header=%v max_height=%d", resp.Table.FixedHeader, resp.Table.MaxHeight)
	}
	if got := resp.Table.Rows[0][0]; got != "1954" {
		t.Errorf("rows[0][0]: got %q, want %q", got, "1954")
	}
}
