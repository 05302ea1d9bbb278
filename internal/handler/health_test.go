package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthHandler_Handle(t *testing.T) {
	deps := newTestDeps(t)
	h := NewHealthHandler(deps.ds)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/health", nil)

	h.Handle(c)

	if w.Code != http.StatusOK {
		t.Errorf("status code: got %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Status string `json:"status"`
		Rows   int    `json:"rows"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v\nbody: %s", err, w.Body.String())
	}
	if resp.Status != "ok" || resp.Rows != 64 {
		t.Errorf("response: got %+v, want status=ok rows=64", resp)
	}
}
