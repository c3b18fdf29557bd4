package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHealthEndpoints(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", health)
	e.Group("/api").GET("/health", health)

	for _, path := range []string{"/healthz", "/api/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		var body response
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if !body.Success {
			t.Fatalf("%s: expected success envelope, got %+v", path, body)
		}
		data, ok := body.Data.(map[string]interface{})
		if !ok {
			t.Fatalf("%s: unexpected data payload: %+v", path, body.Data)
		}
		if data["status"] != "healthy" {
			t.Fatalf("%s: status field: %v", path, data["status"])
		}
	}
}
