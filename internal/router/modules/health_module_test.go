package modules

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		checks map[string]func(context.Context) error
		want   int
	}{
		{"no checks", nil, http.StatusOK},
		{"all ok", map[string]func(context.Context) error{"db": func(context.Context) error { return nil }}, http.StatusOK},
		{"one failing", map[string]func(context.Context) error{
			"db":    func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("connection refused") },
		}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHealthModule(tt.checks).Register(r.Group("/api"))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want != http.StatusOK && !strings.Contains(w.Body.String(), "connection refused") {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}
