//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pasarlink/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequireInternalToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(token string) *gin.Engine {
		r := gin.New()
		r.POST("/internal/sweep", middleware.RequireInternalToken(token), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	tests := []struct {
		name       string
		configured string
		header     string
		wantStatus int
	}{
		{"matching token", "sweep-secret", "sweep-secret", http.StatusOK},
		{"wrong token", "sweep-secret", "nope", http.StatusUnauthorized},
		{"missing header", "sweep-secret", "", http.StatusUnauthorized},
		{"unset token fails closed", "", "anything", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/internal/sweep", nil)
			if tt.header != "" {
				req.Header.Set("X-Internal-Token", tt.header)
			}
			newRouter(tt.configured).ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
