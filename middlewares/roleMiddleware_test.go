package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fpadjusters/claims_backend/utils"
)

func roleGateStatus(t *testing.T, role string, allowed ...string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role != "" {
			ctx := utils.SetUserRoleInContext(c.Request.Context(), role)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	r.GET("/guarded", RequireRole(allowed...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		allowed []string
		want    int
	}{
		{"admin on admin route", "ADMIN", []string{"ADMIN"}, http.StatusNoContent},
		{"adjuster on admin route", "ADJUSTER", []string{"ADMIN"}, http.StatusForbidden},
		{"viewer on admin route", "VIEWER", []string{"ADMIN"}, http.StatusForbidden},
		{"adjuster on multi-role route", "ADJUSTER", []string{"ADMIN", "ADJUSTER"}, http.StatusNoContent},
		{"no role in context", "", []string{"ADMIN"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := roleGateStatus(t, tc.role, tc.allowed...); got != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, got)
			}
		})
	}
}
