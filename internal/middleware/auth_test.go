package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"

	"practice-service/internal/middleware"
	"practice-service/pkg/jwtutil"
	"practice-service/pkg/logger"
)

func TestAuthMiddleware(t *testing.T) {
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:        "test-key",
		AccessExpiration:  time.Hour,
		RefreshExpiration: time.Hour,
	})
	pair, err := jwt.IssuePair(7, "a@example.com", "professional")
	qt.Assert(t, err, qt.IsNil)

	e := echo.New()
	e.Use(middleware.RequestIDMiddleware)
	e.GET("/private", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id")})
	}, middleware.AuthMiddleware(jwt))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + pair.Refresh, want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not-a-token", want: http.StatusUnauthorized},
		{name: "access token", header: "Bearer " + pair.Access, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			c.Assert(rec.Code, qt.Equals, tt.want)
			c.Assert(rec.Header().Get(logger.RequestIDKey), qt.Not(qt.Equals), "")
		})
	}
}
