package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/auth/jwtauth"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/middleware"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(e *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	e := gin.New()
	e.ContextWithFallback = true
	e.Use(middleware.RequestID())
	var seen string
	e.GET("/x", func(c *gin.Context) {
		seen = log.RequestID(c).Value.String()
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w := serve(e, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))

	w = serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err, "generated ids are uuids")
	assert.Equal(t, seen, w.Header().Get(middleware.RequestIDHeader))
}

func TestAuth(t *testing.T) {
	v, err := jwtauth.New("s3cret")
	require.NoError(t, err)
	e := gin.New()
	e.Use(middleware.Auth(v))
	e.GET("/me", func(c *gin.Context) {
		a, ok := middleware.Actor(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, a.UserID)
	})
	e.GET("/admin", middleware.AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	bearer := func(a model.Actor) string {
		tok, err := v.Sign(a, time.Minute)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	for name, tc := range map[string]struct {
		path, auth string
		status     int
	}{
		"user":          {"/me", bearer(model.Actor{UserID: 7}), 200},
		"no header":     {"/me", "", 401},
		"garbage":       {"/me", "Bearer x.y.z", 401},
		"basic":         {"/me", "Basic dXNlcjpwYXNz", 401},
		"admin":         {"/admin", bearer(model.Actor{Admin: true}), 204},
		"not an admin":  {"/admin", bearer(model.Actor{UserID: 7}), 403},
		"admin no auth": {"/admin", "", 401},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			w := serve(e, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == 200 {
				assert.Equal(t, "7", w.Body.String())
			} else if tc.status != 204 {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

type stubLimiter struct {
	left  int
	err   error
	calls int
}

func (l *stubLimiter) TryAcquire(context.Context, string) (bool, error) {
	l.calls++
	if l.err != nil {
		return false, l.err
	}
	l.left--
	return l.left >= 0, nil
}

func TestRateLimit(t *testing.T) {
	l := &stubLimiter{left: 1}
	e := gin.New()
	e.Use(middleware.RateLimit(l, []string{"10.0.0.9"}))
	e.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := func(ip string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.RemoteAddr = ip + ":5555"
		return r
	}
	assert.Equal(t, 204, serve(e, req("10.0.0.1")).Code)
	w := serve(e, req("10.0.0.1"))
	assert.Equal(t, 429, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Too many requests"}`, w.Body.String())

	assert.Equal(t, 204, serve(e, req("10.0.0.9")).Code, "whitelisted")
	assert.Equal(t, 2, l.calls)

	l.err = errors.New("redis is down")
	assert.Equal(t, 204, serve(e, req("10.0.0.1")).Code, "fails open")
}

type observation struct {
	method, route string
	status        int
}

type stubObserver []observation

func (o *stubObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	*o = append(*o, observation{method, route, status})
}

func TestMetricsAndLogger(t *testing.T) {
	o := &stubObserver{}
	e := gin.New()
	e.Use(middleware.Logger(), middleware.Metrics(o))
	e.GET("/api/car/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(e, httptest.NewRequest(http.MethodGet, "/api/car/12", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, stubObserver{
		{"GET", "/api/car/:id", 404},
		{"GET", "unmatched", 404},
	}, *o)
}
