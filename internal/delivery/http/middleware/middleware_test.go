package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-profile-backend/internal/delivery/http/middleware"
	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/missing", func(c *gin.Context) { c.Error(apperror.NotFound("Profile not found")) })
	r.GET("/boom", func(c *gin.Context) { c.Error(errors.New("pq: connection refused")) })
	r.GET("/store", func(c *gin.Context) { c.Error(apperror.Persistence(errors.New("disk full"))) })

	w := serve(r, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Profile not found"}`, w.Body.String())

	w = serve(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	w = serve(r, http.MethodGet, "/store", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "disk full")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(string(domain.KeyRequestID))) })

	w := serve(r, http.MethodGet, "/", nil)
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	given := uuid.NewString()
	w = serve(r, http.MethodGet, "/", map[string]string{"X-Request-ID": given})
	assert.Equal(t, given, w.Body.String())

	w = serve(r, http.MethodGet, "/", map[string]string{"X-Request-ID": "<script>"})
	assert.NotEqual(t, "<script>", w.Body.String())
}

func TestRateLimitInMemory(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(string(domain.KeyUserID), c.GetHeader("X-User"))
		c.Next()
	})
	r.Use(middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(nil, 2, time.Minute)))
	r.PUT("/media", func(c *gin.Context) { c.Status(http.StatusOK) })

	alice := map[string]string{"X-User": "alice"}
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPut, "/media", alice).Code)
	w := serve(r, http.MethodPut, "/media", alice)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(r, http.MethodPut, "/media", alice)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPut, "/media", map[string]string{"X-User": "bob"}).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORSMiddleware([]string{"https://app.example.com/"}, true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodOptions, "/", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodGet, "/", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := middleware.NewMetrics(reg, "profile")
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/v1/profiles/username/:username", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	serve(r, http.MethodGet, "/v1/profiles/username/ada", nil)
	serve(r, http.MethodGet, "/v1/profiles/username/grace", nil)
	serve(r, http.MethodGet, "/nowhere", nil)

	expected := `
# HELP profile_http_requests_total Total number of HTTP requests processed
# TYPE profile_http_requests_total counter
profile_http_requests_total{method="GET",route="/v1/profiles/username/:username",status_code="200"} 2
profile_http_requests_total{method="GET",route="unmatched",status_code="404"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "profile_http_requests_total"))

	_, err = middleware.NewMetrics(reg, "profile")
	assert.Error(t, err)
}
