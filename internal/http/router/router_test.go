package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "quote_portal_backend/internal/http"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(rc *apphttp.RouterContext) {
	rc.V1.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
}

func newApp(health ...apphttp.HealthChecker) *apphttp.App {
	return &apphttp.App{
		Config:  &config.Config{CORSOrigins: []string{"http://localhost:5173"}},
		Logger:  logger.Nop(),
		Health:  health,
		Modules: []apphttp.Module{echoModule{}},
	}
}

func TestHealth(t *testing.T) {
	cases := map[string]struct {
		health []apphttp.HealthChecker
		want   int
	}{
		"no dependencies": {nil, http.StatusOK},
		"healthy":         {[]apphttp.HealthChecker{pinger{}}, http.StatusOK},
		"unhealthy":       {[]apphttp.HealthChecker{pinger{}, pinger{err: errors.New("down")}}, http.StatusServiceUnavailable},
	}

	for name, tc := range cases {
		engine := New(newApp(tc.health...))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		if w.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", name, w.Code, tc.want)
		}
	}
}

func TestModulesAndMiddlewareAreMounted(t *testing.T) {
	engine := New(newApp())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/echo", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("CORS origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}
