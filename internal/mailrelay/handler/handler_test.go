package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quote_portal_backend/internal/mailrelay/sender"
	"quote_portal_backend/internal/mailrelay/service"
	"quote_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSender struct {
	verifyErr error
	fail      string
}

func (s stubSender) Verify(context.Context) error { return s.verifyErr }

func (s stubSender) Send(_ context.Context, msg sender.Message) (string, error) {
	if msg.To == s.fail {
		return "", errors.New("rejected")
	}
	return "<1@relay>", nil
}

func newEngine(s sender.Sender) *gin.Engine {
	engine := gin.New()
	New(service.New(s, []string{"ops@example.com"}, logger.Nop())).RegisterRoutes(engine.Group("/api"), func(c *gin.Context) { c.Next() })
	return engine
}

func send(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSendEmailStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		sender sender.Sender
		body   string
		want   int
	}{
		{"all sent", stubSender{}, `{"to": "a@x.com", "subject": "s", "html": "<p>h</p>"}`, http.StatusOK},
		{"fallback recipients", stubSender{}, `{"subject": "s", "html": "<p>h</p>"}`, http.StatusOK},
		{"partial", stubSender{fail: "b@x.com"}, `{"to": "a@x.com,b@x.com", "subject": "s", "html": "<p>h</p>"}`, http.StatusMultiStatus},
		{"missing subject", stubSender{}, `{"to": "a@x.com", "html": "<p>h</p>"}`, http.StatusBadRequest},
		{"bad json", stubSender{}, `{`, http.StatusBadRequest},
		{"smtp down", stubSender{verifyErr: errors.New("refused")}, `{"to": "a@x.com", "subject": "s", "html": "<p>h</p>"}`, http.StatusInternalServerError},
		{"smtp unconfigured", nil, `{"to": "a@x.com", "subject": "s", "html": "<p>h</p>"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(newEngine(tt.sender), tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want >= 400 && !strings.Contains(w.Body.String(), `"success":false`) {
				t.Errorf("error body = %s", w.Body.String())
			}
		})
	}
}

func TestSendEmailFallbackRecipient(t *testing.T) {
	w := send(newEngine(stubSender{}), `{"to": "", "subject": "s", "html": "<p>h</p>"}`)
	if !strings.Contains(w.Body.String(), `"recipient":"ops@example.com"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestStatus(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(stubSender{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status"`) {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
