package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quote_portal_backend/internal/quoting/client"
	"quote_portal_backend/internal/quoting/service"
	"quote_portal_backend/internal/quoting/session"
	"quote_portal_backend/internal/quoting/transform"
	"quote_portal_backend/internal/quoting/workflow"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/logger"
	"quote_portal_backend/platform/retry"
	"quote_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const questionnaire = `{
	"firstName": "Thandi",
	"lastName": "Nkosi",
	"email": "thandi@example.com",
	"mobileNumber": "0821234567",
	"idNumber": "9001014800086",
	"address_addressLine": "1 Main Rd",
	"address_suburb": "Rosebank",
	"address_postalCode": "2196",
	"vehicles": [{"v_make": "Toyota", "v_model": "Corolla", "v_year": 2019, "v_driver_isDriverPolicyholder": true}]
}`

// quoteAPI answers submissions with a pending job that completes on the
// second status check.
func quoteAPI(t *testing.T) *httptest.Server {
	t.Helper()
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			_, _ = io.WriteString(w, `{"quoteId": "Q-1", "status": "processing"}`)
		case strings.HasSuffix(r.URL.Path, "/Q-1/status"):
			polls++
			if polls < 2 {
				_, _ = io.WriteString(w, `{"status": "processing"}`)
				return
			}
			_, _ = io.WriteString(w, `{"status": "completed", "premium": 1045.5, "excess": 6000}`)
		case strings.HasSuffix(r.URL.Path, "/Q-1"):
			_, _ = io.WriteString(w, `{"premium": 1045.5, "excess": 6000, "quoteId": "Q-1"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setup(t *testing.T) (*gin.Engine, *service.Service) {
	t.Helper()
	api := quoteAPI(t)
	cfg := &config.Config{
		QuoteAPIURL:         api.URL,
		QuoteSource:         "test",
		QuoteRequestTimeout: 5 * time.Second,
		PollInterval:        time.Second,
		PollMaxAttempts:     5,
	}
	log := logger.Nop()
	noWait := retry.SleeperFunc(func(ctx context.Context, _ time.Duration) error { return ctx.Err() })

	quoteClient := client.New(cfg, log, client.WithSleeper(noWait))
	store := session.NewMemoryStore(time.Hour)
	pipeline := workflow.NewPipeline(
		transform.New(log),
		quoteClient,
		workflow.NewResolver(quoteClient, cfg, log, workflow.WithSleeper(noWait)),
		store,
		log,
	)
	svc := service.New(pipeline, store, quoteClient, log)

	engine := gin.New()
	New(svc, validator.New()).RegisterRoutes(engine.Group("/api/v1/quotes"), func(c *gin.Context) { c.Next() })
	return engine, svc
}

func do(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSubmitThenPollSession(t *testing.T) {
	engine, svc := setup(t)

	w := do(engine, http.MethodPost, "/api/v1/quotes", questionnaire)
	if w.Code != http.StatusAccepted {
		t.Fatalf("POST status = %d, body = %s", w.Code, w.Body.String())
	}
	var accepted struct {
		SessionID string `json:"sessionId"`
		Status    string `json:"status"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &accepted)
	if accepted.SessionID == "" || accepted.Status != "processing" {
		t.Fatalf("accepted = %+v", accepted)
	}

	svc.Wait()

	w = do(engine, http.MethodGet, "/api/v1/quotes/sessions/"+accepted.SessionID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d, body = %s", w.Code, w.Body.String())
	}
	var view struct {
		Status string `json:"status"`
		Quote  struct {
			Premium     float64 `json:"premium"`
			ReferenceID string  `json:"referenceId"`
		} `json:"quote"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if view.Status != "complete" || view.Quote.Premium != 1045.5 || view.Quote.ReferenceID == "" {
		t.Fatalf("view = %s", w.Body.String())
	}

	w = do(engine, http.MethodPost, "/api/v1/quotes/sessions/"+accepted.SessionID+"/retry", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("retry of a complete session = %d, want 409", w.Code)
	}

	w = do(engine, http.MethodDelete, "/api/v1/quotes/sessions/"+accepted.SessionID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", w.Code)
	}
	w = do(engine, http.MethodGet, "/api/v1/quotes/sessions/"+accepted.SessionID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET after delete = %d, want 404", w.Code)
	}
}

func TestSubmitRejectsInvalidApplicant(t *testing.T) {
	engine, _ := setup(t)

	w := do(engine, http.MethodPost, "/api/v1/quotes", `{"firstName": "T", "email": "nope", "vehicles": []}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Code   string `json:"code"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != "VALIDATION_ERROR" || len(body.Fields) < 3 {
		t.Fatalf("body = %s", w.Body.String())
	}

	w = do(engine, http.MethodPost, "/api/v1/quotes", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", w.Code)
	}
}

func TestGetQuoteAndUnknownSession(t *testing.T) {
	engine, _ := setup(t)

	w := do(engine, http.MethodGet, "/api/v1/quotes/Q-1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"premium":1045.5`) {
		t.Fatalf("GET quote = %d %s", w.Code, w.Body.String())
	}

	w = do(engine, http.MethodGet, "/api/v1/quotes/Q-404", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET missing quote = %d, want 404", w.Code)
	}

	w = do(engine, http.MethodGet, "/api/v1/quotes/sessions/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET unknown session = %d, want 404", w.Code)
	}

	w = do(engine, http.MethodGet, "/api/v1/quotes/sessions/nope/attempts", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("attempts without a log = %d, want 404", w.Code)
	}
}
