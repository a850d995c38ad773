package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"quote_portal_backend/internal/quoting/domain"
	"quote_portal_backend/internal/quoting/presentation"
	"quote_portal_backend/internal/quoting/repository"
	"quote_portal_backend/internal/quoting/service"
	"quote_portal_backend/internal/quoting/transport"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/httpkit"
	"quote_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest = "invalid request"
	// SessionHeader lets a client reuse its quote session across submissions.
	SessionHeader = "X-Session-ID"
	maxBodyBytes  = 1 << 20
)

// Handler handles HTTP requests for quotes
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new quotes handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the quote routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, submitLimit gin.HandlerFunc) {
	rg.POST("", submitLimit, h.Submit)
	rg.GET("/sessions/:sessionId", h.GetSession)
	rg.POST("/sessions/:sessionId/retry", submitLimit, h.Retry)
	rg.DELETE("/sessions/:sessionId", h.Cancel)
	rg.GET("/sessions/:sessionId/attempts", h.ListAttempts)
	rg.GET("/:quoteId", h.GetQuote)
}

func (h *Handler) Submit(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var header transport.QuoteRequestHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if httpkit.HandleError(c, h.val.Validate(header)) {
		return
	}

	q, err := domain.ParseQuestionnaire(raw)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	sessionID, err := h.svc.Submit(c.Request.Context(), strings.TrimSpace(c.GetHeader(SessionHeader)), q)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusAccepted, transport.SubmitQuoteResponse{SessionID: sessionID, Status: presentation.StatusProcessing})
}

func (h *Handler) GetSession(c *gin.Context) {
	view, err := h.svc.Session(c.Request.Context(), c.Param("sessionId"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, view)
}

func (h *Handler) Retry(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if httpkit.HandleError(c, h.svc.Retry(c.Request.Context(), sessionID)) {
		return
	}

	httpkit.JSON(c, http.StatusAccepted, transport.SubmitQuoteResponse{SessionID: sessionID, Status: presentation.StatusProcessing})
}

func (h *Handler) Cancel(c *gin.Context) {
	if httpkit.HandleError(c, h.svc.Cancel(c.Request.Context(), c.Param("sessionId"))) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListAttempts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("limit must be a number"))
		return
	}

	attempts, err := h.svc.Attempts(c.Request.Context(), c.Param("sessionId"), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.AttemptListResponse{Items: make([]transport.AttemptResponse, 0, len(attempts))}
	for _, a := range attempts {
		resp.Items = append(resp.Items, toAttemptResponse(a))
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetQuote(c *gin.Context) {
	quote, err := h.svc.GetQuote(c.Request.Context(), c.Param("quoteId"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, quote)
}

func toAttemptResponse(a repository.Attempt) transport.AttemptResponse {
	return transport.AttemptResponse{
		ReferenceID:  a.ExternalReferenceID,
		QuoteID:      a.QuoteID,
		Status:       a.Status,
		Premium:      a.Premium,
		Excess:       a.Excess,
		ErrorCode:    a.ErrorKind,
		ErrorMessage: a.ErrorMessage,
		CreatedAt:    a.CreatedAt,
		ResolvedAt:   a.ResolvedAt,
	}
}
