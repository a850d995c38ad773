package handler

import (
	"net/http"

	"quote_portal_backend/internal/leadtransfer/service"
	"quote_portal_backend/internal/leadtransfer/transport"
	"quote_portal_backend/platform/httpkit"
	"quote_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for lead transfers
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new lead transfer handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the lead transfer routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.POST("/transfer", limit, h.Transfer)
}

func (h *Handler) Transfer(c *gin.Context) {
	var req transport.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if httpkit.HandleError(c, h.val.Validate(req)) {
		return
	}

	resp, err := h.svc.Transfer(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
