package handler

import (
	"net/http"

	"quote_portal_backend/internal/mailrelay/service"
	"quote_portal_backend/internal/mailrelay/transport"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const statusMessage = "Email relay running"

// Handler serves the mail relay endpoints.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.POST("/send-email", limit, h.SendEmail)
	rg.GET("/status", h.Status)
}

// SendEmail answers 200 when every recipient was accepted and 207 otherwise.
func (h *Handler) SendEmail(c *gin.Context) {
	var req transport.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.Send(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if ae, ok := apperr.As(err); ok {
			status = ae.HTTPStatus()
			fail(c, status, ae.Message)
			return
		}
		fail(c, status, err.Error())
		return
	}

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusMultiStatus
	}
	httpkit.JSON(c, status, resp)
}

func (h *Handler) Status(c *gin.Context) {
	httpkit.OK(c, transport.StatusResponse{Status: statusMessage})
}

func fail(c *gin.Context, status int, message string) {
	httpkit.JSON(c, status, transport.FailureResponse{Success: false, Error: message})
}
