package webhook

import (
	"net/http"

	"github.com/xtaxx12/BGR-SHRIMP/platform/httpkit"
	"github.com/xtaxx12/BGR-SHRIMP/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
)

// Handler handles webhook HTTP requests.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// HandleInbound processes an inbound WhatsApp gateway callback.
// POST /api/v1/webhook/whatsapp
// Authenticated via the X-API-Key header (checked by middleware).
func (h *Handler) HandleInbound(c *gin.Context) {
	var payload InboundPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	result, err := h.service.ProcessInbound(c.Request.Context(), payload)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
