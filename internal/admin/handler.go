package admin

import (
	"net/http"
	"strconv"

	"github.com/xtaxx12/BGR-SHRIMP/platform/httpkit"
	"github.com/xtaxx12/BGR-SHRIMP/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidRequest = "invalid request"
	errValidation     = "validation error"
)

type Handler struct {
	service *Service
	val     *validator.Validator
}

func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// HandleGetSession handles GET /api/v1/admin/sessions/:userID.
func (h *Handler) HandleGetSession(c *gin.Context) {
	sess, err := h.service.GetSession(c.Request.Context(), c.Param("userID"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, sess)
}

// HandleClearSession handles DELETE /api/v1/admin/sessions/:userID.
func (h *Handler) HandleClearSession(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if httpkit.HandleError(c, h.service.ClearSession(c.Request.Context(), c.Param("userID"), identity.UserID())) {
		return
	}
	httpkit.OK(c, gin.H{"status": "cleared"})
}

// HandleListHistory handles GET /api/v1/admin/history/:userID.
// The optional limit query parameter caps the page size.
func (h *Handler) HandleListHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err := h.val.Var(limit, "gte=1,lte=500"); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, "limit must be between 1 and 500")
		return
	}

	entries, err := h.service.ListHistory(c.Request.Context(), c.Param("userID"), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"entries": entries, "count": len(entries)})
}

// HandleListProducts handles GET /api/v1/admin/catalog/products.
func (h *Handler) HandleListProducts(c *gin.Context) {
	records, err := h.service.ListProducts(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"products": records, "count": len(records)})
}

// HandleUpsertPrice handles PUT /api/v1/admin/catalog/prices.
func (h *Handler) HandleUpsertPrice(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req PriceUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	record, err := h.service.UpsertPrice(c.Request.Context(), req, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, record)
}

// HandleDeletePrice handles DELETE /api/v1/admin/catalog/prices.
// The row is addressed by product and size query parameters.
func (h *Handler) HandleDeletePrice(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req PriceDeleteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	if httpkit.HandleError(c, h.service.DeletePrice(c.Request.Context(), req, identity.UserID())) {
		return
	}
	httpkit.OK(c, gin.H{"status": "deleted"})
}

// HandleListFreights handles GET /api/v1/admin/catalog/freights.
func (h *Handler) HandleListFreights(c *gin.Context) {
	rates, err := h.service.ListFreights(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"freights": rates, "count": len(rates)})
}

// HandleUpsertFreight handles PUT /api/v1/admin/catalog/freights.
func (h *Handler) HandleUpsertFreight(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req FreightUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	rate, err := h.service.UpsertFreight(c.Request.Context(), req, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, rate)
}

// HandleReloadCatalog handles POST /api/v1/admin/catalog/reload.
func (h *Handler) HandleReloadCatalog(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if httpkit.HandleError(c, h.service.ReloadCatalog(c.Request.Context(), identity.UserID())) {
		return
	}
	httpkit.OK(c, gin.H{"status": "reloaded"})
}
