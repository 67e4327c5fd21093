package admin

import (
	"github.com/xtaxx12/BGR-SHRIMP/internal/catalog"
	apphttp "github.com/xtaxx12/BGR-SHRIMP/internal/http"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/session"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
	"github.com/xtaxx12/BGR-SHRIMP/platform/validator"
)

// Module wires the operator routes into the HTTP application.
type Module struct {
	handler *Handler
}

func NewModule(sessions session.Repository, clearer SessionClearer, hist HistoryLister, lister catalog.Lister, writer CatalogWriter, reloader CatalogReloader, pricing config.PricingConfig, val *validator.Validator, log *logger.Logger) *Module {
	registerValidations(val)
	service := NewService(sessions, clearer, hist, lister, writer, reloader, pricing, log)
	return &Module{handler: NewHandler(service, val)}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "admin"
}

// RegisterRoutes mounts the operator routes on the JWT-protected admin
// group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/sessions/:userID", m.handler.HandleGetSession)
	ctx.Admin.DELETE("/sessions/:userID", m.handler.HandleClearSession)
	ctx.Admin.GET("/history/:userID", m.handler.HandleListHistory)
	ctx.Admin.GET("/catalog/products", m.handler.HandleListProducts)
	ctx.Admin.PUT("/catalog/prices", m.handler.HandleUpsertPrice)
	ctx.Admin.DELETE("/catalog/prices", m.handler.HandleDeletePrice)
	ctx.Admin.GET("/catalog/freights", m.handler.HandleListFreights)
	ctx.Admin.PUT("/catalog/freights", m.handler.HandleUpsertFreight)
	ctx.Admin.POST("/catalog/reload", m.handler.HandleReloadCatalog)
}

// Ensure Module implements the http.Module interface
var _ apphttp.Module = (*Module)(nil)
