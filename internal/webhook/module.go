// Package webhook is the WhatsApp intake surface: it receives gateway
// callbacks, feeds them through the quoting core and sends the replies.
package webhook

import (
	apphttp "github.com/xtaxx12/BGR-SHRIMP/internal/http"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/httpkit"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
	"github.com/xtaxx12/BGR-SHRIMP/platform/validator"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	cfg     config.WebhookConfig
	limiter *httpkit.IPRateLimiter
	log     *logger.Logger
}

// NewModule creates and initializes the webhook module with all its dependencies.
func NewModule(eng MessageHandler, sender Deliverer, media MediaDownloader, stt Transcriber, cfg config.WebhookConfig, val *validator.Validator, log *logger.Logger) *Module {
	service := NewService(eng, sender, media, stt, log)
	handler := NewHandler(service, val)

	return &Module{
		handler: handler,
		cfg:     cfg,
		limiter: httpkit.NewWebhookRateLimiter(log),
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts webhook routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Gateway callback endpoint (API key auth, rate limited, no JWT)
	group := ctx.V1.Group("/webhook")
	group.Use(m.limiter.RateLimit())
	group.Use(httpkit.APIKeyRequired(m.cfg, m.log))
	group.POST("/whatsapp", m.handler.HandleInbound)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
