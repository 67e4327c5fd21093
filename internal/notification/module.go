// Package notification forwards quote lifecycle events to the sales desk.
// It subscribes to the event bus and inverts the dependency: the quoting
// engine never knows about mail providers or ops phone numbers.
package notification

import (
	"context"
	"fmt"

	"github.com/xtaxx12/BGR-SHRIMP/internal/email"
	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
)

// WhatsAppSender sends WhatsApp messages to the ops number.
type WhatsAppSender interface {
	SendMessage(ctx context.Context, recipient string, message string) error
}

// Module handles quote notification event subscriptions.
type Module struct {
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
	wa     WhatsAppSender
}

// New creates the notification module.
func New(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

// SetWhatsAppSender wires the optional ops WhatsApp alert channel.
func (m *Module) SetWhatsAppSender(wa WhatsAppSender) {
	m.wa = wa
}

// RegisterHandlers subscribes to the quote lifecycle events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuoteGenerated{}.EventName(), m)
	bus.Subscribe(events.MultiQuoteGenerated{}.EventName(), m)
	bus.Subscribe(events.QuoteFailed{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to their handlers.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteGenerated:
		return m.handleQuoteGenerated(ctx, e)
	case events.MultiQuoteGenerated:
		return m.handleMultiQuoteGenerated(ctx, e)
	case events.QuoteFailed:
		return m.handleQuoteFailed(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleQuoteGenerated(ctx context.Context, e events.QuoteGenerated) error {
	desk := m.cfg.GetSalesDeskAddress()
	if desk == "" {
		return nil
	}

	return m.sender.SendQuoteSummaryEmail(ctx, desk, email.QuoteSummary{
		UserID:      e.UserID,
		Channel:     e.Channel,
		Language:    e.Language,
		RequestText: e.RequestText,
		Lines:       []email.QuoteLine{quoteLineFromEvent(e)},
	})
}

func (m *Module) handleMultiQuoteGenerated(ctx context.Context, e events.MultiQuoteGenerated) error {
	desk := m.cfg.GetSalesDeskAddress()
	if desk == "" {
		return nil
	}

	lines := make([]email.QuoteLine, 0, len(e.Items))
	for _, item := range e.Items {
		lines = append(lines, quoteLineFromEvent(item))
	}

	return m.sender.SendQuoteSummaryEmail(ctx, desk, email.QuoteSummary{
		UserID:       e.UserID,
		Channel:      e.Channel,
		Language:     e.Language,
		RequestText:  e.RequestText,
		Lines:        lines,
		FailureCount: e.FailureCount,
	})
}

// handleQuoteFailed alerts the desk so a human can pick up the thread.
// Failures where the user already got a precise correction (wrong size,
// wrong glaze) stay machine-handled; only dead ends are escalated.
func (m *Module) handleQuoteFailed(ctx context.Context, e events.QuoteFailed) error {
	if !escalates(e.Reason) {
		return nil
	}

	if ops := m.cfg.GetOpsWhatsAppNumber(); ops != "" && m.wa != nil {
		alert := fmt.Sprintf("⚠️ Consulta sin cotizar de %s (%s): %s", e.UserID, e.Reason, e.RequestText)
		if err := m.wa.SendMessage(ctx, ops, alert); err != nil {
			m.log.DeliveryFailed(ops, "whatsapp", err)
		}
	}

	desk := m.cfg.GetSalesDeskAddress()
	if desk == "" {
		return nil
	}

	return m.sender.SendQuoteFailureEmail(ctx, desk, email.QuoteFailure{
		UserID:      e.UserID,
		Channel:     e.Channel,
		Reason:      e.Reason,
		RequestText: e.RequestText,
	})
}

// escalates reports whether a failure reason needs human follow-up.
func escalates(reason string) bool {
	switch reason {
	case "price_not_set", "catalog_unavailable", "no_lines_priced":
		return true
	default:
		return false
	}
}

func quoteLineFromEvent(e events.QuoteGenerated) email.QuoteLine {
	return email.QuoteLine{
		Product:     e.Product,
		Size:        e.Size,
		GlaseoPct:   e.GlaseoPct,
		Freight:     e.Freight,
		Destination: e.Destination,
		FOBPrice:    e.FOBPrice,
		CFRPrice:    e.CFRPrice,
		DDPPrice:    e.DDPPrice,
	}
}
