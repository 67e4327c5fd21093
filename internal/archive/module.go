// Package archive stores every delivered quote as a plain-text proforma
// document in object storage and sends the client a presigned download
// link right after the quotation message. It subscribes to quote events,
// so an outage here never blocks the conversation.
package archive

import (
	"context"
	"fmt"

	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
)

// Uploader persists proforma documents and mints download links.
type Uploader interface {
	Put(ctx context.Context, key, document string) error
	DownloadURL(ctx context.Context, key string) (string, error)
}

// MessageSender delivers the download link back to the client.
type MessageSender interface {
	SendMessage(ctx context.Context, recipient, message string) error
}

// Module archives quotes as proforma documents on quote events.
type Module struct {
	store Uploader
	log   *logger.Logger
	wa    MessageSender
}

// New creates the archive module.
func New(store Uploader, log *logger.Logger) *Module {
	return &Module{store: store, log: log}
}

// SetWhatsAppSender wires the outbound WhatsApp client used to deliver
// download links. Without it documents are archived but no link is sent.
func (m *Module) SetWhatsAppSender(wa MessageSender) {
	m.wa = wa
}

// RegisterHandlers subscribes the module to quote lifecycle events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuoteGenerated{}.EventName(), m)
	bus.Subscribe(events.MultiQuoteGenerated{}.EventName(), m)
	m.log.Info("archive module registered event handlers")
}

// Handle dispatches events to their handlers.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteGenerated:
		return m.handleQuoteGenerated(ctx, e)
	case events.MultiQuoteGenerated:
		return m.handleMultiQuoteGenerated(ctx, e)
	}
	return nil
}

func (m *Module) handleQuoteGenerated(ctx context.Context, e events.QuoteGenerated) error {
	key := fmt.Sprintf("%s/%s.txt", e.UserID, e.QuoteID)
	return m.archive(ctx, key, renderProforma(e), e.UserID, e.Channel, e.Language)
}

func (m *Module) handleMultiQuoteGenerated(ctx context.Context, e events.MultiQuoteGenerated) error {
	key := fmt.Sprintf("%s/%s.txt", e.UserID, e.BatchID)
	return m.archive(ctx, key, renderMultiProforma(e), e.UserID, e.Channel, e.Language)
}

func (m *Module) archive(ctx context.Context, key, document, userID, channel, language string) error {
	if err := m.store.Put(ctx, key, document); err != nil {
		return fmt.Errorf("failed to archive proforma: %w", err)
	}

	downloadURL, err := m.store.DownloadURL(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to presign proforma link: %w", err)
	}

	m.log.Info("proforma archived", "key", key, "user_id", userID)

	// Links only go out on channels that support push delivery. Email
	// clients get the quote inline and need no separate document link.
	if channel != "whatsapp" || m.wa == nil {
		return nil
	}

	message := fmt.Sprintf("📄 Proforma disponible: %s", downloadURL)
	if language == "en" {
		message = fmt.Sprintf("📄 Proforma available: %s", downloadURL)
	}
	if err := m.wa.SendMessage(ctx, userID, message); err != nil {
		// The document is safely archived; a lost link is recoverable.
		m.log.DeliveryFailed(userID, channel, err)
	}
	return nil
}
