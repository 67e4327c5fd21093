// Package history records every delivered quote so the sales desk can
// look up what a client was offered. It subscribes to quote events and
// never sits on the message path.
package history

import (
	"context"

	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module handles quote history event subscriptions.
type Module struct {
	repo *Repository
	log  *logger.Logger
}

// NewModule creates the quote history module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	return &Module{
		repo: NewRepository(pool),
		log:  log,
	}
}

// Repository exposes the history store for the admin surface.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterHandlers subscribes to the quote lifecycle events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuoteGenerated{}.EventName(), m)
	bus.Subscribe(events.MultiQuoteGenerated{}.EventName(), m)

	m.log.Info("history module registered event handlers")
}

// Handle routes events to their handlers.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteGenerated:
		return m.repo.Append(ctx, entryFromEvent(e))
	case events.MultiQuoteGenerated:
		return m.handleMultiQuote(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleMultiQuote(ctx context.Context, e events.MultiQuoteGenerated) error {
	for _, item := range e.Items {
		if err := m.repo.Append(ctx, entryFromEvent(item)); err != nil {
			return err
		}
	}
	return nil
}

func entryFromEvent(e events.QuoteGenerated) Entry {
	var destination *string
	if e.Destination != "" {
		d := e.Destination
		destination = &d
	}

	id := e.QuoteID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return Entry{
		ID:          id,
		UserID:      e.UserID,
		Channel:     e.Channel,
		RequestText: e.RequestText,
		Product:     e.Product,
		Size:        e.Size,
		GlaseoPct:   e.GlaseoPct,
		Freight:     e.Freight,
		Destination: destination,
		FOBPrice:    e.FOBPrice,
		CFRPrice:    e.CFRPrice,
		DDPPrice:    e.DDPPrice,
		Language:    e.Language,
		CreatedAt:   e.OccurredAt(),
	}
}
