package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
)

// Subscriber schedules a follow-up nudge every time a quotation is
// delivered over WhatsApp.
type Subscriber struct {
	scheduler FollowUpScheduler
	delay     time.Duration
	log       *logger.Logger
}

// NewSubscriber creates the follow-up subscriber. A zero follow-up
// delay disables scheduling entirely.
func NewSubscriber(scheduler FollowUpScheduler, cfg config.SessionConfig, log *logger.Logger) *Subscriber {
	return &Subscriber{
		scheduler: scheduler,
		delay:     cfg.GetFollowUpDelay(),
		log:       log,
	}
}

// RegisterHandlers subscribes to the quote delivery events.
func (s *Subscriber) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuoteGenerated{}.EventName(), s)
	bus.Subscribe(events.MultiQuoteGenerated{}.EventName(), s)

	s.log.Info("scheduler module registered event handlers")
}

// Handle routes events to their handlers.
func (s *Subscriber) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteGenerated:
		return s.schedule(ctx, e.UserID, e.QuoteID.String(), e.Channel, e.Language, e.OccurredAt())
	case events.MultiQuoteGenerated:
		return s.schedule(ctx, e.UserID, e.BatchID.String(), e.Channel, e.Language, e.OccurredAt())
	default:
		return nil
	}
}

func (s *Subscriber) schedule(ctx context.Context, userID, quoteID, channel, language string, quotedAt time.Time) error {
	if s.scheduler == nil || s.delay <= 0 {
		return nil
	}

	// Nudges are push messages; only the WhatsApp channel has a
	// delivery surface for them.
	if channel != "whatsapp" {
		return nil
	}

	runAt := quotedAt.Add(s.delay)
	err := s.scheduler.ScheduleQuoteFollowUp(ctx, QuoteFollowUpPayload{
		UserID:   userID,
		QuoteID:  quoteID,
		Channel:  channel,
		Language: language,
		QuotedAt: quotedAt,
	}, runAt)
	if err != nil {
		return fmt.Errorf("failed to schedule follow-up: %w", err)
	}

	s.log.Debug("follow-up scheduled", "user_id", userID, "run_at", runAt)
	return nil
}
