package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"

	"github.com/google/uuid"
)

type testSessionConfig struct {
	delay time.Duration
}

func (c testSessionConfig) GetSessionTTL() time.Duration    { return 24 * time.Hour }
func (c testSessionConfig) GetDedupeTTL() time.Duration     { return 5 * time.Minute }
func (c testSessionConfig) GetFollowUpDelay() time.Duration { return c.delay }

type fakeScheduler struct {
	calls   int
	payload QuoteFollowUpPayload
	runAt   time.Time
	err     error
}

func (f *fakeScheduler) ScheduleQuoteFollowUp(_ context.Context, payload QuoteFollowUpPayload, runAt time.Time) error {
	f.calls++
	f.payload = payload
	f.runAt = runAt
	return f.err
}

func quoteEvent(channel string) events.QuoteGenerated {
	return events.QuoteGenerated{
		BaseEvent: events.NewBaseEvent(),
		QuoteID:   uuid.New(),
		UserID:    "593991234567",
		Channel:   channel,
		Product:   "HLSO",
		Size:      "16/20",
		FOBPrice:  9.22,
		Language:  "es",
	}
}

func TestSubscriberSchedulesFollowUp(t *testing.T) {
	sched := &fakeScheduler{}
	sub := NewSubscriber(sched, testSessionConfig{delay: 24 * time.Hour}, logger.New("development"))

	event := quoteEvent("whatsapp")
	if err := sub.Handle(context.Background(), event); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if sched.calls != 1 {
		t.Fatalf("expected 1 scheduled follow-up, got %d", sched.calls)
	}
	if sched.payload.UserID != "593991234567" {
		t.Errorf("expected user in payload, got %q", sched.payload.UserID)
	}
	if sched.payload.QuoteID != event.QuoteID.String() {
		t.Errorf("expected quote id %s, got %s", event.QuoteID, sched.payload.QuoteID)
	}
	if sched.payload.Language != "es" {
		t.Errorf("expected language es, got %q", sched.payload.Language)
	}
	if want := event.OccurredAt().Add(24 * time.Hour); !sched.runAt.Equal(want) {
		t.Errorf("expected run at %v, got %v", want, sched.runAt)
	}
}

func TestSubscriberMultiQuoteUsesBatchID(t *testing.T) {
	sched := &fakeScheduler{}
	sub := NewSubscriber(sched, testSessionConfig{delay: time.Hour}, logger.New("development"))

	event := events.MultiQuoteGenerated{
		BaseEvent: events.NewBaseEvent(),
		BatchID:   uuid.New(),
		UserID:    "593991234567",
		Channel:   "whatsapp",
		Items:     []events.QuoteGenerated{quoteEvent("whatsapp")},
		Language:  "en",
	}
	if err := sub.Handle(context.Background(), event); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if sched.calls != 1 {
		t.Fatalf("expected 1 scheduled follow-up, got %d", sched.calls)
	}
	if sched.payload.QuoteID != event.BatchID.String() {
		t.Errorf("expected batch id %s, got %s", event.BatchID, sched.payload.QuoteID)
	}
}

func TestSubscriberSkipsNonWhatsAppChannels(t *testing.T) {
	sched := &fakeScheduler{}
	sub := NewSubscriber(sched, testSessionConfig{delay: time.Hour}, logger.New("development"))

	if err := sub.Handle(context.Background(), quoteEvent("email")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if sched.calls != 0 {
		t.Errorf("expected no follow-up for email channel, got %d", sched.calls)
	}
}

func TestSubscriberDisabledWithoutDelay(t *testing.T) {
	sched := &fakeScheduler{}
	sub := NewSubscriber(sched, testSessionConfig{}, logger.New("development"))

	if err := sub.Handle(context.Background(), quoteEvent("whatsapp")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if sched.calls != 0 {
		t.Errorf("expected no follow-up with zero delay, got %d", sched.calls)
	}
}

func TestSubscriberWrapsSchedulerError(t *testing.T) {
	sched := &fakeScheduler{err: context.DeadlineExceeded}
	sub := NewSubscriber(sched, testSessionConfig{delay: time.Hour}, logger.New("development"))

	err := sub.Handle(context.Background(), quoteEvent("whatsapp"))
	if err == nil {
		t.Fatal("expected scheduling error to propagate")
	}
	if !strings.Contains(err.Error(), "failed to schedule follow-up") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
