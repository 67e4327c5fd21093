// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/xtaxx12/BGR-SHRIMP/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quoting Domain Events
// =============================================================================

// QuoteGenerated is published when a single-product quote is computed and
// delivered to the client.
type QuoteGenerated struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	UserID      string    `json:"userId"`
	Channel     string    `json:"channel"`
	Product     string    `json:"product"`
	Size        string    `json:"size"`
	GlaseoPct   *int      `json:"glaseoPct,omitempty"`
	Freight     *float64  `json:"freight,omitempty"`
	Destination string    `json:"destination,omitempty"`
	FOBPrice    float64   `json:"fobPrice"`
	CFRPrice    *float64  `json:"cfrPrice,omitempty"`
	DDPPrice    *float64  `json:"ddpPrice,omitempty"`
	Language    string    `json:"language"`
	RequestText string    `json:"requestText"`
}

func (e QuoteGenerated) EventName() string { return "quoting.quote.generated" }

// MultiQuoteGenerated is published when a consolidated multi-product quote
// is delivered. Items carry the successfully priced lines in detection
// order; FailureCount counts the lines that could not be priced.
type MultiQuoteGenerated struct {
	BaseEvent
	BatchID      uuid.UUID        `json:"batchId"`
	UserID       string           `json:"userId"`
	Channel      string           `json:"channel"`
	Items        []QuoteGenerated `json:"items"`
	FailureCount int              `json:"failureCount"`
	Language     string           `json:"language"`
	RequestText  string           `json:"requestText"`
}

func (e MultiQuoteGenerated) EventName() string { return "quoting.quote.multi_generated" }

// QuoteFailed is published when a quote request could not be priced,
// after the user has already received the explanatory reply.
type QuoteFailed struct {
	BaseEvent
	UserID      string `json:"userId"`
	Channel     string `json:"channel"`
	Reason      string `json:"reason"`
	RequestText string `json:"requestText"`
}

func (e QuoteFailed) EventName() string { return "quoting.quote.failed" }

// SessionCleared is published when a user session is reset, either by the
// expiry sweep or by an admin. Language preference and the last quote
// survive the reset, so handlers must not treat this as a forgotten user.
type SessionCleared struct {
	BaseEvent
	UserID string `json:"userId"`
	Cause  string `json:"cause"` // "expired", "admin", "new_conversation"
}

func (e SessionCleared) EventName() string { return "quoting.session.cleared" }

// =============================================================================
// Intake Domain Events
// =============================================================================

// EmailQuoteRequested is published when the IMAP poller feeds an inbox
// message into the quoting core.
type EmailQuoteRequested struct {
	BaseEvent
	MessageUID int    `json:"messageUid"`
	From       string `json:"from"`
	Subject    string `json:"subject"`
}

func (e EmailQuoteRequested) EventName() string { return "intake.email.quote_requested" }
