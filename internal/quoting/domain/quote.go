package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuoteResult is one priced product+size line. It is immutable once
// produced; a modification request yields a new result.
type QuoteResult struct {
	ID             uuid.UUID `json:"id"`
	Product        Product   `json:"product"`
	Size           Size      `json:"size"`
	BasePrice      float64   `json:"basePrice"`
	FixedCost      float64   `json:"fixedCost"`
	FOBPrice       float64   `json:"fobPrice"`
	CFRPrice       float64   `json:"cfrPrice"`
	DDPPrice       *float64  `json:"ddpPrice,omitempty"`
	GlaseoPct      int       `json:"glaseoPct"`
	GlaseoFactor   float64   `json:"glaseoFactor"`
	FreightApplied *float64  `json:"freightApplied,omitempty"`
	Destination    string    `json:"destination,omitempty"`
	Quantity       *Quantity `json:"quantity,omitempty"`
	UsesPounds     bool      `json:"usesPounds,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// QuoteFailure records a line that could not be priced, with enough
// context to tell the client what would have worked.
type QuoteFailure struct {
	Product    Product `json:"product"`
	Size       string  `json:"size"`
	Reason     string  `json:"reason"`
	ValidSizes []Size  `json:"validSizes,omitempty"`
}

// ConsolidatedQuote aggregates the outcome of a multi-product request.
// Successes keep their original detection order.
type ConsolidatedQuote struct {
	ID          uuid.UUID      `json:"id"`
	Successes   []QuoteResult  `json:"successes"`
	Failures    []QuoteFailure `json:"failures,omitempty"`
	GlaseoPct   *int           `json:"glaseoPct,omitempty"`
	Freight     *float64       `json:"freight,omitempty"`
	Destination string         `json:"destination,omitempty"`
	Language    Language       `json:"language"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Total is the number of lines that were attempted.
func (c *ConsolidatedQuote) Total() int { return len(c.Successes) + len(c.Failures) }

// Succeeded is the number of lines that priced cleanly.
func (c *ConsolidatedQuote) Succeeded() int { return len(c.Successes) }

// Failed is the number of lines that could not be priced.
func (c *ConsolidatedQuote) Failed() int { return len(c.Failures) }
