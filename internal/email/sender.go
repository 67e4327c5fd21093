// Package email delivers transactional mail for the quoting desk: sales
// desk summaries of delivered quotations, alerts for requests that could
// not be priced, and plain-text replies on the email intake channel.
package email

import (
	"context"

	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
)

// QuoteLine is one priced combination inside a summary email.
type QuoteLine struct {
	Product     string
	Size        string
	GlaseoPct   *int
	Freight     *float64
	Destination string
	FOBPrice    float64
	CFRPrice    *float64
	DDPPrice    *float64
}

// QuoteSummary describes a delivered quotation for the sales desk.
type QuoteSummary struct {
	UserID       string
	Channel      string
	Language     string
	RequestText  string
	Lines        []QuoteLine
	FailureCount int
}

// QuoteFailure describes a request the engine could not price.
type QuoteFailure struct {
	UserID      string
	Channel     string
	Reason      string
	RequestText string
}

// Sender delivers quoting desk mail.
type Sender interface {
	SendQuoteSummaryEmail(ctx context.Context, toEmail string, summary QuoteSummary) error
	SendQuoteFailureEmail(ctx context.Context, toEmail string, failure QuoteFailure) error
	// SendTextEmail sends a plain-text message, used for replies on the
	// email intake channel.
	SendTextEmail(ctx context.Context, toEmail, subject, body string) error
}

// NoopSender silently accepts every message. Used when mail is disabled.
type NoopSender struct{}

func (NoopSender) SendQuoteSummaryEmail(context.Context, string, QuoteSummary) error { return nil }
func (NoopSender) SendQuoteFailureEmail(context.Context, string, QuoteFailure) error { return nil }
func (NoopSender) SendTextEmail(context.Context, string, string, string) error       { return nil }

// NewSender selects the sender implementation from configuration.
func NewSender(cfg config.MailConfig) (Sender, error) {
	if !cfg.IsMailEnabled() {
		return NoopSender{}, nil
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetMailFromAddress(),
		cfg.GetMailFromName(),
	), nil
}
