package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender with the given credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, body string, contentType gomail.ContentType) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(contentType, body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// SendQuoteSummaryEmail notifies the sales desk about a delivered quotation.
func (s *SMTPSender) SendQuoteSummaryEmail(ctx context.Context, toEmail string, summary QuoteSummary) error {
	content, err := renderEmailTemplate("quote_summary.html", newQuoteSummaryData(summary))
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectQuoteSummaryFmt, summary.UserID), content, gomail.TypeTextHTML)
}

// SendQuoteFailureEmail alerts the sales desk about an unpriced request.
func (s *SMTPSender) SendQuoteFailureEmail(ctx context.Context, toEmail string, failure QuoteFailure) error {
	content, err := renderEmailTemplate("quote_failure.html", newQuoteFailureData(failure))
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectQuoteFailureFmt, failure.UserID), content, gomail.TypeTextHTML)
}

// SendTextEmail sends a plain-text message.
func (s *SMTPSender) SendTextEmail(ctx context.Context, toEmail, subject, body string) error {
	return s.send(ctx, toEmail, subject, body, gomail.TypeTextPlain)
}
