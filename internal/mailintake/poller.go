// Package mailintake feeds quote requests from an IMAP inbox into the
// quoting core and replies by email. Each poll cycle opens a fresh
// connection, works through the unseen messages and disconnects, so a
// dropped mail server never wedges the worker.
package mailintake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/engine"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
	"github.com/xtaxx12/BGR-SHRIMP/platform/sanitize"

	imap "github.com/BrianLeishman/go-imap"
)

const channelEmail = "email"

// MessageHandler is the quoting core surface the poller drives.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg engine.InboundMessage) (engine.Response, error)
}

// Replier delivers the quotation back to the requester's address.
type Replier interface {
	SendTextEmail(ctx context.Context, toEmail, subject, body string) error
}

// Mailbox is the slice of the IMAP client the poller uses.
type Mailbox interface {
	SelectFolder(folder string) error
	GetUIDs(search string) ([]int, error)
	GetEmails(uids ...int) (map[int]*imap.Email, error)
	MarkSeen(uid int) error
	Close() error
}

// DialFunc opens a mailbox connection for one poll cycle.
type DialFunc func() (Mailbox, error)

// Poller drains unseen inbox messages on a fixed interval. A nil Poller
// is valid and does nothing, covering deployments without IMAP.
type Poller struct {
	dial     DialFunc
	folder   string
	interval time.Duration
	engine   MessageHandler
	replier  Replier
	bus      events.Bus
	log      *logger.Logger
}

func NewPoller(cfg config.IntakeConfig, eng MessageHandler, replier Replier, bus events.Bus, log *logger.Logger) *Poller {
	if !cfg.IsIntakeEnabled() {
		return nil
	}

	interval := cfg.GetIntakePollInterval()
	if interval <= 0 {
		interval = time.Minute
	}

	folder := cfg.GetIntakeFolder()
	if folder == "" {
		folder = "INBOX"
	}

	return &Poller{
		dial: func() (Mailbox, error) {
			return imap.New(cfg.GetIMAPUsername(), cfg.GetIMAPPassword(), cfg.GetIMAPHost(), cfg.GetIMAPPort())
		},
		folder:   folder,
		interval: interval,
		engine:   eng,
		replier:  replier,
		bus:      bus,
		log:      log,
	}
}

func (p *Poller) Run(ctx context.Context) {
	if p == nil || p.dial == nil {
		return
	}

	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	box, err := p.dial()
	if err != nil {
		p.log.Warn("mail intake connect failed", "error", err)
		return
	}
	defer box.Close()

	if err := box.SelectFolder(p.folder); err != nil {
		p.log.Warn("mail intake folder select failed", "folder", p.folder, "error", err)
		return
	}

	uids, err := box.GetUIDs("UNSEEN")
	if err != nil {
		p.log.Warn("mail intake search failed", "error", err)
		return
	}
	if len(uids) == 0 {
		return
	}

	emails, err := box.GetEmails(uids...)
	if err != nil {
		p.log.Warn("mail intake fetch failed", "error", err)
		return
	}

	for _, uid := range uids {
		msg := emails[uid]
		if msg == nil {
			continue
		}

		// Failed messages stay unseen so the next cycle retries them;
		// handler errors here are infrastructure, not bad input.
		if err := p.process(ctx, msg); err != nil {
			p.log.Warn("mail intake message failed", "uid", uid, "error", err)
			continue
		}

		if err := box.MarkSeen(uid); err != nil {
			p.log.Warn("mail intake mark seen failed", "uid", uid, "error", err)
		}
	}
}

func (p *Poller) process(ctx context.Context, msg *imap.Email) error {
	sender := senderAddress(msg.From)
	if sender == "" {
		return fmt.Errorf("message %d has no sender address", msg.UID)
	}

	text := requestText(msg)
	messageID := strings.TrimSpace(msg.MessageID)
	if messageID == "" {
		messageID = fmt.Sprintf("imap-%d", msg.UID)
	}

	reply, err := p.engine.HandleMessage(ctx, engine.InboundMessage{
		UserID:    sender,
		Text:      text,
		MessageID: messageID,
		Channel:   channelEmail,
	})
	if err != nil {
		return fmt.Errorf("failed to handle email request: %w", err)
	}

	if reply.Text != "" {
		if err := p.replier.SendTextEmail(ctx, sender, replySubject(msg.Subject), reply.Text); err != nil {
			return fmt.Errorf("failed to reply to %s: %w", sender, err)
		}
	}

	if p.bus != nil {
		p.bus.Publish(ctx, events.EmailQuoteRequested{
			BaseEvent:  events.NewBaseEvent(),
			MessageUID: msg.UID,
			From:       sender,
			Subject:    msg.Subject,
		})
	}

	p.log.InboundMessage(sender, channelEmail, len(text))
	return nil
}

func senderAddress(from imap.EmailAddresses) string {
	for addr := range from {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr != "" {
			return addr
		}
	}
	return ""
}

// requestText extracts the quote request: the plain text body first,
// then the stripped HTML body, then the subject line for body-less mail.
func requestText(msg *imap.Email) string {
	if body := cleanBody(msg.Text); body != "" {
		return body
	}
	if body := cleanBody(sanitize.StripHTML(msg.HTML)); body != "" {
		return body
	}
	return strings.TrimSpace(msg.Subject)
}

// cleanBody cuts the message at the first quoted-reply or signature
// marker so old threads do not leak into the extractor.
func cleanBody(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") || trimmed == "--" {
			break
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func replySubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "Cotización BGR Export"
	}
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}
