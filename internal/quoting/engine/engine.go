// Package engine is the conversation core. It receives one inbound
// message at a time, consults the session to decide what the message
// means in context, and produces the outgoing reply plus the session
// mutations and domain events that follow from it.
//
// Message handling is serialized per user through a keyed lock, so a
// client sending "HLSO 16/20" and "20" back to back always sees the
// glaseo question answered in order. Independent users never share a
// lock.
package engine

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/catalog"
	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/extractor"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/session"
	"github.com/xtaxx12/BGR-SHRIMP/internal/render"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
)

// InboundMessage is one client message as the transport delivered it.
// MessageID, when present, drives redelivery suppression; Channel names
// the transport for logs and events ("whatsapp", "email", "api").
type InboundMessage struct {
	UserID    string
	Text      string
	MessageID string
	Channel   string
}

// Response is what the transport should send back. An empty Text means
// the message was a suppressed redelivery and nothing should be sent.
type Response struct {
	Text         string
	StateChanged bool
}

// Deps are the collaborators the engine needs. Catalog must be the
// already-chained price source; Bus receives the quote lifecycle events.
type Deps struct {
	Sessions  session.Repository
	Dedupe    session.Deduper
	Extractor *extractor.Extractor
	Catalog   catalog.Source
	Bus       events.Bus
	Pricing   config.PricingConfig
	Session   config.SessionConfig
	Log       *logger.Logger
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Engine drives the quoting conversation.
type Engine struct {
	sessions session.Repository
	dedupe   session.Deduper
	extract  *extractor.Extractor
	answers  *extractor.Rules
	catalog  catalog.Source
	lister   catalog.Lister
	render   *render.Renderer
	bus      events.Bus
	pricing  config.PricingConfig
	ttl      time.Duration
	locks    *session.Locks
	log      *logger.Logger
	now      func() time.Time
}

// New wires the conversation engine.
func New(d Deps) *Engine {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	lister, _ := d.Catalog.(catalog.Lister)

	return &Engine{
		sessions: d.Sessions,
		dedupe:   d.Dedupe,
		extract:  d.Extractor,
		answers:  extractor.NewRules(),
		catalog:  d.Catalog,
		lister:   lister,
		render:   render.New(),
		bus:      d.Bus,
		pricing:  d.Pricing,
		ttl:      d.Session.GetSessionTTL(),
		locks:    session.NewLocks(),
		log:      d.Log,
		now:      now,
	}
}

// turn bundles the per-message context the handlers pass around.
// request is set when the triggering message is a short answer and the
// quote actually started turns earlier; events and history then carry
// the original request instead of a bare "0.25".
type turn struct {
	s       *domain.Session
	msg     InboundMessage
	now     time.Time
	request string
}

func (t *turn) requestText() string {
	if t.request != "" {
		return t.request
	}
	return t.msg.Text
}

// language resolves the reply language for this turn: the stored
// preference when one exists, otherwise detection on the message text.
func (t *turn) language() domain.Language {
	if t.s.Language.Valid() {
		return t.s.Language
	}
	return domain.DetectLanguage(t.msg.Text)
}

func (t *turn) hints() extractor.Hints {
	return extractor.Hints{UserID: t.s.UserID, Language: t.s.Language}
}

// HandleMessage processes one inbound message end to end: dedupe, load
// session, interpret in state, mutate, persist, reply. The per-user
// lock guarantees strict arrival-order processing for a single user.
func (e *Engine) HandleMessage(ctx context.Context, msg InboundMessage) (Response, error) {
	if msg.UserID == "" {
		return Response{}, nil
	}
	e.log.InboundMessage(msg.UserID, msg.Channel, len(msg.Text))

	e.locks.Lock(msg.UserID)
	defer e.locks.Unlock(msg.UserID)

	// Marked inside the lock: a redelivery racing the original waits
	// here and then sees the id as already processed.
	if msg.MessageID != "" {
		first, err := e.dedupe.MarkProcessed(ctx, msg.MessageID)
		if err != nil {
			e.log.DatabaseError("dedupe.mark", err)
		} else if !first {
			e.log.Debug("duplicate message suppressed",
				"user_id", msg.UserID, "message_id", msg.MessageID)
			return Response{}, nil
		}
	}

	now := e.now()
	s, err := e.sessions.Get(ctx, msg.UserID)
	if err != nil {
		return Response{}, err
	}
	if s != nil && s.ExpiredAt(now, e.ttl) {
		e.publish(ctx, events.SessionCleared{
			BaseEvent: events.NewBaseEvent(),
			UserID:    msg.UserID,
			Cause:     "expired",
		})
		s.Clear(now)
	}
	if s == nil {
		s = domain.NewSession(msg.UserID, now)
	}
	before := s.State

	t := &turn{s: s, msg: msg, now: now}
	reply := e.dispatch(ctx, t)

	s.Touch(now)
	if err := e.sessions.Save(ctx, s); err != nil {
		// The reply is still worth delivering; the state loss surfaces
		// as a repeated question at worst.
		e.log.DatabaseError("session.save", err)
	}
	if s.State != before {
		e.log.StateTransition(msg.UserID, before.String(), s.State.String())
	}

	return Response{Text: reply, StateChanged: s.State != before}, nil
}

// dispatch routes the message: global commands first, then the
// freight-modification shortcut, then the state handlers.
func (e *Engine) dispatch(ctx context.Context, t *turn) string {
	if reply, ok := e.handleCommand(ctx, t); ok {
		return reply
	}

	if value, ok := extractor.FreightModification(t.msg.Text); ok {
		return e.handleFreightModification(ctx, t, value)
	}

	switch t.s.State {
	case domain.StateWaitingGlaseo:
		return e.handleGlaseoReply(ctx, t)
	case domain.StateWaitingFlete:
		return e.handleFleteReply(ctx, t)
	case domain.StateWaitingMultiGlaseo:
		return e.handleMultiGlaseoReply(ctx, t)
	case domain.StateWaitingMultiFlete:
		return e.handleMultiFleteReply(ctx, t)
	case domain.StateWaitingLanguage:
		return e.handleLanguageChoice(ctx, t)
	case domain.StateWaitingMultiLanguage:
		return e.handleMultiLanguageChoice(ctx, t)
	default:
		return e.handleIdle(ctx, t)
	}
}

var commandFolder = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n")

// handleCommand answers the global commands that work in every state.
// Only a whole message matches; "menu" inside a sentence is not a
// command.
func (e *Engine) handleCommand(ctx context.Context, t *turn) (string, bool) {
	word := commandFolder.Replace(strings.ToLower(strings.TrimSpace(t.msg.Text)))
	lang := t.language()

	switch word {
	case "menu", "inicio", "start", "reiniciar", "reset":
		if t.s.State != domain.StateIdle {
			e.publish(ctx, events.SessionCleared{
				BaseEvent: events.NewBaseEvent(),
				UserID:    t.s.UserID,
				Cause:     "new_conversation",
			})
		}
		t.s.Clear(t.now)
		return e.render.Menu(lang), true

	case "idioma", "language", "lang", "cambiar idioma":
		t.s.State = domain.StateWaitingLanguage
		t.s.Pending = nil
		return e.render.LanguageMenu(), true

	case "precios", "precio", "prices", "tallas", "sizes", "opciones", "productos", "products":
		return e.priceList(ctx, lang), true

	case "ayuda", "help", "?":
		return e.render.Help(lang), true

	case "cancelar", "cancel", "salir", "exit":
		t.s.Clear(t.now)
		return e.render.Cancelled(lang), true
	}
	return "", false
}

func (e *Engine) priceList(ctx context.Context, lang domain.Language) string {
	if e.lister == nil {
		return e.render.CatalogDown(lang)
	}
	records, err := e.lister.ListPrices(ctx)
	if err != nil {
		e.log.DatabaseError("catalog.list_prices", err)
		return e.render.CatalogDown(lang)
	}
	return e.render.PriceList(lang, records)
}

// handleLanguageChoice finishes the explicit language command: store
// the preference and re-deliver the last quote in it when one exists.
func (e *Engine) handleLanguageChoice(ctx context.Context, t *turn) string {
	if extractor.NewQuoteSignals(t.msg.Text) {
		t.s.Clear(t.now)
		return e.handleIdle(ctx, t)
	}

	choice, ok := domain.ParseLanguage(t.msg.Text)
	if !ok {
		return e.render.InvalidLanguageChoice()
	}

	t.s.Language = choice
	t.s.State = domain.StateIdle
	reply := e.render.LanguageSet(choice)

	if lq := t.s.LastQuote; lq != nil {
		switch {
		case lq.Single != nil:
			reply += "\n\n" + e.render.Quote(choice, lq.Single)
		case lq.Multi != nil:
			lq.Multi.Language = choice
			reply += "\n\n" + e.render.Consolidated(lq.Multi)
		}
	}
	return reply
}

// normalizeFreight applies the cents shorthand and the accepted band.
// Clients write "25" for 25 cents per kilo; anything above the band
// maximum is read as cents first, then checked against the band. An
// explicit zero passes through.
func (e *Engine) normalizeFreight(raw float64) (float64, bool) {
	if raw < 0 {
		return 0, false
	}
	v := raw
	if v > e.pricing.GetFreightMax() {
		v = v / 100
	}
	if v == 0 {
		return 0, true
	}
	if v < e.pricing.GetFreightMin() || v > e.pricing.GetFreightMax() {
		return 0, false
	}
	return v, true
}

// glaseoAnswer reads a glaze reply: a structured extraction wins,
// otherwise a bare integral number. Range checking is the caller's.
func glaseoAnswer(text string, parsed domain.Query) (int, bool) {
	if parsed.GlaseoPct != nil {
		return *parsed.GlaseoPct, true
	}
	v, ok := extractor.FirstNumber(text)
	if !ok || v != math.Trunc(v) || v < 0 {
		return 0, false
	}
	return int(v), true
}

// freightAnswer reads a freight reply the same way.
func freightAnswer(text string, parsed domain.Query) (float64, bool) {
	if parsed.Freight != nil {
		return *parsed.Freight, true
	}
	return extractor.FirstNumber(text)
}

// ClearSession drops a user's conversation state on behalf of an
// operator. It takes the user lock so an in-flight message never races
// the reset.
func (e *Engine) ClearSession(ctx context.Context, userID string) error {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	if err := e.sessions.Delete(ctx, userID); err != nil {
		return err
	}
	e.publish(ctx, events.SessionCleared{
		BaseEvent: events.NewBaseEvent(),
		UserID:    userID,
		Cause:     "admin",
	})
	return nil
}

func (e *Engine) publish(ctx context.Context, ev events.Event) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(ctx, ev)
}
