package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/xtaxx12/BGR-SHRIMP/internal/catalog"
	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/calculator"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/extractor"
	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"
)

// handleIdle interprets a message with no pending question: detect a
// multi-product request first, then extract a single query.
func (e *Engine) handleIdle(ctx context.Context, t *turn) string {
	lang := t.language()

	if queries := e.extract.DetectMulti(t.msg.Text, t.hints()); len(queries) >= 2 {
		return e.handleMulti(ctx, t, queries)
	}

	q := e.extract.Extract(ctx, t.msg.Text, t.hints())
	switch q.Intent {
	case domain.IntentGreeting:
		return e.render.Greeting(lang)
	case domain.IntentQuote:
		// fall through
	default:
		return e.render.NotUnderstood(lang)
	}

	switch {
	case q.Product == "":
		// Quote intent without a resolvable product; list what there is.
		return e.render.UnknownProduct(lang, "")
	case q.Size == "":
		valid := e.validSizes(ctx, q.Product)
		return e.render.MissingSize(lang, q.Product, valid)
	}

	return e.singleQuote(ctx, t, q, false)
}

// singleQuote runs the single-product pipeline: resolve the price row,
// fill destination freight, then either ask the one missing thing or
// compute and deliver. fromWait marks re-entry from a waiting state;
// glaseo is only ever asked once, so re-entries compute with 0% when it
// was never given. The freight question is different: a DDP quote can
// never be computed without an explicit rate.
func (e *Engine) singleQuote(ctx context.Context, t *turn, q domain.Query, fromWait bool) string {
	lang := t.language()

	rec, errReply := e.resolvePrice(ctx, t, q, lang)
	if errReply != "" {
		return errReply
	}

	if q.Freight != nil {
		v, ok := e.normalizeFreight(*q.Freight)
		if !ok {
			q.Freight = nil
			e.ask(t, domain.StateWaitingFlete, &q)
			return e.render.InvalidFreight(lang, e.pricing.GetFreightMin(), e.pricing.GetFreightMax())
		}
		q.Freight = &v
	}

	if q.Freight == nil && !q.IsDDP && q.Destination != "" {
		if rate, err := e.catalog.FreightRate(ctx, q.Destination); err == nil {
			q.Freight = &rate.Rate
			q.UsesPounds = q.UsesPounds || rate.UsesPounds
			q.Destination = rate.Destination
		}
	}

	if q.GlaseoPct != nil && (*q.GlaseoPct < 0 || *q.GlaseoPct > 50) {
		q.GlaseoPct = nil
		e.ask(t, domain.StateWaitingGlaseo, &q)
		return e.render.InvalidGlaseo(lang)
	}

	if !q.Complete() {
		switch {
		case q.IsDDP && q.Freight == nil:
			e.ask(t, domain.StateWaitingFlete, &q)
			return e.render.AskFreight(lang, q.Product, q.Size, q.Destination)
		case !fromWait && q.GlaseoPct == nil:
			e.ask(t, domain.StateWaitingGlaseo, &q)
			return e.render.AskGlaseo(lang, q.Product, q.Size)
		}
	}

	return e.deliverSingle(ctx, t, q, rec, lang)
}

// resolvePrice fetches the price row and turns every failure into the
// corrective reply. An empty return string means the row is usable.
func (e *Engine) resolvePrice(ctx context.Context, t *turn, q domain.Query, lang domain.Language) (catalog.PriceRecord, string) {
	rec, err := e.catalog.Price(ctx, q.Product, q.Size)
	if err != nil {
		kind := apperr.GetKind(err)
		switch kind {
		case apperr.KindUnknownSize:
			e.log.CatalogMiss(string(q.Product), string(q.Size))
			e.failQuote(ctx, t, kind.String())
			return rec, e.render.UnknownSize(lang, q.Product, string(q.Size), e.validSizes(ctx, q.Product))
		case apperr.KindUnknownProduct:
			e.log.CatalogMiss(string(q.Product), string(q.Size))
			e.failQuote(ctx, t, kind.String())
			return rec, e.render.UnknownProduct(lang, string(q.Product))
		default:
			e.log.DatabaseError("catalog.price", err)
			e.failQuote(ctx, t, apperr.KindCatalogUnavailable.String())
			return rec, e.render.CatalogDown(lang)
		}
	}
	if !rec.Available {
		e.log.CatalogMiss(string(q.Product), string(q.Size))
		e.failQuote(ctx, t, "price_not_set")
		return rec, e.render.ProductUnavailable(lang, q.Product, q.Size)
	}
	return rec, ""
}

// deliverSingle computes the final figures, records the quote and
// replies with the formatted quotation.
func (e *Engine) deliverSingle(ctx context.Context, t *turn, q domain.Query, rec catalog.PriceRecord, lang domain.Language) string {
	res, err := e.buildResult(q, rec)
	if err != nil {
		switch apperr.GetKind(err) {
		case apperr.KindGlaseoOutOfRange:
			q.GlaseoPct = nil
			e.ask(t, domain.StateWaitingGlaseo, &q)
			return e.render.InvalidGlaseo(lang)
		case apperr.KindFreightOutOfRange:
			q.Freight = nil
			e.ask(t, domain.StateWaitingFlete, &q)
			return e.render.InvalidFreight(lang, e.pricing.GetFreightMin(), e.pricing.GetFreightMax())
		case apperr.KindMissingFreightForDDP:
			e.ask(t, domain.StateWaitingFlete, &q)
			return e.render.AskFreight(lang, q.Product, q.Size, q.Destination)
		default:
			e.log.Error("quote calculation failed", "error", err)
			e.failQuote(ctx, t, "calculation_failed")
			return e.render.CatalogDown(lang)
		}
	}

	t.s.LastQuote = &domain.LastQuote{
		Queries:   []domain.Query{q},
		Single:    res,
		CreatedAt: t.now,
	}
	t.s.Clear(t.now)

	e.publish(ctx, e.quoteEvent(t, res, lang))
	return e.render.Quote(lang, res)
}

// buildResult prices one line from its catalog row. A nil glaseo
// computes as 0%: glaze was either answered or deliberately skipped by
// the flow, never guessed upward.
func (e *Engine) buildResult(q domain.Query, rec catalog.PriceRecord) (*domain.QuoteResult, error) {
	glaseo := 0
	if q.GlaseoPct != nil {
		glaseo = *q.GlaseoPct
	}

	calc, err := calculator.Calculate(rec.BasePrice, rec.FixedCost, glaseo, q.Freight, q.IsDDP)
	if err != nil {
		return nil, err
	}

	return &domain.QuoteResult{
		ID:             uuid.New(),
		Product:        q.Product,
		Size:           q.Size,
		BasePrice:      rec.BasePrice,
		FixedCost:      rec.FixedCost,
		FOBPrice:       calc.FOBPrice,
		CFRPrice:       calc.CFRPrice,
		DDPPrice:       calc.DDPPrice,
		GlaseoPct:      glaseo,
		GlaseoFactor:   calc.GlaseoFactor,
		FreightApplied: q.Freight,
		Destination:    q.Destination,
		Quantity:       q.Quantity,
		UsesPounds:     q.UsesPounds,
		CreatedAt:      e.now(),
	}, nil
}

// ask parks the query and moves to the waiting state.
func (e *Engine) ask(t *turn, state domain.State, q *domain.Query) {
	t.s.State = state
	t.s.Pending = &domain.PendingData{Single: q, RequestText: t.requestText()}
}

// handleGlaseoReply completes a quote that was waiting for its glaze
// percentage. A reply carrying fresh quote signals abandons the wait
// and starts over.
func (e *Engine) handleGlaseoReply(ctx context.Context, t *turn) string {
	if extractor.NewQuoteSignals(t.msg.Text) {
		t.s.Clear(t.now)
		return e.handleIdle(ctx, t)
	}
	if t.s.Pending == nil || t.s.Pending.Single == nil {
		t.s.Clear(t.now)
		return e.handleIdle(ctx, t)
	}

	parsed := e.answers.Extract(t.msg.Text, t.hints())
	glaseo, ok := glaseoAnswer(t.msg.Text, parsed)
	if !ok || glaseo > 50 {
		return e.render.InvalidGlaseo(t.language())
	}

	answer := domain.Query{GlaseoPct: &glaseo, IsDDP: parsed.IsDDP}
	if t.s.Pending.Single.Freight == nil && parsed.Freight != nil {
		if v, vok := e.normalizeFreight(*parsed.Freight); vok {
			answer.Freight = &v
		}
	}

	q := *t.s.Pending.Single
	q.Merge(answer)

	t.request = t.s.Pending.RequestText
	t.s.Clear(t.now)
	return e.singleQuote(ctx, t, q, true)
}

// handleFleteReply completes a quote that was waiting for its freight
// rate. Values above the band are read as cents per kilo.
func (e *Engine) handleFleteReply(ctx context.Context, t *turn) string {
	if extractor.NewQuoteSignals(t.msg.Text) {
		t.s.Clear(t.now)
		return e.handleIdle(ctx, t)
	}
	if t.s.Pending == nil || t.s.Pending.Single == nil {
		t.s.Clear(t.now)
		return e.handleIdle(ctx, t)
	}

	parsed := e.answers.Extract(t.msg.Text, t.hints())
	raw, ok := freightAnswer(t.msg.Text, parsed)
	if !ok {
		return e.render.InvalidFreight(t.language(), e.pricing.GetFreightMin(), e.pricing.GetFreightMax())
	}
	value, ok := e.normalizeFreight(raw)
	if !ok {
		return e.render.InvalidFreight(t.language(), e.pricing.GetFreightMin(), e.pricing.GetFreightMax())
	}

	answer := domain.Query{Freight: &value}
	if t.s.Pending.Single.GlaseoPct == nil && parsed.GlaseoPct != nil && *parsed.GlaseoPct >= 0 && *parsed.GlaseoPct <= 50 {
		answer.GlaseoPct = parsed.GlaseoPct
	}

	q := *t.s.Pending.Single
	q.Merge(answer)

	t.request = t.s.Pending.RequestText
	t.s.Clear(t.now)
	return e.singleQuote(ctx, t, q, true)
}

// handleFreightModification recomputes the last delivered quote with a
// new freight rate. It produces a fresh quote; the old one is replaced,
// not mutated.
func (e *Engine) handleFreightModification(ctx context.Context, t *turn, raw float64) string {
	lang := t.language()

	lq := t.s.LastQuote
	if lq == nil || len(lq.Queries) == 0 {
		return e.render.NoPreviousQuote(lang)
	}

	value, ok := e.normalizeFreight(raw)
	if !ok {
		return e.render.InvalidFreight(lang, e.pricing.GetFreightMin(), e.pricing.GetFreightMax())
	}

	switch {
	case lq.Single != nil:
		q := lq.Queries[0]
		q.Freight = &value

		rec, errReply := e.resolvePrice(ctx, t, q, lang)
		if errReply != "" {
			return errReply
		}
		res, err := e.buildResult(q, rec)
		if err != nil {
			e.log.Error("freight modification failed", "error", err)
			e.failQuote(ctx, t, "calculation_failed")
			return e.render.CatalogDown(lang)
		}

		t.s.LastQuote = &domain.LastQuote{Queries: []domain.Query{q}, Single: res, CreatedAt: t.now}
		t.s.Clear(t.now)
		e.publish(ctx, e.quoteEvent(t, res, lang))
		return e.render.FreightUpdated(lang, value) + "\n\n" + e.render.Quote(lang, res)

	case lq.Multi != nil:
		queries := make([]domain.Query, len(lq.Queries))
		copy(queries, lq.Queries)
		for i := range queries {
			queries[i].Freight = &value
		}

		delivered := lq.Multi.Language
		if !delivered.Valid() {
			delivered = lang
		}
		c := e.aggregate(ctx, queries, delivered)

		t.s.LastQuote = &domain.LastQuote{Queries: queries, Multi: c, CreatedAt: t.now}
		t.s.Clear(t.now)
		e.publish(ctx, e.multiQuoteEvent(t, c, t.requestText()))
		return e.render.FreightUpdated(lang, value) + "\n\n" + e.render.Consolidated(c)
	}

	return e.render.NoPreviousQuote(lang)
}

func (e *Engine) validSizes(ctx context.Context, product domain.Product) []domain.Size {
	valid, err := e.catalog.ValidSizes(ctx, product)
	if err != nil {
		return nil
	}
	return valid
}

// failQuote records that a request could not be priced. The user has
// already received the corrective reply by the time this fires.
func (e *Engine) failQuote(ctx context.Context, t *turn, reason string) {
	e.publish(ctx, events.QuoteFailed{
		BaseEvent:   events.NewBaseEvent(),
		UserID:      t.s.UserID,
		Channel:     t.msg.Channel,
		Reason:      reason,
		RequestText: t.requestText(),
	})
}

func (e *Engine) quoteEvent(t *turn, res *domain.QuoteResult, lang domain.Language) events.QuoteGenerated {
	ev := events.QuoteGenerated{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     res.ID,
		UserID:      t.s.UserID,
		Channel:     t.msg.Channel,
		Product:     string(res.Product),
		Size:        string(res.Size),
		GlaseoPct:   domain.IntPtr(res.GlaseoPct),
		Freight:     res.FreightApplied,
		Destination: res.Destination,
		FOBPrice:    res.FOBPrice,
		DDPPrice:    res.DDPPrice,
		Language:    string(lang),
		RequestText: t.requestText(),
	}
	if res.FreightApplied != nil {
		cfr := res.CFRPrice
		ev.CFRPrice = &cfr
	}
	return ev
}
