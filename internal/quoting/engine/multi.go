package engine

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/extractor"
	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"
)

// aggregateLimit bounds how many catalog lookups a multi-product batch
// runs at once.
const aggregateLimit = 4

// handleMulti starts the multi-product flow: normalize what the lines
// brought, then ask the one thing the whole batch is missing. Freight
// for DDP lines is asked before glaseo; neither is ever guessed.
func (e *Engine) handleMulti(ctx context.Context, t *turn, queries []domain.Query) string {
	lang := t.language()

	for i := range queries {
		if queries[i].Freight == nil {
			continue
		}
		if v, ok := e.normalizeFreight(*queries[i].Freight); ok {
			queries[i].Freight = &v
		} else {
			queries[i].Freight = nil
		}
	}

	destination := firstDestination(queries)
	switch {
	case anyDDPMissingFreight(queries):
		t.s.State = domain.StateWaitingMultiFlete
		t.s.Pending = &domain.PendingData{Multi: queries, RequestText: t.requestText()}
		return e.render.AskMultiFreight(lang, len(queries), destination)
	case anyMissingGlaseo(queries):
		t.s.State = domain.StateWaitingMultiGlaseo
		t.s.Pending = &domain.PendingData{Multi: queries, RequestText: t.requestText()}
		return e.render.AskMultiGlaseo(lang, queries, destination)
	}

	return e.computeMulti(ctx, t, queries)
}

// computeMulti prices the whole batch and, when anything priced at all,
// parks the result while the delivery language is asked. A batch with
// zero priced lines is delivered immediately; there is nothing worth a
// language question.
func (e *Engine) computeMulti(ctx context.Context, t *turn, queries []domain.Query) string {
	lang := t.language()
	c := e.aggregate(ctx, queries, lang)

	if c.Succeeded() == 0 {
		e.failQuote(ctx, t, "no_lines_priced")
		t.s.Clear(t.now)
		return e.render.Consolidated(c)
	}

	t.s.State = domain.StateWaitingMultiLanguage
	t.s.Pending = &domain.PendingData{
		Multi:        queries,
		Consolidated: c,
		RequestText:  t.requestText(),
	}
	return e.render.ConsolidatedSummary(c)
}

// handleMultiGlaseoReply applies one glaze answer to every line that
// did not bring its own, then prices the batch.
func (e *Engine) handleMultiGlaseoReply(ctx context.Context, t *turn) string {
	if extractor.NewQuoteSignals(t.msg.Text) {
		t.s.Clear(t.now)
		return e.handleIdle(ctx, t)
	}
	if t.s.Pending == nil || len(t.s.Pending.Multi) == 0 {
		t.s.Clear(t.now)
		return e.handleIdle(ctx, t)
	}

	parsed := e.answers.Extract(t.msg.Text, t.hints())
	glaseo, ok := glaseoAnswer(t.msg.Text, parsed)
	if !ok || glaseo > 50 {
		return e.render.InvalidGlaseo(t.language())
	}

	queries := cloneQueries(t.s.Pending.Multi)
	for i := range queries {
		if queries[i].GlaseoPct == nil {
			queries[i].GlaseoPct = domain.IntPtr(glaseo)
		}
		if queries[i].Freight == nil && parsed.Freight != nil {
			if v, vok := e.normalizeFreight(*parsed.Freight); vok {
				queries[i].Freight = &v
			}
		}
	}

	t.request = t.s.Pending.RequestText
	return e.computeMulti(ctx, t, queries)
}

// handleMultiFleteReply applies one freight answer to every line that
// did not bring its own, then prices the batch.
func (e *Engine) handleMultiFleteReply(ctx context.Context, t *turn) string {
	if extractor.NewQuoteSignals(t.msg.Text) {
		t.s.Clear(t.now)
		return e.handleIdle(ctx, t)
	}
	if t.s.Pending == nil || len(t.s.Pending.Multi) == 0 {
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

	queries := cloneQueries(t.s.Pending.Multi)
	for i := range queries {
		if queries[i].Freight == nil {
			queries[i].Freight = domain.FloatPtr(value)
		}
		if queries[i].GlaseoPct == nil && parsed.GlaseoPct != nil &&
			*parsed.GlaseoPct >= 0 && *parsed.GlaseoPct <= 50 {
			queries[i].GlaseoPct = parsed.GlaseoPct
		}
	}

	t.request = t.s.Pending.RequestText
	return e.computeMulti(ctx, t, queries)
}

// handleMultiLanguageChoice delivers the already-computed consolidated
// quote in the chosen language and closes the flow.
func (e *Engine) handleMultiLanguageChoice(ctx context.Context, t *turn) string {
	if extractor.NewQuoteSignals(t.msg.Text) {
		t.s.Clear(t.now)
		return e.handleIdle(ctx, t)
	}
	if t.s.Pending == nil || t.s.Pending.Consolidated == nil {
		t.s.Clear(t.now)
		return e.handleIdle(ctx, t)
	}

	choice, ok := domain.ParseLanguage(t.msg.Text)
	if !ok {
		return e.render.InvalidLanguageChoice()
	}

	pending := t.s.Pending
	c := pending.Consolidated
	c.Language = choice

	t.request = pending.RequestText
	t.s.LastQuote = &domain.LastQuote{
		Queries:   pending.Multi,
		Multi:     c,
		CreatedAt: t.now,
	}
	t.s.Clear(t.now)

	e.publish(ctx, e.multiQuoteEvent(t, c, t.requestText()))
	return e.render.Consolidated(c)
}

// lineOutcome is the priced-or-failed result of one batch line.
type lineOutcome struct {
	result  *domain.QuoteResult
	failure *domain.QuoteFailure
}

// aggregate prices every line of a batch with bounded concurrency.
// Results are written by index, so detection order survives; a line
// that cannot be priced becomes a failure entry and never aborts its
// siblings.
func (e *Engine) aggregate(ctx context.Context, queries []domain.Query, lang domain.Language) *domain.ConsolidatedQuote {
	outcomes := make([]lineOutcome, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(aggregateLimit)
	for i := range queries {
		g.Go(func() error {
			outcomes[i] = e.priceLine(gctx, queries[i])
			return nil
		})
	}
	// Workers record failures in their slot instead of returning errors.
	_ = g.Wait()

	c := &domain.ConsolidatedQuote{
		ID:          uuid.New(),
		Destination: firstDestination(queries),
		Language:    lang,
		CreatedAt:   e.now(),
	}
	for _, o := range outcomes {
		switch {
		case o.result != nil:
			c.Successes = append(c.Successes, *o.result)
		case o.failure != nil:
			c.Failures = append(c.Failures, *o.failure)
		}
	}
	c.GlaseoPct = sharedGlaseo(c.Successes)
	c.Freight = sharedFreight(c.Successes)
	return c
}

// priceLine resolves and computes one line. Failures carry the reason
// as a stable token plus, for a wrong size, the sizes that would have
// worked.
func (e *Engine) priceLine(ctx context.Context, q domain.Query) lineOutcome {
	fail := func(reason string, valid []domain.Size) lineOutcome {
		return lineOutcome{failure: &domain.QuoteFailure{
			Product:    q.Product,
			Size:       string(q.Size),
			Reason:     reason,
			ValidSizes: valid,
		}}
	}

	if q.Product == "" {
		return fail(apperr.KindUnknownProduct.String(), nil)
	}

	rec, err := e.catalog.Price(ctx, q.Product, q.Size)
	if err != nil {
		kind := apperr.GetKind(err)
		switch kind {
		case apperr.KindUnknownSize:
			e.log.CatalogMiss(string(q.Product), string(q.Size))
			return fail(kind.String(), e.validSizes(ctx, q.Product))
		case apperr.KindUnknownProduct:
			e.log.CatalogMiss(string(q.Product), string(q.Size))
			return fail(kind.String(), nil)
		default:
			e.log.DatabaseError("catalog.price", err)
			return fail(apperr.KindCatalogUnavailable.String(), nil)
		}
	}
	if !rec.Available {
		e.log.CatalogMiss(string(q.Product), string(q.Size))
		return fail("price_not_set", nil)
	}

	if q.Freight == nil && !q.IsDDP && q.Destination != "" {
		if rate, rerr := e.catalog.FreightRate(ctx, q.Destination); rerr == nil {
			q.Freight = &rate.Rate
			q.UsesPounds = q.UsesPounds || rate.UsesPounds
			q.Destination = rate.Destination
		}
	}

	res, err := e.buildResult(q, rec)
	if err != nil {
		return fail(apperr.GetKind(err).String(), nil)
	}
	return lineOutcome{result: res}
}

func (e *Engine) multiQuoteEvent(t *turn, c *domain.ConsolidatedQuote, requestText string) events.MultiQuoteGenerated {
	items := make([]events.QuoteGenerated, 0, len(c.Successes))
	for i := range c.Successes {
		items = append(items, e.quoteEvent(t, &c.Successes[i], c.Language))
	}
	return events.MultiQuoteGenerated{
		BaseEvent:    events.NewBaseEvent(),
		BatchID:      c.ID,
		UserID:       t.s.UserID,
		Channel:      t.msg.Channel,
		Items:        items,
		FailureCount: c.Failed(),
		Language:     string(c.Language),
		RequestText:  requestText,
	}
}

func cloneQueries(queries []domain.Query) []domain.Query {
	out := make([]domain.Query, len(queries))
	copy(out, queries)
	return out
}

func anyDDPMissingFreight(queries []domain.Query) bool {
	for i := range queries {
		if queries[i].IsDDP && queries[i].Freight == nil {
			return true
		}
	}
	return false
}

func anyMissingGlaseo(queries []domain.Query) bool {
	for i := range queries {
		if queries[i].GlaseoPct == nil {
			return true
		}
	}
	return false
}

func firstDestination(queries []domain.Query) string {
	for i := range queries {
		if queries[i].Destination != "" {
			return queries[i].Destination
		}
	}
	return ""
}

// sharedGlaseo returns the batch glaze when every priced line used the
// same percentage, nil otherwise.
func sharedGlaseo(successes []domain.QuoteResult) *int {
	if len(successes) == 0 {
		return nil
	}
	first := successes[0].GlaseoPct
	for i := range successes {
		if successes[i].GlaseoPct != first {
			return nil
		}
	}
	return &first
}

// sharedFreight returns the batch freight when every priced line had
// the same explicit rate, nil otherwise.
func sharedFreight(successes []domain.QuoteResult) *float64 {
	if len(successes) == 0 {
		return nil
	}
	if successes[0].FreightApplied == nil {
		return nil
	}
	first := *successes[0].FreightApplied
	for i := range successes {
		if successes[i].FreightApplied == nil || *successes[i].FreightApplied != first {
			return nil
		}
	}
	return &first
}
