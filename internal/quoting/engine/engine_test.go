package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/catalog"
	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/extractor"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/session"
	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
)

// recordingBus captures published events synchronously so tests can
// assert on them right after HandleMessage returns.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, ev events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBus) PublishSync(ctx context.Context, ev events.Event) error {
	b.Publish(ctx, ev)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) quotes() []events.QuoteGenerated {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.QuoteGenerated
	for _, ev := range b.events {
		if q, ok := ev.(events.QuoteGenerated); ok {
			out = append(out, q)
		}
	}
	return out
}

func (b *recordingBus) multiQuotes() []events.MultiQuoteGenerated {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.MultiQuoteGenerated
	for _, ev := range b.events {
		if m, ok := ev.(events.MultiQuoteGenerated); ok {
			out = append(out, m)
		}
	}
	return out
}

func (b *recordingBus) failures() []events.QuoteFailed {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.QuoteFailed
	for _, ev := range b.events {
		if f, ok := ev.(events.QuoteFailed); ok {
			out = append(out, f)
		}
	}
	return out
}

func (b *recordingBus) cleared() []events.SessionCleared {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.SessionCleared
	for _, ev := range b.events {
		if c, ok := ev.(events.SessionCleared); ok {
			out = append(out, c)
		}
	}
	return out
}

// fixedSource is a hand-rolled price source for tests that need a
// catalog smaller or sicker than the built-in table.
type fixedSource struct {
	rows []catalog.PriceRecord
	err  error
}

func (f *fixedSource) Price(ctx context.Context, product domain.Product, size domain.Size) (catalog.PriceRecord, error) {
	if f.err != nil {
		return catalog.PriceRecord{}, f.err
	}
	known := false
	for _, rec := range f.rows {
		if rec.Product != product {
			continue
		}
		if rec.Size == size {
			return rec, nil
		}
		known = true
	}
	if known {
		return catalog.PriceRecord{}, apperr.UnknownSize(string(product), string(size))
	}
	return catalog.PriceRecord{}, apperr.UnknownProduct(string(product))
}

func (f *fixedSource) ValidSizes(ctx context.Context, product domain.Product) ([]domain.Size, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Size
	for _, rec := range f.rows {
		if rec.Product == product {
			out = append(out, rec.Size)
		}
	}
	if len(out) == 0 {
		return nil, apperr.UnknownProduct(string(product))
	}
	return out, nil
}

func (f *fixedSource) FreightRate(ctx context.Context, destination string) (catalog.FreightRate, error) {
	return catalog.FreightRate{}, apperr.NotFound("no freight rate for " + destination)
}

func (f *fixedSource) Healthy(ctx context.Context) error { return f.err }

func testConfig() *config.Config {
	return &config.Config{
		FreightMin:       0.01,
		FreightMax:       5,
		SessionTTL:       24 * time.Hour,
		DedupeTTL:        5 * time.Minute,
		ExtractorTimeout: time.Second,
	}
}

type engineFixture struct {
	engine *Engine
	bus    *recordingBus
	repo   *session.MemoryRepository
	now    time.Time
}

// newFixture wires an engine on in-process stores with a controllable
// clock. A nil source means the built-in static catalog.
func newFixture(t *testing.T, src catalog.Source) *engineFixture {
	t.Helper()
	cfg := testConfig()
	log := logger.New("test")
	if src == nil {
		src = catalog.NewStaticSource()
	}

	fx := &engineFixture{
		bus:  &recordingBus{},
		repo: session.NewMemoryRepository(cfg),
		now:  time.Now(),
	}
	fx.engine = New(Deps{
		Sessions:  fx.repo,
		Dedupe:    session.NewMemoryDeduper(cfg),
		Extractor: extractor.New(nil, cfg, log),
		Catalog:   src,
		Bus:       fx.bus,
		Pricing:   cfg,
		Session:   cfg,
		Log:       log,
		Now:       func() time.Time { return fx.now },
	})
	return fx
}

func (fx *engineFixture) say(t *testing.T, user, text string) string {
	t.Helper()
	resp, err := fx.engine.HandleMessage(context.Background(), InboundMessage{
		UserID:  user,
		Text:    text,
		Channel: "whatsapp",
	})
	if err != nil {
		t.Fatalf("HandleMessage(%q): unexpected error: %v", text, err)
	}
	return resp.Text
}

func (fx *engineFixture) state(t *testing.T, user string) domain.State {
	t.Helper()
	s, err := fx.repo.Get(context.Background(), user)
	if err != nil {
		t.Fatalf("session get: %v", err)
	}
	if s == nil {
		return domain.StateIdle
	}
	return s.State
}

func (fx *engineFixture) session(t *testing.T, user string) *domain.Session {
	t.Helper()
	s, err := fx.repo.Get(context.Background(), user)
	if err != nil {
		t.Fatalf("session get: %v", err)
	}
	if s == nil {
		t.Fatalf("expected a stored session for %s, got none", user)
	}
	return s
}

func wantContains(t *testing.T, reply string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(reply, w) {
			t.Errorf("reply missing %q:\n%s", w, reply)
		}
	}
}

func wantNotContains(t *testing.T, reply string, avoid ...string) {
	t.Helper()
	for _, a := range avoid {
		if strings.Contains(reply, a) {
			t.Errorf("reply should not contain %q:\n%s", a, reply)
		}
	}
}

func TestEmptyUserIDIgnored(t *testing.T) {
	fx := newFixture(t, nil)
	resp, err := fx.engine.HandleMessage(context.Background(), InboundMessage{Text: "hola"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "" {
		t.Errorf("expected empty response for missing user id, got %q", resp.Text)
	}
}

func TestIdleReplies(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"greeting", "Hola", []string{"¡Hola! Soy el asistente"}},
		{"not understood", "qué clima hace hoy", []string{"No entendí tu mensaje"}},
		{"size without product lists catalog", "cotiza 16/20", []string{"Productos disponibles", "HLSO"}},
		{"product without size asks for one", "precio del HLSO", []string{"¿Qué talla de HLSO", "U15, 16/20"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, nil)
			reply := fx.say(t, "user-idle", tc.text)
			wantContains(t, reply, tc.want...)
			if got := fx.state(t, "user-idle"); got != domain.StateIdle {
				t.Errorf("state: expected idle, got %s", got)
			}
		})
	}
}

func TestSingleQuoteImmediateDelivery(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-a"

	reply := fx.say(t, user, "Cotizar HLSO 16/20 con 20% de glaseo")
	wantContains(t, reply,
		"Cotización Camarón",
		"**Producto:** HLSO",
		"**Talla:** 16/20",
		"**Glaseo:** 20% (factor 0.80)",
		"$9.22/kg",
	)
	wantNotContains(t, reply, "CFR", "DDP")

	if got := fx.state(t, user); got != domain.StateIdle {
		t.Errorf("state: expected idle, got %s", got)
	}
	s := fx.session(t, user)
	if s.LastQuote == nil || s.LastQuote.Single == nil {
		t.Fatal("expected last quote to be recorded")
	}
	if s.LastQuote.Single.FOBPrice != 9.22 {
		t.Errorf("fob: expected 9.22, got %.2f", s.LastQuote.Single.FOBPrice)
	}

	quotes := fx.bus.quotes()
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote event, got %d", len(quotes))
	}
	ev := quotes[0]
	if ev.FOBPrice != 9.22 {
		t.Errorf("event fob: expected 9.22, got %.2f", ev.FOBPrice)
	}
	if ev.CFRPrice != nil {
		t.Errorf("event cfr: expected nil without freight, got %.2f", *ev.CFRPrice)
	}
	if ev.GlaseoPct == nil || *ev.GlaseoPct != 20 {
		t.Errorf("event glaseo: expected 20, got %v", ev.GlaseoPct)
	}
	if ev.RequestText != "Cotizar HLSO 16/20 con 20% de glaseo" {
		t.Errorf("event request text: got %q", ev.RequestText)
	}
}

func TestGlaseoElicitation(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-glaseo"

	reply := fx.say(t, user, "Cotizar HLSO 16/20")
	wantContains(t, reply, "necesito el glaseo", "HLSO 16/20")
	if got := fx.state(t, user); got != domain.StateWaitingGlaseo {
		t.Fatalf("state: expected waiting_for_glaseo, got %s", got)
	}

	reply = fx.say(t, user, "80")
	wantContains(t, reply, "entre 0 y 50")
	if got := fx.state(t, user); got != domain.StateWaitingGlaseo {
		t.Fatalf("state after invalid glaze: expected waiting_for_glaseo, got %s", got)
	}

	reply = fx.say(t, user, "20")
	wantContains(t, reply, "$9.22/kg", "**Glaseo:** 20%")
	if got := fx.state(t, user); got != domain.StateIdle {
		t.Errorf("state after delivery: expected idle, got %s", got)
	}

	quotes := fx.bus.quotes()
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote event, got %d", len(quotes))
	}
	if quotes[0].RequestText != "Cotizar HLSO 16/20" {
		t.Errorf("event should carry the original request, got %q", quotes[0].RequestText)
	}
}

func TestDDPFreightElicitation(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-ddp"

	reply := fx.say(t, user, "HLSO 16/20 DDP China")
	wantContains(t, reply, "necesito el valor del flete", "China")
	wantNotContains(t, reply, "glaseo necesitas")
	if got := fx.state(t, user); got != domain.StateWaitingFlete {
		t.Fatalf("state: expected waiting_for_flete, got %s", got)
	}

	reply = fx.say(t, user, "600")
	wantContains(t, reply, "entre $0.01 y $5.00")
	if got := fx.state(t, user); got != domain.StateWaitingFlete {
		t.Fatalf("state after invalid freight: expected waiting_for_flete, got %s", got)
	}

	// One numeric answer completes the quote. Glaze was never asked, so
	// it prices at 0%.
	reply = fx.say(t, user, "0.25")
	wantContains(t, reply,
		"**Glaseo:** 0% (factor 1.00)",
		"$11.45/kg",
		"Precio DDP (FOB + flete $0.25)",
		"$11.70/kg",
		"**Destino:** China",
	)
	if got := fx.state(t, user); got != domain.StateIdle {
		t.Errorf("state after delivery: expected idle, got %s", got)
	}

	quotes := fx.bus.quotes()
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote event, got %d", len(quotes))
	}
	ev := quotes[0]
	if ev.DDPPrice == nil || *ev.DDPPrice != 11.70 {
		t.Errorf("event ddp: expected 11.70, got %v", ev.DDPPrice)
	}
	if ev.GlaseoPct == nil || *ev.GlaseoPct != 0 {
		t.Errorf("event glaseo: expected 0, got %v", ev.GlaseoPct)
	}
	if ev.RequestText != "HLSO 16/20 DDP China" {
		t.Errorf("event should carry the original request, got %q", ev.RequestText)
	}
}

func TestFreightCentsShorthand(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-cents"

	fx.say(t, user, "HLSO 16/20 DDP Houston")
	reply := fx.say(t, user, "25")
	wantContains(t, reply, "Precio DDP (FOB + flete $0.25)", "$11.70/kg", "**Destino:** Houston")
}

func TestInlineFreightQuotesCFR(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-cfr"

	reply := fx.say(t, user, "Cotizar HLSO 16/20 con 20% de glaseo y flete 0.25")
	wantContains(t, reply, "Precio CFR (FOB + flete $0.25)", "$9.47/kg")
	if got := fx.state(t, user); got != domain.StateIdle {
		t.Errorf("state: expected idle, got %s", got)
	}
}

func TestDestinationFreightFromCatalog(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-miami"

	// Miami carries a catalog rate of 0.25 and quotes in pounds.
	reply := fx.say(t, user, "Cotizar HLSO 16/20 al 20% para envío a Miami")
	wantContains(t, reply,
		"**Destino:** Miami",
		"Precio CFR (FOB + flete $0.25)",
		"$9.47/kg - $4.30/lb",
		"$9.22/kg - $4.18/lb",
	)
}

func TestNewQuoteBeatsFreightModification(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-container"

	fx.say(t, user, "Cotizar HLSO 16/20 con 20% de glaseo")

	// A fresh request that happens to mention freight must start a new
	// quote, never modify the previous one.
	reply := fx.say(t, user, "Cotizar un Contenedor de 30/40 con 0.15 de flete")
	wantContains(t, reply, "necesito el glaseo", "HOSO 30/40")
	wantNotContains(t, reply, "Flete actualizado")
	if got := fx.state(t, user); got != domain.StateWaitingGlaseo {
		t.Fatalf("state: expected waiting_for_glaseo, got %s", got)
	}

	reply = fx.say(t, user, "10")
	wantContains(t, reply, "$6.87/kg", "Precio CFR (FOB + flete $0.15)", "$7.02/kg")
}

func TestFreightModification(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-mod"

	fx.say(t, user, "Cotizar HLSO 16/20 con 20% de glaseo y flete 0.25")

	reply := fx.say(t, user, "modifica el flete a 0.30")
	wantContains(t, reply, "Flete actualizado a $0.30", "$9.52/kg")
	if got := fx.state(t, user); got != domain.StateIdle {
		t.Errorf("state: expected idle, got %s", got)
	}

	// Values above the band read as cents per kilo.
	reply = fx.say(t, user, "cambia el flete a 45")
	wantContains(t, reply, "Flete actualizado a $0.45", "$9.67/kg")

	quotes := fx.bus.quotes()
	if len(quotes) != 3 {
		t.Fatalf("expected 3 quote events, got %d", len(quotes))
	}
	if quotes[0].QuoteID == quotes[1].QuoteID {
		t.Error("a modified quote must carry a fresh id")
	}
	if quotes[1].CFRPrice == nil || *quotes[1].CFRPrice != 9.52 {
		t.Errorf("modified cfr: expected 9.52, got %v", quotes[1].CFRPrice)
	}
}

func TestFreightModificationWithoutQuote(t *testing.T) {
	fx := newFixture(t, nil)

	reply := fx.say(t, "user-nothing", "modifica el flete a 0.30")
	wantContains(t, reply, "No hay una cotización previa")
	if got := len(fx.bus.quotes()); got != 0 {
		t.Errorf("expected no quote events, got %d", got)
	}
}

func TestFreightModificationFromWaitState(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-mod-wait"

	fx.say(t, user, "Cotizar HLSO 16/20 con 20% de glaseo y flete 0.25")
	fx.say(t, user, "Cotizar P&D IQF 21/25")
	if got := fx.state(t, user); got != domain.StateWaitingGlaseo {
		t.Fatalf("state: expected waiting_for_glaseo, got %s", got)
	}

	// The change targets the delivered quote and supersedes the open
	// question.
	reply := fx.say(t, user, "ajusta el flete a 0.35")
	wantContains(t, reply, "Flete actualizado a $0.35", "HLSO", "$9.57/kg")
	if got := fx.state(t, user); got != domain.StateIdle {
		t.Errorf("state: expected idle, got %s", got)
	}
}

func TestGlobalCommands(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"menu", "menu", "Menú principal"},
		{"menu accented upper", "MENÚ", "Menú principal"},
		{"prices", "precios", "Productos y tallas disponibles"},
		{"help", "ayuda", "Comandos"},
		{"help question mark", "?", "Comandos"},
		{"cancel", "cancelar", "Consulta cancelada"},
		{"language", "idioma", "Selecciona el idioma"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, nil)
			reply := fx.say(t, "user-cmd", tc.text)
			wantContains(t, reply, tc.want)
		})
	}
}

func TestMenuClearsPendingState(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-menu"

	fx.say(t, user, "HLSO 16/20 DDP China")
	reply := fx.say(t, user, "menu")
	wantContains(t, reply, "Menú principal")
	if got := fx.state(t, user); got != domain.StateIdle {
		t.Fatalf("state: expected idle, got %s", got)
	}

	cleared := fx.bus.cleared()
	if len(cleared) != 1 || cleared[0].Cause != "new_conversation" {
		t.Fatalf("expected one new_conversation clear event, got %+v", cleared)
	}

	// The parked question is gone; a bare number means nothing now.
	reply = fx.say(t, user, "0.25")
	wantContains(t, reply, "No entendí tu mensaje")
}

func TestCancelDropsPending(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-cancel"

	fx.say(t, user, "Cotizar HLSO 16/20")
	reply := fx.say(t, user, "cancelar")
	wantContains(t, reply, "Consulta cancelada")
	if got := fx.state(t, user); got != domain.StateIdle {
		t.Fatalf("state: expected idle, got %s", got)
	}

	reply = fx.say(t, user, "20")
	wantContains(t, reply, "No entendí tu mensaje")
}

func TestLanguagePreferenceFlow(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-lang"

	fx.say(t, user, "Cotizar HLSO 16/20 con 20% de glaseo")

	reply := fx.say(t, user, "idioma")
	wantContains(t, reply, "Selecciona el idioma")
	if got := fx.state(t, user); got != domain.StateWaitingLanguage {
		t.Fatalf("state: expected waiting_for_language, got %s", got)
	}

	reply = fx.say(t, user, "quizás")
	wantContains(t, reply, "Selección inválida")

	// Choosing English re-delivers the last quote translated.
	reply = fx.say(t, user, "2")
	wantContains(t, reply, "Language set: English", "Shrimp Quotation", "$9.22/kg")
	if got := fx.session(t, user).Language; got != domain.LanguageEN {
		t.Fatalf("stored language: expected en, got %q", got)
	}

	// The preference sticks for the next quote.
	reply = fx.say(t, user, "Price HLSO 16/20 with 30% glaze")
	wantContains(t, reply, "Shrimp Quotation", "**Glaze:** 30%", "$8.10/kg")
}

func TestSessionExpiry(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-expiry"

	fx.say(t, user, "HLSO 16/20 DDP China")
	if got := fx.state(t, user); got != domain.StateWaitingFlete {
		t.Fatalf("state: expected waiting_for_flete, got %s", got)
	}

	fx.now = fx.now.Add(25 * time.Hour)

	// The parked question expired with the session; the number no longer
	// answers anything.
	reply := fx.say(t, user, "0.25")
	wantContains(t, reply, "No entendí tu mensaje")

	cleared := fx.bus.cleared()
	if len(cleared) != 1 || cleared[0].Cause != "expired" {
		t.Fatalf("expected one expired clear event, got %+v", cleared)
	}
	if got := fx.state(t, user); got != domain.StateIdle {
		t.Errorf("state: expected idle, got %s", got)
	}
}

func TestDuplicateMessageSuppressed(t *testing.T) {
	fx := newFixture(t, nil)
	msg := InboundMessage{
		UserID:    "user-dup",
		Text:      "Hola",
		MessageID: "wamid.001",
		Channel:   "whatsapp",
	}

	first, err := fx.engine.HandleMessage(context.Background(), msg)
	if err != nil {
		t.Fatalf("first delivery: unexpected error: %v", err)
	}
	if first.Text == "" {
		t.Fatal("first delivery should produce a reply")
	}

	second, err := fx.engine.HandleMessage(context.Background(), msg)
	if err != nil {
		t.Fatalf("redelivery: unexpected error: %v", err)
	}
	if second.Text != "" {
		t.Errorf("redelivery should be suppressed, got %q", second.Text)
	}
}

func TestAdminClearSession(t *testing.T) {
	fx := newFixture(t, nil)
	user := "user-admin"

	fx.say(t, user, "Cotizar HLSO 16/20 con 20% de glaseo")
	if err := fx.engine.ClearSession(context.Background(), user); err != nil {
		t.Fatalf("clear session: unexpected error: %v", err)
	}

	cleared := fx.bus.cleared()
	if len(cleared) != 1 || cleared[0].Cause != "admin" {
		t.Fatalf("expected one admin clear event, got %+v", cleared)
	}

	// Unlike a soft reset, the admin wipe drops the last quote too.
	reply := fx.say(t, user, "modifica el flete a 0.30")
	wantContains(t, reply, "No hay una cotización previa")
}

func TestProductUnavailable(t *testing.T) {
	src := &fixedSource{rows: []catalog.PriceRecord{
		{Product: domain.ProductHLSO, Size: "16/20", BasePrice: 11.45, FixedCost: 0.29, Available: false, Origin: "sheet"},
	}}
	fx := newFixture(t, src)

	reply := fx.say(t, "user-off", "Cotizar HLSO 16/20 con 20% de glaseo")
	wantContains(t, reply, "SIN PRECIO ESTABLECIDO", "ventas@bgrexport.com")

	failures := fx.bus.failures()
	if len(failures) != 1 || failures[0].Reason != "price_not_set" {
		t.Fatalf("expected one price_not_set failure, got %+v", failures)
	}
}

func TestCatalogUnavailable(t *testing.T) {
	fx := newFixture(t, &fixedSource{err: errors.New("source offline")})

	reply := fx.say(t, "user-down", "Cotizar HLSO 16/20 con 20% de glaseo")
	wantContains(t, reply, "No puedo consultar precios")

	failures := fx.bus.failures()
	if len(failures) != 1 || failures[0].Reason != "catalog_unavailable" {
		t.Fatalf("expected one catalog_unavailable failure, got %+v", failures)
	}
}

func TestUnknownSizeListsCatalog(t *testing.T) {
	src := &fixedSource{rows: []catalog.PriceRecord{
		{Product: domain.ProductPDIQF, Size: "16/20", BasePrice: 13.56, FixedCost: 0.29, Available: true, Origin: "sheet"},
		{Product: domain.ProductPDIQF, Size: "21/25", BasePrice: 12.40, FixedCost: 0.29, Available: true, Origin: "sheet"},
		{Product: domain.ProductPDIQF, Size: "26/30", BasePrice: 11.70, FixedCost: 0.29, Available: true, Origin: "sheet"},
	}}
	fx := newFixture(t, src)

	reply := fx.say(t, "user-size", "Precio P&D IQF 20/30 con 20% glaseo")
	wantContains(t, reply,
		"La talla 20/30 no está disponible para P&D IQF",
		"16/20, 21/25, 26/30",
	)

	failures := fx.bus.failures()
	if len(failures) != 1 || failures[0].Reason != "unknown_size" {
		t.Fatalf("expected one unknown_size failure, got %+v", failures)
	}
}

// flakyRepo forces storage failures around an in-memory store.
type flakyRepo struct {
	inner   session.Repository
	getErr  error
	saveErr error
}

func (f *flakyRepo) Get(ctx context.Context, userID string) (*domain.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.inner.Get(ctx, userID)
}

func (f *flakyRepo) Save(ctx context.Context, s *domain.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.inner.Save(ctx, s)
}

func (f *flakyRepo) Delete(ctx context.Context, userID string) error {
	return f.inner.Delete(ctx, userID)
}

func TestSessionSaveFailureStillReplies(t *testing.T) {
	cfg := testConfig()
	log := logger.New("test")
	repo := &flakyRepo{
		inner:   session.NewMemoryRepository(cfg),
		saveErr: errors.New("redis down"),
	}
	eng := New(Deps{
		Sessions:  repo,
		Dedupe:    session.NewMemoryDeduper(cfg),
		Extractor: extractor.New(nil, cfg, log),
		Catalog:   catalog.NewStaticSource(),
		Bus:       &recordingBus{},
		Pricing:   cfg,
		Session:   cfg,
		Log:       log,
	})

	resp, err := eng.HandleMessage(context.Background(), InboundMessage{
		UserID: "user-flaky", Text: "Cotizar HLSO 16/20 con 20% de glaseo", Channel: "whatsapp",
	})
	if err != nil {
		t.Fatalf("a save failure must not fail the turn: %v", err)
	}
	wantContains(t, resp.Text, "$9.22/kg")
}

func TestSessionGetFailureFailsTurn(t *testing.T) {
	cfg := testConfig()
	log := logger.New("test")
	repo := &flakyRepo{
		inner:  session.NewMemoryRepository(cfg),
		getErr: errors.New("redis down"),
	}
	eng := New(Deps{
		Sessions:  repo,
		Dedupe:    session.NewMemoryDeduper(cfg),
		Extractor: extractor.New(nil, cfg, log),
		Catalog:   catalog.NewStaticSource(),
		Bus:       &recordingBus{},
		Pricing:   cfg,
		Session:   cfg,
		Log:       log,
	})

	_, err := eng.HandleMessage(context.Background(), InboundMessage{
		UserID: "user-flaky", Text: "Hola", Channel: "whatsapp",
	})
	if err == nil {
		t.Fatal("expected the turn to fail when the session store cannot be read")
	}
}
