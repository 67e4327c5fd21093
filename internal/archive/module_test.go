package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"

	"github.com/google/uuid"
)

type testUploader struct {
	putCalls int
	lastKey  string
	lastDoc  string
	putErr   error
	urlCalls int
	url      string
}

func (u *testUploader) Put(_ context.Context, key, document string) error {
	u.putCalls++
	u.lastKey = key
	u.lastDoc = document
	return u.putErr
}

func (u *testUploader) DownloadURL(_ context.Context, key string) (string, error) {
	u.urlCalls++
	return u.url, nil
}

type testMessenger struct {
	calls   int
	lastTo  string
	lastMsg string
	err     error
}

func (m *testMessenger) SendMessage(_ context.Context, recipient, message string) error {
	m.calls++
	m.lastTo = recipient
	m.lastMsg = message
	return m.err
}

func pct(v int) *int            { return &v }
func amount(v float64) *float64 { return &v }

func fixedQuoteEvent() events.QuoteGenerated {
	return events.QuoteGenerated{
		BaseEvent: events.BaseEvent{Timestamp: time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)},
		QuoteID:   uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		UserID:    "593991234567",
		Channel:   "whatsapp",
		Product:   "HLSO",
		Size:      "16/20",
		GlaseoPct: pct(20),
		FOBPrice:  9.22,
		Language:  "es",
	}
}

func TestRenderProforma(t *testing.T) {
	e := fixedQuoteEvent()
	e.Freight = amount(0.10)
	e.CFRPrice = amount(9.32)

	doc := renderProforma(e)

	for _, want := range []string{
		"BGR EXPORT - PROFORMA DE COTIZACIÓN",
		"Referencia: 11111111",
		"Fecha: 2026-02-14",
		"Cliente: 593991234567",
		"Canal: whatsapp",
		"Producto: HLSO 16/20",
		"Glaseo: 20%",
		"FOB: $9.22/kg",
		"CFR: $9.32/kg (flete $0.10)",
		"Precios FOB sujetos a confirmación final.",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestRenderProformaEnglishDDP(t *testing.T) {
	e := fixedQuoteEvent()
	e.Language = "en"
	e.GlaseoPct = pct(0)
	e.FOBPrice = 11.45
	e.Freight = amount(0.20)
	e.DDPPrice = amount(11.65)
	e.Destination = "Houston"

	doc := renderProforma(e)

	for _, want := range []string{
		"BGR EXPORT - QUOTATION PROFORMA",
		"Glaze: 0%",
		"FOB: $11.45/kg",
		"DDP: $11.65/kg (freight $0.20)",
		"Destination: Houston",
		"FOB prices subject to final confirmation.",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "CFR:") {
		t.Errorf("DDP document should not list a CFR price:\n%s", doc)
	}
}

func TestRenderMultiProforma(t *testing.T) {
	e := events.MultiQuoteGenerated{
		BaseEvent: events.BaseEvent{Timestamp: time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)},
		BatchID:   uuid.MustParse("aaaaaaaa-2222-3333-4444-555555555555"),
		UserID:    "593991234567",
		Channel:   "whatsapp",
		Items: []events.QuoteGenerated{
			{Product: "HLSO", Size: "16/20", GlaseoPct: pct(20), FOBPrice: 9.22},
			{Product: "HOSO", Size: "30/40", GlaseoPct: pct(20), FOBPrice: 6.14},
		},
		FailureCount: 1,
		Language:     "es",
	}

	doc := renderMultiProforma(e)

	for _, want := range []string{
		"BGR EXPORT - PROFORMA CONSOLIDADA",
		"Referencia: aaaaaaaa",
		"1. HLSO 16/20",
		"2. HOSO 30/40",
		"Productos sin precio: 1",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestHandleQuoteGeneratedArchivesAndSendsLink(t *testing.T) {
	store := &testUploader{url: "https://minio.local/proformas/doc.txt?sig=abc"}
	wa := &testMessenger{}
	m := New(store, logger.New("development"))
	m.SetWhatsAppSender(wa)

	e := fixedQuoteEvent()
	if err := m.Handle(context.Background(), e); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if store.putCalls != 1 {
		t.Fatalf("expected 1 upload, got %d", store.putCalls)
	}
	wantKey := fmt.Sprintf("593991234567/%s.txt", e.QuoteID)
	if store.lastKey != wantKey {
		t.Errorf("expected key %s, got %s", wantKey, store.lastKey)
	}
	if wa.calls != 1 {
		t.Fatalf("expected 1 link message, got %d", wa.calls)
	}
	if wa.lastTo != "593991234567" {
		t.Errorf("expected link sent to client, got %s", wa.lastTo)
	}
	if !strings.Contains(wa.lastMsg, "Proforma disponible") || !strings.Contains(wa.lastMsg, store.url) {
		t.Errorf("unexpected link message: %s", wa.lastMsg)
	}
}

func TestHandleQuoteGeneratedEnglishLink(t *testing.T) {
	store := &testUploader{url: "https://minio.local/proformas/doc.txt"}
	wa := &testMessenger{}
	m := New(store, logger.New("development"))
	m.SetWhatsAppSender(wa)

	e := fixedQuoteEvent()
	e.Language = "en"
	if err := m.Handle(context.Background(), e); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !strings.Contains(wa.lastMsg, "Proforma available") {
		t.Errorf("expected English link message, got %s", wa.lastMsg)
	}
}

func TestHandleEmailChannelSkipsLink(t *testing.T) {
	store := &testUploader{url: "https://minio.local/proformas/doc.txt"}
	wa := &testMessenger{}
	m := New(store, logger.New("development"))
	m.SetWhatsAppSender(wa)

	e := fixedQuoteEvent()
	e.Channel = "email"
	e.UserID = "client@example.com"
	if err := m.Handle(context.Background(), e); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if store.putCalls != 1 {
		t.Errorf("expected document archived for email channel, got %d uploads", store.putCalls)
	}
	if wa.calls != 0 {
		t.Errorf("expected no link message on email channel, got %d", wa.calls)
	}
}

func TestHandleUploadFailure(t *testing.T) {
	store := &testUploader{putErr: errors.New("bucket unreachable")}
	wa := &testMessenger{}
	m := New(store, logger.New("development"))
	m.SetWhatsAppSender(wa)

	err := m.Handle(context.Background(), fixedQuoteEvent())
	if err == nil {
		t.Fatal("expected error when upload fails")
	}
	if wa.calls != 0 {
		t.Errorf("expected no link message after failed upload, got %d", wa.calls)
	}
}

func TestHandleLinkDeliveryFailureIsSwallowed(t *testing.T) {
	store := &testUploader{url: "https://minio.local/proformas/doc.txt"}
	wa := &testMessenger{err: errors.New("gateway down")}
	m := New(store, logger.New("development"))
	m.SetWhatsAppSender(wa)

	if err := m.Handle(context.Background(), fixedQuoteEvent()); err != nil {
		t.Fatalf("expected archived document to win over lost link, got %v", err)
	}
}
