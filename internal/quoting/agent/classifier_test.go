package agent

import (
	"strings"
	"testing"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

func TestSaveExtractionToQuery(t *testing.T) {
	glaseo := 20
	freight := 0.25
	qty := 1500.0

	in := SaveExtractionInput{
		Product:       " HLSO ",
		Size:          "16/20",
		GlaseoPct:     &glaseo,
		Freight:       &freight,
		Destination:   "Miami",
		IsDDP:         true,
		QuantityValue: &qty,
		QuantityUnit:  "LB",
		ClientName:    " Ocean Fresh ",
		Language:      "en",
		Intent:        "Quote",
		Confidence:    0.9,
	}

	q := in.toQuery()

	if q.Product != domain.ProductHLSO {
		t.Errorf("product: expected HLSO, got %q", q.Product)
	}
	if q.Size != "16/20" {
		t.Errorf("size: expected 16/20, got %q", q.Size)
	}
	if q.GlaseoPct == nil || *q.GlaseoPct != 20 {
		t.Errorf("glaseo: expected 20, got %v", q.GlaseoPct)
	}
	if q.Freight == nil || *q.Freight != 0.25 {
		t.Errorf("freight: expected 0.25, got %v", q.Freight)
	}
	if !q.IsDDP {
		t.Error("expected ddp flag")
	}
	if q.Quantity == nil || q.Quantity.Unit != "lb" || q.Quantity.Value != 1500 {
		t.Errorf("quantity: expected 1500 lb, got %+v", q.Quantity)
	}
	if !q.UsesPounds {
		t.Error("expected pounds pricing for lb quantity")
	}
	if q.ClientName != "Ocean Fresh" {
		t.Errorf("client: expected Ocean Fresh, got %q", q.ClientName)
	}
	if q.Language != domain.LanguageEN {
		t.Errorf("language: expected en, got %q", q.Language)
	}
	if q.Intent != domain.IntentQuote {
		t.Errorf("intent: expected quote, got %q", q.Intent)
	}
}

func TestSaveExtractionToQueryDefaults(t *testing.T) {
	q := SaveExtractionInput{Intent: "something else"}.toQuery()

	if q.Intent != domain.IntentUnknown {
		t.Errorf("expected unknown intent, got %q", q.Intent)
	}
	if q.Quantity != nil {
		t.Errorf("expected no quantity, got %+v", q.Quantity)
	}
	if q.Language != "" {
		t.Errorf("expected unset language, got %q", q.Language)
	}
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := buildExtractionPrompt("Cotizar HLSO 16/20", domain.LanguageES)

	for _, want := range []string{"HOSO", "P&D BLOQUE", "16/20", "U15", "Cotizar HLSO 16/20", "Spanish"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	prompt = buildExtractionPrompt("hello", "")
	if strings.Contains(prompt, "conversation so far") {
		t.Error("expected no language note without a hint")
	}
}
