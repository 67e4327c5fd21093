package catalog

import (
	"context"
	"testing"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"
)

func TestStaticSourcePrice(t *testing.T) {
	src := NewStaticSource()
	ctx := context.Background()

	tests := []struct {
		name     string
		product  domain.Product
		size     domain.Size
		want     float64
		wantKind apperr.Kind
	}{
		{name: "hlso 16/20", product: domain.ProductHLSO, size: "16/20", want: 11.45},
		{name: "hoso head-on size", product: domain.ProductHOSO, size: "20/30", want: 8.90},
		{name: "cooked smallest grade", product: domain.ProductCooked, size: "16/20", want: 14.20},
		{name: "hlso has no head-on size", product: domain.ProductHLSO, size: "20/30", wantKind: apperr.KindUnknownSize},
		{name: "unknown product", product: domain.Product("TILAPIA"), size: "16/20", wantKind: apperr.KindUnknownProduct},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record, err := src.Price(ctx, tc.product, tc.size)
			if tc.wantKind != apperr.KindUnknown {
				if err == nil {
					t.Fatalf("expected error kind %v, got record %+v", tc.wantKind, record)
				}
				if kind := apperr.GetKind(err); kind != tc.wantKind {
					t.Fatalf("expected kind %v, got %v (%v)", tc.wantKind, kind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if record.BasePrice != tc.want {
				t.Errorf("expected base price %.2f, got %.2f", tc.want, record.BasePrice)
			}
			if record.FixedCost != DefaultFixedCost {
				t.Errorf("expected fixed cost %.2f, got %.2f", DefaultFixedCost, record.FixedCost)
			}
			if !record.Available {
				t.Error("expected built-in rows to be available")
			}
			if record.Origin != "static" {
				t.Errorf("expected origin static, got %s", record.Origin)
			}
		})
	}
}

func TestStaticSourceValidSizes(t *testing.T) {
	src := NewStaticSource()

	sizes, err := src.ValidSizes(context.Background(), domain.ProductHLSO)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Size{"U15", "16/20", "21/25", "26/30", "31/35", "36/40", "41/50", "51/60", "61/70", "71/90"}
	if len(sizes) != len(want) {
		t.Fatalf("expected %d sizes, got %d: %v", len(want), len(sizes), sizes)
	}
	for i, s := range want {
		if sizes[i] != s {
			t.Errorf("position %d: expected %s, got %s", i, s, sizes[i])
		}
	}

	if _, err := src.ValidSizes(context.Background(), domain.Product("TILAPIA")); apperr.GetKind(err) != apperr.KindUnknownProduct {
		t.Errorf("expected unknown product kind, got %v", err)
	}
}

func TestStaticSourceFreightRate(t *testing.T) {
	src := NewStaticSource()
	ctx := context.Background()

	rate, err := src.FreightRate(ctx, "Houston")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.Rate != 0.20 || rate.UsesPounds {
		t.Errorf("expected 0.20 per kilo, got %.2f pounds=%v", rate.Rate, rate.UsesPounds)
	}

	rate, err = src.FreightRate(ctx, "  MIAMI ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.Rate != 0.25 || !rate.UsesPounds {
		t.Errorf("expected 0.25 per pound, got %.2f pounds=%v", rate.Rate, rate.UsesPounds)
	}

	if _, err := src.FreightRate(ctx, "Atlantis"); apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("expected not found for unknown route, got %v", err)
	}
}

const testSheet = `
fixed_cost: 0.32
products:
  - name: hlso
    prices:
      "16-20": 12.00
      "21/25": 10.80
  - name: hoso
    prices:
      "30/40": 8.10
freight:
  - destination: Japón
    rate: 0.45
  - destination: Veracruz
    rate: 0.22
    uses_pounds: true
`

func TestSheetSource(t *testing.T) {
	src, err := parseSheet([]byte(testSheet))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	ctx := context.Background()

	record, err := src.Price(ctx, domain.ProductHLSO, "16/20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.BasePrice != 12.00 {
		t.Errorf("expected sheet price 12.00, got %.2f", record.BasePrice)
	}
	if record.FixedCost != 0.32 {
		t.Errorf("expected sheet fixed cost 0.32, got %.2f", record.FixedCost)
	}
	if record.Origin != "sheet" {
		t.Errorf("expected origin sheet, got %s", record.Origin)
	}

	record, err = src.Price(ctx, domain.ProductHOSO, "30/40")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.BasePrice != 8.10 {
		t.Errorf("expected 8.10 for HOSO 30/40, got %.2f", record.BasePrice)
	}

	if _, err := src.Price(ctx, domain.ProductHLSO, "36/40"); apperr.GetKind(err) != apperr.KindUnknownSize {
		t.Errorf("expected unknown size for grade missing from sheet, got %v", err)
	}

	rate, err := src.FreightRate(ctx, "japon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.Rate != 0.45 || rate.Destination != "Japón" {
		t.Errorf("expected 0.45 to Japón, got %.2f to %s", rate.Rate, rate.Destination)
	}

	rate, err = src.FreightRate(ctx, "veracruz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rate.UsesPounds {
		t.Error("expected Veracruz rate in pounds")
	}
}

func TestSheetSourceDefaultFixedCost(t *testing.T) {
	src, err := parseSheet([]byte("products:\n  - name: hlso\n    prices:\n      \"16/20\": 11.00\n"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	record, err := src.Price(context.Background(), domain.ProductHLSO, "16/20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.FixedCost != DefaultFixedCost {
		t.Errorf("expected default fixed cost %.2f, got %.2f", DefaultFixedCost, record.FixedCost)
	}
}

func TestParseSheetRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown product",
			yaml: "products:\n  - name: tilapia\n    prices:\n      \"16/20\": 9.00\n",
		},
		{
			name: "unknown size",
			yaml: "products:\n  - name: hlso\n    prices:\n      \"12/14\": 9.00\n",
		},
		{
			name: "non-positive price",
			yaml: "products:\n  - name: hlso\n    prices:\n      \"16/20\": 0\n",
		},
		{
			name: "non-positive freight",
			yaml: "freight:\n  - destination: Miami\n    rate: -0.1\n",
		},
		{
			name: "negative fixed cost",
			yaml: "fixed_cost: -0.29\n",
		},
		{
			name: "broken yaml",
			yaml: "products: [",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseSheet([]byte(tc.yaml)); err == nil {
				t.Error("expected parse error, got nil")
			}
		})
	}
}

// failingSource errors every call with a fixed kind, standing in for a
// source that is down or missing a row.
type failingSource struct {
	err error
}

func (f failingSource) Price(ctx context.Context, product domain.Product, size domain.Size) (PriceRecord, error) {
	return PriceRecord{}, f.err
}

func (f failingSource) ValidSizes(ctx context.Context, product domain.Product) ([]domain.Size, error) {
	return nil, f.err
}

func (f failingSource) FreightRate(ctx context.Context, destination string) (FreightRate, error) {
	return FreightRate{}, f.err
}

func (f failingSource) Healthy(ctx context.Context) error { return f.err }

func TestChainFallsThrough(t *testing.T) {
	down := failingSource{err: apperr.CatalogUnavailable(context.DeadlineExceeded)}
	chain := NewChain(down, NewStaticSource())
	ctx := context.Background()

	record, err := chain.Price(ctx, domain.ProductHLSO, "16/20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.BasePrice != 11.45 {
		t.Errorf("expected fallback price 11.45, got %.2f", record.BasePrice)
	}
	if record.Origin != "static" {
		t.Errorf("expected fallback origin static, got %s", record.Origin)
	}

	rate, err := chain.FreightRate(ctx, "Houston")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.Rate != 0.20 {
		t.Errorf("expected fallback rate 0.20, got %.2f", rate.Rate)
	}

	sizes, err := chain.ValidSizes(ctx, domain.ProductHOSO)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sizes) != 6 {
		t.Errorf("expected 6 head-on sizes, got %d", len(sizes))
	}

	if err := chain.Healthy(ctx); err != nil {
		t.Errorf("expected chain healthy while one source answers, got %v", err)
	}
}

func TestChainPrefersSpecificError(t *testing.T) {
	ctx := context.Background()

	// One source is down, another knows the product but not the size.
	// The size refusal is the one worth telling the client about.
	chain := NewChain(
		failingSource{err: apperr.CatalogUnavailable(context.DeadlineExceeded)},
		NewStaticSource(),
	)
	_, err := chain.Price(ctx, domain.ProductHLSO, "20/30")
	if kind := apperr.GetKind(err); kind != apperr.KindUnknownSize {
		t.Errorf("expected unknown size to win, got %v (%v)", kind, err)
	}

	// Order must not matter for the ranking.
	chain = NewChain(
		NewStaticSource(),
		failingSource{err: apperr.CatalogUnavailable(context.DeadlineExceeded)},
	)
	_, err = chain.Price(ctx, domain.ProductHLSO, "20/30")
	if kind := apperr.GetKind(err); kind != apperr.KindUnknownSize {
		t.Errorf("expected unknown size to win regardless of order, got %v (%v)", kind, err)
	}

	// All sources down surfaces the outage.
	down := failingSource{err: apperr.CatalogUnavailable(context.DeadlineExceeded)}
	chain = NewChain(down)
	_, err = chain.Price(ctx, domain.ProductHLSO, "16/20")
	if kind := apperr.GetKind(err); kind != apperr.KindCatalogUnavailable {
		t.Errorf("expected catalog unavailable, got %v (%v)", kind, err)
	}
	if err := chain.Healthy(ctx); apperr.GetKind(err) != apperr.KindCatalogUnavailable {
		t.Errorf("expected unhealthy chain, got %v", err)
	}
}

func TestChainListPricesMerges(t *testing.T) {
	sheet, err := parseSheet([]byte(testSheet))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	chain := NewChain(sheet, NewStaticSource())

	records, err := chain.ListPrices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byKey := make(map[string]PriceRecord, len(records))
	for _, r := range records {
		key := string(r.Product) + "|" + string(r.Size)
		if _, dup := byKey[key]; dup {
			t.Fatalf("duplicate entry for %s", key)
		}
		byKey[key] = r
	}

	// The sheet overrides the built-in price where both carry the row.
	if got := byKey["HLSO|16/20"]; got.BasePrice != 12.00 || got.Origin != "sheet" {
		t.Errorf("expected sheet to win for HLSO 16/20, got %.2f from %s", got.BasePrice, got.Origin)
	}
	// Rows only the built-in table carries still appear.
	if got := byKey["COOKED|16/20"]; got.BasePrice != 14.20 || got.Origin != "static" {
		t.Errorf("expected built-in COOKED 16/20 at 14.20, got %.2f from %s", got.BasePrice, got.Origin)
	}
}
