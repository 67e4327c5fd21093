package catalog

import (
	"context"
	"sort"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"
)

// staticPrices is the built-in price table, the last source in the
// chain. Values are FOB base prices in USD per kilo before glaze.
var staticPrices = map[domain.Product]map[domain.Size]float64{
	domain.ProductHOSO: {
		"20/30": 8.90,
		"30/40": 7.60,
		"40/50": 6.80,
		"50/60": 6.10,
		"60/70": 5.60,
		"70/80": 5.20,
	},
	domain.ProductHLSO: {
		"U15":   13.80,
		"16/20": 11.45,
		"21/25": 10.24,
		"26/30": 9.83,
		"31/35": 8.90,
		"36/40": 8.40,
		"41/50": 7.90,
		"51/60": 7.30,
		"61/70": 6.80,
		"71/90": 6.30,
	},
	domain.ProductPDIQF: {
		"16/20": 13.56,
		"21/25": 12.40,
		"26/30": 11.70,
		"31/35": 10.90,
		"36/40": 10.30,
		"41/50": 9.70,
		"51/60": 9.00,
		"61/70": 8.40,
		"71/90": 7.80,
	},
	domain.ProductPDBloque: {
		"16/20": 12.90,
		"21/25": 11.80,
		"26/30": 11.10,
		"31/35": 10.40,
		"36/40": 9.80,
		"41/50": 9.20,
		"51/60": 8.60,
		"61/70": 8.00,
		"71/90": 7.40,
	},
	domain.ProductEZPeel: {
		"16/20": 12.30,
		"21/25": 11.20,
		"26/30": 10.60,
		"31/35": 9.90,
		"36/40": 9.30,
		"41/50": 8.70,
	},
	domain.ProductPuDEuropa: {
		"26/30": 10.80,
		"31/35": 10.10,
		"36/40": 9.50,
		"41/50": 8.90,
		"51/60": 8.30,
		"61/70": 7.70,
		"71/90": 7.10,
	},
	domain.ProductPuDEEUU: {
		"26/30": 11.00,
		"31/35": 10.30,
		"36/40": 9.70,
		"41/50": 9.10,
		"51/60": 8.50,
		"61/70": 7.90,
		"71/90": 7.30,
	},
	domain.ProductCooked: {
		"16/20": 14.20,
		"21/25": 13.10,
		"26/30": 12.40,
		"31/35": 11.60,
		"36/40": 10.90,
		"41/50": 10.20,
	},
}

var staticFreight = map[string]FreightRate{
	"houston":     {Destination: "Houston", Rate: 0.20, UsesPounds: false},
	"miami":       {Destination: "Miami", Rate: 0.25, UsesPounds: true},
	"new york":    {Destination: "New York", Rate: 0.28, UsesPounds: true},
	"los angeles": {Destination: "Los Angeles", Rate: 0.30, UsesPounds: true},
	"madrid":      {Destination: "Madrid", Rate: 0.18, UsesPounds: false},
	"lisboa":      {Destination: "Lisboa", Rate: 0.18, UsesPounds: false},
}

// StaticSource serves the built-in table. It always answers, so the
// chain never falls through empty-handed.
type StaticSource struct{}

// NewStaticSource creates the built-in price source.
func NewStaticSource() *StaticSource { return &StaticSource{} }

var (
	_ Source = (*StaticSource)(nil)
	_ Lister = (*StaticSource)(nil)
)

func (s *StaticSource) Price(ctx context.Context, product domain.Product, size domain.Size) (PriceRecord, error) {
	return priceFrom(staticPrices, product, size, DefaultFixedCost, "static")
}

func (s *StaticSource) ValidSizes(ctx context.Context, product domain.Product) ([]domain.Size, error) {
	return validSizesFrom(staticPrices, product)
}

func (s *StaticSource) FreightRate(ctx context.Context, destination string) (FreightRate, error) {
	return freightRateFrom(staticFreight, destination)
}

func (s *StaticSource) ListPrices(ctx context.Context) ([]PriceRecord, error) {
	return listPricesFrom(staticPrices, DefaultFixedCost, "static"), nil
}

func (s *StaticSource) Healthy(ctx context.Context) error { return nil }

// The from helpers are shared with the sheet source, which carries the
// same map shapes loaded from YAML.

func priceFrom(prices map[domain.Product]map[domain.Size]float64, product domain.Product, size domain.Size, fixedCost float64, origin string) (PriceRecord, error) {
	sizes, ok := prices[product]
	if !ok {
		return PriceRecord{}, apperr.UnknownProduct(string(product))
	}
	price, ok := sizes[size]
	if !ok {
		return PriceRecord{}, apperr.UnknownSize(string(product), string(size))
	}
	return PriceRecord{
		Product:   product,
		Size:      size,
		BasePrice: price,
		FixedCost: fixedCost,
		Available: true,
		Origin:    origin,
	}, nil
}

func validSizesFrom(prices map[domain.Product]map[domain.Size]float64, product domain.Product) ([]domain.Size, error) {
	sizes, ok := prices[product]
	if !ok {
		return nil, apperr.UnknownProduct(string(product))
	}
	return sortSizes(sizes), nil
}

func freightRateFrom(rates map[string]FreightRate, destination string) (FreightRate, error) {
	rate, ok := rates[normalizeDestination(destination)]
	if !ok {
		return FreightRate{}, apperr.NotFound("no freight rate for " + destination)
	}
	return rate, nil
}

func listPricesFrom(prices map[domain.Product]map[domain.Size]float64, fixedCost float64, origin string) []PriceRecord {
	var records []PriceRecord
	for _, product := range domain.Products {
		sizes, ok := prices[product]
		if !ok {
			continue
		}
		for _, size := range sortSizes(sizes) {
			records = append(records, PriceRecord{
				Product:   product,
				Size:      size,
				BasePrice: sizes[size],
				FixedCost: fixedCost,
				Available: true,
				Origin:    origin,
			})
		}
	}
	return records
}

// sortSizes orders grades by the catalog order, so lists read smallest
// count first.
func sortSizes(available map[domain.Size]float64) []domain.Size {
	rank := make(map[domain.Size]int, len(domain.Sizes))
	for i, s := range domain.Sizes {
		rank[s] = i
	}

	out := make([]domain.Size, 0, len(available))
	for size := range available {
		out = append(out, size)
	}
	sort.Slice(out, func(i, j int) bool { return rank[out[i]] < rank[out[j]] })
	return out
}
