package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

// sheetFile is the on-disk shape of a price sheet. The sales desk
// maintains this file by hand, so names are forgiving: product and size
// spellings are normalized on load.
type sheetFile struct {
	FixedCost *float64 `yaml:"fixed_cost"`
	Products  []struct {
		Name   string             `yaml:"name"`
		Prices map[string]float64 `yaml:"prices"`
	} `yaml:"products"`
	Freight []struct {
		Destination string  `yaml:"destination"`
		Rate        float64 `yaml:"rate"`
		UsesPounds  bool    `yaml:"uses_pounds"`
	} `yaml:"freight"`
}

// SheetSource serves prices from a YAML sheet loaded at startup.
type SheetSource struct {
	prices    map[domain.Product]map[domain.Size]float64
	freight   map[string]FreightRate
	fixedCost float64
}

var (
	_ Source = (*SheetSource)(nil)
	_ Lister = (*SheetSource)(nil)
)

// LoadSheet reads and validates a price sheet. Unknown product names or
// size codes fail the load; a silently skipped row would surface later
// as a wrong quote.
func LoadSheet(path string) (*SheetSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price sheet: %w", err)
	}
	return parseSheet(data)
}

func parseSheet(data []byte) (*SheetSource, error) {
	var file sheetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse price sheet: %w", err)
	}

	src := &SheetSource{
		prices:    make(map[domain.Product]map[domain.Size]float64),
		freight:   make(map[string]FreightRate),
		fixedCost: DefaultFixedCost,
	}
	if file.FixedCost != nil {
		if *file.FixedCost < 0 {
			return nil, fmt.Errorf("price sheet: negative fixed cost %.2f", *file.FixedCost)
		}
		src.fixedCost = *file.FixedCost
	}

	for _, p := range file.Products {
		product, ok := domain.ParseProduct(p.Name)
		if !ok {
			return nil, fmt.Errorf("price sheet: unknown product %q", p.Name)
		}
		sizes := make(map[domain.Size]float64, len(p.Prices))
		for rawSize, price := range p.Prices {
			size, ok := domain.NormalizeSize(rawSize)
			if !ok {
				return nil, fmt.Errorf("price sheet: product %q has unknown size %q", p.Name, rawSize)
			}
			if price <= 0 {
				return nil, fmt.Errorf("price sheet: product %q size %q has non-positive price", p.Name, rawSize)
			}
			sizes[size] = price
		}
		src.prices[product] = sizes
	}

	for _, f := range file.Freight {
		if f.Rate <= 0 {
			return nil, fmt.Errorf("price sheet: destination %q has non-positive rate", f.Destination)
		}
		src.freight[normalizeDestination(f.Destination)] = FreightRate{
			Destination: f.Destination,
			Rate:        f.Rate,
			UsesPounds:  f.UsesPounds,
		}
	}

	return src, nil
}

func (s *SheetSource) Price(ctx context.Context, product domain.Product, size domain.Size) (PriceRecord, error) {
	return priceFrom(s.prices, product, size, s.fixedCost, "sheet")
}

func (s *SheetSource) ValidSizes(ctx context.Context, product domain.Product) ([]domain.Size, error) {
	return validSizesFrom(s.prices, product)
}

func (s *SheetSource) FreightRate(ctx context.Context, destination string) (FreightRate, error) {
	return freightRateFrom(s.freight, destination)
}

func (s *SheetSource) ListPrices(ctx context.Context) ([]PriceRecord, error) {
	return listPricesFrom(s.prices, s.fixedCost, "sheet"), nil
}

func (s *SheetSource) Healthy(ctx context.Context) error { return nil }
