package catalog

import (
	"context"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"
)

// Chain tries each source in order and answers with the first success.
// A source that is down or simply has no row falls through to the next;
// when every source fails, the most specific refusal wins so the client
// hears "no such size" rather than "catalog down" whenever possible.
type Chain struct {
	sources []Source
}

// NewChain builds the ranked source chain. Order matters: pass the
// authoritative source first.
func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

var (
	_ Source = (*Chain)(nil)
	_ Lister = (*Chain)(nil)
)

func (c *Chain) Price(ctx context.Context, product domain.Product, size domain.Size) (PriceRecord, error) {
	var firstErr error
	for _, src := range c.sources {
		record, err := src.Price(ctx, product, size)
		if err == nil {
			return record, nil
		}
		firstErr = moreSpecific(firstErr, err)
	}
	if firstErr == nil {
		firstErr = apperr.New(apperr.KindCatalogUnavailable, "no price sources configured")
	}
	return PriceRecord{}, firstErr
}

func (c *Chain) ValidSizes(ctx context.Context, product domain.Product) ([]domain.Size, error) {
	var firstErr error
	for _, src := range c.sources {
		sizes, err := src.ValidSizes(ctx, product)
		if err == nil && len(sizes) > 0 {
			return sizes, nil
		}
		firstErr = moreSpecific(firstErr, err)
	}
	if firstErr == nil {
		firstErr = apperr.New(apperr.KindCatalogUnavailable, "no price sources configured")
	}
	return nil, firstErr
}

func (c *Chain) FreightRate(ctx context.Context, destination string) (FreightRate, error) {
	var firstErr error
	for _, src := range c.sources {
		rate, err := src.FreightRate(ctx, destination)
		if err == nil {
			return rate, nil
		}
		firstErr = moreSpecific(firstErr, err)
	}
	if firstErr == nil {
		firstErr = apperr.New(apperr.KindCatalogUnavailable, "no price sources configured")
	}
	return FreightRate{}, firstErr
}

// Healthy reports healthy while at least one source can answer.
func (c *Chain) Healthy(ctx context.Context) error {
	var firstErr error
	for _, src := range c.sources {
		err := src.Healthy(ctx)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = apperr.New(apperr.KindCatalogUnavailable, "no price sources configured")
	}
	return firstErr
}

// ListPrices merges every listable source, first source winning on
// duplicate product and size pairs.
func (c *Chain) ListPrices(ctx context.Context) ([]PriceRecord, error) {
	seen := make(map[string]bool)
	var merged []PriceRecord

	for _, src := range c.sources {
		lister, ok := src.(Lister)
		if !ok {
			continue
		}
		records, err := lister.ListPrices(ctx)
		if err != nil {
			continue
		}
		for _, r := range records {
			key := string(r.Product) + "|" + string(r.Size)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, r)
		}
	}

	if len(merged) == 0 {
		return nil, apperr.New(apperr.KindCatalogUnavailable, "no price source could list prices")
	}
	return merged, nil
}

// specificity ranks refusals: a source that knows the product but not
// the size beats one that never heard of the product, which beats one
// that is down.
func specificity(err error) int {
	switch apperr.GetKind(err) {
	case apperr.KindUnknownSize:
		return 3
	case apperr.KindUnknownProduct:
		return 2
	case apperr.KindNotFound:
		return 2
	case apperr.KindCatalogUnavailable:
		return 1
	default:
		return 0
	}
}

func moreSpecific(current, candidate error) error {
	if candidate == nil {
		return current
	}
	if current == nil || specificity(candidate) > specificity(current) {
		return candidate
	}
	return current
}
