// Package catalog answers two questions: what does a product cost per
// size, and what does a route ship for. Prices come from Postgres when
// configured, then a YAML price sheet, then the built-in table; the
// chain makes the fallback order explicit.
package catalog

import (
	"context"
	"strings"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

// DefaultFixedCost is the per-kilo fixed cost applied when a source does
// not carry its own figure. It matches the reference sheet's value.
const DefaultFixedCost = 0.29

// PriceRecord is one product+size row as a source stores it. Origin
// names the source that answered, for audit lines in logs and history.
// Available false means the sales desk switched the row off; the row is
// still returned so the caller can say so instead of quoting a stale
// fallback price.
type PriceRecord struct {
	Product   domain.Product `json:"product"`
	Size      domain.Size    `json:"size"`
	BasePrice float64        `json:"basePrice"`
	FixedCost float64        `json:"fixedCost"`
	Available bool           `json:"available"`
	Origin    string         `json:"origin"`
}

// FreightRate is a stored route rate. UsesPounds marks routes quoted per
// pound instead of per kilo.
type FreightRate struct {
	Destination string  `json:"destination"`
	Rate        float64 `json:"rate"`
	UsesPounds  bool    `json:"usesPounds"`
}

// Source serves price records and freight rates.
//
// Price distinguishes its failures by error kind: unknown_product and
// unknown_size are client-answerable, catalog_unavailable means the
// source itself is down.
type Source interface {
	Price(ctx context.Context, product domain.Product, size domain.Size) (PriceRecord, error)
	ValidSizes(ctx context.Context, product domain.Product) ([]domain.Size, error)
	FreightRate(ctx context.Context, destination string) (FreightRate, error)
	Healthy(ctx context.Context) error
}

// Lister enumerates everything a source knows, for the price list
// command and the admin surface. Not every source needs to support it.
type Lister interface {
	ListPrices(ctx context.Context) ([]PriceRecord, error)
}

var destinationFolder = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n")

// normalizeDestination folds case and accents so "Japón" and "japon"
// hit the same rate row.
func normalizeDestination(name string) string {
	return destinationFolder.Replace(strings.ToLower(strings.TrimSpace(name)))
}
