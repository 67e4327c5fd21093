package catalog

import (
	"context"
	"sync/atomic"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

// ReloadableSheet serves a price sheet that the admin surface can swap
// for a fresh copy of the file without a restart. Lookups read an
// immutable snapshot, so a reload never blocks quoting.
type ReloadableSheet struct {
	path    string
	current atomic.Pointer[SheetSource]
}

var (
	_ Source = (*ReloadableSheet)(nil)
	_ Lister = (*ReloadableSheet)(nil)
)

// LoadReloadableSheet loads the sheet once and keeps the path for later
// reloads.
func LoadReloadableSheet(path string) (*ReloadableSheet, error) {
	src, err := LoadSheet(path)
	if err != nil {
		return nil, err
	}

	r := &ReloadableSheet{path: path}
	r.current.Store(src)
	return r, nil
}

// Reload re-reads the file. A file that fails validation leaves the
// live snapshot untouched.
func (r *ReloadableSheet) Reload() error {
	src, err := LoadSheet(r.path)
	if err != nil {
		return err
	}
	r.current.Store(src)
	return nil
}

func (r *ReloadableSheet) Price(ctx context.Context, product domain.Product, size domain.Size) (PriceRecord, error) {
	return r.current.Load().Price(ctx, product, size)
}

func (r *ReloadableSheet) ValidSizes(ctx context.Context, product domain.Product) ([]domain.Size, error) {
	return r.current.Load().ValidSizes(ctx, product)
}

func (r *ReloadableSheet) FreightRate(ctx context.Context, destination string) (FreightRate, error) {
	return r.current.Load().FreightRate(ctx, destination)
}

func (r *ReloadableSheet) ListPrices(ctx context.Context) ([]PriceRecord, error) {
	return r.current.Load().ListPrices(ctx)
}

func (r *ReloadableSheet) Healthy(ctx context.Context) error {
	return r.current.Load().Healthy(ctx)
}
