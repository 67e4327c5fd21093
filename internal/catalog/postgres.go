package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"
)

// PostgresSource serves prices from the price_records and freight_rates
// tables. It is the first source in the chain when a database is
// configured, and the one the admin surface writes to.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates the database-backed price source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

var (
	_ Source = (*PostgresSource)(nil)
	_ Lister = (*PostgresSource)(nil)
)

func (p *PostgresSource) Price(ctx context.Context, product domain.Product, size domain.Size) (PriceRecord, error) {
	query := `SELECT base_price, fixed_cost, available FROM price_records WHERE product = $1 AND size = $2`

	record := PriceRecord{Product: product, Size: size, Origin: "postgres"}
	err := p.pool.QueryRow(ctx, query, string(product), string(size)).Scan(
		&record.BasePrice, &record.FixedCost, &record.Available,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		known, lookupErr := p.hasProduct(ctx, product)
		if lookupErr != nil {
			return PriceRecord{}, lookupErr
		}
		if known {
			return PriceRecord{}, apperr.UnknownSize(string(product), string(size))
		}
		return PriceRecord{}, apperr.UnknownProduct(string(product))
	}
	if err != nil {
		return PriceRecord{}, apperr.CatalogUnavailable(fmt.Errorf("price %s %s: %w", product, size, err))
	}
	return record, nil
}

func (p *PostgresSource) hasProduct(ctx context.Context, product domain.Product) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM price_records WHERE product = $1)`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, string(product)).Scan(&exists); err != nil {
		return false, apperr.CatalogUnavailable(fmt.Errorf("product lookup %s: %w", product, err))
	}
	return exists, nil
}

func (p *PostgresSource) ValidSizes(ctx context.Context, product domain.Product) ([]domain.Size, error) {
	query := `SELECT size FROM price_records WHERE product = $1 AND available`

	rows, err := p.pool.Query(ctx, query, string(product))
	if err != nil {
		return nil, apperr.CatalogUnavailable(fmt.Errorf("valid sizes %s: %w", product, err))
	}
	defer rows.Close()

	available := make(map[domain.Size]float64)
	for rows.Next() {
		var size string
		if err := rows.Scan(&size); err != nil {
			return nil, apperr.CatalogUnavailable(fmt.Errorf("valid sizes %s: %w", product, err))
		}
		available[domain.Size(size)] = 0
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.CatalogUnavailable(fmt.Errorf("valid sizes %s: %w", product, err))
	}
	if len(available) == 0 {
		return nil, apperr.UnknownProduct(string(product))
	}
	return sortSizes(available), nil
}

func (p *PostgresSource) FreightRate(ctx context.Context, destination string) (FreightRate, error) {
	query := `SELECT destination, rate, uses_pounds FROM freight_rates WHERE lower(destination) = lower($1)`

	var rate FreightRate
	err := p.pool.QueryRow(ctx, query, strings.TrimSpace(destination)).Scan(
		&rate.Destination, &rate.Rate, &rate.UsesPounds,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return FreightRate{}, apperr.NotFound("no freight rate for " + destination)
	}
	if err != nil {
		return FreightRate{}, apperr.CatalogUnavailable(fmt.Errorf("freight rate %s: %w", destination, err))
	}
	return rate, nil
}

func (p *PostgresSource) ListPrices(ctx context.Context) ([]PriceRecord, error) {
	query := `SELECT product, size, base_price, fixed_cost, available FROM price_records ORDER BY product, size`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, apperr.CatalogUnavailable(fmt.Errorf("list prices: %w", err))
	}
	defer rows.Close()

	var records []PriceRecord
	for rows.Next() {
		record := PriceRecord{Origin: "postgres"}
		var product, size string
		if err := rows.Scan(&product, &size, &record.BasePrice, &record.FixedCost, &record.Available); err != nil {
			return nil, apperr.CatalogUnavailable(fmt.Errorf("list prices: %w", err))
		}
		record.Product = domain.Product(product)
		record.Size = domain.Size(size)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.CatalogUnavailable(fmt.Errorf("list prices: %w", err))
	}
	return records, nil
}

func (p *PostgresSource) Healthy(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return apperr.CatalogUnavailable(fmt.Errorf("ping: %w", err))
	}
	return nil
}

// UpsertPrice creates or updates one price row.
func (p *PostgresSource) UpsertPrice(ctx context.Context, record PriceRecord) error {
	query := `
		INSERT INTO price_records (product, size, base_price, fixed_cost, available)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product, size) DO UPDATE SET
			base_price = EXCLUDED.base_price,
			fixed_cost = EXCLUDED.fixed_cost,
			available  = EXCLUDED.available,
			updated_at = now()`

	_, err := p.pool.Exec(ctx, query,
		string(record.Product), string(record.Size), record.BasePrice, record.FixedCost, record.Available,
	)
	if err != nil {
		return fmt.Errorf("upsert price %s %s: %w", record.Product, record.Size, err)
	}
	return nil
}

// DeletePrice removes one price row.
func (p *PostgresSource) DeletePrice(ctx context.Context, product domain.Product, size domain.Size) error {
	query := `DELETE FROM price_records WHERE product = $1 AND size = $2`

	result, err := p.pool.Exec(ctx, query, string(product), string(size))
	if err != nil {
		return fmt.Errorf("delete price %s %s: %w", product, size, err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(fmt.Sprintf("no price for %s %s", product, size))
	}
	return nil
}

// UpsertFreightRate creates or updates one route rate.
func (p *PostgresSource) UpsertFreightRate(ctx context.Context, rate FreightRate) error {
	query := `
		INSERT INTO freight_rates (destination, rate, uses_pounds)
		VALUES ($1, $2, $3)
		ON CONFLICT (destination) DO UPDATE SET rate = EXCLUDED.rate, uses_pounds = EXCLUDED.uses_pounds, updated_at = now()`

	if _, err := p.pool.Exec(ctx, query, rate.Destination, rate.Rate, rate.UsesPounds); err != nil {
		return fmt.Errorf("upsert freight rate %s: %w", rate.Destination, err)
	}
	return nil
}

// ListFreightRates returns every stored route rate.
func (p *PostgresSource) ListFreightRates(ctx context.Context) ([]FreightRate, error) {
	query := `SELECT destination, rate, uses_pounds FROM freight_rates ORDER BY destination`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, apperr.CatalogUnavailable(fmt.Errorf("list freight rates: %w", err))
	}
	defer rows.Close()

	var rates []FreightRate
	for rows.Next() {
		var r FreightRate
		if err := rows.Scan(&r.Destination, &r.Rate, &r.UsesPounds); err != nil {
			return nil, apperr.CatalogUnavailable(fmt.Errorf("list freight rates: %w", err))
		}
		rates = append(rates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.CatalogUnavailable(fmt.Errorf("list freight rates: %w", err))
	}
	return rates, nil
}
