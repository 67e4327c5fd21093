// Package calculator turns a complete pricing query plus a catalog price
// into FOB/CFR/DDP figures. The arithmetic is exact decimal work; rounding
// to cents happens once, at the final step.
package calculator

import (
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"

	"github.com/shopspring/decimal"
)

var (
	one         = decimal.NewFromInt(1)
	hundred     = decimal.NewFromInt(100)
	poundsPerKg = decimal.NewFromFloat(domain.PoundsPerKg)
)

// Result carries the priced figures for one product+size line.
// DDP stays nil unless the query was DDP with explicit freight.
type Result struct {
	NetPrice     float64
	GlaseoFactor float64
	FOBPrice     float64
	CFRPrice     float64
	DDPPrice     *float64
}

// glaseoFactor returns 1 - pct/100 as an exact decimal.
// For the accepted ladder 0..50 the factor lies in [0.5, 1.0].
func glaseoFactor(glaseoPct int) decimal.Decimal {
	return one.Sub(decimal.NewFromInt(int64(glaseoPct)).Div(hundred))
}

// roundCents rounds half away from zero to two decimals, which for
// positive prices is the commercial round-half-up.
func roundCents(d decimal.Decimal) float64 {
	rounded, _ := d.Round(2).Float64()
	return rounded
}

// Calculate prices one line:
//
//	net            = base - fixed
//	glazed         = net * (1 - pct/100)
//	fob_with_glaseo = glazed + fixed
//	cfr            = fob_with_glaseo + freight (0 when absent)
//	ddp            = cfr, only for DDP with explicit freight
//
// Freight is never substituted; a DDP request without freight is an error
// the caller turns into an elicitation question.
func Calculate(basePrice, fixedCost float64, glaseoPct int, freight *float64, isDDP bool) (Result, error) {
	if basePrice <= 0 {
		return Result{}, apperr.Validation("base price must be positive").WithOp("calculator.Calculate")
	}
	if fixedCost < 0 {
		return Result{}, apperr.Validation("fixed cost must not be negative").WithOp("calculator.Calculate")
	}
	if glaseoPct < 0 || glaseoPct > 50 {
		return Result{}, apperr.Newf(apperr.KindGlaseoOutOfRange, "glaseo %d%% is outside the accepted 0-50%% range", glaseoPct).
			WithOp("calculator.Calculate")
	}
	if freight != nil && *freight < 0 {
		return Result{}, apperr.New(apperr.KindFreightOutOfRange, "freight must not be negative").
			WithOp("calculator.Calculate")
	}
	if isDDP && freight == nil {
		return Result{}, apperr.New(apperr.KindMissingFreightForDDP, "a DDP quote needs an explicit freight rate").
			WithOp("calculator.Calculate")
	}

	base := decimal.NewFromFloat(basePrice)
	fixed := decimal.NewFromFloat(fixedCost)
	factor := glaseoFactor(glaseoPct)

	net := base.Sub(fixed)
	glazed := net.Mul(factor)
	fobWithGlaseo := glazed.Add(fixed)

	freightDec := decimal.Zero
	if freight != nil {
		freightDec = decimal.NewFromFloat(*freight)
	}
	cfr := fobWithGlaseo.Add(freightDec)

	result := Result{
		NetPrice:     roundCents(net),
		GlaseoFactor: mustFloat(factor),
		FOBPrice:     roundCents(fobWithGlaseo),
		CFRPrice:     roundCents(cfr),
	}

	if isDDP {
		ddp := roundCents(cfr)
		result.DDPPrice = &ddp
	}

	return result, nil
}

// PricePerPound converts a per-kilo price for clients who buy in pounds.
func PricePerPound(perKg float64) float64 {
	return roundCents(decimal.NewFromFloat(perKg).Div(poundsPerKg))
}

func mustFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
