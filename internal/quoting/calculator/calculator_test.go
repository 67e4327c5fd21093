package calculator

import (
	"math"
	"testing"

	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"
)

func floatPtr(v float64) *float64 { return &v }

func TestGlaseoFactorLadder(t *testing.T) {
	expected := map[int]float64{0: 1.0, 10: 0.9, 20: 0.8, 30: 0.7, 40: 0.6, 50: 0.5}

	for pct, want := range expected {
		for run := 0; run < 3; run++ {
			result, err := Calculate(11.45, 0.25, pct, nil, false)
			if err != nil {
				t.Fatalf("glaseo %d%%: unexpected error: %v", pct, err)
			}
			if math.Abs(result.GlaseoFactor-want) > 1e-9 {
				t.Errorf("glaseo %d%%: expected factor %v, got %v", pct, want, result.GlaseoFactor)
			}
		}
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		basePrice float64
		fixedCost float64
		glaseoPct int
		freight   *float64
		isDDP     bool
		wantFOB   float64
		wantCFR   float64
		wantDDP   *float64
	}{
		{
			name:      "hlso 16/20 with 20 percent glaseo and no freight",
			basePrice: 11.45,
			fixedCost: 0.25,
			glaseoPct: 20,
			wantFOB:   9.21,
			wantCFR:   9.21,
		},
		{
			name:      "hlso 16/20 ddp with freight",
			basePrice: 11.45,
			fixedCost: 0.25,
			glaseoPct: 20,
			freight:   floatPtr(0.25),
			isDDP:     true,
			wantFOB:   9.21,
			wantCFR:   9.46,
			wantDDP:   floatPtr(9.46),
		},
		{
			name:      "zero glaseo keeps the base price as fob",
			basePrice: 11.45,
			fixedCost: 0.25,
			glaseoPct: 0,
			wantFOB:   11.45,
			wantCFR:   11.45,
		},
		{
			name:      "hlso 21/25 with 10 percent glaseo",
			basePrice: 10.24,
			fixedCost: 0.25,
			glaseoPct: 10,
			wantFOB:   9.24,
			wantCFR:   9.24,
		},
		{
			name:      "rounding happens only at the final step",
			basePrice: 9.83,
			fixedCost: 0.25,
			glaseoPct: 30,
			wantFOB:   6.96, // 9.58*0.7+0.25 = 6.956, rounded half-up once
			wantCFR:   6.96,
		},
		{
			name:      "pd iqf 16/20 with freight but not ddp",
			basePrice: 13.56,
			fixedCost: 0.25,
			glaseoPct: 20,
			freight:   floatPtr(0.20),
			wantFOB:   10.90,
			wantCFR:   11.10,
		},
		{
			name:      "zero freight is allowed explicitly",
			basePrice: 11.45,
			fixedCost: 0.25,
			glaseoPct: 20,
			freight:   floatPtr(0),
			wantFOB:   9.21,
			wantCFR:   9.21,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Calculate(tt.basePrice, tt.fixedCost, tt.glaseoPct, tt.freight, tt.isDDP)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.FOBPrice != tt.wantFOB {
				t.Errorf("expected FOB %.2f, got %.2f", tt.wantFOB, result.FOBPrice)
			}
			if result.CFRPrice != tt.wantCFR {
				t.Errorf("expected CFR %.2f, got %.2f", tt.wantCFR, result.CFRPrice)
			}
			switch {
			case tt.wantDDP == nil && result.DDPPrice != nil:
				t.Errorf("expected no DDP price, got %.2f", *result.DDPPrice)
			case tt.wantDDP != nil && result.DDPPrice == nil:
				t.Errorf("expected DDP %.2f, got none", *tt.wantDDP)
			case tt.wantDDP != nil && *result.DDPPrice != *tt.wantDDP:
				t.Errorf("expected DDP %.2f, got %.2f", *tt.wantDDP, *result.DDPPrice)
			}
		})
	}
}

func TestCalculateCFRDecomposition(t *testing.T) {
	basePrices := []float64{9.83, 10.24, 11.45, 13.56}
	freights := []float64{0, 0.15, 0.20, 0.25, 1.10}
	glaseos := []int{0, 10, 20, 30, 40, 50}

	for _, base := range basePrices {
		for _, freight := range freights {
			for _, pct := range glaseos {
				result, err := Calculate(base, 0.25, pct, &freight, false)
				if err != nil {
					t.Fatalf("base %.2f freight %.2f glaseo %d: unexpected error: %v", base, freight, pct, err)
				}
				if diff := math.Abs(result.CFRPrice - (result.FOBPrice + freight)); diff > 0.01 {
					t.Errorf("base %.2f freight %.2f glaseo %d: CFR %.2f differs from FOB+freight %.2f by %.4f",
						base, freight, pct, result.CFRPrice, result.FOBPrice+freight, diff)
				}
			}
		}
	}
}

func TestCalculateRejections(t *testing.T) {
	tests := []struct {
		name      string
		basePrice float64
		fixedCost float64
		glaseoPct int
		freight   *float64
		isDDP     bool
		wantKind  apperr.Kind
	}{
		{
			name:      "glaseo above the ladder",
			basePrice: 11.45,
			fixedCost: 0.25,
			glaseoPct: 60,
			wantKind:  apperr.KindGlaseoOutOfRange,
		},
		{
			name:      "negative glaseo",
			basePrice: 11.45,
			fixedCost: 0.25,
			glaseoPct: -5,
			wantKind:  apperr.KindGlaseoOutOfRange,
		},
		{
			name:      "negative freight",
			basePrice: 11.45,
			fixedCost: 0.25,
			glaseoPct: 20,
			freight:   floatPtr(-0.10),
			wantKind:  apperr.KindFreightOutOfRange,
		},
		{
			name:      "ddp without freight is never defaulted",
			basePrice: 11.45,
			fixedCost: 0.25,
			glaseoPct: 20,
			isDDP:     true,
			wantKind:  apperr.KindMissingFreightForDDP,
		},
		{
			name:      "zero base price",
			basePrice: 0,
			fixedCost: 0.25,
			glaseoPct: 20,
			wantKind:  apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.basePrice, tt.fixedCost, tt.glaseoPct, tt.freight, tt.isDDP)
			if err == nil {
				t.Fatal("expected an error, got none")
			}
			if got := apperr.GetKind(err); got != tt.wantKind {
				t.Errorf("expected kind %v, got %v", tt.wantKind, got)
			}
		})
	}
}

func TestPricePerPound(t *testing.T) {
	tests := []struct {
		perKg float64
		want  float64
	}{
		{11.45, 5.19},
		{9.21, 4.18},
		{2.20462262185, 1.00},
	}

	for _, tt := range tests {
		if got := PricePerPound(tt.perKg); got != tt.want {
			t.Errorf("PricePerPound(%v): expected %v, got %v", tt.perKg, tt.want, got)
		}
	}
}
