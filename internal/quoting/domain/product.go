// Package domain holds the shared vocabulary of the quoting engine:
// product and size enums, the structured query, quote results and the
// conversation session. It has no dependencies on transport or storage.
package domain

import "strings"

// Product is a catalog product code.
type Product string

const (
	ProductHOSO      Product = "HOSO"
	ProductHLSO      Product = "HLSO"
	ProductPDIQF     Product = "P&D IQF"
	ProductPDBloque  Product = "P&D BLOQUE"
	ProductEZPeel    Product = "EZ PEEL"
	ProductPuDEuropa Product = "PuD-EUROPA"
	ProductPuDEEUU   Product = "PuD-EEUU"
	ProductCooked    Product = "COOKED"
)

// Products lists every valid product code, in catalog order.
var Products = []Product{
	ProductHOSO,
	ProductHLSO,
	ProductPDIQF,
	ProductPDBloque,
	ProductEZPeel,
	ProductPuDEuropa,
	ProductPuDEEUU,
	ProductCooked,
}

// Valid reports whether p is one of the catalog product codes.
func (p Product) Valid() bool {
	for _, known := range Products {
		if p == known {
			return true
		}
	}
	return false
}

func (p Product) String() string { return string(p) }

// productCodes maps normalized code spellings to their canonical product.
// Phrase-level aliases ("sin cabeza", "head on", ...) are handled by the
// extractor rules; this table only covers spellings of the codes themselves.
var productCodes = map[string]Product{
	"HOSO":              ProductHOSO,
	"HLSO":              ProductHLSO,
	"P&D IQF":           ProductPDIQF,
	"PYD IQF":           ProductPDIQF,
	"PD IQF":            ProductPDIQF,
	"P&D":               ProductPDIQF,
	"PYD":               ProductPDIQF,
	"P&D BLOQUE":        ProductPDBloque,
	"P&D BLOCK":         ProductPDBloque,
	"PYD BLOQUE":        ProductPDBloque,
	"PYD BLOCK":         ProductPDBloque,
	"PD BLOQUE":         ProductPDBloque,
	"EZ PEEL":           ProductEZPeel,
	"EZPEEL":            ProductEZPeel,
	"PUD-EUROPA":        ProductPuDEuropa,
	"PUD EUROPA":        ProductPuDEuropa,
	"PUD-EEUU":          ProductPuDEEUU,
	"PUD EEUU":          ProductPuDEEUU,
	"PUD-USA":           ProductPuDEEUU,
	"PUD USA":           ProductPuDEEUU,
	"COOKED":            ProductCooked,
	"COCIDO":            ProductCooked,
	"PRE-COCIDO":        ProductCooked,
	"PRECOCIDO":         ProductCooked,
	"COCIDO SIN TRATAR": ProductCooked,
}

// ParseProduct resolves a bare product token to its canonical code.
// Matching is case-insensitive and tolerant of spacing around the ampersand.
func ParseProduct(token string) (Product, bool) {
	normalized := normalizeProductToken(token)
	if normalized == "" {
		return "", false
	}
	product, ok := productCodes[normalized]
	return product, ok
}

func normalizeProductToken(token string) string {
	upper := strings.ToUpper(strings.TrimSpace(token))
	upper = strings.ReplaceAll(upper, " & ", "&")
	upper = strings.ReplaceAll(upper, " &", "&")
	upper = strings.ReplaceAll(upper, "& ", "&")
	upper = strings.ReplaceAll(upper, "P&D", "P&D ")
	return strings.Join(strings.Fields(upper), " ")
}
