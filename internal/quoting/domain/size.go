package domain

import "strings"

// Size is a count-per-weight grade code such as "16/20".
type Size string

// Sizes lists every valid size code, smallest count first.
var Sizes = []Size{
	"U15",
	"16/20",
	"20/30",
	"21/25",
	"26/30",
	"30/40",
	"31/35",
	"36/40",
	"40/50",
	"41/50",
	"50/60",
	"51/60",
	"60/70",
	"61/70",
	"70/80",
	"71/90",
}

// Valid reports whether s is one of the catalog size codes.
func (s Size) Valid() bool {
	for _, known := range Sizes {
		if s == known {
			return true
		}
	}
	return false
}

func (s Size) String() string { return string(s) }

// hosoOnlySizes are grades only ever sold as whole shrimp. Seeing one of
// these lets the extractor infer HOSO when no product was named.
var hosoOnlySizes = map[Size]bool{
	"20/30": true,
	"30/40": true,
	"40/50": true,
	"50/60": true,
	"60/70": true,
	"70/80": true,
}

// IsHOSOExclusive reports whether the size implies the HOSO product.
func IsHOSOExclusive(s Size) bool {
	return hosoOnlySizes[s]
}

// NormalizeSize coerces raw size spellings ("16-20", "u 15", "U-15") to the
// canonical form and reports whether the result is a known grade.
func NormalizeSize(raw string) (Size, bool) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", false
	}

	trimmed = strings.ReplaceAll(trimmed, "-", "/")
	trimmed = strings.ReplaceAll(trimmed, " ", "")

	// "U15" style grades carry no slash.
	if strings.HasPrefix(trimmed, "U/") {
		trimmed = "U" + trimmed[2:]
	}

	size := Size(trimmed)
	return size, size.Valid()
}
