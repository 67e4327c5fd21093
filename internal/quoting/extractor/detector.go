package extractor

import (
	"sort"
	"strconv"
	"strings"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

// Detector finds messages that ask for several products at once and
// splits them into one query per product and size combination.
type Detector struct {
	rules *Rules
}

// NewDetector creates the multi-product detector.
func NewDetector() *Detector {
	return &Detector{rules: NewRules()}
}

// Detect returns one query per requested combination when the message
// names more than one, nil otherwise. Modifiers written on a product
// line bind to that line; modifiers on the remaining lines are shared
// defaults for entries without their own.
func (d *Detector) Detect(text string, hints Hints) []domain.Query {
	lines := strings.Split(text, "\n")

	var productLines []string
	var otherLines []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(productMentions(line)) > 0 || len(sizeMentions(line)) > 0 {
			productLines = append(productLines, line)
		} else {
			otherLines = append(otherLines, line)
		}
	}

	shared := d.rules.Extract(strings.Join(otherLines, "\n"), hints)

	var entries []domain.Query
	for _, line := range productLines {
		entries = append(entries, d.expandLine(line, shared, hints)...)
	}

	entries = dedupe(entries)
	if len(entries) < 2 {
		return nil
	}
	return entries
}

// expandLine turns one product line into entries. Each size token pairs
// with the nearest product named before it, so "HLSO 16/20 y HOSO 30/40"
// yields two distinct combinations.
func (d *Detector) expandLine(line string, shared domain.Query, hints Hints) []domain.Query {
	lineQ := d.rules.Extract(line, hints)
	products := productMentions(line)
	sizes := sizeMentions(line)

	base := lineQ
	base.Product = ""
	base.Size = ""
	inherit(&base, shared)

	if len(sizes) == 0 {
		// A product named without a grade still becomes an entry; the
		// engine will report the missing size with the valid options.
		if len(products) == 0 {
			return nil
		}
		entry := base
		entry.Product = products[0].product
		entry.Intent = domain.IntentQuote
		return []domain.Query{entry}
	}

	out := make([]domain.Query, 0, len(sizes))
	for _, s := range sizes {
		entry := base
		entry.Size = s.size
		entry.Product = productBefore(products, s.start)
		if entry.Product == "" {
			switch {
			case domain.IsHOSOExclusive(s.size):
				entry.Product = domain.ProductHOSO
			case len(products) > 0:
				entry.Product = products[0].product
			}
		}
		entry.Intent = domain.IntentQuote
		out = append(out, entry)
	}
	return out
}

// inherit fills the modifier fields a line did not set from the shared
// message-level extraction.
func inherit(entry *domain.Query, shared domain.Query) {
	if entry.GlaseoPct == nil {
		entry.GlaseoPct = shared.GlaseoPct
	}
	if entry.Freight == nil {
		entry.Freight = shared.Freight
	}
	if entry.Destination == "" {
		entry.Destination = shared.Destination
		entry.UsesPounds = entry.UsesPounds || shared.UsesPounds
	}
	if !entry.IsDDP {
		entry.IsDDP = shared.IsDDP
	}
	if entry.Quantity == nil {
		entry.Quantity = shared.Quantity
	}
	if entry.ClientName == "" {
		entry.ClientName = shared.ClientName
	}
	if entry.NetWeightPct == nil {
		entry.NetWeightPct = shared.NetWeightPct
	}
	if entry.KgPerBox == nil {
		entry.KgPerBox = shared.KgPerBox
	}
	if !entry.Brine {
		entry.Brine = shared.Brine
	}
}

type mention struct {
	start   int
	product domain.Product
}

type sizeMention struct {
	start int
	size  domain.Size
}

// productMentions locates every product alias in the line, first alias
// in priority order claiming its span. The cooker word counts as COOKED
// only together with a tails word.
func productMentions(line string) []mention {
	var mentions []mention
	var claimed [][2]int

	if loc := cookerRe.FindStringIndex(line); loc != nil && tailsRe.MatchString(line) {
		mentions = append(mentions, mention{start: loc[0], product: domain.ProductCooked})
		claimed = append(claimed, [2]int{loc[0], loc[1]})
		// The tails words belong to the cooked reading; claiming them keeps
		// the bare-tails alias from minting a second product.
		for _, tailsLoc := range tailsRe.FindAllStringIndex(line, -1) {
			claimed = append(claimed, [2]int{tailsLoc[0], tailsLoc[1]})
		}
	}

	for _, alias := range productAliases {
		for _, loc := range alias.pattern.FindAllStringIndex(line, -1) {
			if overlaps(claimed, loc[0], loc[1]) {
				continue
			}
			mentions = append(mentions, mention{start: loc[0], product: alias.product})
			claimed = append(claimed, [2]int{loc[0], loc[1]})
		}
	}

	sort.Slice(mentions, func(i, j int) bool { return mentions[i].start < mentions[j].start })
	return mentions
}

// sizeMentions locates every valid grade token in the line, in order.
func sizeMentions(line string) []sizeMention {
	var out []sizeMention
	for _, loc := range sizeTokenRe.FindAllStringIndex(line, -1) {
		if size, ok := domain.NormalizeSize(line[loc[0]:loc[1]]); ok {
			out = append(out, sizeMention{start: loc[0], size: size})
		}
	}
	return out
}

func overlaps(claimed [][2]int, start, end int) bool {
	for _, span := range claimed {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}

// productBefore returns the nearest product named before the given
// offset, or empty when no product precedes it.
func productBefore(products []mention, offset int) domain.Product {
	var found domain.Product
	for _, p := range products {
		if p.start < offset {
			found = p.product
		}
	}
	return found
}

// dedupe drops repeated combinations, keeping first occurrence order. Two
// entries are the same combination when product, size, glaze and freight
// all match.
func dedupe(entries []domain.Query) []domain.Query {
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		key := dedupeKey(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func dedupeKey(q domain.Query) string {
	var b strings.Builder
	b.WriteString(string(q.Product))
	b.WriteByte('|')
	b.WriteString(string(q.Size))
	b.WriteByte('|')
	if q.GlaseoPct != nil {
		b.WriteString(strconv.Itoa(*q.GlaseoPct))
	}
	b.WriteByte('|')
	if q.Freight != nil {
		b.WriteString(strconv.FormatFloat(*q.Freight, 'f', -1, 64))
	}
	return b.String()
}
