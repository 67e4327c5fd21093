// Package extractor turns free-form client messages into structured
// pricing queries. The AI classifier is the primary strategy; the rule
// set in this file is the deterministic fallback that must always work.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

// Hints is the minimal session context extraction may take into account.
// Extraction itself stays a pure function of text plus these hints; the
// user id is only carried for log lines.
type Hints struct {
	UserID   string
	Language domain.Language
}

// Rules is the deterministic extraction strategy. Every field is read by
// a fixed-order rule; later rules never override earlier ones.
type Rules struct{}

// NewRules creates the rule-based extractor.
func NewRules() *Rules { return &Rules{} }

var (
	netWeightRe = regexp.MustCompile(`(?i)(\d{1,3})\s*%\s*net\b`)
	kgPerBoxRe  = regexp.MustCompile(`(?i)(\d{1,3})\s*k\s*/\s*caja`)
	brineRe     = regexp.MustCompile(`(?i)\bbrine\b|\bsalmuera\b`)
	ddpRe       = regexp.MustCompile(`(?i)\bddp\b|delivered\s+duty\s+paid`)

	freightRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bflete\s*(?:de\s*|al?\s*)?(?:\$\s*)?(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:de\s+)?flete\b`),
		regexp.MustCompile(`(?i)\bfreight\s*(?:of\s*|at\s*|to\s*)?(?:\$\s*)?(\d+(?:\.\d+)?)`),
	}

	noGlaseoRe  = regexp.MustCompile(`(?i)\bsin\s+glaseo\b|\bno\s+glaze\b|\b0\s*%`)
	glaseoRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,2})\s*%\s*(?:de\s*)?glaseo`),
		regexp.MustCompile(`(?i)\bglaseo\s*(?:del?\s*)?(\d{1,2})\s*%?`),
		regexp.MustCompile(`(?i)(\d{1,2})\s*%\s*glaze`),
		regexp.MustCompile(`(?i)\bglaze\s*(?:of\s*)?(\d{1,2})\s*%?`),
		regexp.MustCompile(`(?i)(?:\bentero\b|\binteiro\b|\bcolas?\b|\btails?\b)\s+(?:al?\s+)?(\d{1,2})\s*%`),
		regexp.MustCompile(`(?i)\bal\s+(\d{1,2})\s*%?\b`),
		regexp.MustCompile(`(?i)\bat\s+(\d{1,2})\s*%`),
		regexp.MustCompile(`(?i)^\s*(\d{1,2})\s*%`),
	}

	cfrDestinationRe = regexp.MustCompile(`(?i)\b(?:cfr|cif|c&f)\s+([a-záéíóúñ][a-záéíóúñ\s]{1,30}?)(?:\s+(?:para|con|de|al?)\b|[,.\n]|$)`)

	poundsQuantityRe = regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(?:libras?\b|lbs?\b|pounds?\b)`)
	kilosQuantityRe  = regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(?:kilos?\b|kgs?\b|kilogramos?\b)`)

	clientNameRe = regexp.MustCompile(`(?i)\b(?:cliente|se[ñn]ora?|sra?\.?|client|mrs?\.?)[:\s]+([A-Za-zÁÉÍÓÚáéíóúÑñ]+(?:\s+[A-Za-zÁÉÍÓÚáéíóúÑñ]+){0,2})`)

	modifyVerbRe  = regexp.MustCompile(`(?i)\b(?:modifica(?:r)?|cambia(?:r)?|actualiza(?:r)?|ajusta(?:r)?|nuevo|otro|change|update|new)\b`)
	freightWordRe = regexp.MustCompile(`(?i)\bflete\b|\bfreight\b`)

	numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

	accentReplacer = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n")
)

// Extract runs the ordered rule set over the message and returns the
// partial query it could read, with a confidence score.
func (r *Rules) Extract(text string, hints Hints) domain.Query {
	q := domain.Query{}

	if hints.Language.Valid() {
		q.Language = hints.Language
	} else {
		q.Language = domain.DetectLanguage(text)
	}

	// Net weight must be read before glaseo so "95% NET" is never taken
	// for a glaze percentage. The matched span is masked out.
	working := text
	if m := netWeightRe.FindStringSubmatchIndex(working); m != nil {
		if pct, err := strconv.Atoi(working[m[2]:m[3]]); err == nil {
			q.NetWeightPct = &pct
		}
		working = maskSpan(working, m[0], m[1])
	}

	if m := kgPerBoxRe.FindStringSubmatch(working); m != nil {
		if kg, err := strconv.Atoi(m[1]); err == nil {
			q.KgPerBox = &kg
		}
	}

	q.Brine = brineRe.MatchString(working)
	q.IsDDP = ddpRe.MatchString(working)

	// The freight span is masked once read so that a phrase like
	// "flete al 0.25" cannot later be taken for a glaze value.
	for _, re := range freightRules {
		if m := re.FindStringSubmatchIndex(working); m != nil {
			if value, err := strconv.ParseFloat(working[m[2]:m[3]], 64); err == nil {
				q.Freight = &value
				working = maskSpan(working, m[0], m[1])
				break
			}
		}
	}

	q.Size = firstSize(working)
	q.Product = detectProduct(working, q.Size)

	// Grade tokens are masked for the glaze scan only, so "al 16/20"
	// never reads as a 16% glaze.
	glazeText := working
	for _, m := range sizeTokenRe.FindAllStringIndex(working, -1) {
		glazeText = maskSpan(glazeText, m[0], m[1])
	}
	if glaseo, ok := extractGlaseo(glazeText); ok {
		q.GlaseoPct = &glaseo
	}

	if dest, ok := extractDestination(text); ok {
		q.Destination = dest.canonical
		q.UsesPounds = dest.usesPounds
	}

	if qty, ok := extractQuantity(working); ok {
		q.Quantity = &qty
		if qty.Unit == "lb" {
			q.UsesPounds = true
		}
	}

	q.ClientName = extractClientName(text)

	r.classifyIntent(text, &q)
	return q
}

// classifyIntent applies the greeting-vs-intent rule and scores the
// extraction. A greeting never wins over quote signals in the same
// message; a message with no signals at all is unknown with confidence 0.
func (r *Rules) classifyIntent(text string, q *domain.Query) {
	hasSignals := q.Product != "" || q.Size != "" || quoteIntentRe.MatchString(text)

	if !hasSignals {
		if greetingRe.MatchString(text) {
			q.Intent = domain.IntentGreeting
			q.Confidence = 0.9
		} else {
			q.Intent = domain.IntentUnknown
			q.Confidence = 0
		}
		return
	}

	q.Intent = domain.IntentQuote
	confidence := 0.6
	if q.Size != "" {
		confidence += 0.2
	}
	if q.Product != "" {
		confidence += 0.1
	}
	if q.Destination != "" {
		confidence += 0.1
	}
	if q.GlaseoPct != nil {
		confidence += 0.1
	}
	if confidence > 0.95 {
		confidence = 0.95
	}
	q.Confidence = confidence
}

// firstSize returns the first valid grade token in the message.
func firstSize(text string) domain.Size {
	for _, m := range sizeTokenRe.FindAllString(text, -1) {
		if size, ok := domain.NormalizeSize(m); ok {
			return size
		}
	}
	return ""
}

// detectProduct scans the alias table in order. The cooker rule runs
// first: "cocedero" plus a tails word means COOKED, while "cocedero"
// alone stays unresolved so the engine can ask. When nothing matches, a
// HOSO-exclusive size implies HOSO.
func detectProduct(text string, size domain.Size) domain.Product {
	if cookerRe.MatchString(text) {
		if tailsRe.MatchString(text) {
			return domain.ProductCooked
		}
		return ""
	}

	for _, alias := range productAliases {
		if alias.pattern.MatchString(text) {
			return alias.product
		}
	}

	if size != "" && domain.IsHOSOExclusive(size) {
		return domain.ProductHOSO
	}
	return ""
}

// extractGlaseo runs the ordered glaze patterns over net-masked text.
func extractGlaseo(text string) (int, bool) {
	if noGlaseoRe.MatchString(text) {
		return 0, true
	}

	for _, re := range glaseoRules {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if pct, err := strconv.Atoi(m[1]); err == nil {
			return pct, true
		}
	}
	return 0, false
}

// extractDestination reads a shipping destination, but only when the
// message talks about freight at all; place names in other contexts are
// left alone.
func extractDestination(text string) (destination, bool) {
	if !freightContextRe.MatchString(text) {
		return destination{}, false
	}

	if m := cfrDestinationRe.FindStringSubmatch(text); m != nil {
		captured := strings.TrimSpace(m[1])
		if dest, ok := lookupDestination(captured); ok {
			return dest, true
		}
		if captured != "" {
			return destination{canonical: titleCase(captured)}, true
		}
	}

	lowered := accentReplacer.Replace(strings.ToLower(text))
	for key, dest := range destinations {
		if containsWord(lowered, key) {
			return dest, true
		}
	}
	return destination{}, false
}

func lookupDestination(name string) (destination, bool) {
	key := accentReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
	dest, ok := destinations[key]
	return dest, ok
}

// containsWord reports whether word appears in text on word boundaries.
func containsWord(text, word string) bool {
	idx := 0
	for {
		found := strings.Index(text[idx:], word)
		if found < 0 {
			return false
		}
		start := idx + found
		end := start + len(word)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// extractQuantity reads an amount in pounds or kilos, tolerating
// thousands separators.
func extractQuantity(text string) (domain.Quantity, bool) {
	if m := poundsQuantityRe.FindStringSubmatch(text); m != nil {
		if value, err := parseAmount(m[1]); err == nil {
			return domain.Quantity{Value: value, Unit: "lb"}, true
		}
	}
	if m := kilosQuantityRe.FindStringSubmatch(text); m != nil {
		if value, err := parseAmount(m[1]); err == nil {
			return domain.Quantity{Value: value, Unit: "kg"}, true
		}
	}
	return domain.Quantity{}, false
}

func parseAmount(raw string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
}

// clientStopWords are trailing tokens the name pattern tends to drag in.
var clientStopWords = map[string]bool{
	"de": true, "con": true, "para": true, "por": true, "el": true, "la": true,
	"the": true, "of": true, "for": true, "with": true, "at": true,
}

// extractClientName pulls a client name introduced by cliente/señor/mr
// style markers. The capture is cut at the first filler word so trailing
// request text never ends up in the name.
func extractClientName(text string) string {
	m := clientNameRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	words := strings.Fields(m[1])
	for i, w := range words {
		if clientStopWords[strings.ToLower(w)] {
			words = words[:i]
			break
		}
	}
	return strings.Join(words, " ")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func maskSpan(text string, start, end int) string {
	return text[:start] + strings.Repeat(" ", end-start) + text[end:]
}

// NewQuoteSignals reports whether the message carries the markers of a
// fresh quote request: a product alias, a grade token, or an intent word.
// These signals always beat a freight-modification reading.
func NewQuoteSignals(text string) bool {
	if sizeTokenRe.MatchString(text) || quoteIntentRe.MatchString(text) {
		return true
	}
	for _, alias := range productAliases {
		if alias.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// FreightModification recognizes an explicit request to change the
// freight of the previous quote. It requires a modification verb, the
// freight word and a value, and refuses whenever new-quote signals are
// present in the same message.
func FreightModification(text string) (float64, bool) {
	if !modifyVerbRe.MatchString(text) {
		return 0, false
	}
	if !freightWordRe.MatchString(text) {
		return 0, false
	}
	if NewQuoteSignals(text) {
		return 0, false
	}

	for _, re := range freightRules {
		if m := re.FindStringSubmatch(text); m != nil {
			if value, err := strconv.ParseFloat(m[1], 64); err == nil {
				return value, true
			}
		}
	}
	return 0, false
}

// FirstNumber returns the first numeric token in a short reply, used by
// the waiting states where a bare "20" or "0.25" is the whole answer.
func FirstNumber(text string) (float64, bool) {
	m := numberRe.FindString(text)
	if m == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
