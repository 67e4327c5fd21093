package extractor

import (
	"regexp"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

// productAlias binds one product to the spellings and trade phrases that
// name it. The table is ordered: the most specific entries come first so
// "P&D BLOQUE" is never swallowed by the bare "cocido" rule, and the scan
// stops at the first hit.
type productAlias struct {
	product domain.Product
	pattern *regexp.Regexp
}

var productAliases = []productAlias{
	{domain.ProductCooked, regexp.MustCompile(`(?i)cocido\s+sin\s+tratar`)},
	{domain.ProductCooked, regexp.MustCompile(`(?i)\bpre[\s-]?cocido\b`)},
	{domain.ProductPDBloque, regexp.MustCompile(`(?i)\b(?:p\s*&\s*d|p\s*y\s*d|pyd|pd)\s*(?:bloque|block)\b`)},
	{domain.ProductPDIQF, regexp.MustCompile(`(?i)\b(?:p\s*&\s*d|p\s*y\s*d|pyd|pd)\s*(?:iqf|tail\s*off)\b`)},
	{domain.ProductPDIQF, regexp.MustCompile(`(?i)\b(?:p\s*&\s*d|pyd)\b`)},
	{domain.ProductPuDEuropa, regexp.MustCompile(`(?i)\bpud[\s-]*(?:europa|europe)\b`)},
	{domain.ProductPuDEEUU, regexp.MustCompile(`(?i)\bpud[\s-]*(?:eeuu|ee\.?uu\.?|usa)\b`)},
	{domain.ProductEZPeel, regexp.MustCompile(`(?i)\b(?:ez|easy)\s*peel\b`)},
	{domain.ProductPDBloque, regexp.MustCompile(`(?i)\b(?:bloque|block)\b`)},
	{domain.ProductPDIQF, regexp.MustCompile(`(?i)\biqf\b`)},
	{domain.ProductHLSO, regexp.MustCompile(`(?i)\bhlso\b|sin\s+cabeza|head\s*-?\s*less|descabezado`)},
	{domain.ProductHOSO, regexp.MustCompile(`(?i)\bhoso\b|con\s+cabeza|head\s*-?\s*on|\bentero\b|\binteiro\b|\bwhole\b`)},
	{domain.ProductCooked, regexp.MustCompile(`(?i)\bcooked\b|\bcocido\b`)},
	// Bare tails with no other marker mean peeled tails in trade usage.
	// Last so any explicit product word wins first.
	{domain.ProductPDIQF, regexp.MustCompile(`(?i)\bcolas?\b|\btails?\b`)},
}

// cookerRe marks "cocedero" messages: cooker-grade raw material. Together
// with a tails word it means COOKED; alone it needs clarification.
var (
	cookerRe = regexp.MustCompile(`(?i)\bcocedero\b`)
	tailsRe  = regexp.MustCompile(`(?i)\bcolas?\b|\btails?\b`)
)

// destination carries the canonical spelling plus the pricing unit the
// route quotes in. US destinations price per pound, except Houston which
// historically stays in kilos.
type destination struct {
	canonical  string
	usesPounds bool
}

var destinations = map[string]destination{
	"houston":     {"Houston", false},
	"houton":      {"Houston", false},
	"huston":      {"Houston", false},
	"miami":       {"Miami", true},
	"new york":    {"New York", true},
	"nueva york":  {"New York", true},
	"los angeles": {"Los Angeles", true},
	"chicago":     {"Chicago", true},
	"dallas":      {"Dallas", true},
	"lisboa":      {"Lisboa", false},
	"madrid":      {"Madrid", false},
	"barcelona":   {"Barcelona", false},
	"paris":       {"Paris", false},
	"londres":     {"Londres", false},
	"roma":        {"Roma", false},
	"berlin":      {"Berlin", false},
	"amsterdam":   {"Amsterdam", false},
	"china":       {"China", false},
	"japon":       {"Japón", false},
	"europa":      {"Europa", false},
	"brasil":      {"Brasil", false},
	"mexico":      {"México", false},
	"canada":      {"Canadá", false},
	"australia":   {"Australia", false},
	"corea":       {"Corea", false},
	"india":       {"India", false},
	"tailandia":   {"Tailandia", false},
	"vietnam":     {"Vietnam", false},
	"singapur":    {"Singapur", false},
	"filipinas":   {"Filipinas", false},
	"indonesia":   {"Indonesia", false},
	"malasia":     {"Malasia", false},
}

// freightContextRe gates destination extraction: place names are only
// read as shipping destinations when the message talks about freight.
var freightContextRe = regexp.MustCompile(`(?i)\bflete\b|\bfreight\b|\benv[ií]o\b|\bshipping\b|\btransporte\b|\bddp\b|\bcfr\b|\bcif\b|c&f`)

// greetingRe matches openers that carry no request on their own.
var greetingRe = regexp.MustCompile(`(?i)\bhola\b|\bbuen[oa]s\s+(?:d[ií]as|tardes|noches)\b|\bhello\b|\bhi\b|\bhey\b|\bgood\s+(?:morning|afternoon|evening)\b|\bsaludos\b`)

// quoteIntentRe matches the words that, together with a product or size
// token, mark a message as a quote request.
var quoteIntentRe = regexp.MustCompile(`(?i)\bcotiza(?:r|ci[oó]n)?\b|\bproforma\b|\bprecios?\b|\bquote\b|\bquotation\b|\bprices?\b|\bcost\b|\bcontenedor\b|\bcontainer\b`)

// sizeTokenRe finds grade tokens like 16/20, 16-20 or U15 anywhere in the
// message. Used both for extraction and for intent detection.
var sizeTokenRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*[-/]\s*(\d{1,3})\b|\bu\s*-?\s*15\b`)
