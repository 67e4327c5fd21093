package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PoundsPerKg is the conversion factor applied when a quote is requested
// in pounds.
const PoundsPerKg = 2.20462262185

// Intent classifies what the extractor believes the message wants.
type Intent string

const (
	IntentUnknown  Intent = "unknown"
	IntentGreeting Intent = "greeting"
	IntentQuote    Intent = "quote"
)

// Quantity is an amount with its unit as the client expressed it.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"` // "kg" or "lb"
}

// Kilograms converts the quantity to kilograms.
func (q Quantity) Kilograms() float64 {
	if q.Unit == "lb" {
		return q.Value / PoundsPerKg
	}
	return q.Value
}

// Query is the structured pricing request assembled from one or more
// conversation turns. Pointer fields distinguish "not mentioned" from
// zero values; freight in particular is never defaulted.
type Query struct {
	Product      Product   `json:"product,omitempty"`
	Size         Size      `json:"size,omitempty"`
	GlaseoPct    *int      `json:"glaseoPct,omitempty"`
	Freight      *float64  `json:"freight,omitempty"`
	Destination  string    `json:"destination,omitempty"`
	IsDDP        bool      `json:"isDdp,omitempty"`
	Quantity     *Quantity `json:"quantity,omitempty"`
	ClientName   string    `json:"clientName,omitempty"`
	Language     Language  `json:"language,omitempty"`
	Confidence   float64   `json:"confidence,omitempty"`
	Intent       Intent    `json:"intent,omitempty"`
	UsesPounds   bool      `json:"usesPounds,omitempty"`
	Brine        bool      `json:"brine,omitempty"`
	NetWeightPct *int      `json:"netWeightPct,omitempty"`
	KgPerBox     *int      `json:"kgPerBox,omitempty"`
}

// Complete reports whether the query can be priced: product, size and
// glaseo must be present, and DDP quotes additionally need freight.
func (q *Query) Complete() bool {
	if q.Product == "" || q.Size == "" || q.GlaseoPct == nil {
		return false
	}
	if q.IsDDP && q.Freight == nil {
		return false
	}
	return true
}

// MissingFields names what still has to be elicited, in asking order.
// Freight for a DDP quote is asked before glaseo; a glaseo left unasked
// computes as 0%.
func (q *Query) MissingFields() []string {
	var missing []string
	if q.Product == "" {
		missing = append(missing, "product")
	}
	if q.Size == "" {
		missing = append(missing, "size")
	}
	if q.IsDDP && q.Freight == nil {
		missing = append(missing, "freight")
	}
	if q.GlaseoPct == nil {
		missing = append(missing, "glaseo")
	}
	return missing
}

// Merge copies fields set in other into q, leaving q's existing values in
// place when other does not mention them.
func (q *Query) Merge(other Query) {
	if other.Product != "" {
		q.Product = other.Product
	}
	if other.Size != "" {
		q.Size = other.Size
	}
	if other.GlaseoPct != nil {
		q.GlaseoPct = other.GlaseoPct
	}
	if other.Freight != nil {
		q.Freight = other.Freight
	}
	if other.Destination != "" {
		q.Destination = other.Destination
	}
	if other.IsDDP {
		q.IsDDP = true
	}
	if other.Quantity != nil {
		q.Quantity = other.Quantity
	}
	if other.ClientName != "" {
		q.ClientName = other.ClientName
	}
	if other.Language != "" {
		q.Language = other.Language
	}
	if other.UsesPounds {
		q.UsesPounds = true
	}
	if other.Brine {
		q.Brine = true
	}
	if other.NetWeightPct != nil {
		q.NetWeightPct = other.NetWeightPct
	}
	if other.KgPerBox != nil {
		q.KgPerBox = other.KgPerBox
	}
}

// CanonicalText serializes the query into the compact request line the
// rule-based extractor parses back into an identical query. Spanish
// vocabulary is used for Spanish queries, English for English ones.
func (q Query) CanonicalText() string {
	var b strings.Builder

	if q.Product != "" {
		b.WriteString(string(q.Product))
	}
	if q.Size != "" {
		writeSep(&b)
		b.WriteString(string(q.Size))
	}
	english := q.Language == LanguageEN
	if q.GlaseoPct != nil {
		writeSep(&b)
		if english {
			fmt.Fprintf(&b, "glaze %d%%", *q.GlaseoPct)
		} else {
			fmt.Fprintf(&b, "glaseo %d%%", *q.GlaseoPct)
		}
	}
	if q.Freight != nil {
		writeSep(&b)
		if english {
			fmt.Fprintf(&b, "freight %s", trimFloat(*q.Freight))
		} else {
			fmt.Fprintf(&b, "flete %s", trimFloat(*q.Freight))
		}
	}
	switch {
	case q.IsDDP:
		writeSep(&b)
		b.WriteString("ddp")
		if q.Destination != "" {
			b.WriteString(" " + q.Destination)
		}
	case q.Destination != "":
		writeSep(&b)
		b.WriteString("cfr " + q.Destination)
	}
	if q.Quantity != nil {
		writeSep(&b)
		unit := "kg"
		if q.Quantity.Unit == "lb" {
			unit = "lb"
		}
		fmt.Fprintf(&b, "%s %s", trimFloat(q.Quantity.Value), unit)
	}
	if q.ClientName != "" {
		writeSep(&b)
		if english {
			b.WriteString("client " + q.ClientName)
		} else {
			b.WriteString("cliente " + q.ClientName)
		}
	}

	return b.String()
}

func writeSep(b *strings.Builder) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IntPtr is a convenience for building queries with optional integers.
func IntPtr(v int) *int { return &v }

// FloatPtr is a convenience for building queries with optional decimals.
func FloatPtr(v float64) *float64 { return &v }
