package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/events"
)

const proformaRule = "============================================"

// proformaLabels holds the per-language wording of the archived document.
type proformaLabels struct {
	title      string
	multiTitle string
	reference  string
	date       string
	client     string
	channel    string
	product    string
	glaze      string
	freight    string
	dest       string
	unpriced   string
	footer     string
}

var proformaES = proformaLabels{
	title:      "BGR EXPORT - PROFORMA DE COTIZACIÓN",
	multiTitle: "BGR EXPORT - PROFORMA CONSOLIDADA",
	reference:  "Referencia",
	date:       "Fecha",
	client:     "Cliente",
	channel:    "Canal",
	product:    "Producto",
	glaze:      "Glaseo",
	freight:    "flete",
	dest:       "Destino",
	unpriced:   "Productos sin precio",
	footer:     "Precios FOB sujetos a confirmación final.",
}

var proformaEN = proformaLabels{
	title:      "BGR EXPORT - QUOTATION PROFORMA",
	multiTitle: "BGR EXPORT - CONSOLIDATED PROFORMA",
	reference:  "Reference",
	date:       "Date",
	client:     "Client",
	channel:    "Channel",
	product:    "Product",
	glaze:      "Glaze",
	freight:    "freight",
	dest:       "Destination",
	unpriced:   "Unpriced products",
	footer:     "FOB prices subject to final confirmation.",
}

func labelsFor(language string) proformaLabels {
	if language == "en" {
		return proformaEN
	}
	return proformaES
}

func writeProformaHeader(b *strings.Builder, l proformaLabels, title, ref, userID, channel string, at time.Time) {
	b.WriteString(proformaRule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(proformaRule + "\n\n")
	fmt.Fprintf(b, "%s: %s\n", l.reference, ref)
	fmt.Fprintf(b, "%s: %s\n", l.date, at.Format("2006-01-02"))
	fmt.Fprintf(b, "%s: %s\n", l.client, userID)
	fmt.Fprintf(b, "%s: %s\n\n", l.channel, channel)
}

func writeProformaPrices(b *strings.Builder, l proformaLabels, indent string, q events.QuoteGenerated) {
	if q.GlaseoPct != nil {
		fmt.Fprintf(b, "%s%s: %d%%\n", indent, l.glaze, *q.GlaseoPct)
	}
	fmt.Fprintf(b, "%sFOB: $%.2f/kg\n", indent, q.FOBPrice)
	switch {
	case q.DDPPrice != nil && q.Freight != nil:
		fmt.Fprintf(b, "%sDDP: $%.2f/kg (%s $%.2f)\n", indent, *q.DDPPrice, l.freight, *q.Freight)
	case q.CFRPrice != nil && q.Freight != nil:
		fmt.Fprintf(b, "%sCFR: $%.2f/kg (%s $%.2f)\n", indent, *q.CFRPrice, l.freight, *q.Freight)
	}
	if q.Destination != "" {
		fmt.Fprintf(b, "%s%s: %s\n", indent, l.dest, q.Destination)
	}
}

// renderProforma builds the plain-text document archived for a
// single-product quote.
func renderProforma(e events.QuoteGenerated) string {
	l := labelsFor(e.Language)
	var b strings.Builder

	writeProformaHeader(&b, l, l.title, shortRef(e.QuoteID.String()), e.UserID, e.Channel, e.OccurredAt())
	fmt.Fprintf(&b, "%s: %s %s\n", l.product, e.Product, e.Size)
	writeProformaPrices(&b, l, "", e)
	b.WriteString("\n" + l.footer + "\n")
	return b.String()
}

// renderMultiProforma builds the document archived for a consolidated
// quote, one numbered block per priced line.
func renderMultiProforma(e events.MultiQuoteGenerated) string {
	l := labelsFor(e.Language)
	var b strings.Builder

	writeProformaHeader(&b, l, l.multiTitle, shortRef(e.BatchID.String()), e.UserID, e.Channel, e.OccurredAt())
	for i, item := range e.Items {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, item.Product, item.Size)
		writeProformaPrices(&b, l, "   ", item)
	}
	if e.FailureCount > 0 {
		fmt.Fprintf(&b, "\n%s: %d\n", l.unpriced, e.FailureCount)
	}
	b.WriteString("\n" + l.footer + "\n")
	return b.String()
}

// shortRef trims a UUID to the 8-character prefix printed on documents.
func shortRef(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
