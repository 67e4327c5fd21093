package render

import (
	"fmt"
	"strings"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/calculator"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

// priceLine prints a per-kilo price, adding the per-pound figure for
// routes quoted in pounds. Houston stays kilos-only.
func priceLine(perKg float64, usesPounds bool) string {
	if usesPounds {
		return fmt.Sprintf("   • $%.2f/kg - $%.2f/lb\n", perKg, calculator.PricePerPound(perKg))
	}
	return fmt.Sprintf("   • $%.2f/kg\n", perKg)
}

// labeledPrice is the compact per-term line used in consolidated quotes.
func labeledPrice(label string, perKg float64, usesPounds bool) string {
	if usesPounds {
		return fmt.Sprintf("   • %s $%.2f/kg - $%.2f/lb\n", label, perKg, calculator.PricePerPound(perKg))
	}
	return fmt.Sprintf("   • %s $%.2f/kg\n", label, perKg)
}

// quantityText formats the amount as the client expressed it. Pound
// quantities also show the kilogram equivalent.
func quantityText(q *domain.Quantity) string {
	format := "%.2f %s"
	if q.Value == float64(int64(q.Value)) {
		format = "%.0f %s"
	}
	text := fmt.Sprintf(format, q.Value, q.Unit)
	if q.Unit == "lb" {
		text += fmt.Sprintf(" (%.2f kg)", q.Kilograms())
	}
	return text
}

// Quote renders one priced line as the full quotation message.
func (r *Renderer) Quote(lang domain.Language, q *domain.QuoteResult) string {
	var b strings.Builder

	if lang == domain.LanguageEN {
		b.WriteString("🦐 **BGR Export - Shrimp Quotation** 🦐\n\n")
		fmt.Fprintf(&b, "🏷️ **Product:** %s\n", q.Product)
		fmt.Fprintf(&b, "📏 **Size:** %s\n", q.Size)
		fmt.Fprintf(&b, "❄️ **Glaze:** %d%% (factor %.2f)\n\n", q.GlaseoPct, q.GlaseoFactor)

		b.WriteString("💰 **Calculated prices:**\n\n")
		b.WriteString("🚢 **FOB price:**\n")
		b.WriteString(priceLine(q.FOBPrice, q.UsesPounds))

		switch {
		case q.DDPPrice != nil:
			fmt.Fprintf(&b, "\n🛬 **DDP price (FOB + freight $%.2f):**\n", *q.FreightApplied)
			b.WriteString(priceLine(*q.DDPPrice, q.UsesPounds))
		case q.FreightApplied != nil:
			fmt.Fprintf(&b, "\n✈️ **CFR price (FOB + freight $%.2f):**\n", *q.FreightApplied)
			b.WriteString(priceLine(q.CFRPrice, q.UsesPounds))
		}

		r.writeQuoteDetails(&b, lang, q)

		b.WriteString("\n📋 **Applied factors:**\n")
		fmt.Fprintf(&b, "• Fixed cost: $%.2f\n", q.FixedCost)
		fmt.Fprintf(&b, "• Glaze factor: %.0f%%\n", q.GlaseoFactor*100)
		if q.FreightApplied != nil {
			fmt.Fprintf(&b, "• Freight: $%.2f\n", *q.FreightApplied)
		}

		b.WriteString("\n📋 _FOB prices subject to final confirmation_")
		return b.String()
	}

	b.WriteString("🦐 **BGR Export - Cotización Camarón** 🦐\n\n")
	fmt.Fprintf(&b, "🏷️ **Producto:** %s\n", q.Product)
	fmt.Fprintf(&b, "📏 **Talla:** %s\n", q.Size)
	fmt.Fprintf(&b, "❄️ **Glaseo:** %d%% (factor %.2f)\n\n", q.GlaseoPct, q.GlaseoFactor)

	b.WriteString("💰 **Precios calculados:**\n\n")
	b.WriteString("🚢 **Precio FOB:**\n")
	b.WriteString(priceLine(q.FOBPrice, q.UsesPounds))

	switch {
	case q.DDPPrice != nil:
		fmt.Fprintf(&b, "\n🛬 **Precio DDP (FOB + flete $%.2f):**\n", *q.FreightApplied)
		b.WriteString(priceLine(*q.DDPPrice, q.UsesPounds))
	case q.FreightApplied != nil:
		fmt.Fprintf(&b, "\n✈️ **Precio CFR (FOB + flete $%.2f):**\n", *q.FreightApplied)
		b.WriteString(priceLine(q.CFRPrice, q.UsesPounds))
	}

	r.writeQuoteDetails(&b, lang, q)

	b.WriteString("\n📋 **Factores aplicados:**\n")
	fmt.Fprintf(&b, "• Costo fijo: $%.2f\n", q.FixedCost)
	fmt.Fprintf(&b, "• Factor glaseo: %.0f%%\n", q.GlaseoFactor*100)
	if q.FreightApplied != nil {
		fmt.Fprintf(&b, "• Flete: $%.2f\n", *q.FreightApplied)
	}

	b.WriteString("\n📋 _Precios FOB sujetos a confirmación final_")
	return b.String()
}

func (r *Renderer) writeQuoteDetails(b *strings.Builder, lang domain.Language, q *domain.QuoteResult) {
	if q.Destination == "" && q.Quantity == nil {
		return
	}
	b.WriteString("\n")
	if q.Destination != "" {
		if lang == domain.LanguageEN {
			fmt.Fprintf(b, "🌍 **Destination:** %s\n", q.Destination)
		} else {
			fmt.Fprintf(b, "🌍 **Destino:** %s\n", q.Destination)
		}
	}
	if q.Quantity != nil {
		if lang == domain.LanguageEN {
			fmt.Fprintf(b, "📦 **Quantity:** %s\n", quantityText(q.Quantity))
		} else {
			fmt.Fprintf(b, "📦 **Cantidad:** %s\n", quantityText(q.Quantity))
		}
	}
}

// Consolidated renders a multi-product quotation in its chosen language,
// successes in detection order, failures at the end with the sizes that
// would have worked.
func (r *Renderer) Consolidated(c *domain.ConsolidatedQuote) string {
	en := c.Language == domain.LanguageEN
	var b strings.Builder

	if en {
		b.WriteString("🦐 **BGR Export - Consolidated Quotation** 🦐\n\n")
		fmt.Fprintf(&b, "✅ **%d/%d products quoted**\n", c.Succeeded(), c.Total())
	} else {
		b.WriteString("🦐 **BGR Export - Cotización Consolidada** 🦐\n\n")
		fmt.Fprintf(&b, "✅ **%d/%d productos cotizados**\n", c.Succeeded(), c.Total())
	}

	if c.GlaseoPct != nil {
		if en {
			fmt.Fprintf(&b, "❄️ **Glaze:** %d%%\n", *c.GlaseoPct)
		} else {
			fmt.Fprintf(&b, "❄️ **Glaseo:** %d%%\n", *c.GlaseoPct)
		}
	}
	if c.Freight != nil {
		if en {
			fmt.Fprintf(&b, "🚢 **Freight:** $%.2f\n", *c.Freight)
		} else {
			fmt.Fprintf(&b, "🚢 **Flete:** $%.2f\n", *c.Freight)
		}
	}
	if c.Destination != "" {
		if en {
			fmt.Fprintf(&b, "🌍 **Destination:** %s\n", c.Destination)
		} else {
			fmt.Fprintf(&b, "🌍 **Destino:** %s\n", c.Destination)
		}
	}
	b.WriteString("\n")

	for i, q := range c.Successes {
		fmt.Fprintf(&b, "%d. **%s %s**\n", i+1, q.Product, q.Size)
		b.WriteString(labeledPrice("FOB", q.FOBPrice, q.UsesPounds))
		if q.DDPPrice != nil {
			b.WriteString(labeledPrice("DDP", *q.DDPPrice, q.UsesPounds))
		} else if q.FreightApplied != nil {
			b.WriteString(labeledPrice("CFR", q.CFRPrice, q.UsesPounds))
		}
	}

	if len(c.Failures) > 0 {
		if en {
			b.WriteString("\n⚠️ **No price for:**\n")
		} else {
			b.WriteString("\n⚠️ **Sin precio para:**\n")
		}
		for _, f := range c.Failures {
			line := strings.TrimSpace(fmt.Sprintf("%s %s", f.Product, f.Size))
			if len(f.ValidSizes) > 0 {
				sizes := make([]string, len(f.ValidSizes))
				for i, s := range f.ValidSizes {
					sizes[i] = string(s)
				}
				if en {
					fmt.Fprintf(&b, "• %s (valid sizes: %s)\n", line, strings.Join(sizes, ", "))
				} else {
					fmt.Fprintf(&b, "• %s (tallas válidas: %s)\n", line, strings.Join(sizes, ", "))
				}
			} else {
				fmt.Fprintf(&b, "• %s\n", line)
			}
		}
	}

	if en {
		b.WriteString("\n📋 _FOB prices subject to final confirmation_")
	} else {
		b.WriteString("\n📋 _Precios FOB sujetos a confirmación final_")
	}
	return b.String()
}
