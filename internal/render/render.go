// Package render produces every user-facing message in the client's
// language. Texts follow the house WhatsApp style: short bold headers,
// bullet options, one question per message. Spanish is the default;
// English mirrors it line for line.
package render

import (
	"fmt"
	"strings"

	"github.com/xtaxx12/BGR-SHRIMP/internal/catalog"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

// Renderer formats replies, quotes and documents. It is stateless and
// safe for concurrent use.
type Renderer struct{}

// New creates the message renderer.
func New() *Renderer { return &Renderer{} }

// Greeting answers a bare hello.
func (r *Renderer) Greeting(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "🦐 Hello! I am the BGR Export quoting assistant.\n\n" +
			"Ask me for prices directly, for example:\n" +
			"• \"Price HLSO 16/20 with 20% glaze\"\n" +
			"• \"Quote 30/40 DDP Houston\"\n\n" +
			"💡 Type 'help' for commands and more examples."
	}
	return "🦐 ¡Hola! Soy el asistente de cotizaciones de BGR Export.\n\n" +
		"Pídeme precios directamente, por ejemplo:\n" +
		"• \"Precio HLSO 16/20 con 20% glaseo\"\n" +
		"• \"Cotizar 30/40 DDP Houston\"\n\n" +
		"💡 Escribe 'ayuda' para ver comandos y más ejemplos."
}

// Menu lists the global commands. The 'menu' command clears any pending
// conversation first, so the text doubles as a fresh start.
func (r *Renderer) Menu(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "🦐 **BGR Export - Main menu**\n\n" +
			"• `prices` - 💰 available products and sizes\n" +
			"• `language` - 🌐 switch quote language\n" +
			"• `help` - 📋 examples and commands\n" +
			"• `cancel` - ❌ drop the current request\n\n" +
			"Or just ask: \"Price HLSO 16/20 with 20% glaze\""
	}
	return "🦐 **BGR Export - Menú principal**\n\n" +
		"• `precios` - 💰 productos y tallas disponibles\n" +
		"• `idioma` - 🌐 cambiar idioma de las cotizaciones\n" +
		"• `ayuda` - 📋 ejemplos y comandos\n" +
		"• `cancelar` - ❌ cancelar la consulta en curso\n\n" +
		"O pídeme directamente: \"Precio HLSO 16/20 con 20% glaseo\""
}

// Help is the long-form command reference.
func (r *Renderer) Help(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "🦐 **BGR Export - Quoting assistant** 🤖\n\n" +
			"📋 **Commands:**\n" +
			"• `menu` - 🏠 main menu\n" +
			"• `prices` - 💰 available products and sizes\n" +
			"• `language` - 🌐 switch language\n" +
			"• `cancel` - ❌ drop the current request\n\n" +
			"💡 **Example requests:**\n" +
			"• Price HLSO 16/20 for 15000 lb to China\n" +
			"• P&D IQF 21/25 with 20% glaze\n" +
			"• Quote 30/40 50/60 HOSO at 30%\n" +
			"• HLSO 16/20 DDP Houston freight 0.25\n\n" +
			"📄 **Flow:**\n" +
			"1. Ask for a quote\n" +
			"2. I ask for anything missing (glaze, freight)\n" +
			"3. You get FOB/CFR/DDP prices right away\n\n" +
			"🌊 Here to help!"
	}
	return "🦐 **BGR Export - Asistente de cotizaciones** 🤖\n\n" +
		"📋 **Comandos:**\n" +
		"• `menu` - 🏠 menú principal\n" +
		"• `precios` - 💰 productos y tallas disponibles\n" +
		"• `idioma` - 🌐 cambiar idioma\n" +
		"• `cancelar` - ❌ cancelar la consulta en curso\n\n" +
		"💡 **Ejemplos de consultas:**\n" +
		"• Precio HLSO 16/20 para 15000 lb destino China\n" +
		"• P&D IQF 21/25 con 20% glaseo\n" +
		"• Cotizar 30/40 50/60 HOSO al 30%\n" +
		"• HLSO 16/20 DDP Houston flete 0.25\n\n" +
		"📄 **Flujo:**\n" +
		"1. Solicita una cotización\n" +
		"2. Pregunto lo que falte (glaseo, flete)\n" +
		"3. Recibes precios FOB/CFR/DDP al instante\n\n" +
		"🌊 ¡Estoy aquí para ayudarte!"
}

// PriceList renders the availability listing: each product with its
// catalog sizes, in catalog order. Rows switched off by the sales desk
// are skipped.
func (r *Renderer) PriceList(lang domain.Language, records []catalog.PriceRecord) string {
	sizesByProduct := make(map[domain.Product][]string)
	for _, rec := range records {
		if !rec.Available {
			continue
		}
		sizesByProduct[rec.Product] = append(sizesByProduct[rec.Product], string(rec.Size))
	}

	var b strings.Builder
	if lang == domain.LanguageEN {
		b.WriteString("🏷️ **Available products and sizes:**\n\n")
	} else {
		b.WriteString("🏷️ **Productos y tallas disponibles:**\n\n")
	}

	for _, product := range domain.Products {
		sizes, ok := sizesByProduct[product]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "• **%s:** %s\n", product, strings.Join(sizes, ", "))
	}

	if lang == domain.LanguageEN {
		b.WriteString("\n💡 Ask directly: \"Price HLSO 16/20 with 20% glaze\"")
	} else {
		b.WriteString("\n💡 Pide un precio directamente: \"Precio HLSO 16/20 con 20% glaseo\"")
	}
	return b.String()
}

// LanguageMenu asks which language to quote in. It is shown before a
// preference exists, so both options speak for themselves.
func (r *Renderer) LanguageMenu() string {
	return "🌐 **Selecciona el idioma para las cotizaciones:**\n\n" +
		"1️⃣ Español 🇪🇸\n" +
		"2️⃣ English 🇺🇸\n\n" +
		"Responde con el número o escribe:\n" +
		"• \"español\" o \"spanish\"\n" +
		"• \"inglés\" o \"english\""
}

// LanguageSet confirms the stored preference in the chosen language.
func (r *Renderer) LanguageSet(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "✅ Language set: English 🇺🇸"
	}
	return "✅ Idioma configurado: Español 🇪🇸"
}

// InvalidLanguageChoice re-asks after an unreadable language reply.
func (r *Renderer) InvalidLanguageChoice() string {
	return "🤔 Selección inválida. Por favor responde:\n\n" +
		"1️⃣ Para Español\n" +
		"2️⃣ Para English\n\n" +
		"O escribe 'menu' para volver al inicio"
}

// glaseoOptions is the ladder shown whenever glaze is elicited.
func glaseoOptions(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "• **0%** (no glaze)\n" +
			"• **10%** glaze (factor 0.90)\n" +
			"• **20%** glaze (factor 0.80)\n" +
			"• **30%** glaze (factor 0.70)\n"
	}
	return "• **0%** (sin glaseo)\n" +
		"• **10%** glaseo (factor 0.90)\n" +
		"• **20%** glaseo (factor 0.80)\n" +
		"• **30%** glaseo (factor 0.70)\n"
}

// AskGlaseo elicits the glaze percentage for a single quote.
func (r *Renderer) AskGlaseo(lang domain.Language, product domain.Product, size domain.Size) string {
	if lang == domain.LanguageEN {
		return fmt.Sprintf("❄️ **To price %s %s I need the glaze:**\n\n", product, size) +
			"📋 **Options:**\n" + glaseoOptions(lang) +
			"\nWhat glaze percentage do you need? 🤔"
	}
	return fmt.Sprintf("❄️ **Para calcular el precio de %s %s necesito el glaseo:**\n\n", product, size) +
		"📋 **Opciones:**\n" + glaseoOptions(lang) +
		"\n¿Qué porcentaje de glaseo necesitas? 🤔"
}

// InvalidGlaseo re-asks after an unreadable or out-of-range glaze reply.
func (r *Renderer) InvalidGlaseo(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "🤔 That's not a valid percentage. Please reply with a number between 0 and 50:\n\n" +
			glaseoOptions(lang) +
			"\nOr type 'menu' to start over"
	}
	return "🤔 Porcentaje no válido. Por favor responde con un número entre 0 y 50:\n\n" +
		glaseoOptions(lang) +
		"\nO escribe 'menu' para volver al inicio"
}

// freightExamples is the reply format hint shown with freight questions.
func freightExamples(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "💡 **Examples:**\n" +
			"• \"freight 0.25\"\n" +
			"• \"0.30\"\n" +
			"• \"25\" (cents per kilo)\n"
	}
	return "💡 **Ejemplos:**\n" +
		"• \"flete 0.25\"\n" +
		"• \"0.30\"\n" +
		"• \"25\" (centavos por kilo)\n"
}

// AskFreight elicits the freight rate for a single quote.
func (r *Renderer) AskFreight(lang domain.Language, product domain.Product, size domain.Size, destination string) string {
	var b strings.Builder
	if lang == domain.LanguageEN {
		if destination != "" {
			fmt.Fprintf(&b, "🚢 **To price %s %s with freight to %s I need the freight rate:**\n\n", product, size, destination)
		} else {
			fmt.Fprintf(&b, "🚢 **To price %s %s with freight I need the freight rate:**\n\n", product, size)
		}
		b.WriteString(freightExamples(lang))
		b.WriteString("\nWhat is the freight per kilo? 💰")
		return b.String()
	}
	if destination != "" {
		fmt.Fprintf(&b, "🚢 **Para calcular el precio de %s %s con flete a %s necesito el valor del flete:**\n\n", product, size, destination)
	} else {
		fmt.Fprintf(&b, "🚢 **Para calcular el precio de %s %s con flete necesito el valor del flete:**\n\n", product, size)
	}
	b.WriteString(freightExamples(lang))
	b.WriteString("\n¿Cuál es el valor del flete por kilo? 💰")
	return b.String()
}

// InvalidFreight re-asks after an unreadable or out-of-band freight
// reply. The band keeps typos like 250 from pricing a container.
func (r *Renderer) InvalidFreight(lang domain.Language, min, max float64) string {
	if lang == domain.LanguageEN {
		return fmt.Sprintf("🤔 That's not a valid freight value. I accept between $%.2f and $%.2f per kilo:\n\n", min, max) +
			freightExamples(lang) +
			"\nOr type 'menu' to start over"
	}
	return fmt.Sprintf("🤔 Valor no válido. Acepto fletes entre $%.2f y $%.2f por kilo:\n\n", min, max) +
		freightExamples(lang) +
		"\nO escribe 'menu' para volver al inicio"
}

// AskMultiGlaseo lists the detected lines and asks one glaze for all.
func (r *Renderer) AskMultiGlaseo(lang domain.Language, queries []domain.Query, destination string) string {
	var b strings.Builder
	if lang == domain.LanguageEN {
		fmt.Fprintf(&b, "📋 **I detected %d products to quote:**\n\n", len(queries))
	} else {
		fmt.Fprintf(&b, "📋 **Detecté %d productos para cotizar:**\n\n", len(queries))
	}

	for i, q := range queries {
		fmt.Fprintf(&b, "   %d. %s %s\n", i+1, q.Product, q.Size)
	}
	if destination != "" {
		if lang == domain.LanguageEN {
			fmt.Fprintf(&b, "🌍 Destination: %s\n", destination)
		} else {
			fmt.Fprintf(&b, "🌍 Destino: %s\n", destination)
		}
	}

	if lang == domain.LanguageEN {
		b.WriteString("\n❄️ **What glaze do you need for all products?**\n")
		b.WriteString(glaseoOptions(lang))
		b.WriteString("\n💡 Reply with the number: 10, 20 or 30")
	} else {
		b.WriteString("\n❄️ **¿Qué glaseo necesitas para todos los productos?**\n")
		b.WriteString(glaseoOptions(lang))
		b.WriteString("\n💡 Responde con el número: 10, 20 o 30")
	}
	return b.String()
}

// AskMultiFreight elicits one freight rate for a DDP multi-product batch.
func (r *Renderer) AskMultiFreight(lang domain.Language, count int, destination string) string {
	var b strings.Builder
	if lang == domain.LanguageEN {
		if destination != "" {
			fmt.Fprintf(&b, "🚢 **To price the %d DDP products to %s I need the freight rate:**\n\n", count, destination)
		} else {
			fmt.Fprintf(&b, "🚢 **To price the %d DDP products I need the freight rate:**\n\n", count)
		}
		b.WriteString(freightExamples(lang))
		b.WriteString("\nWhat is the freight per kilo? 💰")
		return b.String()
	}
	if destination != "" {
		fmt.Fprintf(&b, "🚢 **Para calcular los %d productos DDP a %s necesito el valor del flete:**\n\n", count, destination)
	} else {
		fmt.Fprintf(&b, "🚢 **Para calcular los %d productos DDP necesito el valor del flete:**\n\n", count)
	}
	b.WriteString(freightExamples(lang))
	b.WriteString("\n¿Cuál es el valor del flete por kilo? 💰")
	return b.String()
}

// ConsolidatedSummary reports the batch outcome and asks which language
// the consolidated quote should be delivered in. No preference exists
// yet at this point, so the summary leads in Spanish with self-evident
// options, matching the language menu.
func (r *Renderer) ConsolidatedSummary(c *domain.ConsolidatedQuote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ **Precios calculados para %d/%d productos**\n", c.Succeeded(), c.Total())
	if c.GlaseoPct != nil {
		fmt.Fprintf(&b, "❄️ Glaseo: %d%%\n", *c.GlaseoPct)
	}
	b.WriteString("\n")

	if len(c.Failures) > 0 {
		b.WriteString("⚠️ No se encontraron precios para:\n")
		for _, f := range c.Failures {
			fmt.Fprintf(&b, "   • %s %s\n", f.Product, f.Size)
		}
		b.WriteString("\n")
	}

	b.WriteString("🌐 **Selecciona el idioma para la cotización consolidada:**\n\n")
	b.WriteString("1️⃣ Español 🇪🇸\n")
	b.WriteString("2️⃣ English 🇺🇸\n\n")
	b.WriteString("Responde con el número o escribe:\n")
	b.WriteString("• \"español\" o \"spanish\"\n")
	b.WriteString("• \"inglés\" o \"english\"")
	return b.String()
}

// FreightUpdated confirms a freight change before the re-priced quote.
func (r *Renderer) FreightUpdated(lang domain.Language, freight float64) string {
	if lang == domain.LanguageEN {
		return fmt.Sprintf("✅ **Freight updated to $%.2f**", freight)
	}
	return fmt.Sprintf("✅ **Flete actualizado a $%.2f**", freight)
}

// UnknownProduct names the unrecognized product and lists the catalog.
func (r *Renderer) UnknownProduct(lang domain.Language, requested string) string {
	var b strings.Builder
	if lang == domain.LanguageEN {
		if requested != "" {
			fmt.Fprintf(&b, "⚠️ I don't recognize the product \"%s\".\n\n", requested)
		}
		b.WriteString("🏷️ **Available products:**\n")
	} else {
		if requested != "" {
			fmt.Fprintf(&b, "⚠️ No reconozco el producto \"%s\".\n\n", requested)
		}
		b.WriteString("🏷️ **Productos disponibles:**\n")
	}
	for _, p := range domain.Products {
		fmt.Fprintf(&b, "• %s\n", p)
	}
	if lang == domain.LanguageEN {
		b.WriteString("\n💡 Example: \"Price HLSO 16/20 with 20% glaze\"")
	} else {
		b.WriteString("\n💡 Ejemplo: \"Precio HLSO 16/20 con 20% glaseo\"")
	}
	return b.String()
}

// UnknownSize names the size that the product is not offered in and
// enumerates the ones that are.
func (r *Renderer) UnknownSize(lang domain.Language, product domain.Product, requested string, valid []domain.Size) string {
	sizes := make([]string, len(valid))
	for i, s := range valid {
		sizes[i] = string(s)
	}
	if lang == domain.LanguageEN {
		return fmt.Sprintf("⚠️ Size %s is not available for %s.\n\n", requested, product) +
			fmt.Sprintf("📏 **Available sizes for %s:**\n%s", product, strings.Join(sizes, ", "))
	}
	return fmt.Sprintf("⚠️ La talla %s no está disponible para %s.\n\n", requested, product) +
		fmt.Sprintf("📏 **Tallas disponibles para %s:**\n%s", product, strings.Join(sizes, ", "))
}

// MissingSize asks which size to quote when only the product is known.
func (r *Renderer) MissingSize(lang domain.Language, product domain.Product, valid []domain.Size) string {
	sizes := make([]string, len(valid))
	for i, s := range valid {
		sizes[i] = string(s)
	}
	example := domain.Size("16/20")
	if len(valid) > 0 {
		example = valid[0]
	}
	if lang == domain.LanguageEN {
		return fmt.Sprintf("📏 **Which %s size do you need?**\n\n", product) +
			fmt.Sprintf("Available sizes: %s\n\n", strings.Join(sizes, ", ")) +
			fmt.Sprintf("💡 Example: \"%s %s with 20%% glaze\"", product, example)
	}
	return fmt.Sprintf("📏 **¿Qué talla de %s necesitas?**\n\n", product) +
		fmt.Sprintf("Tallas disponibles: %s\n\n", strings.Join(sizes, ", ")) +
		fmt.Sprintf("💡 Ejemplo: \"%s %s con 20%% glaseo\"", product, example)
}

// NoPreviousQuote answers a freight change without anything to modify.
func (r *Renderer) NoPreviousQuote(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "⚠️ There is no previous quote to modify.\n\n" +
			"💡 Ask for a new one, for example: \"Price HLSO 16/20 with 20% glaze\""
	}
	return "⚠️ No hay una cotización previa para modificar.\n\n" +
		"💡 Pídeme una nueva, por ejemplo: \"Precio HLSO 16/20 con 20% glaseo\""
}

// NotUnderstood is the honest fallback: say what the engine can do,
// never guess what the client meant.
func (r *Renderer) NotUnderstood(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "🤔 I didn't catch that. I quote shrimp by product and size, for example:\n" +
			"• \"Price HLSO 16/20 with 20% glaze\"\n" +
			"• \"Quote 30/40 DDP Houston\"\n\n" +
			"💡 Type 'help' for more options."
	}
	return "🤔 No entendí tu mensaje. Cotizo camarón por producto y talla, por ejemplo:\n" +
		"• \"Precio HLSO 16/20 con 20% glaseo\"\n" +
		"• \"Cotizar 30/40 DDP Houston\"\n\n" +
		"💡 Escribe 'ayuda' para ver más opciones."
}

// Cancelled confirms dropping the pending request.
func (r *Renderer) Cancelled(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "✅ Request cancelled. How else can I help?\n\n💡 Type 'menu' to see the options."
	}
	return "✅ Consulta cancelada. ¿En qué más puedo ayudarte?\n\n💡 Escribe 'menu' para ver las opciones."
}

// CatalogDown is the only failure surfaced as "try later".
func (r *Renderer) CatalogDown(lang domain.Language) string {
	if lang == domain.LanguageEN {
		return "⚠️ I can't reach the price catalog right now. Please try again in a few minutes. 🙏"
	}
	return "⚠️ No puedo consultar precios en este momento. Por favor intenta de nuevo en unos minutos. 🙏"
}

// ProductUnavailable answers for rows the sales desk switched off.
func (r *Renderer) ProductUnavailable(lang domain.Language, product domain.Product, size domain.Size) string {
	if lang == domain.LanguageEN {
		return "⚠️ **NO PRICE ESTABLISHED**\n\n" +
			fmt.Sprintf("📞 For a %s %s quotation, please contact BGR Export directly.\n\n", product, size) +
			"🏢 **Contact:**\n" +
			"📧 Email: ventas@bgrexport.com\n" +
			"🌐 Web: www.bgrexport.com"
	}
	return "⚠️ **SIN PRECIO ESTABLECIDO**\n\n" +
		fmt.Sprintf("📞 Para obtener cotización de %s %s, contacta directamente con BGR Export.\n\n", product, size) +
		"🏢 **Información de contacto:**\n" +
		"📧 Email: ventas@bgrexport.com\n" +
		"🌐 Web: www.bgrexport.com"
}

// ArchiveLink is appended to a delivered quote when the proforma was
// archived and a download link exists. "Proforma" reads the same in
// both languages.
func (r *Renderer) ArchiveLink(url string) string {
	return "📄 Proforma: " + url
}
