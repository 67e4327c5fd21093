package agent

import (
	"fmt"
	"strings"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
)

const extractorInstruction = `You read WhatsApp messages sent to an Ecuadorian shrimp exporter and extract the pricing request they contain. Clients write informally in Spanish or English.

Call the SaveExtraction tool exactly once with what the message actually states. Leave out every field the message does not mention. Never invent or assume values. Freight in particular must never be guessed: if the message does not state a freight value, do not set one.`

const retryPrompt = `You MUST call the SaveExtraction tool now with the extraction for the last message. Call it exactly once.`

// buildExtractionPrompt assembles the user prompt: the catalog the values
// must come from, the field rules, and the message itself.
func buildExtractionPrompt(text string, conversationLanguage domain.Language) string {
	products := make([]string, 0, len(domain.Products))
	for _, p := range domain.Products {
		products = append(products, string(p))
	}
	sizes := make([]string, 0, len(domain.Sizes))
	for _, s := range domain.Sizes {
		sizes = append(sizes, string(s))
	}

	var sb strings.Builder
	sb.WriteString("Valid products: " + strings.Join(products, ", ") + "\n")
	sb.WriteString("Valid sizes: " + strings.Join(sizes, ", ") + "\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- product and size must be copied from the valid lists, or left empty when the message names none.\n")
	sb.WriteString("- sizes 20/30, 30/40, 40/50, 50/60, 60/70 and 70/80 are only sold head-on; seeing one of them without a product means HOSO.\n")
	sb.WriteString("- glaseoPct is the glaze percentage. A percentage next to the word NET is a net weight, not glaze.\n")
	sb.WriteString("- freight is a price per unit like 0.25. Only set it when the message states it.\n")
	sb.WriteString("- isDdp is true only when the message asks for DDP or delivered duty paid.\n")
	sb.WriteString("- intent is greeting for pure greetings, quote when the message asks about products or prices, unknown otherwise.\n")
	sb.WriteString("- confidence reflects how sure you are about the extraction overall, between 0 and 1.\n")

	if conversationLanguage.Valid() {
		name := "Spanish"
		if conversationLanguage == domain.LanguageEN {
			name = "English"
		}
		sb.WriteString("\nThe conversation so far has been in " + name + ".\n")
	}

	fmt.Fprintf(&sb, "\nMessage:\n%s", text)
	return sb.String()
}
