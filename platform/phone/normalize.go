// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Numbers without a country prefix are assumed to be Ecuadorian.
const defaultRegion = "EC"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// StripJID removes a WhatsApp JID suffix such as @s.whatsapp.net or @g.us,
// leaving the bare number portion.
func StripJID(input string) string {
	trimmed := strings.TrimSpace(input)
	if at := strings.IndexByte(trimmed, '@'); at >= 0 {
		return trimmed[:at]
	}
	return trimmed
}

// WhatsAppID normalizes an inbound sender identifier to the digits-only
// form the gateway expects: JID suffix removed, E.164 without the plus.
func WhatsAppID(input string) string {
	normalized := NormalizeE164(StripJID(input))
	return strings.TrimPrefix(normalized, "+")
}
