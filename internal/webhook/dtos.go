package webhook

// InboundPayload mirrors the gateway's message callback. Only the fields
// the quoting flow needs are bound; everything else is ignored.
type InboundPayload struct {
	// From is the sender as the gateway reports it: a JID like
	// "593991234567@s.whatsapp.net" or a bare number.
	From      string `json:"from" validate:"required,max=100"`
	MessageID string `json:"message_id" validate:"max=100"`
	PushName  string `json:"pushname" validate:"max=100"`
	Text      string `json:"text" validate:"max=4000"`
	// Audio is set when the message is a voice note.
	Audio *InboundAudio `json:"audio,omitempty"`
}

// InboundAudio describes a voice note attachment.
type InboundAudio struct {
	URL      string `json:"url" validate:"required,max=2000"`
	MimeType string `json:"mime_type" validate:"max=100"`
	FileName string `json:"file_name" validate:"max=255"`
}

// InboundResult acknowledges an inbound message to the gateway.
type InboundResult struct {
	Status  string `json:"status"` // "replied", "duplicate", "ignored"
	Replied bool   `json:"replied"`
}
