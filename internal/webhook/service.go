package webhook

import (
	"context"
	"fmt"
	"strings"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/engine"
	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
	"github.com/xtaxx12/BGR-SHRIMP/platform/phone"
)

const channelWhatsApp = "whatsapp"

// Voice note handling runs before the session language is known, so
// these stay in the house default language.
const (
	msgAudioFailed   = "🎤 No pude procesar el audio. Por favor envía tu solicitud como texto."
	msgAudioReceived = "🎤 Audio recibido: %q"
)

// MessageHandler is the quoting conversation core.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg engine.InboundMessage) (engine.Response, error)
}

// Deliverer sends replies back through the gateway.
type Deliverer interface {
	SendMessage(ctx context.Context, recipient, message string) error
}

// MediaDownloader fetches voice note payloads from the gateway.
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error)
}

// Transcriber turns a voice note into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Service runs gateway callbacks through the quoting core and delivers
// the replies.
type Service struct {
	engine MessageHandler
	sender Deliverer
	media  MediaDownloader
	stt    Transcriber
	log    *logger.Logger
}

// NewService creates the webhook service.
func NewService(eng MessageHandler, sender Deliverer, media MediaDownloader, stt Transcriber, log *logger.Logger) *Service {
	return &Service{engine: eng, sender: sender, media: media, stt: stt, log: log}
}

// ProcessInbound handles one inbound message end to end. The returned
// result is the webhook acknowledgment; the actual reply goes out through
// the gateway client, not the HTTP response.
func (s *Service) ProcessInbound(ctx context.Context, payload InboundPayload) (InboundResult, error) {
	userID := phone.WhatsAppID(payload.From)
	if userID == "" {
		return InboundResult{}, apperr.BadRequest("unrecognized sender address").WithOp("webhook.ProcessInbound")
	}

	// Stamp the conversation user into the context so every log line of
	// this turn carries it alongside the request ID.
	ctx = context.WithValue(ctx, logger.UserIDKey, userID)
	log := s.log.WithContext(ctx)

	text := strings.TrimSpace(payload.Text)
	if payload.Audio != nil && text == "" {
		transcribed, ok := s.transcribeVoiceNote(ctx, userID, payload.Audio)
		if !ok {
			return InboundResult{Status: "ignored"}, nil
		}
		text = transcribed
	}

	resp, err := s.engine.HandleMessage(ctx, engine.InboundMessage{
		UserID:    userID,
		Text:      text,
		MessageID: payload.MessageID,
		Channel:   channelWhatsApp,
	})
	if err != nil {
		return InboundResult{}, err
	}

	// An empty reply means the message was a suppressed redelivery.
	if resp.Text == "" {
		return InboundResult{Status: "duplicate"}, nil
	}

	if err := s.sender.SendMessage(ctx, userID, resp.Text); err != nil {
		log.DeliveryFailed(userID, channelWhatsApp, err)
		return InboundResult{}, fmt.Errorf("failed to deliver reply: %w", err)
	}

	return InboundResult{Status: "replied", Replied: true}, nil
}

// transcribeVoiceNote downloads and transcribes a voice note. On any
// failure the sender gets a retry message and the turn ends here.
func (s *Service) transcribeVoiceNote(ctx context.Context, userID string, audio *InboundAudio) (string, bool) {
	log := s.log.WithContext(ctx)

	text, err := s.recognize(ctx, audio)
	if err != nil {
		log.Warn("voice note processing failed", "error", err)
		if sendErr := s.sender.SendMessage(ctx, userID, msgAudioFailed); sendErr != nil {
			log.DeliveryFailed(userID, channelWhatsApp, sendErr)
		}
		return "", false
	}

	// Echo the transcription so the client can correct a bad hearing.
	if err := s.sender.SendMessage(ctx, userID, fmt.Sprintf(msgAudioReceived, text)); err != nil {
		log.DeliveryFailed(userID, channelWhatsApp, err)
	}
	return text, true
}

func (s *Service) recognize(ctx context.Context, audio *InboundAudio) (string, error) {
	payload, err := s.media.DownloadMedia(ctx, audio.URL)
	if err != nil {
		return "", fmt.Errorf("failed to download voice note: %w", err)
	}
	return s.stt.Transcribe(ctx, payload, voiceNoteFilename(audio))
}

// voiceNoteFilename falls back to .ogg, the gateway's container for
// voice notes.
func voiceNoteFilename(audio *InboundAudio) string {
	if audio.FileName != "" {
		return audio.FileName
	}
	return "voice-note.ogg"
}
