package webhook

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/engine"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
)

type fakeEngine struct {
	calls    int
	lastMsg  engine.InboundMessage
	response engine.Response
	err      error
}

func (f *fakeEngine) HandleMessage(_ context.Context, msg engine.InboundMessage) (engine.Response, error) {
	f.calls++
	f.lastMsg = msg
	return f.response, f.err
}

type fakeSender struct {
	to       []string
	messages []string
	err      error
}

func (f *fakeSender) SendMessage(_ context.Context, recipient, message string) error {
	f.to = append(f.to, recipient)
	f.messages = append(f.messages, message)
	return f.err
}

type fakeDownloader struct {
	calls   int
	lastURL string
	payload []byte
	err     error
}

func (f *fakeDownloader) DownloadMedia(_ context.Context, mediaURL string) ([]byte, error) {
	f.calls++
	f.lastURL = mediaURL
	return f.payload, f.err
}

type fakeTranscriber struct {
	calls        int
	lastAudio    string
	lastFilename string
	text         string
	err          error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio []byte, filename string) (string, error) {
	f.calls++
	f.lastAudio = string(audio)
	f.lastFilename = filename
	return f.text, f.err
}

func newTestService(eng *fakeEngine, sender *fakeSender, media *fakeDownloader, stt *fakeTranscriber) *Service {
	return NewService(eng, sender, media, stt, logger.New("development"))
}

func TestProcessInboundTextMessage(t *testing.T) {
	eng := &fakeEngine{response: engine.Response{Text: "🦐 hola", StateChanged: true}}
	sender := &fakeSender{}
	svc := newTestService(eng, sender, &fakeDownloader{}, &fakeTranscriber{})

	result, err := svc.ProcessInbound(context.Background(), InboundPayload{
		From:      "593991234567@s.whatsapp.net",
		MessageID: "wamid-1",
		Text:      "Cotizar HLSO 16/20 al 20%",
	})
	if err != nil {
		t.Fatalf("ProcessInbound returned error: %v", err)
	}

	if eng.calls != 1 {
		t.Fatalf("expected 1 engine call, got %d", eng.calls)
	}
	if eng.lastMsg.UserID != "593991234567" {
		t.Errorf("expected JID stripped to digits, got %q", eng.lastMsg.UserID)
	}
	if eng.lastMsg.Channel != "whatsapp" {
		t.Errorf("expected channel whatsapp, got %q", eng.lastMsg.Channel)
	}
	if eng.lastMsg.MessageID != "wamid-1" {
		t.Errorf("expected message ID passthrough, got %q", eng.lastMsg.MessageID)
	}

	if len(sender.messages) != 1 || sender.messages[0] != "🦐 hola" {
		t.Fatalf("expected one delivered reply, got %v", sender.messages)
	}
	if sender.to[0] != "593991234567" {
		t.Errorf("expected reply to sender, got %s", sender.to[0])
	}
	if result.Status != "replied" || !result.Replied {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestProcessInboundSuppressedRedelivery(t *testing.T) {
	eng := &fakeEngine{response: engine.Response{}}
	sender := &fakeSender{}
	svc := newTestService(eng, sender, &fakeDownloader{}, &fakeTranscriber{})

	result, err := svc.ProcessInbound(context.Background(), InboundPayload{
		From:      "593991234567",
		MessageID: "wamid-1",
		Text:      "hola",
	})
	if err != nil {
		t.Fatalf("ProcessInbound returned error: %v", err)
	}
	if result.Status != "duplicate" {
		t.Errorf("expected duplicate status, got %s", result.Status)
	}
	if len(sender.messages) != 0 {
		t.Errorf("expected no reply for a redelivery, got %v", sender.messages)
	}
}

func TestProcessInboundBlankSender(t *testing.T) {
	eng := &fakeEngine{}
	svc := newTestService(eng, &fakeSender{}, &fakeDownloader{}, &fakeTranscriber{})

	_, err := svc.ProcessInbound(context.Background(), InboundPayload{From: "   ", Text: "hola"})
	if err == nil {
		t.Fatal("expected error for blank sender")
	}
	if eng.calls != 0 {
		t.Errorf("expected no engine call for blank sender, got %d", eng.calls)
	}
}

func TestProcessInboundEngineError(t *testing.T) {
	eng := &fakeEngine{err: errors.New("session store down")}
	sender := &fakeSender{}
	svc := newTestService(eng, sender, &fakeDownloader{}, &fakeTranscriber{})

	_, err := svc.ProcessInbound(context.Background(), InboundPayload{From: "593991234567", Text: "hola"})
	if err == nil {
		t.Fatal("expected engine error to propagate")
	}
	if len(sender.messages) != 0 {
		t.Errorf("expected no reply after engine failure, got %v", sender.messages)
	}
}

func TestProcessInboundDeliveryFailure(t *testing.T) {
	eng := &fakeEngine{response: engine.Response{Text: "🦐 hola"}}
	sender := &fakeSender{err: errors.New("gateway down")}
	svc := newTestService(eng, sender, &fakeDownloader{}, &fakeTranscriber{})

	_, err := svc.ProcessInbound(context.Background(), InboundPayload{From: "593991234567", Text: "hola"})
	if err == nil {
		t.Fatal("expected delivery failure to propagate")
	}
}

func TestProcessInboundVoiceNote(t *testing.T) {
	eng := &fakeEngine{response: engine.Response{Text: "🦐 cotización lista", StateChanged: true}}
	sender := &fakeSender{}
	media := &fakeDownloader{payload: []byte("OggS audio bytes")}
	stt := &fakeTranscriber{text: "Cotizar HLSO 16/20 al 20%"}
	svc := newTestService(eng, sender, media, stt)

	result, err := svc.ProcessInbound(context.Background(), InboundPayload{
		From:      "593991234567@s.whatsapp.net",
		MessageID: "wamid-2",
		Audio:     &InboundAudio{URL: "https://gateway.local/media/abc", MimeType: "audio/ogg"},
	})
	if err != nil {
		t.Fatalf("ProcessInbound returned error: %v", err)
	}

	if media.calls != 1 || media.lastURL != "https://gateway.local/media/abc" {
		t.Fatalf("expected media download, got %d calls url %q", media.calls, media.lastURL)
	}
	if stt.calls != 1 {
		t.Fatalf("expected 1 transcription, got %d", stt.calls)
	}
	if stt.lastAudio != "OggS audio bytes" {
		t.Errorf("expected downloaded payload passed to transcriber, got %q", stt.lastAudio)
	}
	if stt.lastFilename != "voice-note.ogg" {
		t.Errorf("expected fallback filename, got %q", stt.lastFilename)
	}

	if eng.calls != 1 {
		t.Fatalf("expected 1 engine call, got %d", eng.calls)
	}
	if eng.lastMsg.Text != "Cotizar HLSO 16/20 al 20%" {
		t.Errorf("expected transcription as message text, got %q", eng.lastMsg.Text)
	}

	// Echo first, reply second.
	if len(sender.messages) != 2 {
		t.Fatalf("expected echo plus reply, got %v", sender.messages)
	}
	if !strings.Contains(sender.messages[0], "Audio recibido") || !strings.Contains(sender.messages[0], stt.text) {
		t.Errorf("expected transcription echo, got %q", sender.messages[0])
	}
	if sender.messages[1] != "🦐 cotización lista" {
		t.Errorf("expected engine reply last, got %q", sender.messages[1])
	}
	if result.Status != "replied" {
		t.Errorf("expected replied status, got %s", result.Status)
	}
}

func TestProcessInboundVoiceNoteDownloadFailure(t *testing.T) {
	eng := &fakeEngine{}
	sender := &fakeSender{}
	media := &fakeDownloader{err: errors.New("media expired")}
	svc := newTestService(eng, sender, media, &fakeTranscriber{})

	result, err := svc.ProcessInbound(context.Background(), InboundPayload{
		From:  "593991234567",
		Audio: &InboundAudio{URL: "https://gateway.local/media/abc"},
	})
	if err != nil {
		t.Fatalf("ProcessInbound returned error: %v", err)
	}

	if eng.calls != 0 {
		t.Errorf("expected no engine call after download failure, got %d", eng.calls)
	}
	if len(sender.messages) != 1 || !strings.Contains(sender.messages[0], "No pude procesar el audio") {
		t.Errorf("expected retry message, got %v", sender.messages)
	}
	if result.Status != "ignored" {
		t.Errorf("expected ignored status, got %s", result.Status)
	}
}

func TestProcessInboundVoiceNoteTranscriptionFailure(t *testing.T) {
	eng := &fakeEngine{}
	sender := &fakeSender{}
	media := &fakeDownloader{payload: []byte("OggS")}
	stt := &fakeTranscriber{err: errors.New("model unavailable")}
	svc := newTestService(eng, sender, media, stt)

	result, err := svc.ProcessInbound(context.Background(), InboundPayload{
		From:  "593991234567",
		Audio: &InboundAudio{URL: "https://gateway.local/media/abc", FileName: "note.opus"},
	})
	if err != nil {
		t.Fatalf("ProcessInbound returned error: %v", err)
	}

	if stt.lastFilename != "note.opus" {
		t.Errorf("expected gateway filename, got %q", stt.lastFilename)
	}
	if eng.calls != 0 {
		t.Errorf("expected no engine call after transcription failure, got %d", eng.calls)
	}
	if result.Status != "ignored" {
		t.Errorf("expected ignored status, got %s", result.Status)
	}
}

func TestProcessInboundTextWinsOverAudio(t *testing.T) {
	eng := &fakeEngine{response: engine.Response{Text: "ok"}}
	sender := &fakeSender{}
	media := &fakeDownloader{}
	svc := newTestService(eng, sender, media, &fakeTranscriber{})

	_, err := svc.ProcessInbound(context.Background(), InboundPayload{
		From:  "593991234567",
		Text:  "Cotizar HOSO 30/40",
		Audio: &InboundAudio{URL: "https://gateway.local/media/abc"},
	})
	if err != nil {
		t.Fatalf("ProcessInbound returned error: %v", err)
	}

	if media.calls != 0 {
		t.Errorf("expected caption text to skip transcription, got %d downloads", media.calls)
	}
	if eng.lastMsg.Text != "Cotizar HOSO 30/40" {
		t.Errorf("expected caption text used, got %q", eng.lastMsg.Text)
	}
}
