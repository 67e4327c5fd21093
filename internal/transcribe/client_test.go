package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
)

type testTranscribeConfig struct {
	key   string
	base  string
	model string
}

func (c testTranscribeConfig) GetOpenAIAPIKey() string    { return c.key }
func (c testTranscribeConfig) GetOpenAIBaseURL() string   { return c.base }
func (c testTranscribeConfig) GetTranscribeModel() string { return c.model }
func (c testTranscribeConfig) IsTranscribeEnabled() bool  { return c.key != "" }

func TestTranscribeSendsAudioAndReturnsText(t *testing.T) {
	var gotPath, gotModel, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		gotModel = r.FormValue("model")
		if _, header, err := r.FormFile("file"); err == nil {
			gotFilename = header.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"text":"Cotizar HLSO 16/20 al 20%"}`)
	}))
	defer srv.Close()

	c := NewClient(testTranscribeConfig{key: "sk-test", base: srv.URL, model: "whisper-1"}, logger.New("development"))
	if c == nil {
		t.Fatal("expected client with API key configured")
	}

	text, err := c.Transcribe(context.Background(), []byte("OggS fake audio"), "note.ogg")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "Cotizar HLSO 16/20 al 20%" {
		t.Errorf("expected transcription text, got %q", text)
	}
	if gotPath != "/audio/transcriptions" {
		t.Errorf("expected /audio/transcriptions, got %s", gotPath)
	}
	if gotModel != "whisper-1" {
		t.Errorf("expected model whisper-1, got %s", gotModel)
	}
	if gotFilename != "note.ogg" {
		t.Errorf("expected filename note.ogg, got %s", gotFilename)
	}
}

func TestTranscribeEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"text":"   "}`)
	}))
	defer srv.Close()

	c := NewClient(testTranscribeConfig{key: "sk-test", base: srv.URL, model: "whisper-1"}, logger.New("development"))
	if _, err := c.Transcribe(context.Background(), []byte("OggS"), "note.ogg"); err == nil {
		t.Fatal("expected error for blank transcription")
	}
}

func TestTranscribeDisabled(t *testing.T) {
	c := NewClient(testTranscribeConfig{}, logger.New("development"))
	if c != nil {
		t.Fatal("expected nil client without API key")
	}
	if _, err := c.Transcribe(context.Background(), []byte("OggS"), "note.ogg"); err == nil {
		t.Fatal("expected error from nil client")
	}
}

func TestTranscribeEmptyAudio(t *testing.T) {
	c := NewClient(testTranscribeConfig{key: "sk-test", model: "whisper-1"}, logger.New("development"))
	if _, err := c.Transcribe(context.Background(), nil, "note.ogg"); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
