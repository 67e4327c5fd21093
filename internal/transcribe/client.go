// Package transcribe turns voice notes into text through an
// OpenAI-compatible speech-to-text endpoint.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"

	"github.com/sashabaranov/go-openai"
)

// Client transcribes audio payloads. A nil Client reports transcription
// as unavailable, so callers can treat "disabled" and "failed" the same.
type Client struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

// NewClient builds a transcription client, or nil when no API key is
// configured.
func NewClient(cfg config.TranscribeConfig, log *logger.Logger) *Client {
	if !cfg.IsTranscribeEnabled() {
		return nil
	}

	clientConfig := openai.DefaultConfig(cfg.GetOpenAIAPIKey())
	if cfg.GetOpenAIBaseURL() != "" {
		clientConfig.BaseURL = cfg.GetOpenAIBaseURL()
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.GetTranscribeModel(),
		log:    log,
	}
}

// Transcribe sends the audio bytes to the speech-to-text model and
// returns the recognized text. The filename only hints the container
// format to the API.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if c == nil {
		return "", errors.New("transcription is not configured")
	}
	if len(audio) == 0 {
		return "", errors.New("empty audio payload")
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("transcription returned no text")
	}

	c.log.Debug("voice note transcribed", "chars", len(text))
	return text, nil
}
