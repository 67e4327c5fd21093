// Package agent hosts the LLM extraction agent. It is the "ai" strategy
// behind the extractor pipeline; the deterministic rules remain the
// fallback when the agent is disabled or fails.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	adkagent "google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
	"google.golang.org/genai"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/extractor"
	"github.com/xtaxx12/BGR-SHRIMP/platform/ai/openaicompat"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
)

const classifierAppName = "quote-extractor"

// extractionSink accumulates the tool call of the current run. The agent
// is expected to call SaveExtraction exactly once per message.
type extractionSink struct {
	mu    sync.Mutex
	saved *SaveExtractionInput
}

func (s *extractionSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = nil
}

func (s *extractionSink) Save(in SaveExtractionInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = &in
}

func (s *extractionSink) Result() (SaveExtractionInput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return SaveExtractionInput{}, false
	}
	return *s.saved, true
}

// Classifier is the model-backed extraction strategy. One message in, one
// SaveExtraction tool call out; runs are serialized because the sink is
// shared with the tool closure.
type Classifier struct {
	runner         *runner.Runner
	sessionService session.Service
	appName        string
	sink           *extractionSink
	log            *logger.Logger
	runMu          sync.Mutex
}

var _ extractor.Classifier = (*Classifier)(nil)

// NewClassifier builds the extraction agent against the configured
// OpenAI-compatible endpoint.
func NewClassifier(cfg config.ExtractorConfig, log *logger.Logger) (*Classifier, error) {
	model := openaicompat.NewModel(openaicompat.Config{
		APIKey:  cfg.GetExtractorAPIKey(),
		BaseURL: cfg.GetExtractorBaseURL(),
		Model:   cfg.GetExtractorModel(),
	})

	sink := &extractionSink{}
	saveTool, err := createSaveExtractionTool(sink)
	if err != nil {
		return nil, fmt.Errorf("failed to build SaveExtraction tool: %w", err)
	}

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "QuoteExtractor",
		Model:       model,
		Description: "Extracts structured shrimp pricing requests from client messages.",
		Instruction: extractorInstruction,
		Tools:       []tool.Tool{saveTool},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        classifierAppName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor runner: %w", err)
	}

	return &Classifier{
		runner:         r,
		sessionService: sessionService,
		appName:        classifierAppName,
		sink:           sink,
		log:            log,
	}, nil
}

func createSaveExtractionTool(sink *extractionSink) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "SaveExtraction",
		Description: "Saves the extraction for the current message. Call this ONCE with every field the message states; omit fields the message does not mention.",
	}, func(ctx tool.Context, input SaveExtractionInput) (SaveExtractionOutput, error) {
		sink.Save(input)
		return SaveExtractionOutput{Success: true, Message: "extraction saved"}, nil
	})
}

// Classify runs the agent over one message and returns the query it
// saved. The caller validates the values against the catalog.
func (c *Classifier) Classify(ctx context.Context, text string, hints extractor.Hints) (domain.Query, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.sink.Reset()

	userID, sessionID, err := c.createSession(ctx, hints.UserID)
	if err != nil {
		return domain.Query{}, err
	}
	defer c.cleanupSession(ctx, userID, sessionID)

	prompt := buildExtractionPrompt(text, hints.Language)
	if err := c.run(ctx, userID, sessionID, prompt); err != nil {
		return domain.Query{}, err
	}

	input, ok := c.sink.Result()
	if !ok {
		if err := c.run(ctx, userID, sessionID, retryPrompt); err != nil {
			return domain.Query{}, err
		}
		input, ok = c.sink.Result()
	}
	if !ok {
		return domain.Query{}, fmt.Errorf("agent did not call SaveExtraction")
	}

	return input.toQuery(), nil
}

func (c *Classifier) createSession(ctx context.Context, clientID string) (string, string, error) {
	userID := "extractor-" + clientID
	sessionID := uuid.New().String()

	_, err := c.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   c.appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to create extractor session: %w", err)
	}
	return userID, sessionID, nil
}

func (c *Classifier) cleanupSession(ctx context.Context, userID, sessionID string) {
	if err := c.sessionService.Delete(ctx, &session.DeleteRequest{
		AppName:   c.appName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		c.log.Warn("failed to delete extractor session", "error", err)
	}
}

func (c *Classifier) run(ctx context.Context, userID, sessionID, prompt string) error {
	content := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(prompt)},
	}

	runConfig := adkagent.RunConfig{StreamingMode: adkagent.StreamingModeNone}
	for _, err := range c.runner.Run(ctx, userID, sessionID, content, runConfig) {
		if err != nil {
			return fmt.Errorf("extraction run failed: %w", err)
		}
	}
	return nil
}

// toQuery maps the tool input onto the domain query. Values stay as the
// model wrote them; enum coercion happens in the pipeline.
func (in SaveExtractionInput) toQuery() domain.Query {
	q := domain.Query{
		Product:     domain.Product(strings.TrimSpace(in.Product)),
		Size:        domain.Size(strings.TrimSpace(in.Size)),
		GlaseoPct:   in.GlaseoPct,
		Freight:     in.Freight,
		Destination: strings.TrimSpace(in.Destination),
		IsDDP:       in.IsDDP,
		ClientName:  strings.TrimSpace(in.ClientName),
		Confidence:  in.Confidence,
	}

	if in.QuantityValue != nil && *in.QuantityValue > 0 {
		unit := "kg"
		if strings.EqualFold(strings.TrimSpace(in.QuantityUnit), "lb") {
			unit = "lb"
			q.UsesPounds = true
		}
		q.Quantity = &domain.Quantity{Value: *in.QuantityValue, Unit: unit}
	}

	if lang, ok := domain.ParseLanguage(in.Language); ok {
		q.Language = lang
	}

	switch strings.ToLower(strings.TrimSpace(in.Intent)) {
	case "quote":
		q.Intent = domain.IntentQuote
	case "greeting":
		q.Intent = domain.IntentGreeting
	default:
		q.Intent = domain.IntentUnknown
	}

	return q
}
