package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"
)

// MinConfidence is the score an extraction must reach before the engine
// acts on it without asking the client to rephrase.
const MinConfidence = 0.7

// Classifier is the model-backed extraction strategy. Implementations
// must return the query exactly as the model read it; the pipeline does
// the catalog validation.
type Classifier interface {
	Classify(ctx context.Context, text string, hints Hints) (domain.Query, error)
}

// Extractor runs the classifier first and falls back to the rule set
// whenever the classifier is unavailable, times out, hallucinates values
// outside the catalog, or scores below MinConfidence.
type Extractor struct {
	classifier Classifier
	rules      *Rules
	detector   *Detector
	log        *logger.Logger
	timeout    time.Duration
}

// New wires the extraction pipeline. classifier may be nil, in which
// case only the rule strategy runs.
func New(classifier Classifier, cfg config.ExtractorConfig, log *logger.Logger) *Extractor {
	return &Extractor{
		classifier: classifier,
		rules:      NewRules(),
		detector:   NewDetector(),
		log:        log,
		timeout:    cfg.GetExtractorTimeout(),
	}
}

// Extract produces the best available query for the message. It never
// fails: when both strategies come up empty the result carries
// IntentUnknown with confidence zero and the engine asks for details.
func (e *Extractor) Extract(ctx context.Context, text string, hints Hints) domain.Query {
	if e.classifier != nil {
		cctx, cancel := context.WithTimeout(ctx, e.timeout)
		q, err := e.classifier.Classify(cctx, text, hints)
		cancel()

		switch {
		case err != nil:
			e.log.ExtractionFallback(hints.UserID, "classifier error: "+err.Error())
		case !normalizeClassified(&q, hints):
			e.log.ExtractionFallback(hints.UserID, "classifier value outside catalog")
		case q.Confidence < MinConfidence:
			e.log.ExtractionFallback(hints.UserID, fmt.Sprintf("confidence %.2f below %.2f", q.Confidence, MinConfidence))
		default:
			return q
		}
	}
	return e.rules.Extract(text, hints)
}

// DetectMulti splits a message naming several combinations into one
// query per combination. Detection is structural, so no model round trip
// is involved.
func (e *Extractor) DetectMulti(text string, hints Hints) []domain.Query {
	return e.detector.Detect(text, hints)
}

// normalizeClassified coerces model output to the canonical enums and
// reports whether every populated field survived. A product or size the
// catalog does not know rejects the whole result rather than silently
// quoting the wrong thing.
func normalizeClassified(q *domain.Query, hints Hints) bool {
	if q.Product != "" {
		product, ok := domain.ParseProduct(string(q.Product))
		if !ok {
			return false
		}
		q.Product = product
	}

	if q.Size != "" {
		size, ok := domain.NormalizeSize(string(q.Size))
		if !ok {
			return false
		}
		q.Size = size
	}

	if q.GlaseoPct != nil && (*q.GlaseoPct < 0 || *q.GlaseoPct > 100) {
		return false
	}
	if q.Freight != nil && *q.Freight < 0 {
		return false
	}

	if q.Confidence < 0 {
		q.Confidence = 0
	}
	if q.Confidence > 1 {
		q.Confidence = 1
	}

	if !q.Language.Valid() {
		if hints.Language.Valid() {
			q.Language = hints.Language
		} else {
			q.Language = domain.LanguageES
		}
	}

	if q.Intent == "" {
		q.Intent = domain.IntentUnknown
	}
	if q.Intent == domain.IntentUnknown && (q.Product != "" || q.Size != "") {
		q.Intent = domain.IntentQuote
	}
	return true
}
