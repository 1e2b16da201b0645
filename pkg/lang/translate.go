package lang

import (
	"context"
	"log/slog"
	"strings"

	"github.com/constraintwatch/constraintwatch/pkg/llm"
)

const (
	// translateMaxLenForHighConfidence is the length threshold below which
	// a successful translation is reported with the higher confidence band.
	translateMaxLenForHighConfidence = 5000
	highConfidence                  = 0.85
	lowConfidence                    = 0.75
)

// systemPrompt instructs the model to preserve numeric spans verbatim,
// which the test suite checks via regex round-trip comparison.
const systemPrompt = `You are a precise technical translator. Translate the user's text to English.
Preserve numbers, units, dates, percentages, currency amounts, company names, and technical identifiers exactly as written. Return only the translated text, no commentary.`

// Translator calls the LLM client to translate non-English text to English.
type Translator struct {
	client *llm.Client
}

// NewTranslator constructs a Translator backed by the shared LLM client.
func NewTranslator(client *llm.Client) *Translator {
	return &Translator{client: client}
}

// TranslateToEnglish returns translated text and a confidence score. Text
// already in English is returned unchanged. On LLM failure, the original
// text is returned with confidence 0.0 (fail-open: the pipeline continues
// with untranslated text rather than blocking the item).
func (t *Translator) TranslateToEnglish(ctx context.Context, text, language string) (string, float64) {
	if language == "en" || language == "" {
		return text, confidenceForLength(len(text))
	}

	out, err := t.client.Extract(ctx, text, systemPrompt)
	if err != nil {
		slog.Warn("translation failed, keeping original text", "language", language, "error", err)
		return text, 0.0
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return text, 0.0
	}

	return out, confidenceForLength(len(text))
}

// confidenceForLength applies the {0.85 if <5000 chars else 0.75} split
// uniformly, including the English-unchanged path (spec.md §4.4 is explicit
// about the formula; only the "translated text" value, not the confidence,
// is a no-op for English input).
func confidenceForLength(n int) float64 {
	if n < translateMaxLenForHighConfidence {
		return highConfidence
	}
	return lowConfidence
}
