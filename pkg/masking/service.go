package masking

import "log/slog"

// Service redacts secrets and PII from raw fetched text before it reaches
// an extraction prompt or an application log line. It is created once at
// startup and is safe for concurrent use; it holds no mutable state beyond
// its compiled patterns.
type Service struct {
	patterns []*CompiledPattern
}

// NewService compiles the built-in secret/PII patterns eagerly.
func NewService() *Service {
	patterns := builtinPatterns()
	slog.Info("masking service initialized", "patterns", len(patterns))
	return &Service{patterns: patterns}
}

// Redact applies every compiled pattern to text in sequence and returns the
// result. It never errors: text that matches nothing passes through
// unchanged.
func (s *Service) Redact(text string) string {
	if text == "" {
		return text
	}
	redacted := text
	for _, p := range s.patterns {
		redacted = p.Regex.ReplaceAllString(redacted, p.Replacement)
	}
	return redacted
}
