// Package lang provides language detection and LLM-backed translation to
// English for non-English collected text. Both are specified in spec.md as
// thin function contracts (non-goals at the implementation-internals
// level), so detection here is a lightweight Unicode-script heuristic
// rather than a statistical model.
package lang

import (
	"strings"
	"unicode"
)

// Supported is the fixed set of language codes the pipeline recognizes.
var Supported = []string{"en", "ja", "ko", "zh", "de", "fr", "es", "pt", "hi"}

// DetectLanguage returns an ISO 639-1 code and a confidence in [0,1].
// Empty or very short text (<10 chars after trim) yields ("en", 0.0).
func DetectLanguage(text string) (string, float64) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 10 {
		return "en", 0.0
	}

	var hiragana, katakana, hangul, han, devanagari, latin, total int
	for _, r := range trimmed {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsDigit(r) {
			continue
		}
		total++
		switch {
		case unicode.In(r, unicode.Hiragana):
			hiragana++
		case unicode.In(r, unicode.Katakana):
			katakana++
		case unicode.In(r, unicode.Hangul):
			hangul++
		case unicode.In(r, unicode.Han):
			han++
		case unicode.In(r, unicode.Devanagari):
			devanagari++
		case unicode.In(r, unicode.Latin):
			latin++
		}
	}
	if total == 0 {
		return "en", 0.0
	}

	switch {
	case hangul > 0 && float64(hangul)/float64(total) > 0.2:
		return "ko", confidenceFrom(hangul, total)
	case (hiragana+katakana) > 0 && float64(hiragana+katakana)/float64(total) > 0.1:
		return "ja", confidenceFrom(hiragana+katakana+han, total)
	case devanagari > 0 && float64(devanagari)/float64(total) > 0.2:
		return "hi", confidenceFrom(devanagari, total)
	case han > 0 && float64(han)/float64(total) > 0.2:
		return "zh", confidenceFrom(han, total)
	}

	if latin == 0 {
		return "en", 0.3
	}

	return detectLatinLanguage(trimmed)
}

// confidenceFrom returns a confidence proportional to script coverage,
// never below 0.5 once a script has crossed its detection threshold.
func confidenceFrom(matched, total int) float64 {
	ratio := float64(matched) / float64(total)
	if ratio > 1.0 {
		ratio = 1.0
	}
	if ratio < 0.5 {
		ratio = 0.5
	}
	return round3(ratio)
}

// latinMarkers are short, high-frequency function words whose presence
// distinguishes the Latin-script languages in Supported.
var latinMarkers = map[string][]string{
	"de": {" der ", " die ", " und ", " nicht ", " mit ", " für "},
	"fr": {" le ", " la ", " et ", " des ", " une ", " pour "},
	"es": {" el ", " la ", " los ", " para ", " con ", " una "},
	"pt": {" o ", " a ", " que ", " para ", " com ", " uma "},
}

// detectLatinLanguage distinguishes among Latin-script languages using
// common function-word markers; defaults to English when no marker
// language scores above a low threshold.
func detectLatinLanguage(text string) (string, float64) {
	lower := " " + strings.ToLower(text) + " "

	best := "en"
	bestScore := 0
	for code, markers := range latinMarkers {
		score := 0
		for _, m := range markers {
			score += strings.Count(lower, m)
		}
		if score > bestScore {
			bestScore = score
			best = code
		}
	}

	if bestScore == 0 {
		return "en", 0.6
	}
	confidence := 0.5 + 0.05*float64(bestScore)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return best, round3(confidence)
}

func round3(f float64) float64 {
	return float64(int(f*1000+0.5)) / 1000
}
