package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguageShortTextYieldsEnglishZeroConfidence(t *testing.T) {
	lang, conf := DetectLanguage("  hi  ")
	assert.Equal(t, "en", lang)
	assert.Equal(t, 0.0, conf)
}

func TestDetectLanguageEmptyYieldsEnglishZeroConfidence(t *testing.T) {
	lang, conf := DetectLanguage("")
	assert.Equal(t, "en", lang)
	assert.Equal(t, 0.0, conf)
}

func TestDetectLanguageJapanese(t *testing.T) {
	lang, conf := DetectLanguage("半導体の供給制約が深刻化しています、台湾のファウンドリ各社は")
	assert.Equal(t, "ja", lang)
	assert.Greater(t, conf, 0.0)
}

func TestDetectLanguageKorean(t *testing.T) {
	lang, _ := DetectLanguage("반도체 공급망 제약이 심화되고 있으며 메모리 가격이 상승했다")
	assert.Equal(t, "ko", lang)
}

func TestDetectLanguageEnglish(t *testing.T) {
	lang, _ := DetectLanguage("TSMC announced a capacity expansion at its Arizona fab this week.")
	assert.Equal(t, "en", lang)
}
