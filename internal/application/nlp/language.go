package nlp

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector detects the language of prompt text and returns an ISO
// 639-1 code.  Detection is restricted to a fixed language set to keep the
// model footprint small; the detector builds lazily on first use because
// lingua loads language models eagerly.
type LanguageDetector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

// detectorLanguages is the closed set the detector distinguishes between.
var detectorLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Swedish,
	lingua.Danish,
	lingua.Polish,
}

// NewLanguageDetector creates an unbuilt detector.  The underlying lingua
// models are loaded on the first Detect call.
func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{}
}

func (d *LanguageDetector) build() {
	d.detector = lingua.NewLanguageDetectorBuilder().
		FromLanguages(detectorLanguages...).
		WithPreloadedLanguageModels().
		Build()
}

// Detect returns the lowercase ISO 639-1 code for text, or empty string when
// the language cannot be determined.  Short or empty inputs return "".
func (d *LanguageDetector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 3 {
		return ""
	}
	d.once.Do(d.build)

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
