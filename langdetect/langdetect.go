// Package langdetect identifies the language of transcribed text. It is
// used when transcription runs with automatic language selection, so the
// UI can show which language the model actually heard.
package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
	_ "github.com/pemistahl/lingua-go/language-models/ar"
	_ "github.com/pemistahl/lingua-go/language-models/de"
	_ "github.com/pemistahl/lingua-go/language-models/en"
	_ "github.com/pemistahl/lingua-go/language-models/es"
	_ "github.com/pemistahl/lingua-go/language-models/fi"
	_ "github.com/pemistahl/lingua-go/language-models/fr"
	_ "github.com/pemistahl/lingua-go/language-models/hi"
	_ "github.com/pemistahl/lingua-go/language-models/it"
	_ "github.com/pemistahl/lingua-go/language-models/ja"
	_ "github.com/pemistahl/lingua-go/language-models/ko"
	_ "github.com/pemistahl/lingua-go/language-models/nl"
	_ "github.com/pemistahl/lingua-go/language-models/pa"
	_ "github.com/pemistahl/lingua-go/language-models/pl"
	_ "github.com/pemistahl/lingua-go/language-models/pt"
	_ "github.com/pemistahl/lingua-go/language-models/ro"
	_ "github.com/pemistahl/lingua-go/language-models/ru"
	_ "github.com/pemistahl/lingua-go/language-models/sv"
	_ "github.com/pemistahl/lingua-go/language-models/tr"
	_ "github.com/pemistahl/lingua-go/language-models/uk"
	_ "github.com/pemistahl/lingua-go/language-models/vi"
	_ "github.com/pemistahl/lingua-go/language-models/zh"

	"go.qspeak.app/qspeak/state"
)

// minLength is the shortest text worth classifying. Below this the
// detector mostly guesses.
const minLength = 12

var buildDetector = sync.OnceValue(func() lingua.LanguageDetector {
	supported := make(map[string]bool, len(state.Languages))
	for _, l := range state.Languages {
		if !l.IsAuto() {
			supported[l.Code()] = true
		}
	}
	var languages []lingua.Language
	for _, lang := range lingua.AllLanguages() {
		if supported[strings.ToLower(lang.IsoCode639_1().String())] {
			languages = append(languages, lang)
		}
	}
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()
})

// Detect classifies text and returns the matching language, or auto when
// the text is too short or no supported language fits.
func Detect(text string) state.Language {
	text = strings.TrimSpace(text)
	if len(text) < minLength {
		return state.LanguageAuto
	}
	detected, ok := buildDetector().DetectLanguageOf(text)
	if !ok {
		return state.LanguageAuto
	}
	return state.ParseLanguage(strings.ToLower(detected.IsoCode639_1().String()))
}
