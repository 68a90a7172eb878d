// Package state holds the application context tree and the single-writer
// store that owns it. Every mutation goes through Store.Update; readers get
// deep copies and never observe partial writes.
package state

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is an ISO 639-1 code, or "auto" for automatic detection.
type Language string

const (
	LanguageAuto       Language = "auto"
	LanguageArabic     Language = "ar"
	LanguageChinese    Language = "zh"
	LanguageDutch      Language = "nl"
	LanguageEnglish    Language = "en"
	LanguageFinnish    Language = "fi"
	LanguageFrench     Language = "fr"
	LanguageGerman     Language = "de"
	LanguageHindi      Language = "hi"
	LanguageItalian    Language = "it"
	LanguageJapanese   Language = "ja"
	LanguageKorean     Language = "ko"
	LanguageNorwegian  Language = "no"
	LanguagePolish     Language = "pl"
	LanguagePortuguese Language = "pt"
	LanguagePunjabi    Language = "pa"
	LanguageRomanian   Language = "ro"
	LanguageRussian    Language = "ru"
	LanguageSpanish    Language = "es"
	LanguageSwedish    Language = "sv"
	LanguageTurkish    Language = "tr"
	LanguageUkrainian  Language = "uk"
	LanguageVietnamese Language = "vi"
)

// Languages lists every selectable transcription language, auto first.
var Languages = []Language{
	LanguageAuto,
	LanguageArabic,
	LanguageChinese,
	LanguageDutch,
	LanguageEnglish,
	LanguageFinnish,
	LanguageFrench,
	LanguageGerman,
	LanguageHindi,
	LanguageItalian,
	LanguageJapanese,
	LanguageKorean,
	LanguageNorwegian,
	LanguagePolish,
	LanguagePortuguese,
	LanguagePunjabi,
	LanguageRomanian,
	LanguageRussian,
	LanguageSpanish,
	LanguageSwedish,
	LanguageTurkish,
	LanguageUkrainian,
	LanguageVietnamese,
}

// Code returns the ISO 639-1 code, or "auto".
func (l Language) Code() string { return string(l) }

// IsAuto reports whether the language means automatic detection.
func (l Language) IsAuto() bool { return l == LanguageAuto || l == "" }

// DisplayName returns the English name of the language, e.g. "German".
func (l Language) DisplayName() string {
	if l.IsAuto() {
		return "Automatic"
	}
	tag, err := language.Parse(string(l))
	if err != nil {
		return string(l)
	}
	return display.English.Languages().Name(tag)
}

// ParseLanguage maps a code to a known Language, falling back to auto.
func ParseLanguage(code string) Language {
	for _, l := range Languages {
		if string(l) == code {
			return l
		}
	}
	return LanguageAuto
}

// InterfaceTheme selects the recording window color scheme.
type InterfaceTheme string

const (
	ThemeLight InterfaceTheme = "Light"
	ThemeDark  InterfaceTheme = "Dark"
)
