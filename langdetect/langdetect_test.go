package langdetect

import (
	"testing"

	"go.qspeak.app/qspeak/state"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		text string
		want state.Language
	}{
		{"The weather forecast for tomorrow looks really promising", state.LanguageEnglish},
		{"Der Wetterbericht für morgen sieht wirklich vielversprechend aus", state.LanguageGerman},
		{"Prognoza pogody na jutro wygląda naprawdę obiecująco", state.LanguagePolish},
		{"short", state.LanguageAuto},
		{"   ", state.LanguageAuto},
	}
	for _, tt := range tests {
		if got := Detect(tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
