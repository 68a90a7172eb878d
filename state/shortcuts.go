package state

// Shortcuts maps each global action to the key combination that triggers it.
// Keys follow the frontend naming ("Control", "Alt", "Space", ...).
type Shortcuts struct {
	Recording       []string `json:"recording"`
	Close           []string `json:"close"`
	Personas        []string `json:"personas"`
	Screenshot      []string `json:"screenshot"`
	CopyText        []string `json:"copy_text"`
	ToggleMinimized []string `json:"toggle_minimized"`
	SwitchLanguage  []string `json:"switch_language"`
}

// DefaultShortcuts returns the built-in key bindings.
func DefaultShortcuts() Shortcuts {
	return Shortcuts{
		Recording:       []string{"Control", "Space"},
		Close:           []string{"Escape"},
		Personas:        []string{"Control", "Alt", "Space"},
		Screenshot:      []string{"Control", "Shift", "S"},
		CopyText:        []string{"Control", "Shift", "C"},
		ToggleMinimized: []string{"Control", "M"},
		SwitchLanguage:  []string{"Control", "Shift", "L"},
	}
}

// Clone returns a deep copy of the shortcuts.
func (s Shortcuts) Clone() Shortcuts {
	return Shortcuts{
		Recording:       cloneStrings(s.Recording),
		Close:           cloneStrings(s.Close),
		Personas:        cloneStrings(s.Personas),
		Screenshot:      cloneStrings(s.Screenshot),
		CopyText:        cloneStrings(s.CopyText),
		ToggleMinimized: cloneStrings(s.ToggleMinimized),
		SwitchLanguage:  cloneStrings(s.SwitchLanguage),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
