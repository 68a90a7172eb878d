package state

import "time"

// ChallengeStatus is the lifecycle of an onboarding challenge.
type ChallengeStatus string

const (
	ChallengeAvailable  ChallengeStatus = "Available"
	ChallengeInProgress ChallengeStatus = "InProgress"
	ChallengeCompleted  ChallengeStatus = "Completed"
)

// ChallengeName identifies a built-in challenge.
type ChallengeName string

const (
	ChallengeOpenSettingsFromTray   ChallengeName = "OpenSettingsFromTray"
	ChallengeMaximizeMinimizeWindow ChallengeName = "MaximizeMinimizeWindow"
	ChallengeChangePersonaByVoice   ChallengeName = "ChangePersonaByVoice"
	ChallengeReach1000WordsDictated ChallengeName = "Reach1000WordsDictated"
	ChallengeReach2000WordsDictated ChallengeName = "Reach2000WordsDictated"
	ChallengeChangePersona          ChallengeName = "ChangePersona"
	ChallengeCustomizeShortcuts     ChallengeName = "CustomizeShortcuts"
)

// ChallengeConditionType selects how a requirement is satisfied.
type ChallengeConditionType string

const (
	// ConditionOccurred completes on the first matching event.
	ConditionOccurred ChallengeConditionType = "Occurred"
	// ConditionProgressGoal accumulates progress toward Target.
	ConditionProgressGoal ChallengeConditionType = "ProgressGoal"
)

// ChallengeCondition describes when a requirement counts as met.
type ChallengeCondition struct {
	Type   ChallengeConditionType `json:"type"`
	Target float64                `json:"target,omitempty"`
}

// ChallengeRequirement is one ordered step of a challenge. Event holds the
// event name the step reacts to; progress runs from 0 to 1.
type ChallengeRequirement struct {
	Event           string             `json:"event"`
	Condition       ChallengeCondition `json:"condition"`
	CurrentProgress float64            `json:"current_progress"`
	CompletedAt     *time.Time         `json:"completed_at"`
}

// Challenge is an onboarding task with ordered requirements.
type Challenge struct {
	ID           ChallengeName          `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Status       ChallengeStatus        `json:"status"`
	Requirements []ChallengeRequirement `json:"requirements"`
	CompletedAt  *time.Time             `json:"completed_at"`
}

// Clone returns a deep copy of the challenge.
func (c Challenge) Clone() Challenge {
	out := c
	out.Requirements = make([]ChallengeRequirement, len(c.Requirements))
	copy(out.Requirements, c.Requirements)
	return out
}

// ChallengeContext holds the user's challenge progress.
type ChallengeContext struct {
	Challenges []Challenge `json:"challenges"`
}

func (c ChallengeContext) clone() ChallengeContext {
	out := ChallengeContext{Challenges: make([]Challenge, len(c.Challenges))}
	for i, ch := range c.Challenges {
		out.Challenges[i] = ch.Clone()
	}
	return out
}

func occurredRequirement(eventName string) ChallengeRequirement {
	return ChallengeRequirement{
		Event:     eventName,
		Condition: ChallengeCondition{Type: ConditionOccurred},
	}
}

// CustomizeShortcutsChallenge is appended by migration for users whose state
// predates it.
func CustomizeShortcutsChallenge() Challenge {
	return Challenge{
		ID:          ChallengeCustomizeShortcuts,
		Title:       "Keyboard Customization",
		Description: "Personalize your experience by customizing keyboard shortcuts in settings.",
		Status:      ChallengeAvailable,
		Requirements: []ChallengeRequirement{
			occurredRequirement("ShortcutUpdate"),
		},
	}
}

// DefaultChallenges returns the built-in challenge list. Requirements within
// a challenge must be completed in order.
func DefaultChallenges() []Challenge {
	return []Challenge{
		{
			ID:          ChallengeOpenSettingsFromTray,
			Title:       "System Tray Access",
			Description: "Open the settings menu from the system bar.",
			Status:      ChallengeAvailable,
			Requirements: []ChallengeRequirement{
				occurredRequirement("ActionOpenSettingsFromTray"),
			},
		},
		{
			ID:          ChallengeMaximizeMinimizeWindow,
			Title:       "Window Management",
			Description: "Learn to maximize and minimize the recording window by clicking **{{shortcuts.toggle_minimized}}** shortcut for better workspace control.",
			Status:      ChallengeAvailable,
			Requirements: []ChallengeRequirement{
				occurredRequirement("ActionToggleRecordingWindowMinimized"),
				occurredRequirement("ActionToggleRecordingWindowMinimized"),
			},
		},
		CustomizeShortcutsChallenge(),
		{
			ID:          ChallengeChangePersona,
			Title:       "Personas",
			Description: "Open personas menu by clicking **{{shortcuts.personas}}** shortcut and change persona by clicking **{{shortcuts.personas}}** shortcut again.",
			Status:      ChallengeAvailable,
			Requirements: []ChallengeRequirement{
				occurredRequirement("ActionPersona"),
				occurredRequirement("ActionPersonaCycleNext"),
			},
		},
		{
			ID:          ChallengeChangePersonaByVoice,
			Title:       "Voice Control",
			Description: "Master voice control by saying a trigger phrase to change personas. Each persona may have a unique trigger phrase defined in the personas tab.",
			Status:      ChallengeAvailable,
			Requirements: []ChallengeRequirement{
				occurredRequirement("ActionChangePersonaByVoice"),
			},
		},
		{
			ID:          ChallengeReach1000WordsDictated,
			Title:       "1,000 Words Milestone",
			Description: "Dictate a total of **1,000** words using the app.",
			Status:      ChallengeAvailable,
			Requirements: []ChallengeRequirement{
				{
					Event:     "ActionTranscriptionSuccess",
					Condition: ChallengeCondition{Type: ConditionProgressGoal, Target: 1000},
				},
			},
		},
		{
			ID:          ChallengeReach2000WordsDictated,
			Title:       "3,000 Words Milestone",
			Description: "Dictate a total of **3,000** words using the app.",
			Status:      ChallengeAvailable,
			Requirements: []ChallengeRequirement{
				{
					Event:     "ActionTranscriptionSuccess",
					Condition: ChallengeCondition{Type: ConditionProgressGoal, Target: 3000},
				},
			},
		},
	}
}
