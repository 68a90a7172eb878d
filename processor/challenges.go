package processor

import (
	"strings"
	"time"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// ChallengeProcessor tracks onboarding challenge progress. Requirements
// within a challenge are completed strictly in order: only the first
// requirement still below full progress reacts to an event.
type ChallengeProcessor struct {
	store *state.Store
	bus   *Processor
}

func NewChallengeProcessor(store *state.Store, bus *Processor) *ChallengeProcessor {
	return &ChallengeProcessor{store: store, bus: bus}
}

func (p *ChallengeProcessor) Register() {
	p.bus.RegisterEventListener("challenges", p.handle)
}

func (p *ChallengeProcessor) handle(e event.Event) error {
	switch ev := e.(type) {
	case event.CloseSettings,
		event.ActionOpenSettingsFromTray,
		event.ActionChangePersonaByVoice,
		event.ActionTranscriptionSuccess,
		event.ActionPersona,
		event.ActionChangePersona,
		event.ActionToggleRecordingWindowMinimized,
		event.ActionPersonaCycleNext,
		event.ShortcutUpdate:
		p.recordProgress(e)
		p.checkRequirements()
	case event.ActionChallengeCompleted:
		p.store.Update(func(c *state.AppStateContext) {
			for i := range c.Challenges.Challenges {
				ch := &c.Challenges.Challenges[i]
				if ch.ID == ev.Challenge {
					now := time.Now().UTC()
					ch.Status = state.ChallengeCompleted
					ch.CompletedAt = &now
					break
				}
			}
		})
	}
	return nil
}

func (p *ChallengeProcessor) recordProgress(e event.Event) {
	p.store.Update(func(c *state.AppStateContext) {
		for i := range c.Challenges.Challenges {
			ch := &c.Challenges.Challenges[i]
			if ch.Status == state.ChallengeCompleted {
				continue
			}

			next := -1
			for j, req := range ch.Requirements {
				if req.CurrentProgress < 1.0 {
					next = j
					break
				}
			}
			if next < 0 {
				continue
			}

			req := &ch.Requirements[next]
			if req.Event != e.Name() {
				continue
			}

			switch req.Condition.Type {
			case state.ConditionOccurred:
				now := time.Now().UTC()
				req.CurrentProgress = 1.0
				req.CompletedAt = &now
			case state.ConditionProgressGoal:
				success, ok := e.(event.ActionTranscriptionSuccess)
				if !ok || req.Condition.Target <= 0 {
					continue
				}
				words := float64(len(strings.Fields(success.Text)))
				progress := req.CurrentProgress + words/req.Condition.Target
				req.CurrentProgress = min(progress, 1.0)
				if progress >= 1.0 && req.CompletedAt == nil {
					now := time.Now().UTC()
					req.CompletedAt = &now
				}
			}
		}
	})
}

func (p *ChallengeProcessor) checkRequirements() {
	var completed []state.ChallengeName
	p.store.Update(func(c *state.AppStateContext) {
		for i := range c.Challenges.Challenges {
			ch := &c.Challenges.Challenges[i]
			if ch.Status == state.ChallengeCompleted {
				continue
			}

			allMet := true
			hasProgress := false
			for _, req := range ch.Requirements {
				if req.CurrentProgress < 1.0 {
					allMet = false
				}
				if req.CurrentProgress > 0 {
					hasProgress = true
				}
			}

			if allMet {
				completed = append(completed, ch.ID)
			} else if ch.Status == state.ChallengeAvailable && hasProgress {
				ch.Status = state.ChallengeInProgress
			}
		}
	})
	for _, id := range completed {
		p.bus.Dispatch(event.ActionChallengeCompleted{Challenge: id})
	}
}
