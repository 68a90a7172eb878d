// Package app is the composition root. It builds the store, the event
// bus and every collaborator, registers the domain processors and bridges
// the state tree to the Wails frontend.
package app

// Event names used on the Wails event bridge.
const (
	// EventStateUpdate carries state.StateUpdate messages: one FullState
	// on subscribe, then JSON patches.
	EventStateUpdate = "state-update"
	// EventAudioSamples streams captured microphone frames for the
	// recording window waveform.
	EventAudioSamples = "audio-samples"
)

// AudioSamples is the payload emitted under EventAudioSamples.
type AudioSamples struct {
	Samples   []int16 `json:"samples"`
	Timestamp int64   `json:"timestamp"`
	Seq       int     `json:"seq"`
}
