package state

import (
	"time"

	"github.com/google/uuid"
)

// AppError is a user-visible error surfaced in the UI.
type AppError struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAppError(message string) AppError {
	return AppError{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: time.Now(),
	}
}

const (
	ErrTranscriptionModelNotFound  = "Transcription model not found"
	ErrTransformationModelNotFound = "Transformation model not found. Please pick a model in the settings."
	ErrTranscriptionModelNotPicked = "Transcription model not picked. Please pick a model in the settings."
)
