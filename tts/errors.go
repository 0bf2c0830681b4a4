package tts

import (
	"errors"
	"fmt"
)

// Common errors for the synthesis client.
var (
	// Client errors
	ErrServerUnavailable = errors.New("synthesis server is unavailable")
	ErrResponseTooLarge  = errors.New("audio response exceeds size limit")
	ErrFileNotFound      = errors.New("audio file not found on server")

	// Catalog errors
	ErrNoVoices      = errors.New("no voices available for language")
	ErrStaleLoad     = errors.New("voice load superseded by a newer request")
	ErrVoiceNotFound = errors.New("requested voice not found")
	ErrNoVoiceChosen = errors.New("no voice selected")
	ErrEmptyLanguage = errors.New("language tag is empty")

	// Preview errors
	ErrPreviewBusy       = errors.New("a preview is already in progress")
	ErrNotPreviewing     = errors.New("no preview is active")
	ErrPlaybackFailed    = errors.New("audio playback failed to start")
	ErrStreamClosed      = errors.New("audio stream already released")
	ErrInvalidTransition = errors.New("invalid preview state transition")

	// Generation errors
	ErrEmptyText          = errors.New("text is empty")
	ErrTextTooLong        = errors.New("text exceeds maximum length")
	ErrGenerationInFlight = errors.New("a generation request is already in flight")
	ErrGenerationFailed   = errors.New("audio generation failed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsRecoverableError reports whether the user can retry after the error.
// Every failure in this client is recoverable at the interaction level except
// configuration mistakes, which require a config change before retrying.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrInvalidConfig)
}

// APIError carries the HTTP status and the backend-provided detail message
// for a failed request.
type APIError struct {
	StatusCode int
	Detail     string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// UserMessage returns the message to surface in the UI: the backend detail
// when present, a generic fallback otherwise.
func (e *APIError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "request failed, please try again"
}
