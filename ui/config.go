package ui

import "github.com/dgnsrekt/ttsdeck/tts"

// Config contains TUI-specific configuration.
type Config struct {
	// Language tags offered by the language picker.
	Languages []string

	// Initial selections.
	Language string
	Voice    string

	// Initial prosody offsets.
	Prosody tts.Prosody

	// Text preloaded into the editor, e.g. from stdin or a file argument.
	InitialText string

	// StdinUsed means the initial text was piped in, so key input must come
	// from the TTY instead of stdin.
	StdinUsed bool

	EnableMouse bool `env:"TTSDECK_ENABLE_MOUSE"`

	// GlamourStyle selects the markdown rendering style for the text
	// preview pane.
	GlamourStyle string `env:"GLAMOUR_STYLE"`
}
