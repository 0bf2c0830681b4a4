package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/ttsdeck/tts"
)

// statusDisplay renders the bottom status bar: preview state, generation
// progress, backend health, and the latest non-fatal error.
type statusDisplay struct {
	previewState tts.StateType
	previewVoice string

	generating bool
	result     *tts.Generation

	healthKnown bool
	healthy     bool

	errorMessage string
}

func newStatusDisplay() *statusDisplay {
	return &statusDisplay{previewState: tts.StateIdle}
}

// setPreview updates the preview segment.
func (s *statusDisplay) setPreview(state tts.StateType, voice string) {
	s.previewState = state
	s.previewVoice = voice
	if state != tts.StateIdle {
		s.errorMessage = ""
	}
}

// setGeneration updates the generation segment.
func (s *statusDisplay) setGeneration(loading bool, result *tts.Generation) {
	s.generating = loading
	s.result = result
}

// setHealth records the latest backend health probe.
func (s *statusDisplay) setHealth(healthy bool) {
	s.healthKnown = true
	s.healthy = healthy
}

// setError records a non-fatal error to surface until the next action.
func (s *statusDisplay) setError(err error) {
	if err == nil {
		s.errorMessage = ""
		return
	}
	s.errorMessage = err.Error()
}

// previewSegment renders the preview state with an icon.
func (s *statusDisplay) previewSegment(spinnerView string) string {
	switch s.previewState {
	case tts.StateRequesting:
		return warnStyle.Render(spinnerView + " preview")
	case tts.StatePlaying:
		voice := s.previewVoice
		if voice == "" {
			voice = "preview"
		}
		return okStyle.Render("▶ " + voice)
	default:
		return ""
	}
}

// generationSegment renders generation progress or the stored result.
func (s *statusDisplay) generationSegment(spinnerView string) string {
	if s.generating {
		return warnStyle.Render(spinnerView + " generating")
	}
	if s.result == nil {
		return ""
	}
	if s.result.Expired() {
		return subtleStyle.Render("link expired")
	}
	seg := okStyle.Render("✓ " + s.result.FileID)
	if in := s.result.ExpiresIn(); in != "" {
		seg += subtleStyle.Render(" · expires " + in)
	}
	return seg
}

// healthSegment renders the backend indicator.
func (s *statusDisplay) healthSegment() string {
	if !s.healthKnown {
		return subtleStyle.Render("● backend ?")
	}
	if s.healthy {
		return okStyle.Render("● backend")
	}
	return errorTextStyle.Render("● backend down")
}

// View renders the status bar at the given width.
func (s *statusDisplay) View(width int, spinnerView string) string {
	if width <= 0 {
		return ""
	}

	var segments []string
	if seg := s.previewSegment(spinnerView); seg != "" {
		segments = append(segments, seg)
	}
	if seg := s.generationSegment(spinnerView); seg != "" {
		segments = append(segments, seg)
	}
	segments = append(segments, s.healthSegment())

	line := strings.Join(segments, subtleStyle.Render("  │  "))

	if s.errorMessage != "" {
		msg := truncate.StringWithTail(s.errorMessage, uint(maxInt(width-10, 10)), "…") //nolint:gosec
		line = errorTextStyle.Render("✗ "+msg) + subtleStyle.Render("  │  ") + line
	}

	if lipgloss.Width(line) > width {
		line = truncate.String(line, uint(width)) //nolint:gosec
	}
	return line
}

// helpView renders the key legend.
func helpView() string {
	keys := []struct{ key, desc string }{
		{"tab", "focus"},
		{"←/→", "language"},
		{"↑/↓", "voice"},
		{"/", "filter"},
		{"p", "preview"},
		{"s", "stop"},
		{"ctrl+g", "generate"},
		{"c", "copy url"},
		{"ctrl+e", "editor"},
		{"v", "rendered"},
		{"q", "quit"},
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", cursorStyle.Render(k.key), subtleStyle.Render(k.desc)))
	}
	return strings.Join(parts, subtleStyle.Render(" · "))
}
