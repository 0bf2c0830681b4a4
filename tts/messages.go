package tts

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Bubble Tea messages and commands bridging the controllers to the UI event
// loop. The commands run the network phase of each flow on the Bubble Tea
// goroutine pool; the resulting messages are applied back on the event loop
// (Catalog.Apply, PreviewController.Resolve, GenerationController.Resolve).

// VoicesLoadedMsg carries the outcome of a voice catalog load.
type VoicesLoadedMsg struct {
	Result CatalogResult
}

// LoadVoicesCmd starts a catalog load for the language and fetches it.
func LoadVoicesCmd(ctx context.Context, catalog *Catalog, languageTag string) tea.Cmd {
	generation := catalog.StartLoad(languageTag)
	return func() tea.Msg {
		return VoicesLoadedMsg{Result: catalog.Fetch(ctx, languageTag, generation)}
	}
}

// PreviewFetchedMsg carries the outcome of a preview fetch, to be resolved
// against the controller.
type PreviewFetchedMsg struct {
	Request PreviewRequest
	Data    []byte
	Err     error
}

// FetchPreviewCmd performs the network phase of a preview request issued by
// PreviewController.Begin.
func FetchPreviewCmd(ctx context.Context, pc *PreviewController, req PreviewRequest) tea.Cmd {
	return func() tea.Msg {
		data, err := pc.Fetch(ctx, req)
		return PreviewFetchedMsg{Request: req, Data: data, Err: err}
	}
}

// GenerationDoneMsg carries the raw outcome of a generation submission, to
// be resolved against the controller.
type GenerationDoneMsg struct {
	Result *GenerateResult
	Err    error
}

// SubmitGenerationCmd performs the network phase of a generation request
// issued by GenerationController.Begin.
func SubmitGenerationCmd(ctx context.Context, gc *GenerationController, req GenerateRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := gc.Submit(ctx, req)
		return GenerationDoneMsg{Result: res, Err: err}
	}
}

// HealthCheckedMsg carries a backend health probe result.
type HealthCheckedMsg struct {
	Status HealthStatus
	Err    error
}

// CheckHealthCmd probes backend health.
func CheckHealthCmd(ctx context.Context, client *Client) tea.Cmd {
	return func() tea.Msg {
		status, err := client.Health(ctx)
		return HealthCheckedMsg{Status: status, Err: err}
	}
}
