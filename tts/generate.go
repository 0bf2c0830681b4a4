package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Generation is a completed synthesis result. Each successful submission
// supersedes the previous one.
type Generation struct {
	FileID      string
	DownloadURL string
	PlayableURL string
	ExpiresAt   time.Time
}

// ExpiresIn describes the expiry as a human-readable phrase, e.g.
// "59 minutes from now". Empty when the backend sent no expiry.
func (g *Generation) ExpiresIn() string {
	if g.ExpiresAt.IsZero() {
		return ""
	}
	return humanize.Time(g.ExpiresAt)
}

// Expired reports whether the result's download window has closed.
func (g *Generation) Expired() bool {
	return !g.ExpiresAt.IsZero() && time.Now().After(g.ExpiresAt)
}

// GenerationController drives the one-shot submit flow: validate text, issue
// the generate request, and expose the stored result. Exactly one request
// may be in flight; the loading flag is cleared on every outcome.
type GenerationController struct {
	gen    Generator
	logger *log.Logger

	mu      sync.Mutex
	loading bool
	result  *Generation

	onError func(error)
}

// NewGenerationController creates a generation controller backed by gen.
func NewGenerationController(gen Generator) *GenerationController {
	return &GenerationController{gen: gen, logger: log.Default()}
}

// SetLogger replaces the controller's logger.
func (gc *GenerationController) SetLogger(logger *log.Logger) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.logger = logger
}

// OnError registers a callback for generation failures. The callback runs
// with the controller lock held.
func (gc *GenerationController) OnError(fn func(error)) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.onError = fn
}

// Loading reports whether a generation request is in flight.
func (gc *GenerationController) Loading() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.loading
}

// Result returns the current generation result, if any.
func (gc *GenerationController) Result() *Generation {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.result
}

// Begin validates the submission and reserves the in-flight slot. It makes
// no network call: empty or whitespace-only text is rejected here, before
// anything leaves the client, as is text over the backend's length limit.
// On success the prior result is cleared and the loading flag set; the
// returned request must be passed to Submit and its outcome to Resolve.
func (gc *GenerationController) Begin(text, voice string, params Prosody) (GenerateRequest, error) {
	if strings.TrimSpace(text) == "" {
		return GenerateRequest{}, ErrEmptyText
	}
	if err := ValidateText(text); err != nil {
		return GenerateRequest{}, err
	}
	if voice == "" {
		return GenerateRequest{}, ErrNoVoiceChosen
	}

	gc.mu.Lock()
	defer gc.mu.Unlock()

	if gc.loading {
		return GenerateRequest{}, ErrGenerationInFlight
	}

	gc.loading = true
	gc.result = nil

	encoded := params.Encoded()
	return GenerateRequest{
		Text:   text,
		Voice:  voice,
		Rate:   encoded.Rate,
		Pitch:  encoded.Pitch,
		Volume: encoded.Volume,
	}, nil
}

// Submit performs the network round trip for a request issued by Begin. It
// holds no locks; pass the outcome to Resolve.
func (gc *GenerationController) Submit(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	return gc.gen.Generate(ctx, req)
}

// Resolve applies the outcome of a submission. The loading flag is cleared
// on every path. On success the result is stored with the download URL
// resolved to a playable address; on failure the backend's detail message
// (or a generic fallback) is reported and no result is set.
func (gc *GenerationController) Resolve(res *GenerateResult, err error) (*Generation, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	gc.loading = false

	if err != nil {
		gc.logger.Warn("generation failed", "err", err)
		gc.reportLocked(err)
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, errorMessage(err))
	}

	gen := &Generation{
		FileID:      res.FileID,
		DownloadURL: res.DownloadURL,
		PlayableURL: gc.gen.ResolveURL(res.DownloadURL),
	}
	if res.ExpiresAt != "" {
		if t, perr := time.Parse(time.RFC3339, res.ExpiresAt); perr == nil {
			gen.ExpiresAt = t
		} else if t, perr := time.Parse("2006-01-02T15:04:05.999999", res.ExpiresAt); perr == nil {
			// The backend emits naive UTC timestamps without a zone.
			gen.ExpiresAt = t.UTC()
		}
	}

	gc.result = gen
	gc.logger.Info("generation complete", "file_id", gen.FileID, "expires", res.ExpiresAt)
	return gen, nil
}

// errorMessage extracts the message to show the user: the backend-provided
// detail when the error carries one, the plain error text otherwise.
func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}

func (gc *GenerationController) reportLocked(err error) {
	if gc.onError != nil {
		gc.onError(err)
	}
}
