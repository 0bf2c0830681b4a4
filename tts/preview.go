// Package tts implements the client-side core of the synthesis service:
// the voice catalog, the preview playback lifecycle, and the one-shot
// generation flow.
package tts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// PreviewSession describes the settings a live preview was started with. A
// preview is always scoped to the exact settings that produced it; any
// change invalidates the session.
type PreviewSession struct {
	Voice    string
	Language string
	Params   EncodedProsody
}

// PreviewRequest is a handle for one preview round trip, issued by Begin and
// consumed by Resolve. The embedded token identifies the session the request
// belongs to; a session invalidated while the request was in flight makes
// the token stale and the result is discarded on arrival.
type PreviewRequest struct {
	Voice    string
	Language string
	Params   Prosody
	Encoded  EncodedProsody

	token uint64
}

// CacheKey returns the cache key for this request's voice and settings.
func (r PreviewRequest) CacheKey() string {
	return strings.Join([]string{r.Voice, r.Language, r.Encoded.Rate, r.Encoded.Pitch, r.Encoded.Volume}, "|")
}

// PreviewController owns the lifecycle of a voice preview: request audio,
// bind it to the playback device, play it, and release the stream on every
// exit path. At most one audio stream is live per controller; the release
// is centralized in the state machine's enter-Idle hook so no stop,
// completion, invalidation, or teardown path can skip it.
//
// The controller is driven in two phases so the asynchronous boundary stays
// outside the lock: Begin reserves the session and transitions to
// Requesting, Fetch performs the network call, and Resolve applies the
// outcome on the event loop.
type PreviewController struct {
	synth  PreviewSynthesizer
	player AudioStarter
	cache  PreviewCache
	logger *log.Logger

	mu      sync.Mutex
	machine *StateMachine
	token   uint64
	session PreviewSession
	stream  AudioStream
	lastErr error

	onStateChange func(StateType)
	onError       func(error)
}

// NewPreviewController creates a preview controller. The cache is optional;
// pass nil to fetch every preview from the backend.
func NewPreviewController(synth PreviewSynthesizer, player AudioStarter, cache PreviewCache) *PreviewController {
	pc := &PreviewController{
		synth:   synth,
		player:  player,
		cache:   cache,
		logger:  log.Default(),
		machine: NewStateMachine(),
	}
	// Every transition into Idle releases whatever stream is held. This is
	// the single cleanup point for stop, natural completion, invalidation,
	// resolve failure, and teardown.
	pc.machine.OnEnter(StateIdle, pc.releaseLocked)
	return pc
}

// SetLogger replaces the controller's logger.
func (pc *PreviewController) SetLogger(logger *log.Logger) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.logger = logger
}

// OnStateChange registers a callback invoked after each state transition.
// The callback runs with the controller lock held and must not call back
// into the controller.
func (pc *PreviewController) OnStateChange(fn func(StateType)) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.onStateChange = fn
}

// OnError registers a callback for preview failures. Same reentrancy rules
// as OnStateChange.
func (pc *PreviewController) OnError(fn func(error)) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.onError = fn
}

// State returns the current preview state.
func (pc *PreviewController) State() StateType {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.machine.Current()
}

// Session returns the settings of the live session, if any.
func (pc *PreviewController) Session() (PreviewSession, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.session, pc.machine.Current().IsActive()
}

// LastError returns the most recent preview failure.
func (pc *PreviewController) LastError() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.lastErr
}

// Begin starts a preview session for the given voice and settings. Only
// valid from Idle; callers are expected to disable the trigger while a
// session is active.
func (pc *PreviewController) Begin(voice, languageTag string, params Prosody) (PreviewRequest, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if voice == "" {
		return PreviewRequest{}, ErrNoVoiceChosen
	}
	if pc.machine.Current() != StateIdle {
		return PreviewRequest{}, ErrPreviewBusy
	}

	encoded := params.Encoded()
	pc.token++
	pc.session = PreviewSession{Voice: voice, Language: languageTag, Params: encoded}
	pc.lastErr = nil

	if !pc.machine.Transition(StateRequesting) {
		return PreviewRequest{}, ErrInvalidTransition
	}
	pc.logger.Debug("preview requested", "voice", voice, "language", languageTag)
	pc.notifyLocked()

	return PreviewRequest{
		Voice:    voice,
		Language: languageTag,
		Params:   params,
		Encoded:  encoded,
		token:    pc.token,
	}, nil
}

// Fetch performs the network round trip for a request issued by Begin. It
// holds no locks and may run on any goroutine; pass the outcome to Resolve.
func (pc *PreviewController) Fetch(ctx context.Context, req PreviewRequest) ([]byte, error) {
	if pc.cache != nil {
		if data, ok := pc.cache.Get(req.CacheKey()); ok {
			pc.logger.Debug("preview cache hit", "key", req.CacheKey())
			return data, nil
		}
	}

	data, err := pc.synth.Preview(ctx, req.Voice, req.Language, req.Encoded)
	if err != nil {
		return nil, err
	}

	if pc.cache != nil {
		// Cache errors are non-fatal.
		_ = pc.cache.Put(req.CacheKey(), data)
	}
	return data, nil
}

// Resolve applies the outcome of a fetched request. A request whose session
// was invalidated while in flight is discarded without playback; no stream
// was created for it, so there is nothing to release. On success the audio
// is bound to the playback device and the session transitions to Playing.
func (pc *PreviewController) Resolve(req PreviewRequest, data []byte, err error) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if req.token != pc.token || pc.machine.Current() != StateRequesting {
		pc.logger.Debug("discarding stale preview response", "voice", req.Voice)
		return nil
	}

	if err != nil {
		pc.lastErr = err
		pc.machine.Transition(StateIdle)
		pc.logger.Warn("preview request failed", "voice", req.Voice, "err", err)
		pc.notifyLocked()
		pc.reportLocked(err)
		return err
	}

	token := req.token
	stream, playErr := pc.player.Start(data, func() { pc.completed(token) })
	if playErr != nil {
		wrapped := fmt.Errorf("%w: %v", ErrPlaybackFailed, playErr)
		pc.lastErr = wrapped
		pc.machine.Transition(StateIdle)
		pc.logger.Warn("preview playback failed", "voice", req.Voice, "err", playErr)
		pc.notifyLocked()
		pc.reportLocked(wrapped)
		return wrapped
	}

	pc.stream = stream
	pc.machine.Transition(StatePlaying)
	pc.logger.Debug("preview playing", "voice", req.Voice, "bytes", len(data))
	pc.notifyLocked()
	return nil
}

// Stop ends the live session: it invalidates any in-flight request, stops
// and releases the held stream, and returns to Idle. Calling Stop while
// already Idle is a no-op. Any change to the selected voice, language, or
// prosody settings must route through Stop before the new selection takes
// effect.
func (pc *PreviewController) Stop() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if !pc.machine.Current().IsActive() {
		return
	}

	pc.token++
	pc.machine.Transition(StateIdle)
	pc.logger.Debug("preview stopped")
	pc.notifyLocked()
}

// Shutdown releases all resources on host teardown. The held stream is
// closed directly; release never depends on the playback-done callback.
func (pc *PreviewController) Shutdown() {
	pc.Stop()
}

// completed handles the playback-done callback from the audio stream.
func (pc *PreviewController) completed(token uint64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	// A stop or settings change may have superseded the session after the
	// callback was scheduled.
	if token != pc.token || pc.machine.Current() != StatePlaying {
		return
	}

	pc.machine.Transition(StateIdle)
	pc.logger.Debug("preview finished")
	pc.notifyLocked()
}

// releaseLocked releases the held stream, if any. Runs as the enter-Idle
// hook with the controller lock held; idempotent.
func (pc *PreviewController) releaseLocked() {
	if pc.stream == nil {
		return
	}
	pc.stream.Stop()
	if err := pc.stream.Close(); err != nil {
		pc.logger.Warn("closing audio stream", "err", err)
	}
	pc.stream = nil
}

func (pc *PreviewController) notifyLocked() {
	if pc.onStateChange != nil {
		pc.onStateChange(pc.machine.Current())
	}
}

func (pc *PreviewController) reportLocked(err error) {
	if pc.onError != nil {
		pc.onError(err)
	}
}
