package tts

import "context"

// VoiceLister fetches the voice list for a language from the backend.
type VoiceLister interface {
	// ListVoices returns all voices whose locale matches the language tag.
	ListVoices(ctx context.Context, language string) ([]Voice, error)
}

// PreviewSynthesizer produces a short audio preview for a voice and
// parameter combination.
type PreviewSynthesizer interface {
	// Preview returns the synthesized preview audio payload (MP3).
	Preview(ctx context.Context, voice, language string, params EncodedProsody) ([]byte, error)
}

// Generator submits text for full synthesis.
type Generator interface {
	// Generate converts text to audio on the backend and returns the
	// handle to the stored result.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// ResolveURL turns a server-relative download path into an absolute,
	// playable address.
	ResolveURL(pathOrURL string) string
}

// AudioStream is a playable, releasable audio resource. At most one stream
// is live per PreviewController; Close must be idempotent.
type AudioStream interface {
	// Stop pauses playback and rewinds. Safe to call on a stopped stream.
	Stop()

	// Close releases the stream's resources. After Close the stream must
	// not be played again.
	Close() error
}

// AudioStarter binds an audio payload to the playback device and starts it.
// The onDone callback fires exactly once when playback reaches end of media;
// it does not fire if the stream is closed first.
type AudioStarter interface {
	Start(data []byte, onDone func()) (AudioStream, error)
}

// PreviewCache stores preview payloads keyed by voice and settings so a
// repeated audition of unchanged settings skips the network round trip.
type PreviewCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}
