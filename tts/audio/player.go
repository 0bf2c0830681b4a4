// Package audio provides MP3 playback for preview and result audio through
// a shared OTO context.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/dgnsrekt/ttsdeck/tts"
)

// go-mp3 always decodes to 16-bit little-endian stereo.
const (
	channelCount   = 2
	bytesPerSample = 2 * channelCount
)

var (
	otoContext   *oto.Context
	otoRate      int
	otoContextMu sync.Mutex
)

// contextFor returns the shared OTO context, creating it on first use with
// the given sample rate. The device context is created once per process;
// payloads with a different sample rate are rejected.
func contextFor(sampleRate int) (*oto.Context, error) {
	otoContextMu.Lock()
	defer otoContextMu.Unlock()

	if otoContext != nil {
		if sampleRate != otoRate {
			return nil, fmt.Errorf("audio context is fixed at %d Hz, payload is %d Hz", otoRate, sampleRate)
		}
		return otoContext, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}
	<-ready

	otoContext = ctx
	otoRate = sampleRate
	return ctx, nil
}

// Player binds MP3 payloads to the audio device. It implements
// tts.AudioStarter.
type Player struct{}

// NewPlayer creates a player.
func NewPlayer() *Player {
	return &Player{}
}

// Start decodes the MP3 payload, begins playback, and returns the live
// stream. onDone fires exactly once when playback reaches end of media; it
// does not fire after Stop or Close.
func (p *Player) Start(data []byte, onDone func()) (tts.AudioStream, error) {
	if len(data) == 0 {
		return nil, errors.New("empty audio payload")
	}

	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}
	if len(pcm) == 0 {
		return nil, errors.New("mp3 payload decoded to no samples")
	}

	ctx, err := contextFor(dec.SampleRate())
	if err != nil {
		return nil, err
	}

	s := &Stream{
		player:   ctx.NewPlayer(bytes.NewReader(pcm)),
		onDone:   onDone,
		quit:     make(chan struct{}),
		duration: time.Duration(len(pcm)/bytesPerSample) * time.Second / time.Duration(dec.SampleRate()),
	}
	s.player.Play()
	go s.monitor()

	return s, nil
}

// Stream is one live playback of a decoded payload. It implements
// tts.AudioStream.
type Stream struct {
	mu        sync.Mutex
	player    *oto.Player
	onDone    func()
	quit      chan struct{}
	closeOnce sync.Once
	stopped   bool
	closed    bool
	duration  time.Duration
}

// Duration returns the total duration of the decoded audio.
func (s *Stream) Duration() time.Duration {
	return s.duration
}

// Stop pauses playback. The done callback will not fire after Stop.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.stopped {
		return
	}
	s.stopped = true
	s.player.Pause()
}

// Close releases the underlying device player. Idempotent.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.quit)
		s.mu.Lock()
		s.closed = true
		err = s.player.Close()
		s.mu.Unlock()
	})
	return err
}

// monitor watches for end of media and fires the done callback.
func (s *Stream) monitor() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.closed || s.stopped {
				s.mu.Unlock()
				return
			}
			finished := !s.player.IsPlaying() && s.player.BufferedSize() == 0
			done := s.onDone
			s.mu.Unlock()

			if finished {
				if done != nil {
					done()
				}
				return
			}
		}
	}
}
