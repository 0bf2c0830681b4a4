package audio

import (
	"errors"
	"testing"

	"github.com/dgnsrekt/ttsdeck/tts"
)

var (
	_ tts.AudioStarter = (*Player)(nil)
	_ tts.AudioStarter = (*MockPlayer)(nil)
	_ tts.AudioStream  = (*Stream)(nil)
	_ tts.AudioStream  = (*MockStream)(nil)
)

// TestMockPlayerLifecycle tests stream creation and completion.
func TestMockPlayerLifecycle(t *testing.T) {
	p := NewMockPlayer()

	done := false
	stream, err := p.Start([]byte("mp3"), func() { done = true })
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if p.LiveCount() != 1 {
		t.Errorf("LiveCount = %d, want 1", p.LiveCount())
	}

	ms := p.Streams()[0]
	if string(ms.Data()) != "mp3" {
		t.Errorf("Data = %q", ms.Data())
	}

	ms.FinishPlayback()
	if !done {
		t.Error("done callback not fired on completion")
	}

	if err := stream.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if p.LiveCount() != 0 {
		t.Errorf("LiveCount = %d after Close, want 0", p.LiveCount())
	}
}

// TestMockStreamStopSuppressesDone tests that Stop prevents the callback.
func TestMockStreamStopSuppressesDone(t *testing.T) {
	p := NewMockPlayer()

	done := false
	stream, _ := p.Start(nil, func() { done = true })
	stream.Stop()

	ms := p.Streams()[0]
	ms.FinishPlayback()
	if done {
		t.Error("done callback fired after Stop")
	}
	if !ms.Stopped() {
		t.Error("Stopped() = false")
	}
}

// TestMockStreamCloseIdempotent tests repeated Close calls.
func TestMockStreamCloseIdempotent(t *testing.T) {
	p := NewMockPlayer()
	stream, _ := p.Start(nil, nil)

	stream.Close()
	stream.Close()

	ms := p.Streams()[0]
	if !ms.Closed() {
		t.Error("Closed() = false")
	}
	if ms.CloseCount() != 2 {
		t.Errorf("CloseCount = %d, want 2", ms.CloseCount())
	}
}

// TestMockPlayerStartError tests scripted Start failure.
func TestMockPlayerStartError(t *testing.T) {
	p := NewMockPlayer()
	p.StartErr = errors.New("no device")

	if _, err := p.Start(nil, nil); err == nil {
		t.Fatal("Start should fail")
	}
	if len(p.Streams()) != 0 {
		t.Error("failed Start created a stream")
	}
}
