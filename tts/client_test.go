package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{
		BaseURL:           srv.URL + "/api",
		RequestsPerMinute: 600,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, srv
}

// TestNewClientValidation tests base URL validation.
func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty base URL error = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewClient(ClientConfig{BaseURL: "not a url"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad base URL error = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewClient(ClientConfig{BaseURL: "http://localhost:8000/api"}); err != nil {
		t.Errorf("valid base URL rejected: %v", err)
	}
}

// TestListVoices tests the voices endpoint round trip.
func TestListVoices(t *testing.T) {
	var gotLanguage string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/voices" {
			t.Errorf("path = %s, want /api/voices", r.URL.Path)
		}
		gotLanguage = r.URL.Query().Get("language")
		json.NewEncoder(w).Encode(map[string]any{
			"voices": []Voice{
				{ShortName: "en-US-AriaNeural", Locale: "en-US", Gender: "Female", FriendlyName: "Aria"},
			},
		})
	}))

	voices, err := client.ListVoices(context.Background(), "en")
	if err != nil {
		t.Fatalf("ListVoices failed: %v", err)
	}
	if gotLanguage != "en" {
		t.Errorf("language query = %q, want en", gotLanguage)
	}
	if len(voices) != 1 || voices[0].ShortName != "en-US-AriaNeural" {
		t.Errorf("voices = %v", voices)
	}
}

// TestListVoicesEmptyLanguage tests the empty language guard.
func TestListVoicesEmptyLanguage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request made despite empty language")
	}))

	if _, err := client.ListVoices(context.Background(), ""); !errors.Is(err, ErrEmptyLanguage) {
		t.Errorf("error = %v, want ErrEmptyLanguage", err)
	}
}

// TestPreviewRequest tests the preview query parameters.
func TestPreviewRequest(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("voice") != "en-US-AriaNeural" || q.Get("rate") != "+10%" || q.Get("pitch") != "-5Hz" || q.Get("volume") != "+0%" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))

	data, err := client.Preview(context.Background(), "en-US-AriaNeural", "en", Prosody{Rate: 10, Pitch: -5}.Encoded())
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("data = %q", data)
	}
}

// TestGenerate tests the generate round trip, body shape included.
func TestGenerate(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			t.Errorf("%s %s, want POST /api/generate", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["text"] != "hello" || body["voice"] != "en-US-AriaNeural" || body["rate"] != "+0%" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(GenerateResult{
			FileID:      "abc123",
			DownloadURL: "/download/abc123",
			ExpiresAt:   "2026-08-31T12:00:00.000000",
		})
	}))

	enc := Prosody{}.Encoded()
	res, err := client.Generate(context.Background(), GenerateRequest{
		Text: "hello", Voice: "en-US-AriaNeural",
		Rate: enc.Rate, Pitch: enc.Pitch, Volume: enc.Volume,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.FileID != "abc123" || res.DownloadURL != "/download/abc123" {
		t.Errorf("result = %+v", res)
	}
}

// TestAPIErrorDetail tests that the backend's detail message is surfaced.
func TestAPIErrorDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Text is too long. Maximum length is 50000 characters."})
	}))

	_, err := client.Generate(context.Background(), GenerateRequest{Text: "x", Voice: "v"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.UserMessage(), "too long") {
		t.Errorf("UserMessage() = %q", apiErr.UserMessage())
	}
}

// TestAPIErrorWithoutDetail tests the generic fallback message.
func TestAPIErrorWithoutDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Health(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.UserMessage() != "request failed, please try again" {
		t.Errorf("UserMessage() = %q", apiErr.UserMessage())
	}
}

// TestDownloadNotFound tests the 404 mapping.
func TestDownloadNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "File not found or expired"})
	}))

	if _, err := client.Download(context.Background(), "missing"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("error = %v, want ErrFileNotFound", err)
	}
}

// TestAudioSizeLimit tests rejection of oversized payloads.
func TestAudioSizeLimit(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))

	small, err := NewClient(ClientConfig{
		BaseURL:           client.BaseURL(),
		RequestsPerMinute: 600,
		MaxAudioBytes:     1024,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := small.Preview(context.Background(), "v", "en", Prosody{}.Encoded()); !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("error = %v, want ErrResponseTooLarge", err)
	}
}

// TestServerUnavailable tests the connection failure mapping.
func TestServerUnavailable(t *testing.T) {
	client, err := NewClient(ClientConfig{
		BaseURL:           "http://127.0.0.1:1/api",
		RequestsPerMinute: 600,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.Health(context.Background()); !errors.Is(err, ErrServerUnavailable) {
		t.Errorf("error = %v, want ErrServerUnavailable", err)
	}
}

// TestHealth tests the health endpoint.
func TestHealth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path = %s, want /api/health", r.URL.Path)
		}
		json.NewEncoder(w).Encode(HealthStatus{Status: "healthy", Storage: "connected"})
	}))

	status, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if status.Status != "healthy" || status.Storage != "connected" {
		t.Errorf("status = %+v", status)
	}
}

// TestResolveURL tests relative and absolute download URL resolution.
func TestResolveURL(t *testing.T) {
	client, err := NewClient(ClientConfig{BaseURL: "http://localhost:8000/api"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"relative path", "/download/abc123", "http://localhost:8000/api/download/abc123"},
		{"no leading slash", "download/abc123", "http://localhost:8000/api/download/abc123"},
		{"absolute passthrough", "https://cdn.example.com/f.mp3", "https://cdn.example.com/f.mp3"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.ResolveURL(tt.in); got != tt.expected {
				t.Errorf("ResolveURL(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}
