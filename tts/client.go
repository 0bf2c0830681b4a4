package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Voice describes a synthesis persona exposed by the backend. The JSON field
// names follow the edge-tts voice listing verbatim.
type Voice struct {
	ShortName    string `json:"ShortName"`
	Locale       string `json:"Locale"`
	Gender       string `json:"Gender"`
	FriendlyName string `json:"FriendlyName"`
}

// IsNeural reports whether the voice is a higher-fidelity neural-class voice.
func (v Voice) IsNeural() bool {
	return strings.Contains(v.ShortName, "Neural")
}

// GenerateRequest is the JSON body for a full generation request.
type GenerateRequest struct {
	Text   string `json:"text"`
	Voice  string `json:"voice"`
	Rate   string `json:"rate"`
	Pitch  string `json:"pitch"`
	Volume string `json:"volume"`
}

// GenerateResult is the backend's response to a successful generation.
type GenerateResult struct {
	FileID      string `json:"file_id"`
	DownloadURL string `json:"download_url"`
	ExpiresAt   string `json:"expires_at"`
}

// HealthStatus reports backend health.
type HealthStatus struct {
	Status  string `json:"status"`
	Storage string `json:"minio"`
}

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	// BaseURL of the synthesis API, e.g. "http://localhost:8000/api".
	BaseURL string

	// Timeout per request. Defaults to 30s.
	Timeout time.Duration

	// RequestsPerMinute rate limits synthesis calls. Defaults to 50.
	RequestsPerMinute int

	// MaxAudioBytes caps audio response size. Defaults to 50MB.
	MaxAudioBytes int64
}

// Client speaks the synthesis backend's REST API.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	limiter       *rate.Limiter
	maxAudioBytes int64
}

const (
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerMinute = 50
	defaultMaxAudioBytes     = 50 * 1024 * 1024
)

// NewClient creates a client for the backend at cfg.BaseURL.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: server base URL is empty", ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: bad server base URL %q: %v", ErrInvalidConfig, cfg.BaseURL, err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}
	if cfg.MaxAudioBytes == 0 {
		cfg.MaxAudioBytes = defaultMaxAudioBytes
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		limiter:       rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		maxAudioBytes: cfg.MaxAudioBytes,
	}, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListVoices fetches the voices available for a language.
func (c *Client) ListVoices(ctx context.Context, language string) ([]Voice, error) {
	if language == "" {
		return nil, ErrEmptyLanguage
	}

	q := url.Values{}
	q.Set("language", language)

	var payload struct {
		Voices []Voice `json:"voices"`
	}
	if err := c.getJSON(ctx, "/voices?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	return payload.Voices, nil
}

// Preview fetches a short synthesized audio sample for a voice with the
// given prosody settings.
func (c *Client) Preview(ctx context.Context, voice, language string, params EncodedProsody) ([]byte, error) {
	q := url.Values{}
	q.Set("voice", voice)
	q.Set("language", language)
	q.Set("rate", params.Rate)
	q.Set("pitch", params.Pitch)
	q.Set("volume", params.Volume)

	data, err := c.getAudio(ctx, "/preview?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", voice, err)
	}
	return data, nil
}

// Generate submits text for full synthesis.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp)
	}

	var result GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}
	return &result, nil
}

// Download fetches a generated audio file by id.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	data, err := c.getAudio(ctx, "/download/"+url.PathEscape(fileID))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	return data, nil
}

// Health checks backend health.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "/health", &status); err != nil {
		return HealthStatus{}, err
	}
	return status, nil
}

// ResolveURL turns a server-relative path (as returned in download_url) into
// an absolute address playable outside the client. Absolute URLs pass
// through unchanged.
func (c *Client) ResolveURL(pathOrURL string) string {
	if pathOrURL == "" {
		return ""
	}
	if strings.Contains(pathOrURL, "://") {
		return pathOrURL
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return pathOrURL
	}

	// download_url is relative to the API mount, e.g. "/download/abc"
	// under "/api".
	base.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(pathOrURL, "/")
	return base.String()
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) getAudio(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp)
	}

	// Read one byte past the cap to detect oversized payloads.
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read audio payload: %w", err)
	}
	if int64(len(data)) > c.maxAudioBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, c.maxAudioBytes)
	}
	if len(data) == 0 {
		return nil, errors.New("server returned empty audio payload")
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	return resp, nil
}

// apiError reads a non-2xx response body for the backend's detail message.
func (c *Client) apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(body) > 0 {
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
	}
	return apiErr
}
