package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultTranscribeURL = "https://api.groq.com/openai/v1/audio/transcriptions"

// Transcriber uploads audio to the Groq transcription API and returns the
// transcript text. Calls are bounded by the process-wide sliding-window
// limiter before any network I/O happens.
type Transcriber struct {
	baseURL    string
	httpClient *http.Client
	limiter    *SlidingLimiter
}

// NewTranscriber creates a Transcriber. An empty baseURL selects the Groq
// endpoint; tests point it at a local server.
func NewTranscriber(baseURL string, timeout time.Duration, limiter *SlidingLimiter) *Transcriber {
	if baseURL == "" {
		baseURL = defaultTranscribeURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if limiter == nil {
		limiter = NewTranscribeLimiter()
	}
	return &Transcriber{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Transcribe uploads the audio bytes and returns the transcript. Blocks on
// the rate limiter when the window is exhausted.
func (t *Transcriber) Transcribe(ctx context.Context, apiKey, model string, audio []byte, filename string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("transcription rate limit wait: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("multipart file part: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return "", fmt.Errorf("multipart write audio: %w", err)
	}
	_ = mw.WriteField("model", model)
	_ = mw.WriteField("language", "en")
	_ = mw.WriteField("response_format", "verbose_json")
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("multipart close: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("transcription read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("transcription parse response: %w", err)
	}
	return out.Text, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
