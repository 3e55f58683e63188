package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	// PollInterval is how often to check the render cache
	PollInterval = 500 * time.Millisecond
	// RenderTimeout is max time to wait for the worker to render a log
	RenderTimeout = 30 * time.Second
)

// RenderJobResponse is the response from the render endpoint
type RenderJobResponse struct {
	JobID   string   `json:"job_id"`
	Formats []string `json:"formats"`
}

// PostRender asks the API to render a log in the background and returns the job id
func PostRender(ctx context.Context, client *http.Client, baseURL string, logID uuid.UUID, format string) (*RenderJobResponse, error) {
	u := fmt.Sprintf("%s/v1/logs/%s/render", baseURL, logID)
	if format != "" {
		u += "?format=" + url.QueryEscape(format)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create render request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send render request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("render endpoint returned %d (expected 202): %s", resp.StatusCode, string(body))
	}

	var job RenderJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("failed to parse render response: %w", err)
	}
	return &job, nil
}

// GetText fetches the full text of a log and reports whether it came from the
// render cache.
func GetText(ctx context.Context, client *http.Client, baseURL string, logID uuid.UUID, format string) (string, bool, error) {
	u := fmt.Sprintf("%s/v1/logs/%s/text?format=%s", baseURL, logID, url.QueryEscape(format))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create text request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to send text request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read text response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("text endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return string(body), resp.Header.Get("X-Render-Cache") == "hit", nil
}

// PollForRender polls the text endpoint until the render is cached. A miss
// also fills the cache, so a hit only proves the text is cached.
func PollForRender(ctx context.Context, client *http.Client, baseURL string, logID uuid.UUID, format string) (string, error) {
	timeout := time.After(RenderTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timeout:
			return "", fmt.Errorf("timeout waiting for %s render (waited %v)", format, RenderTimeout)
		case <-ticker.C:
			text, hit, err := GetText(ctx, client, baseURL, logID, format)
			if err != nil {
				// Log error but continue polling
				continue
			}
			if hit {
				return text, nil
			}
		}
	}
}
