// Package generation calls the AI endpoint that writes social media posts
// for the content calendar.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"boothdesk/internal/model"
)

// ErrEmptyResult is returned when the endpoint answers 200 without a post.
var ErrEmptyResult = errors.New("generation endpoint returned an empty post")

// StatusError is a non-2xx answer of the generation endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation endpoint status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether a later attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRetryable reports whether err is worth another attempt. Transport errors
// are, client errors are not.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return !errors.Is(err, ErrEmptyResult) && !errors.Is(err, context.Canceled)
}

type Client interface {
	Generate(ctx context.Context, req model.GenerationRequest) (*model.GeneratedContent, error)
}

// HTTPClient posts generation requests with a bearer API key.
type HTTPClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewHTTPClient(endpoint, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, req model.GenerationRequest) (*model.GeneratedContent, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding generation request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling generation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out model.GeneratedContent
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding generation response: %w", err)
	}
	if out.Titulo == "" && out.Legenda == "" && out.Roteiro == "" {
		return nil, ErrEmptyResult
	}
	if out.Hashtags == nil {
		out.Hashtags = []string{}
	}
	return &out, nil
}
