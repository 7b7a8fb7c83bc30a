package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// HTTPClient implements ContentGenerator via a JSON HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type textResponse struct {
	Text string `json:"text"`
}

type imageResponse struct {
	URL string `json:"url"`
}

// NewHTTPClient creates generator client with the given per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse generator url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("generator url must be absolute")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// GenerateText requests poem text for the supplied inputs.
func (c *HTTPClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	var data textResponse
	if err := c.post(ctx, "/v1/text", req, &data); err != nil {
		return "", err
	}
	if strings.TrimSpace(data.Text) == "" {
		return "", ErrEmptyResult
	}
	return data.Text, nil
}

// GenerateImage requests an image and returns its URL.
func (c *HTTPClient) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	var data imageResponse
	if err := c.post(ctx, "/v1/image", req, &data); err != nil {
		return "", err
	}
	if data.URL == "" {
		return "", ErrEmptyResult
	}
	return data.URL, nil
}

func (c *HTTPClient) post(ctx context.Context, route string, payload, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, route)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	case http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		data, _ := io.ReadAll(resp.Body)
		c.logger.Error("generator request failed",
			slog.String("route", route),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(data)),
		)
		return fmt.Errorf("generator error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
