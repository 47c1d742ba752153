// Package classifier turns a student's free-text narrative into a topic label.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"counsellor-matching/errors"
)

// DefaultTimeout bounds one classification request.
const DefaultTimeout = 5 * time.Second

// maxResponseBytes limits how much of a response body is read.
const maxResponseBytes = 64 << 10

// Request is the body sent to the classification endpoint.
type Request struct {
	Text string `json:"text"`
}

// Response is the body returned by the classification endpoint.
type Response struct {
	Label string `json:"label"`
}

// Client calls a remote classification endpoint over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient returns a Client posting to url. A non-positive timeout uses
// DefaultTimeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP lets callers supply their own *http.Client.
func NewClientWithHTTP(url string, hc *http.Client) *Client {
	return &Client{url: url, httpClient: hc}
}

// Classify posts text and returns the label. Every failure (transport,
// non-2xx status, malformed or non-string label) is reported as a
// ClassificationUnavailable error.
func (c *Client) Classify(ctx context.Context, text string) (string, error) {
	const op errors.Op = "classifier.Client.Classify"

	body, err := json.Marshal(Request{Text: text})
	if err != nil {
		return "", errors.E(op, errors.ClassificationUnavailable, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", errors.E(op, errors.ClassificationUnavailable, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.E(op, errors.ClassificationUnavailable, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return "", errors.E(op, errors.ClassificationUnavailable, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", errors.E(op, errors.ClassificationUnavailable, "malformed response", err)
	}
	return out.Label, nil
}
