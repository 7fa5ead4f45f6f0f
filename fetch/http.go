package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// get performs an authenticated GET and returns the body of a 2xx response.
// Non-2xx statuses are classified by classifyStatus.
func get(ctx context.Context, client *http.Client, provider, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.NewRetrievalError(provider, "invalid request URL", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.NewRetrievalError(provider, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxArtifactBytes+1))
	if err != nil {
		return nil, errors.NewRetrievalError(provider, "reading response failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(provider, resp.StatusCode, body)
	}
	if len(body) > MaxArtifactBytes {
		return nil, errors.NewRetrievalError(provider,
			fmt.Sprintf("artifact exceeds %d bytes", MaxArtifactBytes), nil)
	}
	return body, nil
}

// classifyStatus maps a failed HTTP status onto the error taxonomy:
// 401 is an authentication failure, 403 and 429 are provider refusals
// (permissions, rate limits), everything else means the data could not be got.
func classifyStatus(provider string, status int, body []byte) error {
	msg := statusMessage(status, body)
	switch status {
	case http.StatusUnauthorized:
		return errors.NewAuthenticationError(provider, msg)
	case http.StatusForbidden, http.StatusTooManyRequests:
		return errors.NewProviderError(provider, status, msg, nil)
	default:
		return errors.NewRetrievalError(provider, msg, nil)
	}
}

// statusMessage prefers the provider's JSON "message" field over the raw status text.
func statusMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Error != "":
			return payload.Error
		}
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

// baseURL turns a host or URL into a scheme-qualified URL without a trailing slash.
func baseURL(target string) string {
	t := strings.TrimRight(strings.TrimSpace(target), "/")
	if !strings.Contains(t, "://") {
		t = "https://" + t
	}
	return t
}

// escapeSegments escapes each segment of a slash separated path.
func escapeSegments(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
