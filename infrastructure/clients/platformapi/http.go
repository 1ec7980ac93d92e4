package platformapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postpilot/domain/model"
)

const maxResponseBytes = 1 << 20

// DefaultHTTPClient is shared by the platform clients. Publishing calls hit
// slow upload endpoints, hence the generous timeout.
var DefaultHTTPClient = &http.Client{Timeout: 60 * time.Second}

// ErrorParser turns a provider error body into a typed Error. Returning nil
// falls back to a generic Error built from the status and raw body.
type ErrorParser func(status int, body []byte) *Error

// PostJSON sends a JSON body and decodes a JSON response into out.
func PostJSON(ctx context.Context, client *http.Client, platform model.Platform, endpoint string, header http.Header, payload any, out any, parse ErrorParser) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", platform, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build %s request: %w", platform, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(client, platform, req, header, out, parse)
}

// PostForm sends an application/x-www-form-urlencoded body.
func PostForm(ctx context.Context, client *http.Client, platform model.Platform, endpoint string, form url.Values, out any, parse ErrorParser) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build %s request: %w", platform, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(client, platform, req, nil, out, parse)
}

// Get performs a GET with query parameters already encoded into endpoint.
func Get(ctx context.Context, client *http.Client, platform model.Platform, endpoint string, header http.Header, out any, parse ErrorParser) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", platform, err)
	}
	return do(client, platform, req, header, out, parse)
}

func do(client *http.Client, platform model.Platform, req *http.Request, header http.Header, out any, parse ErrorParser) error {
	if client == nil {
		client = DefaultHTTPClient
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s api: %w", platform, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", platform, err)
	}
	if resp.StatusCode >= 400 {
		if parse != nil {
			if apiErr := parse(resp.StatusCode, raw); apiErr != nil {
				apiErr.Platform = platform
				apiErr.StatusCode = resp.StatusCode
				return apiErr
			}
		}
		return &Error{Platform: platform, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s response: %w", platform, err)
		}
	}
	return nil
}
