package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"lodgeportal/cli/internal/manifest"
)

// HTTP implements API over the portal's REST endpoints.
type HTTP struct {
	// baseURL is the API root, e.g. "https://portal.example.org/api"
	baseURL string
	// endpoints contains the URL paths relative to baseURL
	endpoints manifest.HTTPEndpoints
	client    *http.Client
	userAgent string
	logger    *pterm.Logger
}

func newHTTP(baseURL string, endpoints manifest.HTTPEndpoints, opts Options) *HTTP {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "lodge-cli"
	}
	return &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		client:    client,
		userAgent: ua,
		logger:    opts.Logger,
	}
}

// setStandardHeaders sets headers shared by every request.
func (h *HTTP) setStandardHeaders(req *http.Request, requestID string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("X-Request-ID", requestID)
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
// Every failure is returned as *Error.
func (h *HTTP) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindDecode, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindTransport, Err: err}
	}
	requestID := uuid.NewString()
	h.setStandardHeaders(req, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		h.debug("request failed", method, path, requestID, 0, start)
		return &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()
	h.debug("request completed", method, path, requestID, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return newStatusError(resp.StatusCode, b)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func (h *HTTP) debug(msg, method, path, requestID string, status int, start time.Time) {
	if h.logger == nil {
		return
	}
	h.logger.Debug(msg, h.logger.Args(
		"method", method,
		"path", path,
		"status", status,
		"request_id", requestID,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	))
}
