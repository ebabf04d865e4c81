package services

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gitfolio/gitfolio/pkg/logger"
)

const maxAttempts = 3

// retryTransport retries upstream calls on transport errors, transient
// 502/503/504 responses, and successful responses that carry a non-JSON body
// (an HTML error page from an outage must never reach a JSON decoder).
// Backoff doubles per attempt starting at one second. Other statuses,
// including every 4xx, pass through untouched.
type retryTransport struct {
	base  http.RoundTripper
	sleep func(time.Duration)
}

func newRetryTransport(base http.RoundTripper) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &retryTransport{
		base:  base,
		sleep: time.Sleep,
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Buffer the body so POSTs can be replayed on retry
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	var resp *http.Response
	var err error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			t.sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}

		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err = t.base.RoundTrip(req)
		if err != nil {
			logger.WithError(err).WithField("url", req.URL.String()).Warn("Upstream request failed")
			continue
		}

		if isTransientStatus(resp.StatusCode) {
			logger.WithField("status", resp.StatusCode).WithField("url", req.URL.String()).Warn("Transient upstream status")
			if attempt == maxAttempts-1 {
				// Out of attempts, hand the last response back unchanged
				return resp, nil
			}
			drain(resp)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 && !isJSONResponse(resp) {
			logger.WithField("content_type", resp.Header.Get("Content-Type")).Warn("Non-JSON upstream response body")
			drain(resp)
			err = fmt.Errorf("upstream returned non-JSON response (status %d)", resp.StatusCode)
			resp = nil
			continue
		}

		return resp, nil
	}

	// Surface the last error or response unchanged
	if err != nil {
		return nil, fmt.Errorf("upstream request failed after %d attempts: %w", maxAttempts, err)
	}
	return resp, nil
}

func isTransientStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isJSONResponse(resp *http.Response) bool {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
