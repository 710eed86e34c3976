package krx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"krx-supply-oscillator/internal/domain"
)

const (
	maxAttempts      = 3
	requestTimeout   = 30 * time.Second
	// maxResponseBytes guards against unbounded bodies; full-market listing
	// responses run to a few megabytes, never tens of them.
	maxResponseBytes = 50 << 20
)

var retryDelays = [...]time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// errSessionRejected marks the LOGOUT sentinel body. It is retryable, but
// forces a fresh session before the next attempt.
var errSessionRejected = errors.New("session rejected (LOGOUT): the portal may deny non-domestic traffic")

// Client performs form-encoded POSTs against the KRX data endpoint. It keeps
// the server-issued session cookies in an in-memory jar and tracks whether
// the session side channel has been primed; that flag is instance state, not
// a process global, so tests can run clients side by side.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	sessionInitURL string
	referer        string
	tracer         trace.Tracer
	sleep          func(ctx context.Context, d time.Duration) error

	mu           sync.Mutex
	sessionReady bool
}

// NewClient creates a client with a cookie jar and the production endpoint.
func NewClient(tracer trace.Tracer) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
		},
		baseURL:        BaseURL,
		sessionInitURL: SessionInitURL,
		referer:        DefaultReferer,
		tracer:         tracer,
		sleep:          sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// InitSession primes the session cookie with a best-effort GET against the
// portal page. Failure is swallowed: reports that don't validate the session
// must not be blocked by a dead side channel.
func (c *Client) InitSession(ctx context.Context) {
	c.mu.Lock()
	if c.sessionReady {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sessionInitURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	resp.Body.Close()

	c.mu.Lock()
	c.sessionReady = true
	c.mu.Unlock()
}

func (c *Client) resetSession() {
	c.mu.Lock()
	c.sessionReady = false
	c.mu.Unlock()
}

// Post sends one report request and returns the raw body. Transient failures
// (non-2xx, transport errors, oversized bodies, the LOGOUT sentinel) are
// retried up to maxAttempts with fixed backoff; the LOGOUT sentinel also
// forces session re-initialization before the next attempt. After the budget
// is spent the last cause is surfaced as a single NetworkError.
func (c *Client) Post(ctx context.Context, params url.Values) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "krx.post")
	defer span.End()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, err := c.executeRequest(ctx, params)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if attempt == maxAttempts-1 {
			break
		}
		if errors.Is(err, errSessionRejected) {
			c.resetSession()
			c.InitSession(ctx)
		}
		if err := c.sleep(ctx, retryDelays[attempt]); err != nil {
			return nil, err
		}
	}
	return nil, &domain.NetworkError{Attempts: maxAttempts, Cause: lastErr}
}

func (c *Client) executeRequest(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", c.referer)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Origin", originHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response exceeds %d bytes for bld=%s", maxResponseBytes, params.Get("bld"))
	}

	// The sentinel can arrive with a 200 or a 400, so check it before the
	// status code and before any JSON decoding.
	if strings.TrimSpace(string(body)) == logoutSentinel {
		return nil, errSessionRejected
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		return nil, fmt.Errorf("unexpected status %d for bld=%s: %s", resp.StatusCode, params.Get("bld"), snippet)
	}

	return body, nil
}
