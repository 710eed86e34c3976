package krx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"

	"krx-supply-oscillator/internal/domain"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

// newTestClient wires a client onto a fake transport with instant backoff.
func newTestClient(rt roundTripFunc) (*Client, *[]time.Duration) {
	var slept []time.Duration
	c := &Client{
		httpClient:     &http.Client{Transport: rt},
		baseURL:        BaseURL,
		sessionInitURL: SessionInitURL,
		referer:        DefaultReferer,
		tracer:         trace.NewNoopTracerProvider().Tracer("test"),
		sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}
	return c, &slept
}

func TestPostRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	client, slept := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return jsonResponse(http.StatusInternalServerError, "oops"), nil
		}
		return jsonResponse(http.StatusOK, `{"OutBlock_1":[]}`), nil
	})

	body, err := client.Post(context.Background(), url.Values{"bld": {bldTickerList}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"OutBlock_1":[]}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(*slept) != 2 || (*slept)[0] != time.Second || (*slept)[1] != 2*time.Second {
		t.Fatalf("unexpected backoff schedule: %v", *slept)
	}
}

func TestPostExhaustsBudgetAsNetworkError(t *testing.T) {
	t.Parallel()

	calls := 0
	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("connection refused")
	})

	_, err := client.Post(context.Background(), url.Values{"bld": {bldTickerList}})
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Attempts != 3 {
		t.Fatalf("expected 3 attempts recorded, got %d", netErr.Attempts)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestPostLogoutSentinelReinitializesSession(t *testing.T) {
	t.Parallel()

	var posts, gets int
	client, _ := newTestClient(nil)
	client.sessionReady = true
	client.httpClient.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodGet {
			gets++
			return jsonResponse(http.StatusOK, "<html></html>"), nil
		}
		posts++
		if posts == 1 {
			// The sentinel can arrive with a client-error status too.
			return jsonResponse(http.StatusBadRequest, "LOGOUT"), nil
		}
		return jsonResponse(http.StatusOK, `{"output":[]}`), nil
	})

	body, err := client.Post(context.Background(), url.Values{"bld": {bldTickerList}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"output":[]}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if posts != 2 {
		t.Fatalf("expected 2 report attempts, got %d", posts)
	}
	if gets != 1 {
		t.Fatalf("expected 1 session re-init between attempts, got %d", gets)
	}
}

func TestPostCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, "oops"), nil
	})
	client.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	_, err := client.Post(context.Background(), url.Values{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecuteRequestRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(io.LimitReader(repeatReader('x'), maxResponseBytes+10)),
			Header:     make(http.Header),
		}, nil
	})

	_, err := client.executeRequest(context.Background(), url.Values{"bld": {bldTickerList}})
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected size guard error, got %v", err)
	}
}

func TestExecuteRequestSendsExpectedHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		got = req.Header.Clone()
		return jsonResponse(http.StatusOK, "{}"), nil
	})

	if _, err := client.executeRequest(context.Background(), url.Values{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Get("Referer") != DefaultReferer {
		t.Fatalf("missing referer header, got %q", got.Get("Referer"))
	}
	if got.Get("X-Requested-With") != "XMLHttpRequest" {
		t.Fatalf("missing XHR header")
	}
	if !strings.HasPrefix(got.Get("Content-Type"), "application/x-www-form-urlencoded") {
		t.Fatalf("unexpected content type %q", got.Get("Content-Type"))
	}
}

func TestInitSessionSwallowsFailure(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("unreachable")
	})

	client.InitSession(context.Background())
	if client.sessionReady {
		t.Fatal("failed init must not mark the session ready")
	}
}

type repeatByte byte

func repeatReader(b byte) io.Reader { return repeatByte(b) }

func (r repeatByte) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}
