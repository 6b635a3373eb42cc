package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func httpClientRT(rt http.RoundTripper) *http.Client {
	return &http.Client{Transport: rt, Timeout: 2 * time.Second}
}

func respond(r *http.Request, code int, body string) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(body)), Header: make(http.Header), Request: r}
}

func TestDoJSON_Retry500Then200(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return respond(r, 500, "err"), nil
		}
		return respond(r, 200, `{"ok": true}`), nil
	}))
	var out struct {
		OK bool `json:"ok"`
	}
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := &Client{HTTP: rt, MaxElapsed: time.Second}
	require.NoError(t, c.DoJSON(ctx, req, &out))
	require.True(t, out.OK)
	require.GreaterOrEqual(t, calls, 2)
}

type tempTimeoutErr struct{}

func (tempTimeoutErr) Error() string   { return "timeout" }
func (tempTimeoutErr) Timeout() bool   { return true }
func (tempTimeoutErr) Temporary() bool { return true }

func TestDoJSON_RetryNetTimeoutThen200(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			var ne net.Error = tempTimeoutErr{}
			return nil, ne
		}
		return respond(r, 200, `{"ok": true}`), nil
	}))
	var out map[string]bool
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	c := &Client{HTTP: rt, MaxElapsed: time.Second}
	require.NoError(t, c.DoJSON(context.Background(), req, &out))
	require.True(t, out["ok"])
}

func TestDoJSON_NoRetryOn400(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return respond(r, 400, "bad"), nil
	}))
	var out any
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	c := &Client{HTTP: rt, MaxElapsed: time.Second}
	err := c.DoJSON(context.Background(), req, &out)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 400, se.Code)
	require.Equal(t, 1, calls)
}

func TestDoJSON_DecodeError_NoRetry(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewBufferString("{x")), Header: make(http.Header), Request: r}, nil
	}))
	var out map[string]any
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	c := &Client{HTTP: rt, MaxElapsed: time.Second}
	err := c.DoJSON(context.Background(), req, &out)
	require.ErrorContains(t, err, "decode")
	require.Equal(t, 1, calls)
}

func TestDoJSON_NoRetriesWhenDisabled(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return respond(r, 503, ""), nil
	}))
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	c := &Client{HTTP: rt}
	var out any
	require.Error(t, c.DoJSON(context.Background(), req, &out))
	require.Equal(t, 1, calls)
}

func TestGetJSON_BuildsURLAndHeaders(t *testing.T) {
	var seen *http.Request
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return respond(r, 200, `{}`), nil
	}))
	c := New(time.Second)
	c.HTTP = rt
	c.Headers["User-Agent"] = "collector-test"

	var out map[string]any
	err := c.GetJSON(context.Background(), "https://api.example.com", "/v1/data", url.Values{"a": {"1"}, "b": {"x y"}}, &out)
	require.NoError(t, err)
	require.Equal(t, "/v1/data", seen.URL.Path)
	require.Equal(t, "1", seen.URL.Query().Get("a"))
	require.Equal(t, "x y", seen.URL.Query().Get("b"))
	require.Equal(t, "collector-test", seen.Header.Get("User-Agent"))
	require.Equal(t, "application/json", seen.Header.Get("Accept"))
}
