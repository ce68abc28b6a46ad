/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg *Config) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 64)

	srv := httptest.NewServer(newRouter(ctx, cfg, errs))

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return srv
}

// noRedirects lets tests inspect redirect responses.
var noRedirects = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func get(t *testing.T, rawURL string) (*http.Response, string) {
	t.Helper()

	resp, err := noRedirects.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ok\n", body)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, body = get(t, srv.URL+"/version")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "stonecast v"+releaseVersion+"\n", body)
}

func TestHomePageLinksToOverlay(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `href="/overlay"`)
	assert.Contains(t, body, "/favicons/favicon.svg")
}

func TestPrefix(t *testing.T) {
	cfg := testConfig()
	cfg.prefix = "/go/"
	srv := newTestServer(t, cfg)

	resp, _ := get(t, srv.URL+"/go/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/go/overlay")
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/go/overlay/"))
}

func TestAssets(t *testing.T) {
	srv := newTestServer(t, testConfig())

	tests := []struct {
		path        string
		contentType string
	}{
		{"/assets/overlay/app.js", "text/javascript"},
		{"/assets/overlay/app.css", "text/css"},
		{"/assets/page.css", "text/css"},
		{"/favicons/favicon.svg", "image/svg+xml"},
	}

	for _, tt := range tests {
		resp, body := get(t, srv.URL+tt.path)
		require.Equal(t, http.StatusOK, resp.StatusCode, tt.path)
		assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType, tt.path)
		assert.NotEmpty(t, body, tt.path)
	}

	resp, _ := get(t, srv.URL+"/assets/overlay/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRobots(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, body := get(t, srv.URL+"/robots.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Disallow: /overlay/")
}

func TestProfileHandlers(t *testing.T) {
	cfg := testConfig()

	srv := newTestServer(t, cfg)
	resp, _ := get(t, srv.URL+"/pprof/heap")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cfg = testConfig()
	cfg.profile = true

	srv = newTestServer(t, cfg)
	resp, _ = get(t, srv.URL+"/pprof/heap")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewOverlayRedirectsToFreshRoom(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, _ := get(t, srv.URL+"/overlay")
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

	first := resp.Header.Get("Location")
	assert.Regexp(t, `^/overlay/[A-Za-z0-9]{8}$`, first)

	resp, _ = get(t, srv.URL+"/overlay")
	assert.NotEqual(t, first, resp.Header.Get("Location"))
}

func TestRoomPageSetsIdentity(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, body := get(t, srv.URL+"/overlay/room1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<canvas id="overlay"`)

	var id string
	for _, c := range resp.Cookies() {
		if c.Name == clientCookieName {
			id = c.Value
		}
	}
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

// shareGrid reads the grid parameter of a room's share URL.
func shareGrid(srv *httptest.Server, room string) string {
	resp, err := http.Get(srv.URL + "/overlay/" + room + "/share")
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	u, err := url.Parse(strings.TrimSpace(string(body)))
	if err != nil || u.Path != "/overlay/"+room {
		return ""
	}

	return u.Query().Get("grid")
}

func TestRoomPageRestoresGrid(t *testing.T) {
	srv := newTestServer(t, testConfig())

	assert.Empty(t, shareGrid(srv, "restore"))

	q := url.Values{"grid": {"1000,1000;0,0;1000,0;0,1000"}}
	resp, _ := get(t, srv.URL+"/overlay/restore?"+q.Encode())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return shareGrid(srv, "restore") == "0,0;1000,0;0,1000;1000,1000"
	}, 2*time.Second, 10*time.Millisecond)

	// A second grid does not replace the first
	q = url.Values{"grid": {"5,5;500,5;5,500;500,500"}}
	get(t, srv.URL+"/overlay/restore?"+q.Encode())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "0,0;1000,0;0,1000;1000,1000", shareGrid(srv, "restore"))
}

func TestRoomPageIgnoresBadGrid(t *testing.T) {
	srv := newTestServer(t, testConfig())

	q := url.Values{"grid": {"1,2;3,4"}}
	resp, _ := get(t, srv.URL+"/overlay/bad?"+q.Encode())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Empty(t, shareGrid(srv, "bad"))
}

func TestQRCode(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, body := get(t, srv.URL+"/overlay/room1/qr")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"))
}

func TestRoomIDTooLong(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, _ := get(t, srv.URL+"/overlay/"+strings.Repeat("x", maxRoomIDLength+1))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServePageReturnsListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	cfg := testConfig()
	cfg.port = l.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- ServePage(ctx, cfg, nil) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ServePage kept running on a port already in use")
	}
}

func TestServePageStopsWithContext(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg := testConfig()
	cfg.port = l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- ServePage(ctx, cfg, nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("ServePage did not stop with its context")
	}
}

func TestRequestScheme(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "http", requestScheme(r))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https", requestScheme(r))

	r.Header.Set("X-Forwarded-Proto", "gopher")
	assert.Equal(t, "http", requestScheme(r))
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", realIP(r))

	r.Header.Set("X-Real-IP", "192.0.2.7")
	assert.Equal(t, "192.0.2.7:1234", realIP(r))

	r.Header.Set("CF-Connecting-IP", "2001:db8::1")
	assert.Equal(t, "[2001:db8::1]:1234", realIP(r))
}

func TestHumanReadableSize(t *testing.T) {
	assert.Equal(t, "999 B", humanReadableSize(999))
	assert.Equal(t, "1.5 kB", humanReadableSize(1500))
	assert.Equal(t, "2.0 MB", humanReadableSize(2_000_000))
	assert.Equal(t, "1.0 GB", humanReadableSize(1_000_000_000))
}
