package sitescore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

const testUserAgent = "SiteScoreTest/1.0"

func testClientOptions() ClientOptions {
	return ClientOptions{Timeout: 2 * time.Second, UserAgent: testUserAgent, AllowPrivate: true}
}

func TestHTTPClient_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != testUserAgent {
			t.Errorf("User-Agent = %q, want %q", r.Header.Get("User-Agent"), testUserAgent)
		}
		if r.Header.Get("Accept") != "text/html" {
			t.Errorf("Accept = %q, want %q", r.Header.Get("Accept"), "text/html")
		}
		_, _ = fmt.Fprint(w, "<html><body>Hello</body></html>")
	}))
	defer ts.Close()

	c := NewHTTPClient(testClientOptions())
	body, status, err := c.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = body.Close() }()

	if status != http.StatusOK {
		t.Errorf("status = %d, want %d", status, http.StatusOK)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if string(data) != "<html><body>Hello</body></html>" {
		t.Errorf("body = %q", string(data))
	}
}

func TestHTTPClient_Fetch_BodyLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", maxResponseBody+100))
	}))
	defer ts.Close()

	body, _, err := NewHTTPClient(testClientOptions()).Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = body.Close() }()

	n, err := io.Copy(io.Discard, body)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != maxResponseBody {
		t.Errorf("read %d bytes, want %d", n, maxResponseBody)
	}
}

func TestHTTPClient_Probe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	tests := []struct {
		path   string
		status int
	}{
		{path: "/ok", status: http.StatusOK},
		{path: "/moved", status: http.StatusOK},
		{path: "/gone", status: http.StatusGone},
	}

	c := NewHTTPClient(testClientOptions())
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, err := c.Probe(context.Background(), ts.URL+tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
		})
	}
}

func TestHTTPClient_BlocksPrivateTargets(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	opts := testClientOptions()
	opts.AllowPrivate = false

	if _, err := NewHTTPClient(opts).Probe(context.Background(), ts.URL); err == nil {
		t.Fatal("expected loopback target to be refused")
	}
}

func TestHTTPClient_Fetch_InvalidURL(t *testing.T) {
	_, _, err := NewHTTPClient(testClientOptions()).Fetch(context.Background(), "://bad-url")
	if err == nil {
		t.Fatal("expected error for invalid URL, got nil")
	}
}

func TestHTTPClient_Fetch_CancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := NewHTTPClient(testClientOptions()).Fetch(ctx, ts.URL); err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

func TestSafeRedirectPolicy(t *testing.T) {
	tests := []struct {
		name    string
		scheme  string
		via     int
		wantErr bool
	}{
		{name: "https within limit", scheme: "https", via: 3, wantErr: false},
		{name: "too many redirects", scheme: "https", via: 5, wantErr: true},
		{name: "blocked ftp scheme", scheme: "ftp", via: 0, wantErr: true},
		{name: "blocked file scheme", scheme: "file", via: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{URL: &url.URL{Scheme: tt.scheme, Host: "example.com"}} //nolint:exhaustruct
			err := safeRedirectPolicy(req, make([]*http.Request, tt.via))
			if (err != nil) != tt.wantErr {
				t.Errorf("safeRedirectPolicy() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
