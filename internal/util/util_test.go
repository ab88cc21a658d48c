package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewProxyFunc_EnvironmentFallback(t *testing.T) {
	fn := NewProxyFunc("", "", "")
	if fn == nil {
		t.Fatal("Expected proxy function")
	}
}

func TestNewProxyFunc_Configured(t *testing.T) {
	fn := NewProxyFunc("http://proxy.internal:3128", "", "static.example.com")

	req, _ := http.NewRequest(http.MethodGet, "https://cdn.example.org/2025-01-15_en.txt", nil)
	got, err := fn(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got == nil || got.Host != "proxy.internal:3128" {
		t.Errorf("Expected https to fall back to the http proxy, got %v", got)
	}

	req, _ = http.NewRequest(http.MethodGet, "https://static.example.com/x.txt", nil)
	got, err = fn(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected NO_PROXY host to bypass the proxy, got %v", got)
	}
}

func TestRobotsChecker(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches.Add(1)
			_, _ = fmt.Fprint(w, "User-agent: Celestial\nDisallow: /private/\nCrawl-delay: 2\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "Celestial/0.1 (+https://github.com/ppiankov/celestial)")
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/horoscopes/2025-01-15_en.txt")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !allowed {
		t.Error("Expected public path to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("Expected crawl delay 2s, got %v", delay)
	}

	allowed, _, _ = checker.CanFetch(ctx, server.URL+"/private/2025-01-15_en.txt")
	if allowed {
		t.Error("Expected disallowed path to be blocked")
	}

	if fetches.Load() != 1 {
		t.Errorf("Expected robots.txt to be fetched once, got %d", fetches.Load())
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "Celestial/0.1")
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("Expected allow on missing robots.txt, got allowed=%v err=%v", allowed, err)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"Celestial/0.1 (+https://github.com/ppiankov/celestial)": "Celestial",
		"curl/8.0": "curl",
		"":         "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}
