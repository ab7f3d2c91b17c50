package feed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse func(w http.ResponseWriter, r *http.Request)
		expectBody     string
		expectError    bool
	}{
		{
			name: "successful fetch",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != "forumsearch-test/1.0" {
					t.Errorf("expected User-Agent forumsearch-test/1.0, got %s", r.Header.Get("User-Agent"))
				}
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("<rss></rss>"))
			},
			expectBody: "<rss></rss>",
		},
		{
			name: "server error",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectError: true,
		},
		{
			name: "not found",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResponse))
			defer server.Close()

			fetcher := NewFetcher(5*time.Second, "forumsearch-test/1.0")
			body, err := fetcher.Fetch(context.Background(), server.URL)

			if tt.expectError {
				if err == nil {
					body.Close()
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer body.Close()

			data, err := io.ReadAll(body)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.expectBody {
				t.Errorf("expected body %q, got %q", tt.expectBody, data)
			}
		})
	}
}

func TestFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	fetcher := NewFetcher(20*time.Millisecond, "")
	if _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected timeout error")
	}
}

func TestFetcher_CancelledContext(t *testing.T) {
	fetcher := NewFetcher(time.Second, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fetcher.Fetch(ctx, "http://127.0.0.1:1/feed"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
