package validation

import "testing"

func TestFeedURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "https://example.com/feed.xml", want: "https://example.com/feed.xml"},
		{raw: "  http://example.com/rss#top ", want: "http://example.com/rss"},
		{raw: "", wantErr: true},
		{raw: "ftp://example.com/feed", wantErr: true},
		{raw: "https:///nohost", wantErr: true},
		{raw: "https://user:pw@example.com/feed", wantErr: true},
		{raw: "://broken", wantErr: true},
	}

	for _, tt := range tests {
		got, err := FeedURL(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FeedURL(%q) expected error, got %q", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("FeedURL(%q) unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FeedURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIsFeedURL(t *testing.T) {
	if !IsFeedURL("HTTPS://example.com") {
		t.Error("expected https URL to be recognised")
	}
	if IsFeedURL("/tmp/feed.xml") {
		t.Error("file path recognised as URL")
	}
}
