package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchTextExtractsReadableContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><style>.x{}</style></head><body>
			<nav>Home | About</nav>
			<h1>Photosynthesis</h1>
			<p>Plants convert light energy into chemical energy.</p>
			<script>alert("noise")</script>
			<footer>copyright</footer>
		</body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher()
	text, err := f.FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText: %v", err)
	}

	if !strings.Contains(text, "Photosynthesis") {
		t.Errorf("expected heading in extracted text, got %q", text)
	}
	if !strings.Contains(text, "light energy into chemical energy") {
		t.Errorf("expected paragraph in extracted text, got %q", text)
	}
	if strings.Contains(text, "alert") {
		t.Errorf("script content should be stripped, got %q", text)
	}
	if strings.Contains(text, "Home | About") {
		t.Errorf("nav content should be stripped, got %q", text)
	}
}

func TestFetchTextNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher()
	if _, err := f.FetchText(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestExtractTextFallsBackToBody(t *testing.T) {
	text, err := ExtractText(strings.NewReader("<html><body><span>inline only</span></body></html>"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "inline only") {
		t.Errorf("expected body fallback, got %q", text)
	}
}
