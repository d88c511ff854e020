package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxBodyBytes = 4 << 20 // 4MB cap on fetched pages

// Fetcher pulls a web page and extracts readable study text from it.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchText downloads url and returns its readable text content.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "studypal-content-fetcher/1.0")

	res, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, res.StatusCode)
	}

	body := io.LimitReader(res.Body, maxBodyBytes)
	return ExtractText(body)
}

// ExtractText strips markup and boilerplate, keeping paragraph-level text.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, nav, header, footer, aside, noscript").Remove()

	var parts []string
	doc.Find("h1, h2, h3, h4, p, li, td, pre").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})

	// Pages without semantic blocks fall back to the whole body text.
	if len(parts) == 0 {
		return strings.TrimSpace(doc.Find("body").Text()), nil
	}

	return strings.Join(parts, "\n"), nil
}
