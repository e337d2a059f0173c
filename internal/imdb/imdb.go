// Package imdb scrapes a title name out of an IMDb page, so a link
// pasted into chat can be turned directly into a search query.
package imdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoTitle is returned when the page has neither an og:title meta tag
// nor a top-level heading to scrape.
var ErrNoTitle = errors.New("could not find a title on the page")

// Client fetches IMDb pages.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Title scrapes the title of the movie or show at pageURL. og:title is
// preferred since it is stable across IMDb redesigns; the h1 heading is
// the fallback. The "- IMDb" suffix og:title carries is stripped.
func (c *Client) Title(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	// IMDb serves a bot-check page to unknown clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch imdb page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imdb returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse imdb page: %w", err)
	}

	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := cleanTitle(content); title != "" {
			return title, nil
		}
	}
	if title := cleanTitle(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}
	return "", ErrNoTitle
}

func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.LastIndex(title, " - IMDb"); i > 0 {
		title = strings.TrimSpace(title[:i])
	}
	return title
}
