package jackett

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxRedirects bounds how many hops a result link may take before we
// give up. Jackett links usually redirect once, straight to the tracker.
const maxRedirects = 5

// Location is the resolved destination of a result link: either a
// magnet URI, or a base64-encoded .torrent file body.
type Location struct {
	Content string
	Magnet  bool
}

// ErrTooManyRedirects is returned when a result link keeps redirecting
// past maxRedirects without reaching a magnet or a torrent file.
var ErrTooManyRedirects = errors.New("torrent link redirected too many times")

// ResolveLocation follows a result's Link until it lands on either a
// magnet redirect or a .torrent download. Prefer the MagnetURI field
// when the result carries one; this is for results that only have Link.
func (c *Client) ResolveLocation(ctx context.Context, link string) (Location, error) {
	// Disable automatic redirect following: a redirect to a magnet:
	// URI is a terminal answer, not something http.Client can follow.
	client := &http.Client{
		Timeout: c.httpClient.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	current := link
	for hop := 0; hop <= maxRedirects; hop++ {
		req, err := http.NewRequestWithContext(ctx, "GET", current, nil)
		if err != nil {
			return Location{}, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return Location{}, fmt.Errorf("failed to fetch torrent link: %w", err)
		}

		switch {
		case resp.StatusCode >= 300 && resp.StatusCode < 400:
			next := resp.Header.Get("Location")
			resp.Body.Close()
			if next == "" {
				return Location{}, fmt.Errorf("redirect from %s had no location", current)
			}
			if strings.HasPrefix(next, "magnet:") {
				return Location{Content: next, Magnet: true}, nil
			}
			// Location may be relative to the redirecting URL.
			nextURL, err := req.URL.Parse(next)
			if err != nil {
				return Location{}, fmt.Errorf("bad redirect from %s: %w", current, err)
			}
			current = nextURL.String()

		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return Location{}, fmt.Errorf("failed to read torrent file: %w", err)
			}
			return Location{Content: base64.StdEncoding.EncodeToString(body)}, nil

		default:
			resp.Body.Close()
			return Location{}, fmt.Errorf("torrent link returned HTTP %d", resp.StatusCode)
		}
	}
	return Location{}, ErrTooManyRedirects
}
