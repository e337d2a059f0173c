// Package jackett provides a client for the Jackett aggregate search
// API. It queries every configured indexer at once, ranks results by
// seeder count, and resolves a picked result into something the
// download client can ingest (a magnet URI or a .torrent payload).
package jackett

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchpilot/couchpilot/internal/restructure"
)

// maxResults caps how many ranked results a search returns.
const maxResults = 20

// Search failures the user can act on.
var (
	ErrNoIndexers = errors.New("no indexers configured in jackett")
	ErrNoResults  = errors.New("no results were returned for your search")
)

// Result is a single torrent returned by an indexer
type Result struct {
	Title      string  `json:"Title"`
	Seeders    int64   `json:"Seeders"`
	Size       uint64  `json:"Size"`
	Categories []int64 `json:"Category"`
	MagnetURI  string  `json:"MagnetUri"`
	Link       string  `json:"Link"`
}

// Kind maps Torznab category ranges onto a media kind: 2000-2999 is
// movies, 3000-3999 is TV. Results outside both ranges report ok=false
// and the user must force a kind in their reply.
func (r Result) Kind() (kind restructure.MediaKind, ok bool) {
	for _, c := range r.Categories {
		switch {
		case c >= 2000 && c < 3000:
			return restructure.KindMovie, true
		case c >= 3000 && c < 4000:
			return restructure.KindTV, true
		}
	}
	return 0, false
}

// Client interfaces with the Jackett aggregate search API
type Client struct {
	baseURL    string
	apiKey     string
	dataDir    string
	httpClient *http.Client
}

// NewClient creates a Jackett API client. When apiKey is empty the key
// is read lazily from ServerConfig.json under dataDir.
func NewClient(baseURL, apiKey, dataDir string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		dataDir: dataDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type searchResponse struct {
	Indexers []struct {
		Name string `json:"Name"`
	} `json:"Indexers"`
	Results []Result `json:"Results"`
}

// Search queries all indexers for torrents matching query, returning at
// most maxResults results ordered by seeder count descending.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	key, err := c.key()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("apikey", key)
	params.Set("Query", query)
	searchURL := c.baseURL + "/api/v2.0/indexers/all/results?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to jackett: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jackett returned HTTP %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to parse jackett response: %w", err)
	}

	if len(decoded.Indexers) == 0 && len(decoded.Results) == 0 {
		return nil, ErrNoIndexers
	}

	results := decoded.Results
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Seeders > results[j].Seeders
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// key returns the configured API key, falling back to the one Jackett
// writes into its own data directory when both run on the same host.
func (c *Client) key() (string, error) {
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	if c.dataDir == "" {
		return "", errors.New("set the jackett api_key, or data_dir when jackett runs on this host")
	}

	data, err := os.ReadFile(filepath.Join(c.dataDir, "ServerConfig.json"))
	if err != nil {
		return "", fmt.Errorf("failed to read jackett server config: %w", err)
	}
	var serverConfig struct {
		APIKey string `json:"APIKey"`
	}
	if err := json.Unmarshal(data, &serverConfig); err != nil {
		return "", fmt.Errorf("failed to parse jackett server config: %w", err)
	}
	if serverConfig.APIKey == "" {
		return "", errors.New("jackett server config has no APIKey")
	}
	return serverConfig.APIKey, nil
}
