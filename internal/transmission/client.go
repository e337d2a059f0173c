// Package transmission provides a client for the Transmission RPC API.
// It handles the session-token handshake, torrent management (add,
// remove, stop seeding), and status queries for active downloads.
package transmission

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const sessionHeader = "X-Transmission-Session-Id"

// Client interfaces with the Transmission RPC endpoint
type Client struct {
	rpcURL      string
	credentials string
	httpClient  *http.Client

	mu        sync.Mutex
	sessionID string
}

// Torrent represents a torrent known to Transmission
type Torrent struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Status         int64   `json:"status"`
	PercentDone    float64 `json:"percentDone"`
	DownloadDir    string  `json:"downloadDir"`
	TotalSize      int64   `json:"totalSize"`
	DownloadedEver int64   `json:"downloadedEver"`
	UploadedEver   int64   `json:"uploadedEver"`
}

// Transmission status codes, see the RPC spec.
const (
	StatusStopped     = 0
	StatusCheckWait   = 1
	StatusChecking    = 2
	StatusDownloadQ   = 3
	StatusDownloading = 4
	StatusSeedQ       = 5
	StatusSeeding     = 6
)

// NewClient creates a Transmission RPC client. credentials is
// "user:password" for basic auth, empty to disable.
func NewClient(baseURL, credentials string) *Client {
	return &Client{
		rpcURL:      baseURL + "/transmission/rpc",
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rpcRequest struct {
	Method    string `json:"method"`
	Arguments any    `json:"arguments"`
}

type rpcResponse struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments"`
}

// call performs one RPC method invocation. Transmission rejects the
// first request of a session with 409 plus a token header; the call is
// retried once with that token, which is then cached for future calls.
func (c *Client) call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	c.mu.Lock()
	token := c.sessionID
	c.mu.Unlock()

	resp, err := c.post(ctx, method, args, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusConflict {
		token = resp.Header.Get(sessionHeader)
		resp.Body.Close()
		if token == "" {
			return nil, fmt.Errorf("transmission returned 409 without a %s header", sessionHeader)
		}
		c.mu.Lock()
		c.sessionID = token
		c.mu.Unlock()

		resp, err = c.post(ctx, method, args, token)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transmission returned HTTP %d", resp.StatusCode)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to parse transmission response: %w", err)
	}
	if decoded.Result != "success" {
		return nil, fmt.Errorf("transmission error: %s", decoded.Result)
	}
	return decoded.Arguments, nil
}

func (c *Client) post(ctx context.Context, method string, args any, token string) (*http.Response, error) {
	payload, err := json.Marshal(rpcRequest{Method: method, Arguments: args})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.credentials != "" {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.credentials)))
	}
	if token != "" {
		req.Header.Set(sessionHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to transmission: %w", err)
	}
	return resp, nil
}

// AddMagnet adds a torrent via magnet link, downloading into dir
func (c *Client) AddMagnet(ctx context.Context, magnet, dir string) error {
	_, err := c.call(ctx, "torrent-add", map[string]any{
		"download-dir": dir,
		"filename":     magnet,
	})
	return err
}

// AddMetainfo adds a torrent from a base64-encoded .torrent file,
// downloading into dir
func (c *Client) AddMetainfo(ctx context.Context, metainfo, dir string) error {
	_, err := c.call(ctx, "torrent-add", map[string]any{
		"download-dir": dir,
		"metainfo":     metainfo,
	})
	return err
}

// Torrents returns the list of torrents with status fields
func (c *Client) Torrents(ctx context.Context) ([]Torrent, error) {
	args, err := c.call(ctx, "torrent-get", map[string]any{
		"fields": []string{
			"id", "name", "status", "percentDone", "downloadDir",
			"totalSize", "downloadedEver", "uploadedEver",
		},
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Torrents []Torrent `json:"torrents"`
	}
	if err := json.Unmarshal(args, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse torrents: %w", err)
	}
	return decoded.Torrents, nil
}

// Remove removes torrents by ID, optionally deleting local data
func (c *Client) Remove(ctx context.Context, ids []int64, deleteData bool) error {
	_, err := c.call(ctx, "torrent-remove", map[string]any{
		"ids":               ids,
		"delete-local-data": deleteData,
	})
	return err
}

// StopAll stops every torrent, ending seeding across the board
func (c *Client) StopAll(ctx context.Context) error {
	torrents, err := c.Torrents(ctx)
	if err != nil {
		return err
	}
	if len(torrents) == 0 {
		return nil
	}

	ids := make([]int64, len(torrents))
	for i, t := range torrents {
		ids[i] = t.ID
	}

	_, err = c.call(ctx, "torrent-stop", map[string]any{"ids": ids})
	return err
}
