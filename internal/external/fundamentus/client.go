package fundamentus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/pkg/config"
	"github.com/wonny/valuescreen/pkg/httputil"
	"github.com/wonny/valuescreen/pkg/logger"
	"github.com/wonny/valuescreen/pkg/redis"
)

// Client acquires the Fundamentus result page
// ⭐ SSOT: Fundamentus 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	url        string
	cacheTTL   time.Duration
	noCache    bool
}

// snapshot is the cached form of one page
type snapshot struct {
	FetchedAt time.Time `json:"fetched_at"`
	HTML      string    `json:"html"`
}

// NewClient creates a new Fundamentus client; cache may be nil
func NewClient(httpClient *httputil.Client, cache *redis.Cache, cfg config.FundamentusConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     log,
		url:        cfg.URL,
		cacheTTL:   cfg.CacheTTL,
	}
}

// WithoutCache bypasses the snapshot cache for reads; fresh pages are still stored
func (c *Client) WithoutCache() *Client {
	c.noCache = true
	return c
}

// Fetch implements contracts.Source
func (c *Client) Fetch(ctx context.Context) (*contracts.RawTable, error) {
	snap, cached, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	table, err := ParseTable(bytes.NewReader([]byte(snap.HTML)))
	if err != nil {
		return nil, fmt.Errorf("fundamentus: %w", err)
	}
	table.Source = c.url
	table.FetchedAt = snap.FetchedAt

	c.logger.WithFields(map[string]interface{}{
		"url":     c.url,
		"rows":    table.Len(),
		"columns": len(table.Columns),
		"cached":  cached,
	}).Info("Fundamentus snapshot acquired")

	return table, nil
}

func (c *Client) snapshot(ctx context.Context) (*snapshot, bool, error) {
	key := redis.SnapshotKey(c.url)

	if c.cache != nil && !c.noCache {
		var snap snapshot
		found, err := c.cache.Get(ctx, key, &snap)
		if err != nil {
			c.logger.WithError(err).Warn("Snapshot cache read failed")
		}
		if found {
			return &snap, true, nil
		}
	}

	html, err := c.fetchHTML(ctx)
	if err != nil {
		return nil, false, err
	}

	snap := &snapshot{FetchedAt: time.Now(), HTML: html}

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, snap, c.cacheTTL); err != nil {
			c.logger.WithError(err).Warn("Snapshot cache write failed")
		}
	}

	return snap, false, nil
}

// fetchHTML fetches the page and decodes it to UTF-8
func (c *Client) fetchHTML(ctx context.Context) (string, error) {
	resp, err := c.httpClient.Get(ctx, c.url)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := decode(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// decode converts the page to UTF-8 using the declared or sniffed charset
func decode(r io.Reader, contentType string) ([]byte, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// FileSource parses a saved result page, for offline runs
type FileSource struct {
	Path string
}

// NewFileSource creates a source over a saved HTML file
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Fetch implements contracts.Source
func (s *FileSource) Fetch(ctx context.Context) (*contracts.RawTable, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", s.Path, err)
	}

	body, err := decode(f, "")
	if err != nil {
		return nil, err
	}

	table, err := ParseTable(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	table.Source = s.Path
	table.FetchedAt = info.ModTime()

	return table, nil
}
