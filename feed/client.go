package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"curse-catalog/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/dsnet/compress/bzip2"
	"go.uber.org/zap"
)

const defaultRetryWait = 500 * time.Millisecond

// Client downloads snapshots and project files from the feed.
type Client struct {
	Endpoint   Endpoint
	FileHost   string
	UserAgent  string
	HTTPClient *http.Client
	Retries    int
	RetryWait  time.Duration

	log *zap.SugaredLogger
}

// NewClient creates a feed client using the provided configuration.
func NewClient(cfg config.Config, log *zap.SugaredLogger) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("USERAGENT is not configured")
	}
	if cfg.CurseHost == "" {
		return nil, fmt.Errorf("CURSE_HOST is not configured")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Client{
		Endpoint: Endpoint{
			Host:     cfg.CurseHost,
			GameID:   cfg.GameID,
			Revision: cfg.FeedRevision,
		},
		FileHost:  strings.TrimRight(cfg.FileHost, "/"),
		UserAgent: cfg.UserAgent,
		HTTPClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		Retries:   cfg.HTTPRetries,
		RetryWait: defaultRetryWait,
		log:       log,
	}, nil
}

// get performs a GET request, retrying transport failures and temporary
// statuses with exponential backoff. The caller owns the response body.
func (c *Client) get(ctx context.Context, url, accept string) (*http.Response, error) {
	var resp *http.Response

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", c.UserAgent)
		req.Header.Set("Accept", accept)

		r, err := c.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("failed to execute request: %w", err)
		}

		if r.StatusCode < 200 || r.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(r.Body, 512))
			r.Body.Close()
			statusErr := &StatusError{URL: url, StatusCode: r.StatusCode, Body: string(body)}
			if statusErr.Temporary() {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		resp = r
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.RetryWait
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(c.Retries, 0))), ctx)

	notify := func(err error, wait time.Duration) {
		c.log.Warnw("Request failed, retrying", zap.String("url", url), zap.Duration("wait", wait), zap.Error(err))
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, url, accept string) ([]byte, error) {
	resp, err := c.get(ctx, url, accept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return data, nil
}

// LatestVersion asks the feed for the newest version of tier.
func (c *Client) LatestVersion(ctx context.Context, tier Tier) (int64, error) {
	body, err := c.fetch(ctx, c.Endpoint.QueryURL(tier), "text/plain")
	if err != nil {
		return 0, fmt.Errorf("failed to query %s version: %w", tier, err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil || version <= 0 {
		return 0, fmt.Errorf("%w: %s answered %q", ErrNoVersion, tier, strings.TrimSpace(string(body)))
	}
	return version, nil
}

// DownloadSnapshot downloads tier at version and returns the decompressed
// JSON document.
func (c *Client) DownloadSnapshot(ctx context.Context, tier Tier, version int64) ([]byte, error) {
	if version <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVersion, tier)
	}

	compressed, err := c.fetch(ctx, c.Endpoint.DownloadURL(tier, version), "application/octet-stream")
	if err != nil {
		return nil, fmt.Errorf("failed to download %s snapshot %d: %w", tier, version, err)
	}

	data, err := Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%s snapshot %d: %w", tier, version, err)
	}

	c.log.Infow("Downloaded snapshot",
		zap.String("tier", tier.String()),
		zap.Int64("version", version),
		zap.Int("compressed", len(compressed)),
		zap.Int("size", len(data)),
	)
	return data, nil
}

// Decompress decodes a bzip2 stream.
func Decompress(compressed []byte) ([]byte, error) {
	zr, err := bzip2.NewReader(bytes.NewReader(compressed), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	return data, nil
}

// FileURL returns the download URL of a project file.
func (c *Client) FileURL(slug string, fileID int) string {
	return fmt.Sprintf("%s/projects/%s/files/%d/download", c.FileHost, slug, fileID)
}

// DownloadFile downloads url into dir. The file name is taken from the last
// path segment of the final URL after redirects. It returns the written path.
func (c *Client) DownloadFile(ctx context.Context, url, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create target directory '%s': %w", dir, err)
	}

	resp, err := c.get(ctx, url, "application/octet-stream")
	if err != nil {
		return "", fmt.Errorf("failed to start download from %s: %w", url, err)
	}
	defer resp.Body.Close()

	name := path.Base(resp.Request.URL.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("cannot determine file name from %s", resp.Request.URL)
	}
	destinationPath := filepath.Join(dir, name)

	outFile, err := os.Create(destinationPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file '%s': %w", destinationPath, err)
	}

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		outFile.Close()
		os.Remove(destinationPath)
		return "", fmt.Errorf("failed to write downloaded content to '%s': %w", destinationPath, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(destinationPath)
		return "", fmt.Errorf("failed to close '%s': %w", destinationPath, err)
	}

	c.log.Infow("Downloaded file", zap.String("url", url), zap.String("path", destinationPath))
	return destinationPath, nil
}

// IsNotFound reports whether err is a 404 from the feed or file host.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
