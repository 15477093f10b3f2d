// Package protondb fetches games and user reports from a ProtonDB mirror
// API.
package protondb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cognicore/protonlens/internal/retry"
	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
)

// DefaultBaseURL is the public mirror the CLI uses by default.
const DefaultBaseURL = "https://protondb.max-p.me"

// RequestObserver receives one call per HTTP attempt.
type RequestObserver interface {
	ObserveRequest(endpoint, status string, elapsed time.Duration)
}

// StatusError is returned for a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Options configures a Client.
type Options struct {
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerSecond float64 // 0 disables rate limiting
	Burst             int
	Retry             retry.Config
	Logger            *zap.Logger
	Observer          RequestObserver
}

// Client is a rate-limited, retrying ProtonDB API client.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	retry   retry.Config
	log     *zap.Logger
	obs     RequestObserver
}

// New creates a client.
func New(opts Options) *Client {
	c := &Client{
		base:  strings.TrimRight(opts.BaseURL, "/"),
		http:  opts.HTTPClient,
		retry: opts.Retry,
		log:   opts.Logger,
		obs:   opts.Observer,
	}
	if c.base == "" {
		c.base = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.retry.Logger == nil {
		c.retry.Logger = c.log
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(limit, burst)
	return c
}

// Games lists the catalogue.
func (c *Client) Games(ctx context.Context) ([]ingest.Game, error) {
	var games []ingest.Game
	if err := c.get(ctx, "games", c.base+"/games/", &games); err != nil {
		return nil, fmt.Errorf("fetch games: %w", err)
	}
	return games, nil
}

// Reports lists the reports of one game with HTML stripped from notes. A
// non-200 answer is logged and yields no reports.
func (c *Client) Reports(ctx context.Context, appID ingest.AppID) ([]*ingest.Report, error) {
	endpoint := c.base + "/games/" + url.PathEscape(string(appID)) + "/reports/"

	var reports []*ingest.Report
	err := c.get(ctx, "reports", endpoint, &reports)
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		c.log.Warn("failed to fetch reports",
			zap.String("app_id", string(appID)),
			zap.Int("status", statusErr.Code))
		return []*ingest.Report{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch reports for %s: %w", appID, err)
	}

	malformed := 0
	for _, r := range reports {
		if r.Malformed() {
			malformed++
			continue
		}
		if r != nil && r.Notes != nil {
			clean := StripHTML(*r.Notes)
			r.Notes = &clean
		}
	}
	if malformed > 0 {
		c.log.Warn("malformed reports will be skipped",
			zap.String("app_id", string(appID)),
			zap.Int("count", malformed))
	}
	return reports, nil
}

// Extract fetches the catalogue, keeps the first limit games when limit is
// positive, and fetches their reports.
func (c *Client) Extract(ctx context.Context, limit int) (*Snapshot, error) {
	games, err := c.Games(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(games) {
		games = games[:limit]
		c.log.Info("limiting games", zap.Int("limit", limit))
	} else {
		c.log.Info("processing all games", zap.Int("games", len(games)))
	}

	snap := &Snapshot{
		Games:   games,
		Reports: make(map[ingest.AppID][]*ingest.Report, len(games)),
	}
	for _, g := range games {
		c.log.Debug("extracting reports", zap.String("title", g.Title), zap.String("app_id", string(g.AppID)))
		reports, err := c.Reports(ctx, g.AppID)
		if err != nil {
			return nil, err
		}
		snap.Reports[g.AppID] = reports
	}

	c.log.Info("extraction completed", zap.Int("games", len(snap.Games)), zap.Int("reports", snap.ReportCount()))
	return snap, nil
}

// get fetches target into out. Transport errors, 429 and 5xx are retried;
// other statuses and decode failures are not.
func (c *Client) get(ctx context.Context, endpoint, target string, out any) error {
	return retry.Do(ctx, c.retry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			c.observe(endpoint, "error", start)
			if ctx.Err() != nil {
				return retry.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()
		c.observe(endpoint, strconv.Itoa(resp.StatusCode), start)

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return &StatusError{URL: target, Code: resp.StatusCode}
		default:
			return retry.Permanent(&StatusError{URL: target, Code: resp.StatusCode})
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Permanent(fmt.Errorf("decode %s: %w", target, err))
		}
		return nil
	})
}

func (c *Client) observe(endpoint, status string, start time.Time) {
	if c.obs != nil {
		c.obs.ObserveRequest(endpoint, status, time.Since(start))
	}
}
