package scrape

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/avetrov/reviewscope/internal/cache"
	"github.com/avetrov/reviewscope/internal/model"
	"github.com/avetrov/reviewscope/internal/util"
	"github.com/avetrov/reviewscope/internal/worker"
)

// Client is the shared HTTP session for all platform scrapers: browser-like
// headers, retry with backoff on throttling and server errors, a robots.txt
// gate, per-domain rate limiting with a politeness delay, and a layered page
// cache.
type Client struct {
	http     *resty.Client
	robots   *util.RobotsChecker
	limiter  *worker.Limiter
	cache    cache.Cache
	delay    time.Duration
	maxBytes int64
	log      zerolog.Logger

	// hosts whose robots.txt crawl delay has been applied to the limiter
	tuned   map[string]bool
	tunedMu sync.Mutex
}

// NewClient builds the scrape client from configuration.
func NewClient(cfg *model.Config, log zerolog.Logger) *Client {
	rc := resty.New().
		SetTimeout(cfg.HTTP.Timeout).
		SetRetryCount(cfg.Scrape.MaxRetries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(16 * time.Second).
		SetHeaders(map[string]string{
			"User-Agent":      cfg.HTTP.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.5",
		}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	rc.SetTransport(&http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
	})
	if cfg.HTTP.InsecureTLS {
		rc.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	var pageCache cache.Cache = cache.Disabled{}
	if cfg.Cache.Enabled {
		pageCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	return &Client{
		http:     rc,
		robots:   util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		limiter:  worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
		cache:    pageCache,
		delay:    cfg.Scrape.Delay,
		maxBytes: cfg.HTTP.MaxBodyBytes,
		log:      log.With().Str("component", "scrape-client").Logger(),
	}
}

// Get fetches a page body, serving from cache when possible.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	key := cache.Key(url)
	if body, found := c.cache.Get(key); found {
		c.log.Debug().Str("url", url).Msg("cache hit")
		return body, nil
	}

	allowed, crawlDelay, err := c.robots.CanFetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("blocked by robots.txt: %s", url)
	}
	c.applyCrawlDelay(url, crawlDelay)

	if err := c.limiter.WaitWithDelay(ctx, url, c.delay); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode(), url)
	}

	body := resp.Body()
	if c.maxBytes > 0 && int64(len(body)) > c.maxBytes {
		body = body[:c.maxBytes]
	}

	if err := c.cache.Set(key, body, 0); err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("failed to cache page")
	}

	return body, nil
}

// GetDocument fetches a page and parses it into a goquery document.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", url, err)
	}

	return doc, nil
}

// applyCrawlDelay tightens the per-domain rate limit once per host when
// robots.txt requests a crawl delay slower than our default.
func (c *Client) applyCrawlDelay(url string, crawlDelay time.Duration) {
	if crawlDelay <= 0 {
		return
	}

	host := hostOf(url)
	if host == "" {
		return
	}

	c.tunedMu.Lock()
	defer c.tunedMu.Unlock()
	if c.tuned == nil {
		c.tuned = make(map[string]bool)
	}
	if c.tuned[host] {
		return
	}
	c.tuned[host] = true

	c.limiter.SetDomainRate(host, 1/crawlDelay.Seconds(), 1)
	c.log.Debug().Str("host", host).Dur("crawl_delay", crawlDelay).Msg("applied robots.txt crawl delay")
}
