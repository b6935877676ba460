package feed

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/EgoistSY/game-news-bot/internal/logger"
	"github.com/EgoistSY/game-news-bot/internal/metrics"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Client fetches and parses RSS documents, both direct press feeds and
// Google News search feeds. Korean press feeds are often served as EUC-KR;
// those are decoded transparently before parsing.
type Client struct {
	http        *resty.Client
	parser      *gofeed.Parser
	throttleMin time.Duration
	throttleMax time.Duration
}

func NewClient(timeout, throttleMin, throttleMax time.Duration) *Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetHeader("User-Agent", userAgent)

	return &Client{
		http:        c,
		parser:      gofeed.NewParser(),
		throttleMin: throttleMin,
		throttleMax: throttleMax,
	}
}

// Fetch downloads one feed and returns its items. A failure is a query-level
// error: the caller logs it and treats the query as zero results.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	resp, err := c.http.R().SetContext(ctx).Get(feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode())
	}

	body := resp.Body()
	if isEUCKR(resp.Header().Get("Content-Type"), body) {
		decoded, err := decodeEUCKR(body)
		if err != nil {
			return nil, fmt.Errorf("decode euc-kr feed: %w", err)
		}
		body = decoded
	}

	parsed, err := c.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	metrics.Global.AddEntriesFetched(int64(len(parsed.Items)))
	logger.Debug("feed fetched", "url", feedURL, "items", len(parsed.Items))
	return parsed.Items, nil
}

// Throttle sleeps a randomized short interval between successive outbound
// queries. Politeness only; no effect on ordering or correctness.
func (c *Client) Throttle() {
	if c.throttleMax <= c.throttleMin {
		time.Sleep(c.throttleMin)
		return
	}
	span := c.throttleMax - c.throttleMin
	time.Sleep(c.throttleMin + time.Duration(rand.Int63n(int64(span))))
}

var xmlEncodingRe = regexp.MustCompile(`(?i)encoding="?euc-kr"?`)

func isEUCKR(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "euc-kr") {
		return true
	}
	head := body
	if len(head) > 200 {
		head = head[:200]
	}
	return xmlEncodingRe.Match(head)
}

func decodeEUCKR(body []byte) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(body), korean.EUCKR.NewDecoder())
	var out bytes.Buffer
	if _, err := out.ReadFrom(reader); err != nil {
		return nil, err
	}
	// The XML declaration still claims euc-kr; fix it so the parser does not
	// try to re-decode.
	fixed := xmlEncodingRe.ReplaceAll(out.Bytes(), []byte(`encoding="utf-8"`))
	return fixed, nil
}
