package resolve

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/EgoistSY/game-news-bot/internal/article"
	"github.com/EgoistSY/game-news-bot/internal/logger"
	"github.com/EgoistSY/game-news-bot/internal/metrics"
)

// Bounded read for the HTML-scrape fallback.
const maxHTMLBytes = 512 << 10

// URLGate lets the classifier veto scraped candidate URLs without this
// package depending on classification internals.
type URLGate func(rawURL string) bool

// Resolver turns aggregator/redirect links into publisher URLs. Resolutions
// are memoized for the run; the pipeline is single-threaded so a plain map
// suffices.
type Resolver struct {
	http        *resty.Client
	sites       []string
	aggregators []string
	gate        URLGate

	cache map[string]string // raw link -> canonical, "" means resolution failed
}

func New(http *resty.Client, sites, aggregators []string, gate URLGate) *Resolver {
	return &Resolver{
		http:        http,
		sites:       sites,
		aggregators: aggregators,
		gate:        gate,
		cache:       make(map[string]string),
	}
}

// Resolve returns the canonical publisher URL for a candidate, or ok=false
// when every strategy fails. A candidate that cannot be resolved must be
// dropped by the caller; an aggregator URL is never acceptable output.
//
// Strategy order: publisher-host short circuit, embedded feed candidates
// (no network round trip), redirect following, HTML scrape of the redirect
// page as last resort.
func (r *Resolver) Resolve(c *article.Candidate) (string, bool) {
	if cached, seen := r.cache[c.RawLink]; seen {
		return cached, cached != ""
	}

	resolved := r.resolve(c)
	r.cache[c.RawLink] = resolved
	if resolved == "" {
		metrics.Global.IncrementResolveFailed()
		return "", false
	}
	return resolved, true
}

func (r *Resolver) resolve(c *article.Candidate) string {
	if r.isPublisher(c.RawLink) {
		return c.RawLink
	}

	for _, embedded := range c.Embedded {
		if r.isPublisher(embedded) {
			return embedded
		}
	}

	final, body := r.follow(c.RawLink)
	if final != "" && r.isPublisher(final) {
		return final
	}

	if candidate := r.scrape(body); candidate != "" {
		return candidate
	}

	return ""
}

// follow chases HTTP redirects and returns the final URL plus a bounded
// prefix of the final body for the scrape fallback. Network errors are
// local to this step.
func (r *Resolver) follow(rawURL string) (finalURL string, body []byte) {
	resp, err := r.http.R().SetDoNotParseResponse(true).Get(rawURL)
	if err != nil {
		logger.Debug("redirect follow failed", "url", rawURL, "error", err)
		return "", nil
	}
	raw := resp.RawBody()
	defer raw.Close()

	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	body, err = io.ReadAll(io.LimitReader(raw, maxHTMLBytes))
	if err != nil {
		logger.Debug("redirect body read failed", "url", rawURL, "error", err)
		body = nil
	}
	return finalURL, body
}

var hrefRe = regexp.MustCompile(`https?://[^\s"'<>\\]+`)

// scrape extracts publisher URLs from the aggregator redirect page. The page
// structure is unstable, so this stays isolated behind the Resolver
// interface; nothing else may depend on it.
func (r *Resolver) scrape(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	seen := map[string]bool{}
	var candidates []string
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] || !r.isPublisher(u) {
			return
		}
		seen[u] = true
		candidates = append(candidates, u)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body))); err == nil {
		if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
			add(href)
		}
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			if href, ok := sel.Attr("href"); ok {
				add(href)
			}
		})
	}
	for _, m := range hrefRe.FindAllString(string(body), -1) {
		add(m)
	}

	best := ""
	bestScore := -1
	for _, u := range candidates {
		if r.gate != nil && !r.gate(u) {
			continue
		}
		s := scoreCandidate(u)
		if s > bestScore {
			best, bestScore = u, s
		}
	}
	return best
}

// scoreCandidate ranks scraped URLs by structural plausibility: article-ID
// query params first, then path depth.
func scoreCandidate(u string) int {
	score := 0
	parsed, err := url.Parse(u)
	if err != nil {
		return score
	}
	if len(parsed.RawQuery) > 0 {
		score += 10
	}
	score += strings.Count(strings.Trim(parsed.Path, "/"), "/")
	return score
}

// isPublisher reports whether the URL's host is a target site and not the
// aggregator.
func (r *Resolver) isPublisher(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := normalizeHost(u.Hostname())
	for _, agg := range r.aggregators {
		if hostMatches(host, agg) {
			return false
		}
	}
	for _, site := range r.sites {
		if hostMatches(host, site) {
			return true
		}
	}
	return false
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	return host
}

func hostMatches(host, want string) bool {
	want = strings.TrimPrefix(strings.ToLower(want), "www.")
	return host == want || strings.HasSuffix(host, "."+want)
}
