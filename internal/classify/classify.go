package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/EgoistSY/game-news-bot/internal/config"
)

// Reason identifies the specific rule that rejected a candidate, so
// rejection statistics and tests can target a rule instead of an opaque
// boolean.
type Reason string

const (
	ReasonOK             Reason = "ok"
	ReasonBadURL         Reason = "bad_url"
	ReasonEmptyPath      Reason = "empty_path"
	ReasonAggregatorHost Reason = "aggregator_host"
	ReasonBoardPath      Reason = "board_path"
	ReasonBadPathToken   Reason = "bad_path_token"
	ReasonWrongPath      Reason = "wrong_article_path"
	ReasonMissingParam   Reason = "missing_id_param"
	ReasonBadParam       Reason = "non_numeric_id_param"
	ReasonNoiseTitle     Reason = "noise_title"
	ReasonOffTopic       Reason = "off_topic_for_site"
)

// Path tokens that mark list/community pages on any site.
var badPathTokens = []string{
	"search", "tag", "ranking", "gallery", "forum", "community", "board", "login", "member",
}

// Esports scoreline shorthand like "3:1" or "2대0" in a title.
var scorelineRe = regexp.MustCompile(`\d+\s*[:대]\s*\d+`)

var numericRe = regexp.MustCompile(`^[0-9]+$`)

// Classifier decides whether a candidate is a genuine news article. All
// checks are monotonic: any single positive signal rejects, and nothing
// overrides a rejection.
type Classifier struct {
	rules       []config.SiteRule
	aggregators []string
	noiseTitles []string
	strictHosts []string
	domainTerms []string
}

func New(src *config.Sources) *Classifier {
	return &Classifier{
		rules:       src.SiteRules,
		aggregators: src.Aggregators,
		noiseTitles: src.NoiseTitles,
		strictHosts: src.StrictHosts,
		domainTerms: src.DomainTerms,
	}
}

// CheckURL applies the per-site URL convention for rawURL and returns the
// first failing rule, or ReasonOK.
func (c *Classifier) CheckURL(rawURL string) Reason {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ReasonBadURL
	}

	host := normalizeHost(u.Hostname())
	path := u.Path

	if hostIn(host, c.aggregators) {
		return ReasonAggregatorHost
	}

	if path == "" || path == "/" {
		return ReasonEmptyPath
	}

	lower := strings.ToLower(path)
	for _, tok := range badPathTokens {
		if strings.Contains(lower, "/"+tok) {
			if tok == "board" {
				return ReasonBoardPath
			}
			return ReasonBadPathToken
		}
	}

	rule, ok := c.ruleFor(host)
	if !ok {
		return ReasonOK
	}

	for _, reject := range rule.RejectPaths {
		if strings.Contains(lower, strings.ToLower(reject)) {
			return ReasonBoardPath
		}
	}

	if rule.ArticlePath != "" && !strings.HasPrefix(lower, strings.ToLower(rule.ArticlePath)) {
		return ReasonWrongPath
	}

	if rule.RequireParam != "" {
		val := u.Query().Get(rule.RequireParam)
		if val == "" {
			return ReasonMissingParam
		}
		if rule.NumericParam && !numericRe.MatchString(val) {
			return ReasonBadParam
		}
	}

	return ReasonOK
}

// ValidArticleURL is the boolean form of CheckURL, used by the link resolver
// to gate scraped candidates.
func (c *Classifier) ValidArticleURL(rawURL string) bool {
	return c.CheckURL(rawURL) == ReasonOK
}

// NoiseTitle reports whether the title matches a known non-article pattern:
// recruitment posts, spoiler tags, guides, esports scorelines, placeholder
// webzine titles.
func (c *Classifier) NoiseTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, pat := range c.noiseTitles {
		if strings.Contains(lower, strings.ToLower(pat)) {
			return true
		}
	}
	return scorelineRe.MatchString(title)
}

// PassesStrictFilter enforces the content filter for general-interest press
// whose coverage extends beyond the game industry: at least one domain term
// must appear in title+snippet. Domain-exclusive sites always pass.
func (c *Classifier) PassesStrictFilter(title, snippet, host string) bool {
	if !hostIn(normalizeHost(host), c.strictHosts) {
		return true
	}
	text := strings.ToLower(title + " " + snippet)
	for _, term := range c.domainTerms {
		if strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Evaluate runs the full ordered chain against a resolved candidate.
func (c *Classifier) Evaluate(title, snippet, resolvedURL string) Reason {
	if r := c.CheckURL(resolvedURL); r != ReasonOK {
		return r
	}
	if c.NoiseTitle(title) {
		return ReasonNoiseTitle
	}
	host := ""
	if u, err := url.Parse(resolvedURL); err == nil {
		host = u.Hostname()
	}
	if !c.PassesStrictFilter(title, snippet, host) {
		return ReasonOffTopic
	}
	return ReasonOK
}

func (c *Classifier) ruleFor(host string) (config.SiteRule, bool) {
	for _, r := range c.rules {
		if hostMatches(host, r.Host) {
			return r, true
		}
	}
	return config.SiteRule{}, false
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	return host
}

func hostMatches(host, want string) bool {
	want = normalizeHost(want)
	return host == want || strings.HasSuffix(host, "."+want)
}

func hostIn(host string, hosts []string) bool {
	for _, h := range hosts {
		if hostMatches(host, h) {
			return true
		}
	}
	return false
}
