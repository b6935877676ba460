package query

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/EgoistSY/game-news-bot/internal/article"
	"github.com/EgoistSY/game-news-bot/internal/schedule"
)

const googleNewsRSS = "https://news.google.com/rss/search"

// Builder composes Google News search expressions from the configured
// keyword, site, and entity lists.
type Builder struct {
	ContextTerms   []string
	EntityVariants []string
	Sites          []string
}

// Params selects one concrete query.
type Params struct {
	Keyword       string
	Track         article.Track
	RestrictSites bool
	Window        schedule.Window
}

// Build returns the search expression.
//
// General track: (context OR ...) keyword (site:a OR site:b) after: before:
// Topic track: the context disjunction is replaced by the entity-variant
// disjunction, conjoined with the keyword — the entity name is a strong
// enough signal that broad context terms would only cost recall.
func (b *Builder) Build(p Params) string {
	var parts []string

	if p.Track == article.TrackTopic {
		parts = append(parts, quotedDisjunction(b.EntityVariants))
	} else if len(b.ContextTerms) > 0 {
		parts = append(parts, disjunction(b.ContextTerms))
	}

	if p.Keyword != "" {
		parts = append(parts, p.Keyword)
	}

	if p.RestrictSites && len(b.Sites) > 0 {
		sites := make([]string, len(b.Sites))
		for i, s := range b.Sites {
			sites[i] = "site:" + s
		}
		parts = append(parts, "("+strings.Join(sites, " OR ")+")")
	}

	// Google's date operators are day-granular; before: is exclusive.
	parts = append(parts,
		"after:"+p.Window.Start.Format("2006-01-02"),
		"before:"+p.Window.End.AddDate(0, 0, 1).Format("2006-01-02"))

	return strings.Join(parts, " ")
}

// FeedURL wraps a search expression into a Korean-locale Google News RSS URL.
func (b *Builder) FeedURL(query string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("hl", "ko")
	v.Set("gl", "KR")
	v.Set("ceid", "KR:ko")
	return fmt.Sprintf("%s?%s", googleNewsRSS, v.Encode())
}

func disjunction(terms []string) string {
	return "(" + strings.Join(terms, " OR ") + ")"
}

func quotedDisjunction(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}
